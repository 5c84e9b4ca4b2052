// Package cdpdriver runs Chromium based browsers over the DevTools protocol
// with chromedp. Firefox is not supported by this backend.
package cdpdriver

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/hairizuan-noorazman/ui-bdd/driver"
	"github.com/hairizuan-noorazman/ui-bdd/logger"
)

var edgeCandidates = map[string][]string{
	"linux":   {"microsoft-edge", "microsoft-edge-stable"},
	"darwin":  {"/Applications/Microsoft Edge.app/Contents/MacOS/Microsoft Edge"},
	"windows": {`C:\Program Files (x86)\Microsoft\Edge\Application\msedge.exe`, `C:\Program Files\Microsoft\Edge\Application\msedge.exe`},
}

// Launcher starts one Chromium process per session.
type Launcher struct {
	logger logger.Logger
}

func NewLauncher(log logger.Logger) *Launcher {
	return &Launcher{logger: log}
}

func (l *Launcher) Name() string { return "chromedp" }

func (l *Launcher) Launch(ctx context.Context, kind driver.Kind, opts driver.LaunchOptions) (driver.Session, error) {
	if kind == driver.Firefox {
		return nil, fmt.Errorf("%w: %s is not available on the chromedp backend", driver.ErrUnsupportedBrowser, kind)
	}

	allocOpts, err := allocatorOptions(kind, opts)
	if err != nil {
		return nil, err
	}

	// The browser outlives the launch call, so it hangs off a fresh context.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			l.logger.Debug(ctx, fmt.Sprintf("chromedp: "+format, args...), nil)
		}),
	)

	s := &session{
		tab:           tabCtx,
		cancelTab:     tabCancel,
		cancelAlloc:   allocCancel,
		actionTimeout: opts.ActionTimeout(),
		loadTimeout:   opts.PageLoadTimeout,
	}

	scripts := make([]chromedp.Action, 0, len(opts.InitScripts))
	for _, script := range opts.InitScripts {
		script := script
		scripts = append(scripts, chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(script).Do(ctx)
			return err
		}))
	}
	// The first Run allocates the browser and binds it to tabCtx, so it
	// must not run on a derived timeout context.
	if err := chromedp.Run(tabCtx, scripts...); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to start %s: %w", kind, err)
	}

	l.logger.Debug(ctx, "chromedp browser launched", map[string]interface{}{
		"browser":  string(kind),
		"headless": opts.Headless,
	})
	return s, nil
}

func allocatorOptions(kind driver.Kind, opts driver.LaunchOptions) ([]chromedp.ExecAllocatorOption, error) {
	out := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	out = append(out, chromedp.Flag("headless", opts.Headless))

	for _, arg := range opts.Args {
		name, value := splitArg(arg)
		if name == "start-maximized" && opts.Headless {
			out = append(out, chromedp.WindowSize(1920, 1080))
		}
		out = append(out, chromedp.Flag(name, value))
	}
	for _, arg := range opts.DropArgs {
		name, _ := splitArg(arg)
		out = append(out, chromedp.Flag(name, false))
	}
	if opts.UserAgent != "" {
		out = append(out, chromedp.UserAgent(opts.UserAgent))
	}

	binary := opts.Binary
	if binary == "" && kind == driver.Edge {
		var err error
		if binary, err = findEdge(); err != nil {
			return nil, err
		}
	}
	if binary != "" {
		out = append(out, chromedp.ExecPath(binary))
	}
	return out, nil
}

// splitArg turns "--name=value" into a chromedp flag; bare switches become true.
func splitArg(arg string) (string, interface{}) {
	arg = strings.TrimLeft(arg, "-")
	if name, value, ok := strings.Cut(arg, "="); ok {
		return name, value
	}
	return arg, true
}

func findEdge() (string, error) {
	for _, candidate := range edgeCandidates[runtime.GOOS] {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("microsoft edge executable not found, set driver.binary")
}
