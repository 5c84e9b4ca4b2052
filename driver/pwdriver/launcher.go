// Package pwdriver runs browser sessions through playwright-go. Chrome and
// Edge use the installed Chromium channels, Firefox the Playwright build.
package pwdriver

import (
	"context"
	"fmt"
	"sync"

	"github.com/hairizuan-noorazman/ui-bdd/driver"
	"github.com/hairizuan-noorazman/ui-bdd/logger"
	"github.com/playwright-community/playwright-go"
)

// Launcher shares one Playwright server between all sessions it starts.
type Launcher struct {
	mu     sync.Mutex
	pw     *playwright.Playwright
	logger logger.Logger
}

// NewLauncher returns a launcher; the Playwright server starts on first use.
func NewLauncher(log logger.Logger) *Launcher {
	return &Launcher{logger: log}
}

func (l *Launcher) Name() string { return "playwright" }

func (l *Launcher) start() (*playwright.Playwright, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pw != nil {
		return l.pw, nil
	}
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}
	l.pw = pw
	return pw, nil
}

// Launch starts a browser of kind with its own context and page.
func (l *Launcher) Launch(ctx context.Context, kind driver.Kind, opts driver.LaunchOptions) (driver.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pw, err := l.start()
	if err != nil {
		return nil, err
	}

	browserType := pw.Chromium
	if kind == driver.Firefox {
		browserType = pw.Firefox
	}

	browser, err := browserType.Launch(launchOptions(kind, opts))
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	bctx, err := browser.NewContext(contextOptions(opts))
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	for _, script := range opts.InitScripts {
		if err := bctx.AddInitScript(playwright.Script{Content: playwright.String(script)}); err != nil {
			browser.Close()
			return nil, fmt.Errorf("failed to add init script: %w", err)
		}
	}

	page, err := bctx.NewPage()
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	page.SetDefaultTimeout(ms(opts.ActionTimeout()))
	page.SetDefaultNavigationTimeout(ms(opts.PageLoadTimeout))

	l.logger.Debug(ctx, "playwright browser launched", map[string]interface{}{
		"browser":  string(kind),
		"version":  browser.Version(),
		"headless": opts.Headless,
	})

	return &session{
		browser: browser,
		context: bctx,
		page:    page,
	}, nil
}

// Close stops the Playwright server. Sessions must be closed first.
func (l *Launcher) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pw == nil {
		return nil
	}
	err := l.pw.Stop()
	l.pw = nil
	return err
}

func launchOptions(kind driver.Kind, opts driver.LaunchOptions) playwright.BrowserTypeLaunchOptions {
	lo := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	}
	if opts.Binary != "" {
		lo.ExecutablePath = playwright.String(opts.Binary)
	}

	switch kind {
	case driver.Firefox:
		lo.FirefoxUserPrefs = opts.Prefs
	case driver.Edge:
		if opts.Binary == "" {
			lo.Channel = playwright.String("msedge")
		}
		lo.Args = opts.Args
		lo.IgnoreDefaultArgs = opts.DropArgs
	default:
		if opts.Binary == "" {
			lo.Channel = playwright.String("chrome")
		}
		lo.Args = opts.Args
		lo.IgnoreDefaultArgs = opts.DropArgs
	}
	return lo
}

func contextOptions(opts driver.LaunchOptions) playwright.BrowserNewContextOptions {
	co := playwright.BrowserNewContextOptions{
		NoViewport: playwright.Bool(true),
	}
	if opts.UserAgent != "" {
		co.UserAgent = playwright.String(opts.UserAgent)
	}
	return co
}
