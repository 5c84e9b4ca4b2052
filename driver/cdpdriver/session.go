package cdpdriver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/hairizuan-noorazman/ui-bdd/driver"
)

var keys = map[string]string{
	"Enter":     kb.Enter,
	"Tab":       kb.Tab,
	"Escape":    kb.Escape,
	"Backspace": kb.Backspace,
	"ArrowDown": kb.ArrowDown,
	"ArrowUp":   kb.ArrowUp,
}

type session struct {
	tab         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc

	actionTimeout time.Duration
	loadTimeout   time.Duration
}

// run executes actions on the tab, bounded by timeout and by the caller's ctx.
func (s *session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tctx, cancel := context.WithTimeout(s.tab, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(tctx, actions...)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("%w after %s: %v", driver.ErrTimeout, timeout, err)
	}
	return err
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func (s *session) Navigate(ctx context.Context, url string) error {
	if err := s.run(ctx, s.loadTimeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

func (s *session) Title(ctx context.Context) (string, error) {
	var title string
	err := s.run(ctx, s.actionTimeout, chromedp.Title(&title))
	return title, err
}

func (s *session) URL(ctx context.Context) (string, error) {
	var url string
	err := s.run(ctx, s.actionTimeout, chromedp.Location(&url))
	return url, err
}

func (s *session) WaitFor(ctx context.Context, selector string, cond driver.Condition, timeout time.Duration) error {
	var actions []chromedp.Action
	switch cond {
	case driver.Present:
		actions = append(actions, chromedp.WaitReady(selector, chromedp.ByQuery))
	case driver.Visible:
		actions = append(actions, chromedp.WaitVisible(selector, chromedp.ByQuery))
	default:
		actions = append(actions,
			chromedp.WaitVisible(selector, chromedp.ByQuery),
			chromedp.WaitEnabled(selector, chromedp.ByQuery),
		)
	}
	if err := s.run(ctx, timeout, actions...); err != nil {
		return fmt.Errorf("waiting for %s to be %s: %w", selector, cond, err)
	}
	return nil
}

func (s *session) Click(ctx context.Context, selector string, timeout time.Duration) error {
	return s.run(ctx, timeout, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible))
}

func (s *session) PointerClick(ctx context.Context, selector string) error {
	// centre is x, y, viewport width, viewport height.
	var centre []float64
	expr := fmt.Sprintf(`(() => {
		const el = document.querySelector(%s);
		if (!el) { return []; }
		const r = el.getBoundingClientRect();
		return [r.x + r.width / 2, r.y + r.height / 2, window.innerWidth, window.innerHeight];
	})()`, quote(selector))
	err := s.run(ctx, s.actionTimeout,
		chromedp.ScrollIntoView(selector, chromedp.ByQuery),
		chromedp.Evaluate(expr, &centre),
	)
	if err != nil {
		return err
	}
	if len(centre) != 4 {
		return fmt.Errorf("%w: %s", driver.ErrElementNotFound, selector)
	}
	x, y := centre[0], centre[1]
	if !driver.InViewport(x, y, centre[2], centre[3]) {
		return fmt.Errorf("%w: %s at (%.0f, %.0f)", driver.ErrNotInViewport, selector, x, y)
	}
	return s.run(ctx, s.actionTimeout,
		input.DispatchMouseEvent(input.MouseMoved, x, y),
		chromedp.MouseClickXY(x, y),
	)
}

func (s *session) Fill(ctx context.Context, selector, text string) error {
	return s.run(ctx, s.actionTimeout,
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, text, chromedp.ByQuery),
	)
}

func (s *session) Press(ctx context.Context, selector, key string) error {
	if k, ok := keys[key]; ok {
		key = k
	}
	return s.run(ctx, s.actionTimeout, chromedp.SendKeys(selector, key, chromedp.ByQuery))
}

func (s *session) Text(ctx context.Context, selector string) (string, error) {
	var text string
	err := s.run(ctx, s.actionTimeout, chromedp.Text(selector, &text, chromedp.ByQuery))
	return text, err
}

func (s *session) Attribute(ctx context.Context, selector, name string) (string, error) {
	var (
		value string
		ok    bool
	)
	err := s.run(ctx, s.actionTimeout, chromedp.AttributeValue(selector, name, &value, &ok, chromedp.ByQuery))
	return value, err
}

func (s *session) InputValue(ctx context.Context, selector string) (string, error) {
	var value string
	err := s.run(ctx, s.actionTimeout, chromedp.Value(selector, &value, chromedp.ByQuery))
	return value, err
}

func (s *session) Count(ctx context.Context, selector string) (int, error) {
	var n int
	expr := fmt.Sprintf(`document.querySelectorAll(%s).length`, quote(selector))
	err := s.run(ctx, s.actionTimeout, chromedp.Evaluate(expr, &n))
	return n, err
}

func (s *session) EvalOnElement(ctx context.Context, selector, script string) error {
	expr := fmt.Sprintf(`(function(el) {
		if (!el) { throw new Error('element not found'); }
		%s
	})(document.querySelector(%s))`, script, quote(selector))
	return s.run(ctx, s.actionTimeout, chromedp.Evaluate(expr, nil))
}

func (s *session) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := s.run(ctx, s.actionTimeout, chromedp.CaptureScreenshot(&buf))
	return buf, err
}

// Close shuts the browser down and waits for the process to exit.
func (s *session) Close() error {
	err := chromedp.Cancel(s.tab)
	s.cancelTab()
	s.cancelAlloc()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

var _ driver.Session = (*session)(nil)
