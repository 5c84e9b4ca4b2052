package pwdriver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hairizuan-noorazman/ui-bdd/driver"
	"github.com/playwright-community/playwright-go"
	"github.com/spf13/cast"
)

type session struct {
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
}

func ms(d time.Duration) float64 {
	return float64(d.Milliseconds())
}

func (s *session) first(selector string) playwright.Locator {
	return s.page.Locator(selector).First()
}

// mapErr reports Playwright timeouts as driver.ErrTimeout.
func mapErr(selector string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %s: %v", driver.ErrTimeout, selector, err)
	}
	return err
}

func (s *session) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.page.Goto(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, mapErr(url, err))
	}
	return nil
}

func (s *session) Title(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.page.Title()
}

func (s *session) URL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.page.URL(), nil
}

func (s *session) WaitFor(ctx context.Context, selector string, cond driver.Condition, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	loc := s.first(selector)
	deadline := time.Now().Add(timeout)

	state := playwright.WaitForSelectorStateVisible
	if cond == driver.Present {
		state = playwright.WaitForSelectorStateAttached
	}
	err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   state,
		Timeout: playwright.Float(ms(timeout)),
	})
	if err != nil || cond != driver.Clickable {
		return mapErr(selector, err)
	}

	// A trial click runs the actionability checks without clicking.
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return fmt.Errorf("%w: %s not clickable", driver.ErrTimeout, selector)
	}
	return mapErr(selector, loc.Click(playwright.LocatorClickOptions{
		Trial:   playwright.Bool(true),
		Timeout: playwright.Float(ms(remaining)),
	}))
}

func (s *session) Click(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return mapErr(selector, s.first(selector).Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(ms(timeout)),
	}))
}

func (s *session) PointerClick(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	loc := s.first(selector)
	if err := loc.ScrollIntoViewIfNeeded(); err != nil {
		return mapErr(selector, err)
	}
	box, err := loc.BoundingBox()
	if err != nil {
		return mapErr(selector, err)
	}
	if box == nil {
		return fmt.Errorf("element %s has no bounding box", selector)
	}
	x, y := box.X+box.Width/2, box.Y+box.Height/2

	// The context has no fixed viewport, so ask the page for its size.
	size, err := s.page.Evaluate(`() => [window.innerWidth, window.innerHeight]`)
	if err != nil {
		return err
	}
	dims := cast.ToSlice(size)
	if len(dims) != 2 || !driver.InViewport(x, y, cast.ToFloat64(dims[0]), cast.ToFloat64(dims[1])) {
		return fmt.Errorf("%w: %s at (%.0f, %.0f)", driver.ErrNotInViewport, selector, x, y)
	}
	if err := s.page.Mouse().Move(x, y); err != nil {
		return err
	}
	return s.page.Mouse().Click(x, y)
}

func (s *session) Fill(ctx context.Context, selector, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	loc := s.first(selector)
	if err := loc.Clear(); err != nil {
		return mapErr(selector, err)
	}
	return mapErr(selector, loc.Fill(text))
}

func (s *session) Press(ctx context.Context, selector, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return mapErr(selector, s.first(selector).Press(key))
}

func (s *session) Text(ctx context.Context, selector string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := s.first(selector).InnerText()
	return text, mapErr(selector, err)
}

func (s *session) Attribute(ctx context.Context, selector, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	v, err := s.first(selector).GetAttribute(name)
	return v, mapErr(selector, err)
}

func (s *session) InputValue(ctx context.Context, selector string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	v, err := s.first(selector).InputValue()
	return v, mapErr(selector, err)
}

func (s *session) Count(ctx context.Context, selector string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.page.Locator(selector).Count()
}

func (s *session) EvalOnElement(ctx context.Context, selector, script string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.first(selector).Evaluate("(el) => { "+script+" }", nil)
	return mapErr(selector, err)
}

func (s *session) Screenshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.page.Screenshot()
}

// Close tears down the page, context and browser, joining any errors.
func (s *session) Close() error {
	var errs []error
	if err := s.page.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.context.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.browser.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

var _ driver.Session = (*session)(nil)
