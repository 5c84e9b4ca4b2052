// Package page holds the shared page object helpers. Every element action
// waits for the element to reach the state it needs before acting.
package page

import (
	"context"
	"fmt"
	"time"

	"github.com/hairizuan-noorazman/ui-bdd/driver"
	"github.com/hairizuan-noorazman/ui-bdd/logger"
)

// WaitError is returned when an element does not reach a state in time.
type WaitError struct {
	Selector  string
	Condition driver.Condition
	Timeout   time.Duration
	Err       error
}

func (e *WaitError) Error() string {
	return fmt.Sprintf("element %q not %s within %s: %v", e.Selector, e.Condition, e.Timeout, e.Err)
}

func (e *WaitError) Unwrap() error {
	return e.Err
}

// Base wraps a driver session with wait-then-act helpers.
type Base struct {
	session    driver.Session
	wait       time.Duration
	strategies []ClickStrategy
	logger     logger.Logger
}

// Option customizes a Base.
type Option func(*Base)

// WithClickStrategies replaces the strategies SafeClick tries.
func WithClickStrategies(strategies ...ClickStrategy) Option {
	return func(b *Base) {
		b.strategies = strategies
	}
}

// NewBase creates helpers over session that wait up to explicitWait.
func NewBase(session driver.Session, explicitWait time.Duration, log logger.Logger, opts ...Option) *Base {
	b := &Base{
		session:    session,
		wait:       explicitWait,
		strategies: DefaultClickStrategies(),
		logger:     log,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Session returns the underlying driver session.
func (b *Base) Session() driver.Session {
	return b.session
}

// WaitFor blocks until selector reaches cond or the explicit wait elapses.
func (b *Base) WaitFor(ctx context.Context, selector string, cond driver.Condition) error {
	return waitFor(ctx, b.session, selector, cond, b.wait)
}

func waitFor(ctx context.Context, s driver.Session, selector string, cond driver.Condition, timeout time.Duration) error {
	if err := s.WaitFor(ctx, selector, cond, timeout); err != nil {
		return &WaitError{Selector: selector, Condition: cond, Timeout: timeout, Err: err}
	}
	return nil
}

// Navigate loads url, bounded by the session's page load timeout.
func (b *Base) Navigate(ctx context.Context, url string) error {
	return b.session.Navigate(ctx, url)
}

// Title returns the current document title.
func (b *Base) Title(ctx context.Context) (string, error) {
	return b.session.Title(ctx)
}

// CurrentURL returns the address of the current page.
func (b *Base) CurrentURL(ctx context.Context) (string, error) {
	return b.session.URL(ctx)
}

// Click waits for the element to be clickable, then clicks it.
func (b *Base) Click(ctx context.Context, selector string) error {
	if err := b.WaitFor(ctx, selector, driver.Clickable); err != nil {
		return err
	}
	return b.session.Click(ctx, selector, b.wait)
}

// Type waits for the element to be visible, clears it and types text.
func (b *Base) Type(ctx context.Context, selector, text string) error {
	if err := b.WaitFor(ctx, selector, driver.Visible); err != nil {
		return err
	}
	return b.session.Fill(ctx, selector, text)
}

// PressKey sends a named key such as "Enter" to a visible element.
func (b *Base) PressKey(ctx context.Context, selector, key string) error {
	if err := b.WaitFor(ctx, selector, driver.Visible); err != nil {
		return err
	}
	return b.session.Press(ctx, selector, key)
}

// Text returns the rendered text of a visible element.
func (b *Base) Text(ctx context.Context, selector string) (string, error) {
	if err := b.WaitFor(ctx, selector, driver.Visible); err != nil {
		return "", err
	}
	return b.session.Text(ctx, selector)
}

// Attribute waits for the element to be present and returns one of its attributes.
func (b *Base) Attribute(ctx context.Context, selector, name string) (string, error) {
	if err := b.WaitFor(ctx, selector, driver.Present); err != nil {
		return "", err
	}
	return b.session.Attribute(ctx, selector, name)
}

// Value returns the current value of an input element.
func (b *Base) Value(ctx context.Context, selector string) (string, error) {
	if err := b.WaitFor(ctx, selector, driver.Present); err != nil {
		return "", err
	}
	return b.session.InputValue(ctx, selector)
}

// Count returns how many elements match selector right now, without waiting.
func (b *Base) Count(ctx context.Context, selector string) (int, error) {
	return b.session.Count(ctx, selector)
}

// IsVisible reports whether selector becomes visible within the explicit wait.
func (b *Base) IsVisible(ctx context.Context, selector string) bool {
	return b.WaitFor(ctx, selector, driver.Visible) == nil
}

// SafeClick tries each click strategy in order until one succeeds. It never
// returns an error: when every strategy fails the click is abandoned and the
// calling step's assertions report the problem.
func (b *Base) SafeClick(ctx context.Context, selector string) bool {
	for _, st := range b.strategies {
		err := st.Click(ctx, b.session, selector)
		if err == nil {
			b.logger.Debug(ctx, "clicked element", map[string]interface{}{
				"selector": selector,
				"strategy": st.Name,
			})
			return true
		}
		b.logger.Debug(ctx, "click strategy failed", map[string]interface{}{
			"selector": selector,
			"strategy": st.Name,
			"error":    err.Error(),
		})
	}

	b.logger.Warn(ctx, "all click strategies failed", map[string]interface{}{
		"selector":   selector,
		"strategies": len(b.strategies),
	})
	return false
}
