// Package driver defines the backend-neutral browser session contract and
// the worker-keyed registry that owns session lifecycles.
package driver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrUnsupportedBrowser = errors.New("unsupported browser")
	ErrTimeout            = errors.New("timed out waiting for element")
	ErrElementNotFound    = errors.New("element not found")
	ErrSessionClosed      = errors.New("session closed")
	ErrNotInViewport      = errors.New("element is outside the viewport")
)

// InViewport reports whether the point (x, y) falls inside a viewport of
// width w and height h. Pointer clicks aimed outside it hit nothing.
func InViewport(x, y, w, h float64) bool {
	return x >= 0 && y >= 0 && x < w && y < h
}

// Kind is a supported browser.
type Kind string

const (
	Chrome  Kind = "chrome"
	Firefox Kind = "firefox"
	Edge    Kind = "edge"
)

// Kinds lists every supported browser.
var Kinds = []Kind{Chrome, Firefox, Edge}

// ParseKind maps a browser name to a Kind, ignoring case and surrounding space.
func ParseKind(name string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(name))); k {
	case Chrome, Firefox, Edge:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedBrowser, name)
	}
}

// Condition is the element state a wait blocks on.
type Condition int

const (
	Present Condition = iota
	Visible
	Clickable
)

func (c Condition) String() string {
	switch c {
	case Present:
		return "present"
	case Visible:
		return "visible"
	case Clickable:
		return "clickable"
	default:
		return fmt.Sprintf("condition(%d)", int(c))
	}
}

// Session is one live browser with a single page. Selectors are CSS.
// Element actions use the session's default action timeout unless a
// timeout is passed explicitly.
type Session interface {
	Navigate(ctx context.Context, url string) error
	Title(ctx context.Context) (string, error)
	URL(ctx context.Context) (string, error)

	// WaitFor blocks until the first element matching selector satisfies
	// cond. It returns an error wrapping ErrTimeout when timeout elapses.
	WaitFor(ctx context.Context, selector string, cond Condition, timeout time.Duration) error

	Click(ctx context.Context, selector string, timeout time.Duration) error

	// PointerClick moves the mouse to the centre of the element and clicks there.
	PointerClick(ctx context.Context, selector string) error

	// Fill clears the element and types text into it.
	Fill(ctx context.Context, selector, text string) error
	Press(ctx context.Context, selector, key string) error

	Text(ctx context.Context, selector string) (string, error)
	// Attribute returns "" when the attribute is absent.
	Attribute(ctx context.Context, selector, name string) (string, error)
	InputValue(ctx context.Context, selector string) (string, error)
	Count(ctx context.Context, selector string) (int, error)

	// EvalOnElement runs a function body with the element bound to el.
	EvalOnElement(ctx context.Context, selector, script string) error

	Screenshot(ctx context.Context) ([]byte, error)
	Close() error
}

// Launcher starts sessions for one automation backend.
type Launcher interface {
	Name() string
	Launch(ctx context.Context, kind Kind, opts LaunchOptions) (Session, error)
}
