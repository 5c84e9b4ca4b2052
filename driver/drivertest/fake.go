// Package drivertest provides in-memory driver.Launcher and driver.Session
// fakes for page object and scenario tests.
package drivertest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hairizuan-noorazman/ui-bdd/driver"
)

// Element is a fake DOM element.
type Element struct {
	Text      string
	Value     string
	Attrs     map[string]string
	Hidden    bool
	Covered   bool // visible but not clickable
	OffScreen bool // below the fold, out of pointer reach
	Matches   int  // number of matching elements, 1 when zero
}

// Page is what a fake session shows after navigating to a URL.
type Page struct {
	Title    string
	Elements map[string]*Element
}

// Session is a scriptable driver.Session. All methods are safe for concurrent use.
type Session struct {
	mu sync.Mutex

	Kind    driver.Kind
	Options driver.LaunchOptions

	url      string
	title    string
	elements map[string]*Element
	pages    map[string]Page
	closed   bool

	// Errors injected per action.
	ClickErr      error
	PointerErr    error
	EvalErr       error
	ScreenshotErr error
	CloseErr      error
	// OnFill runs after Fill and may change the page, for example to show
	// results once a term is typed.
	OnFill func(s *Session, selector, text string)
	// OnPress runs after Press.
	OnPress func(s *Session, selector, key string)

	Calls []string
}

// NewSession returns an empty fake session.
func NewSession() *Session {
	return &Session{
		elements: map[string]*Element{},
		pages:    map[string]Page{},
	}
}

// AddPage registers what Navigate(url) loads.
func (s *Session) AddPage(url string, p Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[url] = p
}

// SetElement places el under selector on the current page.
func (s *Session) SetElement(selector string, el *Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elements[selector] = el
}

// SetTitle replaces the current page title.
func (s *Session) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.title = title
}

// Element returns the element under selector.
func (s *Session) Element(selector string) (*Element, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.elements[selector]
	return el, ok
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// CallLog returns a copy of the recorded calls.
func (s *Session) CallLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.Calls...)
}

func (s *Session) record(format string, args ...interface{}) {
	s.Calls = append(s.Calls, fmt.Sprintf(format, args...))
}

func (s *Session) find(selector string) (*Element, error) {
	if s.closed {
		return nil, driver.ErrSessionClosed
	}
	el, ok := s.elements[selector]
	if !ok {
		return nil, fmt.Errorf("%w: %s", driver.ErrElementNotFound, selector)
	}
	return el, nil
}

func (s *Session) Navigate(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return driver.ErrSessionClosed
	}
	s.record("navigate %s", url)
	s.url = url
	if p, ok := s.pages[url]; ok {
		s.title = p.Title
		s.elements = make(map[string]*Element, len(p.Elements))
		for sel, el := range p.Elements {
			cp := *el
			s.elements[sel] = &cp
		}
	}
	return nil
}

func (s *Session) Title(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title, nil
}

func (s *Session) URL(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url, nil
}

// WaitFor does not sleep: an element that does not satisfy cond times out at once.
func (s *Session) WaitFor(_ context.Context, selector string, cond driver.Condition, timeout time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("wait %s %s", cond, selector)

	el, err := s.find(selector)
	ok := err == nil
	if ok {
		switch cond {
		case driver.Visible:
			ok = !el.Hidden
		case driver.Clickable:
			ok = !el.Hidden && !el.Covered
		}
	}
	if !ok {
		return fmt.Errorf("%w: %s %s after %s", driver.ErrTimeout, selector, cond, timeout)
	}
	return nil
}

func (s *Session) Click(ctx context.Context, selector string, timeout time.Duration) error {
	if err := s.WaitFor(ctx, selector, driver.Clickable, timeout); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("click %s", selector)
	return s.ClickErr
}

func (s *Session) PointerClick(_ context.Context, selector string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("pointer %s", selector)
	el, err := s.find(selector)
	if err != nil {
		return err
	}
	if el.Hidden {
		return fmt.Errorf("element %s has no bounding box", selector)
	}
	if el.OffScreen {
		return fmt.Errorf("%w: %s", driver.ErrNotInViewport, selector)
	}
	return s.PointerErr
}

func (s *Session) Fill(_ context.Context, selector, text string) error {
	s.mu.Lock()
	el, err := s.find(selector)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.record("fill %s %s", selector, text)
	el.Value = text
	hook := s.OnFill
	s.mu.Unlock()

	if hook != nil {
		hook(s, selector, text)
	}
	return nil
}

func (s *Session) Press(_ context.Context, selector, key string) error {
	s.mu.Lock()
	if _, err := s.find(selector); err != nil {
		s.mu.Unlock()
		return err
	}
	s.record("press %s %s", selector, key)
	hook := s.OnPress
	s.mu.Unlock()

	if hook != nil {
		hook(s, selector, key)
	}
	return nil
}

func (s *Session) Text(_ context.Context, selector string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, err := s.find(selector)
	if err != nil {
		return "", err
	}
	return el.Text, nil
}

func (s *Session) Attribute(_ context.Context, selector, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, err := s.find(selector)
	if err != nil {
		return "", err
	}
	return el.Attrs[name], nil
}

func (s *Session) InputValue(_ context.Context, selector string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, err := s.find(selector)
	if err != nil {
		return "", err
	}
	return el.Value, nil
}

func (s *Session) Count(_ context.Context, selector string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, driver.ErrSessionClosed
	}
	el, ok := s.elements[selector]
	if !ok {
		return 0, nil
	}
	if el.Matches == 0 {
		return 1, nil
	}
	return el.Matches, nil
}

func (s *Session) EvalOnElement(_ context.Context, selector, script string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("eval %s %s", selector, strings.TrimSpace(script))
	if _, err := s.find(selector); err != nil {
		return err
	}
	return s.EvalErr
}

// Screenshot returns a fixed PNG signature.
func (s *Session) Screenshot(context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, driver.ErrSessionClosed
	}
	if s.ScreenshotErr != nil {
		return nil, s.ScreenshotErr
	}
	return []byte("\x89PNG\r\n\x1a\n"), nil
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return s.CloseErr
}

// Launcher hands out fake sessions and remembers them.
type Launcher struct {
	mu sync.Mutex

	// Err fails every launch when set.
	Err error
	// Setup prepares each new session, for example by registering pages.
	Setup func(*Session)

	sessions []*Session
}

func (l *Launcher) Name() string { return "fake" }

func (l *Launcher) Launch(_ context.Context, kind driver.Kind, opts driver.LaunchOptions) (driver.Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return nil, l.Err
	}
	s := NewSession()
	s.Kind = kind
	s.Options = opts
	if l.Setup != nil {
		l.Setup(s)
	}
	l.sessions = append(l.sessions, s)
	return s, nil
}

// Sessions returns every session launched so far.
func (l *Launcher) Sessions() []*Session {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*Session(nil), l.sessions...)
}

var (
	_ driver.Session  = (*Session)(nil)
	_ driver.Launcher = (*Launcher)(nil)
)
