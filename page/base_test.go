package page

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hairizuan-noorazman/ui-bdd/driver"
	"github.com/hairizuan-noorazman/ui-bdd/driver/drivertest"
	"github.com/hairizuan-noorazman/ui-bdd/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBase(s *drivertest.Session) (*Base, *logger.TestLogger) {
	log := logger.NewTestLogger()
	return NewBase(s, 15*time.Second, log), log
}

func TestBase_WaitFailureIsWaitError(t *testing.T) {
	ctx := context.Background()
	s := drivertest.NewSession()
	s.SetElement("#hidden", &drivertest.Element{Hidden: true})
	b, _ := newBase(s)

	tests := []struct {
		name string
		run  func() error
	}{
		{"click", func() error { return b.Click(ctx, "#missing") }},
		{"type", func() error { return b.Type(ctx, "#hidden", "x") }},
		{"text", func() error { _, err := b.Text(ctx, "#hidden"); return err }},
		{"attribute", func() error { _, err := b.Attribute(ctx, "#missing", "id"); return err }},
		{"value", func() error { _, err := b.Value(ctx, "#missing"); return err }},
		{"press", func() error { return b.PressKey(ctx, "#hidden", "Enter") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			var waitErr *WaitError
			require.ErrorAs(t, err, &waitErr)
			assert.ErrorIs(t, err, driver.ErrTimeout)
			assert.Equal(t, 15*time.Second, waitErr.Timeout)
		})
	}
}

func TestBase_Actions(t *testing.T) {
	ctx := context.Background()
	s := drivertest.NewSession()
	s.SetElement("#q", &drivertest.Element{Value: "old", Attrs: map[string]string{"aria-label": "Search"}})
	s.SetElement("h3", &drivertest.Element{Text: "first", Matches: 4})
	b, _ := newBase(s)

	require.NoError(t, b.Type(ctx, "#q", "golang"))
	v, err := b.Value(ctx, "#q")
	require.NoError(t, err)
	assert.Equal(t, "golang", v)

	label, err := b.Attribute(ctx, "#q", "aria-label")
	require.NoError(t, err)
	assert.Equal(t, "Search", label)

	text, err := b.Text(ctx, "h3")
	require.NoError(t, err)
	assert.Equal(t, "first", text)

	n, err := b.Count(ctx, "h3")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = b.Count(ctx, ".nothing")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, b.Click(ctx, "#q"))
	require.NoError(t, b.PressKey(ctx, "#q", "Enter"))
	assert.True(t, b.IsVisible(ctx, "#q"))
	assert.False(t, b.IsVisible(ctx, "#nope"))

	assert.Equal(t, []string{
		"wait visible #q",
		"fill #q golang",
		"wait present #q",
		"wait present #q",
		"wait visible h3",
		"wait clickable #q",
		"wait clickable #q",
		"click #q",
		"wait visible #q",
		"press #q Enter",
		"wait visible #q",
		"wait visible #nope",
	}, s.CallLog())
}

func TestBase_SafeClick(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	tests := []struct {
		name      string
		element   *drivertest.Element
		setup     func(s *drivertest.Session)
		want      bool
		wantCalls []string
	}{
		{
			name:    "direct click succeeds",
			element: &drivertest.Element{},
			want:    true,
			wantCalls: []string{
				"wait clickable #btn",
				"wait clickable #btn",
				"click #btn",
			},
		},
		{
			name:    "covered element falls back to pointer",
			element: &drivertest.Element{Covered: true},
			want:    true,
			wantCalls: []string{
				"wait clickable #btn",
				"pointer #btn",
			},
		},
		{
			name:    "pointer failure falls back to script",
			element: &drivertest.Element{Covered: true},
			setup:   func(s *drivertest.Session) { s.PointerErr = boom },
			want:    true,
			wantCalls: []string{
				"wait clickable #btn",
				"pointer #btn",
				"eval #btn el.scrollIntoView(true);",
				"eval #btn el.click();",
			},
		},
		{
			name:    "off-screen element falls back to script",
			element: &drivertest.Element{Covered: true, OffScreen: true},
			want:    true,
			wantCalls: []string{
				"wait clickable #btn",
				"pointer #btn",
				"eval #btn el.scrollIntoView(true);",
				"eval #btn el.click();",
			},
		},
		{
			name:    "every strategy fails",
			element: &drivertest.Element{Covered: true},
			setup: func(s *drivertest.Session) {
				s.PointerErr = boom
				s.EvalErr = boom
			},
			want: false,
			wantCalls: []string{
				"wait clickable #btn",
				"pointer #btn",
				"eval #btn el.scrollIntoView(true);",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := drivertest.NewSession()
			s.SetElement("#btn", tt.element)
			if tt.setup != nil {
				tt.setup(s)
			}
			b, log := newBase(s)

			assert.Equal(t, tt.want, b.SafeClick(ctx, "#btn"))
			assert.Equal(t, tt.wantCalls, s.CallLog())
			assert.Equal(t, !tt.want, log.HasMessage("warn", "all click strategies failed"))
		})
	}
}

func TestBase_SafeClick_MissingElement(t *testing.T) {
	b, _ := newBase(drivertest.NewSession())
	assert.False(t, b.SafeClick(context.Background(), "#missing"))
}

func TestBase_CustomStrategies(t *testing.T) {
	var tried []string
	strategy := func(name string, err error) ClickStrategy {
		return ClickStrategy{Name: name, Click: func(context.Context, driver.Session, string) error {
			tried = append(tried, name)
			return err
		}}
	}

	b := NewBase(drivertest.NewSession(), time.Second, logger.NewTestLogger(),
		WithClickStrategies(strategy("a", errors.New("no")), strategy("b", nil), strategy("c", nil)))

	assert.True(t, b.SafeClick(context.Background(), "#x"))
	assert.Equal(t, []string{"a", "b"}, tried)
}

func TestBase_NavigationHelpers(t *testing.T) {
	ctx := context.Background()
	s := drivertest.NewSession()
	s.AddPage("https://example.test", drivertest.Page{Title: "Example"})
	b, _ := newBase(s)

	require.NoError(t, b.Navigate(ctx, "https://example.test"))
	title, err := b.Title(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Example", title)
	url, err := b.CurrentURL(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://example.test", url)
	assert.Same(t, s, b.Session())
}
