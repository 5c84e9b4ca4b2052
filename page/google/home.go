// Package google contains the page objects for Google search.
package google

import (
	"context"
	"fmt"

	"github.com/hairizuan-noorazman/ui-bdd/page"
)

const (
	SearchBox    = `[name="q"]`
	SearchButton = `[name="btnK"]`
	LuckyButton  = `input[name="btnI"]`
	Logo         = `#logo`
)

// HomePage is the Google landing page.
type HomePage struct {
	*page.Base
	url string
}

// NewHomePage returns the home page object served at url.
func NewHomePage(base *page.Base, url string) *HomePage {
	return &HomePage{Base: base, url: url}
}

// Open navigates to the home page.
func (p *HomePage) Open(ctx context.Context) error {
	return p.Navigate(ctx, p.url)
}

// IsLoaded reports whether the search box became visible.
func (p *HomePage) IsLoaded(ctx context.Context) bool {
	return p.IsVisible(ctx, SearchBox)
}

// SearchFor types term into the search box and submits with Enter.
func (p *HomePage) SearchFor(ctx context.Context, term string) error {
	if err := p.Type(ctx, SearchBox, term); err != nil {
		return fmt.Errorf("failed to enter search term: %w", err)
	}
	if err := p.PressKey(ctx, SearchBox, "Enter"); err != nil {
		return fmt.Errorf("failed to submit search: %w", err)
	}
	return nil
}

// EnterSearchTerm types term without submitting.
func (p *HomePage) EnterSearchTerm(ctx context.Context, term string) error {
	return p.Type(ctx, SearchBox, term)
}

// ClickSearchButton submits the search with the "Google Search" button.
func (p *HomePage) ClickSearchButton(ctx context.Context) error {
	return p.Click(ctx, SearchButton)
}

// SearchBoxLabel returns the search box aria-label.
func (p *HomePage) SearchBoxLabel(ctx context.Context) (string, error) {
	return p.Attribute(ctx, SearchBox, "aria-label")
}

// ClickFeelingLucky presses "I'm Feeling Lucky". The button is often hidden
// until the search box has focus, so it goes through the fallback click.
func (p *HomePage) ClickFeelingLucky(ctx context.Context) bool {
	return p.SafeClick(ctx, LuckyButton)
}

// IsLogoVisible reports whether the Google logo is shown.
func (p *HomePage) IsLogoVisible(ctx context.Context) bool {
	return p.IsVisible(ctx, Logo)
}
