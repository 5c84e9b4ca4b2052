package google

import (
	"context"
	"strings"

	"github.com/hairizuan-noorazman/ui-bdd/driver"
	"github.com/hairizuan-noorazman/ui-bdd/page"
)

const (
	ResultsContainer = `#search`
	ResultTitles     = `#search h3`
	ResultStats      = `#result-stats`
)

// ResultsPage is the search results listing.
type ResultsPage struct {
	*page.Base
}

// NewResultsPage returns the results page object over base.
func NewResultsPage(base *page.Base) *ResultsPage {
	return &ResultsPage{Base: base}
}

// IsLoaded reports whether the results container became visible.
func (p *ResultsPage) IsLoaded(ctx context.Context) bool {
	return p.IsVisible(ctx, ResultsContainer)
}

// ResultCount waits for the results container and counts result titles.
func (p *ResultsPage) ResultCount(ctx context.Context) (int, error) {
	if err := p.WaitFor(ctx, ResultsContainer, driver.Visible); err != nil {
		return 0, err
	}
	return p.Count(ctx, ResultTitles)
}

// HasResults reports whether at least one result title is listed.
func (p *ResultsPage) HasResults(ctx context.Context) (bool, error) {
	n, err := p.ResultCount(ctx)
	return n > 0, err
}

// FirstResultText returns the first result title, or "" when there are none.
func (p *ResultsPage) FirstResultText(ctx context.Context) (string, error) {
	n, err := p.Count(ctx, ResultTitles)
	if err != nil || n == 0 {
		return "", err
	}
	return p.Text(ctx, ResultTitles)
}

// IsSearchTermDisplayed reports whether the search box still holds term.
func (p *ResultsPage) IsSearchTermDisplayed(ctx context.Context, term string) (bool, error) {
	value, err := p.Value(ctx, SearchBox)
	if err != nil {
		return false, err
	}
	return strings.Contains(value, term), nil
}
