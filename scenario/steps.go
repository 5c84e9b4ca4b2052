package scenario

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
	"github.com/hairizuan-noorazman/ui-bdd/page/google"
)

// ErrAssertion marks a step whose expectation did not hold.
var ErrAssertion = errors.New("assertion failed")

// Step expressions for the Google search feature.
const (
	StepOnHomePage      = `^the user is on the Google home page$`
	StepSearchesFor     = `^the user searches for "([^"]*)"$`
	StepResultsShown    = `^search results are displayed$`
	StepTitleHasTerm    = `^the page title contains the search term$`
	StepTermInSearchBox = `^the search term "([^"]*)" appears in the search box$`
)

// GoogleSteps implements the Google search step definitions.
type GoogleSteps struct {
	baseURL string
}

func NewGoogleSteps(baseURL string) *GoogleSteps {
	return &GoogleSteps{baseURL: baseURL}
}

// Register binds every step on sc.
func (s *GoogleSteps) Register(sc *godog.ScenarioContext) {
	sc.Step(StepOnHomePage, s.userIsOnHomePage)
	sc.Step(StepSearchesFor, s.userSearchesFor)
	sc.Step(StepResultsShown, s.searchResultsAreDisplayed)
	sc.Step(StepTitleHasTerm, s.titleContainsSearchTerm)
	sc.Step(StepTermInSearchBox, s.searchTermInSearchBox)
}

func assertionf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrAssertion, fmt.Sprintf(format, args...))
}

// current returns the scenario state once a browser session is attached.
func current(ctx context.Context) (*TestContext, error) {
	tc, err := FromContext(ctx)
	if err != nil {
		return nil, err
	}
	if tc.Page == nil {
		return nil, fmt.Errorf("%w: scenario %q has no browser session", ErrNoScenario, tc.Name)
	}
	return tc, nil
}

func (s *GoogleSteps) home(ctx context.Context) (*TestContext, *google.HomePage, error) {
	tc, err := current(ctx)
	if err != nil {
		return nil, nil, err
	}
	return tc, google.NewHomePage(tc.Page, s.baseURL), nil
}

func (s *GoogleSteps) results(ctx context.Context) (*TestContext, *google.ResultsPage, error) {
	tc, err := current(ctx)
	if err != nil {
		return nil, nil, err
	}
	return tc, google.NewResultsPage(tc.Page), nil
}

func (s *GoogleSteps) userIsOnHomePage(ctx context.Context) error {
	_, home, err := s.home(ctx)
	if err != nil {
		return err
	}
	if err := home.Open(ctx); err != nil {
		return err
	}
	if !home.IsLoaded(ctx) {
		return assertionf("Google page did not load correctly")
	}
	return nil
}

func (s *GoogleSteps) userSearchesFor(ctx context.Context, term string) error {
	tc, home, err := s.home(ctx)
	if err != nil {
		return err
	}
	if err := home.SearchFor(ctx, term); err != nil {
		return err
	}
	tc.SetSearchTerm(term)
	return nil
}

func (s *GoogleSteps) searchResultsAreDisplayed(ctx context.Context) error {
	_, results, err := s.results(ctx)
	if err != nil {
		return err
	}
	if !results.IsLoaded(ctx) {
		return assertionf("results page did not load correctly")
	}
	ok, err := results.HasResults(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return assertionf("no search results were found")
	}
	return nil
}

func (s *GoogleSteps) titleContainsSearchTerm(ctx context.Context) error {
	tc, results, err := s.results(ctx)
	if err != nil {
		return err
	}
	title, err := results.Title(ctx)
	if err != nil {
		return err
	}
	term := tc.SearchTerm()
	if !strings.Contains(title, term) {
		return assertionf("page title does not contain the search term, expected: contains %q, actual: %q", term, title)
	}
	return nil
}

func (s *GoogleSteps) searchTermInSearchBox(ctx context.Context, term string) error {
	_, results, err := s.results(ctx)
	if err != nil {
		return err
	}
	ok, err := results.IsSearchTermDisplayed(ctx, term)
	if err != nil {
		return err
	}
	if !ok {
		return assertionf("search term %q does not appear in the search box", term)
	}
	return nil
}
