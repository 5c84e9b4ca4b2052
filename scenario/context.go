// Package scenario binds Gherkin features to page objects and runs them with
// godog.
package scenario

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hairizuan-noorazman/ui-bdd/driver"
	"github.com/hairizuan-noorazman/ui-bdd/page"
	"github.com/hairizuan-noorazman/ui-bdd/report"
)

// ErrNoScenario is returned by a step that runs outside a scenario.
var ErrNoScenario = errors.New("no scenario context")

// TestContext is the state one running scenario shares between its hooks
// and steps.
type TestContext struct {
	Worker    driver.WorkerID
	Session   driver.Session
	Page      *page.Base
	Name      string
	Feature   string
	Tags      []string
	RunID     uuid.UUID
	StartedAt time.Time

	mu          sync.Mutex
	searchTerm  string
	attachments []report.Attachment
}

// SearchTerm returns the term of the last search step.
func (tc *TestContext) SearchTerm() string {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.searchTerm
}

func (tc *TestContext) SetSearchTerm(term string) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.searchTerm = term
}

// Attach adds a PNG to the scenario's report entry.
func (tc *TestContext) Attach(title string, data []byte) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.attachments = append(tc.attachments, report.Attachment{Title: title, Data: data})
}

func (tc *TestContext) Attachments() []report.Attachment {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return append([]report.Attachment(nil), tc.attachments...)
}

type testContextKey struct{}

// WithTestContext returns a context carrying tc.
func WithTestContext(ctx context.Context, tc *TestContext) context.Context {
	return context.WithValue(ctx, testContextKey{}, tc)
}

// FromContext returns the scenario state stored by the Before hook.
func FromContext(ctx context.Context) (*TestContext, error) {
	tc, ok := ctx.Value(testContextKey{}).(*TestContext)
	if !ok || tc == nil {
		return nil, ErrNoScenario
	}
	return tc, nil
}
