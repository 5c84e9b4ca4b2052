package runhistory

import (
	"context"

	"github.com/google/uuid"
)

// Store defines persistence operations for scenario runs.
type Store interface {
	// Create stores a new run. Status defaults to running.
	Create(ctx context.Context, run *ScenarioRun) error

	// Complete marks a run finished with its final status and error text.
	Complete(ctx context.Context, id uuid.UUID, status Status, errorMessage string) error

	// Update applies setters to the run and saves it.
	Update(ctx context.Context, id uuid.UUID, setters ...UpdateSetter) error

	// GetByID retrieves a run by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*ScenarioRun, error)

	// ListRecent returns runs newest first.
	ListRecent(ctx context.Context, filter ListFilter) ([]*ScenarioRun, error)

	// SetReport records the report file a batch of runs ended up in.
	SetReport(ctx context.Context, ids []uuid.UUID, reportName string) error
}

// ListFilter narrows ListRecent.
type ListFilter struct {
	Status Status
	Limit  int
	Offset int
}

// DefaultListLimit is used when ListFilter.Limit is not positive.
const DefaultListLimit = 50
