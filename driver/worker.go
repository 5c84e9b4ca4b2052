package driver

import (
	"context"

	"github.com/google/uuid"
)

// WorkerID identifies the scenario worker that owns a session.
type WorkerID string

// NewWorkerID returns a fresh random worker id.
func NewWorkerID() WorkerID {
	return WorkerID(uuid.New().String())
}

type workerKey struct{}

// WithWorker returns a copy of ctx carrying id.
func WithWorker(ctx context.Context, id WorkerID) context.Context {
	return context.WithValue(ctx, workerKey{}, id)
}

// WorkerFromContext returns the worker id stored by WithWorker.
func WorkerFromContext(ctx context.Context) (WorkerID, bool) {
	id, ok := ctx.Value(workerKey{}).(WorkerID)
	return id, ok && id != ""
}
