package runhistory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hairizuan-noorazman/ui-bdd/logger"
)

// Recorder writes scenario history for the suite. History must never fail a
// run, so store errors are logged and swallowed. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	runs   Store
	assets AssetStore
	logger logger.Logger
}

// NewRecorder combines the run and asset stores.
func NewRecorder(runs Store, assets AssetStore, log logger.Logger) *Recorder {
	return &Recorder{
		runs:   runs,
		assets: assets,
		logger: log.WithField("component", "runhistory"),
	}
}

// Start stores a running scenario and returns its id, or uuid.Nil if the
// run could not be stored.
func (r *Recorder) Start(ctx context.Context, run *ScenarioRun) uuid.UUID {
	if r == nil {
		return uuid.Nil
	}
	if err := r.runs.Create(ctx, run); err != nil {
		r.logger.Warn(ctx, "failed to record scenario start", map[string]interface{}{
			"error":    err.Error(),
			"scenario": run.Name,
		})
		return uuid.Nil
	}
	return run.ID
}

// Finish completes the run with id.
func (r *Recorder) Finish(ctx context.Context, id uuid.UUID, status Status, errorMessage string) {
	if r == nil || id == uuid.Nil {
		return
	}
	if err := r.runs.Complete(ctx, id, status, errorMessage); err != nil {
		r.logger.Warn(ctx, "failed to record scenario finish", map[string]interface{}{
			"error":  err.Error(),
			"run_id": id,
		})
	}
}

// AddAsset records a stored artifact of run id.
func (r *Recorder) AddAsset(ctx context.Context, id uuid.UUID, fileName, storageKey, mimeType string, size int64) {
	if r == nil || id == uuid.Nil {
		return
	}
	asset := &RunAsset{
		RunID:      id,
		FileName:   fileName,
		StorageKey: storageKey,
		MimeType:   mimeType,
		FileSize:   size,
		CreatedAt:  time.Now(),
	}
	if err := r.assets.Create(ctx, asset); err != nil {
		r.logger.Warn(ctx, "failed to record run asset", map[string]interface{}{
			"error":     err.Error(),
			"run_id":    id,
			"file_name": fileName,
		})
	}
}

// SetReport links the runs to the finalized report file.
func (r *Recorder) SetReport(ctx context.Context, ids []uuid.UUID, reportName string) {
	if r == nil || reportName == "" {
		return
	}
	if err := r.runs.SetReport(ctx, ids, reportName); err != nil {
		r.logger.Warn(ctx, "failed to link runs to report", map[string]interface{}{
			"error":  err.Error(),
			"report": reportName,
		})
	}
}
