// Package runhistory persists executed scenarios and their screenshots.
package runhistory

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrRunNotFound is returned when a scenario run is not found.
	ErrRunNotFound = errors.New("scenario run not found")

	// ErrInvalidName is returned when the scenario name is empty.
	ErrInvalidName = errors.New("scenario name is required")

	// ErrInvalidBrowser is returned when the browser is empty.
	ErrInvalidBrowser = errors.New("browser is required")

	// ErrInvalidStatus is returned when status is invalid.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrRunNotRunning is returned when completing a run that already finished.
	ErrRunNotRunning = errors.New("scenario run is not running")
)

// Status is the lifecycle state of a scenario run.
type Status string

const (
	StatusRunning Status = "running"
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// IsValid checks if the status is valid.
func (s Status) IsValid() bool {
	switch s {
	case StatusRunning, StatusPassed, StatusFailed, StatusSkipped:
		return true
	default:
		return false
	}
}

// IsFinal checks if the status ends a run.
func (s Status) IsFinal() bool {
	return s == StatusPassed || s == StatusFailed || s == StatusSkipped
}

// ScenarioRun is one execution of a scenario.
type ScenarioRun struct {
	ID           uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	Name         string     `json:"name" gorm:"type:varchar(255);not null"`
	Feature      string     `json:"feature" gorm:"type:varchar(255);not null;default:''"`
	Tags         string     `json:"tags" gorm:"type:varchar(512);not null;default:''"`
	Browser      string     `json:"browser" gorm:"type:varchar(20);not null"`
	Backend      string     `json:"backend" gorm:"type:varchar(20);not null;default:''"`
	WorkerID     string     `json:"worker_id" gorm:"type:varchar(64);not null"`
	Status       Status     `json:"status" gorm:"type:varchar(20);not null;default:'running';index:idx_scenario_runs_status"`
	ErrorMessage string     `json:"error_message,omitempty" gorm:"type:text"`
	ReportName   string     `json:"report_name,omitempty" gorm:"type:varchar(255);not null;default:''"`
	DurationMS   int64      `json:"duration_ms" gorm:"not null;default:0"`
	StartedAt    time.Time  `json:"started_at" gorm:"not null;index:idx_scenario_runs_started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// BeforeCreate hook to generate UUID before creating a new run
func (r *ScenarioRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TagList splits the stored tags.
func (r *ScenarioRun) TagList() []string {
	if r.Tags == "" {
		return nil
	}
	return strings.Split(r.Tags, " ")
}

// JoinTags formats tags for storage.
func JoinTags(tags []string) string {
	return strings.Join(tags, " ")
}

// Validate checks if the run has valid required fields.
func (r *ScenarioRun) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrInvalidName
	}
	if r.Browser == "" {
		return ErrInvalidBrowser
	}
	if !r.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

// Complete records the final status. It fails if the run already finished.
func (r *ScenarioRun) Complete(status Status, errorMessage string, at time.Time) error {
	if r.Status != StatusRunning {
		return ErrRunNotRunning
	}
	if !status.IsFinal() {
		return ErrInvalidStatus
	}
	r.CompletedAt = &at
	r.Status = status
	r.ErrorMessage = errorMessage
	r.DurationMS = at.Sub(r.StartedAt).Milliseconds()
	return nil
}
