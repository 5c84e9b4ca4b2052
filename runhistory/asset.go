package runhistory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrInvalidRunID is returned when run_id is not set.
	ErrInvalidRunID = errors.New("run_id is required")

	// ErrInvalidStorageKey is returned when storage_key is empty.
	ErrInvalidStorageKey = errors.New("storage_key is required")

	// ErrInvalidFileName is returned when file_name is empty.
	ErrInvalidFileName = errors.New("file_name is required")

	// ErrAssetNotFound is returned when a run asset is not found.
	ErrAssetNotFound = errors.New("run asset not found")
)

// RunAsset points at a stored artifact of a scenario run, usually a screenshot.
type RunAsset struct {
	ID         uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	RunID      uuid.UUID `json:"run_id" gorm:"type:char(36);not null;index:idx_run_assets_run_id"`
	FileName   string    `json:"file_name" gorm:"type:varchar(255);not null"`
	StorageKey string    `json:"storage_key" gorm:"type:varchar(512);not null"`
	MimeType   string    `json:"mime_type,omitempty" gorm:"type:varchar(128)"`
	FileSize   int64     `json:"file_size" gorm:"not null;default:0"`
	CreatedAt  time.Time `json:"created_at"`
}

// BeforeCreate hook to generate UUID before creating a new asset
func (a *RunAsset) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Validate checks if the asset has valid required fields.
func (a *RunAsset) Validate() error {
	if a.RunID == uuid.Nil {
		return ErrInvalidRunID
	}
	if a.StorageKey == "" {
		return ErrInvalidStorageKey
	}
	if a.FileName == "" {
		return ErrInvalidFileName
	}
	return nil
}

// AssetStore defines persistence operations for run assets.
type AssetStore interface {
	Create(ctx context.Context, asset *RunAsset) error
	GetByID(ctx context.Context, id uuid.UUID) (*RunAsset, error)
	ListByRun(ctx context.Context, runID uuid.UUID) ([]*RunAsset, error)
}
