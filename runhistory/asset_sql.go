package runhistory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hairizuan-noorazman/ui-bdd/logger"
	"gorm.io/gorm"
)

// SQLAssetStore implements AssetStore with GORM.
type SQLAssetStore struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewSQLAssetStore creates a new GORM-backed asset store.
func NewSQLAssetStore(db *gorm.DB, log logger.Logger) *SQLAssetStore {
	return &SQLAssetStore{
		db:     db,
		logger: log,
	}
}

// Create creates a new asset in the database.
func (s *SQLAssetStore) Create(ctx context.Context, asset *RunAsset) error {
	if err := asset.Validate(); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Create(asset).Error; err != nil {
		s.logger.Error(ctx, "failed to create run asset", map[string]interface{}{
			"error":     err.Error(),
			"run_id":    asset.RunID,
			"file_name": asset.FileName,
		})
		return err
	}

	s.logger.Debug(ctx, "run asset created", map[string]interface{}{
		"asset_id":  asset.ID,
		"run_id":    asset.RunID,
		"file_name": asset.FileName,
	})

	return nil
}

// GetByID retrieves an asset by its ID.
func (s *SQLAssetStore) GetByID(ctx context.Context, id uuid.UUID) (*RunAsset, error) {
	var asset RunAsset
	err := s.db.WithContext(ctx).
		Where("id = ?", id).
		First(&asset).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssetNotFound
		}
		s.logger.Error(ctx, "failed to get run asset by ID", map[string]interface{}{
			"error":    err.Error(),
			"asset_id": id,
		})
		return nil, err
	}

	return &asset, nil
}

// ListByRun returns the assets of a run in creation order.
func (s *SQLAssetStore) ListByRun(ctx context.Context, runID uuid.UUID) ([]*RunAsset, error) {
	var assets []*RunAsset
	err := s.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("created_at ASC").
		Find(&assets).Error

	if err != nil {
		s.logger.Error(ctx, "failed to list run assets", map[string]interface{}{
			"error":  err.Error(),
			"run_id": runID,
		})
		return nil, err
	}

	return assets, nil
}
