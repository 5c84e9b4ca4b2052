package runhistory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hairizuan-noorazman/ui-bdd/logger"
	"gorm.io/gorm"
)

// SQLStore implements Store with GORM on SQLite or MySQL.
type SQLStore struct {
	db     *gorm.DB
	logger logger.Logger
	now    func() time.Time
}

// NewSQLStore creates a new GORM-backed run store.
func NewSQLStore(db *gorm.DB, log logger.Logger) *SQLStore {
	return &SQLStore{
		db:     db,
		logger: log,
		now:    time.Now,
	}
}

// Create creates a new run in the database.
func (s *SQLStore) Create(ctx context.Context, run *ScenarioRun) error {
	if run.Status == "" {
		run.Status = StatusRunning
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = s.now()
	}

	if err := run.Validate(); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		s.logger.Error(ctx, "failed to create scenario run", map[string]interface{}{
			"error":    err.Error(),
			"scenario": run.Name,
		})
		return err
	}

	s.logger.Debug(ctx, "scenario run created", map[string]interface{}{
		"run_id":   run.ID,
		"scenario": run.Name,
	})

	return nil
}

// GetByID retrieves a run by its ID.
func (s *SQLStore) GetByID(ctx context.Context, id uuid.UUID) (*ScenarioRun, error) {
	var run ScenarioRun
	err := s.db.WithContext(ctx).
		Where("id = ?", id).
		First(&run).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		s.logger.Error(ctx, "failed to get scenario run by ID", map[string]interface{}{
			"error":  err.Error(),
			"run_id": id,
		})
		return nil, err
	}

	return &run, nil
}

// Complete marks a run as finished.
func (s *SQLStore) Complete(ctx context.Context, id uuid.UUID, status Status, errorMessage string) error {
	return s.Update(ctx, id, SetCompleted(status, errorMessage, s.now()))
}

// Update applies setters to a run and saves it.
func (s *SQLStore) Update(ctx context.Context, id uuid.UUID, setters ...UpdateSetter) error {
	run, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	for _, setter := range setters {
		if err := setter(run); err != nil {
			return err
		}
	}

	if err := s.db.WithContext(ctx).Save(run).Error; err != nil {
		s.logger.Error(ctx, "failed to update scenario run", map[string]interface{}{
			"error":  err.Error(),
			"run_id": id,
		})
		return err
	}

	s.logger.Debug(ctx, "scenario run updated", map[string]interface{}{
		"run_id": id,
		"status": run.Status,
	})

	return nil
}

// ListRecent returns runs ordered by start time, newest first.
func (s *SQLStore) ListRecent(ctx context.Context, filter ListFilter) ([]*ScenarioRun, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := s.db.WithContext(ctx).Model(&ScenarioRun{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var runs []*ScenarioRun
	err := query.
		Order("started_at DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&runs).Error

	if err != nil {
		s.logger.Error(ctx, "failed to list scenario runs", map[string]interface{}{
			"error":  err.Error(),
			"limit":  limit,
			"offset": filter.Offset,
		})
		return nil, err
	}

	return runs, nil
}

// SetReport stores reportName on every run in ids.
func (s *SQLStore) SetReport(ctx context.Context, ids []uuid.UUID, reportName string) error {
	if len(ids) == 0 {
		return nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}

	err := s.db.WithContext(ctx).
		Model(&ScenarioRun{}).
		Where("id IN ?", keys).
		Update("report_name", reportName).Error
	if err != nil {
		s.logger.Error(ctx, "failed to set report on scenario runs", map[string]interface{}{
			"error":  err.Error(),
			"report": reportName,
			"runs":   len(ids),
		})
		return err
	}

	return nil
}
