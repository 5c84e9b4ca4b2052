// Package report manages the HTML run reports: writing them, giving them
// timestamped names and pruning old ones beyond a retention count.
package report

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hairizuan-noorazman/ui-bdd/logger"
	"github.com/samber/lo"
	"github.com/spf13/afero"
)

const (
	// Prefix and Suffix delimit the names of retained reports.
	Prefix = "ExtentReport_"
	Suffix = ".html"

	// TempReportName is the file written during a run, renamed once it finishes.
	TempReportName = "ExtentReport.html"

	// TimestampLayout formats the timestamp part of a report name.
	TimestampLayout = "2006-01-02_15-04-05"
)

// IsReportName reports whether name follows the ExtentReport_*.html pattern.
func IsReportName(name string) bool {
	return strings.HasPrefix(name, Prefix) && strings.HasSuffix(name, Suffix)
}

// CleanupResult summarizes one retention sweep.
type CleanupResult struct {
	Found    int
	Deleted  int
	Failed   int
	Retained int
}

// Manager applies the retention policy to one report directory.
type Manager struct {
	fs        afero.Fs
	dir       string
	retention int
	now       func() time.Time
	onDelete  func(ctx context.Context, name string)
	logger    logger.Logger
}

// Option customizes a Manager.
type Option func(*Manager)

// WithClock replaces the wall clock used for report names.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithDeleteHook calls fn with the name of every report the sweep deleted,
// for example to drop its archived copy.
func WithDeleteHook(fn func(ctx context.Context, name string)) Option {
	return func(m *Manager) {
		m.onDelete = fn
	}
}

// NewManager creates a manager for dir that keeps at most retention reports.
func NewManager(fs afero.Fs, dir string, retention int, log logger.Logger, opts ...Option) *Manager {
	m := &Manager{
		fs:        fs,
		dir:       dir,
		retention: retention,
		now:       time.Now,
		logger:    log.WithField("report_dir", dir),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Dir returns the managed report directory.
func (m *Manager) Dir() string {
	return m.dir
}

// Retention returns the number of reports kept by a sweep.
func (m *Manager) Retention() int {
	return m.retention
}

type reportFile struct {
	name    string
	path    string
	created time.Time
}

// list returns the matching reports in directory order. exists is false when
// the directory is missing.
func (m *Manager) list() (files []reportFile, exists bool, err error) {
	exists, err = afero.DirExists(m.fs, m.dir)
	if err != nil || !exists {
		return nil, false, err
	}

	infos, err := afero.ReadDir(m.fs, m.dir)
	if err != nil {
		return nil, true, err
	}

	matching := lo.Filter(infos, func(fi os.FileInfo, _ int) bool {
		return !fi.IsDir() && IsReportName(fi.Name())
	})
	files = lo.Map(matching, func(fi os.FileInfo, _ int) reportFile {
		path := filepath.Join(m.dir, fi.Name())
		return reportFile{
			name:    fi.Name(),
			path:    path,
			created: creationTime(m.fs, path, fi),
		}
	})
	return files, true, nil
}

// CleanupOldReports deletes the oldest reports until at most the retention
// count remain. A missing directory is created. Errors are logged and never
// returned; a failed delete does not stop the sweep.
func (m *Manager) CleanupOldReports(ctx context.Context) CleanupResult {
	files, exists, err := m.list()
	if err != nil {
		m.logger.Error(ctx, "failed to list reports, skipping cleanup", map[string]interface{}{
			"error": err.Error(),
		})
		return CleanupResult{}
	}

	if !exists {
		if err := m.fs.MkdirAll(m.dir, 0755); err != nil {
			m.logger.Error(ctx, "failed to create report directory", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			m.logger.Info(ctx, "created report directory", nil)
		}
		return CleanupResult{}
	}

	result := CleanupResult{Found: len(files), Retained: len(files)}
	if len(files) <= m.retention {
		m.logger.Info(ctx, "report cleanup not needed", map[string]interface{}{
			"found":     len(files),
			"retention": m.retention,
		})
		return result
	}

	// Ties on creation time have no defined order.
	sort.Slice(files, func(i, j int) bool {
		return files[i].created.Before(files[j].created)
	})

	toDelete := len(files) - m.retention
	m.logger.Info(ctx, "deleting oldest reports", map[string]interface{}{
		"found":     len(files),
		"retention": m.retention,
		"to_delete": toDelete,
	})

	for _, f := range files[:toDelete] {
		if err := m.fs.Remove(f.path); err != nil {
			result.Failed++
			m.logger.Warn(ctx, "failed to delete report", map[string]interface{}{
				"file":  f.name,
				"error": err.Error(),
			})
			continue
		}
		result.Deleted++
		m.logger.Debug(ctx, "deleted old report", map[string]interface{}{
			"file": f.name,
		})
		if m.onDelete != nil {
			m.onDelete(ctx, f.name)
		}
	}
	result.Retained = result.Found - result.Deleted

	m.logger.Info(ctx, "report cleanup completed", map[string]interface{}{
		"deleted":  result.Deleted,
		"failed":   result.Failed,
		"retained": result.Retained,
	})
	return result
}

// ReportCount returns the number of matching reports, 0 if the directory is missing.
func (m *Manager) ReportCount(ctx context.Context) int {
	files, _, err := m.list()
	if err != nil {
		m.logger.Error(ctx, "failed to count reports", map[string]interface{}{
			"error": err.Error(),
		})
		return 0
	}
	return len(files)
}

// ListAllReports returns the matching report names, newest first.
func (m *Manager) ListAllReports(ctx context.Context) []string {
	files, _, err := m.list()
	if err != nil {
		m.logger.Error(ctx, "failed to list reports", map[string]interface{}{
			"error": err.Error(),
		})
		return []string{}
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].created.After(files[j].created)
	})
	return lo.Map(files, func(f reportFile, _ int) string { return f.name })
}

// TimestampedReportName returns a new report name for the current time.
func (m *Manager) TimestampedReportName() string {
	return Prefix + m.now().Format(TimestampLayout) + Suffix
}

// ReportPath returns the report directory joined with a fresh timestamped name.
func (m *Manager) ReportPath() string {
	return filepath.Join(m.dir, m.TimestampedReportName())
}

// TempReportPath returns where the in-progress report is written.
func (m *Manager) TempReportPath() string {
	return filepath.Join(m.dir, TempReportName)
}

// FinalizeReport renames the in-progress report to a timestamped name and
// returns the new name. It returns "" when there is nothing to rename or the
// rename fails; failures are logged only.
func (m *Manager) FinalizeReport(ctx context.Context) string {
	source := m.TempReportPath()
	exists, err := afero.Exists(m.fs, source)
	if err != nil || !exists {
		m.logger.Info(ctx, "no report found to rename", map[string]interface{}{
			"path": source,
		})
		return ""
	}

	name := m.TimestampedReportName()
	target := filepath.Join(m.dir, name)

	if ok, _ := afero.Exists(m.fs, target); ok {
		if err := m.fs.Remove(target); err != nil {
			m.logger.Error(ctx, "failed to replace existing report", map[string]interface{}{
				"file":  name,
				"error": err.Error(),
			})
			return ""
		}
	}

	if err := m.fs.Rename(source, target); err != nil {
		m.logger.Error(ctx, "failed to rename report", map[string]interface{}{
			"from":  TempReportName,
			"to":    name,
			"error": err.Error(),
		})
		return ""
	}

	m.logger.Info(ctx, "report renamed", map[string]interface{}{
		"from":          TempReportName,
		"to":            name,
		"total_reports": m.ReportCount(ctx),
	})
	return name
}
