package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hairizuan-noorazman/ui-bdd/logger"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDir = "test-output/ExtentReports"

var baseTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// seed writes files into dir, each modified one minute after the previous.
func seed(t *testing.T, fs afero.Fs, names ...string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(testDir, 0755))
	for i, name := range names {
		path := filepath.Join(testDir, name)
		require.NoError(t, afero.WriteFile(fs, path, []byte(name), 0644))
		ts := baseTime.Add(time.Duration(i) * time.Minute)
		require.NoError(t, fs.Chtimes(path, ts, ts))
	}
}

func exists(t *testing.T, fs afero.Fs, name string) bool {
	t.Helper()
	ok, err := afero.Exists(fs, filepath.Join(testDir, name))
	require.NoError(t, err)
	return ok
}

func TestIsReportName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"ExtentReport_2024-01-01_10-00-00.html", true},
		{"ExtentReport_anything.html", true},
		{"ExtentReport.html", false},
		{"ExtentReport_2024.pdf", false},
		{"report_2024.html", false},
		{"notes.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsReportName(tt.name))
		})
	}
}

func TestManager_CleanupOldReports(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		files       []string
		retention   int
		wantResult  CleanupResult
		wantDeleted []string
		wantKept    []string
	}{
		{
			name:       "under retention",
			files:      []string{"ExtentReport_a.html", "ExtentReport_b.html"},
			retention:  10,
			wantResult: CleanupResult{Found: 2, Retained: 2},
			wantKept:   []string{"ExtentReport_a.html", "ExtentReport_b.html"},
		},
		{
			name:       "exactly at retention",
			files:      []string{"ExtentReport_a.html", "ExtentReport_b.html", "ExtentReport_c.html"},
			retention:  3,
			wantResult: CleanupResult{Found: 3, Retained: 3},
			wantKept:   []string{"ExtentReport_a.html", "ExtentReport_b.html", "ExtentReport_c.html"},
		},
		{
			name: "over retention deletes oldest",
			files: []string{
				"ExtentReport_2.html", "ExtentReport_5.html", "ExtentReport_1.html",
				"ExtentReport_4.html", "ExtentReport_3.html",
			},
			retention:   2,
			wantResult:  CleanupResult{Found: 5, Deleted: 3, Retained: 2},
			wantDeleted: []string{"ExtentReport_2.html", "ExtentReport_5.html", "ExtentReport_1.html"},
			wantKept:    []string{"ExtentReport_4.html", "ExtentReport_3.html"},
		},
		{
			name: "non-matching files are never touched",
			files: []string{
				"notes.txt", "ExtentReport.html", "ExtentReport_old.pdf",
				"ExtentReport_a.html", "ExtentReport_b.html",
			},
			retention:   1,
			wantResult:  CleanupResult{Found: 2, Deleted: 1, Retained: 1},
			wantDeleted: []string{"ExtentReport_a.html"},
			wantKept:    []string{"notes.txt", "ExtentReport.html", "ExtentReport_old.pdf", "ExtentReport_b.html"},
		},
		{
			name:        "zero retention deletes every report",
			files:       []string{"ExtentReport_a.html", "ExtentReport_b.html", "keep.css"},
			retention:   0,
			wantResult:  CleanupResult{Found: 2, Deleted: 2, Retained: 0},
			wantDeleted: []string{"ExtentReport_a.html", "ExtentReport_b.html"},
			wantKept:    []string{"keep.css"},
		},
		{
			name:       "empty directory",
			files:      nil,
			retention:  5,
			wantResult: CleanupResult{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			seed(t, fs, tt.files...)
			m := NewManager(fs, testDir, tt.retention, logger.NewTestLogger())

			result := m.CleanupOldReports(ctx)

			assert.Equal(t, tt.wantResult, result)
			for _, name := range tt.wantDeleted {
				assert.False(t, exists(t, fs, name), "expected %s to be deleted", name)
			}
			for _, name := range tt.wantKept {
				assert.True(t, exists(t, fs, name), "expected %s to be kept", name)
			}
		})
	}
}

func TestManager_CleanupOldReports_DeleteHook(t *testing.T) {
	fs := afero.NewMemMapFs()
	seed(t, fs, "ExtentReport_1.html", "ExtentReport_2.html", "ExtentReport_3.html")

	var removed []string
	hook := func(_ context.Context, name string) { removed = append(removed, name) }
	m := NewManager(fs, testDir, 1, logger.NewTestLogger(), WithDeleteHook(hook))

	m.CleanupOldReports(context.Background())

	assert.ElementsMatch(t, []string{"ExtentReport_1.html", "ExtentReport_2.html"}, removed)
}

func TestManager_CleanupOldReports_MissingDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	log := logger.NewTestLogger()
	m := NewManager(fs, testDir, 3, log)

	result := m.CleanupOldReports(context.Background())

	assert.Equal(t, CleanupResult{}, result)
	ok, err := afero.DirExists(fs, testDir)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, log.HasMessage("info", "created report directory"))
}

// removeFailFs fails Remove for one file name.
type removeFailFs struct {
	afero.Fs
	fail string
}

func (f removeFailFs) Remove(name string) error {
	if filepath.Base(name) == f.fail {
		return os.ErrPermission
	}
	return f.Fs.Remove(name)
}

func TestManager_CleanupOldReports_DeleteFailureContinues(t *testing.T) {
	mem := afero.NewMemMapFs()
	seed(t, mem, "ExtentReport_1.html", "ExtentReport_2.html", "ExtentReport_3.html", "ExtentReport_4.html")
	fs := removeFailFs{Fs: mem, fail: "ExtentReport_1.html"}
	log := logger.NewTestLogger()
	m := NewManager(fs, testDir, 1, log)

	result := m.CleanupOldReports(context.Background())

	assert.Equal(t, CleanupResult{Found: 4, Deleted: 2, Failed: 1, Retained: 2}, result)
	assert.True(t, exists(t, mem, "ExtentReport_1.html"))
	assert.False(t, exists(t, mem, "ExtentReport_2.html"))
	assert.False(t, exists(t, mem, "ExtentReport_3.html"))
	assert.True(t, exists(t, mem, "ExtentReport_4.html"))
	assert.True(t, log.HasMessage("warn", "failed to delete report"))
}

// openFailFs fails Open so the report directory cannot be read.
type openFailFs struct {
	afero.Fs
}

func (f openFailFs) Open(name string) (afero.File, error) {
	return nil, os.ErrPermission
}

func TestManager_ListingErrorIsNoop(t *testing.T) {
	ctx := context.Background()
	mem := afero.NewMemMapFs()
	names := []string{"ExtentReport_1.html", "ExtentReport_2.html", "ExtentReport_3.html"}
	seed(t, mem, names...)
	log := logger.NewTestLogger()
	m := NewManager(openFailFs{Fs: mem}, testDir, 1, log)

	assert.Equal(t, CleanupResult{}, m.CleanupOldReports(ctx))
	for _, name := range names {
		assert.True(t, exists(t, mem, name), "%s must survive a failed listing", name)
	}
	assert.True(t, log.HasMessage("error", "failed to list reports, skipping cleanup"))

	assert.Equal(t, 0, m.ReportCount(ctx))
	assert.True(t, log.HasMessage("error", "failed to count reports"))

	list := m.ListAllReports(ctx)
	assert.NotNil(t, list)
	assert.Empty(t, list)
	assert.True(t, log.HasMessage("error", "failed to list reports"))
}

func TestManager_ReportCount(t *testing.T) {
	ctx := context.Background()

	t.Run("missing directory", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		m := NewManager(fs, testDir, 3, logger.NewTestLogger())

		assert.Equal(t, 0, m.ReportCount(ctx))
		ok, _ := afero.DirExists(fs, testDir)
		assert.False(t, ok, "count must not create the directory")
	})

	t.Run("counts matching files only", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		seed(t, fs, "ExtentReport_a.html", "ExtentReport.html", "ExtentReport_b.html", "x.html")
		m := NewManager(fs, testDir, 3, logger.NewTestLogger())

		assert.Equal(t, 2, m.ReportCount(ctx))
	})
}

func TestManager_ListAllReports(t *testing.T) {
	ctx := context.Background()

	t.Run("newest first", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		seed(t, fs, "ExtentReport_b.html", "ExtentReport_c.html", "other.txt", "ExtentReport_a.html")
		m := NewManager(fs, testDir, 3, logger.NewTestLogger())

		assert.Equal(t, []string{
			"ExtentReport_a.html",
			"ExtentReport_c.html",
			"ExtentReport_b.html",
		}, m.ListAllReports(ctx))
	})

	t.Run("missing directory", func(t *testing.T) {
		m := NewManager(afero.NewMemMapFs(), testDir, 3, logger.NewTestLogger())
		assert.Empty(t, m.ListAllReports(ctx))
	})
}

func TestManager_TimestampedReportName(t *testing.T) {
	clock := func() time.Time { return time.Date(2024, 1, 15, 14, 30, 45, 0, time.UTC) }
	m := NewManager(afero.NewMemMapFs(), testDir, 3, logger.NewTestLogger(), WithClock(clock))

	assert.Equal(t, "ExtentReport_2024-01-15_14-30-45.html", m.TimestampedReportName())
	assert.True(t, IsReportName(m.TimestampedReportName()))
	assert.Equal(t, filepath.Join(testDir, "ExtentReport_2024-01-15_14-30-45.html"), m.ReportPath())
}

func TestManager_FinalizeReport(t *testing.T) {
	ctx := context.Background()
	clock := func() time.Time { return time.Date(2024, 1, 15, 14, 30, 45, 0, time.UTC) }
	const want = "ExtentReport_2024-01-15_14-30-45.html"

	t.Run("renames temp report", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		seed(t, fs, TempReportName)
		m := NewManager(fs, testDir, 3, logger.NewTestLogger(), WithClock(clock))

		assert.Equal(t, want, m.FinalizeReport(ctx))
		assert.False(t, exists(t, fs, TempReportName))
		data, err := afero.ReadFile(fs, filepath.Join(testDir, want))
		require.NoError(t, err)
		assert.Equal(t, TempReportName, string(data))
	})

	t.Run("replaces existing target", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		seed(t, fs, want, TempReportName)
		m := NewManager(fs, testDir, 3, logger.NewTestLogger(), WithClock(clock))

		assert.Equal(t, want, m.FinalizeReport(ctx))
		data, err := afero.ReadFile(fs, filepath.Join(testDir, want))
		require.NoError(t, err)
		assert.Equal(t, TempReportName, string(data))
		assert.Equal(t, 1, m.ReportCount(ctx))
	})

	t.Run("missing temp report", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		log := logger.NewTestLogger()
		m := NewManager(fs, testDir, 3, log, WithClock(clock))

		assert.Equal(t, "", m.FinalizeReport(ctx))
		assert.True(t, log.HasMessage("info", "no report found to rename"))
	})
}

// renameFailFs fails every rename.
type renameFailFs struct {
	afero.Fs
}

func (renameFailFs) Rename(string, string) error {
	return errors.New("device busy")
}

func TestManager_FinalizeReport_RenameFailure(t *testing.T) {
	mem := afero.NewMemMapFs()
	seed(t, mem, TempReportName)
	log := logger.NewTestLogger()
	m := NewManager(renameFailFs{Fs: mem}, testDir, 3, log)

	assert.Equal(t, "", m.FinalizeReport(context.Background()))
	assert.True(t, exists(t, mem, TempReportName))
	assert.True(t, log.HasMessage("error", "failed to rename report"))
}

func TestManager_OsFs(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "reports")
	require.NoError(t, os.MkdirAll(dir, 0755))

	names := []string{"ExtentReport_1.html", "ExtentReport_2.html", "ExtentReport_3.html"}
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0644))
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.log"), nil, 0644))

	m := NewManager(afero.NewOsFs(), dir, 2, logger.NewTestLogger())
	assert.Equal(t, []string{"ExtentReport_3.html", "ExtentReport_2.html", "ExtentReport_1.html"}, m.ListAllReports(ctx))

	result := m.CleanupOldReports(ctx)
	assert.Equal(t, 1, result.Deleted)

	_, err := os.Stat(filepath.Join(dir, "ExtentReport_1.html"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "unrelated.log"))
	assert.NoError(t, err)
}
