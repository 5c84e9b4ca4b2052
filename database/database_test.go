package database

import (
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"
)

func TestConnect_SQLiteCreatesDirectory(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "history.db")

	db, err := Connect(Config{Driver: DriverSQLite, DSN: dsn, LogLevel: gormlogger.Silent})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	assert.FileExists(t, dsn)
}

func TestConnect_UnsupportedDriver(t *testing.T) {
	_, err := Connect(Config{Driver: "postgres", DSN: "x"})
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestEnsureSQLiteDir(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
	}{
		{name: "memory", dsn: ":memory:"},
		{name: "shared memory uri", dsn: "file::memory:?cache=shared"},
		{name: "bare file", dsn: "history.db"},
		{name: "empty", dsn: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, ensureSQLiteDir(tt.dsn))
		})
	}
}

func TestMigrations_UpAndDown(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "history.db")
	db, err := Connect(Config{Driver: DriverSQLite, DSN: dsn, MaxOpenConns: 1, LogLevel: gormlogger.Silent})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	require.NoError(t, RunMigrations(sqlDB, DriverSQLite))
	assert.True(t, db.Migrator().HasTable("scenario_runs"))
	assert.True(t, db.Migrator().HasTable("run_assets"))

	version, dirty, err := Version(sqlDB, DriverSQLite)
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	// a second run is a no-op
	require.NoError(t, RunMigrations(sqlDB, DriverSQLite))

	require.NoError(t, RollbackMigration(sqlDB, DriverSQLite))
	assert.False(t, db.Migrator().HasTable("run_assets"))
	assert.True(t, db.Migrator().HasTable("scenario_runs"))

	version, _, err = Version(sqlDB, DriverSQLite)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
}

func TestMigrations_EmbeddedPerDriver(t *testing.T) {
	for _, driver := range []string{DriverSQLite, DriverMySQL} {
		t.Run(driver, func(t *testing.T) {
			files, err := Migrations(driver)
			require.NoError(t, err)

			matches, err := fs.Glob(files, "*.up.sql")
			require.NoError(t, err)
			assert.Len(t, matches, 2)
		})
	}

	_, err := Migrations("oracle")
	assert.Error(t, err)
}
