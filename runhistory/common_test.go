package runhistory

import (
	"testing"
	"time"

	"github.com/hairizuan-noorazman/ui-bdd/logger"
	"github.com/hairizuan-noorazman/ui-bdd/testutil"
	"gorm.io/gorm"
)

// setupTestStores returns stores over a freshly migrated in-memory database.
func setupTestStores(t *testing.T) (*gorm.DB, *SQLStore, *SQLAssetStore, *logger.TestLogger) {
	db := testutil.SetupMigratedDB(t)
	log := logger.NewTestLogger()

	return db, NewSQLStore(db, log), NewSQLAssetStore(db, log), log
}

// fixedClock returns a clock that advances by step on every call.
func fixedClock(start time.Time, step time.Duration) func() time.Time {
	next := start
	return func() time.Time {
		now := next
		next = next.Add(step)
		return now
	}
}
