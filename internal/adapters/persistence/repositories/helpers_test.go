package repositories_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"saeta-access/internal/adapters/persistence/models"
	"saeta-access/internal/adapters/persistence/repositories"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// t0 is Monday 2024-03-04 10:00 UTC
var t0 = time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)

// openTestDB returns a migrated SQLite database in a temp file. It is closed
// when the test finishes.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "access.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One writer at a time, as SQLite wants it
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, models.AutoMigrate(db))
	return db
}

func newTestStore(t *testing.T) (*repositories.Store, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	return repositories.NewStore(db), db
}

// insertUser writes a user row directly
func insertUser(t *testing.T, db *gorm.DB, id uint, status string, expiry *time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&models.User{
		ID:               id,
		FullName:         "User",
		Status:           status,
		MembershipExpiry: expiry,
	}).Error)
}

func idsOf[T any](items []T, id func(T) uint) []uint {
	out := make([]uint, 0, len(items))
	for _, it := range items {
		out = append(out, id(it))
	}
	return out
}

func timePtr(t time.Time) *time.Time { return &t }

func ctx() context.Context { return context.Background() }
