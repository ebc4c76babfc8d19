// Package dbtest provides a migrated in-memory SQLite database for adapter tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"passvault/internal/platform/db"
)

// NewSQLite opens a private in-memory database with every migration applied.
func NewSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	opener, err := db.OpenerFor(db.DriverSQLite)
	require.NoError(t, err)

	gdb, err := opener(":memory:")
	require.NoError(t, err, "failed to initialize test database")

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	// every new connection would get its own empty :memory: database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(context.Background(), sqlDB, db.DriverSQLite), "failed to migrate")
	return gdb
}
