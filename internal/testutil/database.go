// Package testutil provides shared helpers for tests that need a database.
package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/VoidMesh/randint/internal/db"
)

// TestDB is a migrated sqlite database living in the test's temp directory.
type TestDB struct {
	DB      *sql.DB
	Queries *db.LoggingQueries
	Path    string
}

// SetupTestDB creates a fresh database and closes it when the test ends.
//
// Usage:
//
//	testDB := testutil.SetupTestDB(t)
//	manager := note.NewManager(testDB.DB)
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	database, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	require.NoError(t, err, "failed to open test database")

	// a single connection keeps transactions from racing on the file lock
	database.SetMaxOpenConns(1)

	require.NoError(t, database.Ping(), "failed to ping test database")
	require.NoError(t, db.Migrate(database), "failed to migrate test database")

	t.Cleanup(func() {
		database.Close()
	})

	return &TestDB{
		DB:      database,
		Queries: db.NewLoggingQueries(database),
		Path:    path,
	}
}
