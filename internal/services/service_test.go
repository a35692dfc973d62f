package services

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/videoflow/videoflow-be/internal/database"
)

// newTestDB opens an in-memory SQLite database with the schema applied.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err)
	// More than one pool connection would mean more than one in-memory database.
	db.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func strPtr(s string) *string { return &s }

func int64Ptr(n int64) *int64 { return &n }
