package testutil

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/vytor/valentine/internal/db"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied,
// seed content included.
func NewTestDB(t *testing.T) *sql.DB {
	conn, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	// Every connection to :memory: is a separate database.
	conn.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(context.Background(), conn), "failed to apply migrations")
	return conn
}

// NewEmptyTestDB is NewTestDB with the seeded reasons and gallery removed.
func NewEmptyTestDB(t *testing.T) *sql.DB {
	conn := NewTestDB(t)
	_, err := conn.Exec(`DELETE FROM reasons; DELETE FROM gallery_items;`)
	require.NoError(t, err)
	return conn
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}
