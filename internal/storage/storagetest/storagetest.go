// Package storagetest opens throwaway databases for package tests.
package storagetest

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/storage"
)

// NewSQLite returns a migrated in-memory sqlite database closed when the test ends.
func NewSQLite(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// Every pooled connection would get its own empty in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, storage.Migrate(context.Background(), db, storage.DriverSQLite))
	return db
}

// SeedLeads creates the given leads in order and returns them with IDs filled in.
func SeedLeads(t *testing.T, repo *storage.LeadRepository, leads ...*storage.Lead) []*storage.Lead {
	t.Helper()

	ctx := context.Background()
	for _, l := range leads {
		require.NoError(t, repo.Create(ctx, l))
	}
	return leads
}
