//go:build integration

package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/storage"
)

func TestPostgresRepositories(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("lead_engine_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate postgres container: %v", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := storage.Open(ctx, storage.DriverPostgres, dsn, storage.OpenOptions{MaxOpenConns: 5})
	require.NoError(t, err)
	defer db.Close()

	// Applying the schema twice is a no-op.
	require.NoError(t, storage.Migrate(ctx, db, storage.DriverPostgres))

	repos := storage.NewRepositories(db)

	priya := &storage.Lead{Name: "Priya Shah", Email: "priya@payfast.io", Role: "CTO", Company: "PayFast", Skills: "go, payments"}
	require.NoError(t, repos.Leads.Create(ctx, priya))
	noEmail := &storage.Lead{Name: "Tom Lee", Role: "Chef"}
	require.NoError(t, repos.Leads.Create(ctx, noEmail))
	another := &storage.Lead{Name: "Sam Ode"}
	require.NoError(t, repos.Leads.Create(ctx, another), "leads without email do not collide")

	dup := &storage.Lead{Name: "Other", Email: "priya@payfast.io"}
	assert.Error(t, repos.Leads.Create(ctx, dup))

	require.NoError(t, repos.Leads.UpdateMatchScore(ctx, priya.ID, 45))

	leads, err := repos.Leads.List(ctx)
	require.NoError(t, err)
	require.Len(t, leads, 3)
	assert.Equal(t, priya.ID, leads[0].ID)
	assert.Equal(t, 45.0, leads[0].MatchScore)

	found, err := repos.Leads.Search(ctx, "PAYMENTS")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Priya Shah", found[0].Name)

	lead, created, err := repos.Leads.UpsertByEmail(ctx, "priya@payfast.io", func(l *storage.Lead) {
		l.Role = "CEO"
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, priya.ID, lead.ID)

	got, err := repos.Leads.GetByEmail(ctx, "priya@payfast.io")
	require.NoError(t, err)
	assert.Equal(t, "CEO", got.Role)
	assert.Equal(t, 45.0, got.MatchScore)

	require.NoError(t, repos.Leads.Delete(ctx, noEmail.ID))
	_, err = repos.Leads.GetByID(ctx, noEmail.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, repos.Uploads.Create(ctx, &storage.UploadHistory{Filename: "a.xlsx", RecordsImported: 2}))
	require.NoError(t, repos.Uploads.Create(ctx, &storage.UploadHistory{Filename: "b.xlsx", RecordsUpdated: 2}))
	history, err := repos.Uploads.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "b.xlsx", history[0].Filename)

	n, err := repos.Leads.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
