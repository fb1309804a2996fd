package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/storage"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/storage/storagetest"
)

func newRepos(t *testing.T) *storage.Repositories {
	t.Helper()
	return storage.NewRepositories(storagetest.NewSQLite(t))
}

func TestLeadRepository_CreateGetDelete(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)

	lead := &storage.Lead{Name: "Asha Rao", Email: "asha@example.com", Role: "CTO", Company: "Nimbus", Skills: "go, k8s"}
	require.NoError(t, repos.Leads.Create(ctx, lead))
	assert.NotZero(t, lead.ID)
	assert.False(t, lead.CreatedAt.IsZero())

	got, err := repos.Leads.GetByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", got.Name)
	assert.Equal(t, "asha@example.com", got.Email)
	assert.Equal(t, []string{"go", "k8s"}, got.SkillsList())

	require.NoError(t, repos.Leads.Delete(ctx, lead.ID))
	_, err = repos.Leads.GetByID(ctx, lead.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, repos.Leads.Delete(ctx, lead.ID), storage.ErrNotFound)
}

func TestLeadRepository_CreateRequiresName(t *testing.T) {
	repos := newRepos(t)

	err := repos.Leads.Create(context.Background(), &storage.Lead{Name: "  "})
	assert.ErrorIs(t, err, storage.ErrInvalid)
}

func TestLeadRepository_NullEmailsDoNotCollide(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)

	require.NoError(t, repos.Leads.Create(ctx, &storage.Lead{Name: "First"}))
	require.NoError(t, repos.Leads.Create(ctx, &storage.Lead{Name: "Second"}))

	n, err := repos.Leads.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestLeadRepository_UpsertByEmail(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)

	lead, created, err := repos.Leads.UpsertByEmail(ctx, "dev@example.com", func(l *storage.Lead) {
		l.Name = "Dev"
		l.Role = "Engineer"
	})
	require.NoError(t, err)
	assert.True(t, created)

	require.NoError(t, repos.Leads.UpdateMatchScore(ctx, lead.ID, 70))

	again, created, err := repos.Leads.UpsertByEmail(ctx, "dev@example.com", func(l *storage.Lead) {
		l.Role = "Staff Engineer"
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, lead.ID, again.ID)

	stored, err := repos.Leads.GetByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dev", stored.Name)
	assert.Equal(t, "Staff Engineer", stored.Role)
	assert.Equal(t, 70.0, stored.MatchScore, "upsert must not touch match_score")
}

func TestLeadRepository_ListOrderAndSearch(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)

	leads := storagetest.SeedLeads(t, repos.Leads,
		&storage.Lead{Name: "Low", Email: "low@acme.io", Company: "Acme"},
		&storage.Lead{Name: "High", Email: "high@beta.io", Company: "Beta 100%", Skills: "Python"},
		&storage.Lead{Name: "Mid", Email: "mid@gamma.io", Company: "Gamma"},
	)
	require.NoError(t, repos.Leads.UpdateMatchScore(ctx, leads[1].ID, 90))
	require.NoError(t, repos.Leads.UpdateMatchScore(ctx, leads[2].ID, 40))

	all, err := repos.Leads.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"High", "Mid", "Low"}, []string{all[0].Name, all[1].Name, all[2].Name})

	limited, err := repos.Leads.ListLimit(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	byCompany, err := repos.Leads.Search(ctx, "ACME")
	require.NoError(t, err)
	require.Len(t, byCompany, 1)
	assert.Equal(t, "Low", byCompany[0].Name)

	bySkill, err := repos.Leads.Search(ctx, "python")
	require.NoError(t, err)
	require.Len(t, bySkill, 1)

	literalPercent, err := repos.Leads.Search(ctx, "100%")
	require.NoError(t, err)
	require.Len(t, literalPercent, 1)
	assert.Equal(t, "High", literalPercent[0].Name)

	everything, err := repos.Leads.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, everything, 3)
}

func TestUploadHistoryRepository_CreateList(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)

	first := &storage.UploadHistory{Filename: "a.xlsx", RecordsImported: 3}
	second := &storage.UploadHistory{Filename: "b.xlsx", RecordsUpdated: 2}
	require.NoError(t, repos.Uploads.Create(ctx, first))
	require.NoError(t, repos.Uploads.Create(ctx, second))

	list, err := repos.Uploads.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b.xlsx", list[0].Filename)
	assert.Equal(t, 3, list[1].RecordsImported)

	one, err := repos.Uploads.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)
}

func TestLead_SkillMatchPercent(t *testing.T) {
	lead := &storage.Lead{Skills: "Go, Kubernetes , ,SQL"}

	assert.Equal(t, 66.67, lead.SkillMatchPercent([]string{"go", "sql", "rust"}))
	assert.Equal(t, 0.0, lead.SkillMatchPercent(nil))
	assert.Equal(t, 100.0, lead.SkillMatchPercent([]string{" KUBERNETES "}))
}
