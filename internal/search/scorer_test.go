package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/domain"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/storage"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/storage/storagetest"
)

func newTestScorer(t *testing.T, leads ...*storage.Lead) (*Scorer, *storage.LeadRepository) {
	t.Helper()
	repo := storage.NewLeadRepository(storagetest.NewSQLite(t))
	storagetest.SeedLeads(t, repo, leads...)
	return NewScorer(repo, nil), repo
}

func TestSearch_SingleSkillToken(t *testing.T) {
	scorer, repo := newTestScorer(t, &storage.Lead{Name: "Asha", Skills: "kubernetes"})

	res, err := scorer.Search(context.Background(), "kubernetes")
	require.NoError(t, err)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, 45.0, res.Matches[0].Score)
	assert.Equal(t, []string{"Skills: kubernetes"}, res.Matches[0].Context)

	stored, err := repo.GetByID(context.Background(), res.Matches[0].Lead.ID)
	require.NoError(t, err)
	assert.Equal(t, 45.0, stored.MatchScore)
}

func TestSearch_ClampsToMax(t *testing.T) {
	scorer, _ := newTestScorer(t, &storage.Lead{
		Name:     "Ravi",
		Role:     "Cloud Architect",
		Skills:   "cloud, terraform",
		Company:  "Cloud Nine",
		Location: "Cloud City",
		Notes:    "cloud migration lead",
	})

	res, err := scorer.Search(context.Background(), "cloud")
	require.NoError(t, err)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, 100.0, res.Matches[0].Score)
	assert.Equal(t, []string{
		"Role: cloud", "Skills: cloud", "Company: cloud", "Location: cloud", "Notes: cloud",
	}, res.Matches[0].Context)
}

func TestSearch_FieldWeights(t *testing.T) {
	tests := []struct {
		name  string
		lead  *storage.Lead
		query string
		want  float64
	}{
		{"role two tokens", &storage.Lead{Name: "a", Role: "Python Developer"}, "python developer", 40},
		{"company only", &storage.Lead{Name: "b", Company: "Acme Corp"}, "acme", 25},
		{"location only", &storage.Lead{Name: "c", Location: "Bangalore"}, "bangalore", 15},
		{"notes only", &storage.Lead{Name: "d", Notes: "met at fintech summit"}, "summit", 10},
		{"role and company", &storage.Lead{Name: "e", Role: "CTO", Company: "Fintech Labs"}, "cto fintech", 60},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			scorer, _ := newTestScorer(t, tc.lead)
			res, err := scorer.Search(context.Background(), tc.query)
			require.NoError(t, err)
			require.Len(t, res.Matches, 1)
			assert.Equal(t, tc.want, res.Matches[0].Score)
		})
	}
}

func TestSearch_ExcludedLeadsUntouched(t *testing.T) {
	ctx := context.Background()
	scorer, repo := newTestScorer(t,
		&storage.Lead{Name: "Match", Skills: "golang"},
		&storage.Lead{Name: "Miss", Skills: "cobol"},
	)

	leads, err := repo.List(ctx)
	require.NoError(t, err)
	var missID int64
	for _, l := range leads {
		if l.Name == "Miss" {
			missID = l.ID
		}
	}
	require.NoError(t, repo.UpdateMatchScore(ctx, missID, 77))

	res, err := scorer.Search(ctx, "golang")
	require.NoError(t, err)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, "Match", res.Matches[0].Lead.Name)

	stored, err := repo.GetByID(ctx, missID)
	require.NoError(t, err)
	assert.Equal(t, 77.0, stored.MatchScore, "non-matching lead keeps its previous score")
}

func TestSearch_OrderAndIdempotence(t *testing.T) {
	ctx := context.Background()
	scorer, _ := newTestScorer(t,
		&storage.Lead{Name: "Low", Location: "Pune"},
		&storage.Lead{Name: "High", Skills: "pune"},
		&storage.Lead{Name: "Mid", Company: "Pune Systems"},
	)

	first, err := scorer.Search(ctx, "pune")
	require.NoError(t, err)
	second, err := scorer.Search(ctx, "pune")
	require.NoError(t, err)

	names := func(r *Result) []string {
		var out []string
		for _, m := range r.Matches {
			out = append(out, m.Lead.Name)
		}
		return out
	}
	assert.Equal(t, []string{"High", "Mid", "Low"}, names(first))
	assert.Equal(t, names(first), names(second))
	for i := range first.Matches {
		assert.Equal(t, first.Matches[i].Score, second.Matches[i].Score)
	}
}

func TestSearch_Stats(t *testing.T) {
	leads := []*storage.Lead{
		{Name: "a", Role: "Data Engineer", Company: "Acme Analytics", Location: "Pune", Skills: "python"},
		{Name: "b", Role: "Data Scientist", Company: "Acme Analytics", Location: "Pune", Skills: "python, spark"},
		{Name: "c", Role: "Data Analyst", Company: "Acme Analytics", Location: "Pune", Skills: "excel"},
		{Name: "d", Role: "Chef", Company: "Bistro", Location: "Goa"},
	}
	scorer, _ := newTestScorer(t, leads...)

	res, err := scorer.Search(context.Background(), "Python, data & rust")
	require.NoError(t, err)
	require.Len(t, res.Matches, 3)

	assert.Equal(t, []KeywordCount{{Word: "data", Count: 3}, {Word: "python", Count: 2}}, res.Stats.Matched)
	assert.Equal(t, []string{"rust"}, res.Stats.Missing)
	assert.Equal(t, 66.7, res.Stats.MatchRate)
	// "data" appears in every role but is a query token; "acme", "analytics" and "pune" recur.
	assert.Equal(t, []KeywordCount{
		{Word: "acme", Count: 3},
		{Word: "analytics", Count: 3},
		{Word: "pune", Count: 3},
	}, res.Stats.Partial)
}

func TestSearch_NoUsableTokens(t *testing.T) {
	scorer, _ := newTestScorer(t, &storage.Lead{Name: "a", Skills: "ai, ml"})

	res, err := scorer.Search(context.Background(), "AI ML")
	require.NoError(t, err)
	assert.Empty(t, res.Matches)
	assert.Equal(t, 0.0, res.Stats.MatchRate)
	assert.Empty(t, res.Stats.Missing)
}

func TestSearch_EmptyQuery(t *testing.T) {
	scorer, _ := newTestScorer(t)

	_, err := scorer.Search(context.Background(), "   ")
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeValidation))
}
