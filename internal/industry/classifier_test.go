package industry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/storage"
)

func TestInfer(t *testing.T) {
	tests := []struct {
		name                 string
		role, company, notes string
		want                 string
	}{
		{"software engineer", "Senior Software Engineer", "", "", "technology"},
		{"no keyword", "Chef", "Bistro", "", Other},
		{"empty", "", "", "", Other},
		{"technology precedes finance", "Relationship Manager", "National Bank", "builds software", "technology"},
		{"finance only", "Bank Teller", "HDFC", "", "finance"},
		{"healthcare", "Nurse", "Clinical Research Org", "", "healthcare"},
		{"multi word keyword", "Broker", "", "focus on real estate deals", "real_estate"},
		{"keywords match inside words", "Nurse", "City Hospital", "", "technology"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Infer(tc.role, tc.company, tc.notes))
		})
	}
}

func TestTaxonomyOrder(t *testing.T) {
	want := []string{
		"technology", "finance", "healthcare", "manufacturing", "retail", "consulting",
		"real_estate", "education", "energy", "telecommunications", "media", "automotive",
		"aerospace", "logistics", "hospitality", "legal", "insurance", "agriculture",
		"gaming", "government",
	}
	got := make([]string, 0, len(Taxonomy))
	for _, s := range Taxonomy {
		got = append(got, s.Label)
	}
	assert.Equal(t, want, got)
}

func TestDistribution(t *testing.T) {
	assert.Empty(t, Distribution(nil))

	leads := []*storage.Lead{
		{Role: "Developer"},
		{Role: "Software Architect"},
		{Role: "Bank Teller"},
		{Role: "Chef"},
	}
	shares := Distribution(leads)
	require.Len(t, shares, 3)
	assert.Equal(t, Share{Name: "Technology", Label: "technology", Count: 2, Percentage: 50}, shares[0])
	assert.Equal(t, "Finance", shares[1].Name)
	assert.Equal(t, 25.0, shares[1].Percentage)
	assert.Equal(t, "Other", shares[2].Name)
}

func TestDistribution_TopFiveRounded(t *testing.T) {
	roles := []string{"developer", "developer", "bank", "clinical", "factory", "store", "consultant"}
	var leads []*storage.Lead
	for _, r := range roles {
		leads = append(leads, &storage.Lead{Role: r})
	}

	shares := Distribution(leads)
	require.Len(t, shares, 5)
	assert.Equal(t, 28.6, shares[0].Percentage)
	assert.Equal(t, 14.3, shares[1].Percentage)
	// ties keep first-seen order
	assert.Equal(t, []string{"technology", "finance", "healthcare", "manufacturing", "retail"},
		[]string{shares[0].Label, shares[1].Label, shares[2].Label, shares[3].Label, shares[4].Label})
}

func TestFormatLabel(t *testing.T) {
	assert.Equal(t, "Real Estate", FormatLabel("real_estate"))
	assert.Equal(t, "Telecommunications", FormatLabel("telecommunications"))
	assert.Equal(t, "Other", FormatLabel("other"))
}

func TestAnalyze(t *testing.T) {
	leads := []*storage.Lead{
		{Role: "CTO", Company: "Nimbus", Location: "Pune"},
		{Role: "cto", Company: "Acme", Location: "pune"},
		{Role: "", Company: "Nimbus", Location: ""},
	}

	comp := Analyze(leads)
	assert.Equal(t, 3, comp.TotalLeads)
	assert.Equal(t, []Entry{{Key: "cto", Count: 2}}, comp.TopRoles)
	assert.Equal(t, []Entry{{Key: "nimbus", Count: 2}, {Key: "acme", Count: 1}}, comp.TopCompanies)
	assert.Equal(t, []Entry{{Key: "pune", Count: 2}}, comp.TopLocations)
	assert.Equal(t, []string{"nimbus"}, Keys(comp.TopCompanies, 1))
	assert.Len(t, Keys(comp.TopRoles, 5), 1)
}
