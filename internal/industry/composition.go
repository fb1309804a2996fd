package industry

import (
	"strings"

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/storage"
)

// CompositionTopN bounds each frequency list in a Composition.
const CompositionTopN = 10

// Composition summarizes which roles, companies, locations and industries dominate the
// lead database. Lists are ordered by count, ties by first appearance.
type Composition struct {
	TotalLeads   int     `json:"total_leads"`
	TopRoles     []Entry `json:"top_roles"`
	TopCompanies []Entry `json:"top_companies"`
	TopLocations []Entry `json:"top_locations"`
	Industries   []Entry `json:"industries_represented"`
}

// Analyze builds the composition summary over leads.
func Analyze(leads []*storage.Lead) *Composition {
	roles, companies, locations, industries := newCounter(), newCounter(), newCounter(), newCounter()

	for _, l := range leads {
		if l.Role != "" {
			roles.add(strings.ToLower(l.Role))
		}
		if l.Company != "" {
			companies.add(strings.ToLower(l.Company))
		}
		if l.Location != "" {
			locations.add(strings.ToLower(l.Location))
		}
		industries.add(InferLead(l))
	}

	return &Composition{
		TotalLeads:   len(leads),
		TopRoles:     roles.mostCommon(CompositionTopN),
		TopCompanies: companies.mostCommon(CompositionTopN),
		TopLocations: locations.mostCommon(CompositionTopN),
		Industries:   industries.mostCommon(CompositionTopN),
	}
}

// Keys returns up to n keys of entries, in order.
func Keys(entries []Entry, n int) []string {
	if n > len(entries) {
		n = len(entries)
	}
	keys := make([]string, 0, n)
	for _, e := range entries[:n] {
		keys = append(keys, e.Key)
	}
	return keys
}
