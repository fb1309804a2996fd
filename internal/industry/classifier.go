// Package industry classifies leads into a fixed industry taxonomy and summarizes
// how the lead database is composed.
package industry

import (
	"math"
	"sort"
	"strings"

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/storage"
)

// Other is returned when no keyword of the taxonomy matches.
const Other = "other"

// Sector is one entry of the taxonomy.
type Sector struct {
	Label    string
	Keywords []string
}

// Taxonomy is checked top to bottom and the first sector with a keyword hit wins,
// so the order is part of the classification result.
var Taxonomy = []Sector{
	{"technology", []string{"software", "tech", "it", "developer", "engineer", "data", "ai", "cloud", "saas", "digital", "cyber", "programming", "coding"}},
	{"finance", []string{"finance", "bank", "investment", "trading", "accounting", "fintech", "financial", "capital", "wealth", "credit"}},
	{"healthcare", []string{"healthcare", "medical", "pharma", "hospital", "clinical", "health", "biotech", "medicine", "pharmaceutical"}},
	{"manufacturing", []string{"manufacturing", "production", "factory", "industrial", "assembly", "supply chain", "operations"}},
	{"retail", []string{"retail", "ecommerce", "store", "shop", "merchant", "consumer", "sales"}},
	{"consulting", []string{"consulting", "consultant", "advisory", "strategy", "management consulting"}},
	{"real_estate", []string{"real estate", "property", "construction", "building", "infrastructure"}},
	{"education", []string{"education", "university", "school", "training", "learning", "academic", "teaching"}},
	{"energy", []string{"energy", "oil", "gas", "renewable", "power", "utilities", "solar", "wind"}},
	{"telecommunications", []string{"telecom", "network", "wireless", "broadband", "communication", "5g"}},
	{"media", []string{"media", "advertising", "marketing", "content", "publishing", "broadcasting"}},
	{"automotive", []string{"automotive", "automobile", "vehicle", "car", "transportation"}},
	{"aerospace", []string{"aerospace", "aviation", "aircraft", "defense"}},
	{"logistics", []string{"logistics", "shipping", "freight", "delivery", "warehouse", "distribution"}},
	{"hospitality", []string{"hospitality", "hotel", "restaurant", "tourism", "travel"}},
	{"legal", []string{"legal", "law", "attorney", "lawyer", "compliance"}},
	{"insurance", []string{"insurance", "underwriting", "risk", "claims"}},
	{"agriculture", []string{"agriculture", "farming", "agribusiness", "agro"}},
	{"gaming", []string{"gaming", "game", "esports", "entertainment"}},
	{"government", []string{"government", "public sector", "municipal", "federal", "state"}},
}

// Infer returns the industry label for a lead's role, company and notes. Keywords match as
// plain substrings of the combined lower-cased text.
func Infer(role, company, notes string) string {
	text := strings.ToLower(role + " " + company + " " + notes)
	for _, sector := range Taxonomy {
		for _, kw := range sector.Keywords {
			if strings.Contains(text, kw) {
				return sector.Label
			}
		}
	}
	return Other
}

// InferLead classifies a stored lead.
func InferLead(l *storage.Lead) string {
	return Infer(l.Role, l.Company, l.Notes)
}

// Share is one row of an industry distribution.
type Share struct {
	Name       string  `json:"name"`
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// DistributionSize is how many industries Distribution reports.
const DistributionSize = 5

// Distribution classifies every lead and returns the most frequent industries with their
// share of the total, rounded to one decimal.
func Distribution(leads []*storage.Lead) []Share {
	if len(leads) == 0 {
		return []Share{}
	}

	counter := newCounter()
	for _, l := range leads {
		counter.add(InferLead(l))
	}

	top := counter.mostCommon(DistributionSize)
	shares := make([]Share, 0, len(top))
	for _, e := range top {
		shares = append(shares, Share{
			Name:       FormatLabel(e.Key),
			Label:      e.Key,
			Count:      e.Count,
			Percentage: round1(float64(e.Count) / float64(len(leads)) * 100),
		})
	}
	return shares
}

// FormatLabel turns "real_estate" into "Real Estate".
func FormatLabel(label string) string {
	words := strings.Fields(strings.ReplaceAll(label, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Entry is a key with its occurrence count.
type Entry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// counter counts keys and remembers first-seen order for ties.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

func (c *counter) mostCommon(n int) []Entry {
	entries := make([]Entry, 0, len(c.order))
	for _, k := range c.order {
		entries = append(entries, Entry{Key: k, Count: c.counts[k]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
