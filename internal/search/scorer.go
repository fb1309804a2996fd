// Package search ranks stored leads against a free-text keyword query.
package search

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/domain"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/observability"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/storage"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/tokenize"
)

// Field weights. A field contributes once, no matter how many of its tokens match,
// except role and skills which add a per-token bonus.
const (
	RoleBase      = 30
	RolePerToken  = 5
	SkillBase     = 40
	SkillPerToken = 5
	CompanyScore  = 25
	LocationScore = 15
	NotesScore    = 10
	MaxScore      = 100
)

// Statistics tuning.
const (
	partialSourceLeads = 20
	partialCandidates  = 10
	partialMinCount    = 2
	partialLimit       = 5
)

// LeadStore is the part of the lead repository the scorer needs.
type LeadStore interface {
	List(ctx context.Context) ([]*storage.Lead, error)
	UpdateMatchScore(ctx context.Context, id int64, score float64) error
}

// Match is one lead that overlapped the query.
type Match struct {
	Lead    *storage.Lead `json:"lead"`
	Score   float64       `json:"score"`
	Context []string      `json:"match_context"`
}

// KeywordCount pairs a keyword with how often it was seen.
type KeywordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Stats describes how the query's keywords fared against the database.
type Stats struct {
	Matched   []KeywordCount `json:"matched"`
	Missing   []string       `json:"missing"`
	Partial   []KeywordCount `json:"partial"`
	MatchRate float64        `json:"match_rate"`
}

// Result is the outcome of one keyword search.
type Result struct {
	Query   string  `json:"query"`
	Matches []Match `json:"leads"`
	Stats   Stats   `json:"keyword_stats"`
}

// Scorer scores leads by keyword overlap and records each matching lead's score.
type Scorer struct {
	store  LeadStore
	logger *observability.Logger
}

// NewScorer creates a scorer over store.
func NewScorer(store LeadStore, logger *observability.Logger) *Scorer {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Scorer{store: store, logger: logger.WithComponent("search")}
}

// Search scores every stored lead against query, persists the score of every lead that
// matched, and returns the matches best first along with keyword statistics.
func (s *Scorer) Search(ctx context.Context, query string) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ValidationError("search query is empty", nil)
	}

	log := s.logger.WithContext(ctx)
	qTokens := tokenize.Unique(tokenize.Normalize(query))
	qSet := tokenize.Set(qTokens)

	leads, err := s.store.List(ctx)
	if err != nil {
		return nil, domain.StorageError("load leads", err)
	}

	matched := newCounter()
	matches := make([]Match, 0)
	for _, lead := range leads {
		m, ok := scoreLead(lead, qTokens, qSet, matched)
		if !ok {
			continue
		}
		if err := s.store.UpdateMatchScore(ctx, lead.ID, m.Score); err != nil {
			return nil, domain.StorageError(fmt.Sprintf("save score for lead %d", lead.ID), err)
		}
		lead.MatchScore = m.Score
		matches = append(matches, m)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	res := &Result{
		Query:   query,
		Matches: matches,
		Stats:   buildStats(qTokens, qSet, matched, matches),
	}

	log.Info().
		Str("query", query).
		Int("leads_scanned", len(leads)).
		Int("leads_matched", len(matches)).
		Float64("match_rate", res.Stats.MatchRate).
		Strs("missing", res.Stats.Missing).
		Msg("Keyword search completed")

	return res, nil
}

// scoreLead applies the field rules to one lead. Tokens hit are added to matched.
func scoreLead(lead *storage.Lead, qTokens []string, qSet map[string]struct{}, matched *counter) (Match, bool) {
	var (
		score        float64
		matchContext []string
	)

	apply := func(label, text string, points func(n int) float64) {
		hits := intersect(qTokens, tokenize.Set(tokenize.Normalize(text)))
		if len(hits) == 0 {
			return
		}
		score += points(len(hits))
		for _, h := range hits {
			matched.add(h)
		}
		matchContext = append(matchContext, label+": "+strings.Join(hits, ", "))
	}

	apply("Role", lead.Role, func(n int) float64 { return RoleBase + RolePerToken*float64(n) })
	apply("Skills", lead.Skills, func(n int) float64 { return SkillBase + SkillPerToken*float64(n) })
	apply("Company", lead.Company, func(int) float64 { return CompanyScore })
	apply("Location", lead.Location, func(int) float64 { return LocationScore })
	apply("Notes", lead.Notes, func(int) float64 { return NotesScore })

	if len(matchContext) == 0 {
		return Match{}, false
	}
	return Match{Lead: lead, Score: math.Min(score, MaxScore), Context: matchContext}, true
}

// intersect returns the query tokens present in set, in query order.
func intersect(qTokens []string, set map[string]struct{}) []string {
	var out []string
	for _, t := range qTokens {
		if _, ok := set[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

func buildStats(qTokens []string, qSet map[string]struct{}, matched *counter, matches []Match) Stats {
	stats := Stats{
		Matched: matched.sorted(func(a, b KeywordCount) bool { return a.Word < b.Word }),
		Missing: []string{},
		Partial: []KeywordCount{},
	}

	for _, t := range qTokens {
		if _, ok := matched.counts[t]; !ok {
			stats.Missing = append(stats.Missing, t)
		}
	}
	sort.Strings(stats.Missing)

	top := matches
	if len(top) > partialSourceLeads {
		top = top[:partialSourceLeads]
	}
	seen := newCounter()
	for _, m := range top {
		for _, text := range []string{m.Lead.Role, m.Lead.Company, m.Lead.Location} {
			for _, tok := range tokenize.Normalize(text) {
				seen.add(tok)
			}
		}
	}
	candidates := seen.sorted(nil)
	if len(candidates) > partialCandidates {
		candidates = candidates[:partialCandidates]
	}
	for _, kc := range candidates {
		if _, inQuery := qSet[kc.Word]; inQuery || kc.Count <= partialMinCount {
			continue
		}
		stats.Partial = append(stats.Partial, kc)
		if len(stats.Partial) == partialLimit {
			break
		}
	}

	if len(qSet) > 0 {
		rate := float64(len(matched.counts)) / float64(len(qSet)) * 100
		stats.MatchRate = math.Round(rate*10) / 10
	}
	return stats
}

// counter counts words and remembers first-seen order.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(word string) {
	if _, ok := c.counts[word]; !ok {
		c.order = append(c.order, word)
	}
	c.counts[word]++
}

// sorted returns entries by count descending. Ties use tie when given, first-seen
// order otherwise.
func (c *counter) sorted(tie func(a, b KeywordCount) bool) []KeywordCount {
	out := make([]KeywordCount, 0, len(c.order))
	for _, w := range c.order {
		out = append(out, KeywordCount{Word: w, Count: c.counts[w]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if tie != nil {
			return tie(out[i], out[j])
		}
		return false
	})
	return out
}
