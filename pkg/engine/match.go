package engine

import (
	"context"
	"net/http"
)

// KeywordCount is a query word with how many leads contain it.
type KeywordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// KeywordStats describes how the query words hit the lead database.
type KeywordStats struct {
	Matched   []KeywordCount `json:"matched"`
	Missing   []string       `json:"missing"`
	Partial   []KeywordCount `json:"partial"`
	MatchRate float64        `json:"match_rate"`
}

// SearchMatch is a lead with its keyword score and the fields that matched.
type SearchMatch struct {
	Lead    Lead     `json:"lead"`
	Score   float64  `json:"score"`
	Context []string `json:"match_context"`
}

// SearchResult is the reply of Search.
type SearchResult struct {
	Query   string        `json:"query"`
	Matches []SearchMatch `json:"leads"`
	Stats   KeywordStats  `json:"keyword_stats"`
}

// Search runs a keyword search. Matching leads get their stored match score rewritten.
func (c *Client) Search(ctx context.Context, skills string) (*SearchResult, error) {
	var result SearchResult
	body := map[string]string{"skills": skills}
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/search", nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AIMatch is one lead picked by the language model.
type AIMatch struct {
	Lead            Lead     `json:"lead"`
	ConfidenceScore int      `json:"confidence_score"`
	Reasoning       string   `json:"reasoning"`
	Strengths       []string `json:"strengths"`
	Concerns        []string `json:"concerns"`
}

// Entry is a key with its occurrence count.
type Entry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Composition summarizes what the lead database contains.
type Composition struct {
	TotalLeads   int     `json:"total_leads"`
	TopRoles     []Entry `json:"top_roles"`
	TopCompanies []Entry `json:"top_companies"`
	TopLocations []Entry `json:"top_locations"`
	Industries   []Entry `json:"industries_represented"`
}

// MatchResult is the reply of Match. NoLeads is set when the database was empty and no
// model call was made.
type MatchResult struct {
	Prompt            string       `json:"prompt"`
	Interpretation    string       `json:"interpretation"`
	SearchType        string       `json:"search_type"`
	IndustryAlignment string       `json:"industry_alignment"`
	Matches           []AIMatch    `json:"leads"`
	TotalLeads        int          `json:"total_leads"`
	AnalyzedLeads     int          `json:"analyzed_leads"`
	Composition       *Composition `json:"database_insights,omitempty"`
	NoLeads           bool         `json:"no_leads"`
}

// Match asks the AI matcher for the leads best fitting a free-text prompt. Model failures
// come back as *APIError whose Message is fit to show an end user.
func (c *Client) Match(ctx context.Context, prompt string) (*MatchResult, error) {
	var result MatchResult
	body := map[string]string{"prompt": prompt}
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/ai/match", nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// IndustryShare is one row of the industry distribution.
type IndustryShare struct {
	Name       string  `json:"name"`
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Overview is the lead count with the top industries.
type Overview struct {
	TotalLeads int             `json:"total_leads"`
	Industries []IndustryShare `json:"industry_stats"`
}

// Overview fetches the AI page summary.
func (c *Client) Overview(ctx context.Context) (*Overview, error) {
	var ov Overview
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/ai/overview", nil, nil, &ov); err != nil {
		return nil, err
	}
	return &ov, nil
}
