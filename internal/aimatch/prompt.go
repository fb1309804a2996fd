package aimatch

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/industry"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/storage"
)

// Field limits of the lead window sent to the model.
const (
	maxNameLen     = 50
	maxRoleLen     = 60
	maxCompanyLen  = 50
	maxLocationLen = 40
	maxSkillsLen   = 80

	summaryTopN = 5
)

const systemPrompt = `You are a lead matching expert. Analyze the user's request and match it with leads from the database.

Consider:
1. Supplier/vendor or consumer/client need
2. Role relevance (40 points)
3. Company/industry match (30 points)
4. Skills alignment (20 points)
5. Location match (10 points)

Return JSON:
{
    "interpretation": "brief understanding",
    "search_type": "supplier or consumer",
    "industry_alignment": "brief alignment note",
    "matches": [
        {
            "lead_id": int,
            "confidence_score": int,
            "reasoning": "brief why",
            "strengths": ["strength1", "strength2"],
            "concerns": ["concern1"] or []
        }
    ]
}

Only leads with score >= 50. Top 20 matches max.`

// windowLead is the trimmed projection of a lead the model sees.
type windowLead struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Company  string `json:"company"`
	Location string `json:"location"`
	Skills   string `json:"skills"`
}

type dbSummary struct {
	Total         int      `json:"total"`
	TopRoles      []string `json:"top_roles"`
	TopIndustries []string `json:"top_industries"`
}

// window projects the first size leads.
func window(leads []*storage.Lead, size int) []windowLead {
	if size > 0 && len(leads) > size {
		leads = leads[:size]
	}
	out := make([]windowLead, 0, len(leads))
	for _, l := range leads {
		out = append(out, windowLead{
			ID:       l.ID,
			Name:     truncate(l.Name, maxNameLen),
			Role:     truncate(l.Role, maxRoleLen),
			Company:  truncate(l.Company, maxCompanyLen),
			Location: truncate(l.Location, maxLocationLen),
			Skills:   truncate(l.Skills, maxSkillsLen),
		})
	}
	return out
}

// truncate trims s and cuts it to max runes, marking the cut with "...".
func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) > max {
		return string(r[:max]) + "..."
	}
	return s
}

func buildUserMessage(prompt string, comp *industry.Composition, leads []windowLead) (string, error) {
	summary, err := json.Marshal(dbSummary{
		Total:         comp.TotalLeads,
		TopRoles:      industry.Keys(comp.TopRoles, summaryTopN),
		TopIndustries: industry.Keys(comp.Industries, summaryTopN),
	})
	if err != nil {
		return "", fmt.Errorf("encode summary: %w", err)
	}

	leadsJSON, err := json.MarshalIndent(leads, "", " ")
	if err != nil {
		return "", fmt.Errorf("encode leads: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "User Request: %s\n\n", prompt)
	fmt.Fprintf(&b, "Database Summary: %s\n\n", summary)
	b.WriteString("Leads (ID, Name, Role, Company, Location, Skills):\n")
	b.Write(leadsJSON)
	b.WriteString("\n\nReturn best matches in JSON format.")
	return b.String(), nil
}

// stripCodeFence removes a ```json or ``` wrapper around the model's answer.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// modelResponse is the JSON document the model is asked to return. Matches stay raw so
// one badly typed entry does not sink the others.
type modelResponse struct {
	Interpretation    string            `json:"interpretation"`
	SearchType        string            `json:"search_type"`
	IndustryAlignment string            `json:"industry_alignment"`
	Matches           []json.RawMessage `json:"matches"`
}

type modelMatch struct {
	LeadID          int64
	ConfidenceScore float64
	Reasoning       string
	Strengths       []string
	Concerns        []string
}

func parseResponse(raw string) (*modelResponse, error) {
	var resp modelResponse
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &resp); err != nil {
		return nil, fmt.Errorf("invalid json in model response: %w", err)
	}
	return &resp, nil
}

// decodeMatch reads one entry of "matches". lead_id may be a number or a numeric
// string; other fields of the wrong type fall back to their zero value.
func decodeMatch(raw json.RawMessage) (modelMatch, error) {
	var fields struct {
		LeadID          json.RawMessage `json:"lead_id"`
		ConfidenceScore json.RawMessage `json:"confidence_score"`
		Reasoning       json.RawMessage `json:"reasoning"`
		Strengths       json.RawMessage `json:"strengths"`
		Concerns        json.RawMessage `json:"concerns"`
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return modelMatch{}, fmt.Errorf("match is not an object: %w", err)
	}

	id, ok := flexNumber(fields.LeadID)
	if !ok || id <= 0 || id != math.Trunc(id) {
		return modelMatch{}, fmt.Errorf("invalid lead_id %s", string(fields.LeadID))
	}
	score, _ := flexNumber(fields.ConfidenceScore)

	return modelMatch{
		LeadID:          int64(id),
		ConfidenceScore: score,
		Reasoning:       flexString(fields.Reasoning),
		Strengths:       stringList(fields.Strengths),
		Concerns:        stringList(fields.Concerns),
	}, nil
}

func flexNumber(raw json.RawMessage) (float64, bool) {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func flexString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// stringList keeps the string items of a JSON array. Anything else is empty.
func stringList(raw json.RawMessage) []string {
	var items []interface{}
	out := []string{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return out
	}
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
