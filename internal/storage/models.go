// Package storage provides database models and repositories for the Lead Engine.
package storage

import (
	"math"
	"strings"
	"time"
)

// Lead is a single contact imported from a spreadsheet or created through the API.
type Lead struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email,omitempty"`
	Phone           string    `json:"phone"`
	Role            string    `json:"role"`
	Company         string    `json:"company"`
	LinkedInURL     string    `json:"linkedin_url"`
	Location        string    `json:"location"`
	Skills          string    `json:"skills"`
	ExperienceYears int       `json:"experience_years"`
	Notes           string    `json:"notes"`
	MatchScore      float64   `json:"match_score"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// String renders the lead the way list views show it.
func (l *Lead) String() string {
	return l.Name + " - " + l.Role + " at " + l.Company
}

// SkillsList splits the comma-separated skills into trimmed, non-empty entries.
func (l *Lead) SkillsList() []string {
	if l.Skills == "" {
		return nil
	}
	var skills []string
	for _, s := range strings.Split(l.Skills, ",") {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}

// SkillMatchPercent returns the share of required skills the lead lists, 0 to 100,
// rounded to two decimals. Comparison is case-insensitive.
func (l *Lead) SkillMatchPercent(required []string) float64 {
	want := make(map[string]struct{}, len(required))
	for _, s := range required {
		want[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	if len(want) == 0 {
		return 0
	}

	have := make(map[string]struct{})
	for _, s := range l.SkillsList() {
		have[strings.ToLower(s)] = struct{}{}
	}

	matched := 0
	for s := range want {
		if _, ok := have[s]; ok {
			matched++
		}
	}
	return math.Round(float64(matched)/float64(len(want))*100*100) / 100
}

// UploadHistory records one completed spreadsheet ingestion. Rows are never updated.
type UploadHistory struct {
	ID              int64     `json:"id"`
	Filename        string    `json:"filename"`
	UploadedAt      time.Time `json:"uploaded_at"`
	RecordsImported int       `json:"records_imported"`
	RecordsUpdated  int       `json:"records_updated"`
}
