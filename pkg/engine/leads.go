package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Lead is a stored contact as returned by the API.
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
	// Set only when GetLead was asked for a skill comparison.
	SkillMatchPercent *float64 `json:"skill_match_percent,omitempty"`
}

// LeadInput is the body for CreateLead and UpdateLead.
type LeadInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Role            string `json:"role"`
	Company         string `json:"company"`
	LinkedInURL     string `json:"linkedin_url"`
	Location        string `json:"location"`
	Skills          string `json:"skills"`
	ExperienceYears int    `json:"experience_years"`
	Notes           string `json:"notes"`
}

type leadList struct {
	Leads []Lead `json:"leads"`
	Count int    `json:"count"`
}

// ListLeads returns leads ranked by match score. A non-empty search filters by name,
// email, company or skills substring.
func (c *Client) ListLeads(ctx context.Context, search string) ([]Lead, error) {
	query := url.Values{}
	if search != "" {
		query.Set("search", search)
	}
	var resp leadList
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/leads", query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Leads, nil
}

// GetLead fetches one lead. With skills, the reply carries SkillMatchPercent.
func (c *Client) GetLead(ctx context.Context, id int64, skills ...string) (*Lead, error) {
	query := url.Values{}
	if len(skills) > 0 {
		query.Set("skills", strings.Join(skills, ","))
	}
	var lead Lead
	if err := c.doJSON(ctx, http.MethodGet, leadPath(id), query, nil, &lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

// CreateLead stores a new lead.
func (c *Client) CreateLead(ctx context.Context, in LeadInput) (*Lead, error) {
	var lead Lead
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/leads", nil, in, &lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

// UpdateLead overwrites the editable fields of a lead.
func (c *Client) UpdateLead(ctx context.Context, id int64, in LeadInput) (*Lead, error) {
	var lead Lead
	if err := c.doJSON(ctx, http.MethodPut, leadPath(id), nil, in, &lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

// DeleteLead removes a lead.
func (c *Client) DeleteLead(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, leadPath(id), nil, nil, nil)
}

func leadPath(id int64) string {
	return "/api/v1/leads/" + strconv.FormatInt(id, 10)
}

// UploadResult summarizes one spreadsheet ingestion.
type UploadResult struct {
	JobID       string        `json:"job_id"`
	UploadID    int64         `json:"upload_id"`
	Filename    string        `json:"filename"`
	TotalRows   int           `json:"total_rows"`
	Imported    int           `json:"records_imported"`
	Updated     int           `json:"records_updated"`
	Skipped     int           `json:"skipped"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt time.Time     `json:"completed_at"`
	Duration    time.Duration `json:"duration"`
	Message     string        `json:"message"`
}

// Upload sends a workbook for ingestion and waits for the run to finish.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (*UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/leads/upload", nil, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var result UploadResult
	if err := c.send(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Export streams the workbook of all leads into w and returns the bytes written.
func (c *Client) Export(ctx context.Context, w io.Writer) (int64, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/leads/export", nil, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("GET %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, decodeAPIError(resp)
	}
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("read export: %w", err)
	}
	return n, nil
}

// Upload history entry.
type Upload struct {
	ID              int64     `json:"id"`
	Filename        string    `json:"filename"`
	UploadedAt      time.Time `json:"uploaded_at"`
	RecordsImported int       `json:"records_imported"`
	RecordsUpdated  int       `json:"records_updated"`
}

// Uploads lists past ingestions, newest first. limit <= 0 uses the server default.
func (c *Client) Uploads(ctx context.Context, limit int) ([]Upload, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var resp struct {
		Uploads []Upload `json:"uploads"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/uploads", query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Uploads, nil
}
