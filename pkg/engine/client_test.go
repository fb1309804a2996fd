package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(ClientConfig{BaseURL: srv.URL + "/", APIKey: "secret"})
	require.NoError(t, err)
	return c
}

func TestNewClient(t *testing.T) {
	c, err := NewClient(ClientConfig{})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8090", c.baseURL)

	_, err = NewClient(ClientConfig{BaseURL: "localhost"})
	assert.Error(t, err)
}

func TestListLeads_SendsQueryAndAuth(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/leads", r.URL.Path)
		assert.Equal(t, "acme corp", r.URL.Query().Get("search"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Write([]byte(`{"leads":[{"id":3,"name":"Ana","match_score":45}],"count":1}`))
	})

	leads, err := c.ListLeads(context.Background(), "acme corp")
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, int64(3), leads[0].ID)
	assert.Equal(t, 45.0, leads[0].MatchScore)
}

func TestGetLead_JoinsSkills(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/leads/7", r.URL.Path)
		assert.Equal(t, "go,sql", r.URL.Query().Get("skills"))
		w.Write([]byte(`{"id":7,"name":"Ana","skill_match_percent":50}`))
	})

	lead, err := c.GetLead(context.Background(), 7, "go", "sql")
	require.NoError(t, err)
	require.NotNil(t, lead.SkillMatchPercent)
	assert.Equal(t, 50.0, *lead.SkillMatchPercent)
}

func TestCreateLead_EncodesBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var in LeadInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "Ana", in.Name)
		assert.Equal(t, 4, in.ExperienceYears)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":1,"name":"Ana","experience_years":4}`))
	})

	lead, err := c.CreateLead(context.Background(), LeadInput{Name: "Ana", ExperienceYears: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(1), lead.ID)
}

func TestDeleteLead_NoContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})
	assert.NoError(t, c.DeleteLead(context.Background(), 9))
}

func TestAPIErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantDetail  string
		notFound    bool
	}{
		{"json error body", http.StatusNotFound, `{"error":"lead not found","message":"lead not found","detail":"id 4"}`, "lead not found", "id 4", true},
		{"plain text body", http.StatusBadGateway, "upstream down\n", "Bad Gateway", "upstream down", false},
		{"empty body", http.StatusTooManyRequests, "", "Too Many Requests", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})

			_, err := c.GetLead(context.Background(), 4)
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tc.status, apiErr.StatusCode)
			assert.Equal(t, tc.wantMessage, apiErr.Message)
			assert.Equal(t, tc.wantDetail, apiErr.Detail)
			assert.Equal(t, tc.notFound, IsNotFound(err))
		})
	}
}

func TestUpload_SendsMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "leads.xlsx", header.Filename)
		assert.Equal(t, "workbook-bytes", string(data))
		w.Write([]byte(`{"records_imported":2,"records_updated":1,"skipped":0,"message":"Imported 2 new leads, updated 1 existing leads"}`))
	})

	res, err := c.Upload(context.Background(), "leads.xlsx", bytes.NewBufferString("workbook-bytes"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, "Imported 2 new leads, updated 1 existing leads", res.Message)
}

func TestExport(t *testing.T) {
	t.Run("copies body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("xlsx-bytes"))
		})
		var buf bytes.Buffer
		n, err := c.Export(context.Background(), &buf)
		require.NoError(t, err)
		assert.Equal(t, int64(10), n)
		assert.Equal(t, "xlsx-bytes", buf.String())
	})

	t.Run("server error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"message":"storage error"}`))
		})
		var buf bytes.Buffer
		_, err := c.Export(context.Background(), &buf)
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "storage error", apiErr.Message)
		assert.Zero(t, buf.Len())
	})
}

func TestMatch_DecodesResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "fintech CTOs", body["prompt"])
		w.Write([]byte(`{"prompt":"fintech CTOs","interpretation":"payments leaders","total_leads":3,"analyzed_leads":3,
			"leads":[{"lead":{"id":2,"name":"Priya"},"confidence_score":88,"strengths":["payments"]}],
			"database_insights":{"total_leads":3,"industries_represented":[{"key":"finance","count":2}]}}`))
	})

	res, err := c.Match(context.Background(), "fintech CTOs")
	require.NoError(t, err)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, 88, res.Matches[0].ConfidenceScore)
	assert.Equal(t, []string{"payments"}, res.Matches[0].Strengths)
	require.NotNil(t, res.Composition)
	assert.Equal(t, "finance", res.Composition.Industries[0].Key)
	assert.False(t, res.NoLeads)
}
