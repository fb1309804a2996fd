package main

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/llm"
	"github.com/spherical-ai/spherical/libs/lead-engine/pkg/engine"
)

func TestSDKAgainstRouter(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	client, err := engine.NewClient(engine.ClientConfig{BaseURL: s.URL})
	require.NoError(t, err)

	health, err := client.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)
	require.NoError(t, client.Ready(ctx))

	content := workbook(t,
		[]interface{}{"name", "role", "company", "email", "skills"},
		[]interface{}{"Priya Shah", "Data Engineer", "PayFast", "priya@payfast.io", "Python, Spark"},
		[]interface{}{"Tom Lee", "Chef", "Bistro", "tom@bistro.com", "Cooking"},
	)
	upload, err := client.Upload(ctx, "leads.xlsx", bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, 2, upload.Imported)
	assert.Equal(t, "Imported 2 new leads, updated 0 existing leads", upload.Message)

	uploads, err := client.Uploads(ctx, 5)
	require.NoError(t, err)
	require.Len(t, uploads, 1)
	assert.Equal(t, "leads.xlsx", uploads[0].Filename)

	leads, err := client.ListLeads(ctx, "payfast")
	require.NoError(t, err)
	require.Len(t, leads, 1)
	priya := leads[0]

	got, err := client.GetLead(ctx, priya.ID, "python", "go")
	require.NoError(t, err)
	require.NotNil(t, got.SkillMatchPercent)
	assert.Equal(t, 50.0, *got.SkillMatchPercent)

	result, err := client.Search(ctx, "python")
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, priya.ID, result.Matches[0].Lead.ID)
	assert.Positive(t, result.Matches[0].Score)

	created, err := client.CreateLead(ctx, engine.LeadInput{Name: "Ana Ruiz", Email: "ana@clinic.org", Role: "Nurse"})
	require.NoError(t, err)
	updated, err := client.UpdateLead(ctx, created.ID, engine.LeadInput{Name: "Ana Ruiz", Email: "ana@clinic.org", Role: "Head Nurse"})
	require.NoError(t, err)
	assert.Equal(t, "Head Nurse", updated.Role)

	_, err = client.CreateLead(ctx, engine.LeadInput{Name: "Other Ana", Email: "ana@clinic.org"})
	var apiErr *engine.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 409, apiErr.StatusCode)

	require.NoError(t, client.DeleteLead(ctx, created.ID))
	_, err = client.GetLead(ctx, created.ID)
	assert.True(t, engine.IsNotFound(err))

	ov, err := client.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, ov.TotalLeads)

	var buf bytes.Buffer
	n, err := client.Export(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Leads")
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	s.llm.reply = fmt.Sprintf(`{"interpretation":"data people","matches":[{"lead_id":%d,"confidence_score":77}]}`, priya.ID)
	match, err := client.Match(ctx, "data engineers")
	require.NoError(t, err)
	require.Len(t, match.Matches, 1)
	assert.Equal(t, 77, match.Matches[0].ConfidenceScore)
	assert.Equal(t, "data people", match.Interpretation)

	s.llm.err = &llm.APIError{Provider: "openai", StatusCode: 429, Kind: llm.KindRateLimit}
	_, err = client.Match(ctx, "data engineers")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 429, apiErr.StatusCode)
	assert.Equal(t, "AI service rate limit reached. Please try again later.", apiErr.Message)
}
