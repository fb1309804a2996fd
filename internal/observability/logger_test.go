package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_JSONFieldsAndTraceID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "info", Format: "json", Output: &buf, ServiceName: "lead-engine-test"})

	ctx := ContextWithTraceID(context.Background(), "trace-123")
	logger.WithContext(ctx).WithComponent("search").Info().Int("matched", 3).Msg("Search complete")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "lead-engine-test", entry["service"])
	assert.Equal(t, "trace-123", entry["trace_id"])
	assert.Equal(t, "search", entry["component"])
	assert.Equal(t, float64(3), entry["matched"])
	assert.Equal(t, "Search complete", entry["message"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "warn", Format: "json", Output: &buf})

	logger.Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestTraceIDFromContext_Missing(t *testing.T) {
	assert.Empty(t, TraceIDFromContext(context.Background()))
}
