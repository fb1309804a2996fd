package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/config"
)

func TestNew(t *testing.T) {
	ctx := context.Background()

	c, err := New(ctx, config.AIConfig{Provider: config.ProviderOpenAI, APIKey: "k", Model: "gpt-4o-mini"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, c)

	c, err = New(ctx, config.AIConfig{APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, c)

	c, err = New(ctx, config.AIConfig{Provider: config.ProviderGemini})
	assert.Error(t, err)
	assert.Nil(t, c)

	_, err = New(ctx, config.AIConfig{Provider: "claude"})
	assert.ErrorContains(t, err, "unknown ai provider")
}
