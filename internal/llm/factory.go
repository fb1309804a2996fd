package llm

import (
	"context"
	"fmt"

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/config"
)

// New builds the Completer selected by cfg.Provider.
func New(ctx context.Context, cfg config.AIConfig) (Completer, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI, "":
		return NewOpenAIClient(OpenAIConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		}), nil
	case config.ProviderGemini:
		baseURL := cfg.BaseURL
		if baseURL == DefaultOpenAIBaseURL {
			baseURL = ""
		}
		client, err := NewGeminiClient(ctx, GeminiConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: baseURL,
			Timeout: cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown ai provider: %s", cfg.Provider)
	}
}
