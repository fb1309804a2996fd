package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiConfig configures a GeminiClient.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// GeminiClient implements Completer using Google's Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini completer.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPOptions.Timeout = genai.Ptr(cfg.Timeout)
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiClient{client: client, model: cfg.Model}, nil
}

// Complete generates one response for req.
func (c *GeminiClient) Complete(ctx context.Context, req Request) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.Temperature)),
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.JSON {
		config.ResponseMIMEType = "application/json"
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{genai.NewContentFromText(req.User, genai.RoleUser)},
		config,
	)
	if err != nil {
		return "", geminiError(err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrNoContent
	}
	return text, nil
}

func geminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &APIError{
			Provider:   "gemini",
			StatusCode: apiErr.Code,
			Code:       apiErr.Status,
			Message:    apiErr.Message,
			Kind:       classify(apiErr.Code, apiErr.Status, "", apiErr.Message),
		}
	}
	return fmt.Errorf("gemini generate failed: %w", err)
}
