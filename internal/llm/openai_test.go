package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenAI(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenAIClient(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL, Model: "gpt-test"})
}

func TestOpenAIClient_Complete(t *testing.T) {
	var got chatRequest
	client := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  {\"matches\":[]}  "}}]}`))
	})

	out, err := client.Complete(context.Background(), Request{
		System:      "rubric",
		User:        "find fintech CTOs",
		Temperature: 0.3,
		MaxTokens:   1500,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"matches":[]}`, out)

	assert.Equal(t, "gpt-test", got.Model)
	assert.Equal(t, 0.3, got.Temperature)
	assert.Equal(t, 1500, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, chatMessage{Role: "system", Content: "rubric"}, got.Messages[0])
	assert.Equal(t, chatMessage{Role: "user", Content: "find fintech CTOs"}, got.Messages[1])
	assert.Nil(t, got.ResponseFormat)
}

func TestOpenAIClient_JSONMode(t *testing.T) {
	var raw map[string]interface{}
	client := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{}"}}]}`))
	})

	_, err := client.Complete(context.Background(), Request{User: "x", JSON: true})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"type": "json_object"}, raw["response_format"])
}

func TestOpenAIClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   Kind
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`, KindAuth},
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`, KindRateLimit},
		{"context too long", http.StatusBadRequest, `{"error":{"message":"This model's maximum context length is 4097 tokens","type":"invalid_request_error","code":"context_length_exceeded"}}`, KindContextTooLarge},
		{"server error", http.StatusInternalServerError, `upstream exploded`, KindOther},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			_, err := client.Complete(context.Background(), Request{User: "x"})
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tc.status, apiErr.StatusCode)
			assert.Equal(t, tc.kind, apiErr.Kind)
			assert.Equal(t, tc.kind, KindOf(err))
		})
	}
}

func TestOpenAIClient_MissingKey(t *testing.T) {
	client := NewOpenAIClient(OpenAIConfig{BaseURL: "http://127.0.0.1:1"})
	_, err := client.Complete(context.Background(), Request{User: "x"})
	assert.Equal(t, KindAuth, KindOf(err))
}

func TestOpenAIClient_EmptyChoices(t *testing.T) {
	client := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})
	_, err := client.Complete(context.Background(), Request{User: "x"})
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestKindOf_MessageFallback(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{errors.New("Invalid api_key supplied"), KindAuth},
		{errors.New("Authentication failed"), KindAuth},
		{errors.New("rate_limit hit"), KindRateLimit},
		{errors.New("context_length_exceeded"), KindContextTooLarge},
		{errors.New("connection reset"), KindOther},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, KindOf(tc.err), tc.err.Error())
	}
	assert.Equal(t, Kind(""), KindOf(nil))
}
