// Package llm talks to hosted language models. The lead engine only needs single-shot
// chat completions, so every provider is reduced to the Completer interface.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Completer sends one system + user exchange and returns the model's text.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Request is a single completion request.
type Request struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
	// JSON asks the provider for a JSON object response when it supports that.
	JSON bool
}

// Kind classifies provider failures.
type Kind string

// Failure kinds.
const (
	KindAuth            Kind = "auth"
	KindRateLimit       Kind = "rate_limit"
	KindContextTooLarge Kind = "context_too_large"
	KindOther           Kind = "other"
)

// APIError is a non-success answer from a provider.
type APIError struct {
	Provider   string
	StatusCode int
	Code       string
	Type       string
	Message    string
	Kind       Kind
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: status %d", e.Provider, e.StatusCode)
	if e.Code != "" {
		fmt.Fprintf(&b, " (%s)", e.Code)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// classify derives the Kind from status code, error code/type and message.
func classify(status int, code, typ, message string) Kind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusTooManyRequests:
		return KindRateLimit
	}

	text := strings.ToLower(code + " " + typ + " " + message)
	switch {
	case strings.Contains(text, "context_length_exceeded"), strings.Contains(text, "maximum context length"):
		return KindContextTooLarge
	case strings.Contains(text, "invalid_api_key"), strings.Contains(text, "api_key"),
		strings.Contains(text, "authentication"), strings.Contains(text, "permission_denied"),
		strings.Contains(text, "unauthenticated"):
		return KindAuth
	case strings.Contains(text, "rate_limit"), strings.Contains(text, "resource_exhausted"),
		strings.Contains(text, "quota"):
		return KindRateLimit
	}
	return KindOther
}

// KindOf returns the failure kind of err. Errors that are not *APIError are classified
// from their message, so wrapped transport errors still map sensibly.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return classify(0, "", "", err.Error())
}

// ErrNoContent is returned when a provider answers without any text.
var ErrNoContent = errors.New("llm: empty completion")
