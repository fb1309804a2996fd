// Package handlers provides HTTP handlers for the Lead Engine API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/domain"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/storage"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, detail string) {
	writeJSON(w, status, ErrorResponse{
		Error:   message,
		Message: message,
		Detail:  detail,
	})
}

// StatusFor maps an error to the HTTP status reported to the client.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrInvalid):
		return http.StatusBadRequest
	}

	switch domain.TypeOf(err) {
	case domain.ErrorTypeValidation:
		return http.StatusBadRequest
	case domain.ErrorTypeNotFound:
		return http.StatusNotFound
	case domain.ErrorTypeIngestion:
		return http.StatusUnprocessableEntity
	case domain.ErrorTypeAuth, domain.ErrorTypeParse:
		// The upstream AI service failed, not the caller.
		return http.StatusBadGateway
	case domain.ErrorTypeRateLimit:
		return http.StatusTooManyRequests
	case domain.ErrorTypeContextTooLarge:
		return http.StatusRequestEntityTooLarge
	case domain.ErrorTypeConfig:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// messageFor returns the short client-facing text for err.
func messageFor(err error) string {
	var de *domain.DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return "not found"
	case errors.Is(err, storage.ErrInvalid):
		return "invalid request"
	}
	return "internal error"
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
