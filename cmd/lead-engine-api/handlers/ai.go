package handlers

import (
	"net/http"

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/aimatch"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/observability"
)

// AIHandler handles AI lead matching.
type AIHandler struct {
	logger       *observability.Logger
	orchestrator *aimatch.Orchestrator
}

// NewAIHandler creates an AI handler.
func NewAIHandler(logger *observability.Logger, orchestrator *aimatch.Orchestrator) *AIHandler {
	return &AIHandler{
		logger:       logger.WithComponent("api.ai"),
		orchestrator: orchestrator,
	}
}

// MatchRequestDTO is the body of an AI match.
type MatchRequestDTO struct {
	Prompt string `json:"prompt"`
}

// Overview handles GET /ai/overview.
func (h *AIHandler) Overview(w http.ResponseWriter, r *http.Request) {
	ov, err := h.orchestrator.Overview(r.Context())
	if err != nil {
		h.logger.WithContext(r.Context()).Error().Err(err).Msg("AI overview failed")
		writeError(w, StatusFor(err), messageFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ov)
}

// Match handles POST /ai/match. Failures carry the user-facing message for their kind.
func (h *AIHandler) Match(w http.ResponseWriter, r *http.Request) {
	var req MatchRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.orchestrator.Match(r.Context(), req.Prompt)
	if err != nil {
		status := StatusFor(err)
		h.logger.WithContext(r.Context()).Warn().Err(err).Int("status", status).Msg("AI match failed")
		writeError(w, status, aimatch.UserMessage(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}
