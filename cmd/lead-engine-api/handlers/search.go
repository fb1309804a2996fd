package handlers

import (
	"net/http"
	"strconv"

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/observability"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/search"
)

// SearchHandler handles keyword searches.
type SearchHandler struct {
	logger *observability.Logger
	scorer *search.Scorer
}

// NewSearchHandler creates a search handler.
func NewSearchHandler(logger *observability.Logger, scorer *search.Scorer) *SearchHandler {
	return &SearchHandler{
		logger: logger.WithComponent("api.search"),
		scorer: scorer,
	}
}

// SearchRequestDTO is the body of a keyword search.
type SearchRequestDTO struct {
	Skills string `json:"skills"`
}

// Search handles POST /search. Matching leads get their match score rewritten.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.scorer.Search(r.Context(), req.Skills)
	if err != nil {
		status := StatusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.WithContext(r.Context()).Error().Err(err).Msg("Search failed")
		}
		writeError(w, status, messageFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
