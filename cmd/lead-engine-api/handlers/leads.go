package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/cache"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/export"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/observability"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/storage"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// LeadHandler serves lead CRUD and export.
type LeadHandler struct {
	logger   *observability.Logger
	leads    *storage.LeadRepository
	cache    cache.Client
	exporter *export.Writer
}

// NewLeadHandler creates a lead handler. cacheClient may be nil.
func NewLeadHandler(logger *observability.Logger, leads *storage.LeadRepository, cacheClient cache.Client, exporter *export.Writer) *LeadHandler {
	return &LeadHandler{
		logger:   logger.WithComponent("api.leads"),
		leads:    leads,
		cache:    cacheClient,
		exporter: exporter,
	}
}

// LeadRequestDTO is the body of create and update requests.
type LeadRequestDTO struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Role            string `json:"role"`
	Company         string `json:"company"`
	LinkedInURL     string `json:"linkedin_url"`
	Location        string `json:"location"`
	Skills          string `json:"skills"`
	ExperienceYears int    `json:"experience_years"`
	Notes           string `json:"notes"`
}

func (d LeadRequestDTO) apply(l *storage.Lead) {
	l.Name = strings.TrimSpace(d.Name)
	l.Email = strings.TrimSpace(d.Email)
	l.Phone = strings.TrimSpace(d.Phone)
	l.Role = strings.TrimSpace(d.Role)
	l.Company = strings.TrimSpace(d.Company)
	l.LinkedInURL = strings.TrimSpace(d.LinkedInURL)
	l.Location = strings.TrimSpace(d.Location)
	l.Skills = strings.TrimSpace(d.Skills)
	l.ExperienceYears = d.ExperienceYears
	l.Notes = strings.TrimSpace(d.Notes)
}

// LeadListDTO is the body of a list reply.
type LeadListDTO struct {
	Leads []*storage.Lead `json:"leads"`
	Count int             `json:"count"`
}

// LeadDTO is a single lead, optionally with its overlap against requested skills.
type LeadDTO struct {
	*storage.Lead
	SkillMatchPercent *float64 `json:"skill_match_percent,omitempty"`
}

// List handles GET /leads?search=.
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	leads, err := h.leads.Search(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if leads == nil {
		leads = []*storage.Lead{}
	}
	writeJSON(w, http.StatusOK, LeadListDTO{Leads: leads, Count: len(leads)})
}

// Get handles GET /leads/{id}?skills=a,b.
func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.leadID(w, r)
	if !ok {
		return
	}
	lead, err := h.leads.GetByID(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp := LeadDTO{Lead: lead}
	if raw := r.URL.Query().Get("skills"); raw != "" {
		pct := lead.SkillMatchPercent(splitSkills(raw))
		resp.SkillMatchPercent = &pct
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /leads.
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LeadRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	lead := &storage.Lead{}
	req.apply(lead)
	if !h.emailAvailable(w, r, lead.Email, 0) {
		return
	}
	if err := h.leads.Create(ctx, lead); err != nil {
		h.fail(w, r, err)
		return
	}
	h.invalidate(r)

	h.logger.WithContext(ctx).Info().Int64("lead_id", lead.ID).Msg("Lead created")
	writeJSON(w, http.StatusCreated, LeadDTO{Lead: lead})
}

// Update handles PUT /leads/{id}. The stored match score is kept.
func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.leadID(w, r)
	if !ok {
		return
	}

	var req LeadRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	lead, err := h.leads.GetByID(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	req.apply(lead)
	if !h.emailAvailable(w, r, lead.Email, id) {
		return
	}
	if err := h.leads.Update(ctx, lead); err != nil {
		h.fail(w, r, err)
		return
	}
	h.invalidate(r)

	h.logger.WithContext(ctx).Info().Int64("lead_id", id).Msg("Lead updated")
	writeJSON(w, http.StatusOK, LeadDTO{Lead: lead})
}

// Delete handles DELETE /leads/{id}.
func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.leadID(w, r)
	if !ok {
		return
	}
	if err := h.leads.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.invalidate(r)

	h.logger.WithContext(r.Context()).Info().Int64("lead_id", id).Msg("Lead deleted")
	w.WriteHeader(http.StatusNoContent)
}

// Export handles GET /leads/export.
func (h *LeadHandler) Export(w http.ResponseWriter, r *http.Request) {
	// Buffered so a failure can still be reported as JSON.
	var buf bytes.Buffer
	if _, err := h.exporter.Export(r.Context(), &buf); err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", export.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

func (h *LeadHandler) emailAvailable(w http.ResponseWriter, r *http.Request, email string, selfID int64) bool {
	if email == "" {
		return true
	}
	existing, err := h.leads.GetByEmail(r.Context(), email)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return true
	case err != nil:
		h.fail(w, r, err)
		return false
	case existing.ID == selfID:
		return true
	}
	writeError(w, http.StatusConflict, "a lead with this email already exists", email)
	return false
}

func (h *LeadHandler) leadID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid lead id", chi.URLParam(r, "id"))
		return 0, false
	}
	return id, true
}

func (h *LeadHandler) invalidate(r *http.Request) {
	if err := cache.InvalidateLeads(r.Context(), h.cache); err != nil {
		h.logger.WithContext(r.Context()).Warn().Err(err).Msg("Cache invalidation failed")
	}
}

func (h *LeadHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.WithContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Lead request failed")
	}
	writeError(w, status, messageFor(err), err.Error())
}

func splitSkills(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
