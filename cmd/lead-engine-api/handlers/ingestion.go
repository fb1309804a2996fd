package handlers

import (
	"errors"
	"net/http"

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/ingest"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/observability"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/storage"
)

// uploadField is the multipart field carrying the workbook.
const uploadField = "file"

// IngestionHandler handles spreadsheet uploads and the upload history.
type IngestionHandler struct {
	logger         *observability.Logger
	pipeline       *ingest.Pipeline
	uploads        *storage.UploadHistoryRepository
	maxUploadBytes int64
}

// NewIngestionHandler creates an ingestion handler.
func NewIngestionHandler(logger *observability.Logger, pipeline *ingest.Pipeline, uploads *storage.UploadHistoryRepository, maxUploadBytes int64) *IngestionHandler {
	return &IngestionHandler{
		logger:         logger.WithComponent("api.ingest"),
		pipeline:       pipeline,
		uploads:        uploads,
		maxUploadBytes: maxUploadBytes,
	}
}

// UploadResultDTO is the reply to a successful upload.
type UploadResultDTO struct {
	*ingest.IngestionResult
	Message string `json:"message"`
}

// UploadHistoryDTO lists past uploads, newest first.
type UploadHistoryDTO struct {
	Uploads []*storage.UploadHistory `json:"uploads"`
}

// Upload handles POST /leads/upload with the workbook in the multipart field "file".
// The run is synchronous; the reply carries the import counts.
func (h *IngestionHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := h.logger.WithContext(ctx)

	// Room for the multipart envelope around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large", err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form", err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded", err.Error())
		return
	}
	defer file.Close()

	if err := h.pipeline.ValidateUpload(header.Filename, header.Size); err != nil {
		writeError(w, StatusFor(err), messageFor(err), "")
		return
	}

	log.Info().Str("filename", header.Filename).Int64("size", header.Size).Msg("Starting ingestion")

	result, err := h.pipeline.Ingest(ctx, ingest.IngestionRequest{
		Filename: header.Filename,
		Reader:   file,
	})
	if err != nil {
		status := StatusFor(err)
		if status >= http.StatusInternalServerError {
			log.Error().Err(err).Str("filename", header.Filename).Msg("Ingestion failed")
		}
		writeError(w, status, messageFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, UploadResultDTO{IngestionResult: result, Message: result.Message()})
}

// History handles GET /uploads?limit=.
func (h *IngestionHandler) History(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 20)
	if err != nil || limit < 1 {
		writeError(w, http.StatusBadRequest, "invalid limit", r.URL.Query().Get("limit"))
		return
	}

	uploads, err := h.uploads.List(r.Context(), limit)
	if err != nil {
		h.logger.WithContext(r.Context()).Error().Err(err).Msg("List uploads failed")
		writeError(w, StatusFor(err), messageFor(err), err.Error())
		return
	}
	if uploads == nil {
		uploads = []*storage.UploadHistory{}
	}
	writeJSON(w, http.StatusOK, UploadHistoryDTO{Uploads: uploads})
}
