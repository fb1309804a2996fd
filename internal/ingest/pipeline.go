// Package ingest provides the spreadsheet ingestion pipeline for the Lead Engine.
package ingest

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/cache"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/domain"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/observability"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/storage"
)

// Pipeline imports lead spreadsheets into the store.
type Pipeline struct {
	logger *observability.Logger
	config PipelineConfig
	repos  *storage.Repositories
	cache  cache.Client
}

// PipelineConfig holds pipeline configuration.
type PipelineConfig struct {
	MaxUploadBytes    int64
	AllowedExtensions []string
	EmailDomain       string
}

// DefaultPipelineConfig returns the stock upload limits.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		MaxUploadBytes:    10 << 20,
		AllowedExtensions: []string{".xlsx", ".xls"},
		EmailDomain:       "leads.local",
	}
}

// ProgressFunc is called after each data row with the rows processed so far.
type ProgressFunc func(done, total int)

// IngestionRequest represents a request to ingest a spreadsheet.
type IngestionRequest struct {
	Filename string
	Reader   io.Reader
	Progress ProgressFunc
}

// IngestionResult represents the result of an ingestion run.
type IngestionResult struct {
	JobID       uuid.UUID     `json:"job_id"`
	UploadID    int64         `json:"upload_id"`
	Filename    string        `json:"filename"`
	TotalRows   int           `json:"total_rows"`
	Imported    int           `json:"records_imported"`
	Updated     int           `json:"records_updated"`
	Skipped     int           `json:"skipped"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt time.Time     `json:"completed_at"`
	Duration    time.Duration `json:"duration"`
}

// Message summarises the run for the user.
func (r *IngestionResult) Message() string {
	msg := fmt.Sprintf("Imported %d new leads, updated %d existing leads", r.Imported, r.Updated)
	if r.Skipped > 0 {
		msg += fmt.Sprintf(", skipped %d empty rows", r.Skipped)
	}
	return msg
}

// NewPipeline creates a new ingestion pipeline. cacheClient may be nil.
func NewPipeline(logger *observability.Logger, cfg PipelineConfig, repos *storage.Repositories, cacheClient cache.Client) *Pipeline {
	if logger == nil {
		logger = observability.NopLogger()
	}
	def := DefaultPipelineConfig()
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = def.MaxUploadBytes
	}
	if len(cfg.AllowedExtensions) == 0 {
		cfg.AllowedExtensions = def.AllowedExtensions
	}
	if cfg.EmailDomain == "" {
		cfg.EmailDomain = def.EmailDomain
	}
	return &Pipeline{
		logger: logger.WithComponent("ingest"),
		config: cfg,
		repos:  repos,
		cache:  cacheClient,
	}
}

// ValidateUpload checks the file name and size before anything is read.
func (p *Pipeline) ValidateUpload(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	allowed := false
	for _, e := range p.config.AllowedExtensions {
		if strings.EqualFold(ext, e) {
			allowed = true
			break
		}
	}
	if !allowed {
		return domain.ValidationError(
			fmt.Sprintf("unsupported file type %q, expected one of %s", ext, strings.Join(p.config.AllowedExtensions, ", ")), nil)
	}
	if size > p.config.MaxUploadBytes {
		return domain.ValidationError(
			fmt.Sprintf("file is %d bytes, the limit is %d bytes", size, p.config.MaxUploadBytes), nil)
	}
	return nil
}

// IngestFile opens path and ingests it.
func (p *Pipeline) IngestFile(ctx context.Context, path string, progress ProgressFunc) (*IngestionResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, domain.ValidationError("cannot read file", err)
	}
	if err := p.ValidateUpload(info.Name(), info.Size()); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, domain.ValidationError("cannot open file", err)
	}
	defer f.Close()

	return p.Ingest(ctx, IngestionRequest{Filename: info.Name(), Reader: f, Progress: progress})
}

// Ingest reads the first sheet of the workbook and upserts every row with a name,
// keyed by email. One upload history record is written when the run succeeds.
func (p *Pipeline) Ingest(ctx context.Context, req IngestionRequest) (*IngestionResult, error) {
	result := &IngestionResult{
		JobID:     uuid.New(),
		Filename:  req.Filename,
		StartedAt: time.Now(),
	}
	log := p.logger.WithContext(ctx).WithOperation("ingest")

	log.Info().
		Str("job_id", result.JobID.String()).
		Str("filename", req.Filename).
		Msg("Starting ingestion job")

	// Reading past the limit means the file is too large.
	data, err := io.ReadAll(io.LimitReader(req.Reader, p.config.MaxUploadBytes+1))
	if err != nil {
		return nil, domain.IngestionError("read upload", err)
	}
	if int64(len(data)) > p.config.MaxUploadBytes {
		return nil, domain.ValidationError(
			fmt.Sprintf("file exceeds the %d byte limit", p.config.MaxUploadBytes), nil)
	}

	rows, err := readSheet(data)
	if err != nil {
		return nil, err
	}

	var header []string
	if len(rows) > 0 {
		header = rows[0]
	}
	cols := columnIndex(header)
	if _, ok := cols[FieldName]; !ok {
		return nil, domain.ValidationError("Excel must contain a 'Name' column", nil)
	}

	dataRows := rows[min(1, len(rows)):]
	result.TotalRows = len(dataRows)

	for idx, row := range dataRows {
		if err := ctx.Err(); err != nil {
			return nil, domain.IngestionError(fmt.Sprintf("cancelled at row %d", idx), err)
		}

		rec := record{row: row, cols: cols}
		name := rec.name()
		if name == "" {
			result.Skipped++
			p.progress(req.Progress, idx+1, len(dataRows))
			continue
		}

		email := rec.get(FieldEmail)
		if email == "" {
			email = syntheticEmail(name, idx, p.config.EmailDomain)
		}

		_, created, err := p.repos.Leads.UpsertByEmail(ctx, email, func(l *storage.Lead) {
			l.Name = name
			l.Phone = rec.get(FieldPhone)
			l.Role = rec.get(FieldRole)
			l.Company = rec.get(FieldCompany)
			l.LinkedInURL = rec.get(FieldLinkedInURL)
			l.Location = rec.get(FieldLocation)
			l.Notes = rec.get(FieldNotes)
			if v := rec.get(FieldSkills); v != "" {
				l.Skills = v
			}
			if v := rec.get(FieldExperienceYears); v != "" {
				l.ExperienceYears = parseYears(v)
			}
		})
		if err != nil {
			log.Error().Err(err).Int("row", idx).Str("email", email).Msg("Row upsert failed, aborting")
			return nil, domain.IngestionError(fmt.Sprintf("row %d (%s)", idx, email), err)
		}
		if created {
			result.Imported++
		} else {
			result.Updated++
		}
		p.progress(req.Progress, idx+1, len(dataRows))
	}

	history := &storage.UploadHistory{
		Filename:        req.Filename,
		RecordsImported: result.Imported,
		RecordsUpdated:  result.Updated,
	}
	if err := p.repos.Uploads.Create(ctx, history); err != nil {
		return nil, domain.StorageError("record upload history", err)
	}
	result.UploadID = history.ID

	if err := cache.InvalidateLeads(ctx, p.cache); err != nil {
		log.Warn().Err(err).Msg("Cache invalidation failed")
	}

	result.CompletedAt = time.Now()
	result.Duration = result.CompletedAt.Sub(result.StartedAt)

	log.Info().
		Str("job_id", result.JobID.String()).
		Int("imported", result.Imported).
		Int("updated", result.Updated).
		Int("skipped", result.Skipped).
		Dur("duration", result.Duration).
		Msg("Ingestion job completed")

	return result, nil
}

func (p *Pipeline) progress(fn ProgressFunc, done, total int) {
	if fn != nil {
		fn(done, total)
	}
}

// record reads mapped cells of one row.
type record struct {
	row  []string
	cols map[string]int
}

// get returns the trimmed cell for field, or "" when the column is absent or the
// cell holds a missing-value marker.
func (r record) get(field string) string {
	v := r.raw(field)
	if strings.EqualFold(v, "nan") {
		return ""
	}
	return v
}

// name returns the lead name. Only the exact marker "nan" counts as missing here,
// so people called Nan are kept.
func (r record) name() string {
	v := r.raw(FieldName)
	if v == "nan" {
		return ""
	}
	return v
}

func (r record) raw(field string) string {
	i, ok := r.cols[field]
	if !ok || i >= len(r.row) {
		return ""
	}
	return strings.TrimSpace(r.row[i])
}

// syntheticEmail builds the placeholder address for a row without an email.
func syntheticEmail(name string, idx int, domainName string) string {
	local := strings.ReplaceAll(strings.ToLower(name), " ", ".")
	return fmt.Sprintf("%s.%d@%s", local, idx, domainName)
}

// parseYears reads an experience cell. Fractions are truncated, negatives and
// unreadable values become 0.
func parseYears(v string) int {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) || f < 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}
