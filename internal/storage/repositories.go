package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Common errors
var (
	ErrNotFound = errors.New("record not found")
	ErrInvalid  = errors.New("invalid record")
)

// DB represents a database connection interface.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Repositories bundles the repositories sharing one connection.
type Repositories struct {
	Leads   *LeadRepository
	Uploads *UploadHistoryRepository
}

// NewRepositories creates all repositories over db.
func NewRepositories(db DB) *Repositories {
	return &Repositories{
		Leads:   NewLeadRepository(db),
		Uploads: NewUploadHistoryRepository(db),
	}
}

const leadColumns = `id, name, email, phone, role, company, linkedin_url, location,
		skills, experience_years, notes, match_score, created_at, updated_at`

// leadOrder is the default listing order: best last-search score first, then newest.
const leadOrder = `ORDER BY match_score DESC, created_at DESC, id ASC`

// LeadRepository handles lead CRUD operations.
type LeadRepository struct {
	db DB
}

// NewLeadRepository creates a new lead repository.
func NewLeadRepository(db DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// Create inserts a new lead and fills in its ID and timestamps.
func (r *LeadRepository) Create(ctx context.Context, lead *Lead) error {
	if err := validateLead(lead); err != nil {
		return err
	}
	now := time.Now().UTC()
	lead.CreatedAt = now
	lead.UpdatedAt = now

	query := `
		INSERT INTO leads (name, email, phone, role, company, linkedin_url, location,
			skills, experience_years, notes, match_score, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`
	return r.db.QueryRowContext(ctx, query,
		lead.Name, nullString(lead.Email), lead.Phone, lead.Role, lead.Company,
		lead.LinkedInURL, lead.Location, lead.Skills, lead.ExperienceYears, lead.Notes,
		lead.MatchScore, lead.CreatedAt, lead.UpdatedAt,
	).Scan(&lead.ID)
}

// Update overwrites the editable fields of an existing lead. MatchScore is left alone.
func (r *LeadRepository) Update(ctx context.Context, lead *Lead) error {
	if err := validateLead(lead); err != nil {
		return err
	}
	lead.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE leads SET name = $1, email = $2, phone = $3, role = $4, company = $5,
			linkedin_url = $6, location = $7, skills = $8, experience_years = $9,
			notes = $10, updated_at = $11
		WHERE id = $12
	`
	res, err := r.db.ExecContext(ctx, query,
		lead.Name, nullString(lead.Email), lead.Phone, lead.Role, lead.Company,
		lead.LinkedInURL, lead.Location, lead.Skills, lead.ExperienceYears, lead.Notes,
		lead.UpdatedAt, lead.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// UpsertByEmail loads the lead with the given email, or starts a new one, passes it to
// apply, and saves the result. It reports whether a new lead was created.
func (r *LeadRepository) UpsertByEmail(ctx context.Context, email string, apply func(*Lead)) (*Lead, bool, error) {
	if strings.TrimSpace(email) == "" {
		return nil, false, fmt.Errorf("%w: upsert requires an email", ErrInvalid)
	}

	lead, err := r.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrNotFound):
		lead = &Lead{Email: email}
		apply(lead)
		lead.Email = email
		if err := r.Create(ctx, lead); err != nil {
			return nil, false, fmt.Errorf("create lead: %w", err)
		}
		return lead, true, nil
	case err != nil:
		return nil, false, err
	}

	apply(lead)
	lead.Email = email
	if err := r.Update(ctx, lead); err != nil {
		return nil, false, fmt.Errorf("update lead: %w", err)
	}
	return lead, false, nil
}

// GetByID retrieves a lead by ID.
func (r *LeadRepository) GetByID(ctx context.Context, id int64) (*Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	return scanLead(r.db.QueryRowContext(ctx, query, id))
}

// GetByEmail retrieves a lead by its unique email.
func (r *LeadRepository) GetByEmail(ctx context.Context, email string) (*Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE email = $1`
	return scanLead(r.db.QueryRowContext(ctx, query, email))
}

// Delete removes a lead by ID.
func (r *LeadRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// List returns every lead in default order.
func (r *LeadRepository) List(ctx context.Context) ([]*Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads ` + leadOrder
	return r.queryLeads(ctx, query)
}

// ListLimit returns at most limit leads in default order.
func (r *LeadRepository) ListLimit(ctx context.Context, limit int) ([]*Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads ` + leadOrder + ` LIMIT $1`
	return r.queryLeads(ctx, query, limit)
}

// Search returns leads whose name, email, company or skills contain term,
// case-insensitively, in default order. An empty term lists everything.
func (r *LeadRepository) Search(ctx context.Context, term string) ([]*Lead, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return r.List(ctx)
	}

	query := `
		SELECT ` + leadColumns + ` FROM leads
		WHERE LOWER(name) LIKE $1 ESCAPE '\'
			OR LOWER(COALESCE(email, '')) LIKE $1 ESCAPE '\'
			OR LOWER(company) LIKE $1 ESCAPE '\'
			OR LOWER(skills) LIKE $1 ESCAPE '\'
		` + leadOrder
	return r.queryLeads(ctx, query, likePattern(term))
}

// Count returns the number of stored leads.
func (r *LeadRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads`).Scan(&n)
	return n, err
}

// UpdateMatchScore writes only the match_score column of one lead.
func (r *LeadRepository) UpdateMatchScore(ctx context.Context, id int64, score float64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE leads SET match_score = $1 WHERE id = $2`, score, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *LeadRepository) queryLeads(ctx context.Context, query string, args ...interface{}) ([]*Lead, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []*Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLead(row rowScanner) (*Lead, error) {
	lead := &Lead{}
	var email sql.NullString
	err := row.Scan(
		&lead.ID, &lead.Name, &email, &lead.Phone, &lead.Role, &lead.Company,
		&lead.LinkedInURL, &lead.Location, &lead.Skills, &lead.ExperienceYears,
		&lead.Notes, &lead.MatchScore, &lead.CreatedAt, &lead.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	lead.Email = email.String
	return lead, nil
}

// UploadHistoryRepository stores ingestion provenance.
type UploadHistoryRepository struct {
	db DB
}

// NewUploadHistoryRepository creates a new upload history repository.
func NewUploadHistoryRepository(db DB) *UploadHistoryRepository {
	return &UploadHistoryRepository{db: db}
}

// Create records one ingestion run.
func (r *UploadHistoryRepository) Create(ctx context.Context, h *UploadHistory) error {
	h.UploadedAt = time.Now().UTC()

	query := `
		INSERT INTO upload_history (filename, uploaded_at, records_imported, records_updated)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return r.db.QueryRowContext(ctx, query,
		h.Filename, h.UploadedAt, h.RecordsImported, h.RecordsUpdated,
	).Scan(&h.ID)
}

// List returns upload history newest first. A limit <= 0 returns everything.
func (r *UploadHistoryRepository) List(ctx context.Context, limit int) ([]*UploadHistory, error) {
	query := `
		SELECT id, filename, uploaded_at, records_imported, records_updated
		FROM upload_history
		ORDER BY uploaded_at DESC, id DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*UploadHistory
	for rows.Next() {
		h := &UploadHistory{}
		if err := rows.Scan(&h.ID, &h.Filename, &h.UploadedAt, &h.RecordsImported, &h.RecordsUpdated); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func validateLead(lead *Lead) error {
	if strings.TrimSpace(lead.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if lead.ExperienceYears < 0 {
		return fmt.Errorf("%w: experience_years must be >= 0", ErrInvalid)
	}
	return nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}
