package storage

import (
	"context"
	"fmt"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS leads (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT UNIQUE,
		phone TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT '',
		company TEXT NOT NULL DEFAULT '',
		linkedin_url TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		skills TEXT NOT NULL DEFAULT '',
		experience_years INTEGER NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT '',
		match_score REAL NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_ranking ON leads (match_score DESC, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS upload_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filename TEXT NOT NULL,
		uploaded_at TIMESTAMP NOT NULL,
		records_imported INTEGER NOT NULL DEFAULT 0,
		records_updated INTEGER NOT NULL DEFAULT 0
	)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS leads (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(200) NOT NULL,
		email VARCHAR(254) UNIQUE,
		phone VARCHAR(50) NOT NULL DEFAULT '',
		role VARCHAR(200) NOT NULL DEFAULT '',
		company VARCHAR(200) NOT NULL DEFAULT '',
		linkedin_url VARCHAR(500) NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		skills TEXT NOT NULL DEFAULT '',
		experience_years INTEGER NOT NULL DEFAULT 0 CHECK (experience_years >= 0),
		notes TEXT NOT NULL DEFAULT '',
		match_score DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_ranking ON leads (match_score DESC, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS upload_history (
		id BIGSERIAL PRIMARY KEY,
		filename VARCHAR(255) NOT NULL,
		uploaded_at TIMESTAMPTZ NOT NULL,
		records_imported INTEGER NOT NULL DEFAULT 0,
		records_updated INTEGER NOT NULL DEFAULT 0
	)`,
}

// Migrate creates the lead engine schema if it does not exist yet.
func Migrate(ctx context.Context, db DB, driver string) error {
	var stmts []string
	switch driver {
	case DriverSQLite:
		stmts = sqliteSchema
	case DriverPostgres:
		stmts = postgresSchema
	default:
		return fmt.Errorf("unsupported database driver: %s", driver)
	}

	for i, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d: %w", i+1, err)
		}
	}
	return nil
}
