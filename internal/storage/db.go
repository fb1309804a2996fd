package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// OpenOptions tunes the connection pool.
type OpenOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// JournalMode applies to sqlite only.
	JournalMode string
}

// Open connects to the configured database, verifies the connection and applies the schema.
func Open(ctx context.Context, driver, dsn string, opts OpenOptions) (*sql.DB, error) {
	var driverName string
	switch driver {
	case DriverSQLite:
		driverName = "sqlite3"
		if opts.JournalMode != "" {
			dsn = appendSQLiteParam(dsn, "_journal_mode", opts.JournalMode)
		}
		dsn = appendSQLiteParam(dsn, "_busy_timeout", "5000")
	case DriverPostgres:
		driverName = "postgres"
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	if err := Migrate(ctx, db, driver); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func appendSQLiteParam(dsn, key, value string) string {
	if dsn == ":memory:" {
		dsn = "file::memory:"
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + key + "=" + value
}
