// Package app wires the lead engine components from configuration. The API server and
// the CLI share it.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/aimatch"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/cache"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/config"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/export"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/ingest"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/llm"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/observability"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/search"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/storage"
)

// Services holds the wired components.
type Services struct {
	Config   *config.Config
	Logger   *observability.Logger
	DB       *sql.DB
	Repos    *storage.Repositories
	Cache    cache.Client
	Scorer   *search.Scorer
	AI       *aimatch.Orchestrator
	Pipeline *ingest.Pipeline
	Exporter *export.Writer
}

// New opens the database and cache and builds every component. A language-model
// client that cannot be built leaves AI matching unconfigured instead of failing.
func New(ctx context.Context, cfg *config.Config, logger *observability.Logger) (*Services, error) {
	if logger == nil {
		logger = observability.NopLogger()
	}

	db, err := OpenDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}

	cacheClient, err := OpenCache(ctx, cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	completer, err := llm.New(ctx, cfg.AI)
	if err != nil {
		logger.Warn().Err(err).Str("provider", cfg.AI.Provider).Msg("AI matching disabled")
		completer = nil
	}

	return Build(cfg, logger, db, cacheClient, completer), nil
}

// Build assembles the components over an open database. completer may be nil.
func Build(cfg *config.Config, logger *observability.Logger, db *sql.DB, cacheClient cache.Client, completer llm.Completer) *Services {
	repos := storage.NewRepositories(db)

	return &Services{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Repos:  repos,
		Cache:  cacheClient,
		Scorer: search.NewScorer(repos.Leads, logger),
		AI: aimatch.NewOrchestrator(repos.Leads, completer, cacheClient, logger, aimatch.Options{
			Temperature: cfg.AI.Temperature,
			MaxTokens:   cfg.AI.MaxTokens,
			WindowSize:  cfg.AI.WindowSize,
			CacheTTL:    cfg.Cache.TTL,
		}),
		Pipeline: ingest.NewPipeline(logger, ingest.PipelineConfig{
			MaxUploadBytes:    cfg.Ingestion.MaxUploadBytes,
			AllowedExtensions: cfg.Ingestion.AllowedExtensions,
			EmailDomain:       cfg.Ingestion.EmailDomain,
		}, repos, cacheClient),
		Exporter: export.NewWriter(repos.Leads, logger),
	}
}

// Close releases the cache and the database.
func (s *Services) Close() error {
	var firstErr error
	if s.Cache != nil {
		if err := s.Cache.Close(); err != nil {
			firstErr = err
		}
	}
	if s.DB != nil {
		if err := s.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// OpenDatabase connects to the configured database and applies the schema.
func OpenDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	opts := storage.OpenOptions{}
	switch cfg.Database.Driver {
	case storage.DriverSQLite:
		opts.MaxOpenConns = cfg.Database.SQLite.MaxOpenConns
		opts.JournalMode = cfg.Database.SQLite.JournalMode
	case storage.DriverPostgres:
		opts.MaxOpenConns = cfg.Database.Postgres.MaxOpenConns
		opts.MaxIdleConns = cfg.Database.Postgres.MaxIdleConns
		opts.ConnMaxLifetime = cfg.Database.Postgres.ConnMaxLifetime
	}

	db, err := storage.Open(ctx, cfg.Database.Driver, cfg.DatabaseDSN(), opts)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

// OpenCache builds the configured cache client.
func OpenCache(ctx context.Context, cfg *config.Config) (cache.Client, error) {
	switch cfg.Cache.Driver {
	case "redis":
		rc := cfg.Cache.Redis
		var (
			client *cache.RedisClient
			err    error
		)
		if rc.URL != "" {
			client, err = cache.NewRedisClientFromURL(ctx, rc.URL, rc.Prefix)
		} else {
			client, err = cache.NewRedisClient(ctx, cache.RedisConfig{
				Addr:     rc.Addr,
				Password: rc.Password,
				DB:       rc.DB,
				PoolSize: rc.PoolSize,
				Prefix:   rc.Prefix,
			})
		}
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return client, nil
	case "memory", "":
		return cache.NewMemoryClient(cfg.Cache.MaxEntries), nil
	default:
		return nil, fmt.Errorf("unsupported cache driver: %s", cfg.Cache.Driver)
	}
}
