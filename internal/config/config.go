// Package config provides unified configuration loading for the Lead Engine.
// Supports YAML files, a .env file, environment variables, and programmatic overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the Lead Engine.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Cache         CacheConfig         `yaml:"cache"`
	AI            AIConfig            `yaml:"ai"`
	Ingestion     IngestionConfig     `yaml:"ingestion"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
	AllowedOrigins   []string      `yaml:"allowed_origins"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver   string         `yaml:"driver"` // sqlite or postgres
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path         string `yaml:"path"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	JournalMode  string `yaml:"journal_mode"`
}

// PostgresConfig holds Postgres-specific settings.
type PostgresConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// CacheConfig holds cache settings.
type CacheConfig struct {
	Driver     string        `yaml:"driver"` // memory or redis
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
	Redis      RedisConfig   `yaml:"redis"`
}

// RedisConfig holds Redis-specific settings.
type RedisConfig struct {
	URL      string `yaml:"url"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
	Prefix   string `yaml:"prefix"`
}

// AIConfig holds language-model settings for AI lead matching.
type AIConfig struct {
	Provider    string        `yaml:"provider"` // openai or gemini
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	WindowSize  int           `yaml:"window_size"`
	Timeout     time.Duration `yaml:"timeout"`
}

// IngestionConfig holds spreadsheet upload settings.
type IngestionConfig struct {
	MaxUploadBytes    int64    `yaml:"max_upload_bytes"`
	AllowedExtensions []string `yaml:"allowed_extensions"`
	EmailDomain       string   `yaml:"email_domain"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	ServiceName string `yaml:"service_name"`
}

// Provider names.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Load reads configuration from a YAML file and applies .env and environment overrides.
// When path is empty, CONFIG_PATH is consulted.
func Load(path string) (*Config, error) {
	// A missing .env is fine.
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}

		if cfg.Database.Driver == "sqlite" && cfg.Database.SQLite.Path != ":memory:" {
			cfg.Database.SQLite.Path = ResolveRelativePath(path, cfg.Database.SQLite.Path)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for development.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8090,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     90 * time.Second,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 10 * time.Second,
			AllowedOrigins:   []string{"*"},
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			SQLite: SQLiteConfig{
				Path:         "leads.db",
				MaxOpenConns: 1,
				JournalMode:  "WAL",
			},
			Postgres: PostgresConfig{
				MaxOpenConns:    25,
				MaxIdleConns:    5,
				ConnMaxLifetime: 5 * time.Minute,
			},
		},
		Cache: CacheConfig{
			Driver:     "memory",
			TTL:        10 * time.Minute,
			MaxEntries: 1000,
			Redis: RedisConfig{
				Addr:     "localhost:6379",
				PoolSize: 10,
				Prefix:   "le:",
			},
		},
		AI: AIConfig{
			Provider:    ProviderOpenAI,
			Model:       "gpt-3.5-turbo",
			BaseURL:     "https://api.openai.com/v1",
			Temperature: 0.3,
			MaxTokens:   1500,
			WindowSize:  150,
			Timeout:     60 * time.Second,
		},
		Ingestion: IngestionConfig{
			MaxUploadBytes:    10 << 20,
			AllowedExtensions: []string{".xlsx", ".xls"},
			EmailDomain:       "leads.local",
		},
		Observability: ObservabilityConfig{
			LogLevel:    "info",
			LogFormat:   "json",
			ServiceName: "lead-engine",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.SQLite.Path == "" {
			return fmt.Errorf("database.sqlite.path is required")
		}
	case "postgres":
		if c.Database.Postgres.DSN == "" {
			return fmt.Errorf("database.postgres.dsn is required")
		}
	default:
		return fmt.Errorf("invalid database driver: %s", c.Database.Driver)
	}

	if c.Cache.Driver != "memory" && c.Cache.Driver != "redis" {
		return fmt.Errorf("invalid cache driver: %s", c.Cache.Driver)
	}

	if c.AI.Provider != ProviderOpenAI && c.AI.Provider != ProviderGemini {
		return fmt.Errorf("invalid ai provider: %s", c.AI.Provider)
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		return fmt.Errorf("ai.temperature must be between 0 and 2")
	}
	if c.AI.MaxTokens < 1 {
		return fmt.Errorf("ai.max_tokens must be positive")
	}
	if c.AI.WindowSize < 1 {
		return fmt.Errorf("ai.window_size must be positive")
	}

	if c.Ingestion.MaxUploadBytes < 1 {
		return fmt.Errorf("ingestion.max_upload_bytes must be positive")
	}
	if len(c.Ingestion.AllowedExtensions) == 0 {
		return fmt.Errorf("ingestion.allowed_extensions must not be empty")
	}
	if strings.TrimSpace(c.Ingestion.EmailDomain) == "" {
		return fmt.Errorf("ingestion.email_domain is required")
	}

	return nil
}

// DatabaseDSN returns the appropriate database connection string.
func (c *Config) DatabaseDSN() string {
	if c.Database.Driver == "sqlite" {
		return c.Database.SQLite.Path
	}
	return c.Database.Postgres.DSN
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		if strings.HasPrefix(v, "sqlite:") {
			cfg.Database.Driver = "sqlite"
			cfg.Database.SQLite.Path = strings.TrimPrefix(v, "sqlite:")
		} else if strings.HasPrefix(v, "postgres") {
			cfg.Database.Driver = "postgres"
			cfg.Database.Postgres.DSN = v
		}
	}

	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Cache.Driver = "redis"
		cfg.Cache.Redis.URL = v
	}

	if v := os.Getenv("AI_PROVIDER"); v != "" {
		cfg.AI.Provider = strings.ToLower(v)
	}

	if v := os.Getenv("AI_MODEL"); v != "" {
		cfg.AI.Model = v
	}

	if v := os.Getenv("AI_BASE_URL"); v != "" {
		cfg.AI.BaseURL = v
	}

	if cfg.AI.APIKey == "" {
		switch cfg.AI.Provider {
		case ProviderGemini:
			cfg.AI.APIKey = os.Getenv("GEMINI_API_KEY")
		default:
			cfg.AI.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
}

// ResolveRelativePath resolves a path relative to the config file location.
func ResolveRelativePath(configPath, targetPath string) string {
	if filepath.IsAbs(targetPath) {
		return targetPath
	}
	configDir := filepath.Dir(configPath)
	return filepath.Join(configDir, targetPath)
}
