// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/ingest.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// --------------------------------------------------------------------------
// Table names shared by the store and the loader.
// --------------------------------------------------------------------------

const (
	TeamStatsTable = "team_stats"
	MatchupsTable  = "matchups"
)

// Database backends selected by the DATABASE_URL scheme.
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// --------------------------------------------------------------------------
// Config is populated from environment variables.
// --------------------------------------------------------------------------

type Config struct {
	// Database
	DatabaseURL    string        `envconfig:"DATABASE_URL" required:"true"`
	DBPoolMinConns int           `envconfig:"DB_POOL_MIN_CONNS" default:"2"`
	DBPoolMaxConns int           `envconfig:"DB_POOL_MAX_CONNS" default:"10"`
	DBPoolMaxLife  time.Duration `envconfig:"DB_POOL_MAX_LIFE" default:"30m"`

	// API server
	APIHost     string `envconfig:"API_HOST" default:"0.0.0.0"`
	APIPort     int    `envconfig:"API_PORT" default:"8000"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"` // development, staging, production
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// CORS
	CORSAllowOrigins []string `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`

	// Rate limiting
	RateLimitEnabled  bool          `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"100"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"60s"`

	// Bracket reference data; empty uses the embedded schedule
	BracketFile string `envconfig:"BRACKET_FILE"`

	ScrapeConfig
}

// ScrapeConfig holds the scraper settings. Ingest commands that only read
// and write files load it on its own, without a database.
type ScrapeConfig struct {
	ScrapeRequestsPerMinute int           `envconfig:"SCRAPE_REQUESTS_PER_MINUTE" default:"8"`
	ScrapeMaxRetries        int           `envconfig:"SCRAPE_MAX_RETRIES" default:"3"`
	ScrapeInitialBackoff    time.Duration `envconfig:"SCRAPE_INITIAL_BACKOFF" default:"10s"`
	ScrapeTimeout           time.Duration `envconfig:"SCRAPE_TIMEOUT" default:"10s"`
	SportsReferenceBaseURL  string        `envconfig:"SPORTS_REFERENCE_BASE_URL" default:"https://www.sports-reference.com"`
	WikipediaBaseURL        string        `envconfig:"WIKIPEDIA_BASE_URL" default:"https://en.wikipedia.org"`
}

// Load reads configuration from the environment, after loading .env if present.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// LoadScrape reads only the scraper settings.
func LoadScrape() (*ScrapeConfig, error) {
	_ = godotenv.Load(".env")

	var cfg ScrapeConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the scraper settings.
func (s *ScrapeConfig) Validate() error {
	if s.ScrapeRequestsPerMinute < 1 {
		return fmt.Errorf("SCRAPE_REQUESTS_PER_MINUTE must be positive")
	}
	if s.ScrapeMaxRetries < 0 {
		return fmt.Errorf("SCRAPE_MAX_RETRIES must not be negative")
	}
	return nil
}

// Validate checks values envconfig cannot.
func (c *Config) Validate() error {
	if _, err := c.Backend(); err != nil {
		return err
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("API_PORT must be between 1 and 65535, got %d", c.APIPort)
	}
	if c.DBPoolMaxConns < 1 || c.DBPoolMinConns < 0 || c.DBPoolMinConns > c.DBPoolMaxConns {
		return fmt.Errorf("invalid pool sizes: min=%d max=%d", c.DBPoolMinConns, c.DBPoolMaxConns)
	}
	if c.RateLimitEnabled && (c.RateLimitRequests < 1 || c.RateLimitWindow <= 0) {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}
	return c.ScrapeConfig.Validate()
}

// Backend reports which store implementation DATABASE_URL selects.
func (c *Config) Backend() (string, error) {
	switch {
	case strings.HasPrefix(c.DatabaseURL, "postgres://"), strings.HasPrefix(c.DatabaseURL, "postgresql://"):
		return BackendPostgres, nil
	case strings.HasPrefix(c.DatabaseURL, "sqlite:"):
		return BackendSQLite, nil
	default:
		return "", fmt.Errorf("DATABASE_URL must start with postgres://, postgresql:// or sqlite:")
	}
}

// SQLitePath returns the file (or :memory:) named by a sqlite: DATABASE_URL.
func (c *Config) SQLitePath() string {
	p := strings.TrimPrefix(c.DatabaseURL, "sqlite:")
	return strings.TrimPrefix(p, "//")
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
