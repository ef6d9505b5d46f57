// Package config defines the top-level configuration for marketlens and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by MARKETLENS_* environment
// variables.
type Config struct {
	Engine   EngineConfig   `toml:"engine"`
	Venues   VenuesConfig   `toml:"venues"`
	Postgres PostgresConfig `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	Refresh  RefreshConfig  `toml:"refresh"`
	Server   ServerConfig   `toml:"server"`
	Notify   NotifyConfig   `toml:"notify"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// EngineConfig exposes the matching and detection thresholds as tunable
// parameters rather than hidden literals.
type EngineConfig struct {
	// SimilarityFloor is the minimum title similarity for a pair to stay
	// in consideration.
	SimilarityFloor float64 `toml:"similarity_floor"`
	// MatchFloor is the minimum total score for the scorer to accept a pair.
	MatchFloor float64 `toml:"match_floor"`
	// GroupFloor is the minimum candidate score for group assignment. It
	// usually equals MatchFloor but may be raised independently.
	GroupFloor float64 `toml:"group_floor"`
	// DivergenceSpreadFloor is the minimum absolute cross-venue spread for
	// an outcome bucket to count as significant.
	DivergenceSpreadFloor float64 `toml:"divergence_spread_floor"`
	// SanityTolerance is the allowed deviation of a market's outcome-price
	// sum from 1.
	SanityTolerance float64 `toml:"sanity_tolerance"`
	// NearArbitrageFloor is the (negative) profit floor for reporting
	// near-arbitrage pairings.
	NearArbitrageFloor float64 `toml:"near_arbitrage_floor"`
	// FreshnessHalfLife controls the exponential decay of severity scores
	// with data age.
	FreshnessHalfLife duration `toml:"freshness_half_life"`
}

// VenueConfig holds the fetch parameters for one venue API.
type VenueConfig struct {
	Enabled  bool   `toml:"enabled"`
	BaseURL  string `toml:"base_url"`
	PageSize int    `toml:"page_size"`
}

// VenuesConfig holds per-venue API endpoints.
type VenuesConfig struct {
	Polymarket VenueConfig `toml:"polymarket"`
	Kalshi     VenueConfig `toml:"kalshi"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters for scan-report
// archiving. Archiving is optional; leave Enabled false to skip it.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// RefreshConfig holds the periodic refresh-cycle parameters.
type RefreshConfig struct {
	// Interval between refresh cycles in full mode.
	Interval duration `toml:"interval"`
	// LockTTL bounds how long a crashed cycle can hold the refresh lock.
	LockTTL duration `toml:"lock_ttl"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	// APIKey protects the refresh endpoint; empty disables auth.
	APIKey string `toml:"api_key"`
	// RateLimit caps API requests per client IP per second; zero disables it.
	RateLimit int `toml:"rate_limit"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
	// MinScore suppresses alerts for findings below this severity.
	MinScore float64 `toml:"min_score"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Engine: EngineConfig{
			SimilarityFloor:       0.50,
			MatchFloor:            55,
			GroupFloor:            55,
			DivergenceSpreadFloor: 0.03,
			SanityTolerance:       0.03,
			NearArbitrageFloor:    -0.02,
			FreshnessHalfLife:     duration{60 * time.Minute},
		},
		Venues: VenuesConfig{
			Polymarket: VenueConfig{
				Enabled:  true,
				BaseURL:  "https://gamma-api.polymarket.com",
				PageSize: 200,
			},
			Kalshi: VenueConfig{
				Enabled:  true,
				BaseURL:  "https://api.elections.kalshi.com/trade-api/v2",
				PageSize: 200,
			},
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "marketlens",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "marketlens-reports",
			ForcePathStyle: true,
		},
		Refresh: RefreshConfig{
			Interval: duration{10 * time.Minute},
			LockTTL:  duration{5 * time.Minute},
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
			RateLimit:   20,
		},
		Notify: NotifyConfig{
			Events:   []string{"arbitrage", "cross_venue_divergence"},
			MinScore: 60,
		},
		Mode:     "full",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"serve": true,
	"scan":  true,
	"full":  true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: serve, scan, full)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Engine thresholds.
	if c.Engine.SimilarityFloor < 0 || c.Engine.SimilarityFloor > 1 {
		errs = append(errs, fmt.Sprintf("engine: similarity_floor must be in [0,1], got %g", c.Engine.SimilarityFloor))
	}
	if c.Engine.MatchFloor <= 0 || c.Engine.MatchFloor > 100 {
		errs = append(errs, fmt.Sprintf("engine: match_floor must be in (0,100], got %g", c.Engine.MatchFloor))
	}
	if c.Engine.GroupFloor <= 0 || c.Engine.GroupFloor > 100 {
		errs = append(errs, fmt.Sprintf("engine: group_floor must be in (0,100], got %g", c.Engine.GroupFloor))
	}
	if c.Engine.DivergenceSpreadFloor < 0 {
		errs = append(errs, "engine: divergence_spread_floor must not be negative")
	}
	if c.Engine.SanityTolerance < 0 {
		errs = append(errs, "engine: sanity_tolerance must not be negative")
	}
	if c.Engine.NearArbitrageFloor > 0 {
		errs = append(errs, "engine: near_arbitrage_floor must not be positive")
	}
	if c.Engine.FreshnessHalfLife.Duration <= 0 {
		errs = append(errs, "engine: freshness_half_life must be positive")
	}

	// Venues — at least one must be enabled for modes that ingest.
	if c.Mode == "scan" || c.Mode == "full" {
		if !c.Venues.Polymarket.Enabled && !c.Venues.Kalshi.Enabled {
			errs = append(errs, "venues: at least one venue must be enabled for mode "+c.Mode)
		}
	}
	if c.Venues.Polymarket.Enabled && c.Venues.Polymarket.BaseURL == "" {
		errs = append(errs, "venues: polymarket.base_url must not be empty when enabled")
	}
	if c.Venues.Kalshi.Enabled && c.Venues.Kalshi.BaseURL == "" {
		errs = append(errs, "venues: kalshi.base_url must not be empty when enabled")
	}

	// Postgres.
	if strings.TrimSpace(c.Postgres.DSN) == "" {
		if c.Postgres.Host == "" {
			errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
		}
		if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
			errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
		}
		if c.Postgres.Database == "" {
			errs = append(errs, "postgres: database must not be empty")
		}
	}
	if c.Postgres.PoolMaxConns < 1 {
		errs = append(errs, "postgres: pool_max_conns must be >= 1")
	}
	if c.Postgres.PoolMinConns < 0 {
		errs = append(errs, "postgres: pool_min_conns must be >= 0")
	}
	if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
		errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
	}

	// Redis.
	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// S3.
	if c.S3.Enabled {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty when enabled")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when enabled")
		}
	}

	// Refresh.
	if c.Refresh.Interval.Duration <= 0 {
		errs = append(errs, "refresh: interval must be positive")
	}
	if c.Refresh.LockTTL.Duration <= 0 {
		errs = append(errs, "refresh: lock_ttl must be positive")
	}

	// Server.
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
