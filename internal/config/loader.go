package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies MARKETLENS_* environment variable overrides,
// and returns the final Config. The returned Config has NOT been validated;
// the caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known MARKETLENS_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Engine ──
	setFloat64(&cfg.Engine.SimilarityFloor, "MARKETLENS_ENGINE_SIMILARITY_FLOOR")
	setFloat64(&cfg.Engine.MatchFloor, "MARKETLENS_ENGINE_MATCH_FLOOR")
	setFloat64(&cfg.Engine.GroupFloor, "MARKETLENS_ENGINE_GROUP_FLOOR")
	setFloat64(&cfg.Engine.DivergenceSpreadFloor, "MARKETLENS_ENGINE_DIVERGENCE_SPREAD_FLOOR")
	setFloat64(&cfg.Engine.SanityTolerance, "MARKETLENS_ENGINE_SANITY_TOLERANCE")
	setFloat64(&cfg.Engine.NearArbitrageFloor, "MARKETLENS_ENGINE_NEAR_ARBITRAGE_FLOOR")
	setDuration(&cfg.Engine.FreshnessHalfLife, "MARKETLENS_ENGINE_FRESHNESS_HALF_LIFE")

	// ── Venues ──
	setBool(&cfg.Venues.Polymarket.Enabled, "MARKETLENS_VENUES_POLYMARKET_ENABLED")
	setStr(&cfg.Venues.Polymarket.BaseURL, "MARKETLENS_VENUES_POLYMARKET_BASE_URL")
	setInt(&cfg.Venues.Polymarket.PageSize, "MARKETLENS_VENUES_POLYMARKET_PAGE_SIZE")
	setBool(&cfg.Venues.Kalshi.Enabled, "MARKETLENS_VENUES_KALSHI_ENABLED")
	setStr(&cfg.Venues.Kalshi.BaseURL, "MARKETLENS_VENUES_KALSHI_BASE_URL")
	setInt(&cfg.Venues.Kalshi.PageSize, "MARKETLENS_VENUES_KALSHI_PAGE_SIZE")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "MARKETLENS_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "MARKETLENS_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "MARKETLENS_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "MARKETLENS_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "MARKETLENS_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "MARKETLENS_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "MARKETLENS_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "MARKETLENS_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "MARKETLENS_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "MARKETLENS_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "MARKETLENS_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "MARKETLENS_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "MARKETLENS_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "MARKETLENS_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "MARKETLENS_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "MARKETLENS_REDIS_TLS_ENABLED")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "MARKETLENS_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "MARKETLENS_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "MARKETLENS_S3_REGION")
	setStr(&cfg.S3.Bucket, "MARKETLENS_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "MARKETLENS_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "MARKETLENS_S3_SECRET_KEY")
	setBool(&cfg.S3.ForcePathStyle, "MARKETLENS_S3_FORCE_PATH_STYLE")

	// ── Refresh ──
	setDuration(&cfg.Refresh.Interval, "MARKETLENS_REFRESH_INTERVAL")
	setDuration(&cfg.Refresh.LockTTL, "MARKETLENS_REFRESH_LOCK_TTL")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "MARKETLENS_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "MARKETLENS_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "MARKETLENS_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "MARKETLENS_SERVER_API_KEY")
	setInt(&cfg.Server.RateLimit, "MARKETLENS_SERVER_RATE_LIMIT")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "MARKETLENS_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "MARKETLENS_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "MARKETLENS_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "MARKETLENS_NOTIFY_EVENTS")
	setFloat64(&cfg.Notify.MinScore, "MARKETLENS_NOTIFY_MIN_SCORE")

	// ── Top-level ──
	setStr(&cfg.Mode, "MARKETLENS_MODE")
	setStr(&cfg.LogLevel, "MARKETLENS_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
