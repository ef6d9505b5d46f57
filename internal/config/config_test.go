package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "full", cfg.Mode)
	assert.Equal(t, 55.0, cfg.Engine.MatchFloor)
	assert.Equal(t, 0.50, cfg.Engine.SimilarityFloor)
	assert.Equal(t, 60*time.Minute, cfg.Engine.FreshnessHalfLife.Duration)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown mode", func(c *Config) { c.Mode = "daemon" }, "unknown mode"},
		{"unknown log level", func(c *Config) { c.LogLevel = "trace" }, "unknown log_level"},
		{"similarity out of range", func(c *Config) { c.Engine.SimilarityFloor = 1.5 }, "similarity_floor"},
		{"zero match floor", func(c *Config) { c.Engine.MatchFloor = 0 }, "match_floor"},
		{"positive near floor", func(c *Config) { c.Engine.NearArbitrageFloor = 0.01 }, "near_arbitrage_floor"},
		{"zero half life", func(c *Config) { c.Engine.FreshnessHalfLife.Duration = 0 }, "freshness_half_life"},
		{"no venues enabled", func(c *Config) {
			c.Venues.Polymarket.Enabled = false
			c.Venues.Kalshi.Enabled = false
		}, "at least one venue"},
		{"missing redis addr", func(c *Config) { c.Redis.Addr = "" }, "redis: addr"},
		{"bad server port", func(c *Config) { c.Server.Port = 70000 }, "server: port"},
		{"s3 enabled without bucket", func(c *Config) {
			c.S3.Enabled = true
			c.S3.Bucket = ""
		}, "s3: bucket"},
		{"pool min above max", func(c *Config) {
			c.Postgres.PoolMinConns = 20
			c.Postgres.PoolMaxConns = 5
		}, "pool_min_conns"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "daemon"
	cfg.Redis.Addr = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
	assert.Contains(t, err.Error(), "redis: addr")
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := writeConfig(t, `
mode = "scan"
log_level = "debug"

[engine]
match_floor = 70.0
freshness_half_life = "30m"

[server]
port = 9100
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "scan", cfg.Mode)
	assert.Equal(t, 70.0, cfg.Engine.MatchFloor)
	assert.Equal(t, 30*time.Minute, cfg.Engine.FreshnessHalfLife.Duration)
	assert.Equal(t, 9100, cfg.Server.Port)
	// Untouched sections keep their defaults.
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 55.0, cfg.Engine.GroupFloor)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
mode = "serve"

[redis]
addr = "redis-from-file:6379"
`)

	t.Setenv("MARKETLENS_REDIS_ADDR", "redis-from-env:6379")
	t.Setenv("MARKETLENS_ENGINE_MATCH_FLOOR", "62.5")
	t.Setenv("MARKETLENS_REFRESH_INTERVAL", "3m")
	t.Setenv("MARKETLENS_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("MARKETLENS_VENUES_KALSHI_ENABLED", "false")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "redis-from-env:6379", cfg.Redis.Addr)
	assert.Equal(t, 62.5, cfg.Engine.MatchFloor)
	assert.Equal(t, 3*time.Minute, cfg.Refresh.Interval.Duration)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.False(t, cfg.Venues.Kalshi.Enabled)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestLoadIgnoresMalformedEnvValues(t *testing.T) {
	path := writeConfig(t, `mode = "serve"`)

	t.Setenv("MARKETLENS_ENGINE_MATCH_FLOOR", "not-a-number")
	t.Setenv("MARKETLENS_SERVER_PORT", "lots")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 55.0, cfg.Engine.MatchFloor)
	assert.Equal(t, 8000, cfg.Server.Port)
}

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}
