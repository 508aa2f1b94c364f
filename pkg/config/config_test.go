package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads; t.Setenv restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "BT_USER_ID", "DATABASE_URL", "DATABASE_DRIVER", "SQLITE_PATH",
		"REDIS_URL", "CACHE_TTL", "RABBITMQ_URL", "BREAKER_FAILURE_THRESHOLD", "BREAKER_TIMEOUT",
		"DIGEST_INTERVAL", "DIGEST_CONCURRENCY", "DIGEST_HEALTH_ADDR", "DIGEST_RUN_ON_START",
		"API_ADDR", "MCP_ADDR", "MCP_AUTH_TOKEN",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, DefaultUserID, cfg.UserID)
	assert.True(t, cfg.LocalMode)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Contains(t, cfg.SQLitePath, ".behaviortracker")
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 5, cfg.BreakerFailureThreshold)
	assert.Equal(t, 30*time.Second, cfg.BreakerTimeout)
	assert.Equal(t, time.Hour, cfg.DigestInterval)
	assert.Equal(t, 4, cfg.DigestConcurrency)
	assert.True(t, cfg.DigestRunOnStart)
	assert.True(t, cfg.IsDevelopment())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://bt:bt@localhost:5432/bt")
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("CACHE_TTL", "1m")
	t.Setenv("DIGEST_CONCURRENCY", "8")
	t.Setenv("DIGEST_INTERVAL", "not-a-duration")
	t.Setenv("DIGEST_RUN_ON_START", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.LocalMode)
	assert.Equal(t, "auto", cfg.DatabaseDriver)
	assert.Equal(t, "redis://localhost:6379/1", cfg.RedisURL)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, 8, cfg.DigestConcurrency)
	assert.Equal(t, time.Hour, cfg.DigestInterval, "invalid values fall back to the default")
	assert.False(t, cfg.DigestRunOnStart)
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	t.Setenv("BT_USER_ID", "not-a-uuid")
	t.Setenv("DIGEST_CONCURRENCY", "0")

	cfg, err := Load()
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BT_USER_ID")
	assert.Contains(t, err.Error(), "DIGEST_CONCURRENCY")
	assert.Equal(t, DefaultUserID, cfg.DefaultUser().String())
}
