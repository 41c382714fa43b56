package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("JWT_SECRET", "s3cret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("STORE_DRIVER", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.False(t, cfg.MySQL())
	assert.Equal(t, 2*time.Second, cfg.LockTimeout)
	assert.Equal(t, "idempotent", cfg.CancelPolicy)
	assert.Equal(t, 1024, cfg.SyncQueueSize)
	assert.Equal(t, 5, cfg.SyncMaxRetries)
	assert.Equal(t, 60, cfg.AccessTTLMin)
}

func TestLoad_ReportsEveryProblem(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("APP_PORT", "")
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("STORE_DRIVER", "mysql")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("LOCK_TIMEOUT", "soon")
	t.Setenv("CANCEL_POLICY", "maybe")
	t.Setenv("SYNC_MAX_RETRIES", "-2")

	_, err := Load()
	require.Error(t, err)
	for _, want := range []string{"APP_ENV", "APP_PORT", "DB_USER", "DB_HOST", "DB_NAME", "LOCK_TIMEOUT", "CANCEL_POLICY", "SYNC_MAX_RETRIES"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestLoad_MySQL(t *testing.T) {
	setRequired(t)
	t.Setenv("STORE_DRIVER", "MySQL")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "cinema")
	t.Setenv("DB_PORT", "")
	t.Setenv("SYNC_MAX_RETRIES", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.MySQL())
	assert.Equal(t, "3306", cfg.DBPort)
	assert.Equal(t, 0, cfg.SyncMaxRetries)
}

func TestLoadRateLimitConfig_Clamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 10*time.Second, cfg.TTL)
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	t.Setenv("CACHE_ENABLED", "off")

	cfg := LoadCacheConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, cfg.Methods)
}
