package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arturoarias12/Digital-Nomad-Recommendation-System/internal/domain"
)

// configKeys are every variable Load reads; tests blank them all so values
// leaking in from the real process environment cannot skew assertions.
var configKeys = []string{
	"CACHE_DIR", "CACHE_KEY", "CACHE_RETENTION_DAYS",
	"HOME_COUNTRY", "CITIES",
	"VISA_PAGE_URL", "NUMBEO_BASE_URL", "SPEEDTEST_PAGE_URL",
	"FETCH_TIMEOUT", "COST_REQUEST_DELAY", "COST_MAX_ATTEMPTS",
	"SCORE_VISA_WEIGHT", "SCORE_COST_WEIGHT", "SCORE_SPEED_WEIGHT",
	"LOG_LEVEL", "LOG_FORMAT", "METRICS_ADDR", "CACHE_ONLY",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "cache", cfg.CacheDir)
	assert.Equal(t, "default", cfg.CacheKey)
	assert.Equal(t, 1, cfg.RetentionDays)
	assert.Equal(t, "United States", cfg.HomeCountry)
	assert.Equal(t, domain.DefaultCities, cfg.Cities)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 800*time.Millisecond, cfg.CostDelay)
	assert.Equal(t, 3, cfg.CostMaxAttempts)
	assert.Equal(t, domain.DefaultScoreWeights, cfg.Weights)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.False(t, cfg.CacheOnly)
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("CACHE_DIR", "/tmp/nomad-cache")
	t.Setenv("CACHE_KEY", "work")
	t.Setenv("CACHE_RETENTION_DAYS", "7")
	t.Setenv("HOME_COUNTRY", "Portugal")
	t.Setenv("CITIES", "Lisbon, Berlin , ,Prague")
	t.Setenv("FETCH_TIMEOUT", "10s")
	t.Setenv("COST_REQUEST_DELAY", "250ms")
	t.Setenv("COST_MAX_ATTEMPTS", "5")
	t.Setenv("SCORE_VISA_WEIGHT", "0.2")
	t.Setenv("SCORE_COST_WEIGHT", "0.5")
	t.Setenv("SCORE_SPEED_WEIGHT", "0.3")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("CACHE_ONLY", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/nomad-cache", cfg.CacheDir)
	assert.Equal(t, "work", cfg.CacheKey)
	assert.Equal(t, 7, cfg.RetentionDays)
	assert.Equal(t, "Portugal", cfg.HomeCountry)
	assert.Equal(t, []string{"Lisbon", "Berlin", "Prague"}, cfg.Cities)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 250*time.Millisecond, cfg.CostDelay)
	assert.Equal(t, 5, cfg.CostMaxAttempts)
	assert.Equal(t, domain.ScoreWeights{Visa: 0.2, Cost: 0.5, Speed: 0.3}, cfg.Weights)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.CacheOnly)
}

func TestLoadRejectsBadCacheKey(t *testing.T) {
	clearEnv(t)
	for _, key := range []string{"with/slash", "with\\backslash", "with_underscore"} {
		t.Setenv("CACHE_KEY", key)
		_, err := Load()
		assert.Error(t, err, key)
	}
}

func TestLoadRejectsBadRetention(t *testing.T) {
	clearEnv(t)
	t.Setenv("CACHE_RETENTION_DAYS", "0")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("CACHE_RETENTION_DAYS", "soon")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadWeights(t *testing.T) {
	clearEnv(t)
	t.Setenv("SCORE_VISA_WEIGHT", "0.9")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "score weights")
}

func TestLoadRejectsBadDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("FETCH_TIMEOUT", "fast")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("FETCH_TIMEOUT", "-5s")
	_, err = Load()
	assert.Error(t, err)
}
