// Package config loads pipeline settings from environment variables (and an
// optional .env file), applying defaults where unset.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/arturoarias12/Digital-Nomad-Recommendation-System/internal/domain"
)

// Config holds all pipeline settings.
type Config struct {
	CacheDir      string
	CacheKey      string
	RetentionDays int

	HomeCountry string
	Cities      []string

	VisaPageURL      string
	NumbeoBaseURL    string
	SpeedtestPageURL string

	FetchTimeout    time.Duration
	CostDelay       time.Duration
	CostMaxAttempts int

	Weights domain.ScoreWeights

	LogLevel    string
	LogFormat   string
	MetricsAddr string // "" disables the metrics endpoint
	CacheOnly   bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is folded in when present (never overriding real env vars).
func Load() (*Config, error) {
	_ = godotenv.Load() // optional; absence is not an error

	fetchTimeout, err := envDuration("FETCH_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	costDelay, err := envDuration("COST_REQUEST_DELAY", 800*time.Millisecond)
	if err != nil {
		return nil, err
	}
	costAttempts, err := envInt("COST_MAX_ATTEMPTS", 3)
	if err != nil {
		return nil, err
	}
	retention, err := envInt("CACHE_RETENTION_DAYS", 1)
	if err != nil {
		return nil, err
	}
	weights, err := loadWeights()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		CacheDir:      envOrDefault("CACHE_DIR", "cache"),
		CacheKey:      envOrDefault("CACHE_KEY", "default"),
		RetentionDays: retention,

		HomeCountry: envOrDefault("HOME_COUNTRY", "United States"),
		Cities:      envCities(),

		VisaPageURL:      os.Getenv("VISA_PAGE_URL"),
		NumbeoBaseURL:    os.Getenv("NUMBEO_BASE_URL"),
		SpeedtestPageURL: os.Getenv("SPEEDTEST_PAGE_URL"),

		FetchTimeout:    fetchTimeout,
		CostDelay:       costDelay,
		CostMaxAttempts: costAttempts,

		Weights: weights,

		LogLevel:    envOrDefault("LOG_LEVEL", "info"),
		LogFormat:   envOrDefault("LOG_FORMAT", "text"),
		MetricsAddr: os.Getenv("METRICS_ADDR"),
		CacheOnly:   os.Getenv("CACHE_ONLY") == "true",
	}

	if cfg.CacheKey == "" || strings.ContainsAny(cfg.CacheKey, "/\\_") {
		return nil, fmt.Errorf("invalid CACHE_KEY %q: must be non-empty without path separators or underscores", cfg.CacheKey)
	}
	if cfg.RetentionDays < 1 {
		return nil, fmt.Errorf("invalid CACHE_RETENTION_DAYS: must be at least 1")
	}
	if cfg.CostMaxAttempts < 1 {
		return nil, fmt.Errorf("invalid COST_MAX_ATTEMPTS: must be at least 1")
	}
	if len(cfg.Cities) == 0 {
		return nil, fmt.Errorf("CITIES must name at least one city")
	}

	return cfg, nil
}

func loadWeights() (domain.ScoreWeights, error) {
	w := domain.DefaultScoreWeights

	var err error
	if w.Visa, err = envFloat("SCORE_VISA_WEIGHT", w.Visa); err != nil {
		return w, err
	}
	if w.Cost, err = envFloat("SCORE_COST_WEIGHT", w.Cost); err != nil {
		return w, err
	}
	if w.Speed, err = envFloat("SCORE_SPEED_WEIGHT", w.Speed); err != nil {
		return w, err
	}
	if err := w.Validate(); err != nil {
		return w, fmt.Errorf("invalid score weights: %w", err)
	}
	return w, nil
}

func envCities() []string {
	raw := os.Getenv("CITIES")
	if raw == "" {
		return append([]string(nil), domain.DefaultCities...)
	}
	var cities []string
	for _, c := range strings.Split(raw, ",") {
		if c = strings.TrimSpace(c); c != "" {
			cities = append(cities, c)
		}
	}
	return cities
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return d, nil
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return f, nil
}
