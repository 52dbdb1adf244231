// Package pipeline orchestrates the daily dataset: cache lookups, source
// adapter fan-out, fusion, persistence, and the entry points the UI
// collaborator calls.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/arturoarias12/Digital-Nomad-Recommendation-System/internal/domain"
	"github.com/arturoarias12/Digital-Nomad-Recommendation-System/internal/observability"
)

// VisaFetcher retrieves the destination-country visa categories.
type VisaFetcher interface {
	Fetch(ctx context.Context) (domain.VisaTable, error)
}

// CostFetcher retrieves per-city cost-of-living metrics.
type CostFetcher interface {
	FetchCities(ctx context.Context, cities []string) (domain.CostTable, error)
}

// SpeedFetcher retrieves the country-level connectivity tables.
type SpeedFetcher interface {
	Fetch(ctx context.Context) (domain.SpeedTable, error)
}

// SnapshotStore persists and retrieves dated dataset snapshots.
type SnapshotStore interface {
	Write(snap domain.Snapshot) error
	ReadExact(key, tag string) (domain.Snapshot, bool)
	ReadLatest(key string) (domain.Snapshot, bool)
	PurgeOlderThan(key string, keepDays int, keepTag string)
}

// Options carry the engine's fixed settings.
type Options struct {
	CacheKey      string
	HomeCountry   string
	Weights       domain.ScoreWeights
	RetentionDays int
	Cities        []string // default city list when the caller passes none
	CacheOnly     bool     // initial mode; switchable at runtime
}

// Engine is the dataset orchestrator and recommendation front end. One
// engine serves a whole process; the cache-only mode flag may be flipped
// between invocations and is read exactly once per invocation.
type Engine struct {
	visa  VisaFetcher
	cost  CostFetcher
	speed SpeedFetcher
	store SnapshotStore

	opts    Options
	logger  *slog.Logger
	metrics *observability.Metrics

	cacheOnly atomic.Bool

	// mu guards the per-day memo so repeated calls in one process reuse
	// the loaded snapshot without touching disk or network.
	mu        sync.Mutex
	memo      domain.Snapshot
	haveMemo  bool
	visaTable domain.VisaTable
	haveVisa  bool

	ready atomic.Bool
}

// New creates an Engine over the given adapters and store.
func New(visa VisaFetcher, cost CostFetcher, speed SpeedFetcher, store SnapshotStore, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Engine {
	if len(opts.Cities) == 0 {
		opts.Cities = domain.DefaultCities
	}
	if opts.RetentionDays < 1 {
		opts.RetentionDays = 1
	}
	e := &Engine{
		visa:    visa,
		cost:    cost,
		speed:   speed,
		store:   store,
		opts:    opts,
		logger:  logger,
		metrics: metrics,
	}
	e.SetCacheOnly(opts.CacheOnly)
	return e
}

// SetCacheOnly toggles cache-only mode: when true the engine never touches
// the network and serves the newest cached snapshot, however stale.
func (e *Engine) SetCacheOnly(v bool) {
	e.cacheOnly.Store(v)
	if v {
		e.metrics.CacheOnlyMode.Set(1)
	} else {
		e.metrics.CacheOnlyMode.Set(0)
	}
	e.logger.Info("cache-only mode set", "enabled", v)
}

// CacheOnly reports the current mode.
func (e *Engine) CacheOnly() bool {
	return e.cacheOnly.Load()
}

// CheckReadiness reports nil once a snapshot has been loaded or built.
func (e *Engine) CheckReadiness(_ context.Context) error {
	if !e.ready.Load() {
		return errors.New("no dataset loaded yet")
	}
	return nil
}
