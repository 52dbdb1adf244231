package pipeline

import (
	"context"
	"errors"
	"sync"

	"github.com/arturoarias12/Digital-Nomad-Recommendation-System/internal/domain"
)

// EnsureDataset returns the snapshot to serve for this invocation:
//
//	today's memoized snapshot        -> reuse (no I/O)
//	today's cached snapshot on disk  -> load
//	miss, cache-only mode            -> newest cached snapshot of any day,
//	                                    or ErrNoCachedData; never the network
//	miss, normal mode                -> fetch all three sources, fuse,
//	                                    persist today's snapshot, purge old days
//
// A nil or empty cities list means the engine's configured list. The mode
// flag is read exactly once per invocation.
func (e *Engine) EnsureDataset(ctx context.Context, cities []string) (domain.Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cacheOnly := e.cacheOnly.Load()
	today := domain.TodayTag()

	// In cache-only mode any in-memory snapshot is acceptable, stale or
	// not; in normal mode only today's.
	if e.haveMemo && (cacheOnly || e.memo.Tag == today) {
		e.metrics.DatasetBuilds.WithLabelValues("memo", "success").Inc()
		return e.memo, nil
	}

	if snap, ok := e.store.ReadExact(e.opts.CacheKey, today); ok {
		e.metrics.CacheReads.WithLabelValues("hit").Inc()
		e.metrics.DatasetBuilds.WithLabelValues("cache", "success").Inc()
		e.adopt(snap)
		e.logger.Info("using today's cached dataset", "tag", today, "records", len(snap.Records))
		return snap, nil
	}
	e.metrics.CacheReads.WithLabelValues("miss").Inc()

	if cacheOnly {
		snap, ok := e.store.ReadLatest(e.opts.CacheKey)
		if !ok {
			e.metrics.DatasetBuilds.WithLabelValues("stale_cache", "error").Inc()
			return domain.Snapshot{}, domain.ErrNoCachedData
		}
		e.metrics.DatasetBuilds.WithLabelValues("stale_cache", "success").Inc()
		e.adopt(snap)
		e.logger.Info("using latest available cached dataset", "tag", snap.Tag, "records", len(snap.Records))
		return snap, nil
	}

	snap, err := e.buildFresh(ctx, cities, today)
	if err != nil {
		e.metrics.DatasetBuilds.WithLabelValues("fresh", "error").Inc()
		return domain.Snapshot{}, err
	}
	e.metrics.DatasetBuilds.WithLabelValues("fresh", "success").Inc()
	e.adopt(snap)
	return snap, nil
}

// buildFresh runs the three adapters concurrently, fuses their output, and
// persists the result. Adapter failures are isolated: visa and speed
// degrade to empty tables (their data reads as unknown/missing downstream),
// while a total cost failure aborts the build because the cost table is the
// identity spine.
func (e *Engine) buildFresh(ctx context.Context, cities []string, tag string) (domain.Snapshot, error) {
	if len(cities) == 0 {
		cities = e.opts.Cities
	}
	e.logger.Info("building fresh dataset; fetching three sources, this may take a while",
		"cities", len(cities), "tag", tag)

	var (
		wg        sync.WaitGroup
		visaTable domain.VisaTable
		costTable domain.CostTable
		costErr   error
		speed     domain.SpeedTable
		speedErr  error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		// The visa adapter degrades to an empty table internally.
		visaTable, _ = e.visa.Fetch(ctx)
	}()
	go func() {
		defer wg.Done()
		costTable, costErr = e.cost.FetchCities(ctx, cities)
	}()
	go func() {
		defer wg.Done()
		speed, speedErr = e.speed.Fetch(ctx)
	}()
	wg.Wait()

	if costErr != nil {
		// No cost data means no city spine; nothing to fuse.
		return domain.Snapshot{}, costErr
	}
	if speedErr != nil {
		e.logger.Warn("connectivity source failed; speed data will be missing", "error", speedErr)
	}
	for _, p := range costTable.Problems {
		e.logger.Warn("cost source problem", "detail", p)
	}

	snap, err := domain.Fuse(visaTable, costTable, speed, e.opts.HomeCountry, e.opts.Weights)
	if err != nil {
		return domain.Snapshot{}, err
	}
	snap.Key = e.opts.CacheKey
	snap.Tag = tag

	if len(snap.Records) == 0 {
		return domain.Snapshot{}, &domain.FetchError{
			Source: "pipeline",
			Err:    errors.New("fusion produced no scoreable records"),
		}
	}

	if err := e.store.Write(snap); err != nil {
		// Caching trouble must not block the result that was just built.
		e.logger.Warn("failed to cache snapshot", "error", err)
	} else {
		e.store.PurgeOlderThan(e.opts.CacheKey, e.opts.RetentionDays, tag)
	}

	e.visaTable = visaTable
	e.haveVisa = true
	e.logger.Info("fresh dataset built", "tag", tag, "records", len(snap.Records),
		"visa_status", visaTable.Status.String(), "cost_status", costTable.Status.String(), "speed_status", speed.Status.String())
	return snap, nil
}

// adopt memoizes a snapshot as the one served for the rest of the day.
func (e *Engine) adopt(snap domain.Snapshot) {
	e.memo = snap
	e.haveMemo = true
	e.ready.Store(true)
	e.metrics.SnapshotRecords.Set(float64(len(snap.Records)))
}
