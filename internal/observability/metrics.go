package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// data pipeline.
type Metrics struct {
	FetchRequests *prometheus.CounterVec   // labels: source={visa,numbeo,speedtest}, outcome={success,partial,error,rate_limited}
	FetchDuration *prometheus.HistogramVec // labels: source
	CityScrapes   *prometheus.CounterVec   // labels: outcome={success,error,rate_limited}

	CacheReads      *prometheus.CounterVec // labels: result={hit,miss}
	DatasetBuilds   *prometheus.CounterVec // labels: path={memo,cache,stale_cache,fresh}, outcome={success,error}
	SnapshotRecords prometheus.Gauge
	CacheOnlyMode   prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FetchRequests,
		m.FetchDuration,
		m.CityScrapes,
		m.CacheReads,
		m.DatasetBuilds,
		m.SnapshotRecords,
		m.CacheOnlyMode,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nomad_pipeline",
			Name:      "fetch_requests_total",
			Help:      "Source adapter invocations by source and outcome.",
		}, []string{"source", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nomad_pipeline",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of one adapter invocation.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"source"}),
		CityScrapes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nomad_pipeline",
			Name:      "city_scrapes_total",
			Help:      "Per-city cost-of-living page scrapes by outcome.",
		}, []string{"outcome"}),
		CacheReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nomad_pipeline",
			Name:      "cache_reads_total",
			Help:      "Snapshot cache lookups by result.",
		}, []string{"result"}),
		DatasetBuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nomad_pipeline",
			Name:      "dataset_builds_total",
			Help:      "EnsureDataset invocations by resolution path and outcome.",
		}, []string{"path", "outcome"}),
		SnapshotRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nomad_pipeline",
			Name:      "snapshot_records",
			Help:      "Record count of the most recently loaded snapshot.",
		}),
		CacheOnlyMode: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nomad_pipeline",
			Name:      "cache_only_mode",
			Help:      "1 when network fetches are disabled, 0 otherwise.",
		}),
	}
}
