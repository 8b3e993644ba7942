package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics implements every hook interface on top of Prometheus collectors.
type Metrics struct {
	resolveTotal     *prometheus.CounterVec
	resolveDuration  prometheus.Histogram
	resolveRounds    prometheus.Histogram
	resolvePackages  prometheus.Histogram
	scheduleTotal    *prometheus.CounterVec
	scheduleBatches  prometheus.Histogram
	cacheOps         *prometheus.CounterVec
	cacheBytes       *prometheus.CounterVec
	registryRequests *prometheus.CounterVec
	registryDuration *prometheus.HistogramVec
	registryErrors   *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		resolveTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cdnlock_resolve_total",
				Help: "Number of resolutions by outcome.",
			},
			[]string{"outcome"},
		),
		resolveDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cdnlock_resolve_duration_seconds",
				Help:    "Time taken to resolve a request's dependency set.",
				Buckets: prometheus.DefBuckets,
			},
		),
		resolveRounds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cdnlock_resolve_round_queries",
				Help:    "Queries resolved concurrently per resolution round.",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
		resolvePackages: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cdnlock_resolve_packages",
				Help:    "Packages in a resolved lock.",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
		scheduleTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cdnlock_schedule_total",
				Help: "Number of loading graph computations by outcome.",
			},
			[]string{"outcome"},
		),
		scheduleBatches: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cdnlock_schedule_batches",
				Help:    "Batches in a computed loading graph.",
				Buckets: prometheus.LinearBuckets(1, 1, 12),
			},
		),
		cacheOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cdnlock_cache_operations_total",
				Help: "Cache hits, misses and writes by key type.",
			},
			[]string{"key_type", "op"},
		),
		cacheBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cdnlock_cache_written_bytes_total",
				Help: "Bytes written to the cache by key type.",
			},
			[]string{"key_type"},
		),
		registryRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cdnlock_registry_requests_total",
				Help: "Registry HTTP responses by host and status code.",
			},
			[]string{"host", "code"},
		),
		registryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cdnlock_registry_request_duration_seconds",
				Help:    "Registry HTTP request latency.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"host"},
		),
		registryErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cdnlock_registry_errors_total",
				Help: "Registry HTTP requests that failed without a response.",
			},
			[]string{"host"},
		),
	}
	reg.MustRegister(
		m.resolveTotal,
		m.resolveDuration,
		m.resolveRounds,
		m.resolvePackages,
		m.scheduleTotal,
		m.scheduleBatches,
		m.cacheOps,
		m.cacheBytes,
		m.registryRequests,
		m.registryDuration,
		m.registryErrors,
	)
	return m
}

// Install registers m as the pipeline, cache and HTTP hooks.
func (m *Metrics) Install() {
	SetPipelineHooks(m)
	SetCacheHooks(m)
	SetHTTPHooks(m)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) OnResolveStart(context.Context, int) {}

func (m *Metrics) OnResolveRound(_ context.Context, _ int, queries int, _ time.Duration) {
	m.resolveRounds.Observe(float64(queries))
}

func (m *Metrics) OnResolveComplete(_ context.Context, packages int, d time.Duration, err error) {
	m.resolveTotal.WithLabelValues(outcome(err)).Inc()
	m.resolveDuration.Observe(d.Seconds())
	if err == nil {
		m.resolvePackages.Observe(float64(packages))
	}
}

func (m *Metrics) OnScheduleComplete(_ context.Context, batches int, _ time.Duration, err error) {
	m.scheduleTotal.WithLabelValues(outcome(err)).Inc()
	if err == nil {
		m.scheduleBatches.Observe(float64(batches))
	}
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheOps.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, _, host, _ string, statusCode int, d time.Duration) {
	m.registryRequests.WithLabelValues(host, strconv.Itoa(statusCode)).Inc()
	m.registryDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, _, host, _ string, _ error) {
	m.registryErrors.WithLabelValues(host).Inc()
}

var (
	_ PipelineHooks = (*Metrics)(nil)
	_ CacheHooks    = (*Metrics)(nil)
	_ HTTPHooks     = (*Metrics)(nil)
)
