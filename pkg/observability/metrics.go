package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics implements every hook interface on top of Prometheus collectors.
type Metrics struct {
	catalogLoads    *prometheus.CounterVec
	catalogFeatures prometheus.Gauge
	queries         *prometheus.CounterVec
	queryDuration   *prometheus.HistogramVec
	cacheOps        *prometheus.CounterVec
	cacheBytes      *prometheus.CounterVec
	httpInFlight    prometheus.Gauge
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// It panics if any collector is already registered, like
// [prometheus.MustRegister].
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		catalogLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hivegraph",
			Name:      "catalog_loads_total",
			Help:      "Catalog builds by source and result.",
		}, []string{"source", "result"}),
		catalogFeatures: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hivegraph",
			Name:      "catalog_features",
			Help:      "Features in the most recently loaded catalog.",
		}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hivegraph",
			Name:      "queries_total",
			Help:      "Catalog queries by kind.",
		}, []string{"kind"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hivegraph",
			Name:      "query_duration_seconds",
			Help:      "Catalog query latency.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}, []string{"kind"}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hivegraph",
			Name:      "cache_operations_total",
			Help:      "Cache operations by key type and outcome.",
		}, []string{"key_type", "outcome"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hivegraph",
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache by key type.",
		}, []string{"key_type"}),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hivegraph",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "HTTP requests currently being served.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hivegraph",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hivegraph",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		m.catalogLoads, m.catalogFeatures, m.queries, m.queryDuration,
		m.cacheOps, m.cacheBytes, m.httpInFlight, m.httpRequests, m.httpDuration,
	)
	return m
}

func (m *Metrics) OnCatalogLoad(_ context.Context, source string, features int, _ time.Duration, err error) {
	if err != nil {
		m.catalogLoads.WithLabelValues(source, "error").Inc()
		return
	}
	m.catalogLoads.WithLabelValues(source, "ok").Inc()
	m.catalogFeatures.Set(float64(features))
}

func (m *Metrics) OnQuery(_ context.Context, kind string, _ int, d time.Duration) {
	m.queries.WithLabelValues(kind).Inc()
	m.queryDuration.WithLabelValues(kind).Observe(d.Seconds())
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

func (m *Metrics) OnCacheError(_ context.Context, keyType string, _ error) {
	m.cacheOps.WithLabelValues(keyType, "error").Inc()
}

func (m *Metrics) OnRequest(context.Context, string, string) {
	m.httpInFlight.Inc()
}

func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.httpInFlight.Dec()
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ QueryHooks = (*Metrics)(nil)
	_ CacheHooks = (*Metrics)(nil)
	_ HTTPHooks  = (*Metrics)(nil)
)
