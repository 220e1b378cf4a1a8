// Package metrics exports resolver activity as Prometheus metrics.
//
// A [Metrics] value implements every hook interface of
// [observability]; [Metrics.Install] registers it globally:
//
//	m := metrics.New(prometheus.NewRegistry())
//	m.Install()
//	http.Handle("/metrics", m.Handler())
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/sysresolve/pkg/observability"
)

const namespace = "sysresolve"

// Metrics holds the collectors.
type Metrics struct {
	registry *prometheus.Registry

	resolutions        *prometheus.CounterVec   // by stage and outcome
	resolveDuration    *prometheus.HistogramVec // by stage
	provenanceEntries  prometheus.Gauge
	provenanceDuration prometheus.Gauge
	provenanceFailures prometheus.Counter

	cacheRequests *prometheus.CounterVec // by key type and result
	cacheEntries  *prometheus.GaugeVec   // by key type

	depmapFiles    prometheus.Gauge
	depmapFailed   prometheus.Gauge
	depmapMappings prometheus.Gauge
	depmapDuration prometheus.Gauge

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec   // by method, route and status
	httpDuration *prometheus.HistogramVec // by method and route
}

var (
	_ observability.ResolverHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.DepmapHooks   = (*Metrics)(nil)
	_ observability.HTTPHooks     = (*Metrics)(nil)
)

// New creates the collectors and registers them with registry. A nil
// registry gets a fresh one.
func New(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: registry,

		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "resolutions_total",
			Help:      "Artifact resolutions by chain stage and outcome (found, missing, error).",
		}, []string{"stage", "outcome"}),
		resolveDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "resolve_duration_seconds",
			Help:      "Time spent in the resolution chain.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"stage"}),
		provenanceEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "provenance",
			Name:      "entries",
			Help:      "Files known to the provenance index.",
		}),
		provenanceDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "provenance",
			Name:      "build_duration_seconds",
			Help:      "Time taken to build the provenance index.",
		}),
		provenanceFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provenance",
			Name:      "build_failures_total",
			Help:      "Failed provenance index builds.",
		}),

		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "requests_total",
			Help:      "Cache lookups by key type and result (hit, miss).",
		}, []string{"key_type", "result"}),
		cacheEntries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "entries",
			Help:      "Cached entries by key type.",
		}, []string{"key_type"}),

		depmapFiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "depmap",
			Name:      "files",
			Help:      "Mapping fragments read in the last load.",
		}),
		depmapFailed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "depmap",
			Name:      "failed_files",
			Help:      "Mapping fragments skipped in the last load.",
		}),
		depmapMappings: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "depmap",
			Name:      "mappings",
			Help:      "Mappings read in the last load.",
		}),
		depmapDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "depmap",
			Name:      "load_duration_seconds",
			Help:      "Duration of the last load.",
		}),

		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "HTTP requests being served.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	registry.MustRegister(
		m.resolutions, m.resolveDuration,
		m.provenanceEntries, m.provenanceDuration, m.provenanceFailures,
		m.cacheRequests, m.cacheEntries,
		m.depmapFiles, m.depmapFailed, m.depmapMappings, m.depmapDuration,
		m.httpInFlight, m.httpRequests, m.httpDuration,
	)
	return m
}

// Install registers m as the global hook implementation for every
// observability category.
func (m *Metrics) Install() {
	observability.SetResolverHooks(m)
	observability.SetCacheHooks(m)
	observability.SetDepmapHooks(m)
	observability.SetHTTPHooks(m)
}

// Registry returns the registry the collectors are registered with.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ===== Resolver =====

func (m *Metrics) OnResolve(_ context.Context, stage string, found bool, duration time.Duration, err error) {
	outcome := "missing"
	switch {
	case err != nil:
		outcome = "error"
	case found:
		outcome = "found"
	}
	m.resolutions.WithLabelValues(stage, outcome).Inc()
	m.resolveDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

func (m *Metrics) OnProvenanceIndex(_ context.Context, entries int, duration time.Duration, err error) {
	if err != nil {
		m.provenanceFailures.Inc()
	}
	m.provenanceEntries.Set(float64(entries))
	m.provenanceDuration.Set(duration.Seconds())
}

// ===== Cache =====

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheRequests.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheRequests.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheEntries.WithLabelValues(keyType).Set(float64(size))
}

// ===== Depmap =====

func (m *Metrics) OnLoadComplete(_ context.Context, files, failed, mappings int, duration time.Duration) {
	m.depmapFiles.Set(float64(files))
	m.depmapFailed.Set(float64(failed))
	m.depmapMappings.Set(float64(mappings))
	m.depmapDuration.Set(duration.Seconds())
}

// ===== HTTP =====

func (m *Metrics) OnRequest(context.Context, string, string) {
	m.httpInFlight.Inc()
}

func (m *Metrics) OnResponse(_ context.Context, method, route string, statusCode int, duration time.Duration) {
	m.httpInFlight.Dec()
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
