// Package metrics provides Prometheus metrics for the clan statistics exporter.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the exporter.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Disk cache
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
	cacheWrites prometheus.Counter
	cacheErrors prometheus.Counter

	// Upstream API
	upstreamRequests *prometheus.CounterVec
	upstreamRetries  *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec

	// Pipeline
	playersNormalized   prometheus.Counter
	reportsWritten      *prometheus.CounterVec
	reportBuildDuration *prometheus.HistogramVec
	lastRunUnix         prometheus.Gauge
	clanMembers         prometheus.Gauge

	// HTTP (serve command)
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "clanstats",
		subsystem:        "exporter",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one block per metric
	auto := promauto.With(m.registry)

	m.cacheHits = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "cache_hits_total",
		Help:        "Disk cache lookups served from a fresh entry",
		ConstLabels: m.constLabels,
	}, []string{"resource"})

	m.cacheMisses = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "cache_misses_total",
		Help:        "Disk cache lookups that were absent, expired or unreadable",
		ConstLabels: m.constLabels,
	}, []string{"resource"})

	m.cacheWrites = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "cache_writes_total",
		Help:        "Entries written to the disk cache",
		ConstLabels: m.constLabels,
	})

	m.cacheErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "cache_errors_total",
		Help:        "Disk cache read or write failures",
		ConstLabels: m.constLabels,
	})

	m.upstreamRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "upstream_requests_total",
		Help:        "Requests sent to the game API by resource and outcome",
		ConstLabels: m.constLabels,
	}, []string{"resource", "outcome"})

	m.upstreamRetries = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "upstream_retries_total",
		Help:        "Requests retried after a failed first attempt",
		ConstLabels: m.constLabels,
	}, []string{"resource"})

	m.upstreamLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "upstream_latency_milliseconds",
		Help:        "Latency of single requests to the game API",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"resource"})

	m.playersNormalized = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "players_normalized_total",
		Help:        "Player payloads normalized into profiles",
		ConstLabels: m.constLabels,
	})

	m.reportsWritten = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "reports_written_total",
		Help:        "Output documents written by report name",
		ConstLabels: m.constLabels,
	}, []string{"report"})

	m.reportBuildDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "report_build_duration_milliseconds",
		Help:        "Time spent fetching and deriving one report",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"report", "status"})

	m.lastRunUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_run_timestamp_seconds",
		Help:        "Unix time of the last completed export run",
		ConstLabels: m.constLabels,
	})

	m.clanMembers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "clan_members",
		Help:        "Members profiled in the last snapshot",
		ConstLabels: m.constLabels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})
}

// RecordCacheHit counts a fresh cache read for resource.
func RecordCacheHit(resource string) {
	globalManager.cacheHits.WithLabelValues(resource).Inc()
}

// RecordCacheMiss counts a cache read that forced a fetch.
func RecordCacheMiss(resource string) {
	globalManager.cacheMisses.WithLabelValues(resource).Inc()
}

// RecordCacheWrite counts a cache entry write.
func RecordCacheWrite() {
	globalManager.cacheWrites.Inc()
}

// RecordCacheError counts a failed cache read or write.
func RecordCacheError() {
	globalManager.cacheErrors.Inc()
}

// RecordUpstreamRequest counts one request attempt; outcome is "ok", "error" or "auth".
func RecordUpstreamRequest(resource, outcome string) {
	globalManager.upstreamRequests.WithLabelValues(resource, outcome).Inc()
}

// RecordUpstreamRetry counts a retried request.
func RecordUpstreamRetry(resource string) {
	globalManager.upstreamRetries.WithLabelValues(resource).Inc()
}

// RecordUpstreamLatency records a single request latency in milliseconds.
func RecordUpstreamLatency(resource string, latencyMs float64) {
	globalManager.upstreamLatency.WithLabelValues(resource).Observe(latencyMs)
}

// RecordPlayerNormalized counts a normalized player profile.
func RecordPlayerNormalized() {
	globalManager.playersNormalized.Inc()
}

// RecordReportWritten counts a written output document.
func RecordReportWritten(report string) {
	globalManager.reportsWritten.WithLabelValues(report).Inc()
}

// RecordReportBuild records how long a report took; status is "ok" or "error".
func RecordReportBuild(report, status string, durationMs float64) {
	globalManager.reportBuildDuration.WithLabelValues(report, status).Observe(durationMs)
}

// UpdateLastRun sets the completion time of the last run.
func UpdateLastRun(unix float64) {
	globalManager.lastRunUnix.Set(unix)
}

// UpdateClanMembers sets the number of profiled members.
func UpdateClanMembers(count int) {
	globalManager.clanMembers.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTextfile dumps the registry in the node-exporter textfile format.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWriteTextfile, path, err)
	}
	return nil
}
