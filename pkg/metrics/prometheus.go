// Package metrics provides Prometheus metrics for the valuation service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Valuation pipeline
	valuations      *prometheus.CounterVec
	estimateLatency prometheus.Histogram
	malformedSplits prometheus.Counter
	unknownGenres   prometheus.Counter
	tracksValued    prometheus.Histogram

	// Result cache
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
	cacheSize   prometheus.Gauge

	// Catalog store
	storeQueryLatency *prometheus.HistogramVec
	storeErrors       *prometheus.CounterVec
	catalogsTotal     prometheus.Gauge

	// Batch workers
	batchJobs         *prometheus.CounterVec
	batchJobLatency   prometheus.Histogram
	workerActiveCount prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec
	errorLatency        *prometheus.HistogramVec

	// Process
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "valuator",
		subsystem:        "catalog",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.valuations = auto.NewCounterVec(
		m.counterOpts("valuations_total", "Valuations computed, by source and outcome"),
		[]string{"source", "outcome"},
	)
	m.estimateLatency = auto.NewHistogram(
		m.histogramOpts("estimate_latency_milliseconds", "Time spent in the valuation pipeline", m.histogramBuckets),
	)
	m.malformedSplits = auto.NewCounter(
		m.counterOpts("malformed_splits_total", "Tracks whose publisher split document could not be parsed"),
	)
	m.unknownGenres = auto.NewCounter(
		m.counterOpts("unknown_genres_total", "Genre labels outside the fixed catalog"),
	)
	m.tracksValued = auto.NewHistogram(
		m.histogramOpts("tracks_per_valuation", "Number of released tracks per valuation",
			[]float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000}),
	)

	m.cacheHits = auto.NewCounter(m.counterOpts("cache_hits_total", "Valuation cache hits"))
	m.cacheMisses = auto.NewCounter(m.counterOpts("cache_misses_total", "Valuation cache misses"))
	m.cacheSize = auto.NewGauge(m.gaugeOpts("cache_size", "Entries held by the valuation cache"))

	m.storeQueryLatency = auto.NewHistogramVec(
		m.histogramOpts("store_query_latency_milliseconds", "Catalog store latency by operation", m.histogramBuckets),
		[]string{"operation"},
	)
	m.storeErrors = auto.NewCounterVec(
		m.counterOpts("store_errors_total", "Catalog store failures by operation"),
		[]string{"operation"},
	)
	m.catalogsTotal = auto.NewGauge(m.gaugeOpts("catalogs_total", "Catalogs known to the store"))

	m.batchJobs = auto.NewCounterVec(
		m.counterOpts("batch_jobs_total", "Batch catalog valuations by outcome"),
		[]string{"outcome"},
	)
	m.batchJobLatency = auto.NewHistogram(
		m.histogramOpts("batch_job_latency_milliseconds", "Time a worker spent on one catalog", m.histogramBuckets),
	)
	m.workerActiveCount = auto.NewGauge(m.gaugeOpts("worker_active_count", "Batch workers currently running"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Errors by type and severity"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.errorLatency = auto.NewHistogramVec(
		m.histogramOpts("error_latency_milliseconds", "Latency of failed operations", m.histogramBuckets),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// Milliseconds converts d to fractional milliseconds for the latency
// histograms, keeping sub-millisecond precision.
func Milliseconds(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

// RecordValuation counts a valuation. source is "inline" or "catalog";
// outcome is "computed", "cached" or "error".
func RecordValuation(source, outcome string) {
	globalManager.valuations.WithLabelValues(source, outcome).Inc()
}

// RecordEstimateLatency records pipeline latency in milliseconds.
func RecordEstimateLatency(latencyMs float64) {
	globalManager.estimateLatency.Observe(latencyMs)
}

// RecordMalformedSplits adds n malformed split documents.
func RecordMalformedSplits(n int) {
	if n > 0 {
		globalManager.malformedSplits.Add(float64(n))
	}
}

// RecordUnknownGenres adds n unknown genre labels.
func RecordUnknownGenres(n int) {
	if n > 0 {
		globalManager.unknownGenres.Add(float64(n))
	}
}

// RecordTracksValued observes the track count of one valuation.
func RecordTracksValued(n int) {
	globalManager.tracksValued.Observe(float64(n))
}

// RecordCacheHit increments the cache hit counter.
func RecordCacheHit() {
	globalManager.cacheHits.Inc()
}

// RecordCacheMiss increments the cache miss counter.
func RecordCacheMiss() {
	globalManager.cacheMisses.Inc()
}

// UpdateCacheSize sets the current cache size.
func UpdateCacheSize(size int) {
	globalManager.cacheSize.Set(float64(size))
}

// RecordStoreQueryLatency records catalog store latency for an operation.
func RecordStoreQueryLatency(operation string, latencyMs float64) {
	globalManager.storeQueryLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordStoreError counts a failed store operation.
func RecordStoreError(operation string) {
	globalManager.storeErrors.WithLabelValues(operation).Inc()
}

// UpdateCatalogsTotal sets the number of catalogs in the store.
func UpdateCatalogsTotal(count int) {
	globalManager.catalogsTotal.Set(float64(count))
}

// RecordBatchJob counts one catalog of a batch. outcome is "ok", "error" or "cancelled".
func RecordBatchJob(outcome string) {
	globalManager.batchJobs.WithLabelValues(outcome).Inc()
}

// RecordBatchJobLatency records the time spent valuing one catalog of a batch.
func RecordBatchJobLatency(latencyMs float64) {
	globalManager.batchJobLatency.Observe(latencyMs)
}

// AddWorkerActive moves the running worker gauge by delta.
func AddWorkerActive(delta int) {
	globalManager.workerActiveCount.Add(float64(delta))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
