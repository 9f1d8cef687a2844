// Package metrics provides Prometheus metrics for the ladder leaderboard service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the ladder service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Source Metrics - upstream sheet fetches
	sourceFetches       *prometheus.CounterVec
	sourceFetchDuration *prometheus.HistogramVec
	sourceRecords       *prometheus.GaugeVec

	// Normalization Metrics - how much of the payload had to be repaired
	normalizeFields *prometheus.CounterVec

	// Snapshot Metrics - the batch currently served
	snapshotEntries      prometheus.Gauge
	snapshotNewlyListed  prometheus.Gauge
	snapshotDateUnix     prometheus.Gauge
	snapshotGeneration   prometheus.Gauge
	snapshotReplacements prometheus.Counter
	snapshotStale        prometheus.Counter

	// Load Queue Metrics
	queueSize     prometheus.Gauge
	queueCapacity prometheus.Gauge
	queueEnqueued prometheus.Counter
	queueRejected *prometheus.CounterVec

	// Loader Metrics
	loaderActive   prometheus.Gauge
	loadDuration   prometheus.Histogram
	loadsCompleted *prometheus.CounterVec

	// View Metrics - pipeline renders
	viewRenders        *prometheus.CounterVec
	viewRenderDuration prometheus.Histogram
	viewRows           prometheus.Histogram

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
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
		namespace:        "ladder",
		subsystem:        "leaderboard",
		histogramBuckets: prometheus.DefBuckets,
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

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every series
	auto := promauto.With(m.registry)

	m.sourceFetches = auto.NewCounterVec(
		m.counterOpts("source_fetches_total", "Upstream fetches by source kind and outcome"),
		[]string{"source", "outcome"},
	)
	m.sourceFetchDuration = auto.NewHistogramVec(
		m.histogramOpts("source_fetch_duration_milliseconds", "Upstream fetch duration in milliseconds", m.histogramBuckets),
		[]string{"source"},
	)
	m.sourceRecords = auto.NewGaugeVec(
		m.gaugeOpts("source_records", "Raw records returned by the last fetch"),
		[]string{"source"},
	)

	m.normalizeFields = auto.NewCounterVec(
		m.counterOpts("normalize_fields_total", "Fields repaired during normalization"),
		[]string{"outcome"},
	)

	m.snapshotEntries = auto.NewGauge(m.gaugeOpts("snapshot_entries", "Entries in the served snapshot"))
	m.snapshotNewlyListed = auto.NewGauge(m.gaugeOpts("snapshot_newly_listed", "Entries without a daily delta in the served snapshot"))
	m.snapshotDateUnix = auto.NewGauge(m.gaugeOpts("snapshot_date_unix", "Snapshot date of the served batch as a unix timestamp"))
	m.snapshotGeneration = auto.NewGauge(m.gaugeOpts("snapshot_generation", "Load generation of the served snapshot"))
	m.snapshotReplacements = auto.NewCounter(m.counterOpts("snapshot_replacements_total", "Snapshots published to the store"))
	m.snapshotStale = auto.NewCounter(m.counterOpts("snapshot_stale_rejections_total", "Late load results rejected by the store"))

	m.queueSize = auto.NewGauge(m.gaugeOpts("load_queue_size", "Pending load requests"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("load_queue_capacity", "Maximum pending load requests"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("load_queue_enqueue_total", "Load requests accepted"))
	m.queueRejected = auto.NewCounterVec(
		m.counterOpts("load_queue_rejected_total", "Load requests rejected by reason"),
		[]string{"reason"},
	)

	m.loaderActive = auto.NewGauge(m.gaugeOpts("loader_active_count", "Loader workers running"))
	m.loadDuration = auto.NewHistogram(
		m.histogramOpts("load_duration_milliseconds", "End-to-end load duration in milliseconds", m.histogramBuckets),
	)
	m.loadsCompleted = auto.NewCounterVec(
		m.counterOpts("loads_total", "Completed loads by outcome"),
		[]string{"outcome"},
	)

	m.viewRenders = auto.NewCounterVec(
		m.counterOpts("view_renders_total", "Views rendered by selection kind"),
		[]string{"kind"},
	)
	m.viewRenderDuration = auto.NewHistogram(
		m.histogramOpts("view_render_duration_milliseconds", "Pipeline render duration in milliseconds", m.histogramBuckets),
	)
	m.viewRows = auto.NewHistogram(
		m.histogramOpts("view_rows", "Rows per rendered view", []float64{0, 1, 10, 25, 50, 100, 250, 500, 1000}),
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// Source Metrics Functions.

// RecordSourceFetch counts one fetch of the given source kind ("http", "xlsx").
func RecordSourceFetch(source, outcome string, latencyMs float64) {
	globalManager.sourceFetches.WithLabelValues(source, outcome).Inc()
	globalManager.sourceFetchDuration.WithLabelValues(source).Observe(latencyMs)
}

// UpdateSourceRecords sets the raw record count of the last fetch.
func UpdateSourceRecords(source string, count int) {
	globalManager.sourceRecords.WithLabelValues(source).Set(float64(count))
}

// RecordNormalizedFields adds coerced and defaulted field counts.
func RecordNormalizedFields(coerced, defaulted int) {
	globalManager.normalizeFields.WithLabelValues("coerced").Add(float64(coerced))
	globalManager.normalizeFields.WithLabelValues("defaulted").Add(float64(defaulted))
}

// Snapshot Metrics Functions.

// UpdateSnapshot describes the snapshot that was just published.
func UpdateSnapshot(generation uint64, entries, newlyListed int, dateUnix int64) {
	globalManager.snapshotGeneration.Set(float64(generation))
	globalManager.snapshotEntries.Set(float64(entries))
	globalManager.snapshotNewlyListed.Set(float64(newlyListed))
	globalManager.snapshotDateUnix.Set(float64(dateUnix))
	globalManager.snapshotReplacements.Inc()
}

// RecordStaleSnapshot counts a late result the store refused.
func RecordStaleSnapshot() {
	globalManager.snapshotStale.Inc()
}

// Load Queue Metrics Functions.

// UpdateQueueSize sets the number of pending load requests.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueRejected counts a refused load request.
func RecordQueueRejected(reason string) {
	globalManager.queueRejected.WithLabelValues(reason).Inc()
}

// Loader Metrics Functions.

// UpdateLoaderActiveCount sets the number of running loader workers.
func UpdateLoaderActiveCount(count int) {
	globalManager.loaderActive.Set(float64(count))
}

// RecordLoad records a finished load and its outcome.
func RecordLoad(outcome string, latencyMs float64) {
	globalManager.loadsCompleted.WithLabelValues(outcome).Inc()
	globalManager.loadDuration.Observe(latencyMs)
}

// View Metrics Functions.

// RecordViewRender records one pipeline render.
func RecordViewRender(kind string, rows int, latencyMs float64) {
	globalManager.viewRenders.WithLabelValues(kind).Inc()
	globalManager.viewRows.Observe(float64(rows))
	globalManager.viewRenderDuration.Observe(latencyMs)
}

// HTTP Metrics Functions.

// RecordHTTPRequest increments the request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System Performance Metrics Functions.

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
