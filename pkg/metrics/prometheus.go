// Package metrics provides Prometheus metrics for the sales-coaching
// assessment service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Business metrics
	assessmentsCreated prometheus.Counter
	assessmentsResumed prometheus.Counter
	togglesApplied     prometheus.Counter
	overridesSet       prometheus.Counter
	scoringErrors      prometheus.Counter
	snapshotLatency    prometheus.Histogram
	activeSessions     prometheus.Gauge

	// Save pipeline metrics
	togglesSaved       prometheus.Counter
	toggleSaveFailures prometheus.Counter
	toggleSaveRetries  prometheus.Counter
	saveQueueDepth     prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "salescoach",
		subsystem:        "assessment",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.assessmentsCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "assessments_created_total",
		Help:      "Total number of assessment sessions created",
	})
	m.assessmentsResumed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "assessments_resumed_total",
		Help:      "Total number of assessment sessions rehydrated from the store",
	})
	m.togglesApplied = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "behavior_toggles_total",
		Help:      "Total number of behavior toggles that changed session state",
	})
	m.overridesSet = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "step_overrides_total",
		Help:      "Total number of manual step override changes",
	})
	m.scoringErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoring_errors_total",
		Help:      "Total number of scoring configuration errors",
	})
	m.snapshotLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_duration_milliseconds",
		Help:      "Time to recompute a full session snapshot",
		Buckets:   m.histogramBuckets,
	})
	m.activeSessions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "active_sessions",
		Help:      "Number of assessment sessions currently held in memory",
	})

	m.togglesSaved = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "toggle_saves_total",
		Help:      "Total number of behavior toggles written to the store",
	})
	m.toggleSaveFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "toggle_save_failures_total",
		Help:      "Total number of behavior toggles that failed to persist",
	})
	m.toggleSaveRetries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "toggle_save_retries_total",
		Help:      "Total number of behavior toggle write retries",
	})
	m.saveQueueDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "save_queue_depth",
		Help:      "Number of toggle writes waiting in the save queue",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by endpoint, method, and status",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration by endpoint, method, and status",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})
}

// RecordAssessmentCreated increments the created-assessments counter.
func RecordAssessmentCreated() {
	globalManager.assessmentsCreated.Inc()
}

// RecordAssessmentResumed increments the resumed-assessments counter.
func RecordAssessmentResumed() {
	globalManager.assessmentsResumed.Inc()
}

// RecordToggleApplied increments the applied-toggles counter.
func RecordToggleApplied() {
	globalManager.togglesApplied.Inc()
}

// RecordOverrideSet increments the step-overrides counter.
func RecordOverrideSet() {
	globalManager.overridesSet.Inc()
}

// RecordScoringError increments the scoring-errors counter.
func RecordScoringError() {
	globalManager.scoringErrors.Inc()
}

// RecordSnapshotLatency records snapshot recomputation time in milliseconds.
func RecordSnapshotLatency(latencyMs float64) {
	globalManager.snapshotLatency.Observe(latencyMs)
}

// UpdateActiveSessions sets the in-memory session gauge.
func UpdateActiveSessions(count int) {
	globalManager.activeSessions.Set(float64(count))
}

// RecordToggleSaved increments the persisted-toggles counter.
func RecordToggleSaved() {
	globalManager.togglesSaved.Inc()
}

// RecordToggleSaveFailed increments the failed-saves counter.
func RecordToggleSaveFailed() {
	globalManager.toggleSaveFailures.Inc()
}

// RecordToggleSaveRetried increments the save-retries counter.
func RecordToggleSaveRetried() {
	globalManager.toggleSaveRetries.Inc()
}

// UpdateSaveQueueDepth sets the save queue depth gauge.
func UpdateSaveQueueDepth(depth int) {
	globalManager.saveQueueDepth.Set(float64(depth))
}

// RecordHTTPRequest increments the request counter for an endpoint.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration records request duration for an endpoint.
func RecordHTTPRequestDuration(endpoint, method, status string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(durationMs)
}

// GetRegistry returns the custom registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
