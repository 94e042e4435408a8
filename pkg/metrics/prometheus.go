// Package metrics provides Prometheus metrics for the Agora deliberation service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the Agora service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Evaluation ingest metrics
	evaluationsApplied   prometheus.Counter
	evaluationsDuplicate prometheus.Counter
	evaluationsRejected  prometheus.Counter

	// Proposal pool metrics
	proposalsCreated    prometheus.Counter
	proposalsStabilized prometheus.Counter

	// Adaptive batch metrics
	batchesServed         prometheus.Counter
	batchSelectionLatency prometheus.Histogram
	batchSelectionSize    prometheus.Histogram

	// Deliberation engine metrics
	paymentRuns           prometheus.Counter
	acceptanceSimulations prometheus.Counter
	acceptanceRoundsUsed  prometheus.Histogram
	divergenceReports     prometheus.Counter
	segmentsSuppressed    prometheus.Counter

	// Queue metrics
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueues          prometheus.Counter
	queueDequeues          prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Worker metrics
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerIdleCount         prometheus.Gauge
	workerMessagesPerSecond prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	foldLatency             prometheus.Histogram
	workerErrors            prometheus.Counter
	storeErrors             prometheus.Counter

	// Repository metrics
	repositoryShardCount       prometheus.Gauge
	repositoryProposalsTotal   prometheus.Gauge
	repositoryStableTotal      prometheus.Gauge
	repositoryProposalsByShard *prometheus.GaugeVec
	repositoryQueryLatency     prometheus.Histogram
	repositoryUpdateLatency    prometheus.Histogram
	snapshotRebuildDuration    prometheus.Histogram
	snapshotLastUnix           prometheus.Gauge
	snapshotCount              prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error tracking
	errorsByComponent *prometheus.CounterVec
	errorsByType      *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec
	errorLatency      *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "agora",
		subsystem:        "deliberation",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	// Evaluation ingest metrics
	m.evaluationsApplied = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.metricPrefix + "evaluations_applied_total",
		Help:      "Total number of evaluations folded into proposal aggregates",
	})

	m.evaluationsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.metricPrefix + "evaluations_duplicate_total",
		Help:      "Total number of duplicate evaluation submissions detected",
	})

	m.evaluationsRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.metricPrefix + "evaluations_rejected_total",
		Help:      "Total number of evaluations rejected during folding",
	})

	// Proposal pool metrics
	m.proposalsCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.metricPrefix + "proposals_created_total",
		Help:      "Total number of proposals registered",
	})

	m.proposalsStabilized = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.metricPrefix + "proposals_stabilized_total",
		Help:      "Total number of proposals that reached statistical stability",
	})

	// Adaptive batch metrics
	m.batchesServed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.metricPrefix + "batches_served_total",
		Help:      "Total number of adaptive evaluation batches served",
	})

	m.batchSelectionLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.metricPrefix + "batch_selection_latency_milliseconds",
		Help:      "Batch selection latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.batchSelectionSize = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.metricPrefix + "batch_selection_size",
		Help:      "Number of proposals returned per batch",
		Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
	})

	// Deliberation engine metrics
	m.paymentRuns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.metricPrefix + "payment_runs_total",
		Help:      "Total number of payment distribution computations",
	})

	m.acceptanceSimulations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.metricPrefix + "acceptance_simulations_total",
		Help:      "Total number of acceptance simulations run",
	})

	m.acceptanceRoundsUsed = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.metricPrefix + "acceptance_rounds_used",
		Help:      "Rounds consumed per acceptance simulation",
		Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
	})

	m.divergenceReports = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.metricPrefix + "divergence_reports_total",
		Help:      "Total number of divergence reports computed",
	})

	m.segmentsSuppressed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.metricPrefix + "segments_suppressed_total",
		Help:      "Total number of segments suppressed by the k-anonymity gate",
	})

	// Queue metrics
	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.metricPrefix + "queue_size",
		Help:      "Current size of the evaluation queue",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.metricPrefix + "queue_capacity",
		Help:      "Maximum queue capacity",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.metricPrefix + "queue_utilization_ratio",
		Help:      "Queue utilization ratio (current size / capacity)",
	})

	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.metricPrefix + "queue_enqueue_total",
		Help:      "Total number of evaluations enqueued",
	})

	m.queueDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.metricPrefix + "queue_dequeue_total",
		Help:      "Total number of evaluations dequeued",
	})

	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.metricPrefix + "queue_enqueue_errors_total",
		Help:      "Total number of rejected enqueue attempts",
	})

	m.queueProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.metricPrefix + "queue_processing_latency_milliseconds",
		Help:      "Queue enqueue processing latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	// Worker metrics
	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.metricPrefix + "worker_count",
		Help:      "Configured number of fold workers",
	})

	m.workerActiveCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.metricPrefix + "worker_active_count",
		Help:      "Number of workers currently running",
	})

	m.workerIdleCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.metricPrefix + "worker_idle_count",
		Help:      "Number of workers currently idle",
	})

	m.workerMessagesPerSecond = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.metricPrefix + "worker_messages_per_second",
		Help:      "Evaluations processed per second across the worker pool",
	})

	m.workerProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.metricPrefix + "worker_processing_latency_milliseconds",
		Help:      "End-to-end evaluation processing latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.foldLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.metricPrefix + "fold_latency_milliseconds",
		Help:      "Store fold operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.metricPrefix + "worker_errors_total",
		Help:      "Total number of worker processing errors",
	})

	m.storeErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.metricPrefix + "store_errors_total",
		Help:      "Total number of store fold errors",
	})

	// Repository metrics
	m.repositoryShardCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.metricPrefix + "repository_shard_count",
		Help:      "Total number of repository shards",
	})

	m.repositoryProposalsTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.metricPrefix + "repository_proposals_total",
		Help:      "Total number of proposals across all shards",
	})

	m.repositoryStableTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.metricPrefix + "repository_stable_total",
		Help:      "Number of stable proposals across all shards",
	})

	m.repositoryProposalsByShard = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      m.metricPrefix + "repository_proposals_per_shard",
			Help:      "Number of proposals per shard",
		},
		[]string{"shard"},
	)

	m.repositoryQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.metricPrefix + "repository_query_latency_milliseconds",
		Help:      "Repository read latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.repositoryUpdateLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.metricPrefix + "repository_update_latency_milliseconds",
		Help:      "Repository write latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.snapshotRebuildDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.metricPrefix + "repository_snapshot_rebuild_duration_milliseconds",
		Help:      "Repository snapshot rebuild duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.snapshotLastUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.metricPrefix + "repository_snapshot_last_unix",
		Help:      "Unix timestamp of the last repository snapshot publish",
	})

	m.snapshotCount = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.metricPrefix + "repository_snapshot_count_total",
		Help:      "Total number of repository snapshots published",
	})

	// HTTP metrics
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      m.metricPrefix + "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      m.metricPrefix + "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	// Error tracking
	m.errorsByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      m.metricPrefix + "errors_by_component_total",
			Help:      "Total number of errors by component",
		},
		[]string{"component", "error_type"},
	)

	m.errorsByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      m.metricPrefix + "errors_by_type_total",
			Help:      "Total number of errors by type and severity",
		},
		[]string{"error_type", "severity"},
	)

	m.errorsByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      m.metricPrefix + "errors_by_endpoint_total",
			Help:      "Total number of errors by endpoint",
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.errorLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      m.metricPrefix + "error_latency_milliseconds",
			Help:      "Latency of requests that ended in an error, in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.metricPrefix + "system_memory_bytes",
		Help:      "Current memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.metricPrefix + "system_goroutines",
		Help:      "Current number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.metricPrefix + "system_gc_pause_milliseconds",
		Help:      "Garbage collection pause time in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// Evaluation ingest helpers.

// RecordEvaluationApplied increments the applied evaluations counter.
func RecordEvaluationApplied() {
	globalManager.evaluationsApplied.Inc()
}

// RecordEvaluationDuplicate increments the duplicate evaluations counter.
func RecordEvaluationDuplicate() {
	globalManager.evaluationsDuplicate.Inc()
}

// RecordEvaluationRejected increments the rejected evaluations counter.
func RecordEvaluationRejected() {
	globalManager.evaluationsRejected.Inc()
}

// Proposal pool helpers.

// RecordProposalCreated increments the proposals created counter.
func RecordProposalCreated() {
	globalManager.proposalsCreated.Inc()
}

// RecordProposalStabilized increments the stabilized proposals counter.
func RecordProposalStabilized() {
	globalManager.proposalsStabilized.Inc()
}

// Adaptive batch helpers.

// RecordBatchServed increments the served batches counter.
func RecordBatchServed() {
	globalManager.batchesServed.Inc()
}

// RecordBatchSelectionLatency records batch selection latency in milliseconds.
func RecordBatchSelectionLatency(latencyMs float64) {
	globalManager.batchSelectionLatency.Observe(latencyMs)
}

// RecordBatchSelectionSize records the number of proposals in a served batch.
func RecordBatchSelectionSize(size int) {
	globalManager.batchSelectionSize.Observe(float64(size))
}

// Deliberation engine helpers.

// RecordPaymentRun increments the payment computation counter.
func RecordPaymentRun() {
	globalManager.paymentRuns.Inc()
}

// RecordAcceptanceSimulation increments the simulation counter and records rounds used.
func RecordAcceptanceSimulation(rounds int) {
	globalManager.acceptanceSimulations.Inc()
	globalManager.acceptanceRoundsUsed.Observe(float64(rounds))
}

// RecordDivergenceReport increments the divergence report counter.
func RecordDivergenceReport() {
	globalManager.divergenceReports.Inc()
}

// RecordSegmentSuppressed increments the k-anonymity suppression counter.
func RecordSegmentSuppressed() {
	globalManager.segmentsSuppressed.Inc()
}

// Queue helpers.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueues.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeues.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueProcessingLatency records enqueue processing latency in milliseconds.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// Worker helpers.

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of running workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// UpdateWorkerIdleCount sets the number of idle workers.
func UpdateWorkerIdleCount(count int) {
	globalManager.workerIdleCount.Set(float64(count))
}

// UpdateWorkerMessagesPerSecond sets the pool's processing rate.
func UpdateWorkerMessagesPerSecond(rate float64) {
	globalManager.workerMessagesPerSecond.Set(rate)
}

// RecordWorkerProcessingLatency records evaluation processing latency in milliseconds.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordFoldLatency records store fold latency in milliseconds.
func RecordFoldLatency(latencyMs float64) {
	globalManager.foldLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordStoreError increments the store error counter.
func RecordStoreError() {
	globalManager.storeErrors.Inc()
}

// Repository helpers.

// UpdateRepositoryShardCount sets the total number of repository shards.
func UpdateRepositoryShardCount(count int) {
	globalManager.repositoryShardCount.Set(float64(count))
}

// UpdateRepositoryProposalsTotal sets the total number of proposals across all shards.
func UpdateRepositoryProposalsTotal(count int) {
	globalManager.repositoryProposalsTotal.Set(float64(count))
}

// UpdateRepositoryStableTotal sets the number of stable proposals across all shards.
func UpdateRepositoryStableTotal(count int) {
	globalManager.repositoryStableTotal.Set(float64(count))
}

// UpdateRepositoryProposalsPerShard sets the proposal count for one shard.
func UpdateRepositoryProposalsPerShard(shard string, count int) {
	globalManager.repositoryProposalsByShard.WithLabelValues(shard).Set(float64(count))
}

// RecordRepositoryQueryLatency records repository read latency in milliseconds.
func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager.repositoryQueryLatency.Observe(latencyMs)
}

// RecordRepositoryUpdateLatency records repository write latency in milliseconds.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	globalManager.repositoryUpdateLatency.Observe(latencyMs)
}

// RecordRepositorySnapshotRebuildDuration records a snapshot rebuild duration in milliseconds.
func RecordRepositorySnapshotRebuildDuration(durationMs float64) {
	globalManager.snapshotRebuildDuration.Observe(durationMs)
}

// UpdateRepositorySnapshotLastUnix sets the publish time of the latest snapshot.
func UpdateRepositorySnapshotLastUnix(ts float64) {
	globalManager.snapshotLastUnix.Set(ts)
}

// IncrementRepositorySnapshotCount increments the published snapshot counter.
func IncrementRepositorySnapshotCount() {
	globalManager.snapshotCount.Inc()
}

// HTTP helpers.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// Error tracking helpers.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorsByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error against an HTTP endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of a request that ended in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System helpers.

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
