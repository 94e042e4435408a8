package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			metricPrefixOpt := WithMetricPrefix("test_prefix_")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			metricsEnabledOpt := WithMetricsEnabled(true)
			refreshIntervalOpt := WithRefreshInterval(5 * time.Second)
			customLabelsOpt := WithCustomLabels(map[string]string{"env": "test"})

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(metricPrefixOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(metricsEnabledOpt, ShouldNotBeNil)
				So(refreshIntervalOpt, ShouldNotBeNil)
				So(customLabelsOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithMetricPrefix("test_prefix_"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(10*time.Second),
				WithCustomLabels(map[string]string{"env": "test", "version": "1.0"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestEvaluationMetrics(t *testing.T) {
	Convey("Given evaluation metrics recording", t, func() {
		Convey("Then applied, duplicate and rejected counters should not panic", func() {
			So(func() {
				RecordEvaluationApplied()
				RecordEvaluationApplied()
				RecordEvaluationDuplicate()
				RecordEvaluationRejected()
			}, ShouldNotPanic)
		})

		Convey("And proposal pool counters should not panic", func() {
			So(func() {
				RecordProposalCreated()
				RecordProposalStabilized()
			}, ShouldNotPanic)
		})

		Convey("And batch metrics should not panic", func() {
			So(func() {
				RecordBatchServed()
				RecordBatchSelectionLatency(4.2)
				RecordBatchSelectionSize(10)
			}, ShouldNotPanic)
		})
	})
}

func TestEngineMetrics(t *testing.T) {
	Convey("Given fairness and divergence metrics", t, func() {
		Convey("Then recording should not panic", func() {
			So(func() {
				RecordPaymentRun()
				RecordAcceptanceSimulation(7)
				RecordDivergenceReport()
				RecordSegmentSuppressed()
			}, ShouldNotPanic)
		})
	})
}

func TestPipelineMetrics(t *testing.T) {
	Convey("Given queue and worker metrics", t, func() {
		Convey("Then queue metrics should not panic", func() {
			So(func() {
				UpdateQueueSize(500)
				UpdateQueueCapacity(1000)
				UpdateQueueUtilization(0.5)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				RecordQueueProcessingLatency(0.3)
			}, ShouldNotPanic)
		})

		Convey("And worker metrics should not panic", func() {
			So(func() {
				UpdateWorkerCount(8)
				UpdateWorkerActiveCount(8)
				UpdateWorkerIdleCount(0)
				UpdateWorkerMessagesPerSecond(1200.5)
				RecordWorkerProcessingLatency(1.5)
				RecordFoldLatency(0.2)
				RecordWorkerError()
				RecordStoreError()
			}, ShouldNotPanic)
		})

		Convey("And repository metrics should not panic", func() {
			So(func() {
				UpdateRepositoryShardCount(16)
				UpdateRepositoryProposalsTotal(100)
				UpdateRepositoryStableTotal(7)
				UpdateRepositoryProposalsPerShard("shard_0", 13)
				RecordRepositoryQueryLatency(0.05)
				RecordRepositoryUpdateLatency(0.1)
				RecordRepositorySnapshotRebuildDuration(2.5)
				UpdateRepositorySnapshotLastUnix(1700000000)
				IncrementRepositorySnapshotCount()
			}, ShouldNotPanic)
		})
	})
}

func TestHTTPMetrics(t *testing.T) {
	Convey("Given HTTP metrics", t, func() {
		Convey("Then recording requests should not panic", func() {
			So(func() {
				RecordHTTPRequest("/evaluations", "POST", "202")
				RecordHTTPRequestDuration("/evaluations", "POST", "202", 12.5)
				RecordErrorByComponent("api", "validation")
				RecordErrorByType("validation", "low")
				RecordErrorByEndpoint("/evaluations", "POST", "validation")
				RecordErrorLatency("http", "client_error", 3.2)
			}, ShouldNotPanic)
		})
	})
}

func TestSystemMetrics(t *testing.T) {
	Convey("Given system metrics", t, func() {
		Convey("Then recording should not panic", func() {
			So(func() {
				UpdateSystemMemoryUsage(64 << 20)
				UpdateSystemGoroutineCount(42)
				RecordSystemGCPauseTime(0.8)
			}, ShouldNotPanic)
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the global registry", t, func() {
		Convey("Then it should be gatherable", func() {
			registry := GetRegistry()
			So(registry, ShouldNotBeNil)

			families, err := registry.Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}
