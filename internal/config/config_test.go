package config_test

import (
	"context"
	"runtime"
	"testing"

	"github.com/okian/agora/internal/config"
	"github.com/okian/agora/internal/domain/sampling"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.EvaluationQueueSize, convey.ShouldEqual, 100_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*20)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
			convey.So(cfg.ShardCount, convey.ShouldEqual, 16)
			convey.So(cfg.SnapshotIntervalMS, convey.ShouldEqual, 1_000)
			convey.So(cfg.MaxBatchSize, convey.ShouldEqual, 20)
		})

		convey.Convey("Then the sampling defaults should be valid", func() {
			convey.So(cfg.Sampling, convey.ShouldResemble, sampling.DefaultConfig())
			convey.So(cfg.Sampling.Validate(), convey.ShouldBeNil)
		})
	})
}
