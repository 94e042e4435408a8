package types_test

import (
	"testing"
	"time"

	types "github.com/okian/agora/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBatchStats(t *testing.T) {
	Convey("Given batch statistics", t, func() {
		Convey("When the pool has evaluated and stable proposals", func() {
			stats := types.BatchStats{Total: 20, Evaluated: 7, Stable: 3, Remaining: 10}

			Convey("Then remaining should account for both exclusions", func() {
				So(stats.Remaining, ShouldEqual, stats.Total-stats.Evaluated-stats.Stable)
			})
		})

		Convey("When constructing zero-value stats", func() {
			var stats types.BatchStats

			Convey("Then all counters should be zero", func() {
				So(stats.Total, ShouldEqual, 0)
				So(stats.Evaluated, ShouldEqual, 0)
				So(stats.Stable, ShouldEqual, 0)
				So(stats.Remaining, ShouldEqual, 0)
			})
		})
	})
}

func TestBatch(t *testing.T) {
	Convey("Given a served batch", t, func() {
		batch := types.Batch{
			Selected: []types.ScoredProposal{
				{ProposalID: "p1", Priority: 0.8, Adjusted: 0.83, Mean: 0.2, EvaluationCount: 4},
				{ProposalID: "p2", Priority: 0.7, Adjusted: 0.71, Mean: -0.1, EvaluationCount: 9},
			},
			Stats: types.BatchStats{Total: 5, Evaluated: 2, Stable: 1, Remaining: 2},
		}

		Convey("Then the selection should be ordered by adjusted priority", func() {
			So(batch.Selected[0].Adjusted, ShouldBeGreaterThanOrEqualTo, batch.Selected[1].Adjusted)
		})

		Convey("And the stats should be carried verbatim", func() {
			So(batch.Stats.Total, ShouldEqual, 5)
			So(batch.Stats.Remaining, ShouldEqual, 2)
		})
	})
}

func TestProposalView(t *testing.T) {
	Convey("Given a proposal view", t, func() {
		created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		view := types.ProposalView{
			ID:              "prop-1",
			Title:           "budget for bike lanes",
			CreatedAt:       created,
			EvaluationCount: 31,
			Mean:            0.42,
			SEM:             0.12,
			Stable:          true,
		}

		Convey("Then it should carry the aggregate read model", func() {
			So(view.ID, ShouldEqual, "prop-1")
			So(view.CreatedAt, ShouldEqual, created)
			So(view.EvaluationCount, ShouldEqual, 31)
			So(view.SEM, ShouldBeLessThan, 0.15)
			So(view.Stable, ShouldBeTrue)
		})
	})
}
