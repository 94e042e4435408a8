package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	service "github.com/okian/agora/internal/app"
	"github.com/okian/agora/internal/domain/model"
	"github.com/okian/agora/internal/domain/sampling"
	"github.com/okian/agora/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service with full integration", t, func() {
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithQueueSize(1000),
			service.WithDedupeSize(500),
			service.WithShardCount(4),
			service.WithSnapshotInterval(50*time.Millisecond),
		)
		defer svc.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		Convey("When starting the service", func() {
			err := svc.Start(ctx)

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
			})

			Convey("And the service should be running", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
			})
		})

		Convey("When processing evaluations end-to-end", func() {
			err := svc.Start(ctx)
			So(err, ShouldBeNil)

			// Give service time to start
			time.Sleep(100 * time.Millisecond)

			_, err = svc.CreateProposal(ctx, "prop-budget", "Participatory budget for parks")
			So(err, ShouldBeNil)
			_, err = svc.CreateProposal(ctx, "prop-transit", "Night bus line extension")
			So(err, ShouldBeNil)

			Convey("And enqueueing multiple evaluations", func() {
				evaluations := []model.Evaluation{
					{
						EvaluationID: "eval-1",
						ProposalID:   "prop-budget",
						EvaluatorID:  "alice",
						Value:        1.0,
						TS:           time.Now(),
					},
					{
						EvaluationID: "eval-2",
						ProposalID:   "prop-budget",
						EvaluatorID:  "bob",
						Value:        0.5,
						TS:           time.Now(),
					},
					{
						EvaluationID: "eval-3",
						ProposalID:   "prop-transit",
						EvaluatorID:  "alice",
						Value:        -0.5,
						TS:           time.Now(),
					},
				}

				// Enqueue all evaluations
				for _, e := range evaluations {
					So(svc.SeenAndRecord(ctx, e.EvaluationID), ShouldBeFalse)
					success := svc.Enqueue(ctx, e)
					So(success, ShouldBeTrue)
				}

				// Give workers time to fold
				time.Sleep(500 * time.Millisecond)

				Convey("Then aggregates should reflect the folds", func() {
					budget, err := svc.GetProposal(ctx, "prop-budget")
					So(err, ShouldBeNil)
					So(budget.EvaluationCount, ShouldEqual, 2)
					So(budget.Mean, ShouldAlmostEqual, 0.75)

					transit, err := svc.GetProposal(ctx, "prop-transit")
					So(err, ShouldBeNil)
					So(transit.EvaluationCount, ShouldEqual, 1)
					So(transit.Mean, ShouldAlmostEqual, -0.5)
				})

				Convey("And duplicate submissions should be detected", func() {
					So(svc.SeenAndRecord(ctx, "eval-1"), ShouldBeTrue)
				})

				Convey("And batches should exclude already-rated proposals", func() {
					batch, err := svc.SelectBatch(ctx, "alice", 10)
					So(err, ShouldBeNil)
					// alice rated both proposals.
					So(batch.Stats.Evaluated, ShouldEqual, 2)
					So(len(batch.Selected), ShouldEqual, 0)

					fresh, err := svc.SelectBatch(ctx, "carol", 10)
					So(err, ShouldBeNil)
					So(len(fresh.Selected), ShouldEqual, 2)
				})

				Convey("And the stats should add up", func() {
					stats := svc.GetStats()
					So(stats["totalProposals"], ShouldEqual, 2)
					So(stats["totalEvaluations"], ShouldEqual, int64(3))
					So(stats["historySize"], ShouldEqual, int64(3))
				})
			})
		})

		Convey("When handling service lifecycle", func() {
			Convey("And starting and stopping multiple times", func() {
				// Start service
				err := svc.Start(ctx)
				So(err, ShouldBeNil)

				// Give it time to start
				time.Sleep(100 * time.Millisecond)

				// Stop service
				svc.Stop()

				// Give it time to stop
				time.Sleep(100 * time.Millisecond)

				// Check it's stopped
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, false)

				// Start again
				err = svc.Start(ctx)
				So(err, ShouldBeNil)

				// Give it time to start
				time.Sleep(100 * time.Millisecond)

				// Check it's started again
				stats = svc.GetStats()
				So(stats["started"], ShouldEqual, true)
			})
		})

		Convey("When handling edge cases", func() {
			err := svc.Start(ctx)
			So(err, ShouldBeNil)

			// Give service time to start
			time.Sleep(100 * time.Millisecond)

			_, err = svc.CreateProposal(ctx, "prop-edge", "Edge case proposal")
			So(err, ShouldBeNil)

			Convey("And enqueueing evaluations with out-of-range values", func() {
				invalid := []model.Evaluation{
					{EvaluationID: "bad-1", ProposalID: "prop-edge", EvaluatorID: "u1", Value: 1000.0, TS: time.Now()},
					{EvaluationID: "bad-2", ProposalID: "prop-edge", EvaluatorID: "u2", Value: -100.0, TS: time.Now()},
				}

				for _, e := range invalid {
					success := svc.Enqueue(ctx, e)
					So(success, ShouldBeTrue) // Accepted by the queue, rejected at fold time
				}

				// Give workers time to process
				time.Sleep(500 * time.Millisecond)

				Convey("Then the rejected folds should not touch the aggregate", func() {
					view, err := svc.GetProposal(ctx, "prop-edge")
					So(err, ShouldBeNil)
					So(view.EvaluationCount, ShouldEqual, 0)

					stats := svc.GetStats()
					So(stats["started"], ShouldEqual, true)
				})
			})

			Convey("And enqueueing evaluations with very long IDs", func() {
				longID := "very-long-evaluation-id-" + string(make([]byte, 1000))

				e := model.Evaluation{
					EvaluationID: longID,
					ProposalID:   "prop-edge",
					EvaluatorID:  "long-id-user",
					Value:        0.75,
					TS:           time.Now(),
				}

				success := svc.Enqueue(ctx, e)
				So(success, ShouldBeTrue)

				// Give workers time to process
				time.Sleep(500 * time.Millisecond)

				Convey("Then long IDs should be handled", func() {
					view, err := svc.GetProposal(ctx, "prop-edge")
					So(err, ShouldBeNil)
					So(view.EvaluationCount, ShouldEqual, 1)
				})
			})
		})
	})
}

func TestServiceStabilityLoop(t *testing.T) {
	Convey("Given a service tuned to stabilize proposals quickly", t, func() {
		svc := service.New(
			service.WithWorkerCount(1),
			service.WithShardCount(2),
			service.WithSnapshotInterval(50*time.Millisecond),
			service.WithSamplingConfig(sampling.Config{
				TargetEvaluations: 3,
				TargetSEM:         10, // Effectively count-only stability
				ExplorationWeight: 0.3,
				RecencyBoostHours: 24,
			}),
		)
		defer svc.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := svc.Start(ctx)
		So(err, ShouldBeNil)
		time.Sleep(100 * time.Millisecond)

		_, err = svc.CreateProposal(ctx, "prop-settled", "Quickly settled proposal")
		So(err, ShouldBeNil)
		_, err = svc.CreateProposal(ctx, "prop-open", "Still-open proposal")
		So(err, ShouldBeNil)

		Convey("When enough evaluations accumulate", func() {
			for i := 0; i < 3; i++ {
				e := model.Evaluation{
					EvaluationID: fmt.Sprintf("settle-%d", i),
					ProposalID:   "prop-settled",
					EvaluatorID:  fmt.Sprintf("user-%d", i),
					Value:        0.8,
					TS:           time.Now(),
				}
				So(svc.Enqueue(ctx, e), ShouldBeTrue)
			}

			// Give the worker time to fold and flip stability.
			time.Sleep(500 * time.Millisecond)

			Convey("Then the proposal should report stable", func() {
				view, err := svc.GetProposal(ctx, "prop-settled")
				So(err, ShouldBeNil)
				So(view.EvaluationCount, ShouldEqual, 3)
				So(view.Stable, ShouldBeTrue)

				stats := svc.GetStats()
				So(stats["stableProposals"], ShouldEqual, 1)
			})

			Convey("And batches should exclude the stable proposal", func() {
				batch, err := svc.SelectBatch(ctx, "fresh-user", 10)
				So(err, ShouldBeNil)
				So(batch.Stats.Stable, ShouldEqual, 1)
				So(len(batch.Selected), ShouldEqual, 1)
				So(batch.Selected[0].ProposalID, ShouldEqual, "prop-open")
			})
		})
	})
}

func TestServiceConcurrency(t *testing.T) {
	Convey("Given a service with concurrent operations", t, func() {
		svc := service.New(
			service.WithWorkerCount(4),
			service.WithQueueSize(2000),
			service.WithDedupeSize(1000),
			service.WithShardCount(4),
			service.WithSnapshotInterval(50*time.Millisecond),
		)
		defer svc.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := svc.Start(ctx)
		So(err, ShouldBeNil)

		// Give service time to start
		time.Sleep(100 * time.Millisecond)

		numProposals := 10
		for i := 0; i < numProposals; i++ {
			_, err := svc.CreateProposal(ctx, fmt.Sprintf("prop-%d", i), fmt.Sprintf("Proposal %d", i))
			So(err, ShouldBeNil)
		}

		Convey("When multiple goroutines enqueue evaluations concurrently", func() {
			numGoroutines := 10
			evaluationsPerGoroutine := 50
			done := make(chan bool, numGoroutines)

			// Start multiple goroutines
			for i := 0; i < numGoroutines; i++ {
				go func(goroutineID int) {
					for j := 0; j < evaluationsPerGoroutine; j++ {
						e := model.Evaluation{
							EvaluationID: fmt.Sprintf("concurrent-%d-%d", goroutineID, j),
							ProposalID:   fmt.Sprintf("prop-%d", j%numProposals),
							EvaluatorID:  fmt.Sprintf("user-%d", goroutineID),
							Value:        float64(j%21-10) / 10.0, // Spread across [-1, 1]
							TS:           time.Now(),
						}
						svc.Enqueue(ctx, e)
					}
					done <- true
				}(i)
			}

			// Wait for all goroutines to complete
			for i := 0; i < numGoroutines; i++ {
				<-done
			}

			// Give workers time to process
			time.Sleep(2 * time.Second)

			Convey("Then all evaluations should be folded", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["totalEvaluations"], ShouldEqual, int64(numGoroutines*evaluationsPerGoroutine))

				counted := 0
				for i := 0; i < numProposals; i++ {
					view, err := svc.GetProposal(ctx, fmt.Sprintf("prop-%d", i))
					So(err, ShouldBeNil)
					counted += view.EvaluationCount
				}
				So(counted, ShouldEqual, numGoroutines*evaluationsPerGoroutine)
			})
		})

		Convey("When multiple goroutines query batches concurrently", func() {
			numGoroutines := 20
			done := make(chan bool, numGoroutines)
			queryErrors := make(chan error, numGoroutines*20) // Buffer for potential errors

			// Start multiple goroutines querying
			for i := 0; i < numGoroutines; i++ {
				go func(goroutineID int) {
					for j := 0; j < 10; j++ {
						batch, err := svc.SelectBatch(ctx, fmt.Sprintf("reader-%d", goroutineID), 5)
						if err != nil {
							queryErrors <- err
							continue
						}
						if batch.Stats.Total != numProposals {
							queryErrors <- fmt.Errorf("unexpected pool size %d", batch.Stats.Total)
							continue
						}

						if _, err := svc.GetProposal(ctx, "prop-0"); err != nil {
							queryErrors <- err
							continue
						}
					}
					done <- true
				}(i)
			}

			// Wait for all goroutines to complete
			for i := 0; i < numGoroutines; i++ {
				<-done
			}

			Convey("Then all queries should succeed", func() {
				// Check if any errors occurred
				select {
				case err := <-queryErrors:
					So(err, ShouldBeNil)
				default:
					// No errors, test passed
					So(true, ShouldBeTrue)
				}
			})
		})
	})
}

func TestServicePerformance(t *testing.T) {
	Convey("Given a service for performance testing", t, func() {
		svc := service.New(
			service.WithWorkerCount(8),
			service.WithQueueSize(10000),
			service.WithDedupeSize(5000),
			service.WithShardCount(8),
			service.WithSnapshotInterval(50*time.Millisecond),
		)
		defer svc.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := svc.Start(ctx)
		So(err, ShouldBeNil)

		// Give service time to start
		time.Sleep(100 * time.Millisecond)

		numProposals := 100
		for i := 0; i < numProposals; i++ {
			_, err := svc.CreateProposal(ctx, fmt.Sprintf("perf-prop-%d", i), fmt.Sprintf("Performance proposal %d", i))
			So(err, ShouldBeNil)
		}

		Convey("When processing a large number of evaluations", func() {
			numEvaluations := 1000
			start := time.Now()

			// Enqueue evaluations
			for i := 0; i < numEvaluations; i++ {
				e := model.Evaluation{
					EvaluationID: fmt.Sprintf("perf-eval-%d", i),
					ProposalID:   fmt.Sprintf("perf-prop-%d", i%numProposals),
					EvaluatorID:  fmt.Sprintf("perf-user-%d", i%50),
					Value:        float64(i%11-5) / 5.0,
					TS:           time.Now(),
				}
				svc.Enqueue(ctx, e)
			}

			enqueueTime := time.Since(start)

			// Give workers time to process
			time.Sleep(2 * time.Second)

			Convey("Then enqueueing should be fast", func() {
				// Should be able to enqueue 1000 evaluations in reasonable time
				So(enqueueTime, ShouldBeLessThan, 5*time.Second)
			})

			Convey("And batch selection should be fast", func() {
				start := time.Now()
				batch, err := svc.SelectBatch(ctx, "perf-reader", 20)
				queryTime := time.Since(start)

				So(err, ShouldBeNil)
				So(len(batch.Selected), ShouldBeGreaterThan, 0)
				So(queryTime, ShouldBeLessThan, 100*time.Millisecond)
			})

			Convey("And proposal reads should be fast", func() {
				start := time.Now()
				view, err := svc.GetProposal(ctx, "perf-prop-0")
				queryTime := time.Since(start)

				So(err, ShouldBeNil)
				So(view.ID, ShouldEqual, "perf-prop-0")
				So(queryTime, ShouldBeLessThan, 100*time.Millisecond)
			})
		})
	})
}
