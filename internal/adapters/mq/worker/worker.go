// Package worker runs the fold pipeline: evaluations come off the
// queue, land in the proposal store, update evaluator history, and
// trigger stability re-judgment.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/agora/internal/domain/model"
	"github.com/okian/agora/pkg/logger"
	"github.com/okian/agora/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 20 // multiplier for runtime.NumCPU()
	metricsUpdateInterval   = 5 * time.Second
	workerShutdownTimeout   = 5 * time.Second
)

// Evaluation abstracts what workers read off the queue.
type Evaluation = model.Evaluation

// Store folds evaluations into proposal aggregates and records
// stability verdicts.
type Store interface {
	ApplyEvaluation(ctx context.Context, proposalID string, value float64) (model.Proposal, error)
	SetStable(ctx context.Context, proposalID string, stable bool) error
}

// Judge decides whether a proposal's aggregate has settled enough to
// leave the evaluation pool.
type Judge interface {
	Stable(agg model.Aggregate) bool
}

// History records which evaluator rated which proposal.
type History interface {
	Record(ctx context.Context, evaluatorID, proposalID string)
}

// Queue defines how workers receive evaluations.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Evaluation
}

// Worker processes evaluations until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker over the in-memory pipeline.
type InMemoryWorker struct {
	queue   Queue
	store   Store
	judge   Judge
	history History
	name    string

	// processed is shared with the pool for throughput metrics.
	processed *atomic.Int64

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, store Store, judge Judge, history History, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		store:    store,
		judge:    judge,
		history:  history,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	evalChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case e, ok := <-evalChan:
			if !ok {
				// Queue closed and drained, worker should stop.
				return
			}

			if err := w.processEvaluation(ctx, e); err != nil {
				w.logger.Error(ctx, "evaluation processing failed",
					logger.String("evaluation_id", e.EvaluationID),
					logger.String("proposal_id", e.ProposalID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
		// already signaled
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processEvaluation folds a single evaluation: validate, apply to the
// store, record history, and re-judge stability on the fresh aggregate.
func (w *InMemoryWorker) processEvaluation(ctx context.Context, e Evaluation) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	if !model.ValidValue(e.Value) {
		metrics.RecordEvaluationRejected()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "invalid_value")
		metrics.RecordErrorByType("invalid_value", "low")
		return fmt.Errorf("evaluation %s value %f: %w", e.EvaluationID, e.Value, ErrInvalidEvaluation)
	}

	foldStart := time.Now()
	updated, err := w.store.ApplyEvaluation(ctx, e.ProposalID, e.Value)
	metrics.RecordFoldLatency(float64(time.Since(foldStart).Milliseconds()))
	if err != nil {
		metrics.RecordStoreError()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "store_error")
		metrics.RecordErrorByType("store_error", "high")
		return fmt.Errorf("fold of evaluation %s failed: %w", e.EvaluationID, err)
	}

	w.history.Record(ctx, e.EvaluatorID, e.ProposalID)

	// Stability is cached on the proposal; flip it only on transitions.
	if stable := w.judge.Stable(updated.Agg); stable != updated.Stable {
		if err := w.store.SetStable(ctx, e.ProposalID, stable); err != nil {
			metrics.RecordStoreError()
			metrics.RecordWorkerError()
			metrics.RecordErrorByComponent("worker", "store_error")
			return fmt.Errorf("stability update for %s failed: %w", e.ProposalID, err)
		}
	}

	metrics.RecordEvaluationApplied()
	if w.processed != nil {
		w.processed.Add(1)
	}

	return nil
}

// Pool manages multiple workers draining one queue.
type Pool struct {
	workers []*InMemoryWorker

	// Shutdown control
	shutdown chan struct{}

	// processed counts applied evaluations since the last rate sample.
	processed atomic.Int64

	logger logger.Logger
}

// NewPool creates a worker pool. A non-positive workerCount sizes the
// pool from the CPU count.
func NewPool(workerCount int, queue Queue, store Store, judge Judge, history History) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(
			queue,
			store,
			judge,
			history,
			WithName("worker-"+strconv.Itoa(i)),
			withProcessedCounter(&pool.processed),
		)
	}

	metrics.UpdateWorkerActiveCount(workerCount)
	metrics.UpdateWorkerIdleCount(0)
	metrics.UpdateWorkerMessagesPerSecond(0.0)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}

	go p.startMetricsUpdater(ctx)
}

// startMetricsUpdater samples pool throughput on a fixed interval.
func (p *Pool) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case <-ticker.C:
			processed := p.processed.Swap(0)
			metrics.UpdateWorkerMessagesPerSecond(float64(processed) / metricsUpdateInterval.Seconds())
		}
	}
}

// Stop gracefully stops all workers and the metrics updater. Each
// worker gets workerShutdownTimeout to drain what it holds.
func (p *Pool) Stop() {
	select {
	case <-p.shutdown:
		// already stopped
		return
	default:
		close(p.shutdown)
	}

	ctx, cancel := context.WithTimeout(context.Background(), workerShutdownTimeout)
	defer cancel()

	for _, w := range p.workers {
		if err := w.Shutdown(ctx); err != nil {
			p.logger.Warn(ctx, "worker stop timed out", logger.String("worker", w.name))
		}
	}
}
