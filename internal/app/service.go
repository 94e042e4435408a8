// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	evalqueue "github.com/okian/agora/internal/adapters/mq/queue"
	workerpool "github.com/okian/agora/internal/adapters/mq/worker"
	repository "github.com/okian/agora/internal/adapters/repository"
	"github.com/okian/agora/internal/domain/dedupe"
	"github.com/okian/agora/internal/domain/history"
	"github.com/okian/agora/internal/domain/model"
	"github.com/okian/agora/internal/domain/sampling"
	"github.com/okian/agora/internal/domain/types"
	"github.com/okian/agora/pkg/logger"
	"github.com/okian/agora/pkg/metrics"
)

// Service wires the proposal store, evaluation pipeline, and sampling
// engine together for the deliberation system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     repository.Store
	deduper   dedupe.Deduper
	evalQueue evalqueue.Queue
	sampler   *sampling.Engine
	history   history.Tracker
	pool      *workerpool.Pool

	// Configuration
	workerCount      int
	queueSize        int
	dedupeSize       int
	shardCount       int
	snapshotInterval time.Duration
	samplingCfg      sampling.Config
	maxBatchSize     int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the evaluation queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithShardCount sets the number of shards in the proposal store.
func WithShardCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithSnapshotInterval sets how often the store's list snapshot is rebuilt.
func WithSnapshotInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.snapshotInterval = interval
		}
	}
}

// WithSamplingConfig sets the adaptive sampling configuration.
func WithSamplingConfig(cfg sampling.Config) Option {
	return func(s *Service) {
		s.samplingCfg = cfg
	}
}

// WithMaxBatchSize caps the number of proposals served per batch.
func WithMaxBatchSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.maxBatchSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:  runtime.NumCPU() * 2, // Default to 2x CPU cores
		queueSize:    100000,               // Default queue size
		dedupeSize:   50000,                // Default dedupe cache size
		shardCount:   16,
		samplingCfg:  sampling.DefaultConfig(),
		maxBatchSize: 20,
		logger:       nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting deliberation service...")

	// The sampler doubles as the stability judge for the fold workers,
	// so a bad sampling config has to fail the whole startup.
	sampler, err := sampling.NewEngine(sampling.WithConfig(s.samplingCfg))
	if err != nil {
		return fmt.Errorf("sampling engine: %w", err)
	}
	s.sampler = sampler

	s.store = repository.NewShardedStore(ctx,
		repository.WithShardCount(s.shardCount),
		repository.WithSnapshotInterval(s.snapshotInterval),
	)
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.evalQueue = evalqueue.NewInMemoryQueue(
		evalqueue.WithCapacity(s.queueSize),
		evalqueue.WithBufferSize(s.queueSize),
	)
	s.history = history.NewInMemoryTracker()

	// Create and start the fold worker pool.
	s.pool = workerpool.NewPool(s.workerCount, s.evalQueue, s.store, s.sampler, s.history)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "deliberation service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("shardCount", s.shardCount),
		logger.Int("maxBatchSize", s.maxBatchSize),
	)

	return nil
}

// Stop gracefully shuts down the service. The queue closes first so the
// workers drain what is already buffered before the pool stops.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping deliberation service...")

	if s.evalQueue != nil {
		_ = s.evalQueue.Close()
	}

	if s.pool != nil {
		s.pool.Stop()
	}

	if s.store != nil {
		_ = s.store.Close()
	}

	s.started = false
	s.logger.Info(context.Background(), "deliberation service stopped")
}

// SeenAndRecord atomically checks if an evaluation id was seen and records it
// if not. Returns true if the id was already seen, false if it was newly
// recorded. This is the ONLY method for deduplication - thread-safe and atomic.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordEvaluationDuplicate()
	}
	return seen
}

// Unrecord removes an evaluation ID from the seen list, allowing it to be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Enqueue submits an evaluation for asynchronous folding.
func (s *Service) Enqueue(ctx context.Context, e model.Evaluation) bool {
	s.logger.Debug(ctx, "enqueueing evaluation",
		logger.String("evaluation_id", e.EvaluationID),
		logger.String("proposal_id", e.ProposalID),
		logger.String("evaluator_id", e.EvaluatorID),
		logger.Float64("value", e.Value),
	)

	success := s.evalQueue.Enqueue(ctx, e)
	if !success {
		s.logger.Warn(ctx, "evaluation queue rejected submission",
			logger.String("evaluation_id", e.EvaluationID),
		)
	}
	return success
}

// CreateProposal registers a new proposal and stamps its creation time.
func (s *Service) CreateProposal(ctx context.Context, id, title string) (model.Proposal, error) {
	p := model.Proposal{
		ID:        id,
		Title:     title,
		CreatedAt: time.Now(),
	}
	if err := s.store.Create(ctx, p); err != nil {
		return model.Proposal{}, err
	}
	return p, nil
}

// GetProposal returns the aggregate read model for one proposal.
func (s *Service) GetProposal(ctx context.Context, id string) (types.ProposalView, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return types.ProposalView{}, err
	}

	return types.ProposalView{
		ID:              p.ID,
		Title:           p.Title,
		CreatedAt:       p.CreatedAt,
		EvaluationCount: p.Agg.Count,
		Mean:            p.Agg.Mean(),
		SEM:             sampling.SEM(p.Agg),
		Stable:          p.Stable,
	}, nil
}

// SelectBatch assembles an adaptive evaluation batch for one evaluator.
// Non-positive or oversized requests are clamped to the configured maximum.
func (s *Service) SelectBatch(ctx context.Context, evaluatorID string, size int) (types.Batch, error) {
	if size <= 0 || size > s.maxBatchSize {
		size = s.maxBatchSize
	}

	start := time.Now()
	rated := s.history.RatedSet(ctx, evaluatorID)
	proposals := s.store.List(ctx)

	batch, err := s.sampler.SelectForUser(proposals, rated, size)
	if err != nil {
		return types.Batch{}, err
	}

	metrics.RecordBatchServed()
	metrics.RecordBatchSelectionLatency(float64(time.Since(start).Milliseconds()))
	metrics.RecordBatchSelectionSize(len(batch.Selected))

	s.logger.Debug(ctx, "served evaluation batch",
		logger.String("evaluator_id", evaluatorID),
		logger.Int("selected", len(batch.Selected)),
		logger.Int("remaining", batch.Stats.Remaining),
	)

	return batch, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":      s.started,
		"workerCount":  s.workerCount,
		"queueSize":    s.queueSize,
		"dedupeSize":   s.dedupeSize,
		"maxBatchSize": s.maxBatchSize,
	}

	if s.started {
		queueLen := s.evalQueue.Len(ctx)

		stats["queueLength"] = queueLen
		stats["totalProposals"] = s.store.Count(ctx)
		stats["stableProposals"] = s.store.StableCount(ctx)
		stats["totalEvaluations"] = s.store.EvaluationCount(ctx)
		stats["historySize"] = s.history.Size()

		// Update metrics
		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}
