package repository

import (
	"context"
	"hash/fnv"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	model "github.com/okian/agora/internal/domain/model"
	"github.com/okian/agora/pkg/metrics"
)

// Sharded, in-memory Store implementation.
//
// Writes (folds, stability flips) take a per-shard lock picked by an
// FNV-1a hash of the proposal ID, so concurrent workers rarely contend.
// Reads that need the whole pool (batch selection) go through an
// immutable snapshot behind an atomic pointer, rebuilt on a timer and
// synchronously on the rare mutations that change pool membership.

const (
	defaultShardCount       = 16
	defaultSnapshotInterval = 1 * time.Second
	defaultMetricsInterval  = 5 * time.Second
)

// Snapshot is an immutable view of the proposal pool.
type Snapshot struct {
	// Proposals is ordered by CreatedAt asc, ID asc so consumers see a
	// deterministic pool between rebuilds.
	Proposals []model.Proposal
}

type shard struct {
	mu        sync.RWMutex
	proposals map[string]model.Proposal
}

// ShardedStore implements Store over hash-partitioned maps with an
// atomically swapped read snapshot.
type ShardedStore struct {
	shards           []*shard
	shardCount       int
	snapshotInterval time.Duration
	metricsInterval  time.Duration

	snapshot atomic.Pointer[Snapshot]

	total       atomic.Int64
	stableCount atomic.Int64
	evaluations atomic.Int64

	wg       sync.WaitGroup
	stopChan chan struct{}
}

// NewShardedStore constructs a sharded store with configuration options
// and starts its snapshot and metrics goroutines.
func NewShardedStore(ctx context.Context, opts ...Option) *ShardedStore {
	s := &ShardedStore{
		shardCount:       defaultShardCount,
		snapshotInterval: defaultSnapshotInterval,
		metricsInterval:  defaultMetricsInterval,
	}

	for _, opt := range opts {
		opt(s)
	}
	if s.shardCount < 1 {
		s.shardCount = 1
	}

	s.shards = make([]*shard, s.shardCount)
	for i := range s.shards {
		s.shards[i] = &shard{proposals: make(map[string]model.Proposal)}
	}
	s.snapshot.Store(&Snapshot{})

	s.stopChan = make(chan struct{})
	s.startPeriodicSnapshots(ctx)
	s.startMetricsUpdater(ctx)

	metrics.UpdateRepositoryShardCount(s.shardCount)

	return s
}

func (s *ShardedStore) shardFor(id string) *shard {
	h := fnv.New32a()
	h.Write([]byte(id))
	return s.shards[h.Sum32()%uint32(s.shardCount)]
}

// Create adds a new proposal and publishes a fresh snapshot so the
// proposal is immediately listable.
func (s *ShardedStore) Create(ctx context.Context, p model.Proposal) error {
	sh := s.shardFor(p.ID)

	sh.mu.Lock()
	if _, exists := sh.proposals[p.ID]; exists {
		sh.mu.Unlock()
		metrics.RecordErrorByComponent("repository", "already_exists")
		return ErrAlreadyExists
	}
	sh.proposals[p.ID] = p
	sh.mu.Unlock()

	s.total.Add(1)
	if p.Stable {
		s.stableCount.Add(1)
	}
	metrics.RecordProposalCreated()

	s.Refresh(ctx)
	return nil
}

// Get returns the live proposal state, bypassing the snapshot.
func (s *ShardedStore) Get(ctx context.Context, id string) (model.Proposal, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	sh := s.shardFor(id)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	p, ok := sh.proposals[id]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Proposal{}, ErrNotFound
	}
	return p, nil
}

// List serves the latest published snapshot.
func (s *ShardedStore) List(ctx context.Context) []model.Proposal {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	return s.snapshot.Load().Proposals
}

// ApplyEvaluation folds value into the proposal's running aggregate.
// The snapshot is left to the periodic rebuild: folds are the hot path
// and tolerate a briefly stale pool view.
func (s *ShardedStore) ApplyEvaluation(ctx context.Context, proposalID string, value float64) (model.Proposal, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	sh := s.shardFor(proposalID)

	sh.mu.Lock()
	p, ok := sh.proposals[proposalID]
	if !ok {
		sh.mu.Unlock()
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Proposal{}, ErrNotFound
	}
	p.Agg = p.Agg.Add(value)
	sh.proposals[proposalID] = p
	sh.mu.Unlock()

	s.evaluations.Add(1)
	return p, nil
}

// SetStable records a stability verdict. A transition publishes a fresh
// snapshot immediately: stabilization happens once per proposal and
// must stop batch exposure right away, not a snapshot tick later.
func (s *ShardedStore) SetStable(ctx context.Context, proposalID string, stable bool) error {
	sh := s.shardFor(proposalID)

	sh.mu.Lock()
	p, ok := sh.proposals[proposalID]
	if !ok {
		sh.mu.Unlock()
		metrics.RecordErrorByComponent("repository", "not_found")
		return ErrNotFound
	}
	if p.Stable == stable {
		sh.mu.Unlock()
		return nil
	}
	p.Stable = stable
	sh.proposals[proposalID] = p
	sh.mu.Unlock()

	if stable {
		s.stableCount.Add(1)
		metrics.RecordProposalStabilized()
	} else {
		s.stableCount.Add(-1)
	}

	s.Refresh(ctx)
	return nil
}

// Count returns the total number of proposals in O(1).
func (s *ShardedStore) Count(ctx context.Context) int {
	return int(s.total.Load())
}

// StableCount returns the number of settled proposals in O(1).
func (s *ShardedStore) StableCount(ctx context.Context) int {
	return int(s.stableCount.Load())
}

// EvaluationCount returns the number of folded evaluations in O(1).
func (s *ShardedStore) EvaluationCount(ctx context.Context) int64 {
	return s.evaluations.Load()
}

// Refresh rebuilds and publishes the read snapshot.
func (s *ShardedStore) Refresh(ctx context.Context) {
	start := time.Now()

	proposals := make([]model.Proposal, 0, s.total.Load())
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, p := range sh.proposals {
			proposals = append(proposals, p)
		}
		sh.mu.RUnlock()
	}

	sort.Slice(proposals, func(i, j int) bool {
		if !proposals[i].CreatedAt.Equal(proposals[j].CreatedAt) {
			return proposals[i].CreatedAt.Before(proposals[j].CreatedAt)
		}
		return proposals[i].ID < proposals[j].ID
	})

	s.snapshot.Store(&Snapshot{Proposals: proposals})

	ms := float64(time.Since(start).Milliseconds())
	metrics.RecordRepositorySnapshotRebuildDuration(ms)
	metrics.UpdateRepositorySnapshotLastUnix(float64(time.Now().Unix()))
	metrics.IncrementRepositorySnapshotCount()
}

// Close gracefully shuts down the background goroutines.
func (s *ShardedStore) Close() error {
	select {
	case <-s.stopChan:
		// already closed
	default:
		close(s.stopChan)
	}
	s.wg.Wait()
	return nil
}

// startPeriodicSnapshots publishes snapshots at the configured interval
// to pick up aggregate drift from folds.
func (s *ShardedStore) startPeriodicSnapshots(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.snapshotInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.Refresh(ctx)
			}
		}
	}()
}

// startMetricsUpdater keeps the repository gauges current.
func (s *ShardedStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.updateMetrics()
			}
		}
	}()
}

func (s *ShardedStore) updateMetrics() {
	for i, sh := range s.shards {
		sh.mu.RLock()
		count := len(sh.proposals)
		sh.mu.RUnlock()
		metrics.UpdateRepositoryProposalsPerShard("shard_"+strconv.Itoa(i), count)
	}
	metrics.UpdateRepositoryProposalsTotal(int(s.total.Load()))
	metrics.UpdateRepositoryStableTotal(int(s.stableCount.Load()))
}
