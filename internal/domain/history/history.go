// Package history remembers which proposals each evaluator has already
// rated. Batch selection feeds on it: a proposal someone rated must
// never be offered to them again.
package history

import (
	"context"
	"sync"
	"sync/atomic"
)

// Tracker records evaluator/proposal pairs and answers exclusion
// queries for batch selection.
type Tracker interface {
	// Record marks proposalID as rated by evaluatorID. Re-recording the
	// same pair is a no-op.
	Record(ctx context.Context, evaluatorID, proposalID string)

	// HasRated reports whether the evaluator already rated the proposal.
	HasRated(ctx context.Context, evaluatorID, proposalID string) bool

	// RatedSet returns a private copy of the evaluator's rated proposal
	// IDs, safe to hand to concurrent readers.
	RatedSet(ctx context.Context, evaluatorID string) map[string]struct{}

	// CountFor reports how many proposals the evaluator has rated.
	CountFor(ctx context.Context, evaluatorID string) int

	// Size reports the total number of rated pairs across evaluators.
	Size() int64
}

type inMemoryTracker struct {
	mu    sync.RWMutex
	rated map[string]map[string]struct{}
	pairs atomic.Int64
}

// NewInMemoryTracker creates an empty in-memory tracker.
func NewInMemoryTracker() Tracker {
	return &inMemoryTracker{rated: make(map[string]map[string]struct{})}
}

func (t *inMemoryTracker) Record(ctx context.Context, evaluatorID, proposalID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	set, ok := t.rated[evaluatorID]
	if !ok {
		set = make(map[string]struct{})
		t.rated[evaluatorID] = set
	}
	if _, dup := set[proposalID]; dup {
		return
	}
	set[proposalID] = struct{}{}
	t.pairs.Add(1)
}

func (t *inMemoryTracker) HasRated(ctx context.Context, evaluatorID, proposalID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	_, ok := t.rated[evaluatorID][proposalID]
	return ok
}

func (t *inMemoryTracker) RatedSet(ctx context.Context, evaluatorID string) map[string]struct{} {
	t.mu.RLock()
	defer t.mu.RUnlock()

	set := t.rated[evaluatorID]
	out := make(map[string]struct{}, len(set))
	for id := range set {
		out[id] = struct{}{}
	}
	return out
}

func (t *inMemoryTracker) CountFor(ctx context.Context, evaluatorID string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.rated[evaluatorID])
}

func (t *inMemoryTracker) Size() int64 {
	return t.pairs.Load()
}
