package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	model "github.com/okian/agora/internal/domain/model"
)

// floatEqual compares two float64 values with a small tolerance for floating-point precision
func floatEqual(a, b float64) bool {
	const tolerance = 1e-10
	return math.Abs(a-b) < tolerance
}

// quietStore builds a store whose tickers never fire during a test, so
// snapshot behavior is exercised deterministically via Refresh.
func quietStore(ctx context.Context, opts ...Option) *ShardedStore {
	base := []Option{
		WithSnapshotInterval(time.Hour),
		WithMetricsUpdateInterval(time.Hour),
	}
	return NewShardedStore(ctx, append(base, opts...)...)
}

func TestShardedStore_BasicOperations(t *testing.T) {
	ctx := context.Background()
	store := quietStore(ctx)
	defer store.Close()

	if count := store.Count(ctx); count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}
	if got := store.List(ctx); len(got) != 0 {
		t.Errorf("expected empty snapshot, got %d entries", len(got))
	}

	created := model.Proposal{ID: "p1", Title: "Bike lanes on 5th", CreatedAt: time.Now()}
	if err := store.Create(ctx, created); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count := store.Count(ctx); count != 1 {
		t.Errorf("expected count 1, got %d", count)
	}

	got, err := store.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "Bike lanes on 5th" {
		t.Errorf("expected title to round-trip, got %q", got.Title)
	}

	if err := store.Create(ctx, created); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
	if count := store.Count(ctx); count != 1 {
		t.Errorf("expected count to stay 1, got %d", count)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestShardedStore_ApplyEvaluation(t *testing.T) {
	ctx := context.Background()
	store := quietStore(ctx)
	defer store.Close()

	if err := store.Create(ctx, model.Proposal{ID: "p1", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	values := []float64{1, -0.5, 0.5, 0}
	var last model.Proposal
	for _, v := range values {
		var err error
		last, err = store.ApplyEvaluation(ctx, "p1", v)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if last.Agg.Count != len(values) {
		t.Errorf("expected %d folded evaluations, got %d", len(values), last.Agg.Count)
	}
	if !floatEqual(last.Agg.Mean(), 0.25) {
		t.Errorf("expected mean 0.25, got %f", last.Agg.Mean())
	}
	if last.Agg.Positive != 2 || last.Agg.Neutral != 1 || last.Agg.Negative != 1 {
		t.Errorf("unexpected bins: +%d =%d -%d", last.Agg.Positive, last.Agg.Neutral, last.Agg.Negative)
	}
	if n := store.EvaluationCount(ctx); n != int64(len(values)) {
		t.Errorf("expected evaluation count %d, got %d", len(values), n)
	}

	if _, err := store.ApplyEvaluation(ctx, "missing", 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestShardedStore_SetStable(t *testing.T) {
	ctx := context.Background()
	store := quietStore(ctx)
	defer store.Close()

	if err := store.Create(ctx, model.Proposal{ID: "p1", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := store.SetStable(ctx, "p1", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := store.StableCount(ctx); n != 1 {
		t.Errorf("expected stable count 1, got %d", n)
	}

	// Same verdict again is a no-op.
	if err := store.SetStable(ctx, "p1", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := store.StableCount(ctx); n != 1 {
		t.Errorf("expected stable count to stay 1, got %d", n)
	}

	// A stability transition must be visible in the snapshot at once.
	listed := store.List(ctx)
	if len(listed) != 1 || !listed[0].Stable {
		t.Error("expected the snapshot to reflect the stability transition")
	}

	if err := store.SetStable(ctx, "p1", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := store.StableCount(ctx); n != 0 {
		t.Errorf("expected stable count 0, got %d", n)
	}

	if err := store.SetStable(ctx, "missing", true); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestShardedStore_ListOrdering(t *testing.T) {
	ctx := context.Background()
	store := quietStore(ctx)
	defer store.Close()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	// Inserted out of order on purpose.
	inserts := []model.Proposal{
		{ID: "z-late", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "b-early", CreatedAt: base},
		{ID: "a-early", CreatedAt: base},
		{ID: "m-mid", CreatedAt: base.Add(time.Hour)},
	}
	for _, p := range inserts {
		if err := store.Create(ctx, p); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	got := store.List(ctx)
	want := []string{"a-early", "b-early", "m-mid", "z-late"}
	if len(got) != len(want) {
		t.Fatalf("expected %d proposals, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, got[i].ID)
		}
	}
}

func TestShardedStore_SnapshotLag(t *testing.T) {
	ctx := context.Background()
	store := quietStore(ctx)
	defer store.Close()

	if err := store.Create(ctx, model.Proposal{ID: "p1", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := store.ApplyEvaluation(ctx, "p1", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Folds do not publish; the snapshot still carries the old aggregate.
	if got := store.List(ctx); got[0].Agg.Count != 0 {
		t.Errorf("expected stale snapshot before refresh, got count %d", got[0].Agg.Count)
	}
	// Get bypasses the snapshot and sees the fold immediately.
	live, err := store.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if live.Agg.Count != 1 {
		t.Errorf("expected live read to see the fold, got count %d", live.Agg.Count)
	}

	store.Refresh(ctx)
	if got := store.List(ctx); got[0].Agg.Count != 1 {
		t.Errorf("expected refreshed snapshot to see the fold, got count %d", got[0].Agg.Count)
	}
}

func TestShardedStore_ConcurrentFolds(t *testing.T) {
	ctx := context.Background()
	store := quietStore(ctx, WithShardCount(8))
	defer store.Close()

	const proposals = 20
	const workers = 8
	const foldsPerWorker = 250

	for i := 0; i < proposals; i++ {
		if err := store.Create(ctx, model.Proposal{ID: fmt.Sprintf("p-%d", i), CreatedAt: time.Now()}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < foldsPerWorker; j++ {
				id := fmt.Sprintf("p-%d", (worker+j)%proposals)
				if _, err := store.ApplyEvaluation(ctx, id, 0.5); err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	if n := store.EvaluationCount(ctx); n != workers*foldsPerWorker {
		t.Errorf("expected %d evaluations, got %d", workers*foldsPerWorker, n)
	}

	var folded int
	for i := 0; i < proposals; i++ {
		p, err := store.Get(ctx, fmt.Sprintf("p-%d", i))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		folded += p.Agg.Count
	}
	if folded != workers*foldsPerWorker {
		t.Errorf("expected folds to sum to %d, got %d", workers*foldsPerWorker, folded)
	}
}

func TestShardedStore_CloseIsIdempotent(t *testing.T) {
	store := quietStore(context.Background())
	if err := store.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("unexpected error on second close: %v", err)
	}
}

func BenchmarkShardedStoreApplyEvaluation(b *testing.B) {
	ctx := context.Background()
	store := quietStore(ctx, WithShardCount(32))
	defer store.Close()

	const proposals = 1000
	for i := 0; i < proposals; i++ {
		if err := store.Create(ctx, model.Proposal{ID: fmt.Sprintf("p-%d", i), CreatedAt: time.Now()}); err != nil {
			b.Fatalf("unexpected error: %v", err)
		}
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			id := fmt.Sprintf("p-%d", i%proposals)
			if _, err := store.ApplyEvaluation(ctx, id, 0.5); err != nil {
				b.Fatalf("unexpected error: %v", err)
			}
			i++
		}
	})
}

func BenchmarkShardedStoreList(b *testing.B) {
	ctx := context.Background()
	store := quietStore(ctx)
	defer store.Close()

	for i := 0; i < 1000; i++ {
		if err := store.Create(ctx, model.Proposal{ID: fmt.Sprintf("p-%d", i), CreatedAt: time.Now()}); err != nil {
			b.Fatalf("unexpected error: %v", err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if got := store.List(ctx); len(got) != 1000 {
			b.Fatalf("expected 1000 proposals, got %d", len(got))
		}
	}
}
