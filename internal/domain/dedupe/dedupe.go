// Package dedupe tracks already-seen evaluation IDs for at-most-once
// ingestion.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen evaluation IDs so duplicates can be acknowledged
// without re-processing.
type Deduper interface {
	// SeenAndRecord atomically checks whether id was seen and records it
	// if not. Returns true when id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets an ID so it can be retried. Used when an
	// evaluation was recorded but never made it into the pipeline
	// (queue backpressure).
	Unrecord(ctx context.Context, id string)

	// Size reports how many IDs are currently tracked.
	Size() int64
}

// defaultMaxTracked bounds memory when no explicit limit is configured.
const defaultMaxTracked = 50000

// rotatingDeduper bounds memory with two ID generations: inserts land in
// the current generation, and once it fills the previous generation is
// dropped wholesale and the current one takes its place. An ID therefore
// stays visible for at least one full generation of newer traffic, which
// is the window duplicate submissions realistically arrive in. With a
// non-positive limit nothing is ever dropped.
type rotatingDeduper struct {
	mu       sync.Mutex
	current  map[string]struct{}
	previous map[string]struct{}
	maxSize  int
	genCap   int // rotation point, maxSize/2; 0 disables rotation
	size     atomic.Int64
}

// NewInMemoryDeduper creates an in-memory deduper. The default limit
// keeps at most defaultMaxTracked IDs across both generations.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &rotatingDeduper{maxSize: defaultMaxTracked}
	for _, opt := range opts {
		opt(d)
	}

	if d.maxSize > 0 {
		d.genCap = d.maxSize / 2
		if d.genCap < 1 {
			d.genCap = 1
		}
	}
	d.current = make(map[string]struct{})
	d.previous = make(map[string]struct{})
	return d
}

func (d *rotatingDeduper) SeenAndRecord(ctx context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.current[id]; ok {
		return true
	}
	if _, ok := d.previous[id]; ok {
		return true
	}

	d.current[id] = struct{}{}
	d.size.Add(1)

	if d.genCap > 0 && len(d.current) >= d.genCap {
		d.size.Add(-int64(len(d.previous)))
		d.previous = d.current
		d.current = make(map[string]struct{}, d.genCap)
	}
	return false
}

func (d *rotatingDeduper) Unrecord(ctx context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.current[id]; ok {
		delete(d.current, id)
		d.size.Add(-1)
		return
	}
	if _, ok := d.previous[id]; ok {
		delete(d.previous, id)
		d.size.Add(-1)
	}
}

func (d *rotatingDeduper) Size() int64 {
	return d.size.Load()
}
