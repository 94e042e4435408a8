// Package queue defines the contract for buffering evaluations between
// HTTP ingestion and the fold workers.
//
// Implementations may use channels or more advanced structures. The
// service runs on an in-memory bounded queue.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/okian/agora/internal/domain/model"
	"github.com/okian/agora/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 100000
	defaultBufferSize    = 100000
)

// Evaluation is the payload type flowing through the queue.
type Evaluation = model.Evaluation

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an evaluation to the queue.
	// Returns false if the queue is full or closed and the evaluation
	// was not accepted; callers roll back idempotency state on false.
	Enqueue(ctx context.Context, e Evaluation) bool

	// Dequeue returns a channel that receives evaluations as they
	// become available. The channel closes when the queue is closed.
	Dequeue(ctx context.Context) <-chan Evaluation

	// Len returns the current number of queued evaluations.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue. After closing, no new
	// evaluations are accepted and the dequeue channel drains then closes.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	evaluations chan Evaluation
	capacity    int
	bufferSize  int
	mu          sync.RWMutex
	closed      bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity:   defaultQueueCapacity,
		bufferSize: defaultBufferSize,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.evaluations = make(chan Evaluation, q.bufferSize)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)

	return q
}

// Enqueue adds an evaluation to the queue without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, e Evaluation) bool {
	start := time.Now()
	defer func() {
		metrics.RecordQueueProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}

	if len(q.evaluations) >= q.capacity {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "capacity_exceeded")
		return false
	}

	select {
	case q.evaluations <- e:
		metrics.RecordQueueEnqueue()
		currentSize := len(q.evaluations)
		metrics.UpdateQueueSize(currentSize)
		metrics.UpdateQueueUtilization(float64(currentSize) / float64(q.capacity))
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Dequeue returns a channel that receives evaluations as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Evaluation {
	// Wrap the internal channel so consumption is metered.
	dequeueChan := make(chan Evaluation)
	go func() {
		defer close(dequeueChan)
		for e := range q.evaluations {
			select {
			case dequeueChan <- e:
				metrics.RecordQueueDequeue()
				currentSize := len(q.evaluations)
				metrics.UpdateQueueSize(currentSize)
				metrics.UpdateQueueUtilization(float64(currentSize) / float64(q.capacity))
			case <-ctx.Done():
				return
			}
		}
	}()
	return dequeueChan
}

// Len returns the current number of queued evaluations.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	size := len(q.evaluations)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
	return size
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.evaluations)
	q.closed = true

	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
