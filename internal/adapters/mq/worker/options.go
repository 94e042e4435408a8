package worker

import (
	"sync/atomic"

	"github.com/okian/agora/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// withProcessedCounter shares the pool's throughput counter with a worker.
func withProcessedCounter(counter *atomic.Int64) Option {
	return func(w *InMemoryWorker) {
		w.processed = counter
	}
}
