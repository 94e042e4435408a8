// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...Option) initializer to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"fmt"
	"runtime"

	sampling "github.com/okian/agora/internal/domain/sampling"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// EvaluationQueueSize bounds the in-memory evaluation queue.
	EvaluationQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of fold workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the evaluation deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// ShardCount configures the number of shards in the proposal store.
	ShardCount int `koanf:"shard_count"`

	// SnapshotIntervalMS sets how often the proposal list snapshot is rebuilt.
	SnapshotIntervalMS int `koanf:"snapshot_interval_ms"`

	// MaxBatchSize caps GET /batch?size.
	MaxBatchSize int `koanf:"max_batch_size"`

	// Sampling tunes the adaptive batch selection engine.
	Sampling sampling.Config `koanf:"sampling"`
}

// New creates a Config using provided options. Context is accepted first to
// satisfy the project-wide convention; it is reserved for future use (e.g.,
// loading from env/files) and is currently unused.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		EvaluationQueueSize: 100_000,
		WorkerCount:         runtime.NumCPU() * 20,
		DedupeSize:          50_000,
		ShardCount:          16,
		SnapshotIntervalMS:  1_000,
		MaxBatchSize:        20,
		Sampling:            sampling.DefaultConfig(),
	}
	return c
}

// validate rejects configurations the service cannot start with. Called by
// Load after all layers are merged so a bad file or env override fails fast.
func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.EvaluationQueueSize <= 0 {
		return fmt.Errorf("%w: queue_size must be positive, got %d", ErrInvalidConfig, c.EvaluationQueueSize)
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("%w: worker_count must be positive, got %d", ErrInvalidConfig, c.WorkerCount)
	}
	if c.ShardCount <= 0 {
		return fmt.Errorf("%w: shard_count must be positive, got %d", ErrInvalidConfig, c.ShardCount)
	}
	if err := c.Sampling.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
