// Package repository defines the proposal store interface and errors.
package repository

import (
	"context"

	model "github.com/okian/agora/internal/domain/model"
)

// Store provides read/write access to the deliberation pool.
type Store interface {
	// Create adds a new proposal.
	// Returns ErrAlreadyExists when the ID is taken.
	Create(ctx context.Context, p model.Proposal) error

	// Get returns the live proposal state by ID.
	// Returns ErrNotFound when the proposal is unknown.
	Get(ctx context.Context, id string) (model.Proposal, error)

	// List returns the latest published snapshot, ordered by creation
	// time then ID. The returned slice is shared and must be treated
	// as read-only.
	List(ctx context.Context) []model.Proposal

	// ApplyEvaluation folds value into the proposal's aggregate and
	// returns the updated proposal. Returns ErrNotFound when unknown.
	ApplyEvaluation(ctx context.Context, proposalID string, value float64) (model.Proposal, error)

	// SetStable records the stability verdict for a proposal.
	// Returns ErrNotFound when unknown.
	SetStable(ctx context.Context, proposalID string, stable bool) error

	// Count returns the number of proposals tracked.
	Count(ctx context.Context) int

	// StableCount returns how many proposals have settled.
	StableCount(ctx context.Context) int

	// EvaluationCount returns the total number of folded evaluations.
	EvaluationCount(ctx context.Context) int64

	// Refresh synchronously rebuilds the read snapshot.
	Refresh(ctx context.Context)

	// Close stops the background snapshot and metrics goroutines.
	Close() error
}
