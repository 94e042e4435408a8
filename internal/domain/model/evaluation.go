// Package model contains domain models passed between layers.
package model

import "time"

// Evaluation represents a single rating submitted by an evaluator.
// Fields mirror the OpenAPI schema for /evaluations.
type Evaluation struct {
	EvaluationID string    // unique id for idempotency
	ProposalID   string    // proposal being rated
	EvaluatorID  string    // rating user identifier
	Value        float64   // rating in [-1, 1]
	TS           time.Time // submission timestamp
}

// Rating bounds accepted on the wire.
const (
	MinRating = -1.0
	MaxRating = 1.0
)

// ValidValue reports whether v is a rating the pipeline accepts.
func ValidValue(v float64) bool {
	return v >= MinRating && v <= MaxRating
}

// PositiveRating maps a rating in [-1,1] to its support weight in [0,1].
// Zero and negative ratings carry no support; they still count toward
// means and variances elsewhere.
func PositiveRating(v float64) float64 {
	if v > 0 {
		return v
	}
	return 0
}
