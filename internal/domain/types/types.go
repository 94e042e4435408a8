// Package types contains common types used across the application
package types

import "time"

// ScoredProposal is one entry of an adaptive evaluation batch.
type ScoredProposal struct {
	ProposalID      string  `json:"proposal_id"`
	Title           string  `json:"title,omitempty"`
	Priority        float64 `json:"priority"`
	Adjusted        float64 `json:"adjusted_priority"`
	Mean            float64 `json:"mean"`
	EvaluationCount int     `json:"evaluation_count"`
}

// BatchStats summarizes the proposal pool at selection time.
type BatchStats struct {
	Total     int `json:"total"`
	Evaluated int `json:"evaluated"`
	Stable    int `json:"stable"`
	Remaining int `json:"remaining"`
}

// Batch is an adaptive selection served to one evaluator.
type Batch struct {
	Selected []ScoredProposal `json:"selected"`
	Stats    BatchStats       `json:"stats"`
}

// ProposalView is the read model served for a single proposal.
type ProposalView struct {
	ID              string    `json:"id"`
	Title           string    `json:"title,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	EvaluationCount int       `json:"evaluation_count"`
	Mean            float64   `json:"mean"`
	SEM             float64   `json:"sem"`
	Stable          bool      `json:"stable"`
}
