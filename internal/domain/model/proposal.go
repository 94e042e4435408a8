package model

import "time"

// Aggregate accumulates evaluation statistics for one proposal.
// It keeps running moments plus sign bins so both the standard error
// and the Beta posterior can be derived without replaying evaluations.
type Aggregate struct {
	Count      int     // number of evaluations folded in
	Sum        float64 // sum of values
	SumSquares float64 // sum of squared values
	Positive   int     // evaluations with value > 0
	Neutral    int     // evaluations with value == 0
	Negative   int     // evaluations with value < 0
}

// Add returns the aggregate with one more evaluation value folded in.
func (a Aggregate) Add(value float64) Aggregate {
	a.Count++
	a.Sum += value
	a.SumSquares += value * value
	switch {
	case value > 0:
		a.Positive++
	case value < 0:
		a.Negative++
	default:
		a.Neutral++
	}
	return a
}

// Mean returns the average evaluation value, or 0 for an empty aggregate.
func (a Aggregate) Mean() float64 {
	if a.Count == 0 {
		return 0
	}
	return a.Sum / float64(a.Count)
}

// Proposal is a candidate item competing for evaluator attention.
type Proposal struct {
	ID        string
	Title     string
	CreatedAt time.Time
	Agg       Aggregate
	Stable    bool // cached stability flag maintained by the fold pipeline
}
