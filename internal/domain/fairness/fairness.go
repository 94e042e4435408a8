// Package fairness implements the proportional cost-sharing mechanism
// behind answer acceptance.
//
// Each supporter pays from a per-user balance in proportion to both how
// strongly they rated an answer and how much balance they hold, so that
// the payments of all supporters together cover the answer's cost
// exactly. The package also simulates multi-round acceptance across
// competing answers drawing on one shared balance pool.
//
// Everything here is pure computation: no I/O, no validation beyond the
// documented guards, and no exceptions for numeric input inside the
// documented domains (ratings in [-1,1], non-negative balances).
// Behavior on negative balances is undefined and deliberately not
// checked here; the transport layer enforces that contract.
package fairness

import (
	"math"

	model "github.com/okian/agora/internal/domain/model"
)

// Evaluator is one user's rating of an answer plus their spendable balance.
type Evaluator struct {
	UserID     string  `json:"user_id"`
	Evaluation float64 `json:"evaluation"` // rating in [-1, 1]
	Balance    float64 `json:"balance"`    // spendable minutes
}

// Metrics describes how close an answer is to being affordable.
type Metrics struct {
	// WeightedSupporters (W) is the sum of positive ratings.
	WeightedSupporters float64
	// TotalContribution (T) is the sum of rating-weighted balances.
	TotalContribution float64
	// DistanceToGoal (D) is how many weighted minutes are still missing.
	DistanceToGoal float64
	// DistancePerSupporter (d) is D spread over W, +Inf without supporters.
	DistancePerSupporter float64
}

// Payment is one user's share of an accepted answer's cost.
type Payment struct {
	UserID string  `json:"user_id"`
	Amount float64 `json:"amount"`
}

// Status classifies an answer's support situation.
type Status string

// Answer support states.
const (
	StatusReached    Status = "reached"     // contributions cover the cost
	StatusHasSupport Status = "has-support" // supporters exist but cannot afford it yet
	StatusNoSupport  Status = "no-support"  // nobody rated it positively
)

// fullProgress is the percentage reported for a reached or costless goal.
const fullProgress = 100.0

// AnswerMetrics computes the weighted-support economics of one answer:
// W, T, D and d per the cost-sharing formulas. An answer without
// supporters reports an infinite distance per supporter.
func AnswerMetrics(cost float64, evaluators []Evaluator) Metrics {
	var w, t float64
	for _, e := range evaluators {
		r := model.PositiveRating(e.Evaluation)
		w += r
		t += r * e.Balance
	}

	d := math.Max(0, cost-t)
	per := math.Inf(1)
	if w > 0 {
		per = d / w
	}

	return Metrics{
		WeightedSupporters:   w,
		TotalContribution:    t,
		DistanceToGoal:       d,
		DistancePerSupporter: per,
	}
}

// Payments splits cost across supporters in proportion to their
// rating-weighted balance: p_i = (cost/T)·balance_i·rating_i. The result
// carries one entry per evaluator in input order, zero for
// non-supporters, and the amounts sum to cost whenever T > 0.
//
// Callers finalize payments only once the goal is reached (T >= cost);
// before that the scale factor exceeds one and shares can exceed the
// payer's balance.
func Payments(cost float64, evaluators []Evaluator) []Payment {
	var t float64
	for _, e := range evaluators {
		t += model.PositiveRating(e.Evaluation) * e.Balance
	}

	payments := make([]Payment, len(evaluators))
	for i, e := range evaluators {
		payments[i] = Payment{UserID: e.UserID}
		r := model.PositiveRating(e.Evaluation)
		if t > 0 && r > 0 {
			payments[i].Amount = (cost / t) * e.Balance * r
		}
	}
	return payments
}

// CompleteToGoal estimates the uniform balance top-up that would bring
// an answer within reach: perUser minutes for each of totalUsers. Both
// are zero when the distance is already closed, negative, or infinite
// (no finite uniform top-up can help).
func CompleteToGoal(distancePerSupporter float64, totalUsers int) (perUser, total float64) {
	if distancePerSupporter <= 0 || math.IsInf(distancePerSupporter, 0) {
		return 0, 0
	}
	return distancePerSupporter, distancePerSupporter * float64(totalUsers)
}

// StatusOf classifies metrics into the three support states. A closed
// distance wins over supporter presence, so a costless answer reports
// reached even without supporters.
func StatusOf(m Metrics) Status {
	switch {
	case m.DistanceToGoal == 0:
		return StatusReached
	case m.WeightedSupporters > 0:
		return StatusHasSupport
	default:
		return StatusNoSupport
	}
}

// Progress reports goal completion as a percentage capped at 100.
// A non-positive cost is trivially satisfied.
func Progress(cost, totalContribution float64) float64 {
	if cost <= 0 {
		return fullProgress
	}
	if totalContribution == 0 {
		return 0
	}
	return math.Min(fullProgress, fullProgress*totalContribution/cost)
}
