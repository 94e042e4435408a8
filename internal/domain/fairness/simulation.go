package fairness

import "math"

// Candidate is one answer competing for acceptance. Evaluator balances
// are ignored during simulation; the shared pool passed to
// SimulateAcceptance is the single source of balance truth.
type Candidate struct {
	ID         string      `json:"id"`
	Cost       float64     `json:"cost"`
	Evaluators []Evaluator `json:"evaluators"`
}

const (
	// defaultMaxRounds bounds simulations whose callers pass no limit.
	defaultMaxRounds = 100

	// goalEpsilon absorbs float drift from repeated top-ups; without it
	// a candidate can sit a few ULPs short of goal forever.
	goalEpsilon = 1e-9
)

// SimulateAcceptance plays out multi-round acceptance over a private
// copy of the balance pool; the caller's map is never mutated. Each
// round either accepts the at-goal candidate with the highest total
// contribution (deducting its payments from the pool) or, when nothing
// is affordable, tops up every pooled balance by the smallest finite
// distance per supporter. Ties go to input order. The simulation stops
// when all candidates are accepted, when no remaining candidate has
// supporters with a finite distance, or after maxRounds (non-positive
// values mean defaultMaxRounds).
//
// The pool defines the user universe: evaluators missing from it still
// contribute support weight but hold zero balance.
func SimulateAcceptance(candidates []Candidate, balances map[string]float64, maxRounds int) (accepted []string, rounds int) {
	if maxRounds <= 0 {
		maxRounds = defaultMaxRounds
	}

	pool := make(map[string]float64, len(balances))
	for id, b := range balances {
		pool[id] = b
	}

	acceptedSet := make(map[string]struct{}, len(candidates))
	accepted = make([]string, 0, len(candidates))

	for len(accepted) < len(candidates) && rounds < maxRounds {
		bestAtGoal := -1
		var bestContribution float64
		topUp := math.Inf(1)

		for i, c := range candidates {
			if _, done := acceptedSet[c.ID]; done {
				continue
			}
			m := AnswerMetrics(c.Cost, pooled(c.Evaluators, pool))
			if m.DistanceToGoal <= goalEpsilon {
				if bestAtGoal < 0 || m.TotalContribution > bestContribution {
					bestAtGoal = i
					bestContribution = m.TotalContribution
				}
				continue
			}
			if m.WeightedSupporters > 0 && m.DistancePerSupporter < topUp {
				topUp = m.DistancePerSupporter
			}
		}

		if bestAtGoal >= 0 {
			c := candidates[bestAtGoal]
			for _, p := range Payments(c.Cost, pooled(c.Evaluators, pool)) {
				if p.Amount > 0 {
					pool[p.UserID] -= p.Amount
				}
			}
			acceptedSet[c.ID] = struct{}{}
			accepted = append(accepted, c.ID)
			rounds++
			continue
		}

		if math.IsInf(topUp, 1) {
			break
		}
		for id := range pool {
			pool[id] += topUp
		}
		rounds++
	}

	return accepted, rounds
}

// pooled rebinds evaluator balances to the simulated pool.
func pooled(evaluators []Evaluator, pool map[string]float64) []Evaluator {
	out := make([]Evaluator, len(evaluators))
	for i, e := range evaluators {
		e.Balance = pool[e.UserID]
		out[i] = e
	}
	return out
}
