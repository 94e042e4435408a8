package loadgen

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/okian/agora/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
)

// Rating ranges per archetype. Every draw stays inside [-1, 1].
const (
	enthusiastMin   = 0.5
	enthusiastRange = 0.5
	criticMin       = -1.0
	criticRange     = 0.7
	moderateMin     = -0.3
	moderateRange   = 0.6
	contrarianBand  = 0.2
	contrarianFlip  = 0.5
)

// Archetype names an evaluator temperament; each maps to a rating range.
type Archetype string

// Known archetypes.
const (
	ArchetypeEnthusiast Archetype = "enthusiast"
	ArchetypeCritic     Archetype = "critic"
	ArchetypeModerate   Archetype = "moderate"
	ArchetypeContrarian Archetype = "contrarian"
)

// knownArchetype reports whether the name maps to a rating range.
func knownArchetype(a Archetype) bool {
	switch a {
	case ArchetypeEnthusiast, ArchetypeCritic, ArchetypeModerate, ArchetypeContrarian:
		return true
	default:
		return false
	}
}

// Evaluator is a synthetic participant with a fixed temperament.
type Evaluator struct {
	ID        string
	Archetype Archetype
}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// getRandomInt returns a random int in [0, limit) using crypto/rand.
func getRandomInt(limit int) int {
	if limit <= 0 {
		return 0
	}
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(limit)))
	return int(n.Int64())
}

// rating draws one value from the archetype's range.
func (a Archetype) rating() float64 {
	switch a {
	case ArchetypeEnthusiast:
		// Warm supporters (0.5 - 1.0)
		return enthusiastMin + getRandomFloat()*enthusiastRange
	case ArchetypeCritic:
		// Consistent objectors (-1.0 - -0.3)
		return criticMin + getRandomFloat()*criticRange
	case ArchetypeModerate:
		// Fence sitters (-0.3 - 0.3)
		return moderateMin + getRandomFloat()*moderateRange
	case ArchetypeContrarian:
		// Extremes on both ends (-1.0 - -0.8 or 0.8 - 1.0)
		if getRandomFloat() < contrarianFlip {
			return -1.0 + getRandomFloat()*contrarianBand
		}
		return 1.0 - getRandomFloat()*contrarianBand
	default:
		return moderateMin + getRandomFloat()*moderateRange
	}
}

// pickArchetype draws an archetype according to the scenario weights.
func pickArchetype(scenario *Scenario) Archetype {
	total := 0.0
	for _, aw := range scenario.Archetypes {
		total += aw.Weight
	}

	target := getRandomFloat() * total
	for _, aw := range scenario.Archetypes {
		target -= aw.Weight
		if target < 0 {
			return Archetype(aw.Name)
		}
	}

	return Archetype(scenario.Archetypes[len(scenario.Archetypes)-1].Name)
}

// generateProposals mints the proposals the run will create on the service.
func generateProposals(config *Config) []Proposal {
	proposals := make([]Proposal, config.NumProposals)
	for i := range proposals {
		proposals[i] = Proposal{
			ProposalID: uuid.New().String(),
			Title:      "Load proposal " + strconv.Itoa(i+1),
		}
	}
	return proposals
}

// generateEvaluators assigns each evaluator a unique ID and an archetype
// drawn from the scenario weights.
func generateEvaluators(config *Config, scenario *Scenario) []Evaluator {
	evaluators := make([]Evaluator, config.NumEvaluators)
	for i := range evaluators {
		evaluators[i] = Evaluator{
			ID:        uuid.New().String(),
			Archetype: pickArchetype(scenario),
		}
	}
	return evaluators
}

// generateEvaluations creates evaluations for the evaluator population.
// Work is partitioned by evaluator so each evaluator rates a distinct set
// of proposals; batch verification depends on that later.
func generateEvaluations(ctx context.Context, config *Config, evaluators []Evaluator, proposals []Proposal, stats *Stats) ([]Evaluation, error) {
	if len(evaluators) == 0 {
		return nil, fmt.Errorf("no evaluators to generate evaluations for")
	}
	if len(proposals) == 0 {
		return nil, fmt.Errorf("no proposals to evaluate")
	}

	logger.Get().Info(ctx, "generating evaluations",
		logger.Int("numEvaluations", config.NumEvaluations),
		logger.Int("numEvaluators", len(evaluators)),
		logger.Int("numProposals", len(proposals)))

	// Spread evaluations across evaluators; each evaluator can rate a
	// proposal at most once, so counts are capped at the pool size.
	counts := make([]int, len(evaluators))
	base := config.NumEvaluations / len(evaluators)
	extra := config.NumEvaluations % len(evaluators)
	for i := range counts {
		counts[i] = base
		if i < extra {
			counts[i]++
		}
		counts[i] = minInt(counts[i], len(proposals))
	}

	// Generate per evaluator concurrently
	type evalResult struct {
		index       int
		evaluations []Evaluation
		err         error
	}

	resultChan := make(chan evalResult, len(evaluators))

	// Use worker pool partitioned over evaluators
	workerCount := minInt(config.Workers, len(evaluators))
	if workerCount < 1 {
		workerCount = 1
	}
	evaluatorsPerWorker := len(evaluators) / workerCount

	for worker := 0; worker < workerCount; worker++ {
		start := worker * evaluatorsPerWorker
		end := start + evaluatorsPerWorker
		if worker == workerCount-1 {
			end = len(evaluators) // Last worker gets remaining evaluators
		}

		go func(_ int, start, end int) {
			for i := start; i < end; i++ {
				select {
				case <-ctx.Done():
					resultChan <- evalResult{index: i, err: ctx.Err()}
					return
				default:
					evals := generateForEvaluator(evaluators[i], proposals, counts[i])
					resultChan <- evalResult{index: i, evaluations: evals, err: nil}
				}
			}
		}(worker, start, end)
	}

	// Collect results; the final slice follows evaluator order
	perEvaluator := make([][]Evaluation, len(evaluators))
	for range evaluators {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during evaluation generation: %w", ctx.Err())
		case result := <-resultChan:
			if result.err != nil {
				return nil, fmt.Errorf("failed to generate evaluations for evaluator %d: %w", result.index, result.err)
			}
			perEvaluator[result.index] = result.evaluations
		}
	}

	evaluations := make([]Evaluation, 0, config.NumEvaluations)
	for _, evals := range perEvaluator {
		evaluations = append(evaluations, evals...)
	}

	stats.EvaluationsGenerated = len(evaluations)
	logger.Get().Info(ctx, "generated evaluations successfully", logger.Int("count", len(evaluations)))

	return evaluations, nil
}

// generateForEvaluator rates n distinct proposals in the evaluator's
// temperament.
func generateForEvaluator(evaluator Evaluator, proposals []Proposal, n int) []Evaluation {
	picks := pickDistinct(len(proposals), n)

	// Current timestamp in RFC3339 format
	timestamp := time.Now().UTC().Format(time.RFC3339)

	evaluations := make([]Evaluation, 0, len(picks))
	for _, p := range picks {
		evaluations = append(evaluations, Evaluation{
			EvaluationID: uuid.New().String(),
			ProposalID:   proposals[p].ProposalID,
			EvaluatorID:  evaluator.ID,
			Value:        evaluator.Archetype.rating(),
			TS:           timestamp,
		})
	}
	return evaluations
}

// pickDistinct returns n distinct indices in [0, total) via a partial
// Fisher-Yates shuffle.
func pickDistinct(total, n int) []int {
	if n > total {
		n = total
	}
	if n <= 0 {
		return nil
	}

	idx := make([]int, total)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < n; i++ {
		j := i + getRandomInt(total-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:n]
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
