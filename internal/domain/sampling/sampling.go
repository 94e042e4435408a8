// Package sampling decides which proposals an evaluator should rate next.
//
// Every proposal gets a deterministic priority built from four clamped
// components (under-evaluation, statistical uncertainty, recency, and
// nearness to the acceptance threshold), which is then blended with a
// Thompson Sampling draw over a Beta posterior fit to the proposal's
// positive/neutral/negative rating counts. Proposals whose mean is known
// precisely enough are stable and leave the active pool.
package sampling

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	model "github.com/okian/agora/internal/domain/model"
	types "github.com/okian/agora/internal/domain/types"
)

// Default sampling configuration constants.
const (
	DefaultTargetEvaluations = 30
	DefaultTargetSEM         = 0.15
	DefaultExplorationWeight = 0.3
	DefaultRecencyBoostHours = 24.0
)

// Scoring constants.
const (
	// floorStdDev guards against false confidence: with few samples the
	// empirical variance underestimates true uncertainty.
	floorStdDev = 0.5
	// thresholdBand is the |mean| at which the near-threshold component
	// falls to zero; the component peaks for means around zero.
	thresholdBand = 0.5

	baseWeight        = 0.40
	uncertaintyWeight = 0.25
	recencyWeight     = 0.20
	thresholdWeight   = 0.15

	// betaPrior is the uniform Beta(1,1) prior; neutral ratings split
	// evenly between both posterior parameters.
	betaPrior        = 1.0
	neutralHalfShare = 0.5
)

// Config tunes the sampler. The zero value is invalid; use DefaultConfig
// or fill every field.
type Config struct {
	TargetEvaluations int     `koanf:"target_evaluations"`
	TargetSEM         float64 `koanf:"target_sem"`
	ExplorationWeight float64 `koanf:"exploration_weight"`
	RecencyBoostHours float64 `koanf:"recency_boost_hours"`
}

// DefaultConfig returns the documented default configuration.
func DefaultConfig() Config {
	return Config{
		TargetEvaluations: DefaultTargetEvaluations,
		TargetSEM:         DefaultTargetSEM,
		ExplorationWeight: DefaultExplorationWeight,
		RecencyBoostHours: DefaultRecencyBoostHours,
	}
}

// Validate rejects configurations that would corrupt the scoring math.
// Invalid values fail fast instead of being clamped, so caller bugs
// surface immediately.
func (c Config) Validate() error {
	if c.TargetEvaluations <= 0 {
		return fmt.Errorf("%w: target evaluations must be positive, got %d", ErrInvalidConfig, c.TargetEvaluations)
	}
	if c.TargetSEM <= 0 {
		return fmt.Errorf("%w: target SEM must be positive, got %g", ErrInvalidConfig, c.TargetSEM)
	}
	if c.ExplorationWeight < 0 || c.ExplorationWeight > 1 {
		return fmt.Errorf("%w: exploration weight must be in [0,1], got %g", ErrInvalidConfig, c.ExplorationWeight)
	}
	if c.RecencyBoostHours <= 0 {
		return fmt.Errorf("%w: recency boost hours must be positive, got %g", ErrInvalidConfig, c.RecencyBoostHours)
	}
	return nil
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithConfig sets the sampling configuration.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithRand sets the randomness source used for Thompson Sampling draws.
// Tests inject a seeded source here for reproducible selections.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		if rng != nil {
			e.rng = rng
		}
	}
}

// WithClock sets the time source used for recency scoring.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// Engine scores proposals and assembles evaluation batches.
// One Engine is safe for concurrent callers; draws from the shared
// randomness source are serialized internally.
type Engine struct {
	cfg   Config
	clock func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewEngine creates an engine, failing fast on invalid configuration.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		cfg:   DefaultConfig(),
		clock: time.Now,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // exploration noise, not crypto
	}

	for _, opt := range opts {
		opt(e)
	}

	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}

	return e, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// SEM returns the standard error of the mean for an aggregate.
// Aggregates with at most one evaluation report the floor directly:
// they carry no usable variance information.
func SEM(agg model.Aggregate) float64 {
	if agg.Count <= 1 {
		return floorStdDev
	}
	n := float64(agg.Count)
	mean := agg.Sum / n
	variance := math.Max(0, agg.SumSquares/n-mean*mean)
	stdDev := math.Max(math.Sqrt(variance), floorStdDev)
	return stdDev / math.Sqrt(n)
}

// Stable reports whether the aggregate has enough evaluations and a
// precise enough mean for the proposal to leave the active pool.
// Idempotent: the same aggregate always yields the same answer.
func Stable(agg model.Aggregate, cfg Config) bool {
	return agg.Count >= cfg.TargetEvaluations && SEM(agg) < cfg.TargetSEM
}

// Stable applies the engine's configuration to the stability predicate.
func (e *Engine) Stable(agg model.Aggregate) bool {
	return Stable(agg, e.cfg)
}

// Priority computes the deterministic part of a proposal's score at a
// given instant. All four components are clamped to [0,1] before
// weighting, so the composite is always in [0,1].
func Priority(p model.Proposal, cfg Config, now time.Time) float64 {
	agg := p.Agg

	base := 1 - math.Min(1, float64(agg.Count)/float64(cfg.TargetEvaluations))
	uncertainty := math.Min(1, SEM(agg)/cfg.TargetSEM)

	hoursSince := now.Sub(p.CreatedAt).Hours()
	recency := math.Max(0, 1-hoursSince/cfg.RecencyBoostHours)

	threshold := 1 - math.Min(1, math.Abs(agg.Mean())/thresholdBand)

	return baseWeight*clamp01(base) +
		uncertaintyWeight*clamp01(uncertainty) +
		recencyWeight*clamp01(recency) +
		thresholdWeight*clamp01(threshold)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Score computes the adjusted priority for every proposal in the pool.
// The exploration draw is taken fresh on every call, so repeated calls
// over the same pool yield varying orders on purpose.
func (e *Engine) Score(proposals []model.Proposal) []types.ScoredProposal {
	now := e.clock()
	scored := make([]types.ScoredProposal, 0, len(proposals))

	for _, p := range proposals {
		priority := Priority(p, e.cfg, now)

		alpha := float64(p.Agg.Positive) + neutralHalfShare*float64(p.Agg.Neutral) + betaPrior
		beta := float64(p.Agg.Negative) + neutralHalfShare*float64(p.Agg.Neutral) + betaPrior
		sample := e.drawBeta(alpha, beta)

		adjusted := priority*(1-e.cfg.ExplorationWeight) + sample*e.cfg.ExplorationWeight

		scored = append(scored, types.ScoredProposal{
			ProposalID:      p.ID,
			Title:           p.Title,
			Priority:        priority,
			Adjusted:        adjusted,
			Mean:            p.Agg.Mean(),
			EvaluationCount: p.Agg.Count,
		})
	}

	return scored
}

// SelectForUser assembles an evaluation batch for one evaluator.
// Proposals the evaluator already rated and proposals flagged stable are
// excluded; the rest are scored and the top batchSize by adjusted
// priority are returned. Exact score ties go to the older proposal.
// An exhausted pool yields an empty batch, not an error.
func (e *Engine) SelectForUser(proposals []model.Proposal, rated map[string]struct{}, batchSize int) (types.Batch, error) {
	if batchSize < 0 {
		return types.Batch{}, fmt.Errorf("%w: %d", ErrInvalidBatchSize, batchSize)
	}

	stats := types.BatchStats{Total: len(proposals)}

	candidates := make([]model.Proposal, 0, len(proposals))
	for _, p := range proposals {
		if _, ok := rated[p.ID]; ok {
			stats.Evaluated++
			continue
		}
		if p.Stable {
			stats.Stable++
			continue
		}
		candidates = append(candidates, p)
	}
	stats.Remaining = stats.Total - stats.Evaluated - stats.Stable

	scored := e.Score(candidates)

	// Index creation times for the tie-break; candidates and scored are
	// parallel, so the lookup never misses.
	createdAt := make(map[string]time.Time, len(candidates))
	for _, p := range candidates {
		createdAt[p.ID] = p.CreatedAt
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Adjusted != scored[j].Adjusted {
			return scored[i].Adjusted > scored[j].Adjusted
		}
		ci, cj := createdAt[scored[i].ProposalID], createdAt[scored[j].ProposalID]
		if !ci.Equal(cj) {
			return ci.Before(cj)
		}
		return scored[i].ProposalID < scored[j].ProposalID
	})

	if len(scored) > batchSize {
		scored = scored[:batchSize]
	}

	return types.Batch{Selected: scored, Stats: stats}, nil
}

// drawBeta serializes access to the shared randomness source.
func (e *Engine) drawBeta(alpha, beta float64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return sampleBeta(e.rng, alpha, beta)
}
