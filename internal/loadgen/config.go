package loadgen

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds configuration for the load generation run
type Config struct {
	BaseURL        string        // Base URL of the service
	NumProposals   int           // Number of proposals to create
	NumEvaluators  int           // Number of synthetic evaluators
	NumEvaluations int           // Number of evaluations to generate
	BatchSize      int           // Batch size to request per evaluator
	NumBatches     int           // Number of evaluators to fetch batches for
	Workers        int           // Number of concurrent workers
	Timeout        time.Duration // HTTP request timeout
	Wait           time.Duration // Settle time between submission and verification
	ScenarioFile   string        // Optional YAML scenario with archetype weights
	OutputFile     string        // Output file for evaluations
	LogFile        string        // Log file for run output
	Verbose        bool          // Enable verbose logging
}

// Evaluation represents an evaluation to be submitted
type Evaluation struct {
	EvaluationID string  `json:"evaluation_id"`
	ProposalID   string  `json:"proposal_id"`
	EvaluatorID  string  `json:"evaluator_id"`
	Value        float64 `json:"value"`
	TS           string  `json:"ts"`
}

// Proposal represents a proposal creation request
type Proposal struct {
	ProposalID string `json:"proposal_id"`
	Title      string `json:"title"`
}

// AckResponse represents the response from evaluation submission
type AckResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// ScoredProposal represents one entry of a selected batch
type ScoredProposal struct {
	ProposalID      string  `json:"proposal_id"`
	Priority        float64 `json:"priority"`
	Adjusted        float64 `json:"adjusted_priority"`
	Mean            float64 `json:"mean"`
	EvaluationCount int     `json:"evaluation_count"`
}

// BatchStats describes the pool a batch was selected from
type BatchStats struct {
	Total     int `json:"total"`
	Evaluated int `json:"evaluated"`
	Stable    int `json:"stable"`
	Remaining int `json:"remaining"`
}

// Batch represents a batch selection response
type Batch struct {
	Selected []ScoredProposal `json:"selected"`
	Stats    BatchStats       `json:"stats"`
}

// ServiceStats mirrors the fields of the service /stats payload the run
// verifies against
type ServiceStats struct {
	Started          bool `json:"started"`
	TotalProposals   int  `json:"totalProposals"`
	StableProposals  int  `json:"stableProposals"`
	TotalEvaluations int  `json:"totalEvaluations"`
	QueueLength      int  `json:"queueLength"`
	HistorySize      int  `json:"historySize"`
}

// Stats holds run statistics
type Stats struct {
	ProposalsCreated      int
	EvaluationsGenerated  int
	EvaluationsSubmitted  int
	EvaluationsSuccessful int
	EvaluationsDuplicate  int
	EvaluationsFailed     int
	DuplicatesConfirmed   int
	BatchesRetrieved      int
	BatchProposals        int
	VerificationIssues    int
	StartTime             time.Time
	EndTime               time.Time
	Duration              time.Duration
}

// Scenario weights the evaluator archetypes used during generation.
// Weights are relative and do not need to sum to one.
type Scenario struct {
	Name       string            `yaml:"name"`
	Archetypes []ArchetypeWeight `yaml:"archetypes"`
}

// ArchetypeWeight assigns a relative weight to one archetype
type ArchetypeWeight struct {
	Name   string  `yaml:"name"`
	Weight float64 `yaml:"weight"`
}

// DefaultScenario returns the built-in balanced archetype mix.
func DefaultScenario() *Scenario {
	return &Scenario{
		Name: "balanced",
		Archetypes: []ArchetypeWeight{
			{Name: string(ArchetypeEnthusiast), Weight: 0.35},
			{Name: string(ArchetypeModerate), Weight: 0.35},
			{Name: string(ArchetypeCritic), Weight: 0.2},
			{Name: string(ArchetypeContrarian), Weight: 0.1},
		},
	}
}

// LoadScenario reads an archetype mix from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("failed to parse scenario file: %w", err)
	}

	if err := scenario.validate(); err != nil {
		return nil, err
	}

	return &scenario, nil
}

// validate rejects scenarios the generator cannot sample from.
func (s *Scenario) validate() error {
	if len(s.Archetypes) == 0 {
		return fmt.Errorf("scenario %q has no archetypes", s.Name)
	}

	for _, aw := range s.Archetypes {
		if !knownArchetype(Archetype(aw.Name)) {
			return fmt.Errorf("scenario %q references unknown archetype %q", s.Name, aw.Name)
		}
		if aw.Weight <= 0 {
			return fmt.Errorf("scenario %q gives archetype %q a non-positive weight %g", s.Name, aw.Name, aw.Weight)
		}
	}

	return nil
}
