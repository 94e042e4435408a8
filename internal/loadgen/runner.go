package loadgen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/agora/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run executes the complete load generation and verification pass.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting agora load generation",
		logger.String("baseURL", config.BaseURL),
		logger.Int("proposals", config.NumProposals),
		logger.Int("evaluators", config.NumEvaluators),
		logger.Int("evaluations", config.NumEvaluations),
		logger.Int("batchSize", config.BatchSize),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.String("wait", config.Wait.String()),
		logger.String("logFile", config.LogFile),
		logger.Any("verbose", config.Verbose))

	// Step 1: Resolve the archetype scenario
	scenario := DefaultScenario()
	if config.ScenarioFile != "" {
		loaded, err := LoadScenario(config.ScenarioFile)
		if err != nil {
			return fmt.Errorf("scenario load failed: %w", err)
		}
		scenario = loaded
	}
	logger.Get().Info(ctx, "using scenario",
		logger.String("name", scenario.Name),
		logger.Int("archetypes", len(scenario.Archetypes)))

	// Step 2: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 3: Create proposals
	proposals := generateProposals(config)
	if err := createProposals(ctx, config, proposals, stats); err != nil {
		return fmt.Errorf("proposal creation failed: %w", err)
	}

	// Step 4: Generate evaluations
	evaluators := generateEvaluators(config, scenario)
	evaluations, err := generateEvaluations(ctx, config, evaluators, proposals, stats)
	if err != nil {
		return fmt.Errorf("evaluation generation failed: %w", err)
	}

	// Step 5: Submit evaluations concurrently
	if err := submitEvaluations(ctx, config, evaluations, stats); err != nil {
		return fmt.Errorf("evaluation submission failed: %w", err)
	}

	// Step 6: Wait for the fold pipeline to drain
	logger.Get().Info(ctx, "waiting for evaluations to be folded")
	time.Sleep(config.Wait)

	// Step 7: Probe duplicate handling
	if err := probeDuplicateHandling(ctx, config, evaluations, stats); err != nil {
		return fmt.Errorf("duplicate probe failed: %w", err)
	}

	// Step 8: Retrieve batches concurrently
	batches, err := retrieveBatches(ctx, config, evaluators, stats)
	if err != nil {
		return fmt.Errorf("batch retrieval failed: %w", err)
	}

	// Step 9: Get service stats
	svcStats, err := getServiceStats(ctx, config)
	if err != nil {
		return fmt.Errorf("service stats retrieval failed: %w", err)
	}

	// Step 10: Verify results
	if err := verifyResults(ctx, config, evaluations, batches, svcStats, stats); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	// Step 11: Save evaluations to file
	if err := saveEvaluationsToFile(ctx, config, evaluations); err != nil {
		logger.Get().Warn(ctx, "failed to save evaluations to file", logger.Error(err))
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "load generation completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveEvaluationsToFile saves the generated evaluations to a JSON file.
func saveEvaluationsToFile(ctx context.Context, config *Config, evaluations []Evaluation) error {
	if len(evaluations) == 0 {
		return fmt.Errorf("no evaluations to save")
	}

	// Determine output filename
	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "generated_evaluations_" + timestamp + ".json"
	}

	// Ensure the directory exists
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write evaluations to file
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close file", logger.Error(err))
		}
	}()

	// Write JSON array
	if _, err := file.WriteString("[\n"); err != nil {
		return fmt.Errorf("failed to write opening bracket: %w", err)
	}

	for i, evaluation := range evaluations {
		jsonData, err := marshalJSON(evaluation)
		if err != nil {
			return fmt.Errorf("failed to marshal evaluation %d: %w", i, err)
		}

		if _, err := file.Write(jsonData); err != nil {
			return fmt.Errorf("failed to write evaluation %d: %w", i, err)
		}

		// Add comma except for last evaluation
		if i < len(evaluations)-1 {
			if _, err := file.WriteString(","); err != nil {
				return fmt.Errorf("failed to write comma: %w", err)
			}
		}
		_, _ = file.WriteString("\n")
	}

	if _, err := file.WriteString("]\n"); err != nil {
		return fmt.Errorf("failed to write closing bracket: %w", err)
	}

	logger.Get().Info(ctx, "evaluations saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final run statistics.
func displayFinalStats(stats *Stats) {
	var successRate, evaluationsPerSecond float64

	if stats.EvaluationsSubmitted > 0 {
		successRate = float64(stats.EvaluationsSuccessful) / float64(stats.EvaluationsSubmitted) * PercentageMultiplier
	}

	if stats.Duration > 0 {
		evaluationsPerSecond = float64(stats.EvaluationsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("proposalsCreated", stats.ProposalsCreated),
		logger.Int("evaluationsGenerated", stats.EvaluationsGenerated),
		logger.Int("evaluationsSubmitted", stats.EvaluationsSubmitted),
		logger.Int("evaluationsSuccessful", stats.EvaluationsSuccessful),
		logger.Int("evaluationsDuplicate", stats.EvaluationsDuplicate),
		logger.Int("evaluationsFailed", stats.EvaluationsFailed),
		logger.Int("duplicatesConfirmed", stats.DuplicatesConfirmed),
		logger.Int("batchesRetrieved", stats.BatchesRetrieved),
		logger.Int("batchProposals", stats.BatchProposals),
		logger.Int("verificationIssues", stats.VerificationIssues),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("evaluationsPerSecond", evaluationsPerSecond))
}
