package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/agora/internal/loadgen"
)

// Default configuration constants.
const (
	defaultNumProposals   = 200
	defaultNumEvaluators  = 500
	defaultNumEvaluations = 10000
	defaultBatchSize      = 10
	defaultNumBatches     = 50
	defaultWorkers        = 2 // multiplier for runtime.NumCPU()
	defaultTimeout        = 30 * time.Second
	defaultWait           = 5 * time.Second
	defaultRunTimeout     = 10 * time.Minute
)

func main() {
	var (
		baseURL        = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numProposals   = flag.Int("proposals", defaultNumProposals, "Number of proposals to create")
		numEvaluators  = flag.Int("evaluators", defaultNumEvaluators, "Number of synthetic evaluators")
		numEvaluations = flag.Int("evaluations", defaultNumEvaluations, "Number of evaluations to generate and submit")
		batchSize      = flag.Int("batch", defaultBatchSize, "Batch size to request per evaluator")
		numBatches     = flag.Int("batches", defaultNumBatches, "Number of evaluators to fetch verification batches for")
		workers        = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout        = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		wait           = flag.Duration("wait", defaultWait, "Settle time between submission and verification")
		scenarioFile   = flag.String("scenario", "", "YAML scenario file with archetype weights (default: built-in balanced mix)")
		outputFile     = flag.String("output", "", "Output file for generated evaluations (default: generated_evaluations_TIMESTAMP.json)")
		logFile        = flag.String("log", "", "Log file for run output (default: loadgen_log_TIMESTAMP.log)")
		verbose        = flag.Bool("verbose", false, "Enable verbose logging")
		help           = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		loadgen.ShowHelp()
		return
	}

	// Setup logging
	if err := loadgen.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	// Create run configuration
	config := &loadgen.Config{
		BaseURL:        *baseURL,
		NumProposals:   *numProposals,
		NumEvaluators:  *numEvaluators,
		NumEvaluations: *numEvaluations,
		BatchSize:      *batchSize,
		NumBatches:     *numBatches,
		Workers:        *workers,
		Timeout:        *timeout,
		Wait:           *wait,
		ScenarioFile:   *scenarioFile,
		OutputFile:     *outputFile,
		LogFile:        *logFile,
		Verbose:        *verbose,
	}

	// Run the load generation
	if err := loadgen.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Load generation failed: " + err.Error() + "\n")
		return
	}
}
