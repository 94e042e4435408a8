package loadgen

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/okian/agora/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "loadgen_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the load generation tool.
func ShowHelp() {
	os.Stdout.WriteString(`Agora Load Generation Tool
==========================

A concurrent tool for exercising the Agora evaluation pipeline end to end:
it creates proposals, submits archetype-driven evaluations, then retrieves
batches and service stats to verify selection and dedupe behaviour.

Usage:
  go run cmd/loadgen/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -proposals int
        Number of proposals to create (default 200)
  -evaluators int
        Number of synthetic evaluators (default 500)
  -evaluations int
        Number of evaluations to generate and submit (default 10000)
  -batch int
        Batch size to request per evaluator (default 10)
  -batches int
        Number of evaluators to fetch verification batches for (default 50)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -wait duration
        Settle time between submission and verification (default 5s)
  -scenario string
        YAML scenario file with archetype weights (default: built-in balanced mix)
  -output string
        Output file for generated evaluations (default: generated_evaluations_TIMESTAMP.json)
  -log string
        Log file for run output (default: loadgen_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Scenario file format:
  name: polarized
  archetypes:
    - name: enthusiast
      weight: 0.4
    - name: critic
      weight: 0.4
    - name: contrarian
      weight: 0.2

Examples:
  # Run with default settings
  go run cmd/loadgen/main.go

  # Heavier run with custom parameters
  go run cmd/loadgen/main.go -evaluations 50000 -workers 16 -url http://localhost:8080

  # Polarised crowd from a scenario file
  go run cmd/loadgen/main.go -scenario scenarios/polarized.yaml -verbose

  # Run with a custom log file
  go run cmd/loadgen/main.go -evaluations 50000 -log my_run.log
`)
}
