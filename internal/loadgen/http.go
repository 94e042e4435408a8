package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := marshalJSON(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// marshalJSON marshals a struct to JSON
func marshalJSON(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// unmarshalJSON unmarshals JSON to a struct
func unmarshalJSON(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// createProposals registers the generated proposals with the service.
func createProposals(ctx context.Context, config *Config, proposals []Proposal, stats *Stats) error {
	log.Printf("📝 Creating %d proposals...", len(proposals))

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/proposals"

	created := 0
	for i, proposal := range proposals {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled during proposal creation: %w", ctx.Err())
		default:
		}

		resp, err := client.Post(ctx, url, proposal)
		if err != nil {
			return fmt.Errorf("failed to create proposal %d: %w", i, err)
		}

		body, err := readResponseBody(resp)
		if err != nil {
			return fmt.Errorf("failed to read proposal response %d: %w", i, err)
		}

		if resp.StatusCode != StatusCreated {
			return fmt.Errorf("proposal %d rejected with HTTP %d: %s", i, resp.StatusCode, string(body))
		}
		created++
	}

	stats.ProposalsCreated = created
	log.Printf("✅ Created %d proposals", created)
	return nil
}

// submitEvaluations submits evaluations concurrently using worker pools
func submitEvaluations(ctx context.Context, config *Config, evaluations []Evaluation, stats *Stats) error {
	log.Printf("📤 Submitting %d evaluations with %d workers...", len(evaluations), config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/evaluations"

	// Counters for statistics
	var (
		successful int64
		duplicate  int64
		failed     int64
		submitted  int64
	)

	// Progress reporting
	var lastReport time.Time
	reportInterval := 1 * time.Second

	// Create worker pool
	evalChan := make(chan Evaluation, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for evaluation := range evalChan {
				select {
				case <-ctx.Done():
					return
				default:
					result := submitSingleEvaluation(ctx, client, url, evaluation)

					// Update counters
					atomic.AddInt64(&submitted, 1)
					switch result {
					case "success":
						atomic.AddInt64(&successful, 1)
					case "duplicate":
						atomic.AddInt64(&duplicate, 1)
					case "failed":
						atomic.AddInt64(&failed, 1)
					}

					// Progress reporting
					if time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						total := atomic.LoadInt64(&submitted)
						succ := atomic.LoadInt64(&successful)
						dup := atomic.LoadInt64(&duplicate)
						fail := atomic.LoadInt64(&failed)

						if config.Verbose {
							log.Printf("📊 Progress: %d/%d submitted (success: %d, duplicate: %d, failed: %d)",
								total, len(evaluations), succ, dup, fail)
						} else {
							fmt.Printf("\r📤 Submitted: %d/%d (success: %d, duplicate: %d, failed: %d)",
								total, len(evaluations), succ, dup, fail)
						}
					}
				}
			}
		}(i)
	}

	// Send evaluations to workers
	go func() {
		defer close(evalChan)
		for _, evaluation := range evaluations {
			select {
			case <-ctx.Done():
				return
			case evalChan <- evaluation:
			}
		}
	}()

	// Wait for all workers to complete
	wg.Wait()

	// Final progress report
	if !config.Verbose {
		fmt.Println() // New line after progress indicator
	}

	// Update stats
	stats.EvaluationsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.EvaluationsSuccessful = int(atomic.LoadInt64(&successful))
	stats.EvaluationsDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.EvaluationsFailed = int(atomic.LoadInt64(&failed))

	log.Printf(`✅ Evaluation submission completed:
   Successful: %d
   Duplicate: %d
   Failed: %d
`, stats.EvaluationsSuccessful, stats.EvaluationsDuplicate, stats.EvaluationsFailed)

	return nil
}

// submitSingleEvaluation submits a single evaluation and returns the result
func submitSingleEvaluation(ctx context.Context, client *HTTPClient, url string, evaluation Evaluation) string {
	resp, err := client.Post(ctx, url, evaluation)
	if err != nil {
		return "failed"
	}

	// Read response body
	body, err := readResponseBody(resp)
	if err != nil {
		return "failed"
	}

	// Parse response based on status code
	switch resp.StatusCode {
	case StatusAccepted:
		// Accepted - new evaluation
		var ack AckResponse
		if err := unmarshalJSON(body, &ack); err == nil && ack.Status == "accepted" {
			return "success"
		}
		return "success" // Assume success for 202 even if parsing fails
	case StatusOK:
		// OK - duplicate evaluation
		var ack AckResponse
		if err := unmarshalJSON(body, &ack); err == nil && ack.Duplicate {
			return "duplicate"
		}
		return "duplicate" // Assume duplicate for 200 even if parsing fails
	default:
		// Error
		return "failed"
	}
}
