package loadgen

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// retrieveBatches fetches a selection batch for a sample of evaluators
// concurrently. The returned map is keyed by evaluator ID and holds only
// the batches that were retrieved successfully.
func retrieveBatches(ctx context.Context, config *Config, evaluators []Evaluator, stats *Stats) (map[string]Batch, error) {
	sample := evaluators
	if len(sample) > config.NumBatches {
		sample = sample[:config.NumBatches]
	}

	log.Printf("🎯 Retrieving batches for %d evaluators with %d workers...", len(sample), config.Workers)

	client := newHTTPClient(config.Timeout)

	// Results storage; parallel to the sample
	batches := make([]Batch, len(sample))
	retrievedFlags := make([]bool, len(sample))
	var (
		retrieved int64
		failed    int64
	)

	// Progress reporting
	var lastReport time.Time
	reportInterval := 1 * time.Second

	// Create worker pool
	indexChan := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for index := range indexChan {
				select {
				case <-ctx.Done():
					return
				default:
					evaluatorID := sample[index].ID
					batch, err := retrieveSingleBatch(ctx, client, config.BaseURL, evaluatorID, config.BatchSize)

					if err != nil {
						atomic.AddInt64(&failed, 1)
						if config.Verbose {
							log.Printf("⚠️  Failed to get batch for %s: %v", evaluatorID, err)
						}
					} else {
						batches[index] = batch
						retrievedFlags[index] = true
						atomic.AddInt64(&retrieved, 1)
					}

					// Progress reporting
					if time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						total := atomic.LoadInt64(&retrieved) + atomic.LoadInt64(&failed)
						ret := atomic.LoadInt64(&retrieved)
						fail := atomic.LoadInt64(&failed)

						log.Printf("🎯 Batches: %d/%d retrieved (success: %d, failed: %d)",
							total, len(sample), ret, fail)
					}
				}
			}
		}(i)
	}

	// Send evaluator indices to workers
	go func() {
		defer close(indexChan)
		for i := range sample {
			select {
			case <-ctx.Done():
				return
			case indexChan <- i:
			}
		}
	}()

	// Wait for all workers to complete
	wg.Wait()

	// Keep only the successful retrievals
	result := make(map[string]Batch, len(sample))
	for i, ok := range retrievedFlags {
		if ok {
			result[sample[i].ID] = batches[i]
			stats.BatchProposals += len(batches[i].Selected)
		}
	}
	stats.BatchesRetrieved = len(result)

	log.Printf(`✅ Batch retrieval completed:
   Retrieved: %d
   Failed: %d
`, len(result), int(atomic.LoadInt64(&failed)))

	return result, nil
}

// retrieveSingleBatch fetches one evaluator's batch.
func retrieveSingleBatch(ctx context.Context, client *HTTPClient, baseURL, evaluatorID string, size int) (Batch, error) {
	url := fmt.Sprintf("%s/batch?evaluator=%s&size=%d", baseURL, evaluatorID, size)

	resp, err := client.Get(ctx, url)
	if err != nil {
		return Batch{}, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode != StatusOK {
		body, _ := readResponseBody(resp)
		return Batch{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return Batch{}, fmt.Errorf("failed to read response: %w", err)
	}

	var batch Batch
	if err := unmarshalJSON(body, &batch); err != nil {
		return Batch{}, fmt.Errorf("failed to parse response: %w", err)
	}

	return batch, nil
}

// getServiceStats retrieves the service statistics snapshot.
func getServiceStats(ctx context.Context, config *Config) (ServiceStats, error) {
	log.Println("📈 Getting service stats...")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/stats"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return ServiceStats{}, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode != StatusOK {
		body, _ := readResponseBody(resp)
		return ServiceStats{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return ServiceStats{}, fmt.Errorf("failed to read response: %w", err)
	}

	var svcStats ServiceStats
	if err := unmarshalJSON(body, &svcStats); err != nil {
		return ServiceStats{}, fmt.Errorf("failed to parse response: %w", err)
	}

	log.Printf("✅ Service reports %d proposals, %d stable, %d evaluations folded",
		svcStats.TotalProposals, svcStats.StableProposals, svcStats.TotalEvaluations)

	return svcStats, nil
}
