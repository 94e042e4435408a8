package loadgen

import (
	"context"
	"fmt"
	"log"
	"sort"
)

// Verification constants.
const (
	// duplicateProbeCount is how many already-accepted evaluations are
	// re-submitted to probe dedupe behaviour.
	duplicateProbeCount = 25
	// topBatchDisplay caps how many batches the summary prints.
	topBatchDisplay = 10
)

// verifyResults checks batch selection and service accounting against what
// the run actually submitted. Issues are logged and counted rather than
// aborting the run; the caller decides what to do with the total.
func verifyResults(ctx context.Context, config *Config, evaluations []Evaluation, batches map[string]Batch, svcStats ServiceStats, stats *Stats) error {
	log.Println("🔍 Verifying results...")

	if len(batches) == 0 {
		return fmt.Errorf("no batches to verify")
	}

	// Rebuild each evaluator's rated set from the submitted evaluations.
	ratedBy := make(map[string]map[string]bool)
	for _, evaluation := range evaluations {
		set, ok := ratedBy[evaluation.EvaluatorID]
		if !ok {
			set = make(map[string]bool)
			ratedBy[evaluation.EvaluatorID] = set
		}
		set[evaluation.ProposalID] = true
	}

	if svcStats.QueueLength > 0 {
		log.Printf("⚠️  Queue still holds %d evaluations; accounting checks may lag", svcStats.QueueLength)
	}

	issues := 0
	issues += verifyBatchExclusion(batches, ratedBy, config.Verbose)
	issues += verifyBatchAccounting(config, batches, ratedBy)
	issues += verifyServiceAccounting(svcStats, stats)
	stats.VerificationIssues += issues

	displayBatchSummary(batches, config.Verbose)

	if issues > 0 {
		log.Printf("⚠️  Verification finished with %d issue(s)", issues)
	} else {
		log.Println("✅ Result verification completed")
	}
	return nil
}

// verifyBatchExclusion checks that no batch offers an evaluator a proposal
// they already rated, and that no batch repeats a proposal.
func verifyBatchExclusion(batches map[string]Batch, ratedBy map[string]map[string]bool, verbose bool) int {
	issues := 0

	for evaluatorID, batch := range batches {
		seen := make(map[string]bool, len(batch.Selected))
		for _, scored := range batch.Selected {
			if ratedBy[evaluatorID][scored.ProposalID] {
				issues++
				if verbose {
					log.Printf("⚠️  Batch for %s contains already-rated proposal %s", evaluatorID, scored.ProposalID)
				}
			}
			if seen[scored.ProposalID] {
				issues++
				if verbose {
					log.Printf("⚠️  Batch for %s repeats proposal %s", evaluatorID, scored.ProposalID)
				}
			}
			seen[scored.ProposalID] = true
		}
	}

	if issues == 0 {
		log.Println("✅ Batch exclusion verified: no rated or repeated proposals offered")
	} else {
		log.Printf("⚠️  Batch exclusion found %d violation(s)", issues)
	}
	return issues
}

// verifyBatchAccounting cross-checks each batch's pool statistics against
// the requested size and the evaluator's known rated count.
func verifyBatchAccounting(config *Config, batches map[string]Batch, ratedBy map[string]map[string]bool) int {
	issues := 0

	for evaluatorID, batch := range batches {
		bs := batch.Stats

		if bs.Total != bs.Evaluated+bs.Stable+bs.Remaining {
			issues++
			log.Printf("⚠️  Batch stats for %s do not add up: total %d != evaluated %d + stable %d + remaining %d",
				evaluatorID, bs.Total, bs.Evaluated, bs.Stable, bs.Remaining)
		}

		if len(batch.Selected) > bs.Remaining {
			issues++
			log.Printf("⚠️  Batch for %s selected %d proposals but only %d remain eligible",
				evaluatorID, len(batch.Selected), bs.Remaining)
		}

		if len(batch.Selected) > config.BatchSize {
			issues++
			log.Printf("⚠️  Batch for %s exceeds requested size: got %d, asked for %d",
				evaluatorID, len(batch.Selected), config.BatchSize)
		}

		if rated := len(ratedBy[evaluatorID]); bs.Evaluated != rated {
			issues++
			log.Printf("⚠️  Batch stats for %s report %d evaluated proposals, run submitted %d",
				evaluatorID, bs.Evaluated, rated)
		}
	}

	if issues == 0 {
		log.Println("✅ Batch accounting verified")
	}
	return issues
}

// verifyServiceAccounting compares the service's totals against what the
// run created and successfully submitted. Both checks assume the run
// started against a fresh service.
func verifyServiceAccounting(svcStats ServiceStats, stats *Stats) int {
	if !svcStats.Started {
		log.Println("⚠️  Service reports it is not started; skipping accounting checks")
		return 1
	}

	issues := 0

	if svcStats.TotalProposals != stats.ProposalsCreated {
		issues++
		log.Printf("⚠️  Service reports %d proposals, run created %d", svcStats.TotalProposals, stats.ProposalsCreated)
	}

	if svcStats.TotalEvaluations != stats.EvaluationsSuccessful {
		issues++
		log.Printf("⚠️  Service reports %d folded evaluations, run submitted %d successfully",
			svcStats.TotalEvaluations, stats.EvaluationsSuccessful)
	}

	if issues == 0 {
		log.Println("✅ Service accounting verified")
	}
	return issues
}

// probeDuplicateHandling re-submits a sample of already-accepted
// evaluations and expects the service to acknowledge each as a duplicate.
func probeDuplicateHandling(ctx context.Context, config *Config, evaluations []Evaluation, stats *Stats) error {
	n := minInt(duplicateProbeCount, len(evaluations))
	if n == 0 {
		return nil
	}

	log.Printf("🔁 Re-submitting %d evaluations to probe dedupe...", n)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/evaluations"

	// Probe the most recent submissions; they are the least likely to
	// have been evicted from the dedupe window.
	sample := evaluations[len(evaluations)-n:]

	confirmed := 0
	for _, evaluation := range sample {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled during duplicate probe: %w", ctx.Err())
		default:
		}

		if submitSingleEvaluation(ctx, client, url, evaluation) == "duplicate" {
			confirmed++
		}
	}

	stats.DuplicatesConfirmed = confirmed
	if confirmed != n {
		stats.VerificationIssues += n - confirmed
		log.Printf("⚠️  Only %d/%d re-submissions acknowledged as duplicates", confirmed, n)
		return nil
	}

	log.Printf("✅ All %d re-submissions acknowledged as duplicates", n)
	return nil
}

// displayBatchSummary shows a sample of retrieved batches, largest first.
func displayBatchSummary(batches map[string]Batch, verbose bool) {
	type summary struct {
		evaluatorID string
		batch       Batch
	}

	summaries := make([]summary, 0, len(batches))
	for evaluatorID, batch := range batches {
		summaries = append(summaries, summary{evaluatorID: evaluatorID, batch: batch})
	}
	sort.Slice(summaries, func(i, j int) bool {
		if len(summaries[i].batch.Selected) != len(summaries[j].batch.Selected) {
			return len(summaries[i].batch.Selected) > len(summaries[j].batch.Selected)
		}
		return summaries[i].evaluatorID < summaries[j].evaluatorID
	})

	topN := minInt(topBatchDisplay, len(summaries))
	log.Printf("🎯 Sample of %d retrieved batches:", topN)
	for i := 0; i < topN; i++ {
		s := summaries[i]
		log.Printf("   %d. evaluator %s - selected: %d, remaining: %d, evaluated: %d",
			i+1, s.evaluatorID, len(s.batch.Selected), s.batch.Stats.Remaining, s.batch.Stats.Evaluated)
	}

	if verbose && len(summaries) > 0 {
		avgAdjusted := 0.0
		selected := 0
		for _, s := range summaries {
			for _, scored := range s.batch.Selected {
				avgAdjusted += scored.Adjusted
				selected++
			}
		}
		if selected > 0 {
			avgAdjusted /= float64(selected)
		}

		log.Printf(`📊 Selection statistics:
   Batches: %d
   Proposals offered: %d
   Average adjusted priority: %.3f
`, len(summaries), selected, avgAdjusted)
	}
}
