package reprocess

import "ledgerlens/internal/domain"

// Summarize condenses a terminal reprocessing outcome into the client-facing
// digest attached to extraction results.
func Summarize(outcome domain.ReprocessOutcome) domain.ReprocessSummary {
	summary := domain.ReprocessSummary{
		Attempted:      outcome.RetryAttempt > 0,
		Successful:     outcome.RetrySucceeded,
		Attempts:       outcome.RetryAttempt,
		Strategy:       outcome.RetryStrategy,
		OriginalErrors: outcome.OriginalErrors,
	}

	if outcome.RetrySucceeded {
		summary.FinalStatus = "success"
		summary.Improvements = "Validation issues resolved through enhanced prompting"
		summary.RemainingWarnings = outcome.RetryWarnings
	} else {
		summary.FinalStatus = "failed"
		summary.FinalErrors = outcome.FinalValidationErrors
		summary.Recommendation = "Manual review recommended - automatic reprocessing could not resolve validation issues"
	}

	return summary
}
