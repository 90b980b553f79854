package reprocess

import (
	"context"
	"fmt"
	"log"

	"ledgerlens/internal/domain"
	"ledgerlens/internal/port"
)

const (
	// maxRetries bounds the number of model re-invocations per initiating
	// failure.
	maxRetries = 2

	// Retry invocations run colder and with more room than the initial
	// pass (0.1 / 2000) so the model follows the enhanced instructions.
	retryTemperature = 0.05
	retryMaxTokens   = 2500
)

// DocumentValidator produces the verdict for a freshly extracted document.
type DocumentValidator interface {
	Validate(doc domain.Document) domain.ValidationResult
}

// Engine drives the bounded retry loop: re-invoke the model with enhanced
// prompts, re-validate, and either finish or go around again until the
// budget runs out.
type Engine struct {
	invoker   port.VisionInvoker
	validator DocumentValidator
}

// NewEngine creates a reprocessing engine.
func NewEngine(invoker port.VisionInvoker, fieldValidator DocumentValidator) *Engine {
	return &Engine{
		invoker:   invoker,
		validator: fieldValidator,
	}
}

// Reprocess retries extraction for one page. The verdict argument is the
// failed validation that triggered reprocessing; its errors choose the
// enhancement strategy. Classification is re-derived each attempt from the
// newest verdict, since the model's failure mode can change between
// attempts. The outcome is always returned, never an error.
func (e *Engine) Reprocess(ctx context.Context, page port.PageImage, systemPrompt, userPrompt string, verdict domain.ValidationResult) domain.ReprocessOutcome {
	current := verdict

	for attempt := 1; ; attempt++ {
		if !ShouldRetry(current) {
			log.Printf("reprocess.Engine: validation errors not suitable for retry")
			return domain.ReprocessOutcome{
				Success:        false,
				Error:          "Validation failed and automatic retry not applicable",
				OriginalErrors: current.Errors,
			}
		}

		strategy := Classify(current.Errors)
		log.Printf("reprocess.Engine: attempt %d with strategy %s", attempt, strategy)

		out, err := e.invoker.Invoke(ctx, port.InvokeInput{
			Page:         page,
			SystemPrompt: RetrySystemPrompt(systemPrompt, attempt),
			UserPrompt:   EnhanceUserPrompt(strategy, userPrompt),
			Temperature:  retryTemperature,
			MaxTokens:    retryMaxTokens,
		})
		if err != nil {
			log.Printf("reprocess.Engine: attempt %d failed: %v", attempt, err)
			return domain.ReprocessOutcome{
				Success:        false,
				Error:          fmt.Sprintf("Reprocessing attempt %d failed: %v", attempt, err),
				RetrySucceeded: false,
				RetryAttempt:   attempt,
				RetryStrategy:  strategy,
				OriginalErrors: current.Errors,
			}
		}

		// A parseable response with no fields cannot satisfy the verdict
		// that triggered the retry, so the attempt counts as failed.
		if len(out.Data) == 0 {
			log.Printf("reprocess.Engine: attempt %d returned no data", attempt)
			return domain.ReprocessOutcome{
				Success:        false,
				Error:          fmt.Sprintf("Reprocessing attempt %d failed: extraction returned no data", attempt),
				RetrySucceeded: false,
				RetryAttempt:   attempt,
				RetryStrategy:  strategy,
				OriginalErrors: current.Errors,
			}
		}

		newVerdict := e.validator.Validate(out.Data)
		if newVerdict.IsValid {
			log.Printf("reprocess.Engine: reprocessing successful on attempt %d", attempt)
			outcome := domain.ReprocessOutcome{
				Success:        true,
				Data:           newVerdict.Corrected,
				RawResponse:    out.RawText,
				Usage:          out.Usage,
				Model:          out.Model,
				Provider:       out.Provider,
				RetrySucceeded: true,
				RetryAttempt:   attempt,
				RetryStrategy:  strategy,
				OriginalErrors: current.Errors,
			}
			if len(newVerdict.Warnings) > 0 {
				outcome.RetryWarnings = newVerdict.Warnings
			}
			return outcome
		}

		log.Printf("reprocess.Engine: attempt %d still has validation errors: %v", attempt, newVerdict.Errors)

		if attempt >= maxRetries {
			return domain.ReprocessOutcome{
				Success:               true,
				Data:                  out.Data,
				RawResponse:           out.RawText,
				Usage:                 out.Usage,
				Model:                 out.Model,
				Provider:              out.Provider,
				RetrySucceeded:        false,
				RetryAttempt:          attempt,
				RetryStrategy:         strategy,
				OriginalErrors:        current.Errors,
				FinalValidationErrors: newVerdict.Errors,
			}
		}

		current = newVerdict
	}
}

// ReprocessPages retries extraction across an ordered page sequence. Every
// page starts from the same initiating verdict. Processing stops at the
// first page whose retry succeeds, so the returned slice may be shorter
// than the input.
func (e *Engine) ReprocessPages(ctx context.Context, pages []port.PageImage, systemPrompt, userPrompt string, verdict domain.ValidationResult) []domain.ReprocessOutcome {
	results := make([]domain.ReprocessOutcome, 0, len(pages))

	for i, page := range pages {
		log.Printf("reprocess.Engine: reprocessing page %d/%d", i+1, len(pages))

		outcome := e.Reprocess(ctx, page, systemPrompt, userPrompt, verdict)
		results = append(results, outcome)

		if outcome.Success && outcome.RetrySucceeded {
			log.Printf("reprocess.Engine: successful reprocessing found on page %d", i+1)
			break
		}
	}

	return results
}
