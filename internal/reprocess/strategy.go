package reprocess

import (
	"strings"

	"ledgerlens/internal/domain"
)

// retryableKeywords are matched case-insensitively against each validation
// error. Verdicts whose errors match none of them (a raw parse failure, for
// example) cannot be helped by prompt enhancement and are never retried.
var retryableKeywords = []string{
	"address format",
	"service_provider",
	"amount must be a valid number",
	"too short",
	"missing",
}

// ShouldRetry reports whether a failed verdict is worth re-invoking the
// model for.
func ShouldRetry(verdict domain.ValidationResult) bool {
	if verdict.IsValid || len(verdict.Errors) == 0 {
		return false
	}
	for _, e := range verdict.Errors {
		lower := strings.ToLower(e)
		for _, keyword := range retryableKeywords {
			if strings.Contains(lower, keyword) {
				return true
			}
		}
	}
	return false
}

// Classify picks the failure category for a set of validation errors. The
// priority order is fixed: address formatting, then provider structure, then
// amount, then the general fallback. Exactly one category is returned.
func Classify(errors []string) domain.RetryStrategy {
	text := strings.ToLower(strings.Join(errors, " "))

	switch {
	case strings.Contains(text, "address") && (strings.Contains(text, "comma") || strings.Contains(text, "format")):
		return domain.StrategyAddressFormat
	case strings.Contains(text, "service_provider"):
		return domain.StrategyProviderStructure
	case strings.Contains(text, "amount"):
		return domain.StrategyAmountFormat
	default:
		return domain.StrategyGeneral
	}
}
