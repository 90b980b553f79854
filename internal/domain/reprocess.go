package domain

// RetryStrategy names the prompt-enhancement strategy chosen for a retry.
type RetryStrategy string

const (
	StrategyAddressFormat     RetryStrategy = "address_format"
	StrategyProviderStructure RetryStrategy = "service_provider_structure"
	StrategyAmountFormat      RetryStrategy = "amount_format"
	StrategyGeneral           RetryStrategy = "general"
)

// ReprocessOutcome is the result of running the retry loop for one page.
// RetryAttempt is the number of model invocations spent (0 when the verdict
// was not retryable at all), and OriginalErrors are the validation errors of
// the verdict that triggered the final attempt.
type ReprocessOutcome struct {
	Success               bool          `json:"success"`
	Data                  Document      `json:"data,omitempty"`
	Error                 string        `json:"error,omitempty"`
	RawResponse           string        `json:"raw_response,omitempty"`
	Usage                 *TokenUsage   `json:"token_usage,omitempty"`
	Model                 string        `json:"model,omitempty"`
	Provider              string        `json:"provider,omitempty"`
	RetrySucceeded        bool          `json:"retry_succeeded"`
	RetryAttempt          int           `json:"retry_attempt"`
	RetryStrategy         RetryStrategy `json:"retry_strategy,omitempty"`
	OriginalErrors        []string      `json:"original_errors,omitempty"`
	FinalValidationErrors []string      `json:"final_validation_errors,omitempty"`
	RetryWarnings         []string      `json:"retry_warnings,omitempty"`
}

// ReprocessSummary is the client-facing digest of a reprocessing run,
// attached to the extraction result.
type ReprocessSummary struct {
	Attempted         bool          `json:"reprocessing_attempted"`
	Successful        bool          `json:"reprocessing_successful"`
	Attempts          int           `json:"retry_attempts"`
	Strategy          RetryStrategy `json:"strategy_used,omitempty"`
	OriginalErrors    []string      `json:"original_errors,omitempty"`
	FinalStatus       string        `json:"final_status,omitempty"`
	Improvements      string        `json:"improvements_made,omitempty"`
	RemainingWarnings []string      `json:"remaining_warnings,omitempty"`
	FinalErrors       []string      `json:"final_errors,omitempty"`
	Recommendation    string        `json:"recommendation,omitempty"`
	Reason            string        `json:"reason,omitempty"`
	Error             string        `json:"error,omitempty"`
}
