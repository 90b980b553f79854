package domain

// TokenUsage reports the token counts consumed by one model invocation.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ExtractionResult is the outcome of extracting one page (or one document)
// through the vision model. Success false with a non-empty Error covers both
// transport failures and unparseable model output; in the latter case
// RawResponse still carries the model text for debugging.
type ExtractionResult struct {
	Success            bool              `json:"success"`
	Data               Document          `json:"data,omitempty"`
	Error              string            `json:"error,omitempty"`
	RawResponse        string            `json:"raw_response,omitempty"`
	Usage              *TokenUsage       `json:"token_usage,omitempty"`
	Model              string            `json:"model,omitempty"`
	Provider           string            `json:"provider,omitempty"`
	ValidationErrors   []string          `json:"validation_errors,omitempty"`
	ValidationWarnings []string          `json:"validation_warnings,omitempty"`
	Reprocessing       *ReprocessSummary `json:"reprocessing_summary,omitempty"`
}
