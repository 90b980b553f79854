package domain

import "time"

// UsageRecord is one persisted extraction request with the token counts
// accumulated over all of its model invocations and the computed USD costs.
type UsageRecord struct {
	ID               int64     `db:"id" json:"id"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	Filename         string    `db:"filename" json:"filename"`
	Buyer            string    `db:"buyer" json:"buyer"`
	Template         string    `db:"template" json:"template"`
	Provider         string    `db:"provider" json:"provider"`
	Model            string    `db:"model" json:"model"`
	PromptTokens     int       `db:"prompt_tokens" json:"prompt_tokens"`
	CompletionTokens int       `db:"completion_tokens" json:"completion_tokens"`
	TotalTokens      int       `db:"total_tokens" json:"total_tokens"`
	PromptCost       float64   `db:"prompt_cost" json:"prompt_cost"`
	CompletionCost   float64   `db:"completion_cost" json:"completion_cost"`
	TotalCost        float64   `db:"total_cost" json:"total_cost"`
	Success          bool      `db:"success" json:"success"`
	ErrorMessage     string    `db:"error_message" json:"error_message,omitempty"`
	NumPages         int       `db:"num_pages" json:"num_pages"`
}

// UsageFilter narrows usage queries. Zero values mean "no constraint";
// Limit is applied by the repository only when positive.
type UsageFilter struct {
	Provider  string
	Buyer     string
	StartDate time.Time
	EndDate   time.Time
	Limit     int
	Offset    int
}

// UsageStats aggregates usage over a filtered set of records.
type UsageStats struct {
	TotalRequests         int     `db:"total_requests" json:"total_requests"`
	SuccessfulRequests    int     `db:"successful_requests" json:"successful_requests"`
	FailedRequests        int     `db:"failed_requests" json:"failed_requests"`
	TotalPromptTokens     int     `db:"total_prompt_tokens" json:"total_prompt_tokens"`
	TotalCompletionTokens int     `db:"total_completion_tokens" json:"total_completion_tokens"`
	TotalTokens           int     `db:"total_tokens" json:"total_tokens"`
	TotalCostUSD          float64 `db:"total_cost_usd" json:"total_cost_usd"`
	TotalPagesProcessed   int     `db:"total_pages_processed" json:"total_pages_processed"`
}

// ProviderUsage is the per-provider slice of the aggregate stats.
type ProviderUsage struct {
	Provider      string  `db:"provider" json:"provider"`
	TotalRequests int     `db:"total_requests" json:"total_requests"`
	TotalTokens   int     `db:"total_tokens" json:"total_tokens"`
	TotalCostUSD  float64 `db:"total_cost_usd" json:"total_cost_usd"`
}
