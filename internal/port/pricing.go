package port

import "context"

// PricingSource computes USD costs for token consumption. Implementations
// fall back to static defaults internally; cost lookup never fails the
// request path.
type PricingSource interface {
	Cost(ctx context.Context, provider, model string, promptTokens, completionTokens int) (promptCost, completionCost, totalCost float64)
}
