package port

import (
	"context"

	"ledgerlens/internal/domain"
)

// UsageRepository persists and queries per-request token usage records. One
// record accumulates the tokens of every model invocation a request made.
type UsageRepository interface {
	Insert(ctx context.Context, rec *domain.UsageRecord) error
	List(ctx context.Context, filter domain.UsageFilter) ([]domain.UsageRecord, error)
	Count(ctx context.Context, filter domain.UsageFilter) (int, error)
	Stats(ctx context.Context, filter domain.UsageFilter) (*domain.UsageStats, error)
	StatsByProvider(ctx context.Context, filter domain.UsageFilter) ([]domain.ProviderUsage, error)
}
