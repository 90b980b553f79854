package service

import (
	"context"
	"fmt"
	"time"

	"ledgerlens/internal/domain"
	"ledgerlens/internal/port"
)

const (
	defaultCostLimit = 100
	maxCostLimit     = 1000
	exportLimit      = 10000
)

// CostQuery carries the filters for the usage reporting endpoints.
type CostQuery struct {
	Provider  string
	Buyer     string
	StartDate time.Time
	EndDate   time.Time
	Limit     int
	Offset    int
}

// CostReport is the aggregated view of usage over a query window. Stats and
// the provider breakdown honor only the date window, so they describe the
// whole period while Records and TotalRecords honor every filter.
type CostReport struct {
	Records           []domain.UsageRecord   `json:"records"`
	Stats             *domain.UsageStats     `json:"stats"`
	ProviderBreakdown []domain.ProviderUsage `json:"provider_breakdown"`
	TotalRecords      int                    `json:"total_records"`
	Limit             int                    `json:"limit"`
	Offset            int                    `json:"offset"`
}

// UsageService provides aggregate token usage and cost reporting.
type UsageService interface {
	QueryCosts(ctx context.Context, q CostQuery) (*CostReport, error)
	ListForExport(ctx context.Context, q CostQuery) ([]domain.UsageRecord, error)
}

type usageService struct {
	usageRepo port.UsageRepository
}

// NewUsageService creates a new UsageService implementation.
func NewUsageService(usageRepo port.UsageRepository) UsageService {
	return &usageService{usageRepo: usageRepo}
}

func (s *usageService) QueryCosts(ctx context.Context, q CostQuery) (*CostReport, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultCostLimit
	}
	if limit > maxCostLimit {
		limit = maxCostLimit
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	recordFilter := domain.UsageFilter{
		Provider:  q.Provider,
		Buyer:     q.Buyer,
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
		Limit:     limit,
		Offset:    offset,
	}
	dateFilter := domain.UsageFilter{
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
	}

	records, err := s.usageRepo.List(ctx, recordFilter)
	if err != nil {
		return nil, fmt.Errorf("listing usage records: %w", err)
	}
	stats, err := s.usageRepo.Stats(ctx, dateFilter)
	if err != nil {
		return nil, fmt.Errorf("aggregating usage stats: %w", err)
	}
	breakdown, err := s.usageRepo.StatsByProvider(ctx, dateFilter)
	if err != nil {
		return nil, fmt.Errorf("aggregating provider breakdown: %w", err)
	}
	total, err := s.usageRepo.Count(ctx, recordFilter)
	if err != nil {
		return nil, fmt.Errorf("counting usage records: %w", err)
	}

	return &CostReport{
		Records:           records,
		Stats:             stats,
		ProviderBreakdown: breakdown,
		TotalRecords:      total,
		Limit:             limit,
		Offset:            offset,
	}, nil
}

func (s *usageService) ListForExport(ctx context.Context, q CostQuery) ([]domain.UsageRecord, error) {
	filter := domain.UsageFilter{
		Provider:  q.Provider,
		Buyer:     q.Buyer,
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
		Limit:     exportLimit,
	}
	records, err := s.usageRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing usage records for export: %w", err)
	}
	return records, nil
}
