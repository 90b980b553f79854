package postgres

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"ledgerlens/internal/domain"
	"ledgerlens/internal/port"
)

type usageRepo struct {
	db *sqlx.DB
}

// NewUsageRepo creates a new PostgreSQL-backed UsageRepository.
func NewUsageRepo(db *sqlx.DB) port.UsageRepository {
	return &usageRepo{db: db}
}

// buildUsageWhere constructs a dynamic WHERE clause for token_usage queries.
// It returns the clause string (empty when the filter is empty) and the
// positional arguments.
func buildUsageWhere(filter domain.UsageFilter) (clause string, args []interface{}) {
	argN := 1

	if filter.Provider != "" {
		clause += fmt.Sprintf(" AND provider = $%d", argN)
		args = append(args, filter.Provider)
		argN++
	}
	if filter.Buyer != "" {
		clause += fmt.Sprintf(" AND buyer = $%d", argN)
		args = append(args, filter.Buyer)
		argN++
	}
	if !filter.StartDate.IsZero() {
		clause += fmt.Sprintf(" AND created_at >= $%d", argN)
		args = append(args, filter.StartDate)
		argN++
	}
	if !filter.EndDate.IsZero() {
		clause += fmt.Sprintf(" AND created_at <= $%d", argN)
		args = append(args, filter.EndDate)
		argN++ //nolint:ineffassign // argN kept incremented for consistency
	}

	if clause != "" {
		clause = "WHERE" + strings.TrimPrefix(clause, " AND")
	}
	return clause, args
}

const insertUsageQuery = `INSERT INTO token_usage
	(created_at, filename, buyer, template, provider, model,
	 prompt_tokens, completion_tokens, total_tokens,
	 prompt_cost, completion_cost, total_cost,
	 success, error_message, num_pages)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
RETURNING id`

func (r *usageRepo) Insert(ctx context.Context, rec *domain.UsageRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	err := r.db.GetContext(ctx, &rec.ID, insertUsageQuery,
		rec.CreatedAt, rec.Filename, rec.Buyer, rec.Template, rec.Provider, rec.Model,
		rec.PromptTokens, rec.CompletionTokens, rec.TotalTokens,
		rec.PromptCost, rec.CompletionCost, rec.TotalCost,
		rec.Success, rec.ErrorMessage, rec.NumPages)
	if err != nil {
		return fmt.Errorf("usageRepo.Insert: %w", err)
	}
	return nil
}

func (r *usageRepo) List(ctx context.Context, filter domain.UsageFilter) ([]domain.UsageRecord, error) {
	clause, args := buildUsageWhere(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query := fmt.Sprintf(
		`SELECT * FROM token_usage %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		clause, len(args)+1, len(args)+2)
	args = append(args, limit, filter.Offset)

	var records []domain.UsageRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("usageRepo.List: %w", err)
	}
	return records, nil
}

func (r *usageRepo) Count(ctx context.Context, filter domain.UsageFilter) (int, error) {
	clause, args := buildUsageWhere(filter)

	var total int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM token_usage %s`, clause)
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("usageRepo.Count: %w", err)
	}
	return total, nil
}

const usageStatsColumns = `
	COUNT(*) AS total_requests,
	COUNT(CASE WHEN success THEN 1 END) AS successful_requests,
	COUNT(CASE WHEN NOT success THEN 1 END) AS failed_requests,
	COALESCE(SUM(prompt_tokens), 0) AS total_prompt_tokens,
	COALESCE(SUM(completion_tokens), 0) AS total_completion_tokens,
	COALESCE(SUM(total_tokens), 0) AS total_tokens,
	COALESCE(SUM(total_cost), 0) AS total_cost_usd,
	COALESCE(SUM(num_pages), 0) AS total_pages_processed`

func (r *usageRepo) Stats(ctx context.Context, filter domain.UsageFilter) (*domain.UsageStats, error) {
	clause, args := buildUsageWhere(filter)

	var stats domain.UsageStats
	query := fmt.Sprintf(`SELECT %s FROM token_usage %s`, usageStatsColumns, clause)
	if err := r.db.GetContext(ctx, &stats, query, args...); err != nil {
		return nil, fmt.Errorf("usageRepo.Stats: %w", err)
	}
	stats.TotalCostUSD = roundUSD(stats.TotalCostUSD)
	return &stats, nil
}

func (r *usageRepo) StatsByProvider(ctx context.Context, filter domain.UsageFilter) ([]domain.ProviderUsage, error) {
	clause, args := buildUsageWhere(filter)

	query := fmt.Sprintf(`SELECT
		provider,
		COUNT(*) AS total_requests,
		COALESCE(SUM(total_tokens), 0) AS total_tokens,
		COALESCE(SUM(total_cost), 0) AS total_cost_usd
	FROM token_usage %s
	GROUP BY provider
	ORDER BY provider`, clause)

	var breakdown []domain.ProviderUsage
	if err := r.db.SelectContext(ctx, &breakdown, query, args...); err != nil {
		return nil, fmt.Errorf("usageRepo.StatsByProvider: %w", err)
	}
	for i := range breakdown {
		breakdown[i].TotalCostUSD = roundUSD(breakdown[i].TotalCostUSD)
	}
	return breakdown, nil
}

// roundUSD rounds aggregate costs to 4 decimal places for reporting.
func roundUSD(v float64) float64 {
	return math.Round(v*10000) / 10000
}
