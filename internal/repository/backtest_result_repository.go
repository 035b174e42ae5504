package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/init-51/FinInsight/internal/model"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// BacktestResultRepository handles database operations for backtest results
type BacktestResultRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewBacktestResultRepository creates a new backtest result repository
func NewBacktestResultRepository(db *sqlx.DB, logger *zap.Logger) *BacktestResultRepository {
	return &BacktestResultRepository{
		db:     db,
		logger: logger,
	}
}

// Save inserts a completed backtest result. Results are insert-only and
// never updated in place. The server-assigned creation timestamp is set
// here.
func (r *BacktestResultRepository) Save(ctx context.Context, result *model.BacktestResult) error {
	query := `
		INSERT INTO backtest_results (
			job_id, portfolio_name, final_value, cumulative_return,
			volatility, sharpe_ratio, created_at, timeseries
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}

	err := r.db.QueryRowContext(
		ctx,
		query,
		result.JobID,
		result.PortfolioName,
		result.FinalValue,
		result.CumulativeReturn,
		result.Volatility,
		result.SharpeRatio,
		result.CreatedAt,
		result.Timeseries,
	).Scan(&result.ID)

	if err != nil {
		r.logger.Error("Failed to save backtest result",
			zap.Error(err),
			zap.String("jobID", result.JobID))
		return err
	}

	return nil
}

// GetByJobID retrieves a persisted result by its job id
func (r *BacktestResultRepository) GetByJobID(ctx context.Context, jobID string) (*model.BacktestResult, error) {
	query := `
		SELECT id, job_id, portfolio_name, final_value, cumulative_return,
			volatility, sharpe_ratio, created_at, timeseries
		FROM backtest_results
		WHERE job_id = $1
	`

	var result model.BacktestResult
	err := r.db.GetContext(ctx, &result, query, jobID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get backtest result",
			zap.Error(err),
			zap.String("jobID", jobID))
		return nil, err
	}

	return &result, nil
}

// ListRecent retrieves up to limit result summaries, most recent first
func (r *BacktestResultRepository) ListRecent(ctx context.Context, limit int) ([]model.BacktestHistoryItem, error) {
	query := `
		SELECT job_id, portfolio_name, final_value, created_at
		FROM backtest_results
		ORDER BY created_at DESC
		LIMIT $1
	`

	var items []model.BacktestHistoryItem
	err := r.db.SelectContext(ctx, &items, query, limit)
	if err != nil {
		r.logger.Error("Failed to list backtest results",
			zap.Error(err),
			zap.Int("limit", limit))
		return nil, err
	}

	return items, nil
}
