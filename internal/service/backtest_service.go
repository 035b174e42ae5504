package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/init-51/FinInsight/internal/executor"
	"github.com/init-51/FinInsight/internal/model"

	"go.uber.org/zap"
)

// ErrJobNotFound is returned when a job id is neither registered with the
// executor nor present in the result store.
var ErrJobNotFound = errors.New("job not found")

const dateLayout = "2006-01-02"

// ResultReader reads persisted backtest results.
type ResultReader interface {
	GetByJobID(ctx context.Context, jobID string) (*model.BacktestResult, error)
	ListRecent(ctx context.Context, limit int) ([]model.BacktestHistoryItem, error)
}

// BacktestService mediates between the HTTP layer and the job executor and
// result store.
type BacktestService struct {
	executor     *executor.Executor
	results      ResultReader
	historyLimit int
	logger       *zap.Logger
}

// NewBacktestService creates a new backtest service. historyLimit caps how
// many summaries a history query may return.
func NewBacktestService(exec *executor.Executor, results ResultReader, historyLimit int, logger *zap.Logger) *BacktestService {
	if historyLimit < 1 {
		historyLimit = 50
	}
	return &BacktestService{
		executor:     exec,
		results:      results,
		historyLimit: historyLimit,
		logger:       logger,
	}
}

// Submit converts the payload into an immutable portfolio spec and enqueues
// one backtest job, returning its id without waiting for execution.
func (s *BacktestService) Submit(payload *model.PortfolioPayload) (string, error) {
	spec, err := toSpec(payload)
	if err != nil {
		return "", err
	}
	return s.executor.Submit(spec)
}

// Status returns the current state of a job.
func (s *BacktestService) Status(jobID string) (model.Job, error) {
	job, ok := s.executor.Status(jobID)
	if !ok {
		return model.Job{}, ErrJobNotFound
	}
	return job, nil
}

// Result returns the persisted result for a successful job, the error for a
// failed one, or just the current state while the job is still in flight.
// Jobs unknown to this process fall back to the result store, which covers
// results that survived a restart.
func (s *BacktestService) Result(ctx context.Context, jobID string) (*model.JobResultResponse, error) {
	if job, result, ok := s.executor.Result(jobID); ok {
		return &model.JobResultResponse{
			JobID:  jobID,
			Status: job.State,
			Result: result,
			Error:  job.Error,
		}, nil
	}

	result, err := s.results.GetByJobID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, ErrJobNotFound
	}
	// Only successful runs are ever persisted.
	return &model.JobResultResponse{
		JobID:  jobID,
		Status: model.JobStateSuccess,
		Result: result,
	}, nil
}

// History returns up to limit recent result summaries, most recent first.
func (s *BacktestService) History(ctx context.Context, limit int) ([]model.BacktestHistoryItem, error) {
	if limit <= 0 || limit > s.historyLimit {
		limit = s.historyLimit
	}
	return s.results.ListRecent(ctx, limit)
}

// toSpec validates and converts a submission payload. Dates must be ISO
// YYYY-MM-DD with start not after end; asset-level validation is the
// engine's responsibility and failures there surface through the job state.
func toSpec(payload *model.PortfolioPayload) (*model.PortfolioSpec, error) {
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		name = "portfolio"
	}

	start, err := time.Parse(dateLayout, payload.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start_date %q: expected YYYY-MM-DD", payload.StartDate)
	}
	end, err := time.Parse(dateLayout, payload.EndDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end_date %q: expected YYYY-MM-DD", payload.EndDate)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("start_date %s must not be after end_date %s", payload.StartDate, payload.EndDate)
	}

	return &model.PortfolioSpec{
		Name:         name,
		InitialValue: payload.InitialValue,
		StartDate:    start,
		EndDate:      end,
		Assets:       append([]model.Asset(nil), payload.Assets...),
	}, nil
}
