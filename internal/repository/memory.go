package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/init-51/FinInsight/internal/model"
)

// MemoryResultStore is an in-memory result store used for testing and
// development. Not suitable for production (no persistence).
type MemoryResultStore struct {
	mu      sync.RWMutex
	results []model.BacktestResult
	byJobID map[string]int
}

// NewMemoryResultStore creates a new in-memory result store.
func NewMemoryResultStore() *MemoryResultStore {
	return &MemoryResultStore{
		byJobID: make(map[string]int),
	}
}

// Save appends a result. Results are insert-only; saving the same job id
// twice is an error.
func (s *MemoryResultStore) Save(_ context.Context, result *model.BacktestResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byJobID[result.JobID]; exists {
		return fmt.Errorf("result for job %s already exists", result.JobID)
	}

	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}
	result.ID = len(s.results) + 1

	// Store a copy to avoid external mutation.
	stored := *result
	stored.Timeseries = append(model.Timeseries(nil), result.Timeseries...)
	s.byJobID[result.JobID] = len(s.results)
	s.results = append(s.results, stored)
	return nil
}

// GetByJobID returns the result saved under jobID, or nil when absent.
func (s *MemoryResultStore) GetByJobID(_ context.Context, jobID string) (*model.BacktestResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byJobID[jobID]
	if !ok {
		return nil, nil
	}
	stored := s.results[idx]
	stored.Timeseries = append(model.Timeseries(nil), stored.Timeseries...)
	return &stored, nil
}

// ListRecent returns up to limit summaries, most recent first. Insertion
// order matches creation order because the store is insert-only.
func (s *MemoryResultStore) ListRecent(_ context.Context, limit int) ([]model.BacktestHistoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]model.BacktestHistoryItem, 0, limit)
	for i := len(s.results) - 1; i >= 0 && len(items) < limit; i-- {
		r := s.results[i]
		items = append(items, model.BacktestHistoryItem{
			JobID:         r.JobID,
			PortfolioName: r.PortfolioName,
			FinalValue:    r.FinalValue,
			CreatedAt:     r.CreatedAt,
		})
	}
	return items, nil
}
