package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/init-51/FinInsight/internal/model"
)

func sampleResult(jobID string) *model.BacktestResult {
	return &model.BacktestResult{
		JobID:            jobID,
		PortfolioName:    "growth",
		FinalValue:       11000,
		CumulativeReturn: 0.1,
		Volatility:       0.05,
		Timeseries: model.Timeseries{
			{Date: "2024-01-02", Value: 10500},
			{Date: "2024-01-03", Value: 11000},
		},
	}
}

func TestMemoryStoreSaveAndGet(t *testing.T) {
	store := NewMemoryResultStore()
	ctx := context.Background()

	if err := store.Save(ctx, sampleResult("job-1")); err != nil {
		t.Fatalf("Save returned unexpected error: %v", err)
	}

	got, err := store.GetByJobID(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetByJobID returned unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("GetByJobID returned nil for a saved job")
	}
	if got.FinalValue != 11000 || len(got.Timeseries) != 2 {
		t.Fatalf("unexpected stored result: %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("CreatedAt not stamped on save")
	}
	if got.ID == 0 {
		t.Fatal("ID not assigned on save")
	}
}

func TestMemoryStoreDuplicateJobID(t *testing.T) {
	store := NewMemoryResultStore()
	ctx := context.Background()

	if err := store.Save(ctx, sampleResult("job-1")); err != nil {
		t.Fatalf("first Save returned unexpected error: %v", err)
	}
	if err := store.Save(ctx, sampleResult("job-1")); err == nil {
		t.Fatal("second Save with the same job id succeeded, want error")
	}
}

func TestMemoryStoreGetMissing(t *testing.T) {
	store := NewMemoryResultStore()

	got, err := store.GetByJobID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetByJobID returned unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("GetByJobID returned %+v for an unknown job, want nil", got)
	}
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	store := NewMemoryResultStore()
	ctx := context.Background()

	if err := store.Save(ctx, sampleResult("job-1")); err != nil {
		t.Fatalf("Save returned unexpected error: %v", err)
	}

	first, _ := store.GetByJobID(ctx, "job-1")
	first.Timeseries[0].Value = -1

	second, _ := store.GetByJobID(ctx, "job-1")
	if second.Timeseries[0].Value != 10500 {
		t.Fatalf("stored timeseries mutated through a returned copy: %v", second.Timeseries[0].Value)
	}
}

func TestMemoryStoreListRecent(t *testing.T) {
	store := NewMemoryResultStore()
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		if err := store.Save(ctx, sampleResult(fmt.Sprintf("job-%d", i))); err != nil {
			t.Fatalf("Save %d returned unexpected error: %v", i, err)
		}
	}

	items, err := store.ListRecent(ctx, 3)
	if err != nil {
		t.Fatalf("ListRecent returned unexpected error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	// Most recent first.
	if items[0].JobID != "job-5" || items[1].JobID != "job-4" || items[2].JobID != "job-3" {
		t.Fatalf("unexpected order: %v, %v, %v", items[0].JobID, items[1].JobID, items[2].JobID)
	}
}

func TestMemoryStoreListRecentFewerThanLimit(t *testing.T) {
	store := NewMemoryResultStore()
	ctx := context.Background()

	if err := store.Save(ctx, sampleResult("job-1")); err != nil {
		t.Fatalf("Save returned unexpected error: %v", err)
	}

	items, err := store.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent returned unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
}
