package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/init-51/FinInsight/internal/model"

	"go.uber.org/zap"
)

func TestNormalizeWeightsSumsToOne(t *testing.T) {
	cases := []struct {
		name   string
		assets []model.Asset
	}{
		{"two equal", []model.Asset{{Symbol: "AAA", Weight: 0.5}, {Symbol: "BBB", Weight: 0.5}}},
		{"unnormalized", []model.Asset{{Symbol: "AAA", Weight: 3}, {Symbol: "BBB", Weight: 1}}},
		{"three uneven", []model.Asset{{Symbol: "AAA", Weight: 0.2}, {Symbol: "BBB", Weight: 0.3}, {Symbol: "CCC", Weight: 0.7}}},
		{"single", []model.Asset{{Symbol: "AAA", Weight: 42}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, err := NormalizeWeights(tc.assets, zap.NewNop())
			if err != nil {
				t.Fatalf("NormalizeWeights returned unexpected error: %v", err)
			}
			var sum float64
			for _, v := range w.Values {
				sum += v
			}
			if math.Abs(sum-1.0) > 1e-9 {
				t.Fatalf("weights sum to %v, want 1.0", sum)
			}
		})
	}
}

func TestNormalizeWeightsSkipsInvalidEntries(t *testing.T) {
	assets := []model.Asset{
		{Symbol: "aaa", Weight: 1},
		{Symbol: "", Weight: 5},
		{Symbol: "  ", Weight: 2},
		{Symbol: "BBB", Weight: -1},
		{Symbol: "bbb", Weight: 3},
	}

	w, err := NormalizeWeights(assets, zap.NewNop())
	if err != nil {
		t.Fatalf("NormalizeWeights returned unexpected error: %v", err)
	}

	if len(w.Symbols) != 2 {
		t.Fatalf("got %d symbols %v, want 2", len(w.Symbols), w.Symbols)
	}
	if w.Symbols[0] != "AAA" || w.Symbols[1] != "BBB" {
		t.Fatalf("symbols not canonicalized in order: %v", w.Symbols)
	}
	// BBB appeared twice: the negative entry is skipped, the 3 wins.
	if math.Abs(w.Values["AAA"]-0.25) > 1e-9 || math.Abs(w.Values["BBB"]-0.75) > 1e-9 {
		t.Fatalf("unexpected normalized weights: %v", w.Values)
	}
}

func TestNormalizeWeightsDuplicateLastWriteWins(t *testing.T) {
	assets := []model.Asset{
		{Symbol: "AAA", Weight: 1},
		{Symbol: "AAA", Weight: 3},
		{Symbol: "BBB", Weight: 1},
	}

	w, err := NormalizeWeights(assets, zap.NewNop())
	if err != nil {
		t.Fatalf("NormalizeWeights returned unexpected error: %v", err)
	}
	if math.Abs(w.Values["AAA"]-0.75) > 1e-9 {
		t.Fatalf("AAA weight = %v, want 0.75", w.Values["AAA"])
	}
}

func TestNormalizeWeightsEmptyAssets(t *testing.T) {
	_, err := NormalizeWeights(nil, zap.NewNop())

	var invalid *InvalidPortfolioError
	if !errors.As(err, &invalid) {
		t.Fatalf("got %v, want InvalidPortfolioError", err)
	}
	if invalid.Reason != "portfolio must include at least one asset" {
		t.Fatalf("unexpected reason: %q", invalid.Reason)
	}
}

func TestNormalizeWeightsAllZeroWeights(t *testing.T) {
	assets := []model.Asset{
		{Symbol: "AAA", Weight: 0},
		{Symbol: "BBB", Weight: 0},
	}

	_, err := NormalizeWeights(assets, zap.NewNop())

	var invalid *InvalidPortfolioError
	if !errors.As(err, &invalid) {
		t.Fatalf("got %v, want InvalidPortfolioError", err)
	}
	if invalid.Reason != "sum of weights must be positive" {
		t.Fatalf("unexpected reason: %q", invalid.Reason)
	}
}

func TestNormalizeWeightsNoValidEntries(t *testing.T) {
	assets := []model.Asset{
		{Symbol: "", Weight: 1},
		{Symbol: "AAA", Weight: -2},
	}

	_, err := NormalizeWeights(assets, zap.NewNop())

	var invalid *InvalidPortfolioError
	if !errors.As(err, &invalid) {
		t.Fatalf("got %v, want InvalidPortfolioError", err)
	}
}

func TestRetainPreservesProportions(t *testing.T) {
	assets := []model.Asset{
		{Symbol: "AAA", Weight: 0.2},
		{Symbol: "BBB", Weight: 0.3},
		{Symbol: "CCC", Weight: 0.5},
	}
	w, err := NormalizeWeights(assets, zap.NewNop())
	if err != nil {
		t.Fatalf("NormalizeWeights returned unexpected error: %v", err)
	}

	reduced, err := w.Retain(map[string]bool{"AAA": true, "BBB": true})
	if err != nil {
		t.Fatalf("Retain returned unexpected error: %v", err)
	}

	var sum float64
	for _, v := range reduced.Values {
		sum += v
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Fatalf("retained weights sum to %v, want 1.0", sum)
	}

	// Relative proportions of survivors must be unchanged: 0.2/0.3.
	before := w.Values["AAA"] / w.Values["BBB"]
	after := reduced.Values["AAA"] / reduced.Values["BBB"]
	if math.Abs(before-after) > 1e-9 {
		t.Fatalf("proportion changed: before %v, after %v", before, after)
	}
	if len(reduced.Symbols) != 2 {
		t.Fatalf("got %d retained symbols, want 2", len(reduced.Symbols))
	}
}

func TestRetainNothingLeft(t *testing.T) {
	w, err := NormalizeWeights([]model.Asset{{Symbol: "AAA", Weight: 1}}, zap.NewNop())
	if err != nil {
		t.Fatalf("NormalizeWeights returned unexpected error: %v", err)
	}

	_, err = w.Retain(map[string]bool{})

	var invalid *InvalidPortfolioError
	if !errors.As(err, &invalid) {
		t.Fatalf("got %v, want InvalidPortfolioError", err)
	}
}
