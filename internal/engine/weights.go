package engine

import (
	"strings"

	"github.com/init-51/FinInsight/internal/model"

	"go.uber.org/zap"
)

// weightTolerance is the floating tolerance below which a weight sum is
// treated as zero.
const weightTolerance = 1e-9

// Weights holds normalized portfolio weights keyed by canonical (uppercase)
// symbol. Symbols preserves first-occurrence order so downstream vector
// operations are deterministic.
type Weights struct {
	Symbols []string
	Values  map[string]float64
}

// NormalizeWeights validates the asset list and returns weights summing to
// 1.0. Entries with a blank symbol or negative weight are skipped with a
// warning, not an error. Duplicate symbols keep the last weight seen.
func NormalizeWeights(assets []model.Asset, logger *zap.Logger) (*Weights, error) {
	if len(assets) == 0 {
		return nil, &InvalidPortfolioError{Reason: "portfolio must include at least one asset"}
	}

	w := &Weights{Values: make(map[string]float64, len(assets))}
	for _, a := range assets {
		symbol := strings.ToUpper(strings.TrimSpace(a.Symbol))
		if symbol == "" || a.Weight < 0 {
			logger.Warn("Skipping invalid asset entry",
				zap.String("symbol", a.Symbol),
				zap.Float64("weight", a.Weight))
			continue
		}
		if _, seen := w.Values[symbol]; !seen {
			w.Symbols = append(w.Symbols, symbol)
		}
		w.Values[symbol] = a.Weight
	}

	if len(w.Symbols) == 0 {
		return nil, &InvalidPortfolioError{Reason: "no valid assets provided in portfolio"}
	}
	if err := w.normalize(); err != nil {
		return nil, err
	}
	return w, nil
}

// Retain keeps only the symbols present in keep and re-normalizes the
// survivors, preserving their relative proportions. It fails with the same
// error kind as the initial normalization when nothing usable remains.
func (w *Weights) Retain(keep map[string]bool) (*Weights, error) {
	out := &Weights{Values: make(map[string]float64, len(keep))}
	for _, symbol := range w.Symbols {
		if keep[symbol] {
			out.Symbols = append(out.Symbols, symbol)
			out.Values[symbol] = w.Values[symbol]
		}
	}

	if len(out.Symbols) == 0 {
		return nil, &InvalidPortfolioError{Reason: "sum of weights became zero after removing symbols with no data"}
	}
	if err := out.normalize(); err != nil {
		return nil, err
	}
	return out, nil
}

func (w *Weights) normalize() error {
	var total float64
	for _, v := range w.Values {
		total += v
	}
	if total <= weightTolerance {
		return &InvalidPortfolioError{Reason: "sum of weights must be positive"}
	}
	for symbol := range w.Values {
		w.Values[symbol] /= total
	}
	return nil
}
