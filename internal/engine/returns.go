package engine

import (
	"math"
	"time"
)

// ReturnTable holds per-symbol simple daily returns. Each row corresponds to
// one date transition, so an N-row price table yields N-1 return rows.
// Dates[i] is the calendar date the transition lands on.
type ReturnTable struct {
	Dates   []time.Time
	Symbols []string
	Rows    [][]float64
}

// ComputeReturns derives simple percentage changes from consecutive rows of
// an aligned price table. The first price row has no return and is dropped.
func ComputeReturns(table *PriceTable) (*ReturnTable, error) {
	if len(table.Rows) < 2 {
		return nil, &InsufficientDataError{Rows: len(table.Rows)}
	}

	rt := &ReturnTable{
		Dates:   make([]time.Time, 0, len(table.Rows)-1),
		Symbols: table.Symbols,
		Rows:    make([][]float64, 0, len(table.Rows)-1),
	}
	for i := 1; i < len(table.Rows); i++ {
		row := make([]float64, len(table.Symbols))
		for j := range table.Symbols {
			prev := table.Rows[i-1][j]
			row[j] = (table.Rows[i][j] - prev) / prev
		}
		rt.Dates = append(rt.Dates, table.Dates[i])
		rt.Rows = append(rt.Rows, row)
	}
	return rt, nil
}

// PortfolioReturns blends each return row with the normalized weight vector.
// Any residual NaN return contributes zero.
func PortfolioReturns(rt *ReturnTable, weights *Weights) []float64 {
	out := make([]float64, len(rt.Rows))
	for i, row := range rt.Rows {
		var blended float64
		for j, symbol := range rt.Symbols {
			r := row[j]
			if math.IsNaN(r) {
				r = 0
			}
			blended += r * weights.Values[symbol]
		}
		out[i] = blended
	}
	return out
}
