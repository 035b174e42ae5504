package engine

import (
	"math"
	"sort"
	"time"

	"github.com/init-51/FinInsight/internal/model"
)

// PriceTable is a dense date-by-symbol matrix of closing prices. Rows are in
// ascending date order and fully populated: alignment guarantees no missing
// values survive.
type PriceTable struct {
	Dates   []time.Time
	Symbols []string
	Rows    [][]float64
}

// AlignPrices joins the per-symbol series on the union of their dates,
// forward-fills gaps per symbol, and drops every row where any symbol still
// has no value (dates before that symbol's first observation).
func AlignPrices(series map[string]model.PriceSeries, symbols []string) (*PriceTable, error) {
	dateSet := make(map[time.Time]struct{})
	lookup := make(map[string]map[time.Time]float64, len(symbols))
	for _, symbol := range symbols {
		prices := make(map[time.Time]float64, len(series[symbol]))
		for _, p := range series[symbol] {
			d := dayKey(p.Date)
			prices[d] = p.Close
			dateSet[d] = struct{}{}
		}
		lookup[symbol] = prices
	}

	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	rows := make([][]float64, len(dates))
	for i := range rows {
		rows[i] = make([]float64, len(symbols))
	}
	for j, symbol := range symbols {
		last := math.NaN()
		for i, d := range dates {
			if px, ok := lookup[symbol][d]; ok {
				last = px
			}
			rows[i][j] = last
		}
	}

	table := &PriceTable{Symbols: symbols}
	for i, row := range rows {
		complete := true
		for _, v := range row {
			if math.IsNaN(v) {
				complete = false
				break
			}
		}
		if complete {
			table.Dates = append(table.Dates, dates[i])
			table.Rows = append(table.Rows, row)
		}
	}

	if len(table.Rows) == 0 {
		return nil, &NoCommonDateRangeError{}
	}
	return table, nil
}

// dayKey truncates a timestamp to its UTC calendar day so that provider
// timestamps with differing clock components align.
func dayKey(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
