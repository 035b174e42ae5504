package engine

import (
	"math"
	"time"

	"github.com/init-51/FinInsight/internal/model"
)

const (
	// tradingDaysPerYear is the annualization factor for daily returns.
	tradingDaysPerYear = 252

	// volatilityTolerance is the sample standard deviation below which a
	// return series is treated as zero-volatility.
	volatilityTolerance = 1e-9
)

// Metrics holds the derived performance metrics of one backtest run, already
// rounded for reporting: final value and timeseries values to 2 decimal
// places, the remaining metrics to 6.
type Metrics struct {
	CumulativeReturn float64
	FinalValue       float64
	Volatility       float64
	SharpeRatio      *float64
	Timeseries       model.Timeseries
}

// ComputeMetrics derives metrics from a non-empty portfolio daily return
// series. dates[i] is the calendar date of returns[i].
//
// Zero-volatility policy: when the sample standard deviation is below
// tolerance (including the single-return case, where it is undefined),
// volatility is 0.0 and the Sharpe ratio is null. A non-finite Sharpe value
// is likewise normalized to null rather than exposed.
func ComputeMetrics(dates []time.Time, returns []float64, initialValue, annualRiskFree float64) *Metrics {
	cumulative := 1.0
	timeseries := make(model.Timeseries, 0, len(returns))
	for i, r := range returns {
		cumulative *= 1 + r
		timeseries = append(timeseries, model.TimeseriesPoint{
			Date:  dates[i].Format("2006-01-02"),
			Value: round2(cumulative * initialValue),
		})
	}
	cumulativeReturn := cumulative - 1

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))
	std := sampleStd(returns, mean)

	var volatility float64
	var sharpe *float64
	if std >= volatilityTolerance {
		volatility = std * math.Sqrt(tradingDaysPerYear)
		dailyRiskFree := annualRiskFree / tradingDaysPerYear
		s := (mean - dailyRiskFree) / std * math.Sqrt(tradingDaysPerYear)
		if !math.IsNaN(s) && !math.IsInf(s, 0) {
			s = round6(s)
			sharpe = &s
		}
	}

	return &Metrics{
		CumulativeReturn: round6(cumulativeReturn),
		FinalValue:       round2(initialValue * (1 + cumulativeReturn)),
		Volatility:       round6(volatility),
		SharpeRatio:      sharpe,
		Timeseries:       timeseries,
	}
}

// sampleStd is the Bessel-corrected standard deviation (divisor n-1).
// Returns 0 for series shorter than two observations.
func sampleStd(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

// round2 and round6 round half to even, so exact halves never bias the
// reported metrics upward.
func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

func round6(v float64) float64 {
	return math.RoundToEven(v*1e6) / 1e6
}
