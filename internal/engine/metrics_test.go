package engine

import (
	"math"
	"testing"
	"time"
)

func TestComputeMetricsZeroVolatility(t *testing.T) {
	dates := []time.Time{day(2), day(3), day(4)}
	returns := []float64{0, 0, 0}

	m := ComputeMetrics(dates, returns, 10000, 0.02)

	if m.CumulativeReturn != 0 {
		t.Fatalf("cumulative return = %v, want 0", m.CumulativeReturn)
	}
	if m.FinalValue != 10000 {
		t.Fatalf("final value = %v, want 10000", m.FinalValue)
	}
	if m.Volatility != 0 {
		t.Fatalf("volatility = %v, want 0", m.Volatility)
	}
	if m.SharpeRatio != nil {
		t.Fatalf("sharpe ratio = %v, want nil", *m.SharpeRatio)
	}
}

func TestComputeMetricsSingleReturn(t *testing.T) {
	// One return row: sample standard deviation is undefined, which is
	// the zero-volatility case.
	m := ComputeMetrics([]time.Time{day(2)}, []float64{0.05}, 10000, 0.02)

	if m.Volatility != 0 {
		t.Fatalf("volatility = %v, want 0", m.Volatility)
	}
	if m.SharpeRatio != nil {
		t.Fatalf("sharpe ratio = %v, want nil", *m.SharpeRatio)
	}
	if m.FinalValue != 10500 {
		t.Fatalf("final value = %v, want 10500", m.FinalValue)
	}
}

func TestComputeMetricsMatchesDirectRecomputation(t *testing.T) {
	dates := []time.Time{day(2), day(3), day(4)}
	returns := []float64{0.02, -0.01, 0.03}
	initial := 10000.0

	m := ComputeMetrics(dates, returns, initial, 0.02)

	// Recompute every metric directly from the definitions.
	cumulative := (1 + 0.02) * (1 - 0.01) * (1 + 0.03)
	wantCumReturn := cumulative - 1
	mean := (0.02 - 0.01 + 0.03) / 3
	variance := (math.Pow(0.02-mean, 2) + math.Pow(-0.01-mean, 2) + math.Pow(0.03-mean, 2)) / 2
	std := math.Sqrt(variance)
	wantVolatility := std * math.Sqrt(252)
	wantSharpe := (mean - 0.02/252) / std * math.Sqrt(252)

	if m.CumulativeReturn != round6(wantCumReturn) {
		t.Fatalf("cumulative return = %v, want %v", m.CumulativeReturn, round6(wantCumReturn))
	}
	if m.FinalValue != round2(initial*(1+wantCumReturn)) {
		t.Fatalf("final value = %v, want %v", m.FinalValue, round2(initial*(1+wantCumReturn)))
	}
	if m.Volatility != round6(wantVolatility) {
		t.Fatalf("volatility = %v, want %v", m.Volatility, round6(wantVolatility))
	}
	if m.SharpeRatio == nil {
		t.Fatal("sharpe ratio is nil, want a value")
	}
	if *m.SharpeRatio != round6(wantSharpe) {
		t.Fatalf("sharpe ratio = %v, want %v", *m.SharpeRatio, round6(wantSharpe))
	}
}

func TestRoundingHalfToEven(t *testing.T) {
	// Inputs are exact binary fractions so the scaled value is an exact
	// half-integer.
	cases := []struct {
		in   float64
		want float64
	}{
		{0.125, 0.12},
		{0.375, 0.38},
		{0.625, 0.62},
		{-0.125, -0.12},
	}
	for _, tc := range cases {
		if got := round2(tc.in); got != tc.want {
			t.Fatalf("round2(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}

	// 0.0078125 is 1/128; scaled by 1e6 it is exactly 7812.5.
	if got := round6(0.0078125); got != 0.007812 {
		t.Fatalf("round6(0.0078125) = %v, want 0.007812", got)
	}
}

func TestComputeMetricsTimeseries(t *testing.T) {
	dates := []time.Time{day(2), day(3)}
	returns := []float64{0.05, 0.047619047619047616}

	m := ComputeMetrics(dates, returns, 10000, 0.02)

	if len(m.Timeseries) != 2 {
		t.Fatalf("got %d timeseries points, want 2", len(m.Timeseries))
	}
	if m.Timeseries[0].Date != "2024-01-02" || m.Timeseries[1].Date != "2024-01-03" {
		t.Fatalf("unexpected timeseries dates: %+v", m.Timeseries)
	}
	if m.Timeseries[0].Value != 10500.00 {
		t.Fatalf("first cumulative value = %v, want 10500.00", m.Timeseries[0].Value)
	}
	if m.Timeseries[1].Value != 11000.00 {
		t.Fatalf("second cumulative value = %v, want 11000.00", m.Timeseries[1].Value)
	}
}
