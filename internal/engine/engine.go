// Package engine implements the portfolio backtest pipeline: weight
// normalization, price alignment, return aggregation, metric derivation and
// result persistence for one portfolio specification.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/init-51/FinInsight/internal/model"

	"go.uber.org/zap"
)

// PriceFetcher retrieves the daily close-price series for one symbol. An
// empty series or an error both mean the symbol has no usable data; neither
// aborts the backtest on its own.
type PriceFetcher interface {
	Fetch(ctx context.Context, symbol string, start, end time.Time) (model.PriceSeries, error)
}

// ResultStore persists completed backtest results. Writes are insert-only.
type ResultStore interface {
	Save(ctx context.Context, result *model.BacktestResult) error
}

// Engine runs one portfolio backtest end to end. Engines are stateless and
// safe for concurrent use; each run owns its intermediate data.
type Engine struct {
	fetcher      PriceFetcher
	store        ResultStore
	riskFreeRate float64
	logger       *zap.Logger
}

// NewEngine creates a backtest engine. riskFreeRate is the annual risk-free
// rate used in the Sharpe ratio.
func NewEngine(fetcher PriceFetcher, store ResultStore, riskFreeRate float64, logger *zap.Logger) *Engine {
	return &Engine{
		fetcher:      fetcher,
		store:        store,
		riskFreeRate: riskFreeRate,
		logger:       logger,
	}
}

// fetchOutcome is the typed result of one symbol's price retrieval. A
// missing series is a recoverable event, not an error: the symbol is dropped
// and the surviving weights re-normalized.
type fetchOutcome struct {
	symbol    string
	series    model.PriceSeries
	available bool
}

// Run executes the full backtest pipeline for one portfolio spec and
// persists the result under jobID. Any returned error is fatal for the job.
func (e *Engine) Run(ctx context.Context, jobID string, spec *model.PortfolioSpec) (*model.BacktestResult, error) {
	log := e.logger.With(zap.String("jobID", jobID), zap.String("portfolio", spec.Name))
	log.Info("Starting backtest")

	if spec.InitialValue <= 0 {
		return nil, &InvalidPortfolioError{Reason: "initial value must be positive"}
	}

	weights, err := NormalizeWeights(spec.Assets, log)
	if err != nil {
		return nil, err
	}

	log.Info("Fetching price data", zap.Strings("symbols", weights.Symbols))
	outcomes := e.fetchAll(ctx, weights.Symbols, spec.StartDate, spec.EndDate, log)

	series := make(map[string]model.PriceSeries, len(outcomes))
	retained := make(map[string]bool, len(outcomes))
	for _, o := range outcomes {
		if !o.available {
			log.Warn("Skipping symbol with no usable price data", zap.String("symbol", o.symbol))
			continue
		}
		series[o.symbol] = o.series
		retained[o.symbol] = true
	}
	if len(retained) == 0 {
		return nil, &NoUsableDataError{Symbols: weights.Symbols}
	}

	weights, err = weights.Retain(retained)
	if err != nil {
		return nil, err
	}

	table, err := AlignPrices(series, weights.Symbols)
	if err != nil {
		return nil, err
	}

	returnTable, err := ComputeReturns(table)
	if err != nil {
		return nil, err
	}
	portfolioReturns := PortfolioReturns(returnTable, weights)

	metrics := ComputeMetrics(returnTable.Dates, portfolioReturns, spec.InitialValue, e.riskFreeRate)

	result := &model.BacktestResult{
		JobID:            jobID,
		PortfolioName:    spec.Name,
		FinalValue:       metrics.FinalValue,
		CumulativeReturn: metrics.CumulativeReturn,
		Volatility:       metrics.Volatility,
		SharpeRatio:      metrics.SharpeRatio,
		Timeseries:       metrics.Timeseries,
	}
	if err := e.store.Save(ctx, result); err != nil {
		log.Error("Failed to save backtest result", zap.Error(err))
		return nil, &PersistenceError{Err: err}
	}

	log.Info("Backtest completed",
		zap.Float64("finalValue", result.FinalValue),
		zap.Int("timeseriesPoints", len(result.Timeseries)))
	return result, nil
}

// fetchAll retrieves every symbol's series concurrently. Failures are
// recorded per symbol and never cancel sibling fetches.
func (e *Engine) fetchAll(ctx context.Context, symbols []string, start, end time.Time, log *zap.Logger) []fetchOutcome {
	outcomes := make([]fetchOutcome, len(symbols))
	var wg sync.WaitGroup
	for i, symbol := range symbols {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			series, err := e.fetcher.Fetch(ctx, symbol, start, end)
			if err != nil {
				log.Warn("Price fetch failed", zap.String("symbol", symbol), zap.Error(err))
				outcomes[i] = fetchOutcome{symbol: symbol}
				return
			}
			if len(series) == 0 {
				log.Warn("No price data returned", zap.String("symbol", symbol))
			}
			outcomes[i] = fetchOutcome{symbol: symbol, series: series, available: len(series) > 0}
		}(i, symbol)
	}
	wg.Wait()
	return outcomes
}
