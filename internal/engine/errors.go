package engine

import (
	"fmt"
	"strings"
)

// InvalidPortfolioError reports a portfolio that cannot be normalized into
// usable weights: no assets, no valid entries, or no positive weight.
type InvalidPortfolioError struct {
	Reason string
}

func (e *InvalidPortfolioError) Error() string {
	return "invalid portfolio: " + e.Reason
}

// NoUsableDataError reports that every symbol's price fetch failed or
// returned no data.
type NoUsableDataError struct {
	Symbols []string
}

func (e *NoUsableDataError) Error() string {
	return fmt.Sprintf("no price data available for any symbol (tried %s)",
		strings.Join(e.Symbols, ", "))
}

// NoCommonDateRangeError reports that price alignment produced zero rows.
type NoCommonDateRangeError struct{}

func (e *NoCommonDateRangeError) Error() string {
	return "no common date range found for the requested symbols"
}

// InsufficientDataError reports an aligned price table too short to derive
// returns from.
type InsufficientDataError struct {
	Rows int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("not enough price data to compute returns (%d aligned rows)", e.Rows)
}

// PersistenceError reports a failed result-store write. The computation
// itself succeeded, but an unsaved result is not a usable success, so the
// job must still fail.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return "failed to save backtest result: " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
