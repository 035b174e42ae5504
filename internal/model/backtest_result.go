package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// TimeseriesPoint is one day of cumulative portfolio value.
type TimeseriesPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Timeseries is the daily cumulative-value series of a backtest, in
// ascending date order. It is stored as a JSON column.
type Timeseries []TimeseriesPoint

// Value implements the driver.Valuer interface for Timeseries
func (ts Timeseries) Value() (driver.Value, error) {
	return json.Marshal(ts)
}

// Scan implements the sql.Scanner interface for Timeseries
func (ts *Timeseries) Scan(value interface{}) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, ts)
}

// BacktestResult is the persisted outcome of one successful backtest run.
// Results are created exactly once per job and never mutated afterwards.
type BacktestResult struct {
	ID               int        `json:"-" db:"id"`
	JobID            string     `json:"job_id" db:"job_id"`
	PortfolioName    string     `json:"portfolio_name" db:"portfolio_name"`
	FinalValue       float64    `json:"final_value" db:"final_value"`
	CumulativeReturn float64    `json:"cumulative_return" db:"cumulative_return"`
	Volatility       float64    `json:"volatility" db:"volatility"`
	SharpeRatio      *float64   `json:"sharpe_ratio" db:"sharpe_ratio"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	Timeseries       Timeseries `json:"timeseries" db:"timeseries"`
}

// BacktestHistoryItem is the summary view of a persisted result.
type BacktestHistoryItem struct {
	JobID         string    `json:"job_id" db:"job_id"`
	PortfolioName string    `json:"portfolio_name" db:"portfolio_name"`
	FinalValue    float64   `json:"final_value" db:"final_value"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
