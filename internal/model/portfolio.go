package model

import "time"

// Asset is one portfolio allocation entry: a market symbol and the fraction
// of portfolio value assigned to it.
type Asset struct {
	Symbol string  `json:"symbol"`
	Weight float64 `json:"weight"`
}

// PortfolioSpec describes one backtest run. It is immutable once submitted;
// the engine never modifies it.
type PortfolioSpec struct {
	Name         string
	InitialValue float64
	StartDate    time.Time
	EndDate      time.Time
	Assets       []Asset
}

// PortfolioPayload is the wire shape of a portfolio submission. Dates arrive
// as ISO YYYY-MM-DD strings and are parsed by the service layer.
type PortfolioPayload struct {
	Name         string  `json:"name"`
	InitialValue float64 `json:"initial_value" binding:"required,gt=0"`
	StartDate    string  `json:"start_date" binding:"required"`
	EndDate      string  `json:"end_date" binding:"required"`
	Assets       []Asset `json:"assets"`
}

// BacktestRequest is the submission request body.
type BacktestRequest struct {
	Portfolio PortfolioPayload `json:"portfolio" binding:"required"`
}

// PricePoint is one daily closing price.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceSeries is an ordered sequence of daily closing prices for one symbol,
// dates strictly increasing.
type PriceSeries []PricePoint

// StockPrice is the wire shape of one daily closing price in the price
// preview response. Close is rounded to 2 decimal places.
type StockPrice struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}
