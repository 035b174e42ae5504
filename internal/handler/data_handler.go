package handler

import (
	"context"
	"math"
	"net/http"
	"time"

	"github.com/init-51/FinInsight/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// previewDefaultDays is the date range served when the caller does not
// provide one.
const previewDefaultDays = 90

// PriceFetcher retrieves the daily close-price series for one symbol.
type PriceFetcher interface {
	Fetch(ctx context.Context, symbol string, start, end time.Time) (model.PriceSeries, error)
}

// DataHandler handles financial data HTTP requests
type DataHandler struct {
	fetcher PriceFetcher
	logger  *zap.Logger
}

// NewDataHandler creates a new financial data handler
func NewDataHandler(fetcher PriceFetcher, logger *zap.Logger) *DataHandler {
	return &DataHandler{
		fetcher: fetcher,
		logger:  logger,
	}
}

// GetStockPrices handles retrieving historical closing prices for a ticker.
// Without start_date and end_date query parameters the last 90 days are
// returned.
func (h *DataHandler) GetStockPrices(c *gin.Context) {
	ticker := c.Param("ticker")
	startParam := c.Query("start_date")
	endParam := c.Query("end_date")

	var start, end time.Time
	if startParam == "" || endParam == "" {
		end = time.Now().UTC()
		start = end.AddDate(0, 0, -previewDefaultDays)
	} else {
		var err error
		start, err = time.Parse("2006-01-02", startParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date, expected YYYY-MM-DD"})
			return
		}
		end, err = time.Parse("2006-01-02", endParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date, expected YYYY-MM-DD"})
			return
		}
		if end.Before(start) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must not be after end_date"})
			return
		}
	}

	series, err := h.fetcher.Fetch(c.Request.Context(), ticker, start, end)
	if err != nil {
		h.logger.Error("Failed to fetch prices",
			zap.Error(err),
			zap.String("ticker", ticker))
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to fetch data for ticker " + ticker})
		return
	}
	if len(series) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no data available for ticker " + ticker})
		return
	}

	prices := make([]model.StockPrice, 0, len(series))
	for _, p := range series {
		prices = append(prices, model.StockPrice{
			Date:  p.Date.Format("2006-01-02"),
			Close: math.RoundToEven(p.Close*100) / 100,
		})
	}

	c.JSON(http.StatusOK, prices)
}
