package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/init-51/FinInsight/internal/model"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// MarketDataClient fetches daily closing prices from the market data
// provider HTTP API. It implements the engine's PriceFetcher contract: a
// symbol with no data yields an empty series, transport and provider
// failures are returned as errors after retries are exhausted.
type MarketDataClient struct {
	baseURL    string
	httpClient *http.Client
	maxRetries uint64
	logger     *zap.Logger
}

// NewMarketDataClient creates a new market data API client
func NewMarketDataClient(baseURL string, timeout time.Duration, maxRetries int, logger *zap.Logger) *MarketDataClient {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &MarketDataClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxRetries: uint64(maxRetries),
		logger:     logger,
	}
}

// dailyPricesResponse is the provider's daily-bars payload.
type dailyPricesResponse struct {
	Symbol string `json:"symbol"`
	Prices []struct {
		Date  string  `json:"date"`
		Close float64 `json:"close"`
	} `json:"prices"`
}

// Fetch retrieves the daily close series for one symbol over [start, end].
// Transient provider failures are retried with exponential backoff; client
// errors (4xx) are not retried.
func (c *MarketDataClient) Fetch(ctx context.Context, symbol string, start, end time.Time) (model.PriceSeries, error) {
	params := url.Values{}
	params.Add("symbol", symbol)
	params.Add("start", start.Format("2006-01-02"))
	params.Add("end", end.Format("2006-01-02"))
	reqURL := fmt.Sprintf("%s/api/v1/daily?%s", c.baseURL, params.Encode())

	c.logger.Debug("Calling market data API", zap.String("url", reqURL))

	var series model.PriceSeries
	operation := func() error {
		series = nil

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to fetch daily prices: %w", err)
		}
		defer resp.Body.Close()

		// The provider reports an unknown symbol as 404; that is "no
		// data", not a failure.
		if resp.StatusCode == http.StatusNotFound {
			return nil
		}
		if resp.StatusCode != http.StatusOK {
			bodyBytes, _ := io.ReadAll(resp.Body)
			err := fmt.Errorf("market data API returned status code %d: %s", resp.StatusCode, string(bodyBytes))
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}

		var payload dailyPricesResponse
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return fmt.Errorf("failed to decode daily prices: %w", err)
		}

		series = make(model.PriceSeries, 0, len(payload.Prices))
		for _, p := range payload.Prices {
			date, err := time.Parse("2006-01-02", p.Date)
			if err != nil {
				return backoff.Permanent(fmt.Errorf("invalid date %q in provider response: %w", p.Date, err))
			}
			series = append(series, model.PricePoint{Date: date, Close: p.Close})
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		c.logger.Warn("Failed to fetch daily prices",
			zap.String("symbol", symbol),
			zap.Error(err))
		return nil, err
	}

	return series, nil
}
