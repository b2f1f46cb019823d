// Package fxrate fetches the USD/TWD exchange rate from Yahoo Finance.
package fxrate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

const (
	// DefaultBaseURL is the Yahoo Finance v8 chart endpoint.
	DefaultBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"
	// DefaultTTL bounds how long a fetched rate is served from memory.
	DefaultTTL = 30 * time.Minute

	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)"
	ticker    = "USDTWD=X"
	// SourceName labels rates recorded from this provider.
	SourceName = "yahoo"
)

// Quote is one observation of TWD per USD. Cached is set when the value was
// served from memory rather than fetched for this call.
type Quote struct {
	Rate      float64
	FetchedAt time.Time
	Cached    bool
}

// Provider returns the current number of TWD per USD.
type Provider interface {
	USDToTWD(ctx context.Context) (Quote, error)
}

type chartMeta struct {
	Symbol             string  `json:"symbol"`
	Currency           string  `json:"currency"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
}

type chartResult struct {
	Meta chartMeta `json:"meta"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

// YahooClient fetches USDTWD=X and caches the result for ttl.
type YahooClient struct {
	httpClient *http.Client
	baseURL    string
	ttl        time.Duration
	now        func() time.Time

	mu        sync.RWMutex
	rate      float64
	fetchedAt time.Time
}

// NewYahooClient returns a client against baseURL; an empty baseURL uses
// DefaultBaseURL and a zero ttl uses DefaultTTL.
func NewYahooClient(httpClient *http.Client, baseURL string, ttl time.Duration) *YahooClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &YahooClient{httpClient: httpClient, baseURL: baseURL, ttl: ttl, now: time.Now}
}

// USDToTWD returns the cached quote while it is fresh, otherwise fetches a new one.
func (c *YahooClient) USDToTWD(ctx context.Context) (Quote, error) {
	c.mu.RLock()
	rate, fetchedAt := c.rate, c.fetchedAt
	c.mu.RUnlock()
	if rate > 0 && c.now().Sub(fetchedAt) < c.ttl {
		return Quote{Rate: rate, FetchedAt: fetchedAt, Cached: true}, nil
	}

	rate, err := c.fetch(ctx)
	if err != nil {
		return Quote{}, err
	}
	fetchedAt = c.now()

	c.mu.Lock()
	c.rate = rate
	c.fetchedAt = fetchedAt
	c.mu.Unlock()

	return Quote{Rate: rate, FetchedAt: fetchedAt}, nil
}

func (c *YahooClient) fetch(ctx context.Context) (float64, error) {
	url := c.baseURL + "/" + ticker + "?interval=1d&range=1d"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("building forex request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("forex http request for %s: %w", ticker, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("forex request for %s: unexpected status %d", ticker, resp.StatusCode)
	}

	var chart chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return 0, fmt.Errorf("decoding forex response for %s: %w", ticker, err)
	}

	if chart.Chart.Error != nil {
		return 0, fmt.Errorf("forex chart error for %s: %s: %s", ticker, chart.Chart.Error.Code, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return 0, fmt.Errorf("no forex results for %s", ticker)
	}

	rate := chart.Chart.Result[0].Meta.RegularMarketPrice
	if rate <= 0 {
		return 0, fmt.Errorf("invalid forex rate for %s: %f", ticker, rate)
	}
	return rate, nil
}
