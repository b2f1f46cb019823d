package fxrate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func chartFor(symbol string, price float64) chartResponse {
	var resp chartResponse
	resp.Chart.Result = []chartResult{{Meta: chartMeta{Symbol: symbol, Currency: "TWD", RegularMarketPrice: price}}}
	return resp
}

// newMockServer serves price for USDTWD=X and counts requests.
func newMockServer(price float64, hits *atomic.Int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		symbol := strings.TrimPrefix(r.URL.Path, "/")
		w.Header().Set("Content-Type", "application/json")
		if symbol != "USDTWD=X" {
			var resp chartResponse
			resp.Chart.Error = &chartError{Code: "Not Found", Description: "No data found for " + symbol}
			_ = json.NewEncoder(w).Encode(resp)
			return
		}
		_ = json.NewEncoder(w).Encode(chartFor(symbol, price))
	}))
}

func TestYahooClient_USDToTWD(t *testing.T) {
	var hits atomic.Int32
	server := newMockServer(31.85, &hits)
	defer server.Close()

	c := NewYahooClient(server.Client(), server.URL, time.Minute)

	q, err := c.USDToTWD(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Rate != 31.85 {
		t.Errorf("rate = %f, want 31.85", q.Rate)
	}
	if q.Cached || q.FetchedAt.IsZero() {
		t.Errorf("expected a fresh quote with a fetch time, got %+v", q)
	}
}

func TestYahooClient_CachesUntilTTL(t *testing.T) {
	var hits atomic.Int32
	server := newMockServer(30.5, &hits)
	defer server.Close()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewYahooClient(server.Client(), server.URL, time.Minute)
	c.now = func() time.Time { return now }

	first, err := c.USDToTWD(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Cached {
		t.Error("first quote should not be cached")
	}

	now = now.Add(30 * time.Second)
	for i := 0; i < 2; i++ {
		q, err := c.USDToTWD(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !q.Cached || !q.FetchedAt.Equal(first.FetchedAt) {
			t.Errorf("expected cached quote from %v, got %+v", first.FetchedAt, q)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("expected 1 request while cached, got %d", hits.Load())
	}

	now = now.Add(2 * time.Minute)
	q, err := c.USDToTWD(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("expected refetch after ttl, got %d requests", hits.Load())
	}
	if q.Cached || !q.FetchedAt.Equal(now) {
		t.Errorf("expected fresh quote at %v, got %+v", now, q)
	}
}

func TestYahooClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"http_status", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}},
		{"chart_error", func(w http.ResponseWriter, r *http.Request) {
			var resp chartResponse
			resp.Chart.Error = &chartError{Code: "Not Found", Description: "gone"}
			_ = json.NewEncoder(w).Encode(resp)
		}},
		{"empty_result", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(chartResponse{})
		}},
		{"zero_rate", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(chartFor("USDTWD=X", 0))
		}},
		{"bad_json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("{not json"))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			c := NewYahooClient(server.Client(), server.URL, time.Minute)
			if _, err := c.USDToTWD(context.Background()); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestYahooClient_ContextCanceled(t *testing.T) {
	var hits atomic.Int32
	server := newMockServer(31, &hits)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewYahooClient(server.Client(), server.URL, time.Minute)
	if _, err := c.USDToTWD(ctx); err == nil {
		t.Error("expected error for canceled context")
	}
}
