package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"marketbrief/internal/model"
)

// SeriesProvider fetches a daily price history for one instrument. The
// provider itself decides how much history its API can deliver; callers pass
// the number of bars they would like and accept shorter results.
type SeriesProvider interface {
	Name() string
	FetchDailySeries(ctx context.Context, symbol string, limit int) ([]model.PriceBar, error)
}

// RateProvider fetches a spot foreign-exchange rate for a currency pair.
type RateProvider interface {
	Name() string
	FetchRate(ctx context.Context, base, quote string) (float64, error)
}

// TickerProvider fetches the current traded price for one symbol.
type TickerProvider interface {
	Name() string
	FetchPrice(ctx context.Context, symbol string) (float64, error)
}

// newHTTPClient builds the shared client used by all providers, with
// optional proxy support.
func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

// getJSON performs a GET and decodes the JSON body into v, returning
// classified errors: network failures are transient, HTTP statuses map via
// kindForStatus, and an undecodable body is malformed.
func getJSON(ctx context.Context, client *http.Client, name, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return NewError(name, FailureMalformed, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := client.Do(req)
	if err != nil {
		return NewError(name, FailureTransient, fmt.Errorf("request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewError(name, FailureTransient, fmt.Errorf("read body: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return NewError(name, kindForStatus(resp.StatusCode),
			fmt.Errorf("status %d: %s", resp.StatusCode, truncate(body, 200)))
	}
	if err := json.Unmarshal(body, v); err != nil {
		return NewError(name, FailureMalformed, fmt.Errorf("decode: %w", err))
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
