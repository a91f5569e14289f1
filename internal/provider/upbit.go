package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// UpbitProvider fetches domestic KRW spot prices from the Upbit ticker API.
// Symbols are Upbit markets, e.g. "KRW-BTC".
type UpbitProvider struct {
	BaseURL string
	Client  *http.Client
}

func NewUpbitProvider(baseURL, proxyURL string) *UpbitProvider {
	if baseURL == "" {
		baseURL = "https://api.upbit.com"
	}
	return &UpbitProvider{
		BaseURL: baseURL,
		Client:  newHTTPClient(proxyURL, 15*time.Second),
	}
}

func (p *UpbitProvider) Name() string { return "upbit" }

func (p *UpbitProvider) FetchPrice(ctx context.Context, market string) (float64, error) {
	u := fmt.Sprintf("%s/v1/ticker?markets=%s", p.BaseURL, url.QueryEscape(market))

	var payload []struct {
		TradePrice *float64 `json:"trade_price"`
	}
	if err := getJSON(ctx, p.Client, p.Name(), u, &payload); err != nil {
		return 0, err
	}
	if len(payload) == 0 || payload[0].TradePrice == nil || *payload[0].TradePrice <= 0 {
		return 0, NewError(p.Name(), FailureNotFound, fmt.Errorf("no trade price for %s", market))
	}
	return *payload[0].TradePrice, nil
}
