package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ExchangeRateAPIProvider is the primary FX-rate source.
type ExchangeRateAPIProvider struct {
	BaseURL string
	Client  *http.Client
}

func NewExchangeRateAPIProvider(baseURL, proxyURL string) *ExchangeRateAPIProvider {
	if baseURL == "" {
		baseURL = "https://api.exchangerate-api.com"
	}
	return &ExchangeRateAPIProvider{
		BaseURL: baseURL,
		Client:  newHTTPClient(proxyURL, 30*time.Second),
	}
}

func (p *ExchangeRateAPIProvider) Name() string { return "exchangerate-api" }

func (p *ExchangeRateAPIProvider) FetchRate(ctx context.Context, base, quote string) (float64, error) {
	u := fmt.Sprintf("%s/v4/latest/%s", p.BaseURL, url.PathEscape(base))

	var payload struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := getJSON(ctx, p.Client, p.Name(), u, &payload); err != nil {
		return 0, err
	}
	r, ok := payload.Rates[quote]
	if !ok || r <= 0 {
		return 0, NewError(p.Name(), FailureNotFound, fmt.Errorf("%s not in rates", quote))
	}
	return r, nil
}
