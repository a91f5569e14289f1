package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// FREDObservation is one dated value of a FRED economic series.
type FREDObservation struct {
	Date  string
	Value float64
}

// FREDProvider fetches macroeconomic series from the Federal Reserve
// Economic Data API.
type FREDProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewFREDProvider(baseURL, apiKey, proxyURL string) *FREDProvider {
	if baseURL == "" {
		baseURL = "https://api.stlouisfed.org"
	}
	return &FREDProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL, 30*time.Second),
	}
}

func (p *FREDProvider) Name() string { return "fred" }

// Configured reports whether an API key is present. Without one, macro
// collection degrades to the chart-based VIX alternative only.
func (p *FREDProvider) Configured() bool { return p.APIKey != "" }

// FetchObservations returns up to limit observations, newest first.
// Placeholder values ("." for unreported dates) are dropped.
func (p *FREDProvider) FetchObservations(ctx context.Context, seriesID string, limit int) ([]FREDObservation, error) {
	if p.APIKey == "" {
		return nil, NewError(p.Name(), FailureNotFound, fmt.Errorf("api key not configured"))
	}

	u := fmt.Sprintf("%s/fred/series/observations?series_id=%s&api_key=%s&file_type=json&sort_order=desc&limit=%d",
		p.BaseURL, url.QueryEscape(seriesID), url.QueryEscape(p.APIKey), limit)

	var payload struct {
		Observations []struct {
			Date  string `json:"date"`
			Value string `json:"value"`
		} `json:"observations"`
	}
	if err := getJSON(ctx, p.Client, p.Name(), u, &payload); err != nil {
		return nil, err
	}
	if len(payload.Observations) == 0 {
		return nil, NewError(p.Name(), FailureNotFound, fmt.Errorf("no observations for %s", seriesID))
	}

	obs := make([]FREDObservation, 0, len(payload.Observations))
	for _, o := range payload.Observations {
		if o.Value == "." {
			continue
		}
		v, err := strconv.ParseFloat(o.Value, 64)
		if err != nil {
			continue
		}
		obs = append(obs, FREDObservation{Date: o.Date, Value: v})
	}
	return obs, nil
}
