package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"marketbrief/internal/model"
)

// FMPProvider is the second price-series fallback (Financial Modeling Prep).
// Its free tier returns a shorter window than the primary providers; that is
// still a legitimate fallback for short-window indicators.
type FMPProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewFMPProvider(baseURL, apiKey, proxyURL string) *FMPProvider {
	if baseURL == "" {
		baseURL = "https://financialmodelingprep.com"
	}
	return &FMPProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL, 30*time.Second),
	}
}

func (p *FMPProvider) Name() string { return "fmp" }

type fmpHistorical struct {
	Symbol     string `json:"symbol"`
	Historical []struct {
		Date   string   `json:"date"`
		Open   *float64 `json:"open"`
		High   *float64 `json:"high"`
		Low    *float64 `json:"low"`
		Close  *float64 `json:"close"`
		Volume *float64 `json:"volume"`
	} `json:"historical"`
}

func (p *FMPProvider) FetchDailySeries(ctx context.Context, symbol string, limit int) ([]model.PriceBar, error) {
	if p.APIKey == "" {
		return nil, NewError(p.Name(), FailureNotFound, fmt.Errorf("api key not configured"))
	}

	u := fmt.Sprintf("%s/api/v3/historical-price-full/%s?apikey=%s",
		p.BaseURL, url.PathEscape(symbol), url.QueryEscape(p.APIKey))

	var payload fmpHistorical
	if err := getJSON(ctx, p.Client, p.Name(), u, &payload); err != nil {
		return nil, err
	}
	if len(payload.Historical) == 0 {
		return nil, NewError(p.Name(), FailureNotFound, fmt.Errorf("no history for %s", symbol))
	}

	bars := make([]model.PriceBar, 0, len(payload.Historical))
	for _, rec := range payload.Historical {
		ts, err := time.ParseInLocation("2006-01-02", rec.Date, time.UTC)
		if err != nil {
			continue
		}
		if rec.Open == nil || rec.High == nil || rec.Low == nil || rec.Close == nil || rec.Volume == nil {
			continue
		}
		bars = append(bars, model.PriceBar{
			Time:   ts,
			Open:   *rec.Open,
			High:   *rec.High,
			Low:    *rec.Low,
			Close:  *rec.Close,
			Volume: *rec.Volume,
		})
	}

	// FMP returns newest first.
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	if len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	return bars, nil
}
