package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"marketbrief/internal/model"
)

// AlphaVantageProvider is the first price-series fallback. The free tier
// allows 5 calls per minute, so every call waits on a shared limiter paced
// at one call per 12 seconds.
type AlphaVantageProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	limiter *rate.Limiter
}

// NewAlphaVantageProvider creates the provider. An empty API key is allowed;
// calls then fail permanently so the pipeline falls through without retrying.
func NewAlphaVantageProvider(baseURL, apiKey, proxyURL string) *AlphaVantageProvider {
	if baseURL == "" {
		baseURL = "https://www.alphavantage.co"
	}
	return &AlphaVantageProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL, 30*time.Second),
		limiter: rate.NewLimiter(rate.Every(12*time.Second), 1),
	}
}

func (p *AlphaVantageProvider) Name() string { return "alphavantage" }

// avDaily is the TIME_SERIES_DAILY response. Note carries the documented
// rate-limit message, which arrives with HTTP 200.
type avDaily struct {
	Note        string                       `json:"Note"`
	Information string                       `json:"Information"`
	ErrorMsg    string                       `json:"Error Message"`
	Series      map[string]map[string]string `json:"Time Series (Daily)"`
}

func (p *AlphaVantageProvider) FetchDailySeries(ctx context.Context, symbol string, limit int) ([]model.PriceBar, error) {
	if p.APIKey == "" {
		return nil, NewError(p.Name(), FailureNotFound, fmt.Errorf("api key not configured"))
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, NewError(p.Name(), FailureTransient, err)
	}

	u := fmt.Sprintf("%s/query?function=TIME_SERIES_DAILY&symbol=%s&outputsize=full&apikey=%s",
		p.BaseURL, url.QueryEscape(symbol), url.QueryEscape(p.APIKey))

	var payload avDaily
	if err := getJSON(ctx, p.Client, p.Name(), u, &payload); err != nil {
		return nil, err
	}
	if payload.Note != "" || payload.Information != "" {
		return nil, NewError(p.Name(), FailureRateLimited,
			fmt.Errorf("quota exceeded for %s", symbol))
	}
	if payload.ErrorMsg != "" {
		return nil, NewError(p.Name(), FailureNotFound, fmt.Errorf("%s", payload.ErrorMsg))
	}
	if len(payload.Series) == 0 {
		return nil, NewError(p.Name(), FailureMalformed, fmt.Errorf("no daily series for %s", symbol))
	}

	bars := make([]model.PriceBar, 0, len(payload.Series))
	for date, fields := range payload.Series {
		ts, err := time.ParseInLocation("2006-01-02", date, time.UTC)
		if err != nil {
			continue
		}
		o, okO := avField(fields, "1. open")
		h, okH := avField(fields, "2. high")
		l, okL := avField(fields, "3. low")
		c, okC := avField(fields, "4. close")
		v, okV := avField(fields, "5. volume")
		if !okO || !okH || !okL || !okC || !okV {
			continue
		}
		bars = append(bars, model.PriceBar{Time: ts, Open: o, High: h, Low: l, Close: c, Volume: v})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	if len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	return bars, nil
}

func avField(fields map[string]string, key string) (float64, bool) {
	raw, ok := fields[key]
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
