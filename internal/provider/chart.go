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

// ChartProvider is the primary price-series source, speaking the Yahoo
// Finance chart API. It also serves as the FX fallback via currency-pair
// symbols ("USDKRW=X").
type ChartProvider struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // maps internal symbols to chart tickers
}

// NewChartProvider creates a chart provider with optional proxy support.
func NewChartProvider(baseURL, proxyURL string) *ChartProvider {
	if baseURL == "" {
		baseURL = "https://query1.finance.yahoo.com"
	}
	return &ChartProvider{
		BaseURL: baseURL,
		Client:  newHTTPClient(proxyURL, 30*time.Second),
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
	}
}

func (p *ChartProvider) Name() string { return "chart" }

func (p *ChartProvider) chartSymbol(symbol string) string {
	if mapped, ok := p.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// chartResponse is the response structure of the chart API. Quote fields are
// untyped because the API emits null for missing observations.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []any `json:"open"`
					High   []any `json:"high"`
					Low    []any `json:"low"`
					Close  []any `json:"close"`
					Volume []any `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func (p *ChartProvider) fetchChart(ctx context.Context, symbol, interval, rng string) ([]model.PriceBar, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		p.BaseURL, url.PathEscape(p.chartSymbol(symbol)), interval, rng)

	var chart chartResponse
	if err := getJSON(ctx, p.Client, p.Name(), u, &chart); err != nil {
		return nil, err
	}
	if chart.Chart.Error != nil {
		return nil, NewError(p.Name(), FailureNotFound,
			fmt.Errorf("api error: %s", chart.Chart.Error.Description))
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, NewError(p.Name(), FailureNotFound, fmt.Errorf("no data for %s", symbol))
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	if len(quote.Open) != len(result.Timestamp) || len(quote.Close) != len(result.Timestamp) {
		return nil, NewError(p.Name(), FailureMalformed,
			fmt.Errorf("quote arrays do not match %d timestamps", len(result.Timestamp)))
	}

	bars := make([]model.PriceBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		o, okO := asFloat(quote.Open[i])
		h, okH := asFloat(quote.High[i])
		l, okL := asFloat(quote.Low[i])
		c, okC := asFloat(quote.Close[i])
		v, okV := asFloat(quote.Volume[i])
		// Records missing a required numeric field are dropped, not
		// zero-filled (null bars on holidays etc.).
		if !okO || !okH || !okL || !okC || !okV {
			continue
		}
		bars = append(bars, model.PriceBar{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: v,
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

// FetchDailySeries fetches up to limit daily bars. The chart API caps daily
// history by range string, so the request is widened to the smallest range
// covering the limit and trimmed afterwards.
func (p *ChartProvider) FetchDailySeries(ctx context.Context, symbol string, limit int) ([]model.PriceBar, error) {
	rng := "2y"
	switch {
	case limit <= 30:
		rng = "1mo"
	case limit <= 90:
		rng = "3mo"
	case limit <= 180:
		rng = "6mo"
	case limit <= 250:
		rng = "1y"
	}
	bars, err := p.fetchChart(ctx, symbol, "1d", rng)
	if err != nil {
		return nil, err
	}
	if len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	return bars, nil
}

// FetchRate returns the latest close of the base/quote currency pair.
func (p *ChartProvider) FetchRate(ctx context.Context, base, quote string) (float64, error) {
	bars, err := p.fetchChart(ctx, base+quote+"=X", "1d", "5d")
	if err != nil {
		return 0, err
	}
	if len(bars) == 0 {
		return 0, NewError(p.Name(), FailureNotFound, fmt.Errorf("no rate data for %s/%s", base, quote))
	}
	return bars[len(bars)-1].Close, nil
}
