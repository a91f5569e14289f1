package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// CoinGeckoProvider fetches global USD spot prices. Symbols are CoinGecko
// coin IDs, e.g. "bitcoin".
type CoinGeckoProvider struct {
	BaseURL string
	Client  *http.Client
}

func NewCoinGeckoProvider(baseURL, proxyURL string) *CoinGeckoProvider {
	if baseURL == "" {
		baseURL = "https://api.coingecko.com"
	}
	return &CoinGeckoProvider{
		BaseURL: baseURL,
		Client:  newHTTPClient(proxyURL, 15*time.Second),
	}
}

func (p *CoinGeckoProvider) Name() string { return "coingecko" }

func (p *CoinGeckoProvider) FetchPrice(ctx context.Context, coinID string) (float64, error) {
	u := fmt.Sprintf("%s/api/v3/simple/price?ids=%s&vs_currencies=usd",
		p.BaseURL, url.QueryEscape(coinID))

	var payload map[string]map[string]float64
	if err := getJSON(ctx, p.Client, p.Name(), u, &payload); err != nil {
		return 0, err
	}
	usd, ok := payload[coinID]["usd"]
	if !ok || usd <= 0 {
		return 0, NewError(p.Name(), FailureNotFound, fmt.Errorf("no usd price for %s", coinID))
	}
	return usd, nil
}
