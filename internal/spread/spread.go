// Package spread computes the cross-exchange (kimchi premium) metric: the
// percentage spread of the domestic KRW price over the converted foreign USD
// price for crypto assets traded on both venues.
package spread

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"marketbrief/internal/model"
	"marketbrief/internal/pipeline"
	"marketbrief/internal/provider"
)

// Asset maps one crypto asset to its venue identifiers.
type Asset struct {
	Code           string // display code, e.g. "BTC"
	DomesticSymbol string // Upbit market, e.g. "KRW-BTC"
	ForeignID      string // CoinGecko coin id, e.g. "bitcoin"
}

// boundaryEps is the tolerance for classifying a spread against the balanced
// band, far below the precision spreads are reported at.
const boundaryEps = 1e-9

// DefaultAssets is the standard watchlist.
func DefaultAssets() []Asset {
	return []Asset{
		{Code: "BTC", DomesticSymbol: "KRW-BTC", ForeignID: "bitcoin"},
		{Code: "ETH", DomesticSymbol: "KRW-ETH", ForeignID: "ethereum"},
		{Code: "XRP", DomesticSymbol: "KRW-XRP", ForeignID: "ripple"},
		{Code: "SOL", DomesticSymbol: "KRW-SOL", ForeignID: "solana"},
		{Code: "ADA", DomesticSymbol: "KRW-ADA", ForeignID: "cardano"},
	}
}

// Compute derives the spread for one asset. Pure function; the FX rate (and
// whether it is the configured fallback) is decided by the caller.
// spread% = (domestic / (foreign x fx) - 1) x 100.
func Compute(asset string, domesticKRW, foreignUSD, fx, balancedThresholdPct float64) (model.ExchangeSpread, error) {
	foreignKRW := foreignUSD * fx
	if foreignKRW <= 0 {
		return model.ExchangeSpread{}, fmt.Errorf("non-positive converted price for %s", asset)
	}
	pct := (domesticKRW/foreignKRW - 1) * 100

	// A spread exactly on the threshold reads balanced; boundaryEps absorbs
	// the float noise the division leaves on boundary inputs.
	state := model.SpreadBalanced
	switch {
	case pct > balancedThresholdPct+boundaryEps:
		state = model.SpreadPremium
	case pct < -balancedThresholdPct-boundaryEps:
		state = model.SpreadDiscount
	}

	return model.ExchangeSpread{
		Asset:       asset,
		DomesticKRW: domesticKRW,
		ForeignUSD:  foreignUSD,
		ForeignKRW:  foreignKRW,
		FXRate:      fx,
		SpreadPct:   pct,
		State:       state,
	}, nil
}

// Collector fetches both venue prices per asset and computes spreads.
type Collector struct {
	Domestic     provider.TickerProvider
	Foreign      provider.TickerProvider
	Assets       []Asset
	ThresholdPct float64
	Retry        pipeline.RetryPolicy

	log *logrus.Entry
}

// NewCollector builds a collector over the two venues. threshold is the
// balanced band in percent (spread within +-threshold reads balanced).
func NewCollector(domestic, foreign provider.TickerProvider, assets []Asset, thresholdPct float64, retry pipeline.RetryPolicy) *Collector {
	if len(assets) == 0 {
		assets = DefaultAssets()
	}
	if thresholdPct <= 0 {
		thresholdPct = 2.0
	}
	return &Collector{
		Domestic:     domestic,
		Foreign:      foreign,
		Assets:       assets,
		ThresholdPct: thresholdPct,
		Retry:        retry.Normalized(),
		log:          logrus.WithField("component", "spread"),
	}
}

// CollectAll fetches every asset sequentially. A missing venue price skips
// that asset with the recorded reason(s); fxFallback marks every produced
// spread as computed on the configured fallback rate. Partial success is the
// expected common case.
func (c *Collector) CollectAll(ctx context.Context, fx float64, fxFallback bool) ([]model.ExchangeSpread, []model.SpreadFailure) {
	var spreads []model.ExchangeSpread
	var failures []model.SpreadFailure

	for _, asset := range c.Assets {
		domestic, derr := c.fetch(ctx, c.Domestic, asset.DomesticSymbol)
		foreign, ferr := c.fetch(ctx, c.Foreign, asset.ForeignID)

		var reasons []string
		if derr != nil {
			reasons = append(reasons, fmt.Sprintf("domestic price unavailable: %v", derr))
		}
		if ferr != nil {
			reasons = append(reasons, fmt.Sprintf("foreign price unavailable: %v", ferr))
		}
		if len(reasons) > 0 {
			c.log.WithField("asset", asset.Code).Warn("spread skipped: ", reasons)
			failures = append(failures, model.SpreadFailure{Asset: asset.Code, Reasons: reasons})
			continue
		}

		s, err := Compute(asset.Code, domestic, foreign, fx, c.ThresholdPct)
		if err != nil {
			failures = append(failures, model.SpreadFailure{Asset: asset.Code, Reasons: []string{err.Error()}})
			continue
		}
		s.FXFallback = fxFallback
		s.DomesticVenue = c.Domestic.Name()
		s.ForeignVenue = c.Foreign.Name()
		spreads = append(spreads, s)

		c.log.WithFields(logrus.Fields{
			"asset":  asset.Code,
			"spread": fmt.Sprintf("%+.2f%%", s.SpreadPct),
			"state":  s.State,
		}).Info("spread computed")
	}
	return spreads, failures
}

// fetch retries a single ticker call under the collector's policy; the same
// transient-only rule as the series pipeline applies.
func (c *Collector) fetch(ctx context.Context, p provider.TickerProvider, symbol string) (float64, error) {
	policy := c.Retry
	var lastErr error
	for n := 1; n <= policy.MaxAttempts; n++ {
		price, err := p.FetchPrice(ctx, symbol)
		if err == nil {
			return price, nil
		}
		if !provider.Classify(err).Retryable() {
			return 0, err
		}
		lastErr = err
		if n < policy.MaxAttempts {
			if err := pipeline.Sleep(ctx, policy.Delay(n)); err != nil {
				return 0, err
			}
		}
	}
	return 0, lastErr
}
