package spread

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketbrief/internal/model"
	"marketbrief/internal/pipeline"
	"marketbrief/internal/provider"
)

func TestComputeBalanced(t *testing.T) {
	// BTC at 157.8M KRW domestic vs 119,500.25 USD at 1320.50: near-zero
	// spread, balanced inside a +-1% band.
	s, err := Compute("BTC", 157800000, 119500.25, 1320.50, 1.0)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, s.SpreadPct, 0.05)
	assert.Equal(t, model.SpreadBalanced, s.State)
	assert.InDelta(t, 157800080.125, s.ForeignKRW, 0.01)
}

func TestComputePremiumAndDiscount(t *testing.T) {
	// Domestic 5% above converted foreign.
	s, err := Compute("BTC", 105_000_000, 100_000, 1000, 2.0)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, s.SpreadPct, 1e-9)
	assert.Equal(t, model.SpreadPremium, s.State)

	s, err = Compute("BTC", 95_000_000, 100_000, 1000, 2.0)
	require.NoError(t, err)
	assert.InDelta(t, -5.0, s.SpreadPct, 1e-9)
	assert.Equal(t, model.SpreadDiscount, s.State)
}

func TestComputeThresholdBoundaryStaysBalanced(t *testing.T) {
	// Exactly on the threshold stays balanced, even though the division
	// leaves the computed spread a few ulps off 2.0.
	s, err := Compute("ETH", 102_000_000, 100_000, 1000, 2.0)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, s.SpreadPct, 1e-9)
	assert.Equal(t, model.SpreadBalanced, s.State)

	s, err = Compute("ETH", 98_000_000, 100_000, 1000, 2.0)
	require.NoError(t, err)
	assert.InDelta(t, -2.0, s.SpreadPct, 1e-9)
	assert.Equal(t, model.SpreadBalanced, s.State)
}

func TestComputeNonPositiveConversion(t *testing.T) {
	_, err := Compute("BTC", 100, 0, 1320, 2.0)
	assert.Error(t, err)
}

type fakeTicker struct {
	name   string
	prices map[string]float64
	errs   map[string]error
}

func (f *fakeTicker) Name() string { return f.name }

func (f *fakeTicker) FetchPrice(ctx context.Context, symbol string) (float64, error) {
	if err, ok := f.errs[symbol]; ok {
		return 0, err
	}
	return f.prices[symbol], nil
}

func fastRetry() pipeline.RetryPolicy {
	return pipeline.RetryPolicy{MaxAttempts: 2, MinDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}
}

func TestCollectAllPartialSuccess(t *testing.T) {
	domestic := &fakeTicker{
		name:   "upbit",
		prices: map[string]float64{"KRW-BTC": 105_000_000},
		errs: map[string]error{
			"KRW-ETH": provider.NewError("upbit", provider.FailureNotFound, errors.New("unknown market")),
		},
	}
	foreign := &fakeTicker{
		name:   "coingecko",
		prices: map[string]float64{"bitcoin": 100_000, "ethereum": 3_000},
	}
	assets := []Asset{
		{Code: "BTC", DomesticSymbol: "KRW-BTC", ForeignID: "bitcoin"},
		{Code: "ETH", DomesticSymbol: "KRW-ETH", ForeignID: "ethereum"},
	}

	c := NewCollector(domestic, foreign, assets, 2.0, fastRetry())
	spreads, failures := c.CollectAll(context.Background(), 1000, false)

	require.Len(t, spreads, 1)
	assert.Equal(t, "BTC", spreads[0].Asset)
	assert.InDelta(t, 5.0, spreads[0].SpreadPct, 1e-9)
	assert.Equal(t, model.SpreadPremium, spreads[0].State)
	assert.Equal(t, "upbit", spreads[0].DomesticVenue)
	assert.False(t, spreads[0].FXFallback)

	require.Len(t, failures, 1)
	assert.Equal(t, "ETH", failures[0].Asset)
	require.Len(t, failures[0].Reasons, 1)
	assert.Contains(t, failures[0].Reasons[0], "domestic price unavailable")
}

func TestCollectAllFXFallbackStillComputes(t *testing.T) {
	domestic := &fakeTicker{name: "upbit", prices: map[string]float64{"KRW-BTC": 132_000_000}}
	foreign := &fakeTicker{name: "coingecko", prices: map[string]float64{"bitcoin": 100_000}}
	assets := []Asset{{Code: "BTC", DomesticSymbol: "KRW-BTC", ForeignID: "bitcoin"}}

	c := NewCollector(domestic, foreign, assets, 2.0, fastRetry())
	spreads, failures := c.CollectAll(context.Background(), 1320.0, true)

	require.Empty(t, failures)
	require.Len(t, spreads, 1)
	assert.True(t, spreads[0].FXFallback)
	assert.InDelta(t, 1320.0, spreads[0].FXRate, 1e-9)
	assert.InDelta(t, 0.0, spreads[0].SpreadPct, 1e-6)
}

func TestCollectAllBothVenuesMissing(t *testing.T) {
	domestic := &fakeTicker{name: "upbit", errs: map[string]error{
		"KRW-BTC": provider.NewError("upbit", provider.FailureNotFound, errors.New("down")),
	}}
	foreign := &fakeTicker{name: "coingecko", errs: map[string]error{
		"bitcoin": provider.NewError("coingecko", provider.FailureNotFound, errors.New("down")),
	}}
	assets := []Asset{{Code: "BTC", DomesticSymbol: "KRW-BTC", ForeignID: "bitcoin"}}

	c := NewCollector(domestic, foreign, assets, 2.0, fastRetry())
	spreads, failures := c.CollectAll(context.Background(), 1320.0, false)

	assert.Empty(t, spreads)
	require.Len(t, failures, 1)
	assert.Len(t, failures[0].Reasons, 2)
}
