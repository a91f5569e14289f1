package briefing

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
	"marketbrief/internal/spread"
)

type fakeSeries struct {
	name string
	data map[string][]model.PriceBar
}

func (f *fakeSeries) Name() string { return f.name }

func (f *fakeSeries) FetchDailySeries(ctx context.Context, symbol string, limit int) ([]model.PriceBar, error) {
	bars, ok := f.data[symbol]
	if !ok {
		return nil, provider.NewError(f.name, provider.FailureNotFound, errors.New("unknown symbol"))
	}
	return bars, nil
}

type fakeRate struct {
	rate float64
	err  error
}

func (f *fakeRate) Name() string { return "fakefx" }

func (f *fakeRate) FetchRate(ctx context.Context, base, quote string) (float64, error) {
	return f.rate, f.err
}

type fakeTicker struct {
	name   string
	prices map[string]float64
}

func (f *fakeTicker) Name() string { return f.name }

func (f *fakeTicker) FetchPrice(ctx context.Context, symbol string) (float64, error) {
	p, ok := f.prices[symbol]
	if !ok {
		return 0, provider.NewError(f.name, provider.FailureNotFound, errors.New("unknown"))
	}
	return p, nil
}

func trendBars(n int) []model.PriceBar {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]model.PriceBar, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.PriceBar{Time: start.AddDate(0, 0, i), Close: 100 + float64(i)*0.2})
	}
	return out
}

func fastRetry() pipeline.RetryPolicy {
	return pipeline.RetryPolicy{MaxAttempts: 2, MinDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}
}

func newTestRunner(rateErr bool) *Runner {
	src := &fakeSeries{name: "src", data: map[string][]model.PriceBar{
		"GOOD": trendBars(250),
	}}
	r := NewRunner(
		[]model.InstrumentRequest{{Symbol: "GOOD"}, {Symbol: "MISSING"}},
		pipeline.NewAcquirer([]provider.SeriesProvider{src}, fastRetry(), 300),
	)
	r.Pacing = time.Millisecond

	fx := &fakeRate{rate: 1000}
	if rateErr {
		fx.err = provider.NewError("fakefx", provider.FailureNotFound, errors.New("down"))
	}
	r.Rates = pipeline.NewRateAcquirer([]provider.RateProvider{fx}, fastRetry())
	r.FallbackFX = 1320

	r.Spreads = spread.NewCollector(
		&fakeTicker{name: "upbit", prices: map[string]float64{"KRW-BTC": 105_000_000}},
		&fakeTicker{name: "coingecko", prices: map[string]float64{"bitcoin": 100_000}},
		[]spread.Asset{{Code: "BTC", DomesticSymbol: "KRW-BTC", ForeignID: "bitcoin"}},
		2.0,
		fastRetry(),
	)
	return r
}

func TestRunPartialFailureIsNormal(t *testing.T) {
	rep, err := newTestRunner(false).Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, rep.RunID)
	require.Len(t, rep.Instruments, 2)
	assert.Equal(t, 1, rep.Succeeded())

	good := rep.Instruments[0]
	require.False(t, good.Failed())
	assert.Equal(t, "src", good.Source)
	assert.NotNil(t, good.Snapshot)
	assert.NotNil(t, good.Signal)

	missing := rep.Instruments[1]
	assert.True(t, missing.Failed())
	assert.ErrorIs(t, missing.Err, pipeline.ErrAllProvidersExhausted)
}

func TestRunSpreadsWithLiveFX(t *testing.T) {
	rep, err := newTestRunner(false).Run(context.Background())
	require.NoError(t, err)

	assert.False(t, rep.FXFallback)
	assert.InDelta(t, 1000.0, rep.FXRate, 1e-9)
	assert.Equal(t, "fakefx", rep.FXSource)
	require.Len(t, rep.Spreads, 1)
	assert.InDelta(t, 5.0, rep.Spreads[0].SpreadPct, 1e-9)
	assert.False(t, rep.Spreads[0].FXFallback)
}

func TestRunFXFallback(t *testing.T) {
	rep, err := newTestRunner(true).Run(context.Background())
	require.NoError(t, err)

	assert.True(t, rep.FXFallback)
	assert.InDelta(t, 1320.0, rep.FXRate, 1e-9)
	require.Len(t, rep.Spreads, 1)
	assert.True(t, rep.Spreads[0].FXFallback)
}

func TestRunContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestRunner(false).Run(ctx)
	assert.Error(t, err)
}
