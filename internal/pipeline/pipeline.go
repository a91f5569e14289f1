package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"marketbrief/internal/model"
	"marketbrief/internal/provider"
)

// ErrAllProvidersExhausted is the terminal per-instrument outcome after every
// provider in the chain has failed. It is a normal result the caller
// inspects, never a batch abort.
var ErrAllProvidersExhausted = errors.New("all providers exhausted")

// ErrInsufficientSeries marks a provider response that normalized to fewer
// than two bars: not enough for even minimal analysis, and deterministic, so
// the pipeline falls through without retrying.
var ErrInsufficientSeries = errors.New("insufficient series")

// Acquirer runs the tiered acquisition: providers are tried in priority
// order, each under the bounded retry policy, and the first usable series
// short-circuits the rest.
type Acquirer struct {
	providers []provider.SeriesProvider
	retry     RetryPolicy
	history   int
	log       *logrus.Entry
}

// NewAcquirer builds an acquirer over the given provider chain. history is
// the number of bars requested from each provider; it must cover the longest
// indicator window (200) for long-window indicators to be computable.
func NewAcquirer(providers []provider.SeriesProvider, retry RetryPolicy, history int) *Acquirer {
	if history <= 0 {
		history = 300
	}
	return &Acquirer{
		providers: providers,
		retry:     retry.Normalized(),
		history:   history,
		log:       logrus.WithField("component", "pipeline"),
	}
}

// Acquire fetches a canonical series for the request. On total failure the
// returned error wraps ErrAllProvidersExhausted.
func (a *Acquirer) Acquire(ctx context.Context, req model.InstrumentRequest) (*model.CanonicalSeries, error) {
	for _, p := range a.providers {
		bars, err := a.attempt(ctx, p, req.Symbol)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			a.log.WithFields(logrus.Fields{
				"symbol":   req.Symbol,
				"provider": p.Name(),
			}).WithError(err).Warn("provider failed, falling through")
			continue
		}
		a.log.WithFields(logrus.Fields{
			"symbol":   req.Symbol,
			"provider": p.Name(),
			"bars":     len(bars),
		}).Info("series acquired")
		return &model.CanonicalSeries{
			Symbol:    req.Symbol,
			Bars:      bars,
			Source:    p.Name(),
			FetchedAt: time.Now().UTC(),
		}, nil
	}
	return nil, fmt.Errorf("%s: %w", req.Symbol, ErrAllProvidersExhausted)
}

// attempt calls one provider under the retry policy. Only transient and
// rate-limited failures consume the retry budget; not-found and malformed
// responses abort immediately.
func (a *Acquirer) attempt(ctx context.Context, p provider.SeriesProvider, symbol string) ([]model.PriceBar, error) {
	var lastErr error
	for n := 1; n <= a.retry.MaxAttempts; n++ {
		bars, err := p.FetchDailySeries(ctx, symbol, a.history)
		if err == nil {
			bars = canonicalize(bars)
			if len(bars) < 2 {
				return nil, fmt.Errorf("%s returned %d usable bars: %w", p.Name(), len(bars), ErrInsufficientSeries)
			}
			return bars, nil
		}

		kind := provider.Classify(err)
		if !kind.Retryable() {
			return nil, err
		}
		lastErr = err
		if n < a.retry.MaxAttempts {
			d := a.retry.Delay(n)
			a.log.WithFields(logrus.Fields{
				"symbol":   symbol,
				"provider": p.Name(),
				"attempt":  n,
				"backoff":  d,
			}).WithError(err).Debug("retrying after backoff")
			if err := Sleep(ctx, d); err != nil {
				return nil, err
			}
		}
	}
	return nil, lastErr
}

// canonicalize enforces the series invariant: ascending by time, duplicate
// timestamps collapsed to the later record. No gaps are filled.
func canonicalize(bars []model.PriceBar) []model.PriceBar {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	out := bars[:0]
	for _, b := range bars {
		if len(out) > 0 && !out[len(out)-1].Time.Before(b.Time) {
			out[len(out)-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

// RateAcquirer runs the same tiered fallback for a spot FX rate.
type RateAcquirer struct {
	providers []provider.RateProvider
	retry     RetryPolicy
	log       *logrus.Entry
}

func NewRateAcquirer(providers []provider.RateProvider, retry RetryPolicy) *RateAcquirer {
	return &RateAcquirer{
		providers: providers,
		retry:     retry.Normalized(),
		log:       logrus.WithField("component", "pipeline"),
	}
}

// AcquireRate fetches base/quote from the first provider that delivers a
// positive rate.
func (a *RateAcquirer) AcquireRate(ctx context.Context, base, quote string) (float64, string, error) {
	pair := base + "/" + quote
	for _, p := range a.providers {
		r, err := a.attemptRate(ctx, p, base, quote)
		if err != nil {
			if ctx.Err() != nil {
				return 0, "", ctx.Err()
			}
			a.log.WithFields(logrus.Fields{
				"pair":     pair,
				"provider": p.Name(),
			}).WithError(err).Warn("rate provider failed, falling through")
			continue
		}
		a.log.WithFields(logrus.Fields{"pair": pair, "provider": p.Name(), "rate": r}).Info("rate acquired")
		return r, p.Name(), nil
	}
	return 0, "", fmt.Errorf("%s: %w", pair, ErrAllProvidersExhausted)
}

func (a *RateAcquirer) attemptRate(ctx context.Context, p provider.RateProvider, base, quote string) (float64, error) {
	var lastErr error
	for n := 1; n <= a.retry.MaxAttempts; n++ {
		r, err := p.FetchRate(ctx, base, quote)
		if err == nil {
			if r <= 0 {
				return 0, fmt.Errorf("%s returned non-positive rate %f", p.Name(), r)
			}
			return r, nil
		}
		if !provider.Classify(err).Retryable() {
			return 0, err
		}
		lastErr = err
		if n < a.retry.MaxAttempts {
			if err := Sleep(ctx, a.retry.Delay(n)); err != nil {
				return 0, err
			}
		}
	}
	return 0, lastErr
}
