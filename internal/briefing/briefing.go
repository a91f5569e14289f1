// Package briefing orchestrates one full collection run: instrument series
// through the tiered pipeline, indicators and composite signals, the
// cross-exchange spread batch, the FX rate, and macro observations.
package briefing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"marketbrief/internal/indicator"
	"marketbrief/internal/macro"
	"marketbrief/internal/model"
	"marketbrief/internal/pipeline"
	"marketbrief/internal/signal"
	"marketbrief/internal/spread"
)

// InstrumentResult is the per-instrument outcome. Exactly one of Snapshot or
// Err is set; an exhausted provider chain is a result, not a run failure.
type InstrumentResult struct {
	Request  model.InstrumentRequest
	Snapshot *model.IndicatorSnapshot
	Signal   *model.CompositeSignal
	Source   string
	Err      error
}

// Failed reports whether acquisition ended with no usable series.
func (r InstrumentResult) Failed() bool { return r.Err != nil }

// Report is the aggregate of one run.
type Report struct {
	RunID       string
	StartedAt   time.Time
	FinishedAt  time.Time
	Instruments []InstrumentResult
	Spreads     []model.ExchangeSpread
	SpreadFails []model.SpreadFailure
	FXRate      float64
	FXSource    string
	FXFallback  bool
	Macro       []model.MacroObservation
	Sentiment   string
}

// Succeeded counts instruments that produced a snapshot.
func (r *Report) Succeeded() int {
	n := 0
	for _, ir := range r.Instruments {
		if !ir.Failed() {
			n++
		}
	}
	return n
}

// Runner wires the collection stages together. Any nil optional stage
// (spreads, rates, macro) is skipped.
type Runner struct {
	Instruments []model.InstrumentRequest
	Series      *pipeline.Acquirer
	Rates       *pipeline.RateAcquirer
	Spreads     *spread.Collector
	Macro       *macro.Collector
	Indicators  indicator.Config

	// FallbackFX is used when every rate provider fails; the report flags
	// spreads computed on it.
	FallbackFX float64

	// Pacing separates consecutive instrument fetches to stay inside
	// free-tier quotas.
	Pacing time.Duration

	log *logrus.Entry
}

func NewRunner(instruments []model.InstrumentRequest, series *pipeline.Acquirer) *Runner {
	return &Runner{
		Instruments: instruments,
		Series:      series,
		Indicators:  indicator.DefaultConfig(),
		FallbackFX:  1320.0,
		Pacing:      time.Second,
		log:         logrus.WithField("component", "briefing"),
	}
}

// Run executes one complete collection pass. It only returns an error when
// the context is cancelled; everything else degrades into the report.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	rep := &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	log := r.log.WithField("run_id", rep.RunID)
	log.WithField("instruments", len(r.Instruments)).Info("briefing run started")

	for i, req := range r.Instruments {
		if i > 0 && r.Pacing > 0 {
			if err := pipeline.Sleep(ctx, r.Pacing); err != nil {
				return nil, err
			}
		}
		rep.Instruments = append(rep.Instruments, r.runInstrument(ctx, req))
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	if r.Spreads != nil {
		fx := r.FallbackFX
		fallback := true
		if r.Rates != nil {
			rate, source, err := r.Rates.AcquireRate(ctx, "USD", "KRW")
			if err == nil {
				fx, fallback = rate, false
				rep.FXSource = source
			} else if ctx.Err() != nil {
				return nil, ctx.Err()
			} else {
				log.WithError(err).Warn("fx acquisition failed, using fallback rate")
			}
		}
		rep.FXRate = fx
		rep.FXFallback = fallback
		rep.Spreads, rep.SpreadFails = r.Spreads.CollectAll(ctx, fx, fallback)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	if r.Macro != nil {
		rep.Macro = r.Macro.CollectAll(ctx)
		rep.Sentiment = macro.SentimentSummary(rep.Macro)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	rep.FinishedAt = time.Now().UTC()
	log.WithFields(logrus.Fields{
		"succeeded": rep.Succeeded(),
		"failed":    len(rep.Instruments) - rep.Succeeded(),
		"spreads":   len(rep.Spreads),
		"elapsed":   rep.FinishedAt.Sub(rep.StartedAt).Round(time.Millisecond),
	}).Info("briefing run finished")
	return rep, nil
}

func (r *Runner) runInstrument(ctx context.Context, req model.InstrumentRequest) InstrumentResult {
	series, err := r.Series.Acquire(ctx, req)
	if err != nil {
		if errors.Is(err, pipeline.ErrAllProvidersExhausted) {
			r.log.WithField("symbol", req.Symbol).Warn("no provider delivered a series")
		}
		return InstrumentResult{Request: req, Err: err}
	}

	snap := indicator.Compute(series, r.Indicators)
	return InstrumentResult{
		Request:  req,
		Snapshot: snap,
		Signal:   signal.Evaluate(snap),
		Source:   series.Source,
	}
}
