package report

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"marketbrief/internal/briefing"
	"marketbrief/internal/model"
)

func sampleReport() *briefing.Report {
	snap := &model.IndicatorSnapshot{
		Symbol:    "^GSPC",
		LastClose: 6400.25,
		RSI:       model.RSIResult{Valid: true, Value: 65.2, State: model.RSINeutral},
		MAs: []model.MovingAverage{
			{Window: 20, Valid: true, Value: 6350},
			{Window: 50, Valid: true, Value: 6200},
			{Window: 200, Valid: true, Value: 5900, OffsetPct: 8.5},
		},
		Alignment:  model.AlignmentBullish,
		Cross:      model.Crossover{Valid: true, Detected: true, Kind: model.CrossGolden, WithinLast: 5},
		Bollinger:  model.Bollinger{Valid: true, State: model.BollingerWithin, PositionPct: 62},
		Volatility: model.Volatility{Valid: true, Value: 14.2},
	}
	return &briefing.Report{
		RunID:     "test-run",
		StartedAt: time.Date(2026, 8, 25, 8, 0, 0, 0, time.UTC),
		Instruments: []briefing.InstrumentResult{
			{
				Request:  model.InstrumentRequest{Symbol: "^GSPC", Name: "S&P 500"},
				Snapshot: snap,
				Signal:   &model.CompositeSignal{Action: model.SignalBuy, Strength: 25},
				Source:   "chart",
			},
			{
				Request: model.InstrumentRequest{Symbol: "^KS11", Name: "KOSPI"},
				Err:     errors.New("all providers exhausted"),
			},
		},
		Spreads: []model.ExchangeSpread{
			{Asset: "BTC", SpreadPct: 3.2, State: model.SpreadPremium},
		},
		SpreadFails: []model.SpreadFailure{
			{Asset: "ETH", Reasons: []string{"domestic price unavailable: down"}},
		},
		FXRate:   1315.2,
		FXSource: "exchangerate-api",
		Macro: []model.MacroObservation{
			{Name: "VIX", Value: 18.4, HasPrevious: true, Change: 1.1, ChangePct: 6.4},
		},
		Sentiment: "VIX moderate",
	}
}

func TestFormatBriefing(t *testing.T) {
	got := FormatBriefing(sampleReport())

	assert.Contains(t, got, "2026-08-25")
	assert.Contains(t, got, "S&P 500")
	assert.Contains(t, got, "6,400.25")
	assert.Contains(t, got, "RSI(14): 65.2")
	assert.Contains(t, got, "golden cross")
	assert.Contains(t, got, "<b>BUY</b> (strength +25)")
	assert.Contains(t, got, "KOSPI</b>: no data")
	assert.Contains(t, got, "BTC: +3.20% (premium)")
	assert.Contains(t, got, "ETH: skipped")
	assert.Contains(t, got, "USD/KRW 1315.2")
	assert.Contains(t, got, "VIX: 18.40 (+1.10, +6.4%)")
	assert.Contains(t, got, "Sentiment: VIX moderate")
}

func TestFormatBriefingFXFallback(t *testing.T) {
	rep := sampleReport()
	rep.FXFallback = true
	rep.FXRate = 1320
	got := FormatBriefing(rep)
	assert.Contains(t, got, "fallback FX 1320.0")
}

func TestFormatSpreadsOnly(t *testing.T) {
	got := FormatSpreads(sampleReport())
	assert.Contains(t, got, "Kimchi Premium")
	assert.Contains(t, got, "BTC")

	assert.Equal(t, "No spread data available.", FormatSpreads(&briefing.Report{}))
}

func TestFormatMacroOnly(t *testing.T) {
	got := FormatMacro(sampleReport())
	assert.Contains(t, got, "VIX")

	assert.Equal(t, "No macro data available.", FormatMacro(&briefing.Report{}))
}

func TestBuildPrompt(t *testing.T) {
	got := BuildPrompt(sampleReport())
	assert.Contains(t, got, "^GSPC close=6400.25")
	assert.Contains(t, got, "rsi=65.2")
	assert.Contains(t, got, "signal=BUY(+25)")
	assert.Contains(t, got, "^KS11: unavailable")
	assert.Contains(t, got, "BTC premium=+3.20% state=premium")
	assert.Contains(t, got, "macro sentiment: VIX moderate")
}
