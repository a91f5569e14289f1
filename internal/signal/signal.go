// Package signal turns an indicator snapshot into a discrete trading state.
// Each contribution only fires when its indicator is available; a sparse
// snapshot simply accumulates fewer points.
package signal

import (
	"marketbrief/internal/model"
)

// Thresholds maps the accumulated strength to an overall action.
var thresholds = []struct {
	min    int
	action model.SignalAction
}{
	{31, model.SignalStrongBuy},
	{11, model.SignalBuy},
	{-10, model.SignalNeutral},
	{-30, model.SignalSell},
}

// Evaluate scores the snapshot into a composite signal with per-detail
// annotations. Strength is clamped to [-100, 100].
func Evaluate(snap *model.IndicatorSnapshot) *model.CompositeSignal {
	strength := 0
	var details []string

	add := func(points int, detail string) {
		strength += points
		details = append(details, detail)
	}

	if snap.RSI.Valid {
		switch {
		case snap.RSI.Value < 30:
			add(20, "RSI oversold (buy signal)")
		case snap.RSI.Value > 70:
			add(-20, "RSI overbought (sell signal)")
		case snap.RSI.Value < 40:
			add(10, "RSI in undervalued zone")
		case snap.RSI.Value > 60:
			add(-10, "RSI in overvalued zone")
		}
	}

	ma20, ok20 := snap.MA(20)
	ma50, ok50 := snap.MA(50)
	if ok20 && ok50 && ma20.Valid && ma50.Valid {
		if ma20.Value > ma50.Value {
			add(15, "short-term uptrend (MA20 > MA50)")
		} else {
			add(-15, "short-term downtrend (MA20 < MA50)")
		}
	}

	if ma200, ok := snap.MA(200); ok && ma200.Valid {
		if snap.LastClose > ma200.Value {
			add(10, "long-term uptrend (price > MA200)")
		} else {
			add(-10, "long-term downtrend (price < MA200)")
		}
	}

	if snap.Bollinger.Valid {
		switch {
		case snap.Bollinger.PositionPct < 20:
			add(15, "near lower Bollinger band (rebound possible)")
		case snap.Bollinger.PositionPct > 80:
			add(-15, "near upper Bollinger band (pullback possible)")
		}
	}

	if snap.MACD.Valid && snap.MACD.HasSignal {
		switch snap.MACD.Trend {
		case model.MACDBullish:
			add(10, "MACD histogram bullish")
		case model.MACDBearish:
			add(-10, "MACD histogram bearish")
		}
	}

	if strength > 100 {
		strength = 100
	}
	if strength < -100 {
		strength = -100
	}

	return &model.CompositeSignal{
		Action:   actionFor(strength),
		Strength: strength,
		Details:  details,
	}
}

func actionFor(strength int) model.SignalAction {
	for _, t := range thresholds {
		if strength >= t.min {
			return t.action
		}
	}
	return model.SignalStrongSell
}
