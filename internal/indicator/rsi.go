package indicator

import (
	"fmt"

	"marketbrief/internal/model"
)

// RSI computes the relative strength index over the trailing window of
// period-over-period changes. Requires period+1 closes.
//
// When the average loss over the window is exactly zero the ratio is
// undefined and RSI is reported unavailable, not 100: a zero-loss window on
// a short series is a degenerate input, not a genuine all-up trend signal.
func RSI(closes []float64, period int) model.RSIResult {
	if period <= 0 {
		return model.RSIResult{Reason: "non-positive period"}
	}
	if len(closes) < period+1 {
		return model.RSIResult{Reason: fmt.Sprintf("need %d closes, have %d", period+1, len(closes))}
	}

	var gainSum, lossSum float64
	for i := len(closes) - period; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gainSum += change
		} else {
			lossSum -= change
		}
	}
	avgGain := gainSum / float64(period)
	avgLoss := lossSum / float64(period)

	if avgLoss == 0 {
		return model.RSIResult{Reason: "zero average loss over window"}
	}

	rs := avgGain / avgLoss
	rsi := 100.0 - 100.0/(1.0+rs)
	if !finite(rsi) {
		return model.RSIResult{Reason: "non-finite result"}
	}

	state := model.RSINeutral
	switch {
	case rsi >= 70:
		state = model.RSIOverbought
	case rsi <= 30:
		state = model.RSIOversold
	}

	return model.RSIResult{Valid: true, Value: rsi, State: state}
}
