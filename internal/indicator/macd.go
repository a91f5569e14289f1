package indicator

import (
	"fmt"

	"marketbrief/internal/model"
)

// emaSeries computes the exponential moving average of vals, seeded from the
// simple average of the first period values. The returned slice starts at
// input index period-1.
func emaSeries(vals []float64, period int) []float64 {
	if period <= 0 || len(vals) < period {
		return nil
	}
	out := make([]float64, 0, len(vals)-period+1)
	prev := mean(vals[:period])
	out = append(out, prev)
	k := 2.0 / (float64(period) + 1.0)
	for i := period; i < len(vals); i++ {
		prev = (vals[i]-prev)*k + prev
		out = append(out, prev)
	}
	return out
}

// ComputeMACD computes line = EMA(fast) - EMA(slow), signal = EMA(signal) of
// the line, histogram = line - signal.
//
// Warm-up rules: fewer than slow closes yields no MACD at all; at least slow
// but fewer than slow+signal yields the line only, since an EMA-of-EMA
// computed on an insufficient warm-up is numerically unstable and must not be
// surfaced as if reliable.
//
// Trend follows the histogram sign; a zero histogram reads flat.
func ComputeMACD(closes []float64, fast, slow, signal int) model.MACD {
	if fast <= 0 || slow <= fast || signal <= 0 {
		return model.MACD{Reason: "invalid periods"}
	}
	if len(closes) < slow {
		return model.MACD{Reason: fmt.Sprintf("need %d closes, have %d", slow, len(closes))}
	}

	fastEMA := emaSeries(closes, fast)
	slowEMA := emaSeries(closes, slow)

	// The line is defined from input index slow-1 onward.
	line := make([]float64, len(slowEMA))
	offset := slow - fast
	for i := range slowEMA {
		line[i] = fastEMA[i+offset] - slowEMA[i]
	}

	m := model.MACD{Valid: true, Line: line[len(line)-1]}
	if !finite(m.Line) {
		return model.MACD{Reason: "non-finite line"}
	}

	if len(closes) < slow+signal {
		m.Reason = fmt.Sprintf("signal needs %d closes, have %d", slow+signal, len(closes))
		return m
	}

	sig := emaSeries(line, signal)
	m.HasSignal = true
	m.Signal = sig[len(sig)-1]
	m.Histogram = m.Line - m.Signal
	if !finite(m.Signal) || !finite(m.Histogram) {
		m.HasSignal = false
		m.Signal, m.Histogram = 0, 0
		m.Reason = "non-finite signal"
		return m
	}
	switch {
	case m.Histogram > 0:
		m.Trend = model.MACDBullish
	case m.Histogram < 0:
		m.Trend = model.MACDBearish
	default:
		m.Trend = model.MACDFlat
	}
	return m
}
