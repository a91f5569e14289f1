package indicator

import (
	"fmt"

	"marketbrief/internal/model"
)

// BollingerBands computes mid = SMA(period) and bands at k population
// standard deviations. Band boundaries are inclusive: a close exactly on the
// upper band is an upper breach.
func BollingerBands(closes []float64, period int, k float64) model.Bollinger {
	if len(closes) < period {
		return model.Bollinger{Reason: fmt.Sprintf("need %d closes, have %d", period, len(closes))}
	}

	window := tail(closes, period)
	mid := mean(window)
	std := stddevPop(window)
	upper := mid + k*std
	lower := mid - k*std
	last := closes[len(closes)-1]

	b := model.Bollinger{Valid: true, Upper: upper, Mid: mid, Lower: lower}
	if !finite(upper) || !finite(mid) || !finite(lower) {
		return model.Bollinger{Reason: "non-finite bands"}
	}

	switch {
	case last >= upper:
		b.State = model.BollingerUpperBreach
	case last <= lower:
		b.State = model.BollingerLowerBreach
	default:
		b.State = model.BollingerWithin
	}

	// Descriptive extras; a zero-width band leaves them at their zero
	// values rather than propagating Inf.
	if width := upper - lower; width > 0 {
		b.PositionPct = (last - lower) / width * 100
	}
	if mid != 0 {
		b.WidthPct = (upper - lower) / mid * 100
	}
	if !finite(b.PositionPct) || !finite(b.WidthPct) {
		b.PositionPct, b.WidthPct = 0, 0
	}
	return b
}
