package indicator

import (
	"fmt"

	"marketbrief/internal/model"
)

// SupportResistance scans the trailing window of closes for the rolling min
// and max, plus the current close's distance to each in percent. Purely
// descriptive; no state classification.
func SupportResistance(closes []float64, window int) model.PriceRange {
	if len(closes) == 0 {
		return model.PriceRange{Reason: "empty series"}
	}
	if len(closes) < window {
		window = len(closes)
	}

	recent := tail(closes, window)
	support, resistance := recent[0], recent[0]
	for _, c := range recent[1:] {
		if c < support {
			support = c
		}
		if c > resistance {
			resistance = c
		}
	}

	r := model.PriceRange{Valid: true, Support: support, Resistance: resistance}
	last := closes[len(closes)-1]
	if last != 0 {
		r.ToResistancePct = (resistance - last) / last * 100
		r.ToSupportPct = (last - support) / last * 100
	}
	if !finite(r.ToResistancePct) || !finite(r.ToSupportPct) {
		r.ToResistancePct, r.ToSupportPct = 0, 0
	}
	if !finite(support) || !finite(resistance) {
		return model.PriceRange{Reason: fmt.Sprintf("non-finite bounds over %d closes", window)}
	}
	return r
}
