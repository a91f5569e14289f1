package indicator

import (
	"fmt"

	"marketbrief/internal/model"
)

// DisparityIndex is 100 x close / SMA(period), a mean-reversion distance.
// Depends on the period SMA being available.
func DisparityIndex(closes []float64, period int, high, low float64) model.Disparity {
	ma, ok := SMA(closes, period)
	if !ok {
		return model.Disparity{Reason: fmt.Sprintf("need %d closes, have %d", period, len(closes))}
	}
	if ma == 0 {
		return model.Disparity{Reason: "zero moving average"}
	}

	last := closes[len(closes)-1]
	v := last / ma * 100
	if !finite(v) {
		return model.Disparity{Reason: "non-finite result"}
	}

	state := model.DisparityNormal
	switch {
	case v >= high:
		state = model.DisparityOverheated
	case v <= low:
		state = model.DisparityOversold
	}
	return model.Disparity{Valid: true, Value: v, State: state}
}
