package indicator

import (
	"fmt"
	"sort"

	"marketbrief/internal/model"
)

// SMA computes the simple moving average of the trailing window ending at
// the last element. ok is false when the series is shorter than the window.
func SMA(closes []float64, window int) (float64, bool) {
	if window <= 0 || len(closes) < window {
		return 0, false
	}
	return mean(tail(closes, window)), true
}

// smaAt computes the SMA of the window ending at position end (inclusive).
func smaAt(closes []float64, window, end int) (float64, bool) {
	if window <= 0 || end+1 < window || end >= len(closes) {
		return 0, false
	}
	return mean(closes[end+1-window : end+1]), true
}

// MovingAverages computes each configured window independently. A window
// longer than the series yields an unavailable entry, not an error: partial
// results are expected and valid. Each available entry carries the current
// close's percentage offset from the average.
func MovingAverages(closes []float64, windows []int) []model.MovingAverage {
	out := make([]model.MovingAverage, 0, len(windows))
	var last float64
	if len(closes) > 0 {
		last = closes[len(closes)-1]
	}
	for _, w := range windows {
		v, ok := SMA(closes, w)
		if !ok {
			out = append(out, model.MovingAverage{
				Window: w,
				Reason: fmt.Sprintf("need %d closes, have %d", w, len(closes)),
			})
			continue
		}
		ma := model.MovingAverage{Window: w, Valid: true, Value: v}
		if v != 0 {
			ma.OffsetPct = (last - v) / v * 100
		}
		if !finite(ma.Value) || !finite(ma.OffsetPct) {
			out = append(out, model.MovingAverage{Window: w, Reason: "non-finite result"})
			continue
		}
		out = append(out, ma)
	}
	return out
}

// AlignmentOf reads the trend alignment from the available windows, shortest
// first: strictly descending values are a bullish alignment, strictly
// ascending bearish, anything else (including fewer than two available
// windows) mixed.
func AlignmentOf(mas []model.MovingAverage) model.Alignment {
	avail := make([]model.MovingAverage, 0, len(mas))
	for _, ma := range mas {
		if ma.Valid {
			avail = append(avail, ma)
		}
	}
	if len(avail) < 2 {
		return model.AlignmentMixed
	}
	sort.Slice(avail, func(i, j int) bool { return avail[i].Window < avail[j].Window })

	descending, ascending := true, true
	for i := 1; i < len(avail); i++ {
		if avail[i-1].Value <= avail[i].Value {
			descending = false
		}
		if avail[i-1].Value >= avail[i].Value {
			ascending = false
		}
	}
	switch {
	case descending:
		return model.AlignmentBullish
	case ascending:
		return model.AlignmentBearish
	default:
		return model.AlignmentMixed
	}
}

// DetectCrossover looks for a golden or dead cross of the short MA over the
// long MA within the last lookback positions. Both averages must be
// computable across the whole lookback+1 window; otherwise the field is
// unavailable. Only the most recent qualifying transition is reported, and
// only as "within the last lookback periods" rather than an exact lag.
func DetectCrossover(closes []float64, short, long, lookback int) model.Crossover {
	if short >= long {
		return model.Crossover{Reason: "short window must be below long window"}
	}
	need := long + lookback
	if len(closes) < need {
		return model.Crossover{Reason: fmt.Sprintf("need %d closes, have %d", need, len(closes))}
	}

	end := len(closes) - 1
	curShort, _ := smaAt(closes, short, end)
	curLong, _ := smaAt(closes, long, end)

	cross := model.Crossover{Valid: true, WithinLast: lookback}
	switch {
	case curShort > curLong:
		// Golden: short was at or below long at some earlier position in
		// the window.
		for i := end - 1; i >= end-lookback; i-- {
			s, _ := smaAt(closes, short, i)
			l, _ := smaAt(closes, long, i)
			if s <= l {
				cross.Detected = true
				cross.Kind = model.CrossGolden
				break
			}
		}
	case curShort < curLong:
		for i := end - 1; i >= end-lookback; i-- {
			s, _ := smaAt(closes, short, i)
			l, _ := smaAt(closes, long, i)
			if s >= l {
				cross.Detected = true
				cross.Kind = model.CrossDead
				break
			}
		}
	}
	return cross
}
