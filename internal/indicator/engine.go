package indicator

import (
	"math"

	"marketbrief/internal/model"
)

// Config holds the indicator windows and thresholds. All fields have
// defaults; zero values are replaced by DefaultConfig's.
type Config struct {
	RSIPeriod        int
	MAWindows        []int
	CrossShort       int
	CrossLong        int
	CrossLookback    int
	BollingerPeriod  int
	BollingerStd     float64
	DisparityPeriod  int
	DisparityHigh    float64
	DisparityLow     float64
	VolatilityWindow int
	RangeWindow      int
}

// DefaultConfig returns the standard daily-chart parameters.
func DefaultConfig() Config {
	return Config{
		RSIPeriod:        14,
		MAWindows:        []int{20, 50, 200},
		CrossShort:       50,
		CrossLong:        200,
		CrossLookback:    5,
		BollingerPeriod:  20,
		BollingerStd:     2.0,
		DisparityPeriod:  20,
		DisparityHigh:    105,
		DisparityLow:     95,
		VolatilityWindow: 20,
		RangeWindow:      20,
	}
}

func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.RSIPeriod <= 0 {
		c.RSIPeriod = d.RSIPeriod
	}
	if len(c.MAWindows) == 0 {
		c.MAWindows = d.MAWindows
	}
	if c.CrossShort <= 0 {
		c.CrossShort = d.CrossShort
	}
	if c.CrossLong <= 0 {
		c.CrossLong = d.CrossLong
	}
	if c.CrossLookback <= 0 {
		c.CrossLookback = d.CrossLookback
	}
	if c.BollingerPeriod <= 0 {
		c.BollingerPeriod = d.BollingerPeriod
	}
	if c.BollingerStd <= 0 {
		c.BollingerStd = d.BollingerStd
	}
	if c.DisparityPeriod <= 0 {
		c.DisparityPeriod = d.DisparityPeriod
	}
	if c.DisparityHigh <= 0 {
		c.DisparityHigh = d.DisparityHigh
	}
	if c.DisparityLow <= 0 {
		c.DisparityLow = d.DisparityLow
	}
	if c.VolatilityWindow <= 0 {
		c.VolatilityWindow = d.VolatilityWindow
	}
	if c.RangeWindow <= 0 {
		c.RangeWindow = d.RangeWindow
	}
	return c
}

// Compute derives the full indicator snapshot from a canonical series. Pure
// function of its inputs: no I/O, no retries. Numeric degeneracies (zero
// division, NaN, Inf) surface as unavailable fields, never as panics or
// poisoned values.
func Compute(series *model.CanonicalSeries, cfg Config) *model.IndicatorSnapshot {
	cfg = cfg.normalized()
	closes := series.Closes()

	snap := &model.IndicatorSnapshot{
		Symbol:    series.Symbol,
		LastClose: series.LastClose(),
	}

	snap.RSI = RSI(closes, cfg.RSIPeriod)
	snap.MAs = MovingAverages(closes, cfg.MAWindows)
	snap.Alignment = AlignmentOf(snap.MAs)
	snap.Cross = DetectCrossover(closes, cfg.CrossShort, cfg.CrossLong, cfg.CrossLookback)
	snap.Bollinger = BollingerBands(closes, cfg.BollingerPeriod, cfg.BollingerStd)
	snap.MACD = ComputeMACD(closes, 12, 26, 9)
	snap.Disparity = DisparityIndex(closes, cfg.DisparityPeriod, cfg.DisparityHigh, cfg.DisparityLow)
	snap.Volatility = RollingVolatility(closes, cfg.VolatilityWindow)
	snap.Range = SupportResistance(closes, cfg.RangeWindow)

	return snap
}

// finite reports whether f is a usable number.
func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// mean of a non-empty slice.
func mean(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// stddevPop is the population standard deviation of a non-empty slice.
func stddevPop(vals []float64) float64 {
	m := mean(vals)
	sum := 0.0
	for _, v := range vals {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(vals)))
}

// tail returns the last n elements.
func tail(vals []float64, n int) []float64 {
	return vals[len(vals)-n:]
}
