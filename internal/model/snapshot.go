package model

// Every indicator field below is independently optional: Valid reports whether
// the value could be computed, and Reason says why not. A short series may
// satisfy RSI and MA20 but not MA200; that is a normal partial result, not an
// error. Consumers must check Valid before reading any numeric field.

// RSIState labels the momentum condition.
type RSIState string

const (
	RSIOverbought RSIState = "overbought"
	RSIOversold   RSIState = "oversold"
	RSINeutral    RSIState = "neutral"
)

// RSIResult is the relative strength index over a fixed period.
type RSIResult struct {
	Valid  bool
	Reason string
	Value  float64
	State  RSIState
}

// MovingAverage is one simple moving average window plus the current price's
// percentage offset above or below it.
type MovingAverage struct {
	Window    int
	Valid     bool
	Reason    string
	Value     float64
	OffsetPct float64
}

// Alignment describes the ordering of the available moving averages.
type Alignment string

const (
	AlignmentBullish Alignment = "bullish"
	AlignmentBearish Alignment = "bearish"
	AlignmentMixed   Alignment = "mixed"
)

// CrossKind tags a moving-average crossover event.
type CrossKind string

const (
	CrossGolden CrossKind = "golden"
	CrossDead   CrossKind = "dead"
)

// Crossover reports whether the short MA crossed the long MA within the
// lookback window. Detection is coarse: only "within the last WithinLast
// periods", not an exact lag.
type Crossover struct {
	Valid      bool
	Reason     string
	Detected   bool
	Kind       CrossKind
	WithinLast int
}

// BollingerState labels where the close sits relative to the bands.
// Band boundaries are inclusive: a close exactly on a band is a breach.
type BollingerState string

const (
	BollingerUpperBreach BollingerState = "upper breach"
	BollingerLowerBreach BollingerState = "lower breach"
	BollingerWithin      BollingerState = "within bands"
)

// Bollinger holds the band values plus the close's position within the bands
// (0-100%) and the band width relative to the midline.
type Bollinger struct {
	Valid       bool
	Reason      string
	Upper       float64
	Mid         float64
	Lower       float64
	PositionPct float64
	WidthPct    float64
	State       BollingerState
}

// MACDTrend is the histogram sign reading. A histogram of exactly zero reads
// flat, not a direction.
type MACDTrend string

const (
	MACDBullish MACDTrend = "bullish"
	MACDBearish MACDTrend = "bearish"
	MACDFlat    MACDTrend = "flat"
)

// MACD holds the line and, when the series covers the full warm-up, the
// signal line and histogram. HasSignal is false for series long enough for
// the line but too short for a stable signal line.
type MACD struct {
	Valid     bool
	Reason    string
	Line      float64
	HasSignal bool
	Signal    float64
	Histogram float64
	Trend     MACDTrend
}

// DisparityState labels the mean-reversion distance.
type DisparityState string

const (
	DisparityOverheated DisparityState = "overheated"
	DisparityOversold   DisparityState = "oversold"
	DisparityNormal     DisparityState = "normal"
)

// Disparity is the disparity index: 100 x close / MA.
type Disparity struct {
	Valid  bool
	Reason string
	Value  float64
	State  DisparityState
}

// Volatility is the rolling standard deviation of daily percentage returns,
// annualized.
type Volatility struct {
	Valid  bool
	Reason string
	Value  float64
}

// PriceRange is the rolling support/resistance over a fixed lookback, with
// distances from the current close. Purely descriptive.
type PriceRange struct {
	Valid           bool
	Reason          string
	Support         float64
	Resistance      float64
	ToSupportPct    float64
	ToResistancePct float64
}

// IndicatorSnapshot is the per-instrument result of the indicator engine.
// Immutable once produced; regenerated fresh each run.
type IndicatorSnapshot struct {
	Symbol     string
	LastClose  float64
	RSI        RSIResult
	MAs        []MovingAverage
	Alignment  Alignment
	Cross      Crossover
	Bollinger  Bollinger
	MACD       MACD
	Disparity  Disparity
	Volatility Volatility
	Range      PriceRange
}

// MA returns the moving average for the given window, if present.
func (s *IndicatorSnapshot) MA(window int) (MovingAverage, bool) {
	for _, ma := range s.MAs {
		if ma.Window == window {
			return ma, true
		}
	}
	return MovingAverage{}, false
}
