package model

import "time"

// AssetClass categorizes an instrument.
type AssetClass string

const (
	AssetEquity AssetClass = "equity"
	AssetETF    AssetClass = "etf"
	AssetIndex  AssetClass = "index"
	AssetCrypto AssetClass = "crypto"
)

// Market identifies the venue an instrument trades on.
type Market string

const (
	MarketUS     Market = "us"
	MarketKR     Market = "kr"
	MarketCrypto Market = "crypto"
)

// InstrumentRequest identifies one instrument to acquire and analyze.
type InstrumentRequest struct {
	Symbol string
	Name   string
	Class  AssetClass
	Market Market
}

// PriceBar is a single daily OHLCV observation, UTC-normalized.
type PriceBar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// CanonicalSeries is the provider-agnostic price history for one instrument.
// Bars are sorted ascending by time with no duplicate timestamps. Missing
// trading days are simply absent; consumers index by position, never by
// calendar date.
type CanonicalSeries struct {
	Symbol    string
	Bars      []PriceBar
	Source    string
	FetchedAt time.Time
}

// Len returns the number of bars in the series.
func (s *CanonicalSeries) Len() int { return len(s.Bars) }

// Closes extracts the closing price sequence in chronological order.
func (s *CanonicalSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// LastClose returns the most recent closing price, or 0 for an empty series.
func (s *CanonicalSeries) LastClose() float64 {
	if len(s.Bars) == 0 {
		return 0
	}
	return s.Bars[len(s.Bars)-1].Close
}
