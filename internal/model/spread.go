package model

// SpreadState labels the cross-exchange spread direction.
type SpreadState string

const (
	SpreadPremium  SpreadState = "premium"
	SpreadDiscount SpreadState = "discount"
	SpreadBalanced SpreadState = "balanced"
)

// ExchangeSpread is the kimchi-premium style metric for one crypto asset:
// the percentage spread of the domestic KRW price over the foreign USD price
// after currency conversion. FXFallback marks that the configured fallback
// rate was substituted because FX acquisition failed.
type ExchangeSpread struct {
	Asset         string
	DomesticKRW   float64
	ForeignUSD    float64
	ForeignKRW    float64
	FXRate        float64
	FXFallback    bool
	SpreadPct     float64
	State         SpreadState
	DomesticVenue string
	ForeignVenue  string
}

// SpreadFailure records why the spread for one asset could not be computed.
// Attribution is per-asset: partial success is the expected common case.
type SpreadFailure struct {
	Asset   string
	Reasons []string
}
