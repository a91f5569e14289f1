package model

// SignalAction is the overall reading of the composite signal.
type SignalAction string

const (
	SignalStrongBuy  SignalAction = "STRONG_BUY"
	SignalBuy        SignalAction = "BUY"
	SignalNeutral    SignalAction = "NEUTRAL"
	SignalSell       SignalAction = "SELL"
	SignalStrongSell SignalAction = "STRONG_SELL"
)

// CompositeSignal aggregates the indicator snapshot into one discrete trading
// state. Strength runs -100 (strong sell) to +100 (strong buy); Details lists
// the individual contributions in scoring order.
type CompositeSignal struct {
	Action   SignalAction
	Strength int
	Details  []string
}
