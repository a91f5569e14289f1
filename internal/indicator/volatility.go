package indicator

import (
	"fmt"
	"math"

	"marketbrief/internal/model"
)

// RollingVolatility is the standard deviation of daily percentage returns
// over the trailing window (or all available returns when fewer), annualized
// by sqrt(252) and expressed in percent. Computable once two closes exist;
// always non-negative.
func RollingVolatility(closes []float64, window int) model.Volatility {
	if len(closes) < 2 {
		return model.Volatility{Reason: fmt.Sprintf("need 2 closes, have %d", len(closes))}
	}

	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		returns = append(returns, closes[i]/closes[i-1]-1)
	}
	if len(returns) == 0 {
		return model.Volatility{Reason: "no computable returns"}
	}
	if len(returns) > window {
		returns = tail(returns, window)
	}

	v := stddevPop(returns) * math.Sqrt(252) * 100
	if !finite(v) {
		return model.Volatility{Reason: "non-finite result"}
	}
	return model.Volatility{Valid: true, Value: v}
}
