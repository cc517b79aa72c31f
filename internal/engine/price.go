package engine

import (
	"math/rand"
)

// applyImpact moves the last price by aggregate order pressure:
// last *= 1 + netPressure*coeff. Applied exactly once per tick,
// whether or not any orders crossed.
func applyImpact(last float64, netPressure int64, coeff float64) float64 {
	if netPressure == 0 {
		return last
	}
	return last * (1 + float64(netPressure)*coeff)
}

// applyNoise multiplies the last price by (1 + u) for one uniform draw
// u in [-volatility, +volatility]. Models exogenous movement, so it
// runs even on ticks with zero orders.
func applyNoise(last float64, volatility float64, rng *rand.Rand) float64 {
	if volatility <= 0 {
		return last
	}
	noise := (rng.Float64()*2 - 1) * volatility
	return last * (1 + noise)
}
