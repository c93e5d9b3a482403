package tp_sl

import (
	"github.com/shopspring/decimal"
)

// InitialStop is price - multiplier*atr.
func InitialStop(price, atr, multiplier float64) float64 {
	return atrStop(price, atr, multiplier).InexactFloat64()
}

// NextTrailingStop applies the ATR trailing stop for a long position.
//
// - candidate: price - multiplier*atr
// - update: SL = candidate only when candidate > SL
//
// The stop only moves up. A candidate at or below the current stop leaves it unchanged.
func NextTrailingStop(currentSL, price, atr, multiplier float64) (newSL float64, moved bool) {
	candidate := atrStop(price, atr, multiplier)
	if candidate.GreaterThan(decimal.NewFromFloat(currentSL)) {
		return candidate.InexactFloat64(), true
	}
	return currentSL, false
}

func atrStop(price, atr, multiplier float64) decimal.Decimal {
	offset := decimal.NewFromFloat(atr).Mul(decimal.NewFromFloat(multiplier))
	return decimal.NewFromFloat(price).Sub(offset)
}
