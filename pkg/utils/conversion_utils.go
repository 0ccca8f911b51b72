package utils

import "github.com/shopspring/decimal"

// kgPerTonne is the conversion divisor for weighbridge readings.
var kgPerTonne = decimal.NewFromInt(1000)

// KgToTonnes converts an integer kilogram reading to tonnes rounded to
// 3 decimal places. Rounding happens here, once, at the point of derivation;
// callers must not re-round derived values.
func KgToTonnes(kg int64) decimal.Decimal {
	return decimal.NewFromInt(kg).Div(kgPerTonne).Round(3)
}

// MoneyValue computes a monetary total from a tonnage and a price per tonne,
// rounded to 2 decimal places.
func MoneyValue(tonnes, pricePerTonne decimal.Decimal) decimal.Decimal {
	return tonnes.Mul(pricePerTonne).Round(2)
}
