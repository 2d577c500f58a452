package handler

import "github.com/shopspring/decimal"

// toDecimal converts a bound float64 quantity to a decimal.Decimal
func toDecimal(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
