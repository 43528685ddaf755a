package model

import (
	"math"
	"strconv"
)

// Money is an amount in major currency units with its ISO 4217 code.
// Values come from the storefront backend as decimals ("99.50" = 99.50 PHP).
type Money struct {
	Value    float64 `json:"value"`
	Currency string  `json:"currency"`
}

// ParseMoney converts a decimal string amount into Money.
// Empty or malformed strings yield a zero value in the given currency.
// Examples: "99.00" → 99, "1234.567" → 1234.57 (rounded to cents)
func ParseMoney(s, currency string) Money {
	if s == "" {
		return Money{Currency: currency}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Money{Currency: currency}
	}
	// math.Round handles both positive and negative numbers correctly
	return Money{Value: math.Round(f*100) / 100, Currency: currency}
}
