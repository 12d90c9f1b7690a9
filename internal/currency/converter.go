package currency

import (
	"fmt"
	"math"
)

// ratesFromINR maps currency codes to the value of 1 INR in that currency.
// Static table; not a live FX feed.
var ratesFromINR = map[string]float64{
	"INR": 1.0,
	"USD": 0.012,
	"EUR": 0.011,
	"GBP": 0.0095,
}

// Convert converts an amount between two supported currencies, routing
// through INR, rounded to 2 decimals.
func Convert(amount float64, from, to string) (float64, error) {
	if from == to {
		return round2(amount), nil
	}

	fromRate, ok := ratesFromINR[from]
	if !ok {
		return 0, fmt.Errorf("unsupported currency: %s", from)
	}
	toRate, ok := ratesFromINR[to]
	if !ok {
		return 0, fmt.Errorf("unsupported currency: %s", to)
	}

	inINR := amount / fromRate
	return round2(inINR * toRate), nil
}

// Rate returns the value of 1 INR in the given currency.
func Rate(currency string) (float64, error) {
	rate, ok := ratesFromINR[currency]
	if !ok {
		return 0, fmt.Errorf("unsupported currency: %s", currency)
	}
	return rate, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
