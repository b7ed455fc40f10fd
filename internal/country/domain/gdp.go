package domain

import (
	"math/rand"

	"github.com/geopulse/geopulse/internal/source"
)

// GDP multiplier interval. The multiplier is intentionally random so each
// refresh produces a fresh synthetic magnitude; it is not a real statistic.
const (
	gdpMultiplierMin = 1000.0
	gdpMultiplierMax = 2000.0
)

// FirstCurrencyCode returns the code of the first listed currency, or nil
// when the country reports no currencies.
func FirstCurrencyCode(currencies []source.Currency) *string {
	if len(currencies) == 0 {
		return nil
	}
	code := currencies[0].Code
	if code == "" {
		return nil
	}
	return &code
}

// EstimateGDP derives the synthetic GDP estimate: population × U / rate,
// with U drawn uniformly from [1000, 2000). Returns nil when the rate is
// missing or zero, which callers persist as 0.
func EstimateGDP(population int64, rate *float64, rng *rand.Rand) *float64 {
	if rate == nil || *rate == 0 {
		return nil
	}
	multiplier := gdpMultiplierMin + rng.Float64()*(gdpMultiplierMax-gdpMultiplierMin)
	gdp := float64(population) * multiplier / *rate
	return &gdp
}
