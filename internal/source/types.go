// Package source fetches raw country and exchange-rate data from the two
// upstream reference APIs.
package source

import "context"

// Currency is one entry of a country's currencies array.
type Currency struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// RawCountry is the country payload as served by the countries API.
type RawCountry struct {
	Name       string     `json:"name"`
	Capital    string     `json:"capital"`
	Region     string     `json:"region"`
	Population int64      `json:"population"`
	Flag       string     `json:"flag"`
	Currencies []Currency `json:"currencies"`
}

// RateTable maps a currency code to its rate against the base currency.
// It lives for a single refresh cycle and is never persisted.
type RateTable map[string]float64

// CountrySource fetches the full country reference dataset.
type CountrySource interface {
	FetchCountries(ctx context.Context) ([]RawCountry, error)
}

// RateSource fetches the current exchange-rate table.
type RateSource interface {
	FetchRates(ctx context.Context) (RateTable, error)
}
