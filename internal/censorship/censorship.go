// Package censorship provides the signals that decide whether a client
// starts out getting or giving access.
package censorship

import (
	"context"
	"fmt"
	"strings"
)

// Fixed always reports the same answer. Useful for flags and tests.
type Fixed bool

func (f Fixed) Censored(context.Context) (bool, error) {
	return bool(f), nil
}

// Func adapts a function to a signal.
type Func func(ctx context.Context) (bool, error)

func (f Func) Censored(ctx context.Context) (bool, error) {
	return f(ctx)
}

// CensoredCountries are ISO 3166-1 alpha-2 codes treated as censored.
var CensoredCountries = []string{
	"BH", "BY", "CN", "CU", "ET", "IR", "KP", "MM",
	"SA", "SY", "TM", "TN", "UZ", "VN",
}

// ByCountry looks up the client's country and checks it against a set of
// censored countries.
type ByCountry struct {
	// Locate returns the ISO country code of the current network.
	Locate func(ctx context.Context) (string, error)
	// Countries overrides CensoredCountries when non-empty.
	Countries []string
}

func (b ByCountry) Censored(ctx context.Context) (bool, error) {
	if b.Locate == nil {
		return false, fmt.Errorf("censorship: no country locator")
	}
	code, err := b.Locate(ctx)
	if err != nil {
		return false, fmt.Errorf("locate country: %w", err)
	}
	return IsCensoredCountry(code, b.Countries...), nil
}

// Country returns a locator for a code known up front.
func Country(code string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) { return code, nil }
}

// IsCensoredCountry matches code case-insensitively against countries, or
// CensoredCountries when none are given.
func IsCensoredCountry(code string, countries ...string) bool {
	if len(countries) == 0 {
		countries = CensoredCountries
	}
	code = strings.TrimSpace(code)
	for _, c := range countries {
		if strings.EqualFold(c, code) {
			return true
		}
	}
	return false
}
