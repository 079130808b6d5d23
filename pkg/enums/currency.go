package enums

import "fmt"

// Currency is the ISO-4217 code a listing is priced in.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyINR Currency = "INR"
	CurrencyCAD Currency = "CAD"
	CurrencyAUD Currency = "AUD"
	CurrencyJPY Currency = "JPY"
	CurrencyCNY Currency = "CNY"
	CurrencyBRL Currency = "BRL"
	CurrencyMXN Currency = "MXN"
)

var validCurrencies = []Currency{
	CurrencyUSD,
	CurrencyEUR,
	CurrencyGBP,
	CurrencyINR,
	CurrencyCAD,
	CurrencyAUD,
	CurrencyJPY,
	CurrencyCNY,
	CurrencyBRL,
	CurrencyMXN,
}

var currencySymbols = map[Currency]string{
	CurrencyUSD: "$",
	CurrencyEUR: "€",
	CurrencyGBP: "£",
	CurrencyINR: "₹",
	CurrencyCAD: "C$",
	CurrencyAUD: "A$",
	CurrencyJPY: "¥",
	CurrencyCNY: "¥",
	CurrencyBRL: "R$",
	CurrencyMXN: "$",
}

// IsValid reports whether the value matches the canonical currency enum.
func (c Currency) IsValid() bool {
	for _, candidate := range validCurrencies {
		if candidate == c {
			return true
		}
	}
	return false
}

// Symbol returns the display symbol, defaulting to the dollar sign.
func (c Currency) Symbol() string {
	if symbol, ok := currencySymbols[c]; ok {
		return symbol
	}
	return "$"
}

// ParseCurrency converts the raw string to Currency.
func ParseCurrency(value string) (Currency, error) {
	for _, candidate := range validCurrencies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid currency %q", value)
}
