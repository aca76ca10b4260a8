// Package money converts minor-unit integers into currency amounts.
package money

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const defaultExponent = 2

// exponents lists ISO 4217 currencies whose minor unit is not 1/100.
var exponents = map[string]int32{
	"BHD": 3,
	"BIF": 0,
	"CLP": 0,
	"IQD": 3,
	"ISK": 0,
	"JOD": 3,
	"JPY": 0,
	"KRW": 0,
	"KWD": 3,
	"LYD": 3,
	"OMR": 3,
	"PYG": 0,
	"TND": 3,
	"UGX": 0,
	"VND": 0,
	"XAF": 0,
	"XOF": 0,
}

// Amount is an immutable amount of money held in minor units.
type Amount struct {
	minor    int64
	currency string
}

// New builds an amount from minor units. The currency code is upper-cased.
func New(minor int64, currency string) Amount {
	return Amount{minor: minor, currency: NormalizeCurrency(currency)}
}

// NormalizeCurrency trims and upper-cases an ISO currency code.
func NormalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidCurrency reports whether code looks like an ISO 4217 alphabetic code.
func ValidCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// Exponent returns the number of minor-unit digits of the currency.
func Exponent(currency string) int32 {
	if exp, ok := exponents[NormalizeCurrency(currency)]; ok {
		return exp
	}
	return defaultExponent
}

func (a Amount) Minor() int64 {
	return a.minor
}

func (a Amount) Currency() string {
	return a.currency
}

// Decimal returns the amount in major units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(a.minor, -Exponent(a.currency))
}

func (a Amount) String() string {
	return fmt.Sprintf("%s %s", a.Decimal().StringFixed(Exponent(a.currency)), a.currency)
}

func (a Amount) Equal(other Amount) bool {
	return a.minor == other.minor && a.currency == other.currency
}

type amountJSON struct {
	Amount   string `json:"amount"`
	Minor    int64  `json:"minor"`
	Currency string `json:"currency"`
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(amountJSON{
		Amount:   a.Decimal().StringFixed(Exponent(a.currency)),
		Minor:    a.minor,
		Currency: a.currency,
	})
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var raw amountJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = New(raw.Minor, raw.Currency)
	return nil
}
