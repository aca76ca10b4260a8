package setup

import (
	"fmt"

	"github.com/angelmondragon/pricingdef/internal/resource"
	"github.com/angelmondragon/pricingdef/internal/tiers"
	"github.com/angelmondragon/pricingdef/pkg/money"
)

// Bounds reads the priceable's volume limits off rec for tier validation.
// An unset minimum attribute, or a record without it, leaves the default of 1.
func (p Priceable) Bounds(rec resource.Reader) (tiers.Bounds, error) {
	bounds := tiers.Bounds{Mode: p.HighestBoundary, Categories: p.CategoryList()}

	minimum, err := readLimit(rec, p.Minimum)
	if err != nil {
		return tiers.Bounds{}, fmt.Errorf("priceable %s: minimum: %w", p.name, err)
	}
	maximum, err := readLimit(rec, p.Maximum)
	if err != nil {
		return tiers.Bounds{}, fmt.Errorf("priceable %s: maximum: %w", p.name, err)
	}
	bounds.Minimum = minimum
	bounds.Maximum = maximum
	return bounds, nil
}

func readLimit(rec resource.Reader, attr string) (*int64, error) {
	if attr == "" || rec == nil {
		return nil, nil
	}
	v, ok := rec.Read(attr)
	if !ok || v == nil {
		return nil, nil
	}
	n, err := resource.Int(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", attr, err)
	}
	return &n, nil
}

// ResolveCurrency returns the priceable's ISO currency, read from rec when
// the currency is an attribute reference.
func (p Priceable) ResolveCurrency(rec resource.Reader) (string, error) {
	raw, ok, err := p.Currency.Resolve(rec)
	if err != nil {
		return "", fmt.Errorf("priceable %s: currency: %w", p.name, err)
	}
	if !ok {
		return "", fmt.Errorf("priceable %s: currency %s is not available", p.name, p.Currency)
	}
	code := money.NormalizeCurrency(raw)
	if !money.ValidCurrency(code) {
		return "", fmt.Errorf("priceable %s: %q is not an ISO currency code", p.name, raw)
	}
	return code, nil
}
