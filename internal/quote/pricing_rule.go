package quote

import (
	"github.com/angelmondragon/pricingdef/internal/definitions"
	"github.com/angelmondragon/pricingdef/internal/tiers"
	"github.com/angelmondragon/pricingdef/pkg/money"
)

// PricingRule is a read-only view of the resolved tier in the priceable's currency.
type PricingRule struct {
	tier       tiers.Tier
	currency   string
	definition *definitions.Definition
}

// Fixed reports whether the resolved tier charges one flat price.
func (r PricingRule) Fixed() bool {
	return r.tier.Spec.Fixed
}

func (r PricingRule) Deposit() money.Amount {
	return money.New(r.tier.Spec.Deposit, r.currency)
}

// Prices converts each category's minor-unit price.
func (r PricingRule) Prices() map[string]money.Amount {
	out := make(map[string]money.Amount, len(r.tier.Spec.Prices))
	for category, minor := range r.tier.Spec.Prices {
		out[category] = money.New(minor, r.currency)
	}
	return out
}

func (r PricingRule) Currency() string {
	return r.currency
}

func (r PricingRule) Range() tiers.VolumeRange {
	return r.tier.Range
}

// Definition is the definition the tier was resolved from.
func (r PricingRule) Definition() *definitions.Definition {
	return r.definition
}
