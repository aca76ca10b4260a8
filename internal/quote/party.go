package quote

import (
	"fmt"

	"github.com/angelmondragon/pricingdef/internal/resource"
	"github.com/angelmondragon/pricingdef/internal/setup"
	"github.com/angelmondragon/pricingdef/pkg/enums"
	"github.com/angelmondragon/pricingdef/pkg/money"
)

// Party is a transacting side of a quote with its currency resolved.
type Party struct {
	Name     string          `json:"name"`
	Role     enums.PartyRole `json:"role"`
	Currency string          `json:"currency"`
	Title    string          `json:"title"`
}

func (p Party) IsBase() bool {
	return p.Role == enums.PartyRoleBase
}

func (p Party) IsCharge() bool {
	return p.Role == enums.PartyRoleCharge
}

// newParty resolves cfg against the calculator record or the party's
// sub-record. A missing sub-record only matters when a value must be read from it.
func newParty(cfg setup.Party, record resource.Reader) (Party, error) {
	source := record
	if attr := cfg.SourceAttr(); attr != "" {
		source, _ = resource.Sub(record, attr)
	}

	rawCurrency, ok, err := cfg.Currency.Resolve(source)
	if err != nil {
		return Party{}, fmt.Errorf("%w: party %s: currency: %v", ErrInvalidResource, cfg.Name, err)
	}
	if !ok {
		return Party{}, fmt.Errorf("%w: party %s: currency %s is not available", ErrInvalidResource, cfg.Name, cfg.Currency)
	}
	currency := money.NormalizeCurrency(rawCurrency)
	if !money.ValidCurrency(currency) {
		return Party{}, fmt.Errorf("%w: party %s: %q is not an ISO currency code", ErrInvalidResource, cfg.Name, rawCurrency)
	}

	title, _, err := cfg.Title.Resolve(source)
	if err != nil {
		return Party{}, fmt.Errorf("%w: party %s: title: %v", ErrInvalidResource, cfg.Name, err)
	}
	return Party{Name: cfg.Name, Role: cfg.Role, Currency: currency, Title: title}, nil
}
