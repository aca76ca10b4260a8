package quote

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/angelmondragon/pricingdef/internal/resource"
	"github.com/angelmondragon/pricingdef/internal/setup"
	"github.com/angelmondragon/pricingdef/internal/tiers"
	"github.com/shopspring/decimal"
)

// Modifier issue kinds.
const (
	IssueInvalidAmount   tiers.IssueKind = "invalid_amount"
	IssueMissingCurrency tiers.IssueKind = "missing_currency"
)

var maxPercentage = decimal.NewFromInt(100)

// Modifier is an adjustment read off the calculator record.
type Modifier struct {
	attribute string
	config    setup.Modifier
	record    resource.Reader

	Fixed    bool
	Additive bool
	Amount   decimal.Decimal
	Currency string
}

func newModifier(attribute string, cfg setup.Modifier, rec resource.Reader) (Modifier, error) {
	m := Modifier{attribute: attribute, config: cfg, record: rec}
	var err error
	if m.Fixed, err = resource.Bool(rec, "fixed"); err != nil {
		return Modifier{}, fmt.Errorf("%w %s: %v", ErrInvalidModifier, attribute, err)
	}
	if m.Additive, err = resource.Bool(rec, "additive"); err != nil {
		return Modifier{}, fmt.Errorf("%w %s: %v", ErrInvalidModifier, attribute, err)
	}
	if raw, ok := rec.Read("amount"); ok && raw != nil {
		if m.Amount, err = resource.Decimal(raw); err != nil {
			return Modifier{}, fmt.Errorf("%w %s: amount: %v", ErrInvalidModifier, attribute, err)
		}
	}
	currency, _, err := resource.String(rec, "currency")
	if err != nil {
		return Modifier{}, fmt.Errorf("%w %s: %v", ErrInvalidModifier, attribute, err)
	}
	m.Currency = strings.ToUpper(strings.TrimSpace(currency))
	return m, nil
}

// Attribute is the record attribute the modifier was read from.
func (m Modifier) Attribute() string {
	return m.attribute
}

func (m Modifier) Kind() string {
	return m.config.Kind()
}

func (m Modifier) Weight() int {
	return m.config.WeightValue()
}

// Validate reports amount and currency problems. An empty result means valid.
func (m Modifier) Validate() []tiers.Issue {
	var issues []tiers.Issue
	switch {
	case !m.Amount.IsInteger() || !m.Amount.IsPositive():
		issues = append(issues, tiers.Issue{Kind: IssueInvalidAmount, Key: m.attribute, Message: fmt.Sprintf("amount must be a positive integer, got %s", m.Amount)})
	case !m.Fixed && m.Amount.GreaterThan(maxPercentage):
		issues = append(issues, tiers.Issue{Kind: IssueInvalidAmount, Key: m.attribute, Message: fmt.Sprintf("amount must be at most 100 for a percentage, got %s", m.Amount)})
	}
	if m.Fixed && m.Currency == "" {
		issues = append(issues, tiers.Issue{Kind: IssueMissingCurrency, Key: m.attribute, Message: "currency is required for a fixed amount"})
	}
	return issues
}

// SerializedModifier is the quote form of a modifier. Currency is only set
// for fixed amounts.
type SerializedModifier struct {
	Additive    bool        `json:"additive"`
	Amount      json.Number `json:"amount"`
	Description *string     `json:"description"`
	Label       *string     `json:"label"`
	Currency    *string     `json:"currency"`
	Weight      int         `json:"weight"`
}

func (m Modifier) Serialized() SerializedModifier {
	out := SerializedModifier{
		Additive:    m.Additive,
		Amount:      json.Number(m.Amount.String()),
		Description: m.text(m.config.Description),
		Label:       m.text(m.config.Label),
		Weight:      m.Weight(),
	}
	if m.Fixed {
		currency := m.Currency
		out.Currency = &currency
	}
	return out
}

// text resolves a literal or reads the attribute off the modifier record.
// Records that cannot provide it yield nil.
func (m Modifier) text(src setup.ValueSource) *string {
	value, ok, err := src.Resolve(m.record)
	if err != nil || !ok {
		return nil
	}
	return &value
}
