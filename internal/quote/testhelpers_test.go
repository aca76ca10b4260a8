package quote

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/angelmondragon/pricingdef/internal/definitions"
	"github.com/angelmondragon/pricingdef/internal/resource"
	"github.com/angelmondragon/pricingdef/internal/setup"
	"github.com/angelmondragon/pricingdef/internal/tiers"
	"github.com/angelmondragon/pricingdef/pkg/enums"
	"github.com/angelmondragon/pricingdef/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T) *setup.Registry {
	t.Helper()
	discountWeight, voucherWeight := 10, 20
	reg, err := setup.Build(setup.Document{
		Priceables: map[string]setup.Priceable{
			"tour": {
				Currency:   setup.Attr("currency"),
				Minimum:    "min_guests",
				Categories: []string{"adults", "children", "seniors"},
			},
		},
		Modifiers: map[string]setup.Modifier{
			"discount": {Weight: &discountWeight, Label: setup.Literal("Discount"), Description: setup.Attr("reason")},
			"voucher":  {Weight: &voucherWeight, Label: setup.Attr("code"), Description: setup.Literal("Voucher")},
		},
		Calculators: map[string]setup.Calculator{
			"booking": {
				Priceable:     "tour",
				Volume:        "guests",
				IntervalStart: "date",
				Modifiers: []setup.ModifierRef{
					{Attribute: "discount"},
					{Attribute: "promo", Kind: "voucher"},
				},
				Parties: []setup.Party{
					{Name: "platform", Source: setup.SourceSelf, Currency: setup.Literal("EUR"), Title: setup.Literal("Acme Inc."), Role: enums.PartyRoleCharge},
					{Name: "business", Currency: setup.Attr("currency"), Title: setup.Attr("title"), Role: enums.PartyRoleBase},
				},
			},
		},
	})
	require.NoError(t, err)
	return reg
}

func bookingRecord() resource.Map {
	return resource.Map{
		"id":       "b-1",
		"tour":     resource.Map{"id": "7", "currency": "usd", "min_guests": 1},
		"guests":   map[string]any{"adults": 4, "children": 3, "seniors": 1},
		"date":     "2015-01-15",
		"business": map[string]any{"currency": "gbp", "title": "Tours Ltd"},
		"discount": map[string]any{"fixed": false, "additive": false, "amount": 10, "reason": "Early bird"},
	}
}

func fixedTier(amount int64) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"fixed":true,"prices":{"fixed":%d},"deposit":0}`, amount))
}

func categoryTier(adults, children, seniors, deposit int64) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"fixed":false,"prices":{"adults":%d,"children":%d,"seniors":%d},"deposit":%d}`,
		adults, children, seniors, deposit))
}

func date(value string) *types.Date {
	d, err := types.ParseDate(value)
	if err != nil {
		panic(err)
	}
	return &d
}

// tourDefinitions holds a default rate plus a heavier January season.
func tourDefinitions() []definitions.Definition {
	return []definitions.Definition{
		{
			ID:        uuid.New(),
			OwnerType: "tour",
			OwnerID:   "7",
			Tiers:     tiers.RawTiers{"1+": fixedTier(9900)},
		},
		{
			ID:        uuid.New(),
			OwnerType: "tour",
			OwnerID:   "7",
			StartsAt:  date("2015-01-01"),
			EndsAt:    date("2015-01-31"),
			Weight:    10,
			Tiers: tiers.RawTiers{
				"1..3":  fixedTier(12000),
				"4..10": categoryTier(5000, 2500, 4000, 1000),
				"11+":   fixedTier(30000),
			},
		},
	}
}

func newBookingCalculator(t *testing.T, record resource.Reader, opts ...Option) *Calculator {
	t.Helper()
	calc, err := New(testRegistry(t), "booking", record, opts...)
	require.NoError(t, err)
	return calc.WithDefinitions(tourDefinitions())
}
