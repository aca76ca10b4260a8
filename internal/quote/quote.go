package quote

import (
	"github.com/angelmondragon/pricingdef/pkg/money"
	"github.com/angelmondragon/pricingdef/pkg/types"
)

// Quote is the serialized result of a calculation.
type Quote struct {
	Pricing   Pricing                         `json:"pricing"`
	Request   RequestSummary                  `json:"request"`
	Modifiers map[string][]SerializedModifier `json:"modifiers"`
}

type Pricing struct {
	Fixed    bool                    `json:"fixed"`
	Deposit  money.Amount            `json:"deposit"`
	Currency string                  `json:"currency"`
	Prices   map[string]money.Amount `json:"prices"`
}

// RequestSummary echoes the inputs the quote was computed from.
type RequestSummary struct {
	IntervalStart   types.Date       `json:"interval_start"`
	OverallVolume   int64            `json:"overall_volume"`
	VolumeBreakdown map[string]int64 `json:"volume_breakdown"`
	PriceableType   string           `json:"priceable_type"`
	PriceableID     string           `json:"priceable_id"`
}

// Distributor lets a record decide which party receives which modifiers.
// Parties left out of the result get an empty list.
type Distributor interface {
	DistributeModifiers(parties []string, modifiers []Modifier) (map[string][]Modifier, error)
}
