package tiers

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Tier pairs a volume band with its rate.
type Tier struct {
	Range VolumeRange
	Spec  PricingSpec
}

// Table is a compiled tier definition, ordered ascending by range begin.
type Table struct {
	tiers []Tier
}

// Compile parses every key and value of raw. It does not check the partition; run Validate for that.
func Compile(raw RawTiers, categories []string) (Table, error) {
	out := make([]Tier, 0, len(raw))
	for _, key := range raw.Keys() {
		r, err := ParseRange(key)
		if err != nil {
			return Table{}, err
		}
		spec, err := ParseSpec(raw[key], categories)
		if err != nil {
			return Table{}, fmt.Errorf("tier %s: %w", key, err)
		}
		out = append(out, Tier{Range: r, Spec: spec})
	}
	return NewTable(out...), nil
}

// NewTable builds a table from already parsed tiers.
func NewTable(entries ...Tier) Table {
	sorted := append([]Tier(nil), entries...)
	sortAscending(sorted, func(t Tier) VolumeRange { return t.Range })
	return Table{tiers: sorted}
}

func sortAscending[T any](items []T, rangeOf func(T) VolumeRange) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := rangeOf(items[i]), rangeOf(items[j])
		if a.begin != b.begin {
			return a.begin < b.begin
		}
		return a.end < b.end
	})
}

// Tiers returns a copy of the ordered tiers.
func (t Table) Tiers() []Tier {
	return append([]Tier(nil), t.tiers...)
}

func (t Table) Len() int {
	return len(t.tiers)
}

// Resolve returns the tier covering volume. Tiers are tried by descending
// begin, and among equal begins the wider range wins.
func (t Table) Resolve(volume int64) (Tier, bool) {
	for i := len(t.tiers) - 1; i >= 0; i-- {
		if t.tiers[i].Range.Covers(volume) {
			return t.tiers[i], true
		}
	}
	return Tier{}, false
}

// Encode renders the table back to its persisted form.
func (t Table) Encode() (RawTiers, error) {
	out := make(RawTiers, len(t.tiers))
	for _, tier := range t.tiers {
		payload, err := json.Marshal(tier.Spec)
		if err != nil {
			return nil, fmt.Errorf("encode tier %s: %w", tier.Range, err)
		}
		out[tier.Range.String()] = payload
	}
	return out, nil
}
