// Package quote assembles multi-party price quotes for calculator resources.
package quote

import (
	"fmt"

	"github.com/angelmondragon/pricingdef/internal/definitions"
	"github.com/angelmondragon/pricingdef/internal/resource"
	"github.com/angelmondragon/pricingdef/internal/setup"
	pkgerrors "github.com/angelmondragon/pricingdef/pkg/errors"
	"github.com/angelmondragon/pricingdef/pkg/types"
	"github.com/samber/lo"
)

// Option customizes a Calculator.
type Option func(*Calculator)

// WithSelector replaces the default UTC selector.
func WithSelector(sel definitions.Selector) Option {
	return func(c *Calculator) {
		c.selector = sel
	}
}

// Calculator prices one resource record. It performs no I/O: the caller loads
// the priceable's definitions and hands them over with WithDefinitions.
type Calculator struct {
	registry    *setup.Registry
	config      setup.Calculator
	priceable   setup.Priceable
	record      resource.Reader
	definitions []definitions.Definition
	selector    definitions.Selector
}

// Priceable is the entity a resource is priced against.
type Priceable struct {
	Ref    types.OwnerRef
	Record resource.Reader
	Config setup.Priceable
}

// New binds the calculator configured for resourceType to record.
func New(registry *setup.Registry, resourceType string, record resource.Reader, opts ...Option) (*Calculator, error) {
	if registry == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConfig, "pricing setup registry is required")
	}
	cfg, ok := registry.Calculator(resourceType)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidArgument, fmt.Sprintf("no calculator is configured for resource type %q", resourceType))
	}
	if record == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidArgument, "resource is required")
	}
	priceable, _ := registry.Priceable(cfg.Priceable)
	c := &Calculator{
		registry:  registry,
		config:    cfg,
		priceable: priceable,
		record:    record,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WithDefinitions returns a copy of c that selects among defs.
func (c *Calculator) WithDefinitions(defs []definitions.Definition) *Calculator {
	clone := *c
	clone.definitions = defs
	return &clone
}

func (c *Calculator) ResourceType() string {
	return c.config.ResourceType()
}

func (c *Calculator) Record() resource.Reader {
	return c.record
}

// PartyNames lists the configured parties in declaration order.
func (c *Calculator) PartyNames() []string {
	return c.config.PartyNames()
}

// Priceable reads the priceable sub-record. It must carry an id.
func (c *Calculator) Priceable() (Priceable, error) {
	rec, ok := resource.Sub(c.record, c.config.Priceable)
	if !ok {
		return Priceable{}, fmt.Errorf("%w: %s is missing or not a record", ErrInvalidResource, c.config.Priceable)
	}
	id, ok, err := resource.String(rec, "id")
	if err != nil {
		return Priceable{}, fmt.Errorf("%w: %s: %v", ErrInvalidResource, c.config.Priceable, err)
	}
	ref := types.NewOwnerRef(c.config.Priceable, id)
	if !ok || ref.ID == "" {
		return Priceable{}, fmt.Errorf("%w: %s id is required", ErrInvalidResource, c.config.Priceable)
	}
	return Priceable{Ref: ref, Record: rec, Config: c.priceable}, nil
}

// Volume returns the per-category volume breakdown.
func (c *Calculator) Volume() (map[string]int64, error) {
	raw, ok := c.record.Read(c.config.Volume)
	if !ok || raw == nil {
		return nil, fmt.Errorf("%w: %s is required", ErrInvalidResource, c.config.Volume)
	}
	counts, err := resource.Counts(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResource, err)
	}
	for category, n := range counts {
		if n < 0 {
			return nil, fmt.Errorf("%w: volume %s must not be negative", ErrInvalidResource, category)
		}
	}
	return counts, nil
}

// OverallVolume sums the volume across categories.
func (c *Calculator) OverallVolume() (int64, error) {
	counts, err := c.Volume()
	if err != nil {
		return 0, err
	}
	return lo.Sum(lo.Values(counts)), nil
}

// IntervalStart is the reference date used to pick a definition. An absent
// value means today in the selector's location.
func (c *Calculator) IntervalStart() (types.Date, error) {
	raw, _ := c.record.Read(c.config.IntervalStart)
	return c.selector.ReferenceDate(resource.Date(raw))
}

// PricingDefinition picks the definition that applies on IntervalStart.
func (c *Calculator) PricingDefinition() (*definitions.Definition, error) {
	day, err := c.IntervalStart()
	if err != nil {
		return nil, err
	}
	def, err := c.selector.Select(c.definitions, day)
	if err != nil {
		return nil, err
	}
	if def == nil {
		return nil, fmt.Errorf("%w on %s", ErrNoApplicablePricing, day)
	}
	return def, nil
}

// PricingRule resolves the tier covering the overall volume.
func (c *Calculator) PricingRule() (PricingRule, error) {
	def, err := c.PricingDefinition()
	if err != nil {
		return PricingRule{}, err
	}
	table, err := def.Table(c.priceable.CategoryList())
	if err != nil {
		return PricingRule{}, fmt.Errorf("definition %s: %w", def.ID, err)
	}
	volume, err := c.OverallVolume()
	if err != nil {
		return PricingRule{}, err
	}
	tier, ok := table.Resolve(volume)
	if !ok {
		return PricingRule{}, fmt.Errorf("%w: no tier covers volume %d", ErrNoApplicablePricing, volume)
	}
	priceable, err := c.Priceable()
	if err != nil {
		return PricingRule{}, err
	}
	currency, err := c.priceable.ResolveCurrency(priceable.Record)
	if err != nil {
		return PricingRule{}, fmt.Errorf("%w: %v", ErrInvalidResource, err)
	}
	return PricingRule{tier: tier, currency: currency, definition: def}, nil
}

// Parties materializes every configured party against the record.
func (c *Calculator) Parties() ([]Party, error) {
	parties := make([]Party, 0, len(c.config.Parties))
	for _, cfg := range c.config.Parties {
		party, err := newParty(cfg, c.record)
		if err != nil {
			return nil, err
		}
		parties = append(parties, party)
	}
	return parties, nil
}

// Modifiers reads each configured modifier attribute, skipping absent ones.
func (c *Calculator) Modifiers() ([]Modifier, error) {
	out := make([]Modifier, 0, len(c.config.Modifiers))
	for _, ref := range c.config.Modifiers {
		raw, ok := c.record.Read(ref.Attribute)
		if !ok || raw == nil {
			continue
		}
		rec, ok := resource.AsReader(raw)
		if !ok {
			return nil, fmt.Errorf("%w %s: expected a record, got %T", ErrInvalidModifier, ref.Attribute, raw)
		}
		cfg, _ := c.registry.Modifier(ref.Kind)
		m, err := newModifier(ref.Attribute, cfg, rec)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// PartiesModifiers maps every party name to its modifiers. A record that
// implements Distributor decides the split; otherwise each party gets all of them.
func (c *Calculator) PartiesModifiers() (map[string][]Modifier, error) {
	modifiers, err := c.Modifiers()
	if err != nil {
		return nil, err
	}
	names := c.PartyNames()
	out := make(map[string][]Modifier, len(names))
	for _, name := range names {
		out[name] = []Modifier{}
	}

	distributor, ok := c.record.(Distributor)
	if !ok {
		for _, name := range names {
			out[name] = append(out[name], modifiers...)
		}
		return out, nil
	}
	split, err := distributor.DistributeModifiers(names, modifiers)
	if err != nil {
		return nil, fmt.Errorf("%w: distribute modifiers: %v", ErrInvalidResource, err)
	}
	for name, list := range split {
		if _, known := out[name]; !known {
			return nil, fmt.Errorf("%w: modifiers distributed to unknown party %s", ErrInvalidResource, name)
		}
		out[name] = append(out[name], list...)
	}
	return out, nil
}

// SerializedPartiesModifiers is PartiesModifiers with each modifier serialized.
func (c *Calculator) SerializedPartiesModifiers() (map[string][]SerializedModifier, error) {
	byParty, err := c.PartiesModifiers()
	if err != nil {
		return nil, err
	}
	return lo.MapValues(byParty, func(list []Modifier, _ string) []SerializedModifier {
		return lo.Map(list, func(m Modifier, _ int) SerializedModifier { return m.Serialized() })
	}), nil
}

// Serialized builds the quote.
func (c *Calculator) Serialized() (Quote, error) {
	rule, err := c.PricingRule()
	if err != nil {
		return Quote{}, err
	}
	day, err := c.IntervalStart()
	if err != nil {
		return Quote{}, err
	}
	volume, err := c.Volume()
	if err != nil {
		return Quote{}, err
	}
	priceable, err := c.Priceable()
	if err != nil {
		return Quote{}, err
	}
	modifiers, err := c.SerializedPartiesModifiers()
	if err != nil {
		return Quote{}, err
	}
	return Quote{
		Pricing: Pricing{
			Fixed:    rule.Fixed(),
			Deposit:  rule.Deposit(),
			Currency: rule.Currency(),
			Prices:   rule.Prices(),
		},
		Request: RequestSummary{
			IntervalStart:   day,
			OverallVolume:   lo.Sum(lo.Values(volume)),
			VolumeBreakdown: volume,
			PriceableType:   priceable.Ref.Type,
			PriceableID:     priceable.Ref.ID,
		},
		Modifiers: modifiers,
	}, nil
}
