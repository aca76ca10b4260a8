// Package setup holds the static pricing configuration: which record types are
// priceable, which are modifiers, and how each calculator resource is wired.
// A Registry is built once at startup and only read afterwards.
package setup

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/angelmondragon/pricingdef/internal/tiers"
	"github.com/angelmondragon/pricingdef/pkg/enums"
	pkgerrors "github.com/angelmondragon/pricingdef/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// SourceSelf makes a party read its currency and title from the calculator resource itself.
const SourceSelf = "self"

// Document is the declarative form of the setup, as found in the YAML file.
type Document struct {
	Priceables  map[string]Priceable  `yaml:"priceables"`
	Modifiers   map[string]Modifier   `yaml:"modifiers"`
	Calculators map[string]Calculator `yaml:"calculators"`
}

// Priceable configures an entity type that owns pricing definitions.
type Priceable struct {
	Currency        ValueSource        `yaml:"currency"`
	Minimum         string             `yaml:"minimum"`
	Maximum         string             `yaml:"maximum"`
	AddonFor        string             `yaml:"addon_for"`
	Categories      []string           `yaml:"categories"`
	HighestBoundary enums.BoundaryMode `yaml:"highest_boundary"`

	name string
}

// Modifier configures a record type that adjusts a quote.
type Modifier struct {
	Weight      *int        `yaml:"weight"`
	Label       ValueSource `yaml:"label"`
	Description ValueSource `yaml:"description"`

	kind string
}

// Calculator configures how a resource type is quoted.
type Calculator struct {
	Priceable       string        `yaml:"priceable"`
	PriceableAddons []string      `yaml:"priceable_addons"`
	Volume          string        `yaml:"volume"`
	IntervalStart   string        `yaml:"interval_start"`
	Modifiers       []ModifierRef `yaml:"modifiers"`
	Parties         []Party       `yaml:"parties"`

	resourceType string
}

// ModifierRef names the resource attribute holding a modifier record and the
// modifier kind that record belongs to. A bare YAML string sets both.
type ModifierRef struct {
	Attribute string `yaml:"attribute"`
	Kind      string `yaml:"kind"`
}

// Party describes one transacting side of a quote.
type Party struct {
	Name     string          `yaml:"name"`
	Source   string          `yaml:"source"`
	Currency ValueSource     `yaml:"currency"`
	Title    ValueSource     `yaml:"title"`
	Role     enums.PartyRole `yaml:"role"`
}

// Registry is the validated, read-only setup.
type Registry struct {
	priceables  map[string]Priceable
	modifiers   map[string]Modifier
	calculators map[string]Calculator
}

// Build validates doc and returns the registry. Every problem found is
// reported; the returned error combines them with multierr and each one
// carries pkgerrors.CodeConfig.
func Build(doc Document) (*Registry, error) {
	reg := &Registry{
		priceables:  make(map[string]Priceable, len(doc.Priceables)),
		modifiers:   make(map[string]Modifier, len(doc.Modifiers)),
		calculators: make(map[string]Calculator, len(doc.Calculators)),
	}

	var errs error
	for _, name := range sortedKeys(doc.Priceables) {
		p, err := buildPriceable(name, doc.Priceables[name])
		errs = multierr.Append(errs, err)
		reg.priceables[name] = p
	}
	for _, name := range sortedKeys(reg.priceables) {
		p := reg.priceables[name]
		if p.AddonFor == "" {
			continue
		}
		if base, ok := reg.priceables[p.AddonFor]; !ok || base.IsAddon() {
			errs = multierr.Append(errs, configErr("priceable %s: addon_for %q must name a primary priceable", name, p.AddonFor))
		}
	}
	for _, kind := range sortedKeys(doc.Modifiers) {
		m, err := buildModifier(kind, doc.Modifiers[kind])
		errs = multierr.Append(errs, err)
		reg.modifiers[kind] = m
	}
	for _, resourceType := range sortedKeys(doc.Calculators) {
		c, err := reg.buildCalculator(resourceType, doc.Calculators[resourceType])
		errs = multierr.Append(errs, err)
		reg.calculators[resourceType] = c
	}
	if errs != nil {
		return nil, errs
	}
	return reg, nil
}

func buildPriceable(name string, p Priceable) (Priceable, error) {
	p.name = name
	p.Categories = slices.Clone(p.Categories)

	var errs error
	if p.Currency.IsZero() {
		errs = multierr.Append(errs, configErr("priceable %s: currency is required", name))
	}
	mode, err := enums.ParseBoundaryMode(string(p.HighestBoundary))
	if err != nil {
		errs = multierr.Append(errs, configErr("priceable %s: %v", name, err))
	}
	p.HighestBoundary = mode
	if mode == enums.BoundaryModeConfiguredMaximum && p.Maximum == "" {
		errs = multierr.Append(errs, configErr("priceable %s: highest_boundary %s needs a maximum attribute", name, mode))
	}
	if len(p.Categories) > 0 {
		if dupes := lo.FindDuplicates(p.Categories); len(dupes) > 0 {
			errs = multierr.Append(errs, configErr("priceable %s: duplicate categories %v", name, dupes))
		}
		if lo.Contains(p.Categories, tiers.FixedCategory) {
			errs = multierr.Append(errs, configErr("priceable %s: %q is reserved and cannot be a category", name, tiers.FixedCategory))
		}
	}
	return p, errs
}

func buildModifier(kind string, m Modifier) (Modifier, error) {
	m.kind = kind
	var errs error
	if m.Weight == nil {
		errs = multierr.Append(errs, configErr("modifier %s: weight is required", kind))
	}
	if m.Label.IsZero() {
		errs = multierr.Append(errs, configErr("modifier %s: label is required", kind))
	}
	if m.Description.IsZero() {
		errs = multierr.Append(errs, configErr("modifier %s: description is required", kind))
	}
	return m, errs
}

func (r *Registry) buildCalculator(resourceType string, c Calculator) (Calculator, error) {
	c.resourceType = resourceType
	c.PriceableAddons = slices.Clone(c.PriceableAddons)
	c.Modifiers = slices.Clone(c.Modifiers)
	c.Parties = slices.Clone(c.Parties)

	var errs error
	missing := lo.Filter([]string{"priceable", "volume", "interval_start"}, func(opt string, _ int) bool {
		switch opt {
		case "priceable":
			return c.Priceable == ""
		case "volume":
			return c.Volume == ""
		default:
			return c.IntervalStart == ""
		}
	})
	if len(missing) > 0 {
		errs = multierr.Append(errs, configErr("calculator %s: missing required attributes %s", resourceType, strings.Join(missing, ", ")))
	}
	if c.Priceable != "" {
		if p, ok := r.priceables[c.Priceable]; !ok || p.IsAddon() {
			errs = multierr.Append(errs, configErr("calculator %s: priceable %q is not registered or is an addon for another priceable", resourceType, c.Priceable))
		}
	}
	for _, addon := range c.PriceableAddons {
		if p, ok := r.priceables[addon]; !ok || p.AddonFor != c.Priceable {
			errs = multierr.Append(errs, configErr("calculator %s: %q is not an addon for %s", resourceType, addon, c.Priceable))
		}
	}

	for i, ref := range c.Modifiers {
		if ref.Attribute == "" {
			errs = multierr.Append(errs, configErr("calculator %s: modifier %d needs an attribute", resourceType, i))
			continue
		}
		if ref.Kind == "" {
			ref.Kind = ref.Attribute
			c.Modifiers[i] = ref
		}
		if _, ok := r.modifiers[ref.Kind]; !ok {
			errs = multierr.Append(errs, configErr("calculator %s: modifier kind %q is not registered", resourceType, ref.Kind))
		}
	}

	if len(c.Parties) == 0 {
		errs = multierr.Append(errs, configErr("calculator %s: at least one party is required", resourceType))
	}
	seen := map[string]bool{}
	for i, party := range c.Parties {
		if party.Name == "" {
			errs = multierr.Append(errs, configErr("calculator %s: party %d needs a name", resourceType, i))
			continue
		}
		if seen[party.Name] {
			errs = multierr.Append(errs, configErr("calculator %s: party %s is declared twice", resourceType, party.Name))
		}
		seen[party.Name] = true
		role, err := enums.ParsePartyRole(string(party.Role))
		if err != nil {
			errs = multierr.Append(errs, configErr("calculator %s: party %s: %v", resourceType, party.Name, err))
		}
		c.Parties[i].Role = role
		if party.Currency.IsZero() {
			errs = multierr.Append(errs, configErr("calculator %s: party %s needs a currency", resourceType, party.Name))
		}
	}
	return c, errs
}

func configErr(format string, args ...any) error {
	return pkgerrors.New(pkgerrors.CodeConfig, fmt.Sprintf(format, args...))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}

func (m *ModifierRef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*m = ModifierRef{Attribute: node.Value, Kind: node.Value}
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: modifier must be a name or {attribute, kind}", node.Line)
	}
	for i := 0; i < len(node.Content); i += 2 {
		switch key := node.Content[i].Value; key {
		case "attribute":
			m.Attribute = node.Content[i+1].Value
		case "kind":
			m.Kind = node.Content[i+1].Value
		default:
			return fmt.Errorf("line %d: field %s not found in modifier", node.Content[i].Line, key)
		}
	}
	return nil
}

// Priceable returns the configuration for a priceable type.
func (r *Registry) Priceable(name string) (Priceable, bool) {
	p, ok := r.priceables[name]
	return p, ok
}

// Modifier returns the configuration for a modifier kind.
func (r *Registry) Modifier(kind string) (Modifier, bool) {
	m, ok := r.modifiers[kind]
	return m, ok
}

// Calculator returns the calculator wiring for a resource type.
func (r *Registry) Calculator(resourceType string) (Calculator, bool) {
	c, ok := r.calculators[resourceType]
	return c, ok
}

// PartyNames lists a resource type's party names in declaration order.
func (r *Registry) PartyNames(resourceType string) []string {
	return r.calculators[resourceType].PartyNames()
}

func (r *Registry) PriceableTypes() []string {
	return sortedKeys(r.priceables)
}

func (r *Registry) ResourceTypes() []string {
	return sortedKeys(r.calculators)
}

func (p Priceable) Name() string {
	return p.name
}

func (p Priceable) IsAddon() bool {
	return p.AddonFor != ""
}

// CategoryList returns the non-fixed price categories, defaulting to adults and children.
func (p Priceable) CategoryList() []string {
	if len(p.Categories) == 0 {
		return slices.Clone(tiers.DefaultCategories)
	}
	return slices.Clone(p.Categories)
}

func (m Modifier) Kind() string {
	return m.kind
}

func (m Modifier) WeightValue() int {
	if m.Weight == nil {
		return 0
	}
	return *m.Weight
}

func (c Calculator) ResourceType() string {
	return c.resourceType
}

func (c Calculator) PartyNames() []string {
	return lo.Map(c.Parties, func(p Party, _ int) string { return p.Name })
}

// SourceAttr is the sub-record attribute a party reads from. Empty means the
// calculator resource itself.
func (p Party) SourceAttr() string {
	switch p.Source {
	case SourceSelf:
		return ""
	case "":
		return p.Name
	default:
		return p.Source
	}
}
