package tiers

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

// FixedCategory is the single price key of a flat-rate tier.
const FixedCategory = "fixed"

// DefaultCategories is the category set used when a priceable declares none.
var DefaultCategories = []string{"adults", "children"}

// PricingSpec is the rate of one tier. Amounts are minor currency units.
type PricingSpec struct {
	Fixed   bool             `json:"fixed"`
	Prices  map[string]int64 `json:"prices" validate:"required,min=1,dive,keys,required,endkeys,gte=0"`
	Deposit int64            `json:"deposit" validate:"gte=0"`
}

// specDocument mirrors the wire shape before integer checks.
type specDocument struct {
	Fixed   *bool          `json:"fixed" validate:"required"`
	Prices  map[string]any `json:"prices" validate:"required"`
	Deposit any            `json:"deposit" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// ParseSpec decodes one tier value and checks it against the allowed price shapes.
func ParseSpec(raw json.RawMessage, categories []string) (PricingSpec, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	decoder.DisallowUnknownFields()

	var doc specDocument
	if err := decoder.Decode(&doc); err != nil {
		return PricingSpec{}, fmt.Errorf("must be an object with fixed, prices and deposit: %w", err)
	}
	if err := validate.Struct(doc); err != nil {
		return PricingSpec{}, describeValidation(err)
	}

	spec := PricingSpec{Fixed: *doc.Fixed, Prices: make(map[string]int64, len(doc.Prices))}
	deposit, err := asInteger(doc.Deposit)
	if err != nil {
		return PricingSpec{}, fmt.Errorf("deposit %w", err)
	}
	spec.Deposit = deposit
	for category, value := range doc.Prices {
		amount, err := asInteger(value)
		if err != nil {
			return PricingSpec{}, fmt.Errorf("prices.%s %w", category, err)
		}
		spec.Prices[category] = amount
	}

	if err := validate.Struct(spec); err != nil {
		return PricingSpec{}, describeValidation(err)
	}
	if err := checkShape(spec, categories); err != nil {
		return PricingSpec{}, err
	}
	return spec, nil
}

func asInteger(value any) (int64, error) {
	number, ok := value.(json.Number)
	if !ok {
		return 0, fmt.Errorf("must be an integer, got %T", value)
	}
	amount, err := strconv.ParseInt(number.String(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("must be an integer, got %s", number)
	}
	return amount, nil
}

func checkShape(spec PricingSpec, categories []string) error {
	if len(categories) == 0 {
		categories = DefaultCategories
	}
	keys := lo.Keys(spec.Prices)
	sort.Strings(keys)

	if len(keys) == 1 && keys[0] == FixedCategory {
		if !spec.Fixed {
			return errors.New("prices has the fixed shape but fixed is false")
		}
		return nil
	}
	expected := lo.Uniq(categories)
	sort.Strings(expected)
	if !slices.Equal(keys, expected) {
		return fmt.Errorf("prices must have either the key %q or exactly %s", FixedCategory, strings.Join(expected, ", "))
	}
	if spec.Fixed {
		return errors.New("fixed is true but prices are per category")
	}
	return nil
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := lo.Map(verrs, func(fe validator.FieldError, _ int) string {
		_, field, _ := strings.Cut(fe.Namespace(), ".")
		switch fe.Tag() {
		case "required":
			return field + " is required"
		case "min":
			return field + " must not be empty"
		case "gte":
			return field + " must not be negative"
		}
		return field + " is invalid"
	})
	return errors.New(strings.Join(msgs, "; "))
}

// RawTiers is the persisted form: tier key to pricing spec JSON.
type RawTiers map[string]json.RawMessage

// Keys returns the tier keys in lexical order.
func (r RawTiers) Keys() []string {
	keys := lo.Keys(r)
	sort.Strings(keys)
	return keys
}

// Value serializes the tiers to JSON.
func (r RawTiers) Value() (driver.Value, error) {
	if r == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r)
}

// Scan decodes a JSON column into the tiers map.
func (r *RawTiers) Scan(value any) error {
	if value == nil {
		*r = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported scan type %T", value)
	}
	var decoded RawTiers
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*r = decoded
	return nil
}
