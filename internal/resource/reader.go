// Package resource reads named attributes off the records being priced.
package resource

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/angelmondragon/pricingdef/pkg/types"
	"github.com/shopspring/decimal"
)

// Reader exposes a record's attributes by name. ok is false when the record
// has no such attribute.
type Reader interface {
	Read(attr string) (any, bool)
}

// Map is a Reader over decoded JSON or YAML. Nested objects are readable as sub-records.
type Map map[string]any

func (m Map) Read(attr string) (any, bool) {
	v, ok := m[attr]
	return v, ok
}

// Funcs binds attribute names to getters.
type Funcs map[string]func() any

func (f Funcs) Read(attr string) (any, bool) {
	fn, ok := f[attr]
	if !ok || fn == nil {
		return nil, false
	}
	return fn(), true
}

// Sub reads attr and returns it as a record.
func Sub(r Reader, attr string) (Reader, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.Read(attr)
	if !ok || v == nil {
		return nil, false
	}
	return AsReader(v)
}

// AsReader adapts v to a Reader when it is one already or a string-keyed map.
func AsReader(v any) (Reader, bool) {
	switch rec := v.(type) {
	case Reader:
		return rec, true
	case map[string]any:
		return Map(rec), true
	default:
		return nil, false
	}
}

// String reads attr as text. Numbers are formatted; other types are rejected.
func String(r Reader, attr string) (string, bool, error) {
	v, ok := r.Read(attr)
	if !ok || v == nil {
		return "", false, nil
	}
	switch s := v.(type) {
	case string:
		return s, true, nil
	case fmt.Stringer:
		return s.String(), true, nil
	}
	if n, err := Int(v); err == nil {
		return strconv.FormatInt(n, 10), true, nil
	}
	return "", true, fmt.Errorf("%s must be text, got %T", attr, v)
}

// Int converts v to an int64. Fractional and non-numeric values are rejected.
func Int(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		return uintToInt(uint64(n))
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		return uintToInt(n)
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	case json.Number:
		return decimalToInt(n.String())
	case decimal.Decimal:
		if !n.IsInteger() {
			return 0, fmt.Errorf("%s is not a whole number", n)
		}
		return n.IntPart(), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}

// Decimal converts v to an exact decimal. Non-numeric values are rejected.
func Decimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, nil
	case json.Number:
		return decimal.NewFromString(n.String())
	case float32:
		return decimal.NewFromFloat32(n), nil
	case float64:
		return decimal.NewFromFloat(n), nil
	}
	i, err := Int(v)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromInt(i), nil
}

// Bool reads attr as a boolean; absent or nil reads as false.
func Bool(r Reader, attr string) (bool, error) {
	v, ok := r.Read(attr)
	if !ok || v == nil {
		return false, nil
	}
	b, isBool := v.(bool)
	if !isBool {
		return false, fmt.Errorf("%s must be a boolean, got %T", attr, v)
	}
	return b, nil
}

// Date normalises a reference date. Text in YYYY-MM-DD form becomes a
// types.Date; anything else is returned unchanged for the caller to judge.
func Date(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	parsed, err := types.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return v
	}
	return parsed
}

// Counts reads a category to count mapping such as {"adults": 2, "children": 1}.
func Counts(v any) (map[string]int64, error) {
	var entries map[string]any
	switch m := v.(type) {
	case map[string]int64:
		out := make(map[string]int64, len(m))
		for k, n := range m {
			out[k] = n
		}
		return out, nil
	case map[string]int:
		out := make(map[string]int64, len(m))
		for k, n := range m {
			out[k] = int64(n)
		}
		return out, nil
	case Map:
		entries = m
	case map[string]any:
		entries = m
	default:
		return nil, fmt.Errorf("volume must be a mapping of category to count, got %T", v)
	}
	out := make(map[string]int64, len(entries))
	for k, raw := range entries {
		n, err := Int(raw)
		if err != nil {
			return nil, fmt.Errorf("volume %s: %w", k, err)
		}
		out[k] = n
	}
	return out, nil
}

func uintToInt(n uint64) (int64, error) {
	if n > math.MaxInt64 {
		return 0, fmt.Errorf("%d overflows int64", n)
	}
	return int64(n), nil
}

func floatToInt(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%v is not a whole number", f)
	}
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("%v overflows int64", f)
	}
	return int64(f), nil
}

func decimalToInt(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("%s is not a whole number", s)
	}
	return d.IntPart(), nil
}
