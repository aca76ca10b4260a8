package definitions

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/angelmondragon/pricingdef/pkg/types"
	"github.com/samber/lo"
)

// ErrInvalidArgument is returned when the reference date is not a date value.
var ErrInvalidArgument = errors.New("reference date must be a date")

// Selector picks the definition that applies on a reference date.
// The zero value uses the wall clock in UTC.
type Selector struct {
	now func() time.Time
	loc *time.Location
}

// NewSelector returns a selector whose "today" is taken in loc.
func NewSelector(loc *time.Location) Selector {
	return Selector{now: time.Now, loc: loc}
}

// WithClock replaces the wall clock, mostly for tests.
func (s Selector) WithClock(now func() time.Time) Selector {
	s.now = now
	return s
}

func (s Selector) location() *time.Location {
	if s.loc == nil {
		return time.UTC
	}
	return s.loc
}

func (s Selector) today() types.Date {
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	return types.DateOf(now().In(s.location()))
}

// ReferenceDate turns asOf into a calendar day. nil (or a nil pointer, or a
// zero date) means today; instants are read in the selector's location.
func (s Selector) ReferenceDate(asOf any) (types.Date, error) {
	switch v := asOf.(type) {
	case nil:
		return s.today(), nil
	case types.Date:
		if v.IsZero() {
			return s.today(), nil
		}
		return v, nil
	case *types.Date:
		if v == nil || v.IsZero() {
			return s.today(), nil
		}
		return *v, nil
	case time.Time:
		if v.IsZero() {
			return s.today(), nil
		}
		return types.DateOf(v.In(s.location())), nil
	case *time.Time:
		if v == nil || v.IsZero() {
			return s.today(), nil
		}
		return types.DateOf(v.In(s.location())), nil
	default:
		return types.Date{}, fmt.Errorf("%w, got %T", ErrInvalidArgument, asOf)
	}
}

// Available filters defs down to those applying on asOf, highest weight
// first. Equal weights keep their input order.
func (s Selector) Available(defs []Definition, asOf any) ([]Definition, error) {
	day, err := s.ReferenceDate(asOf)
	if err != nil {
		return nil, err
	}
	out := lo.Filter(defs, func(d Definition, _ int) bool { return d.AvailableOn(day) })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Weight > out[j].Weight })
	return out, nil
}

// Select returns the applicable definition, or nil when none is available.
func (s Selector) Select(defs []Definition, asOf any) (*Definition, error) {
	available, err := s.Available(defs, asOf)
	if err != nil || len(available) == 0 {
		return nil, err
	}
	return &available[0], nil
}
