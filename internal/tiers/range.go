package tiers

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// ErrMalformedRangeKey is returned for any tier key outside the two accepted grammars.
var ErrMalformedRangeKey = errors.New("malformed volume range key")

var (
	openKeyRe   = regexp.MustCompile(`^(0|[1-9][0-9]*)\+$`)
	closedKeyRe = regexp.MustCompile(`^(0|[1-9][0-9]*)\.\.(0|[1-9][0-9]*)$`)
)

// VolumeRange is the integer interval [begin, end]; end may be unbounded.
type VolumeRange struct {
	begin     int64
	end       int64
	unbounded bool
}

// Closed returns the range begin..end.
func Closed(begin, end int64) VolumeRange {
	return VolumeRange{begin: begin, end: end}
}

// From returns the range begin..+inf.
func From(begin int64) VolumeRange {
	return VolumeRange{begin: begin, end: math.MaxInt64, unbounded: true}
}

// ParseRange accepts "N+" and "A..B" (A <= B, no sign, no leading zeros, no spaces).
func ParseRange(key string) (VolumeRange, error) {
	if m := openKeyRe.FindStringSubmatch(key); m != nil {
		begin, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return VolumeRange{}, fmt.Errorf("%w: %q", ErrMalformedRangeKey, key)
		}
		return From(begin), nil
	}
	if m := closedKeyRe.FindStringSubmatch(key); m != nil {
		begin, errBegin := strconv.ParseInt(m[1], 10, 64)
		end, errEnd := strconv.ParseInt(m[2], 10, 64)
		if errBegin != nil || errEnd != nil || begin > end {
			return VolumeRange{}, fmt.Errorf("%w: %q", ErrMalformedRangeKey, key)
		}
		return Closed(begin, end), nil
	}
	return VolumeRange{}, fmt.Errorf("%w: %q", ErrMalformedRangeKey, key)
}

func (r VolumeRange) Begin() int64 {
	return r.begin
}

// End returns the last covered volume; math.MaxInt64 when unbounded.
func (r VolumeRange) End() int64 {
	return r.end
}

func (r VolumeRange) Unbounded() bool {
	return r.unbounded
}

func (r VolumeRange) Covers(volume int64) bool {
	return volume >= r.begin && volume <= r.end
}

func (r VolumeRange) Equal(other VolumeRange) bool {
	return r == other
}

// String renders the canonical key: "A..B" or "N+".
func (r VolumeRange) String() string {
	if r.unbounded {
		return strconv.FormatInt(r.begin, 10) + "+"
	}
	return strconv.FormatInt(r.begin, 10) + ".." + strconv.FormatInt(r.end, 10)
}
