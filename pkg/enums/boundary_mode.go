package enums

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// BoundaryMode selects how the top tier of a definition is checked.
type BoundaryMode string

const (
	// BoundaryModeUnbounded requires the highest tier to be open ended ("N+").
	BoundaryModeUnbounded BoundaryMode = "unbounded"
	// BoundaryModeConfiguredMaximum lets a finite top tier through when it ends
	// exactly at the priceable's configured maximum.
	BoundaryModeConfiguredMaximum BoundaryMode = "configured_maximum"
)

var validBoundaryModes = []BoundaryMode{
	BoundaryModeUnbounded,
	BoundaryModeConfiguredMaximum,
}

// String implements fmt.Stringer.
func (b BoundaryMode) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BoundaryMode.
func (b BoundaryMode) IsValid() bool {
	return lo.Contains(validBoundaryModes, b)
}

// ParseBoundaryMode converts raw input into a BoundaryMode. Blank input yields the default.
func ParseBoundaryMode(value string) (BoundaryMode, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return BoundaryModeUnbounded, nil
	}
	mode := BoundaryMode(trimmed)
	if !mode.IsValid() {
		return "", fmt.Errorf("invalid boundary mode %q", value)
	}
	return mode, nil
}
