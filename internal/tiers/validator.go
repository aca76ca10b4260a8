package tiers

import (
	"fmt"

	"github.com/angelmondragon/pricingdef/pkg/enums"
	"github.com/samber/lo"
)

type IssueKind string

const (
	IssueBlank                       IssueKind = "blank"
	IssueInvalidVolumeKey            IssueKind = "invalid_volume_key"
	IssueInvalidSchema               IssueKind = "invalid_schema"
	IssueOverlapping                 IssueKind = "overlapping"
	IssueInconsistent                IssueKind = "inconsistent"
	IssueInsufficientLowestBoundary  IssueKind = "insufficient_lowest_boundary"
	IssueInsufficientHighestBoundary IssueKind = "insufficient_highest_boundary"
)

// Issue is one reason a tier definition cannot be saved.
type Issue struct {
	Kind    IssueKind `json:"kind"`
	Key     string    `json:"key,omitempty"`
	Message string    `json:"message"`
}

// Report collects validation issues plus the offending ranges per kind.
type Report struct {
	Issues          []Issue                `json:"issues"`
	ErroneousRanges map[IssueKind][]string `json:"erroneous_ranges"`
}

func (r Report) Valid() bool {
	return len(r.Issues) == 0
}

// Has reports whether an issue of the given kind was raised.
func (r Report) Has(kind IssueKind) bool {
	return lo.ContainsBy(r.Issues, func(issue Issue) bool { return issue.Kind == kind })
}

// Kinds lists the distinct issue kinds in the order they were first raised.
func (r Report) Kinds() []IssueKind {
	return lo.Uniq(lo.Map(r.Issues, func(issue Issue, _ int) IssueKind { return issue.Kind }))
}

func (r *Report) add(kind IssueKind, key, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{Kind: kind, Key: key, Message: fmt.Sprintf(format, args...)})
}

func (r *Report) flag(kind IssueKind, ranges ...VolumeRange) {
	if r.ErroneousRanges == nil {
		r.ErroneousRanges = map[IssueKind][]string{}
	}
	for _, rng := range ranges {
		if !lo.Contains(r.ErroneousRanges[kind], rng.String()) {
			r.ErroneousRanges[kind] = append(r.ErroneousRanges[kind], rng.String())
		}
	}
}

// Bounds carries the owning priceable's volume limits.
type Bounds struct {
	// Minimum is the first volume that must be covered; nil means 1.
	Minimum *int64
	// Maximum is only consulted in BoundaryModeConfiguredMaximum.
	Maximum    *int64
	Mode       enums.BoundaryMode
	Categories []string
}

func (b Bounds) minimum() int64 {
	if b.Minimum == nil {
		return 1
	}
	return *b.Minimum
}

type keyedRange struct {
	key string
	rng VolumeRange
}

// Validate checks raw tiers for parse errors, schema errors, partition errors
// and boundary errors. It never stops at the first problem.
func Validate(raw RawTiers, bounds Bounds) Report {
	report := Report{Issues: []Issue{}, ErroneousRanges: map[IssueKind][]string{}}
	if len(raw) == 0 {
		report.add(IssueBlank, "", "at least one tier is required")
		return report
	}

	parsed := make([]keyedRange, 0, len(raw))
	for _, key := range raw.Keys() {
		rng, err := ParseRange(key)
		if err != nil {
			report.add(IssueInvalidVolumeKey, key, "%q is not a volume range (expected \"A..B\" or \"N+\")", key)
			continue
		}
		if _, err := ParseSpec(raw[key], bounds.Categories); err != nil {
			report.add(IssueInvalidSchema, key, "%s", err.Error())
		}
		parsed = append(parsed, keyedRange{key: key, rng: rng})
	}
	if len(parsed) == 0 {
		return report
	}

	sortAscending(parsed, func(k keyedRange) VolumeRange { return k.rng })
	checkPartition(&report, parsed)
	checkBoundaries(&report, parsed, bounds)
	return report
}

// checkPartition compares each range against the furthest-reaching range before
// it, so an early wide range is caught against every later range it swallows.
func checkPartition(report *Report, parsed []keyedRange) {
	reach := parsed[0]
	for _, next := range parsed[1:] {
		switch {
		case next.rng.begin <= reach.rng.end:
			report.add(IssueOverlapping, next.key, "%s overlaps %s", next.rng, reach.rng)
			report.flag(IssueOverlapping, reach.rng, next.rng)
		case next.rng.begin > reach.rng.end+1:
			report.add(IssueInconsistent, next.key, "volumes %d..%d are not covered between %s and %s",
				reach.rng.end+1, next.rng.begin-1, reach.rng, next.rng)
			report.flag(IssueInconsistent, reach.rng, next.rng)
		}
		if next.rng.end > reach.rng.end {
			reach = next
		}
	}
}

func checkBoundaries(report *Report, parsed []keyedRange, bounds Bounds) {
	lowest := parsed[0]
	if lowest.rng.begin != bounds.minimum() {
		report.add(IssueInsufficientLowestBoundary, lowest.key, "lowest tier must begin at %d, got %s", bounds.minimum(), lowest.rng)
		report.flag(IssueInsufficientLowestBoundary, lowest.rng)
	}

	highest := lo.MaxBy(parsed, func(a, b keyedRange) bool { return a.rng.end > b.rng.end })
	if highest.rng.unbounded {
		return
	}
	if bounds.Mode == enums.BoundaryModeConfiguredMaximum && bounds.Maximum != nil {
		if highest.rng.end != *bounds.Maximum {
			report.add(IssueInsufficientHighestBoundary, highest.key, "highest tier must end at %d, got %s", *bounds.Maximum, highest.rng)
			report.flag(IssueInsufficientHighestBoundary, highest.rng)
		}
		return
	}
	report.add(IssueInsufficientHighestBoundary, highest.key, "highest tier must be open ended (\"N+\"), got %s", highest.rng)
	report.flag(IssueInsufficientHighestBoundary, highest.rng)
}
