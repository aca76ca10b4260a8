// Package definitions stores dated, weighted tier definitions per priceable
// and picks the one that applies on a given day.
package definitions

import (
	"fmt"
	"time"

	"github.com/angelmondragon/pricingdef/internal/tiers"
	"github.com/angelmondragon/pricingdef/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	IssuePartialInterval tiers.IssueKind = "partial_interval"
	IssueInvalidInterval tiers.IssueKind = "invalid_interval"
)

// Definition is one set of tiers owned by a priceable. It applies on every
// day of [StartsAt, EndsAt], or always when both dates are nil.
type Definition struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	OwnerType string         `gorm:"column:owner_type;not null" json:"owner_type"`
	OwnerID   string         `gorm:"column:owner_id;not null" json:"owner_id"`
	StartsAt  *types.Date    `gorm:"column:starts_at;type:date" json:"starts_at"`
	EndsAt    *types.Date    `gorm:"column:ends_at;type:date" json:"ends_at"`
	Weight    int            `gorm:"column:weight;not null" json:"weight"`
	Tiers     tiers.RawTiers `gorm:"column:tiers;type:jsonb;not null" json:"tiers"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Definition) TableName() string {
	return "pricing_definitions"
}

func (d *Definition) BeforeCreate(*gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

func (d Definition) Owner() types.OwnerRef {
	return types.OwnerRef{Type: d.OwnerType, ID: d.OwnerID}
}

// IsDefault reports whether the definition has no interval.
func (d Definition) IsDefault() bool {
	return d.StartsAt == nil && d.EndsAt == nil
}

// Interval returns the effective dates; ok is false unless both are set.
func (d Definition) Interval() (from, to types.Date, ok bool) {
	if d.StartsAt == nil || d.EndsAt == nil {
		return types.Date{}, types.Date{}, false
	}
	return *d.StartsAt, *d.EndsAt, true
}

// AvailableOn reports whether the definition applies on day.
func (d Definition) AvailableOn(day types.Date) bool {
	if d.IsDefault() {
		return true
	}
	from, to, ok := d.Interval()
	return ok && day.Within(from, to)
}

// Table compiles the tiers for resolution.
func (d Definition) Table(categories []string) (tiers.Table, error) {
	table, err := tiers.Compile(d.Tiers, categories)
	if err != nil {
		return tiers.Table{}, fmt.Errorf("definition %s: %w", d.ID, err)
	}
	return table, nil
}

// Validate checks the interval and the tiers against the owner's bounds.
// Interval issues come first in the report.
func Validate(d Definition, bounds tiers.Bounds) tiers.Report {
	report := tiers.Validate(d.Tiers, bounds)

	var interval []tiers.Issue
	switch {
	case (d.StartsAt == nil) != (d.EndsAt == nil):
		interval = append(interval, tiers.Issue{
			Kind:    IssuePartialInterval,
			Key:     "interval",
			Message: "starts_at and ends_at must be set together",
		})
	case d.StartsAt != nil && d.StartsAt.After(*d.EndsAt):
		interval = append(interval, tiers.Issue{
			Kind:    IssueInvalidInterval,
			Key:     "interval",
			Message: fmt.Sprintf("starts_at %s is after ends_at %s", d.StartsAt, d.EndsAt),
		})
	}
	if len(interval) > 0 {
		report.Issues = append(interval, report.Issues...)
	}
	return report
}
