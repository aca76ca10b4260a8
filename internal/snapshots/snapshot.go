// Package snapshots stores the quotes issued for calculator resources.
package snapshots

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/angelmondragon/pricingdef/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document is a JSON payload persisted verbatim.
type Document json.RawMessage

// Value stores the document as JSON text.
func (d Document) Value() (driver.Value, error) {
	if len(d) == 0 {
		return "null", nil
	}
	return string(d), nil
}

// Scan reads JSON text or bytes.
func (d *Document) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*d = nil
	case []byte:
		*d = append(Document(nil), v...)
	case string:
		*d = Document(v)
	default:
		return fmt.Errorf("unsupported document type %T", value)
	}
	return nil
}

func (d Document) MarshalJSON() ([]byte, error) {
	if len(d) == 0 {
		return []byte("null"), nil
	}
	return d, nil
}

func (d *Document) UnmarshalJSON(data []byte) error {
	*d = append(Document(nil), data...)
	return nil
}

// Snapshot is a quote recorded for a resource. ResourceID is cleared when the
// resource goes away; the quote itself is kept.
type Snapshot struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ResourceType  string     `gorm:"column:resource_type;not null" json:"resource_type"`
	ResourceID    *string    `gorm:"column:resource_id" json:"resource_id"`
	PriceableType string     `gorm:"column:priceable_type;not null" json:"priceable_type"`
	PriceableID   string     `gorm:"column:priceable_id;not null" json:"priceable_id"`
	DefinitionID  *uuid.UUID `gorm:"column:definition_id;type:uuid" json:"definition_id"`
	OverallVolume int64      `gorm:"column:overall_volume;not null" json:"overall_volume"`
	Currency      string     `gorm:"column:currency;not null" json:"currency"`
	Payload       Document   `gorm:"column:payload;type:jsonb;not null" json:"payload"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Snapshot) TableName() string {
	return "quote_snapshots"
}

func (s *Snapshot) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Resource returns the resource reference, or false once detached.
func (s Snapshot) Resource() (types.OwnerRef, bool) {
	if s.ResourceID == nil {
		return types.OwnerRef{}, false
	}
	return types.NewOwnerRef(s.ResourceType, *s.ResourceID), true
}
