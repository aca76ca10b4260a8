package types

import (
	"fmt"
	"strings"
)

// OwnerRef points at a record of any registered type by type tag and opaque id.
type OwnerRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// NewOwnerRef trims both parts.
func NewOwnerRef(ownerType, id string) OwnerRef {
	return OwnerRef{Type: strings.TrimSpace(ownerType), ID: strings.TrimSpace(id)}
}

func (o OwnerRef) IsZero() bool {
	return o.Type == "" && o.ID == ""
}

// Validate requires both the type tag and the id.
func (o OwnerRef) Validate() error {
	switch {
	case o.Type == "":
		return fmt.Errorf("owner type is required")
	case o.ID == "":
		return fmt.Errorf("owner id is required")
	}
	return nil
}

func (o OwnerRef) String() string {
	return o.Type + ":" + o.ID
}
