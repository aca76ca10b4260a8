package enums

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// PartyRole tells whether a quote party pays the base rate or a charge on top of it.
type PartyRole string

const (
	PartyRoleBase   PartyRole = "base"
	PartyRoleCharge PartyRole = "charge"
)

var validPartyRoles = []PartyRole{
	PartyRoleBase,
	PartyRoleCharge,
}

// String implements fmt.Stringer.
func (p PartyRole) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PartyRole.
func (p PartyRole) IsValid() bool {
	return lo.Contains(validPartyRoles, p)
}

// ParsePartyRole converts raw input into a PartyRole.
func ParsePartyRole(value string) (PartyRole, error) {
	role := PartyRole(strings.ToLower(strings.TrimSpace(value)))
	if !role.IsValid() {
		return "", fmt.Errorf("invalid party role %q", value)
	}
	return role, nil
}
