package enums

import (
	"fmt"
	"strings"
)

// Role is the marketplace role carried by an authenticated caller.
type Role string

const (
	RoleMerchant Role = "MERCHANT"
	RoleSupplier Role = "SUPPLIER"
	RoleDelivery Role = "DELIVERY"
	RoleAdmin    Role = "ADMIN"
)

var validRoles = []Role{
	RoleMerchant,
	RoleSupplier,
	RoleDelivery,
	RoleAdmin,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRole converts raw input into a Role, ignoring case.
func ParseRole(value string) (Role, error) {
	normalized := Role(strings.ToUpper(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid role %q", value)
}
