package directory

import (
	"fmt"
	"strings"
)

// Role is the closed set of principal roles. Role-as-string duck typing from
// older revisions is gone on purpose: handlers pass Role constants, never raw
// strings.
type Role string

const (
	RoleNGOAdmin           Role = "ngo_admin"
	RoleNGOPartner         Role = "ngo_partner"
	RoleAssociationAdmin   Role = "association_admin"
	RoleAssociationPartner Role = "association_partner"
	RoleStore              Role = "store"
	RoleHomeless           Role = "homeless"
	RoleSystemAdmin        Role = "system_admin"
)

var allRoles = map[Role]struct{}{
	RoleNGOAdmin:           {},
	RoleNGOPartner:         {},
	RoleAssociationAdmin:   {},
	RoleAssociationPartner: {},
	RoleStore:              {},
	RoleHomeless:           {},
	RoleSystemAdmin:        {},
}

// ParseRole maps a wire value onto the closed enumeration.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.TrimSpace(strings.ToLower(raw)))
	if _, ok := allRoles[role]; !ok {
		return "", fmt.Errorf("directory: unknown role %q", raw)
	}
	return role, nil
}

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	_, ok := allRoles[r]
	return ok
}

// In reports whether the role is one of the allowed set.
func (r Role) In(allowed ...Role) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}
