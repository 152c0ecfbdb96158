package domain

import (
	"slices"
	"strings"
)

// Role is the authorization class carried in a token's role claim.
type Role string

const (
	// RoleNone marks an absent role.
	RoleNone  Role = ""
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// ParseRole maps a raw claim value to a known role.
// Returns RoleNone and false for empty or unrecognised values.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.TrimSpace(raw)) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleUser:
		return RoleUser, true
	default:
		return RoleNone, false
	}
}

func (r Role) String() string {
	return string(r)
}

// RoleSet is an immutable set of roles allowed to reach a route or perform an action.
type RoleSet struct {
	roles []Role
}

// NewRoleSet builds a set from the given roles, dropping RoleNone and duplicates.
func NewRoleSet(roles ...Role) RoleSet {
	set := RoleSet{roles: make([]Role, 0, len(roles))}

	for _, role := range roles {
		if role == RoleNone || slices.Contains(set.roles, role) {
			continue
		}

		set.roles = append(set.roles, role)
	}

	return set
}

// Contains reports whether role is a member. RoleNone is never a member.
func (s RoleSet) Contains(role Role) bool {
	return role != RoleNone && slices.Contains(s.roles, role)
}

// Roles returns the members in insertion order.
func (s RoleSet) Roles() []Role {
	return slices.Clone(s.roles)
}

// Len returns the number of members.
func (s RoleSet) Len() int {
	return len(s.roles)
}
