// Package domain defines the role model and the authorization contracts.
package domain

import (
	"sort"
	"strings"
)

// Role is an event-scoped (or, for SuperAdmin, global) privilege level.
// The zero value is invalid.
type Role string

const (
	RoleSuperAdmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleResponder  Role = "responder"
	RoleReporter   Role = "reporter"
)

// roleRank orders roles from highest privilege to lowest. Used to pick a
// single effective role when a principal holds several in one scope.
var roleRank = map[Role]int{
	RoleSuperAdmin: 4,
	RoleAdmin:      3,
	RoleResponder:  2,
	RoleReporter:   1,
}

// Rank returns the privilege rank of the role; 0 for unknown roles.
func (r Role) Rank() int {
	return roleRank[r]
}

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	return r.Rank() > 0
}

// ParseRole converts a wire-format role name to a Role.
func ParseRole(raw string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	if !role.Valid() {
		return "", false
	}
	return role, true
}

// RoleSet is an unordered set of roles.
type RoleSet map[Role]struct{}

// NewRoleSet builds a set from the given roles, skipping invalid ones.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, role := range roles {
		if role.Valid() {
			set[role] = struct{}{}
		}
	}
	return set
}

// Has reports whether the set contains the role.
func (s RoleSet) Has(role Role) bool {
	_, ok := s[role]
	return ok
}

// Intersects reports whether the two sets share any role.
func (s RoleSet) Intersects(other RoleSet) bool {
	for role := range other {
		if s.Has(role) {
			return true
		}
	}
	return false
}

// Slice returns the roles ordered from highest rank to lowest.
func (s RoleSet) Slice() []Role {
	out := make([]Role, 0, len(s))
	for role := range s {
		out = append(out, role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank() > out[j].Rank() })
	return out
}

// Highest returns the highest-ranked role in the set, or false when empty.
func (s RoleSet) Highest() (Role, bool) {
	var best Role
	for role := range s {
		if role.Rank() > best.Rank() {
			best = role
		}
	}
	return best, best != ""
}
