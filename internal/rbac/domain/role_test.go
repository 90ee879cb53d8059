package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		raw   string
		want  Role
		valid bool
	}{
		{"admin", RoleAdmin, true},
		{"  Responder ", RoleResponder, true},
		{"SUPERADMIN", RoleSuperAdmin, true},
		{"reporter", RoleReporter, true},
		{"owner", "", false},
		{"", "", false},
	}

	for _, tc := range tests {
		role, ok := ParseRole(tc.raw)
		assert.Equal(t, tc.valid, ok, tc.raw)
		if tc.valid {
			assert.Equal(t, tc.want, role)
		}
	}
}

func TestRoleRanking(t *testing.T) {
	assert.Greater(t, RoleSuperAdmin.Rank(), RoleAdmin.Rank())
	assert.Greater(t, RoleAdmin.Rank(), RoleResponder.Rank())
	assert.Greater(t, RoleResponder.Rank(), RoleReporter.Rank())
	assert.Equal(t, 0, Role("owner").Rank())
}

func TestRoleSetHighest(t *testing.T) {
	// Holding several roles in one scope resolves to the highest rank.
	set := NewRoleSet(RoleReporter, RoleResponder)
	highest, ok := set.Highest()
	assert.True(t, ok)
	assert.Equal(t, RoleResponder, highest)

	set = NewRoleSet(RoleResponder, RoleAdmin, RoleReporter)
	highest, ok = set.Highest()
	assert.True(t, ok)
	assert.Equal(t, RoleAdmin, highest)

	_, ok = NewRoleSet().Highest()
	assert.False(t, ok)
}

func TestRoleSetIntersects(t *testing.T) {
	held := NewRoleSet(RoleReporter, RoleResponder)

	// Membership in the allowed set, not equality with the highest role.
	assert.True(t, held.Intersects(NewRoleSet(RoleReporter)))
	assert.True(t, held.Intersects(NewRoleSet(RoleResponder, RoleAdmin)))
	assert.False(t, held.Intersects(NewRoleSet(RoleAdmin, RoleSuperAdmin)))
	assert.False(t, held.Intersects(NewRoleSet()))
}

func TestRoleSetSlice(t *testing.T) {
	set := NewRoleSet(RoleReporter, RoleAdmin, RoleResponder)
	assert.Equal(t, []Role{RoleAdmin, RoleResponder, RoleReporter}, set.Slice())
}
