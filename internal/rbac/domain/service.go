package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ScopeHint locates the event a request targets. A concrete EventID wins
// over a Slug; when both are absent the scope is undetermined and the
// check runs against grants across all scopes.
type ScopeHint struct {
	EventID snowflake.ID
	Slug    string
}

// Reason codes returned on denial. Denials never reveal scope topology
// beyond these.
const (
	ReasonNotAuthenticated = "not authenticated"
	ReasonInsufficientRole = "insufficient role"
	ReasonInternalError    = "internal error"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  string
	// Internal marks fail-closed denials caused by a store failure so the
	// boundary can map them to a 500 instead of a 403.
	Internal bool
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(reason string) Decision {
	return Decision{Reason: reason}
}

func DenyInternal() Decision {
	return Decision{Reason: ReasonInternalError, Internal: true}
}

// Resolver computes effective privileges from stored role grants.
type Resolver interface {
	// IsGlobalSuperAdmin reports whether the user holds a global-scope
	// SuperAdmin grant. Event scope is ignored entirely.
	IsGlobalSuperAdmin(ctx context.Context, userID snowflake.ID) (bool, error)
	// EffectiveEventRole returns the single highest-ranked role the user
	// holds for the event, short-circuiting to SuperAdmin for global
	// superadmins. ok is false when no grant applies.
	EffectiveEventRole(ctx context.Context, userID, eventID snowflake.ID) (Role, bool, error)
	// EventRoles returns the full set of event-scoped roles for the user.
	EventRoles(ctx context.Context, userID, eventID snowflake.ID) (RoleSet, error)
	// RolesAcrossScopes returns every role the user holds at any scope.
	RolesAcrossScopes(ctx context.Context, userID snowflake.ID) (RoleSet, error)
}

// Guard is the reusable decision procedure invoked before every
// protected operation. It never fails open: internal errors while
// resolving roles yield a deny with an internal reason.
type Guard interface {
	Authorize(ctx context.Context, principalID snowflake.ID, scope ScopeHint, allowed RoleSet) Decision
	RequireSuperAdmin(ctx context.Context, principalID snowflake.ID) Decision
}

// GrantService administers the role store.
type GrantService interface {
	// AssignRole grants role to the user for the event. Granting an
	// already-held role is a no-op and returns the existing grant.
	AssignRole(ctx context.Context, eventID, userID snowflake.ID, role Role) (*RoleGrant, error)
	// RevokeRole removes a grant. Revoking the only Admin of an event is
	// rejected with ErrSoleAdmin.
	RevokeRole(ctx context.Context, eventID, userID snowflake.ID, role Role) error
	// GrantGlobalSuperAdmin grants the global SuperAdmin role.
	GrantGlobalSuperAdmin(ctx context.Context, userID snowflake.ID) (*RoleGrant, error)
	// ListEventGrants lists every grant scoped to the event.
	ListEventGrants(ctx context.Context, eventID snowflake.ID) ([]*RoleGrant, error)
	// HoldersByRole returns the IDs of users holding any of the roles for
	// the event, reading through db when the caller needs the lookup
	// inside its own transaction. A nil db uses the service connection.
	HoldersByRole(ctx context.Context, db *gorm.DB, eventID snowflake.ID, roles ...Role) ([]snowflake.ID, error)
}

var (
	ErrRoleNotFound      = errors.New("role_not_found")
	ErrPrincipalNotFound = errors.New("principal_not_found")
	ErrGrantNotFound     = errors.New("grant_not_found")
	ErrSoleAdmin         = errors.New("cannot remove the only admin")
	ErrGlobalScopeRole   = errors.New("only superadmin may be granted globally")
)
