package service

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	eventdomain "github.com/safetydesk/safetydesk/internal/event/domain"
	"github.com/safetydesk/safetydesk/internal/metrics"
	"github.com/safetydesk/safetydesk/internal/rbac/domain"
	"go.uber.org/zap"
)

// SlugDirectory is the read-only slug lookup the guard uses when a route
// only carries an event slug.
type SlugDirectory interface {
	GetBySlug(ctx context.Context, slug string) (*eventdomain.Event, error)
}

type guard struct {
	log      *zap.Logger
	resolver domain.Resolver
	events   SlugDirectory
}

func NewGuard(log *zap.Logger, resolver domain.Resolver, events SlugDirectory) domain.Guard {
	return &guard{
		log:      log.Named("rbac.guard"),
		resolver: resolver,
		events:   events,
	}
}

// Authorize decides whether the principal may act within the hinted
// scope. A global SuperAdmin passes every check regardless of the
// allowed set. Internal errors deny rather than allow.
func (g *guard) Authorize(ctx context.Context, principalID snowflake.ID, scope domain.ScopeHint, allowed domain.RoleSet) domain.Decision {
	if principalID == 0 {
		return g.record(domain.Deny(domain.ReasonNotAuthenticated))
	}

	super, err := g.resolver.IsGlobalSuperAdmin(ctx, principalID)
	if err != nil {
		return g.failClosed("resolve global superadmin", principalID, err)
	}
	if super {
		return g.record(domain.Allow())
	}

	eventID, determined, err := g.resolveScope(ctx, scope)
	if err != nil {
		return g.failClosed("resolve scope", principalID, err)
	}

	var roles domain.RoleSet
	if determined {
		roles, err = g.resolver.EventRoles(ctx, principalID, eventID)
	} else {
		// Non-event operation: an event-scoped grant anywhere satisfies a
		// matching role. Deliberately permissive for global listings.
		roles, err = g.resolver.RolesAcrossScopes(ctx, principalID)
	}
	if err != nil {
		return g.failClosed("resolve roles", principalID, err)
	}

	if roles.Intersects(allowed) {
		return g.record(domain.Allow())
	}
	return g.record(domain.Deny(domain.ReasonInsufficientRole))
}

func (g *guard) RequireSuperAdmin(ctx context.Context, principalID snowflake.ID) domain.Decision {
	return g.Authorize(ctx, principalID, domain.ScopeHint{}, domain.NewRoleSet(domain.RoleSuperAdmin))
}

// resolveScope turns a hint into a concrete event ID. determined is
// false when neither an ID nor a resolvable slug was supplied.
func (g *guard) resolveScope(ctx context.Context, scope domain.ScopeHint) (snowflake.ID, bool, error) {
	if scope.EventID != 0 {
		return scope.EventID, true, nil
	}
	if scope.Slug == "" {
		return 0, false, nil
	}
	event, err := g.events.GetBySlug(ctx, scope.Slug)
	if err != nil {
		if errors.Is(err, eventdomain.ErrNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return event.ID, true, nil
}

func (g *guard) failClosed(stage string, principalID snowflake.ID, err error) domain.Decision {
	g.log.Error("authorization check failed, denying",
		zap.String("stage", stage),
		zap.String("principal_id", principalID.String()),
		zap.Error(err),
	)
	return g.record(domain.DenyInternal())
}

func (g *guard) record(decision domain.Decision) domain.Decision {
	outcome := "allow"
	switch {
	case decision.Internal:
		outcome = "error"
	case !decision.Allowed:
		outcome = "deny"
	}
	metrics.AuthorizationDecisions.WithLabelValues(outcome).Inc()
	return decision
}
