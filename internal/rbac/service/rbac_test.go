package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/safetydesk/safetydesk/internal/clock"
	eventdomain "github.com/safetydesk/safetydesk/internal/event/domain"
	"github.com/safetydesk/safetydesk/internal/rbac/domain"
	rbacrepo "github.com/safetydesk/safetydesk/internal/rbac/repository"
	userdomain "github.com/safetydesk/safetydesk/internal/user/domain"
	userrepo "github.com/safetydesk/safetydesk/internal/user/repository"
	"github.com/safetydesk/safetydesk/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type slugDirectoryStub struct {
	events map[string]*eventdomain.Event
}

func (s *slugDirectoryStub) GetBySlug(ctx context.Context, slug string) (*eventdomain.Event, error) {
	if event, ok := s.events[slug]; ok {
		return event, nil
	}
	return nil, eventdomain.ErrNotFound
}

type rbacFixture struct {
	db       *gorm.DB
	node     *snowflake.Node
	resolver domain.Resolver
	guard    domain.Guard
	grants   domain.GrantService
	slugs    *slugDirectoryStub
}

func newRBACFixture(t *testing.T) *rbacFixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&userdomain.User{}, &domain.RoleGrant{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	log := zaptest.NewLogger(t)
	repo := rbacrepo.Provide()
	resolver := NewResolver(conn, log, repo)
	slugs := &slugDirectoryStub{events: map[string]*eventdomain.Event{}}
	guard := NewGuard(log, resolver, slugs)
	grants := NewGrantService(GrantParams{
		DB:       conn,
		Log:      log,
		Clock:    clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		GenID:    node,
		Repo:     repo,
		UserRepo: userrepo.Provide(),
	})

	return &rbacFixture{
		db:       conn,
		node:     node,
		resolver: resolver,
		guard:    guard,
		grants:   grants,
		slugs:    slugs,
	}
}

func (f *rbacFixture) newUser(t *testing.T) snowflake.ID {
	t.Helper()
	user := userdomain.User{
		ID:          f.node.Generate(),
		ExternalID:  uuid.NewString(),
		Email:       uuid.NewString() + "@example.com",
		DisplayName: "Test User",
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	require.NoError(t, f.db.Create(&user).Error)
	return user.ID
}

func TestAssignRoleIdempotent(t *testing.T) {
	f := newRBACFixture(t)
	ctx := context.Background()
	userID := f.newUser(t)
	eventID := f.node.Generate()

	first, err := f.grants.AssignRole(ctx, eventID, userID, domain.RoleResponder)
	require.NoError(t, err)

	second, err := f.grants.AssignRole(ctx, eventID, userID, domain.RoleResponder)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, f.db.Model(&domain.RoleGrant{}).
		Where("user_id = ? AND event_id = ? AND role = ?", userID, eventID, domain.RoleResponder).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAssignRoleUnknownPrincipal(t *testing.T) {
	f := newRBACFixture(t)

	_, err := f.grants.AssignRole(context.Background(), f.node.Generate(), f.node.Generate(), domain.RoleReporter)
	assert.ErrorIs(t, err, domain.ErrPrincipalNotFound)
}

func TestAssignRoleGlobalScopeRestriction(t *testing.T) {
	f := newRBACFixture(t)
	userID := f.newUser(t)

	_, err := f.grants.AssignRole(context.Background(), 0, userID, domain.RoleAdmin)
	assert.ErrorIs(t, err, domain.ErrGlobalScopeRole)

	_, err = f.grants.GrantGlobalSuperAdmin(context.Background(), userID)
	assert.NoError(t, err)
}

func TestEffectiveEventRoleTieBreak(t *testing.T) {
	f := newRBACFixture(t)
	ctx := context.Background()
	userID := f.newUser(t)
	eventID := f.node.Generate()

	_, err := f.grants.AssignRole(ctx, eventID, userID, domain.RoleReporter)
	require.NoError(t, err)
	_, err = f.grants.AssignRole(ctx, eventID, userID, domain.RoleResponder)
	require.NoError(t, err)

	role, ok, err := f.resolver.EffectiveEventRole(ctx, userID, eventID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.RoleResponder, role)

	_, err = f.grants.AssignRole(ctx, eventID, userID, domain.RoleAdmin)
	require.NoError(t, err)

	role, ok, err = f.resolver.EffectiveEventRole(ctx, userID, eventID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.RoleAdmin, role)
}

func TestEffectiveEventRoleNoGrant(t *testing.T) {
	f := newRBACFixture(t)

	_, ok, err := f.resolver.EffectiveEventRole(context.Background(), f.newUser(t), f.node.Generate())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGlobalSuperAdminOverride(t *testing.T) {
	f := newRBACFixture(t)
	ctx := context.Background()
	userID := f.newUser(t)

	_, err := f.grants.GrantGlobalSuperAdmin(ctx, userID)
	require.NoError(t, err)

	// No event-scoped grant exists, yet the resolver short-circuits.
	role, ok, err := f.resolver.EffectiveEventRole(ctx, userID, f.node.Generate())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.RoleSuperAdmin, role)

	// The guard lets a global superadmin through every check.
	decision := f.guard.Authorize(ctx, userID, domain.ScopeHint{EventID: f.node.Generate()},
		domain.NewRoleSet(domain.RoleAdmin))
	assert.True(t, decision.Allowed)

	decision = f.guard.Authorize(ctx, userID, domain.ScopeHint{}, domain.NewRoleSet(domain.RoleReporter))
	assert.True(t, decision.Allowed)
}

func TestAuthorizeUnauthenticated(t *testing.T) {
	f := newRBACFixture(t)

	decision := f.guard.Authorize(context.Background(), 0, domain.ScopeHint{}, domain.NewRoleSet(domain.RoleReporter))
	assert.False(t, decision.Allowed)
	assert.Equal(t, domain.ReasonNotAuthenticated, decision.Reason)
}

func TestAuthorizeInsufficientRole(t *testing.T) {
	f := newRBACFixture(t)
	ctx := context.Background()
	userID := f.newUser(t)
	eventID := f.node.Generate()

	_, err := f.grants.AssignRole(ctx, eventID, userID, domain.RoleReporter)
	require.NoError(t, err)

	decision := f.guard.Authorize(ctx, userID, domain.ScopeHint{EventID: eventID},
		domain.NewRoleSet(domain.RoleAdmin, domain.RoleSuperAdmin))
	assert.False(t, decision.Allowed)
	assert.Equal(t, domain.ReasonInsufficientRole, decision.Reason)
}

func TestAuthorizeMembershipNotEquality(t *testing.T) {
	f := newRBACFixture(t)
	ctx := context.Background()
	userID := f.newUser(t)
	eventID := f.node.Generate()

	// Reporter and Responder in the same scope: the lower role still
	// grants access to reporter-level operations.
	_, err := f.grants.AssignRole(ctx, eventID, userID, domain.RoleReporter)
	require.NoError(t, err)
	_, err = f.grants.AssignRole(ctx, eventID, userID, domain.RoleResponder)
	require.NoError(t, err)

	decision := f.guard.Authorize(ctx, userID, domain.ScopeHint{EventID: eventID},
		domain.NewRoleSet(domain.RoleReporter))
	assert.True(t, decision.Allowed)
}

func TestAuthorizeSlugScope(t *testing.T) {
	f := newRBACFixture(t)
	ctx := context.Background()
	userID := f.newUser(t)
	eventID := f.node.Generate()
	f.slugs.events["gophercon"] = &eventdomain.Event{ID: eventID, Slug: "gophercon"}

	_, err := f.grants.AssignRole(ctx, eventID, userID, domain.RoleResponder)
	require.NoError(t, err)

	decision := f.guard.Authorize(ctx, userID, domain.ScopeHint{Slug: "gophercon"},
		domain.NewRoleSet(domain.RoleResponder))
	assert.True(t, decision.Allowed)

	// An unknown slug leaves the scope undetermined; the grant still
	// counts across scopes.
	decision = f.guard.Authorize(ctx, userID, domain.ScopeHint{Slug: "unknown"},
		domain.NewRoleSet(domain.RoleResponder))
	assert.True(t, decision.Allowed)
}

func TestAuthorizeUndeterminedScope(t *testing.T) {
	f := newRBACFixture(t)
	ctx := context.Background()
	userID := f.newUser(t)

	_, err := f.grants.AssignRole(ctx, f.node.Generate(), userID, domain.RoleAdmin)
	require.NoError(t, err)

	// Any-scope grant satisfies a scopeless check.
	decision := f.guard.Authorize(ctx, userID, domain.ScopeHint{}, domain.NewRoleSet(domain.RoleAdmin))
	assert.True(t, decision.Allowed)

	decision = f.guard.Authorize(ctx, userID, domain.ScopeHint{}, domain.NewRoleSet(domain.RoleSuperAdmin))
	assert.False(t, decision.Allowed)
}

func TestRequireSuperAdmin(t *testing.T) {
	f := newRBACFixture(t)
	ctx := context.Background()
	admin := f.newUser(t)
	regular := f.newUser(t)

	_, err := f.grants.GrantGlobalSuperAdmin(ctx, admin)
	require.NoError(t, err)
	_, err = f.grants.AssignRole(ctx, f.node.Generate(), regular, domain.RoleAdmin)
	require.NoError(t, err)

	assert.True(t, f.guard.RequireSuperAdmin(ctx, admin).Allowed)
	assert.False(t, f.guard.RequireSuperAdmin(ctx, regular).Allowed)
}

func TestRevokeRoleSoleAdminGuard(t *testing.T) {
	f := newRBACFixture(t)
	ctx := context.Background()
	first := f.newUser(t)
	second := f.newUser(t)
	eventID := f.node.Generate()

	_, err := f.grants.AssignRole(ctx, eventID, first, domain.RoleAdmin)
	require.NoError(t, err)

	err = f.grants.RevokeRole(ctx, eventID, first, domain.RoleAdmin)
	assert.ErrorIs(t, err, domain.ErrSoleAdmin)

	_, err = f.grants.AssignRole(ctx, eventID, second, domain.RoleAdmin)
	require.NoError(t, err)

	require.NoError(t, f.grants.RevokeRole(ctx, eventID, first, domain.RoleAdmin))

	// The remaining admin is now protected again.
	err = f.grants.RevokeRole(ctx, eventID, second, domain.RoleAdmin)
	assert.ErrorIs(t, err, domain.ErrSoleAdmin)
}

func TestRevokeRoleNotGranted(t *testing.T) {
	f := newRBACFixture(t)

	err := f.grants.RevokeRole(context.Background(), f.node.Generate(), f.newUser(t), domain.RoleResponder)
	assert.ErrorIs(t, err, domain.ErrGrantNotFound)
}

func TestHoldersByRole(t *testing.T) {
	f := newRBACFixture(t)
	ctx := context.Background()
	admin := f.newUser(t)
	responder := f.newUser(t)
	reporter := f.newUser(t)
	eventID := f.node.Generate()

	_, err := f.grants.AssignRole(ctx, eventID, admin, domain.RoleAdmin)
	require.NoError(t, err)
	_, err = f.grants.AssignRole(ctx, eventID, responder, domain.RoleResponder)
	require.NoError(t, err)
	_, err = f.grants.AssignRole(ctx, eventID, reporter, domain.RoleReporter)
	require.NoError(t, err)

	holders, err := f.grants.HoldersByRole(ctx, nil, eventID, domain.RoleAdmin, domain.RoleResponder)
	require.NoError(t, err)
	assert.ElementsMatch(t, []snowflake.ID{admin, responder}, holders)
}
