package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/safetydesk/safetydesk/internal/rbac/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type resolver struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func NewResolver(dbConn *gorm.DB, log *zap.Logger, repo domain.Repository) domain.Resolver {
	return &resolver{
		db:   dbConn,
		log:  log.Named("rbac.resolver"),
		repo: repo,
	}
}

func (r *resolver) IsGlobalSuperAdmin(ctx context.Context, userID snowflake.ID) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	return r.repo.HasGlobal(ctx, r.db, userID, domain.RoleSuperAdmin)
}

func (r *resolver) EffectiveEventRole(ctx context.Context, userID, eventID snowflake.ID) (domain.Role, bool, error) {
	super, err := r.IsGlobalSuperAdmin(ctx, userID)
	if err != nil {
		return "", false, err
	}
	if super {
		// Global superadmins need no event-scoped grant.
		return domain.RoleSuperAdmin, true, nil
	}

	roles, err := r.EventRoles(ctx, userID, eventID)
	if err != nil {
		return "", false, err
	}
	role, ok := roles.Highest()
	return role, ok, nil
}

func (r *resolver) EventRoles(ctx context.Context, userID, eventID snowflake.ID) (domain.RoleSet, error) {
	if userID == 0 || eventID == 0 {
		return domain.NewRoleSet(), nil
	}
	grants, err := r.repo.ListByUserEvent(ctx, r.db, userID, eventID)
	if err != nil {
		return nil, err
	}
	set := make(domain.RoleSet, len(grants))
	for _, grant := range grants {
		if grant.Role.Valid() {
			set[grant.Role] = struct{}{}
		}
	}
	return set, nil
}

func (r *resolver) RolesAcrossScopes(ctx context.Context, userID snowflake.ID) (domain.RoleSet, error) {
	if userID == 0 {
		return domain.NewRoleSet(), nil
	}
	grants, err := r.repo.ListByUser(ctx, r.db, userID)
	if err != nil {
		return nil, err
	}
	set := make(domain.RoleSet, len(grants))
	for _, grant := range grants {
		if grant.Role.Valid() {
			set[grant.Role] = struct{}{}
		}
	}
	return set, nil
}
