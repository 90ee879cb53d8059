package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/safetydesk/safetydesk/internal/audit/domain"
	"github.com/safetydesk/safetydesk/internal/clock"
	"github.com/safetydesk/safetydesk/internal/eventcontext"
	"github.com/safetydesk/safetydesk/internal/rbac/domain"
	userdomain "github.com/safetydesk/safetydesk/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type GrantParams struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	GenID    *snowflake.Node
	Repo     domain.Repository
	UserRepo userdomain.Repository
	AuditSvc auditdomain.Service `optional:"true"`
}

type grantService struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	genID    *snowflake.Node
	repo     domain.Repository
	userRepo userdomain.Repository
	auditSvc auditdomain.Service
}

func NewGrantService(p GrantParams) domain.GrantService {
	return &grantService{
		db:       p.DB,
		log:      p.Log.Named("rbac.grants"),
		clock:    p.Clock,
		genID:    p.GenID,
		repo:     p.Repo,
		userRepo: p.UserRepo,
		auditSvc: p.AuditSvc,
	}
}

func (s *grantService) AssignRole(ctx context.Context, eventID, userID snowflake.ID, role domain.Role) (*domain.RoleGrant, error) {
	if !role.Valid() {
		return nil, domain.ErrRoleNotFound
	}
	if eventID == 0 && role != domain.RoleSuperAdmin {
		return nil, domain.ErrGlobalScopeRole
	}

	user, err := s.userRepo.FindByID(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrPrincipalNotFound
	}

	grant := domain.RoleGrant{
		ID:        s.genID.Generate(),
		UserID:    userID,
		EventID:   eventID,
		Role:      role,
		CreatedAt: s.clock.Now(),
	}

	stored, created, err := s.repo.Upsert(ctx, s.db, &grant)
	if err != nil {
		return nil, err
	}
	if !created {
		// Duplicate grant is a no-op, not an error.
		return stored, nil
	}

	s.audit(ctx, auditdomain.ActionRoleAssigned, eventID, userID, role)
	s.log.Info("role assigned",
		zap.String("user_id", userID.String()),
		zap.String("event_id", eventID.String()),
		zap.String("role", string(role)),
	)
	return stored, nil
}

func (s *grantService) RevokeRole(ctx context.Context, eventID, userID snowflake.ID, role domain.Role) error {
	if !role.Valid() {
		return domain.ErrRoleNotFound
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if role == domain.RoleAdmin && eventID != 0 {
			// An event must always retain at least one admin.
			count, err := s.repo.CountEventRole(ctx, tx, eventID, domain.RoleAdmin)
			if err != nil {
				return err
			}
			holds, err := s.repo.ListByUserEvent(ctx, tx, userID, eventID)
			if err != nil {
				return err
			}
			holdsAdmin := false
			for _, grant := range holds {
				if grant.Role == domain.RoleAdmin {
					holdsAdmin = true
					break
				}
			}
			if holdsAdmin && count <= 1 {
				return domain.ErrSoleAdmin
			}
		}

		deleted, err := s.repo.Delete(ctx, tx, userID, eventID, role)
		if err != nil {
			return err
		}
		if !deleted {
			return domain.ErrGrantNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.audit(ctx, auditdomain.ActionRoleRevoked, eventID, userID, role)
	s.log.Info("role revoked",
		zap.String("user_id", userID.String()),
		zap.String("event_id", eventID.String()),
		zap.String("role", string(role)),
	)
	return nil
}

func (s *grantService) GrantGlobalSuperAdmin(ctx context.Context, userID snowflake.ID) (*domain.RoleGrant, error) {
	return s.AssignRole(ctx, 0, userID, domain.RoleSuperAdmin)
}

func (s *grantService) ListEventGrants(ctx context.Context, eventID snowflake.ID) ([]*domain.RoleGrant, error) {
	if eventID == 0 {
		return nil, nil
	}
	return s.repo.ListByEvent(ctx, s.db, eventID)
}

func (s *grantService) HoldersByRole(ctx context.Context, db *gorm.DB, eventID snowflake.ID, roles ...domain.Role) ([]snowflake.ID, error) {
	if db == nil {
		db = s.db
	}
	return s.repo.UserIDsByEventRoles(ctx, db, eventID, roles)
}

func (s *grantService) audit(ctx context.Context, action string, eventID, userID snowflake.ID, role domain.Role) {
	if s.auditSvc == nil {
		return
	}
	var actorID *snowflake.ID
	if actor, ok := eventcontext.ActorIDFromContext(ctx); ok {
		actorID = &actor
	}
	err := s.auditSvc.Record(ctx, nil, auditdomain.Entry{
		EventID:    eventID,
		ActorID:    actorID,
		Action:     action,
		TargetType: auditdomain.TargetRole,
		TargetID:   userID.String(),
		Metadata: map[string]any{
			"role":    string(role),
			"user_id": userID.String(),
		},
	})
	if err != nil {
		s.log.Warn("failed to audit role change", zap.String("action", action), zap.Error(err))
	}
}
