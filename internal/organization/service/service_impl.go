package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/safetydesk/safetydesk/internal/clock"
	"github.com/safetydesk/safetydesk/internal/organization/domain"
	"github.com/safetydesk/safetydesk/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	genID *snowflake.Node
	repo  domain.Repository
}

func New(dbConn *gorm.DB, log *zap.Logger, clk clock.Clock, genID *snowflake.Node, repo domain.Repository) domain.Service {
	return &service{
		db:    dbConn,
		log:   log.Named("organization.service"),
		clock: clk,
		genID: genID,
		repo:  repo,
	}
}

func (s *service) Create(ctx context.Context, userID snowflake.ID, req domain.CreateOrganizationRequest) (*domain.OrganizationResponse, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUser
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	now := s.clock.Now()
	org := domain.Organization{
		ID:        s.genID.Generate(),
		Name:      name,
		Slug:      slug.Make(name),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.InsertOrganization(ctx, tx, &org); err != nil {
			return err
		}

		member := domain.OrganizationMember{
			ID:        s.genID.Generate(),
			OrgID:     org.ID,
			UserID:    userID,
			Role:      domain.OrgRoleAdmin,
			CreatedAt: now,
		}
		return s.repo.UpsertMember(ctx, tx, &member)
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrSlugTaken
		}
		return nil, err
	}

	s.log.Info("organization created",
		zap.String("org_id", org.ID.String()),
		zap.String("owner_user_id", userID.String()),
	)

	return &domain.OrganizationResponse{
		ID:   org.ID.String(),
		Name: org.Name,
		Slug: org.Slug,
	}, nil
}

func (s *service) AddMember(ctx context.Context, orgID, userID snowflake.ID, role domain.OrgRole) error {
	if orgID == 0 {
		return domain.ErrNotFound
	}
	if userID == 0 {
		return domain.ErrInvalidUser
	}
	if !role.Valid() {
		return domain.ErrInvalidRole
	}

	org, err := s.repo.FindByID(ctx, s.db, orgID)
	if err != nil {
		return err
	}
	if org == nil {
		return domain.ErrNotFound
	}

	member := domain.OrganizationMember{
		ID:        s.genID.Generate(),
		OrgID:     orgID,
		UserID:    userID,
		Role:      role,
		CreatedAt: s.clock.Now(),
	}
	return s.repo.UpsertMember(ctx, s.db, &member)
}

func (s *service) MemberRole(ctx context.Context, orgID, userID snowflake.ID) (domain.OrgRole, bool, error) {
	if orgID == 0 || userID == 0 {
		return "", false, nil
	}
	member, err := s.repo.FindMember(ctx, s.db, orgID, userID)
	if err != nil {
		return "", false, err
	}
	if member == nil {
		return "", false, nil
	}
	return member.Role, true, nil
}

func (s *service) ListByUser(ctx context.Context, userID snowflake.ID) ([]domain.OrganizationListItem, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUser
	}

	rows, err := s.repo.ListByUser(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	items := make([]domain.OrganizationListItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, domain.OrganizationListItem{
			ID:        row.ID.String(),
			Name:      row.Name,
			Role:      row.Role,
			CreatedAt: row.CreatedAt,
		})
	}
	return items, nil
}
