package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	gosimpleslug "github.com/gosimple/slug"
	"github.com/safetydesk/safetydesk/internal/clock"
	"github.com/safetydesk/safetydesk/internal/event/domain"
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
		log:   log.Named("event.service"),
		clock: clk,
		genID: genID,
		repo:  repo,
	}
}

func (s *service) Create(ctx context.Context, req domain.CreateEventRequest) (*domain.Event, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	now := s.clock.Now()
	event := domain.Event{
		ID:        s.genID.Generate(),
		OrgID:     req.OrgID,
		Name:      name,
		Slug:      gosimpleslug.Make(name),
		StartsAt:  req.StartsAt,
		EndsAt:    req.EndsAt,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &event); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrSlugTaken
		}
		return nil, err
	}

	s.log.Info("event created",
		zap.String("event_id", event.ID.String()),
		zap.String("slug", event.Slug),
	)
	return &event, nil
}

func (s *service) GetByID(ctx context.Context, id snowflake.ID) (*domain.Event, error) {
	if id == 0 {
		return nil, domain.ErrNotFound
	}
	event, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, domain.ErrNotFound
	}
	return event, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	normalized := strings.ToLower(strings.TrimSpace(slug))
	if normalized == "" {
		return nil, domain.ErrNotFound
	}
	event, err := s.repo.FindBySlug(ctx, s.db, normalized)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, domain.ErrNotFound
	}
	return event, nil
}

func (s *service) ListByOrg(ctx context.Context, orgID snowflake.ID) ([]*domain.Event, error) {
	return s.repo.ListByOrg(ctx, s.db, orgID)
}
