package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/safetydesk/safetydesk/internal/clock"
	"github.com/safetydesk/safetydesk/internal/metrics"
	"github.com/safetydesk/safetydesk/internal/notification/domain"
	"github.com/safetydesk/safetydesk/internal/providers/email"
	rbacdomain "github.com/safetydesk/safetydesk/internal/rbac/domain"
	userdomain "github.com/safetydesk/safetydesk/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	GenID    *snowflake.Node
	Repo     domain.Repository
	Grants   rbacdomain.GrantService
	UserRepo userdomain.Repository
	Email    email.Provider `optional:"true"`
}

type service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	genID    *snowflake.Node
	repo     domain.Repository
	grants   rbacdomain.GrantService
	userRepo userdomain.Repository
	email    email.Provider
}

func New(p Params) domain.Service {
	return &service{
		db:       p.DB,
		log:      p.Log.Named("notification.service"),
		clock:    p.Clock,
		genID:    p.GenID,
		repo:     p.Repo,
		grants:   p.Grants,
		userRepo: p.UserRepo,
		email:    p.Email,
	}
}

func (s *service) NotifyReportEvent(ctx context.Context, db *gorm.DB, req domain.FanoutRequest) ([]snowflake.ID, error) {
	if req.Kind == "" {
		return nil, domain.ErrInvalidKind
	}
	if db == nil {
		db = s.db
	}
	priority := req.Priority
	if priority == "" {
		priority = domain.PriorityNormal
	}

	recipients, err := s.recipients(ctx, db, req)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, nil
	}

	title, message := renderTemplate(req)
	link := fmt.Sprintf("/events/%s/reports/%s", req.EventID.String(), req.ReportID.String())
	now := s.clock.Now()

	for _, recipientID := range recipients {
		notification := domain.Notification{
			ID:          s.genID.Generate(),
			RecipientID: recipientID,
			Kind:        req.Kind,
			Priority:    priority,
			Title:       title,
			Message:     message,
			Link:        link,
			EventID:     req.EventID,
			ReportID:    req.ReportID,
			CreatedAt:   now,
		}
		if err := s.repo.Insert(ctx, db, &notification); err != nil {
			return nil, err
		}
		metrics.NotificationsCreated.Inc()
	}

	return recipients, nil
}

// EmailReportEvent runs outside the caller's transaction so a rollback
// never emails anyone about a change that did not happen.
func (s *service) EmailReportEvent(ctx context.Context, recipients []snowflake.ID, req domain.FanoutRequest) {
	if len(recipients) == 0 {
		return
	}
	title, message := renderTemplate(req)
	s.sendEmails(ctx, recipients, title, message)
}

// recipients is the union of the reporter, the assignee, and every
// holder of Admin or Responder for the event, minus the acting
// principal, deduplicated. The grant lookup goes through db so the
// whole fanout observes the caller's transaction.
func (s *service) recipients(ctx context.Context, db *gorm.DB, req domain.FanoutRequest) ([]snowflake.ID, error) {
	seen := make(map[snowflake.ID]struct{})
	var out []snowflake.ID

	add := func(id snowflake.ID) {
		if id == 0 || id == req.ExcludeActorID {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	if req.ReporterID != nil {
		add(*req.ReporterID)
	}
	if req.AssignedToID != nil {
		add(*req.AssignedToID)
	}

	holders, err := s.grants.HoldersByRole(ctx, db, req.EventID, rbacdomain.RoleAdmin, rbacdomain.RoleResponder)
	if err != nil {
		return nil, err
	}
	for _, id := range holders {
		add(id)
	}

	return out, nil
}

func (s *service) sendEmails(ctx context.Context, recipients []snowflake.ID, title, message string) {
	if s.email == nil {
		return
	}

	users, err := s.userRepo.FindByIDs(ctx, s.db, recipients)
	if err != nil {
		s.log.Warn("failed to load recipients for email", zap.Error(err))
		return
	}

	addresses := make([]string, 0, len(users))
	for _, user := range users {
		if user.Email != "" {
			addresses = append(addresses, user.Email)
		}
	}
	if len(addresses) == 0 {
		return
	}

	if err := s.email.Send(ctx, addresses, title, message); err != nil {
		s.log.Warn("failed to send notification email", zap.Error(err))
	}
}

func (s *service) ListForUser(ctx context.Context, userID snowflake.ID, unreadOnly bool) ([]*domain.Notification, error) {
	return s.repo.ListForUser(ctx, s.db, userID, unreadOnly)
}

func (s *service) MarkRead(ctx context.Context, userID, notificationID snowflake.ID) error {
	updated, err := s.repo.MarkRead(ctx, s.db, userID, notificationID)
	if err != nil {
		return err
	}
	if !updated {
		return domain.ErrNotFound
	}
	return nil
}

func renderTemplate(req domain.FanoutRequest) (string, string) {
	report := req.ReportID.String()
	switch req.Kind {
	case domain.KindReportCreated:
		return "New incident report", fmt.Sprintf("A new incident report #%s was submitted.", report)
	case domain.KindStateChanged:
		return "Report status updated", fmt.Sprintf("Report #%s moved to %s.", report, req.Detail)
	case domain.KindAssigned:
		return "Report assigned", fmt.Sprintf("Report #%s was assigned to a responder.", report)
	case domain.KindCommentAdded:
		return "New comment on report", fmt.Sprintf("Report #%s received a new comment.", report)
	default:
		return "Report update", fmt.Sprintf("Report #%s was updated.", report)
	}
}
