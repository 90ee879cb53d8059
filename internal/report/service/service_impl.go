package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/safetydesk/safetydesk/internal/audit/domain"
	"github.com/safetydesk/safetydesk/internal/clock"
	"github.com/safetydesk/safetydesk/internal/metrics"
	notifdomain "github.com/safetydesk/safetydesk/internal/notification/domain"
	"github.com/safetydesk/safetydesk/internal/ratelimit"
	rbacdomain "github.com/safetydesk/safetydesk/internal/rbac/domain"
	"github.com/safetydesk/safetydesk/internal/report/domain"
	userdomain "github.com/safetydesk/safetydesk/internal/user/domain"
	"github.com/safetydesk/safetydesk/pkg/db/pagination"
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
	UserRepo userdomain.Repository
	Resolver rbacdomain.Resolver
	Audit    auditdomain.Service
	Notify   notifdomain.Service
	Limiter  *ratelimit.ReportSubmitLimiter `optional:"true"`
}

type service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	genID    *snowflake.Node
	repo     domain.Repository
	userRepo userdomain.Repository
	resolver rbacdomain.Resolver
	audit    auditdomain.Service
	notify   notifdomain.Service
	limiter  *ratelimit.ReportSubmitLimiter
}

func New(p Params) domain.Service {
	return &service{
		db:       p.DB,
		log:      p.Log.Named("report.service"),
		clock:    p.Clock,
		genID:    p.GenID,
		repo:     p.Repo,
		userRepo: p.UserRepo,
		resolver: p.Resolver,
		audit:    p.Audit,
		notify:   p.Notify,
		limiter:  p.Limiter,
	}
}

func (s *service) Create(ctx context.Context, req domain.CreateReportRequest) (*domain.Report, error) {
	if req.EventID == 0 {
		return nil, domain.Validationf("event is required")
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.Validationf("title is required")
	}

	severity := req.Severity
	if severity == "" {
		severity = domain.SeverityMedium
	}
	if !severity.Valid() {
		return nil, domain.Validationf("unknown severity %q", string(req.Severity))
	}

	if req.ReporterID != nil && s.limiter.Enabled() {
		allowed, err := s.limiter.AllowSubmit(ctx, *req.ReporterID, req.EventID)
		if err != nil {
			s.log.Warn("rate limiter unavailable, allowing submit", zap.Error(err))
		} else if !allowed {
			return nil, domain.ErrRateLimited
		}
	}

	now := s.clock.Now()
	report := &domain.Report{
		ID:          s.genID.Generate(),
		EventID:     req.EventID,
		ReporterID:  req.ReporterID,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Severity:    severity,
		State:       domain.StateSubmitted,
		Revision:    1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var actorID snowflake.ID
	if report.ReporterID != nil {
		actorID = *report.ReporterID
	}
	fanout := notifdomain.FanoutRequest{
		EventID:        report.EventID,
		ReportID:       report.ID,
		Kind:           notifdomain.KindReportCreated,
		Priority:       notifyPriority(report.Severity),
		ReporterID:     report.ReporterID,
		ExcludeActorID: actorID,
	}

	var notified []snowflake.ID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, report); err != nil {
			return err
		}

		if err := s.audit.Record(ctx, tx, auditdomain.Entry{
			EventID:    report.EventID,
			ActorID:    report.ReporterID,
			Action:     auditdomain.ActionReportCreated,
			TargetType: auditdomain.TargetReport,
			TargetID:   report.ID.String(),
			Metadata: map[string]any{
				"severity": string(report.Severity),
			},
		}); err != nil {
			return err
		}

		var err error
		notified, err = s.notify.NotifyReportEvent(ctx, tx, fanout)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notify.EmailReportEvent(ctx, notified, fanout)
	return report, nil
}

func (s *service) Get(ctx context.Context, eventID, reportID snowflake.ID) (*domain.Report, error) {
	return s.repo.FindByID(ctx, s.db, eventID, reportID)
}

func (s *service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	if req.State != "" && !req.State.Valid() {
		return domain.ListResponse{}, domain.Validationf("unknown state %q", string(req.State))
	}

	var cursor *domain.ReportCursor
	if strings.TrimSpace(req.PageToken) != "" {
		decoded, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return domain.ListResponse{}, domain.Validationf("invalid page token")
		}
		id, err := snowflake.ParseString(strings.TrimSpace(decoded.ID))
		if err != nil || id == 0 {
			return domain.ListResponse{}, domain.Validationf("invalid page token")
		}
		cursor = &domain.ReportCursor{ID: id}
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	if pageSize > 250 {
		pageSize = 250
	}

	items, err := s.repo.List(ctx, s.db, domain.ListFilter{
		EventID: req.EventID,
		State:   req.State,
		Cursor:  cursor,
		Limit:   pageSize,
	})
	if err != nil {
		return domain.ListResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int32(pageSize), func(item *domain.Report) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: item.ID.String()})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	reports := make([]domain.Report, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		reports = append(reports, *item)
	}

	resp := domain.ListResponse{Reports: reports}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

// Transition is the only path that mutates report state. Everything it
// does runs in one transaction so the report can never change without
// its audit trail.
func (s *service) Transition(ctx context.Context, req domain.TransitionRequest) (*domain.Report, error) {
	if !req.TargetState.Valid() {
		return nil, domain.Validationf("unknown state %q", string(req.TargetState))
	}
	notes := strings.TrimSpace(req.Notes)

	var (
		updated  *domain.Report
		notified []snowflake.ID
		fanout   notifdomain.FanoutRequest
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		report, err := s.repo.FindByID(ctx, tx, req.EventID, req.ReportID)
		if err != nil {
			return err
		}
		if req.ExpectedRevision != nil && *req.ExpectedRevision != report.Revision {
			return domain.ErrRevisionConflict
		}

		fromState := report.State
		if !fromState.CanTransitionTo(req.TargetState) {
			return domain.Validationf("cannot transition from %s to %s", fromState, req.TargetState)
		}

		assignee := report.AssignedToID
		assignmentChanged := false
		if req.AssignToID != nil {
			if err := s.checkAssignee(ctx, tx, req.EventID, *req.AssignToID); err != nil {
				return err
			}
			if assignee == nil || *assignee != *req.AssignToID {
				assignmentChanged = true
			}
			assignee = req.AssignToID
		}

		if err := checkPreconditions(req.TargetState, notes, assignee); err != nil {
			return err
		}

		report.State = req.TargetState
		report.AssignedToID = assignee
		if req.TargetState == domain.StateResolved && notes != "" {
			report.ResolutionNotes = notes
		}
		prevRevision := report.Revision
		report.Revision = prevRevision + 1
		report.UpdatedAt = s.clock.Now()

		ok, err := s.repo.UpdateState(ctx, tx, report, prevRevision)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrRevisionConflict
		}

		from := string(fromState)
		to := string(req.TargetState)
		actorID := req.ActorID
		if err := s.audit.Record(ctx, tx, auditdomain.Entry{
			EventID:    report.EventID,
			ActorID:    &actorID,
			Action:     auditdomain.ActionReportStateChanged,
			TargetType: auditdomain.TargetReport,
			TargetID:   report.ID.String(),
			FromState:  &from,
			ToState:    &to,
		}); err != nil {
			return err
		}

		if assignmentChanged {
			if err := s.audit.Record(ctx, tx, auditdomain.Entry{
				EventID:    report.EventID,
				ActorID:    &actorID,
				Action:     auditdomain.ActionReportAssigned,
				TargetType: auditdomain.TargetReport,
				TargetID:   report.ID.String(),
				Metadata: map[string]any{
					"assigned_to": assignee.String(),
				},
			}); err != nil {
				return err
			}
		}

		if notes != "" {
			comment := &domain.ReportComment{
				ID:        s.genID.Generate(),
				ReportID:  report.ID,
				AuthorID:  &actorID,
				Body:      fmt.Sprintf("Transition to %s: %s", to, notes),
				Internal:  true,
				CreatedAt: report.UpdatedAt,
			}
			if err := s.repo.InsertComment(ctx, tx, comment); err != nil {
				return err
			}
		}

		fanout = notifdomain.FanoutRequest{
			EventID:        report.EventID,
			ReportID:       report.ID,
			Kind:           notifdomain.KindStateChanged,
			Priority:       notifyPriority(report.Severity),
			ReporterID:     report.ReporterID,
			AssignedToID:   report.AssignedToID,
			ExcludeActorID: req.ActorID,
			Detail:         to,
		}
		notified, err = s.notify.NotifyReportEvent(ctx, tx, fanout)
		if err != nil {
			return err
		}

		updated = report
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ReportTransitions.WithLabelValues(string(updated.State)).Inc()
	s.notify.EmailReportEvent(ctx, notified, fanout)
	return updated, nil
}

func (s *service) AddComment(ctx context.Context, req domain.AddCommentRequest) (*domain.ReportComment, error) {
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, domain.Validationf("comment body is required")
	}

	authorID := req.AuthorID
	comment := &domain.ReportComment{
		ID:        s.genID.Generate(),
		ReportID:  req.ReportID,
		AuthorID:  &authorID,
		Body:      body,
		Internal:  req.Internal,
		CreatedAt: s.clock.Now(),
	}

	var (
		notified []snowflake.ID
		fanout   notifdomain.FanoutRequest
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		report, err := s.repo.FindByID(ctx, tx, req.EventID, req.ReportID)
		if err != nil {
			return err
		}
		if err := s.repo.InsertComment(ctx, tx, comment); err != nil {
			return err
		}
		fanout = notifdomain.FanoutRequest{
			EventID:        report.EventID,
			ReportID:       report.ID,
			Kind:           notifdomain.KindCommentAdded,
			ReporterID:     report.ReporterID,
			AssignedToID:   report.AssignedToID,
			ExcludeActorID: req.AuthorID,
		}
		notified, err = s.notify.NotifyReportEvent(ctx, tx, fanout)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notify.EmailReportEvent(ctx, notified, fanout)
	return comment, nil
}

func (s *service) ListComments(ctx context.Context, reportID snowflake.ID, includeInternal bool) ([]*domain.ReportComment, error) {
	return s.repo.ListComments(ctx, s.db, reportID, includeInternal)
}

// checkAssignee verifies the target user exists and holds Responder or
// Admin for the event. The existence read goes through the caller's
// transaction.
func (s *service) checkAssignee(ctx context.Context, tx *gorm.DB, eventID, userID snowflake.ID) error {
	user, err := s.userRepo.FindByID(ctx, tx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.Validationf("assignee does not exist")
	}

	roles, err := s.resolver.EventRoles(ctx, userID, eventID)
	if err != nil {
		return err
	}
	if !roles.Intersects(rbacdomain.NewRoleSet(rbacdomain.RoleResponder, rbacdomain.RoleAdmin, rbacdomain.RoleSuperAdmin)) {
		return domain.Validationf("assignee must hold responder or admin for the event")
	}
	return nil
}

// checkPreconditions enforces the per-target-state requirements before
// any mutation. The assignment check is cited first so callers fix the
// assignment before the notes.
func checkPreconditions(target domain.State, notes string, assignee *snowflake.ID) error {
	switch target {
	case domain.StateInvestigating:
		if assignee == nil {
			return domain.Validationf("requires assignment to a responder")
		}
		if notes == "" {
			return domain.Validationf("requires notes")
		}
	case domain.StateResolved:
		if notes == "" {
			return domain.Validationf("requires resolution notes")
		}
	}
	return nil
}

func notifyPriority(severity domain.Severity) notifdomain.Priority {
	if severity == domain.SeverityHigh || severity == domain.SeverityCritical {
		return notifdomain.PriorityHigh
	}
	return notifdomain.PriorityNormal
}
