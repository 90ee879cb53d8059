package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/safetydesk/safetydesk/pkg/db/pagination"
)

type CreateReportRequest struct {
	EventID     snowflake.ID  `json:"event_id,string"`
	ReporterID  *snowflake.ID `json:"reporter_id,string,omitempty"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Severity    Severity      `json:"severity,omitempty"`
}

// TransitionRequest is the single state-mutating entry point's input.
// ExpectedRevision, when set, must match the stored revision or the
// transition is rejected with ErrRevisionConflict.
type TransitionRequest struct {
	EventID          snowflake.ID
	ReportID         snowflake.ID
	ActorID          snowflake.ID
	TargetState      State
	Notes            string
	AssignToID       *snowflake.ID
	ExpectedRevision *int64
}

type AddCommentRequest struct {
	EventID  snowflake.ID
	ReportID snowflake.ID
	AuthorID snowflake.ID
	Body     string
	Internal bool
}

type ListRequest struct {
	pagination.Pagination
	EventID snowflake.ID
	State   State
}

type ListResponse struct {
	pagination.PageInfo
	Reports []Report `json:"reports"`
}

type Service interface {
	// Create persists a submitted report, writes its audit entry, and
	// notifies the event's responders and admins.
	Create(ctx context.Context, req CreateReportRequest) (*Report, error)
	Get(ctx context.Context, eventID, reportID snowflake.ID) (*Report, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	// Transition validates and applies a lifecycle transition. All of its
	// effects (state change, assignment, audit entries, transition
	// comment, notifications) commit atomically or not at all.
	Transition(ctx context.Context, req TransitionRequest) (*Report, error)
	AddComment(ctx context.Context, req AddCommentRequest) (*ReportComment, error)
	ListComments(ctx context.Context, reportID snowflake.ID, includeInternal bool) ([]*ReportComment, error)
}

var (
	ErrNotFound         = errors.New("report_not_found")
	ErrRevisionConflict = errors.New("report_revision_conflict")
	ErrRateLimited      = errors.New("report_rate_limited")
	ErrValidation       = errors.New("validation_failed")
)

// ValidationError carries the unmet precondition so callers can
// correct the request. It matches ErrValidation under errors.Is.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func Validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
