package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/safetydesk/safetydesk/pkg/db/pagination"
	"gorm.io/gorm"
)

// Entry is the caller-supplied part of an audit record. The service
// assigns the ID and the timestamp at write time.
type Entry struct {
	EventID    snowflake.ID
	ActorID    *snowflake.ID
	Action     string
	TargetType string
	TargetID   string
	FromState  *string
	ToState    *string
	Metadata   map[string]any
}

type ListRequest struct {
	pagination.Pagination
	EventID    snowflake.ID
	Action     string
	TargetType string
	TargetID   string
	StartAt    *time.Time
	EndAt      *time.Time
}

type ListResponse struct {
	pagination.PageInfo
	AuditLogs []AuditLog `json:"audit_logs"`
}

// TransitionRecord is one state change of a report, read from the
// structured audit fields.
type TransitionRecord struct {
	FromState string        `json:"from_state"`
	ToState   string        `json:"to_state"`
	ActorID   *snowflake.ID `json:"actor_id,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

type Service interface {
	// Record appends one immutable entry. The db handle lets callers run
	// the write inside their own transaction.
	Record(ctx context.Context, db *gorm.DB, entry Entry) error
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	// TransitionHistory returns the ordered state changes of a report.
	TransitionHistory(ctx context.Context, reportID snowflake.ID) ([]TransitionRecord, error)
}

var (
	ErrInvalidAction    = errors.New("invalid_audit_action")
	ErrInvalidPageToken = errors.New("invalid_page_token")
	ErrInvalidTimeRange = errors.New("invalid_time_range")
)
