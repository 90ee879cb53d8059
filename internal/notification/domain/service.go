package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// FanoutRequest describes one logical report happening. The caller
// decides when to invoke fanout; the call itself is not idempotent.
type FanoutRequest struct {
	EventID      snowflake.ID
	ReportID     snowflake.ID
	Kind         Kind
	Priority     Priority
	ReporterID   *snowflake.ID
	AssignedToID *snowflake.ID
	// ExcludeActorID drops the principal who caused the happening from
	// the recipient set.
	ExcludeActorID snowflake.ID
	// Detail is interpolated into the message template (e.g. the new
	// state name).
	Detail string
}

type Service interface {
	// NotifyReportEvent computes the deduplicated recipient set
	// (reporter, assignee, event admins and responders, minus the actor)
	// and creates one notification per recipient using the supplied db
	// handle, so callers can include the writes in their transaction.
	// Returns the recipients notified.
	NotifyReportEvent(ctx context.Context, db *gorm.DB, req FanoutRequest) ([]snowflake.ID, error)
	// EmailReportEvent sends the rendered message to the recipients'
	// addresses, best effort. Callers invoke it only after the
	// transaction holding the notification rows has committed.
	EmailReportEvent(ctx context.Context, recipients []snowflake.ID, req FanoutRequest)
	ListForUser(ctx context.Context, userID snowflake.ID, unreadOnly bool) ([]*Notification, error)
	MarkRead(ctx context.Context, userID, notificationID snowflake.ID) error
}

var (
	ErrNotFound    = errors.New("notification_not_found")
	ErrInvalidKind = errors.New("invalid_notification_kind")
)
