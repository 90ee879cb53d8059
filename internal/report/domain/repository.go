package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	EventID snowflake.ID
	State   State
	Cursor  *ReportCursor
	Limit   int
}

type ReportCursor struct {
	ID snowflake.ID
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, report *Report) error
	// FindByID scopes the lookup to the event so a report cannot be read
	// through another event's route.
	FindByID(ctx context.Context, db *gorm.DB, eventID, reportID snowflake.ID) (*Report, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Report, error)
	// UpdateState applies the mutated report only when the stored
	// revision still matches prevRevision. Returns false on a lost race.
	UpdateState(ctx context.Context, db *gorm.DB, report *Report, prevRevision int64) (bool, error)
	InsertComment(ctx context.Context, db *gorm.DB, comment *ReportComment) error
	ListComments(ctx context.Context, db *gorm.DB, reportID snowflake.ID, includeInternal bool) ([]*ReportComment, error)
}
