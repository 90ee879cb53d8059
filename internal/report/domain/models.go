// Package domain contains the report lifecycle models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Report is one incident report scoped to an event. ReporterID is nil
// for anonymous submissions. Reports are never hard-deleted by the
// normal flow. Revision is bumped on every state mutation and guards
// transitions against concurrent writers.
type Report struct {
	ID              snowflake.ID  `gorm:"primaryKey" json:"id"`
	EventID         snowflake.ID  `gorm:"not null;index:ix_reports_event" json:"event_id"`
	ReporterID      *snowflake.ID `gorm:"index" json:"reporter_id,omitempty"`
	AssignedToID    *snowflake.ID `gorm:"index" json:"assigned_to_id,omitempty"`
	Title           string        `gorm:"type:text;not null" json:"title"`
	Description     string        `gorm:"type:text" json:"description,omitempty"`
	Severity        Severity      `gorm:"type:text;not null" json:"severity"`
	State           State         `gorm:"type:text;not null;index:ix_reports_event_state" json:"state"`
	ResolutionNotes string        `gorm:"type:text" json:"resolution_notes,omitempty"`
	Revision        int64         `gorm:"not null;default:1" json:"revision"`
	CreatedAt       time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Report) TableName() string { return "reports" }

// ReportComment is a comment attached to a report. Internal comments
// are visible to responders and admins only.
type ReportComment struct {
	ID        snowflake.ID  `gorm:"primaryKey" json:"id"`
	ReportID  snowflake.ID  `gorm:"not null;index:ix_report_comments_report" json:"report_id"`
	AuthorID  *snowflake.ID `json:"author_id,omitempty"`
	Body      string        `gorm:"type:text;not null" json:"body"`
	Internal  bool          `gorm:"not null;default:false" json:"internal"`
	CreatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (ReportComment) TableName() string { return "report_comments" }
