// Package domain contains the notification model and fanout contract.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Kind classifies what happened to a report.
type Kind string

const (
	KindReportCreated Kind = "report_created"
	KindStateChanged  Kind = "report_state_changed"
	KindAssigned      Kind = "report_assigned"
	KindCommentAdded  Kind = "report_comment_added"
)

// Priority of a notification.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Notification is one per-recipient record created by fanout. Only the
// recipient flips the read flag; nothing else mutates rows.
type Notification struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	RecipientID snowflake.ID `gorm:"not null;index" json:"recipient_id"`
	Kind        Kind         `gorm:"type:text;not null" json:"kind"`
	Priority    Priority     `gorm:"type:text;not null" json:"priority"`
	Title       string       `gorm:"type:text;not null" json:"title"`
	Message     string       `gorm:"type:text;not null" json:"message"`
	Link        string       `gorm:"type:text" json:"link"`
	EventID     snowflake.ID `gorm:"index" json:"event_id"`
	ReportID    snowflake.ID `gorm:"index" json:"report_id"`
	Read        bool         `gorm:"not null;default:false" json:"read"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
}

// TableName sets the database table name.
func (Notification) TableName() string { return "notifications" }
