// Package domain contains the append-only audit log model.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// AuditLog is an immutable record of a state or assignment change.
// Rows are only ever inserted; nothing in the codebase updates or
// deletes them. FromState/ToState are structured fields so transition
// history never has to be parsed back out of the action text.
type AuditLog struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	EventID    snowflake.ID      `gorm:"index" json:"event_id,omitempty"`
	ActorID    *snowflake.ID     `gorm:"index" json:"actor_id,omitempty"`
	Action     string            `gorm:"type:text;not null" json:"action"`
	TargetType string            `gorm:"type:text;not null" json:"target_type"`
	TargetID   string            `gorm:"type:text" json:"target_id,omitempty"`
	FromState  *string           `gorm:"type:text" json:"from_state,omitempty"`
	ToState    *string           `gorm:"type:text" json:"to_state,omitempty"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt  time.Time         `gorm:"not null;index" json:"created_at"`
}

// TableName sets the database table name.
func (AuditLog) TableName() string { return "audit_logs" }

// Common audit actions.
const (
	ActionReportStateChanged = "report.state_changed"
	ActionReportAssigned     = "report.assigned"
	ActionReportCreated      = "report.created"
	ActionRoleAssigned       = "role.assigned"
	ActionRoleRevoked        = "role.revoked"
)

// Target types.
const (
	TargetReport = "report"
	TargetRole   = "role_grant"
	TargetUser   = "user"
)
