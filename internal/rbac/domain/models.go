package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// RoleGrant ties a user to a role at a scope. EventID zero means the
// grant is global; only SuperAdmin is ever granted globally.
// The (user, event, role) triple is unique; granting the same role
// twice is a no-op.
type RoleGrant struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID    snowflake.ID `gorm:"not null;index;uniqueIndex:ux_role_grants,priority:1" json:"user_id"`
	EventID   snowflake.ID `gorm:"index;uniqueIndex:ux_role_grants,priority:2" json:"event_id,omitempty"`
	Role      Role         `gorm:"type:text;not null;uniqueIndex:ux_role_grants,priority:3" json:"role"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (RoleGrant) TableName() string { return "role_grants" }

// GlobalScope reports whether the grant applies at global scope.
func (g RoleGrant) GlobalScope() bool { return g.EventID == 0 }
