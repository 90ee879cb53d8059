// Package domain contains persistence models for the user service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// User is an authenticated principal. Users are never hard-deleted;
// removing every role grant deactivates them implicitly.
type User struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	ExternalID  string       `gorm:"type:text;not null;uniqueIndex:ux_users_external_id" json:"external_id"`
	Email       string       `gorm:"type:text;not null;uniqueIndex:ux_users_email" json:"email"`
	DisplayName string       `gorm:"type:text;not null" json:"display_name"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }
