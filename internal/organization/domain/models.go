// Package domain contains persistence models for the organization service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// OrgRole is the membership role of a user inside an organization.
// It is independent of event-level role grants.
type OrgRole string

const (
	OrgRoleAdmin  OrgRole = "org_admin"
	OrgRoleViewer OrgRole = "org_viewer"
)

// Valid reports whether the role is one of the closed set.
func (r OrgRole) Valid() bool {
	return r == OrgRoleAdmin || r == OrgRoleViewer
}

// Covers reports whether the role grants the capability of other.
// org_admin implies org_viewer; there is no further hierarchy.
func (r OrgRole) Covers(other OrgRole) bool {
	if r == other {
		return true
	}
	return r == OrgRoleAdmin && other == OrgRoleViewer
}

// Organization owns zero or more events.
type Organization struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Slug      string       `gorm:"type:text;not null;uniqueIndex:ux_organizations_slug" json:"slug"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Organization) TableName() string { return "organizations" }

// OrganizationMember represents membership of a user in an organization.
// At most one row exists per (org, user) pair.
type OrganizationMember struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID `gorm:"not null;index;uniqueIndex:ux_org_member,priority:1" json:"org_id"`
	UserID    snowflake.ID `gorm:"not null;index;uniqueIndex:ux_org_member,priority:2" json:"user_id"`
	Role      OrgRole      `gorm:"type:text;not null" json:"role"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (OrganizationMember) TableName() string { return "organization_members" }
