package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type CreateOrganizationRequest struct {
	Name string `json:"name"`
}

type OrganizationResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type OrganizationListItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      OrgRole   `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type Service interface {
	Create(ctx context.Context, userID snowflake.ID, req CreateOrganizationRequest) (*OrganizationResponse, error)
	AddMember(ctx context.Context, orgID, userID snowflake.ID, role OrgRole) error
	MemberRole(ctx context.Context, orgID, userID snowflake.ID) (OrgRole, bool, error)
	ListByUser(ctx context.Context, userID snowflake.ID) ([]OrganizationListItem, error)
}

var (
	ErrNotFound    = errors.New("organization_not_found")
	ErrInvalidName = errors.New("invalid_organization_name")
	ErrInvalidUser = errors.New("invalid_user")
	ErrInvalidRole = errors.New("invalid_org_role")
	ErrSlugTaken   = errors.New("organization_slug_taken")
)
