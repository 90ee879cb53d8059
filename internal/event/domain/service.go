package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type CreateEventRequest struct {
	OrgID    snowflake.ID `json:"org_id,string,omitempty"`
	Name     string       `json:"name"`
	StartsAt *time.Time   `json:"starts_at,omitempty"`
	EndsAt   *time.Time   `json:"ends_at,omitempty"`
}

type Service interface {
	Create(ctx context.Context, req CreateEventRequest) (*Event, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Event, error)
	// GetBySlug is the read-only slug directory used by authorization
	// to resolve a route slug into an event ID.
	GetBySlug(ctx context.Context, slug string) (*Event, error)
	ListByOrg(ctx context.Context, orgID snowflake.ID) ([]*Event, error)
}

var (
	ErrNotFound    = errors.New("event_not_found")
	ErrInvalidName = errors.New("invalid_event_name")
	ErrSlugTaken   = errors.New("event_slug_taken")
)
