package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	eventdomain "github.com/safetydesk/safetydesk/internal/event/domain"
	organizationdomain "github.com/safetydesk/safetydesk/internal/organization/domain"
	rbacdomain "github.com/safetydesk/safetydesk/internal/rbac/domain"
)

type createEventRequest struct {
	OrgID    snowflake.ID `json:"org_id,string"`
	Name     string       `json:"name"`
	StartsAt *time.Time   `json:"starts_at,omitempty"`
	EndsAt   *time.Time   `json:"ends_at,omitempty"`
}

func (s *Server) CreateEvent(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if req.OrgID != 0 {
		role, found, err := s.organizationSvc.MemberRole(c.Request.Context(), req.OrgID, s.actorID(c))
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if !found || !role.Covers(organizationdomain.OrgRoleAdmin) {
			AbortWithError(c, ErrForbidden)
			return
		}
	}

	event, err := s.eventSvc.Create(c.Request.Context(), eventdomain.CreateEventRequest{
		OrgID:    req.OrgID,
		Name:     strings.TrimSpace(req.Name),
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// The creator administers the event they created.
	if _, err := s.grantSvc.AssignRole(c.Request.Context(), event.ID, s.actorID(c), rbacdomain.RoleAdmin); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

func (s *Server) GetEvent(c *gin.Context) {
	raw := strings.TrimSpace(c.Param("eventId"))

	var (
		event *eventdomain.Event
		err   error
	)
	if id, parseErr := snowflake.ParseString(raw); parseErr == nil && id > 0 {
		event, err = s.eventSvc.GetByID(c.Request.Context(), id)
	} else {
		event, err = s.eventSvc.GetBySlug(c.Request.Context(), raw)
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}
