package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/safetydesk/safetydesk/internal/eventcontext"
	rbacdomain "github.com/safetydesk/safetydesk/internal/rbac/domain"
)

const (
	HeaderRequestID = "X-Request-ID"

	contextActorIDKey = "actor_id"
	contextEventIDKey = "event_id"
)

// PrincipalProvider extracts the authenticated principal from a
// request. Authentication itself happens upstream (gateway or identity
// proxy); this service only consumes its result.
type PrincipalProvider interface {
	PrincipalID(c *gin.Context) (snowflake.ID, bool)
}

// headerPrincipal trusts the X-User-ID header set by the upstream
// authenticator.
type headerPrincipal struct{}

func NewHeaderPrincipalProvider() PrincipalProvider {
	return headerPrincipal{}
}

func (headerPrincipal) PrincipalID(c *gin.Context) (snowflake.ID, bool) {
	raw := strings.TrimSpace(c.GetHeader("X-User-ID"))
	if raw == "" {
		return 0, false
	}
	id, err := snowflake.ParseString(raw)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(HeaderRequestID, requestID)
		c.Request = c.Request.WithContext(
			eventcontext.WithRequestID(c.Request.Context(), requestID),
		)
		c.Next()
	}
}

// AuthRequired resolves the principal and stores it on the request
// context. Requests without a resolvable principal are rejected.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := s.principals.PrincipalID(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Set(contextActorIDKey, actorID)
		c.Request = c.Request.WithContext(
			eventcontext.WithActorID(c.Request.Context(), actorID),
		)
		c.Next()
	}
}

// RequireEventRoles authorizes the request against the event named in
// the route. The :eventId parameter may be a snowflake ID or a slug;
// the guard resolves either.
func (s *Server) RequireEventRoles(roles ...rbacdomain.Role) gin.HandlerFunc {
	allowed := rbacdomain.NewRoleSet(roles...)
	return func(c *gin.Context) {
		actorID := s.actorID(c)
		scope := scopeFromRoute(c)

		decision := s.guard.Authorize(c.Request.Context(), actorID, scope, allowed)
		if !decision.Allowed {
			AbortWithError(c, decisionError(decision))
			return
		}

		if scope.EventID != 0 {
			c.Set(contextEventIDKey, scope.EventID)
			c.Request = c.Request.WithContext(
				eventcontext.WithEventID(c.Request.Context(), scope.EventID),
			)
		}
		c.Next()
	}
}

// RequireSuperAdmin gates purely global operations.
func (s *Server) RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := s.guard.RequireSuperAdmin(c.Request.Context(), s.actorID(c))
		if !decision.Allowed {
			AbortWithError(c, decisionError(decision))
			return
		}
		c.Next()
	}
}

func decisionError(decision rbacdomain.Decision) error {
	switch {
	case decision.Internal:
		return ErrInternal
	case decision.Reason == rbacdomain.ReasonNotAuthenticated:
		return ErrUnauthorized
	default:
		return &forbiddenError{reason: decision.Reason}
	}
}

func (s *Server) actorID(c *gin.Context) snowflake.ID {
	if v, ok := c.Get(contextActorIDKey); ok {
		if id, ok := v.(snowflake.ID); ok {
			return id
		}
	}
	return 0
}

// scopeFromRoute turns the :eventId route parameter into a scope hint.
// Numeric values are treated as event IDs, anything else as a slug.
func scopeFromRoute(c *gin.Context) rbacdomain.ScopeHint {
	raw := strings.TrimSpace(c.Param("eventId"))
	if raw == "" {
		return rbacdomain.ScopeHint{}
	}
	if id, err := snowflake.ParseString(raw); err == nil && id > 0 {
		return rbacdomain.ScopeHint{EventID: id}
	}
	return rbacdomain.ScopeHint{Slug: raw}
}

func (s *Server) eventIDFromRoute(c *gin.Context) (snowflake.ID, error) {
	if v, ok := c.Get(contextEventIDKey); ok {
		if id, ok := v.(snowflake.ID); ok && id != 0 {
			return id, nil
		}
	}

	raw := strings.TrimSpace(c.Param("eventId"))
	if id, err := snowflake.ParseString(raw); err == nil && id > 0 {
		return id, nil
	}
	event, err := s.eventSvc.GetBySlug(c.Request.Context(), raw)
	if err != nil {
		return 0, err
	}
	return event.ID, nil
}

func parseIDParam(c *gin.Context, name string) (snowflake.ID, bool) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param(name)))
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
