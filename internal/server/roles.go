package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	rbacdomain "github.com/safetydesk/safetydesk/internal/rbac/domain"
)

type assignRoleRequest struct {
	UserID snowflake.ID `json:"user_id,string"`
	Role   string       `json:"role"`
}

func (s *Server) AssignRole(c *gin.Context) {
	eventID, err := s.eventIDFromRoute(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req assignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	role, ok := rbacdomain.ParseRole(req.Role)
	if !ok {
		AbortWithError(c, rbacdomain.ErrRoleNotFound)
		return
	}

	grant, err := s.grantSvc.AssignRole(c.Request.Context(), eventID, req.UserID, role)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, grant)
}

type revokeRoleQuery struct {
	UserID string `form:"user_id"`
	Role   string `form:"role"`
}

func (s *Server) RevokeRole(c *gin.Context) {
	eventID, err := s.eventIDFromRoute(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var query revokeRoleQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	userID, err := snowflake.ParseString(strings.TrimSpace(query.UserID))
	if err != nil || userID == 0 {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	role, ok := rbacdomain.ParseRole(query.Role)
	if !ok {
		AbortWithError(c, rbacdomain.ErrRoleNotFound)
		return
	}

	if err := s.grantSvc.RevokeRole(c.Request.Context(), eventID, userID, role); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) ListRoles(c *gin.Context) {
	eventID, err := s.eventIDFromRoute(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	grants, err := s.grantSvc.ListEventGrants(c.Request.Context(), eventID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": grants})
}

type grantSuperAdminRequest struct {
	UserID snowflake.ID `json:"user_id,string"`
}

func (s *Server) GrantSuperAdmin(c *gin.Context) {
	var req grantSuperAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	grant, err := s.grantSvc.GrantGlobalSuperAdmin(c.Request.Context(), req.UserID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, grant)
}
