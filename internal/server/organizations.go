package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	organizationdomain "github.com/safetydesk/safetydesk/internal/organization/domain"
)

type createOrganizationRequest struct {
	Name string `json:"name"`
}

func (s *Server) CreateOrganization(c *gin.Context) {
	var req createOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.organizationSvc.Create(c.Request.Context(), s.actorID(c), organizationdomain.CreateOrganizationRequest{
		Name: strings.TrimSpace(req.Name),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (s *Server) ListOrganizations(c *gin.Context) {
	items, err := s.organizationSvc.ListByUser(c.Request.Context(), s.actorID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

type addMemberRequest struct {
	UserID snowflake.ID `json:"user_id,string"`
	Role   string       `json:"role"`
}

func (s *Server) AddOrganizationMember(c *gin.Context) {
	orgID, ok := parseIDParam(c, "orgId")
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	// Only org admins may manage membership.
	role, found, err := s.organizationSvc.MemberRole(c.Request.Context(), orgID, s.actorID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !found || !role.Covers(organizationdomain.OrgRoleAdmin) {
		AbortWithError(c, ErrForbidden)
		return
	}

	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	memberRole := organizationdomain.OrgRole(strings.TrimSpace(req.Role))
	if err := s.organizationSvc.AddMember(c.Request.Context(), orgID, req.UserID, memberRole); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) ListOrganizationEvents(c *gin.Context) {
	orgID, ok := parseIDParam(c, "orgId")
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	_, found, err := s.organizationSvc.MemberRole(c.Request.Context(), orgID, s.actorID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !found {
		AbortWithError(c, ErrForbidden)
		return
	}

	events, err := s.eventSvc.ListByOrg(c.Request.Context(), orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": events})
}
