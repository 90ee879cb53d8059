package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	rbacdomain "github.com/safetydesk/safetydesk/internal/rbac/domain"
	reportdomain "github.com/safetydesk/safetydesk/internal/report/domain"
	"github.com/safetydesk/safetydesk/pkg/db/pagination"
)

type createReportRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Severity    string `json:"severity,omitempty"`
	Anonymous   bool   `json:"anonymous,omitempty"`
}

func (s *Server) CreateReport(c *gin.Context) {
	eventID, err := s.eventIDFromRoute(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req createReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var reporterID *snowflake.ID
	if !req.Anonymous {
		actorID := s.actorID(c)
		reporterID = &actorID
	}

	report, err := s.reportSvc.Create(c.Request.Context(), reportdomain.CreateReportRequest{
		EventID:     eventID,
		ReporterID:  reporterID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Severity:    reportdomain.Severity(strings.TrimSpace(req.Severity)),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, report)
}

type listReportsQuery struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size"`
	State     string `form:"state"`
}

func (s *Server) ListReports(c *gin.Context) {
	eventID, err := s.eventIDFromRoute(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var query listReportsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.reportSvc.List(c.Request.Context(), reportdomain.ListRequest{
		Pagination: pagination.Pagination{
			PageToken: strings.TrimSpace(query.PageToken),
			PageSize:  query.PageSize,
		},
		EventID: eventID,
		State:   reportdomain.State(strings.TrimSpace(query.State)),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetReport(c *gin.Context) {
	eventID, err := s.eventIDFromRoute(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	reportID, ok := parseIDParam(c, "reportId")
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	report, err := s.reportSvc.Get(c.Request.Context(), eventID, reportID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

type transitionReportRequest struct {
	TargetState      string        `json:"target_state"`
	Notes            string        `json:"notes,omitempty"`
	AssignToID       *snowflake.ID `json:"assign_to_id,string,omitempty"`
	ExpectedRevision *int64        `json:"expected_revision,omitempty"`
}

func (s *Server) TransitionReport(c *gin.Context) {
	eventID, err := s.eventIDFromRoute(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	reportID, ok := parseIDParam(c, "reportId")
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	var req transitionReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	report, err := s.reportSvc.Transition(c.Request.Context(), reportdomain.TransitionRequest{
		EventID:          eventID,
		ReportID:         reportID,
		ActorID:          s.actorID(c),
		TargetState:      reportdomain.State(strings.TrimSpace(req.TargetState)),
		Notes:            req.Notes,
		AssignToID:       req.AssignToID,
		ExpectedRevision: req.ExpectedRevision,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (s *Server) GetTransitionHistory(c *gin.Context) {
	reportID, ok := parseIDParam(c, "reportId")
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	records, err := s.auditSvc.TransitionHistory(c.Request.Context(), reportID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": records})
}

type addCommentRequest struct {
	Body     string `json:"body"`
	Internal bool   `json:"internal,omitempty"`
}

func (s *Server) AddReportComment(c *gin.Context) {
	eventID, err := s.eventIDFromRoute(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	reportID, ok := parseIDParam(c, "reportId")
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	comment, err := s.reportSvc.AddComment(c.Request.Context(), reportdomain.AddCommentRequest{
		EventID:  eventID,
		ReportID: reportID,
		AuthorID: s.actorID(c),
		Body:     req.Body,
		Internal: req.Internal,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

func (s *Server) ListReportComments(c *gin.Context) {
	eventID, err := s.eventIDFromRoute(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	reportID, ok := parseIDParam(c, "reportId")
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	// Internal comments are visible to responders and up.
	roles, err := s.resolver.EventRoles(c.Request.Context(), s.actorID(c), eventID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	includeInternal := roles.Intersects(rbacdomain.NewRoleSet(
		rbacdomain.RoleResponder, rbacdomain.RoleAdmin, rbacdomain.RoleSuperAdmin,
	))

	comments, err := s.reportSvc.ListComments(c.Request.Context(), reportID, includeInternal)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": comments})
}
