package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/safetydesk/safetydesk/internal/audit"
	auditdomain "github.com/safetydesk/safetydesk/internal/audit/domain"
	"github.com/safetydesk/safetydesk/internal/config"
	"github.com/safetydesk/safetydesk/internal/event"
	eventdomain "github.com/safetydesk/safetydesk/internal/event/domain"
	"github.com/safetydesk/safetydesk/internal/notification"
	notifdomain "github.com/safetydesk/safetydesk/internal/notification/domain"
	"github.com/safetydesk/safetydesk/internal/organization"
	organizationdomain "github.com/safetydesk/safetydesk/internal/organization/domain"
	"github.com/safetydesk/safetydesk/internal/providers/email"
	"github.com/safetydesk/safetydesk/internal/ratelimit"
	"github.com/safetydesk/safetydesk/internal/rbac"
	rbacdomain "github.com/safetydesk/safetydesk/internal/rbac/domain"
	"github.com/safetydesk/safetydesk/internal/report"
	reportdomain "github.com/safetydesk/safetydesk/internal/report/domain"
	"github.com/safetydesk/safetydesk/internal/user"
	userdomain "github.com/safetydesk/safetydesk/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Provide(NewHeaderPrincipalProvider),
	user.Module,
	organization.Module,
	event.Module,
	rbac.Module,
	audit.Module,
	notification.Module,
	email.Module,
	ratelimit.Module,
	report.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin() *gin.Engine {
	return NewEngine()
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	db         *gorm.DB
	genID      *snowflake.Node
	principals PrincipalProvider

	guard           rbacdomain.Guard
	resolver        rbacdomain.Resolver
	grantSvc        rbacdomain.GrantService
	userSvc         userdomain.Service
	organizationSvc organizationdomain.Service
	eventSvc        eventdomain.Service
	reportSvc       reportdomain.Service
	auditSvc        auditdomain.Service
	notifSvc        notifdomain.Service
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	GenID           *snowflake.Node
	Principals      PrincipalProvider
	Guard           rbacdomain.Guard
	Resolver        rbacdomain.Resolver
	GrantSvc        rbacdomain.GrantService
	UserSvc         userdomain.Service
	OrganizationSvc organizationdomain.Service
	EventSvc        eventdomain.Service
	ReportSvc       reportdomain.Service
	AuditSvc        auditdomain.Service
	NotifSvc        notifdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		genID:           p.GenID,
		principals:      p.Principals,
		guard:           p.Guard,
		resolver:        p.Resolver,
		grantSvc:        p.GrantSvc,
		userSvc:         p.UserSvc,
		organizationSvc: p.OrganizationSvc,
		eventSvc:        p.EventSvc,
		reportSvc:       p.ReportSvc,
		auditSvc:        p.AuditSvc,
		notifSvc:        p.NotifSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Users --------
	api.POST("/users", s.RegisterUser)
	api.GET("/users/:userId", s.AuthRequired(), s.GetUser)
	api.GET("/me", s.AuthRequired(), s.Me)

	// -------- Organizations --------
	api.POST("/orgs", s.AuthRequired(), s.CreateOrganization)
	api.GET("/orgs", s.AuthRequired(), s.ListOrganizations)
	api.POST("/orgs/:orgId/members", s.AuthRequired(), s.AddOrganizationMember)
	api.GET("/orgs/:orgId/events", s.AuthRequired(), s.ListOrganizationEvents)

	// -------- Events --------
	api.POST("/events", s.AuthRequired(), s.CreateEvent)
	api.GET("/events/:eventId", s.AuthRequired(), s.GetEvent)

	// -------- Role grants --------
	api.POST("/events/:eventId/roles",
		s.AuthRequired(),
		s.RequireEventRoles(rbacdomain.RoleAdmin, rbacdomain.RoleSuperAdmin),
		s.AssignRole)
	api.DELETE("/events/:eventId/roles",
		s.AuthRequired(),
		s.RequireEventRoles(rbacdomain.RoleAdmin, rbacdomain.RoleSuperAdmin),
		s.RevokeRole)
	api.GET("/events/:eventId/roles",
		s.AuthRequired(),
		s.RequireEventRoles(rbacdomain.RoleAdmin, rbacdomain.RoleSuperAdmin),
		s.ListRoles)
	api.POST("/superadmins", s.AuthRequired(), s.RequireSuperAdmin(), s.GrantSuperAdmin)

	// -------- Reports --------
	api.POST("/events/:eventId/reports",
		s.AuthRequired(),
		s.RequireEventRoles(rbacdomain.RoleReporter, rbacdomain.RoleResponder, rbacdomain.RoleAdmin, rbacdomain.RoleSuperAdmin),
		s.CreateReport)
	api.GET("/events/:eventId/reports",
		s.AuthRequired(),
		s.RequireEventRoles(rbacdomain.RoleResponder, rbacdomain.RoleAdmin, rbacdomain.RoleSuperAdmin),
		s.ListReports)
	api.GET("/events/:eventId/reports/:reportId",
		s.AuthRequired(),
		s.RequireEventRoles(rbacdomain.RoleResponder, rbacdomain.RoleAdmin, rbacdomain.RoleSuperAdmin),
		s.GetReport)
	api.POST("/events/:eventId/reports/:reportId/transition",
		s.AuthRequired(),
		s.RequireEventRoles(rbacdomain.RoleResponder, rbacdomain.RoleAdmin, rbacdomain.RoleSuperAdmin),
		s.TransitionReport)
	api.GET("/events/:eventId/reports/:reportId/history",
		s.AuthRequired(),
		s.RequireEventRoles(rbacdomain.RoleResponder, rbacdomain.RoleAdmin, rbacdomain.RoleSuperAdmin),
		s.GetTransitionHistory)
	api.POST("/events/:eventId/reports/:reportId/comments",
		s.AuthRequired(),
		s.RequireEventRoles(rbacdomain.RoleResponder, rbacdomain.RoleAdmin, rbacdomain.RoleSuperAdmin),
		s.AddReportComment)
	api.GET("/events/:eventId/reports/:reportId/comments",
		s.AuthRequired(),
		s.RequireEventRoles(rbacdomain.RoleResponder, rbacdomain.RoleAdmin, rbacdomain.RoleSuperAdmin),
		s.ListReportComments)

	// -------- Audit logs --------
	api.GET("/events/:eventId/audit_logs",
		s.AuthRequired(),
		s.RequireEventRoles(rbacdomain.RoleAdmin, rbacdomain.RoleSuperAdmin),
		s.ListAuditLogs)

	// -------- Notifications --------
	api.GET("/notifications", s.AuthRequired(), s.ListNotifications)
	api.POST("/notifications/:notificationId/read", s.AuthRequired(), s.MarkNotificationRead)
}
