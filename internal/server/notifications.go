package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type listNotificationsQuery struct {
	UnreadOnly bool `form:"unread_only"`
}

func (s *Server) ListNotifications(c *gin.Context) {
	var query listNotificationsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	items, err := s.notifSvc.ListForUser(c.Request.Context(), s.actorID(c), query.UnreadOnly)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) MarkNotificationRead(c *gin.Context) {
	notificationID, ok := parseIDParam(c, "notificationId")
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	if err := s.notifSvc.MarkRead(c.Request.Context(), s.actorID(c), notificationID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
