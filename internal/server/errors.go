package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	eventdomain "github.com/safetydesk/safetydesk/internal/event/domain"
	notifdomain "github.com/safetydesk/safetydesk/internal/notification/domain"
	organizationdomain "github.com/safetydesk/safetydesk/internal/organization/domain"
	rbacdomain "github.com/safetydesk/safetydesk/internal/rbac/domain"
	reportdomain "github.com/safetydesk/safetydesk/internal/report/domain"
	userdomain "github.com/safetydesk/safetydesk/internal/user/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

// forbiddenError carries the guard's denial reason to the response
// without leaking anything beyond it.
type forbiddenError struct {
	reason string
}

func (e *forbiddenError) Error() string { return e.reason }

func (e *forbiddenError) Is(target error) bool { return target == ErrForbidden }

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "not authenticated",
		}
	case errors.Is(err, ErrForbidden):
		message := "forbidden"
		var fErr *forbiddenError
		if errors.As(err, &fErr) && fErr.reason != "" {
			message = fErr.reason
		}
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: message,
		}
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_failed",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case errors.Is(err, reportdomain.ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many submissions, slow down",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, reportdomain.ErrValidation),
		errors.Is(err, userdomain.ErrInvalidEmail),
		errors.Is(err, userdomain.ErrInvalidName),
		errors.Is(err, eventdomain.ErrInvalidName),
		errors.Is(err, organizationdomain.ErrInvalidName),
		errors.Is(err, organizationdomain.ErrInvalidRole),
		errors.Is(err, organizationdomain.ErrInvalidUser),
		errors.Is(err, rbacdomain.ErrRoleNotFound),
		errors.Is(err, rbacdomain.ErrGlobalScopeRole),
		errors.Is(err, notifdomain.ErrInvalidKind),
		errors.Is(err, rbacdomain.ErrSoleAdmin):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, userdomain.ErrNotFound),
		errors.Is(err, organizationdomain.ErrNotFound),
		errors.Is(err, eventdomain.ErrNotFound),
		errors.Is(err, reportdomain.ErrNotFound),
		errors.Is(err, notifdomain.ErrNotFound),
		errors.Is(err, rbacdomain.ErrGrantNotFound),
		errors.Is(err, rbacdomain.ErrPrincipalNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, userdomain.ErrUserExists),
		errors.Is(err, eventdomain.ErrSlugTaken),
		errors.Is(err, organizationdomain.ErrSlugTaken),
		errors.Is(err, reportdomain.ErrRevisionConflict):
		return true
	default:
		return false
	}
}
