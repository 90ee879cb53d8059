package server

import (
	"errors"
	"net/http"
	"testing"

	rbacdomain "github.com/safetydesk/safetydesk/internal/rbac/domain"
	reportdomain "github.com/safetydesk/safetydesk/internal/report/domain"
	userdomain "github.com/safetydesk/safetydesk/internal/user/domain"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		typ    string
	}{
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"forbidden", ErrForbidden, http.StatusForbidden, "forbidden"},
		{"forbidden with reason", &forbiddenError{reason: "insufficient role"}, http.StatusForbidden, "forbidden"},
		{"invalid request", ErrInvalidRequest, http.StatusBadRequest, "validation_failed"},
		{"report validation", reportdomain.Validationf("requires notes"), http.StatusBadRequest, "validation_failed"},
		{"invalid email", userdomain.ErrInvalidEmail, http.StatusBadRequest, "validation_failed"},
		{"unknown role", rbacdomain.ErrRoleNotFound, http.StatusBadRequest, "validation_failed"},
		{"report not found", reportdomain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"record not found", gorm.ErrRecordNotFound, http.StatusNotFound, "not_found"},
		{"duplicate user", userdomain.ErrUserExists, http.StatusConflict, "conflict"},
		{"revision conflict", reportdomain.ErrRevisionConflict, http.StatusConflict, "conflict"},
		{"sole admin", rbacdomain.ErrSoleAdmin, http.StatusBadRequest, "validation_failed"},
		{"rate limited", reportdomain.ErrRateLimited, http.StatusTooManyRequests, "rate_limited"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
		{"nil", nil, http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, payload := mapError(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.typ, payload.Type)
		})
	}
}

func TestMapErrorForbiddenReason(t *testing.T) {
	_, payload := mapError(&forbiddenError{reason: "insufficient role"})
	assert.Equal(t, "insufficient role", payload.Message)

	_, payload = mapError(ErrForbidden)
	assert.Equal(t, "forbidden", payload.Message)
}

func TestMapErrorNeverLeaksInternals(t *testing.T) {
	_, payload := mapError(errors.New("pq: connection refused"))
	assert.Equal(t, "internal server error", payload.Message)
}
