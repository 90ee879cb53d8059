package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/safetydesk/safetydesk/internal/clock"
	"github.com/safetydesk/safetydesk/internal/user/domain"
	userrepo "github.com/safetydesk/safetydesk/internal/user/repository"
	"github.com/safetydesk/safetydesk/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newUserService(t *testing.T) domain.Service {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.User{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(
		conn,
		zaptest.NewLogger(t),
		clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		node,
		userrepo.Provide(),
	)
}

func TestRegisterNormalizesEmail(t *testing.T) {
	svc := newUserService(t)

	user, err := svc.Register(context.Background(), domain.RegisterUserRequest{
		Email:       "  Dana@Example.COM ",
		DisplayName: "Dana",
	})
	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", user.Email)
	assert.NotZero(t, user.ID)
	assert.NotEmpty(t, user.ExternalID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.RegisterUserRequest{
		Email:       "dana@example.com",
		DisplayName: "Dana",
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, domain.RegisterUserRequest{
		Email:       "DANA@example.com",
		DisplayName: "Other Dana",
	})
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestRegisterValidation(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.RegisterUserRequest{Email: "not-an-email", DisplayName: "Dana"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.Register(ctx, domain.RegisterUserRequest{Email: "dana@example.com", DisplayName: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestGetByIDMissing(t *testing.T) {
	svc := newUserService(t)

	_, err := svc.GetByID(context.Background(), snowflake.ID(12345))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
