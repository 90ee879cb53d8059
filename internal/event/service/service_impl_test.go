package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/safetydesk/safetydesk/internal/clock"
	"github.com/safetydesk/safetydesk/internal/event/domain"
	eventrepo "github.com/safetydesk/safetydesk/internal/event/repository"
	"github.com/safetydesk/safetydesk/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newEventService(t *testing.T) (domain.Service, *snowflake.Node) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Event{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(
		conn,
		zaptest.NewLogger(t),
		clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		node,
		eventrepo.Provide(),
	)
	return svc, node
}

func TestCreateEventSlug(t *testing.T) {
	svc, node := newEventService(t)
	ctx := context.Background()

	event, err := svc.Create(ctx, domain.CreateEventRequest{
		OrgID: node.Generate(),
		Name:  "GopherCon EU 2026",
	})
	require.NoError(t, err)
	assert.Equal(t, "gophercon-eu-2026", event.Slug)

	found, err := svc.GetBySlug(ctx, "gophercon-eu-2026")
	require.NoError(t, err)
	assert.Equal(t, event.ID, found.ID)
}

func TestCreateEventSlugTaken(t *testing.T) {
	svc, node := newEventService(t)
	ctx := context.Background()
	orgID := node.Generate()

	_, err := svc.Create(ctx, domain.CreateEventRequest{OrgID: orgID, Name: "GopherCon"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateEventRequest{OrgID: orgID, Name: "GopherCon"})
	assert.ErrorIs(t, err, domain.ErrSlugTaken)
}

func TestCreateEventEmptyName(t *testing.T) {
	svc, node := newEventService(t)

	_, err := svc.Create(context.Background(), domain.CreateEventRequest{
		OrgID: node.Generate(),
		Name:  "  ",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestGetBySlugMissing(t *testing.T) {
	svc, _ := newEventService(t)

	_, err := svc.GetBySlug(context.Background(), "no-such-event")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
