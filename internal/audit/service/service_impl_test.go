package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/safetydesk/safetydesk/internal/audit/domain"
	auditrepo "github.com/safetydesk/safetydesk/internal/audit/repository"
	"github.com/safetydesk/safetydesk/internal/clock"
	"github.com/safetydesk/safetydesk/internal/eventcontext"
	"github.com/safetydesk/safetydesk/pkg/db"
	"github.com/safetydesk/safetydesk/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type auditFixture struct {
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
	svc   domain.Service
}

func newAuditFixture(t *testing.T) *auditFixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.AuditLog{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fakeClock := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	svc := NewService(Params{
		DB:    conn,
		Log:   zaptest.NewLogger(t),
		Clock: fakeClock,
		GenID: node,
		Repo:  auditrepo.Provide(),
	})

	return &auditFixture{db: conn, node: node, clock: fakeClock, svc: svc}
}

func TestRecordStampsServerSide(t *testing.T) {
	f := newAuditFixture(t)
	eventID := f.node.Generate()
	actorID := f.node.Generate()

	ctx := eventcontext.WithRequestID(context.Background(), "req-123")
	err := f.svc.Record(ctx, nil, domain.Entry{
		EventID:    eventID,
		ActorID:    &actorID,
		Action:     domain.ActionReportCreated,
		TargetType: domain.TargetReport,
		TargetID:   "42",
	})
	require.NoError(t, err)

	var stored domain.AuditLog
	require.NoError(t, f.db.First(&stored).Error)
	assert.NotZero(t, stored.ID)
	assert.Equal(t, f.clock.Now(), stored.CreatedAt.UTC())
	assert.Equal(t, "req-123", stored.Metadata["request_id"])
}

func TestRecordRejectsEmptyAction(t *testing.T) {
	f := newAuditFixture(t)

	err := f.svc.Record(context.Background(), nil, domain.Entry{
		EventID:    f.node.Generate(),
		Action:     "   ",
		TargetType: domain.TargetReport,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAction)
}

func TestListFiltersAndPaginates(t *testing.T) {
	f := newAuditFixture(t)
	ctx := context.Background()
	eventID := f.node.Generate()
	otherEvent := f.node.Generate()

	for i := 0; i < 5; i++ {
		require.NoError(t, f.svc.Record(ctx, nil, domain.Entry{
			EventID:    eventID,
			Action:     domain.ActionReportStateChanged,
			TargetType: domain.TargetReport,
			TargetID:   "7",
		}))
		f.clock.Advance(time.Second)
	}
	require.NoError(t, f.svc.Record(ctx, nil, domain.Entry{
		EventID:    otherEvent,
		Action:     domain.ActionRoleAssigned,
		TargetType: domain.TargetRole,
		TargetID:   "9",
	}))

	resp, err := f.svc.List(ctx, domain.ListRequest{EventID: eventID})
	require.NoError(t, err)
	assert.Len(t, resp.AuditLogs, 5)

	resp, err = f.svc.List(ctx, domain.ListRequest{
		EventID: eventID,
		Pagination: pagination.Pagination{
			PageSize: 2,
		},
	})
	require.NoError(t, err)
	assert.Len(t, resp.AuditLogs, 2)
	assert.True(t, resp.HasMore)
	require.NotEmpty(t, resp.NextPageToken)

	resp, err = f.svc.List(ctx, domain.ListRequest{
		EventID: eventID,
		Pagination: pagination.Pagination{
			PageToken: resp.NextPageToken,
			PageSize:  10,
		},
	})
	require.NoError(t, err)
	assert.Len(t, resp.AuditLogs, 3)
	assert.False(t, resp.HasMore)
}

func TestListRejectsBadToken(t *testing.T) {
	f := newAuditFixture(t)

	_, err := f.svc.List(context.Background(), domain.ListRequest{
		Pagination: pagination.Pagination{PageToken: "not-a-token"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPageToken)
}

func TestListRejectsInvertedTimeRange(t *testing.T) {
	f := newAuditFixture(t)
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)

	_, err := f.svc.List(context.Background(), domain.ListRequest{
		StartAt: &start,
		EndAt:   &end,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTimeRange)
}
