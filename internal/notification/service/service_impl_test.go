package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/safetydesk/safetydesk/internal/clock"
	"github.com/safetydesk/safetydesk/internal/notification/domain"
	notifrepo "github.com/safetydesk/safetydesk/internal/notification/repository"
	rbacdomain "github.com/safetydesk/safetydesk/internal/rbac/domain"
	rbacrepo "github.com/safetydesk/safetydesk/internal/rbac/repository"
	rbacservice "github.com/safetydesk/safetydesk/internal/rbac/service"
	userdomain "github.com/safetydesk/safetydesk/internal/user/domain"
	userrepo "github.com/safetydesk/safetydesk/internal/user/repository"
	"github.com/safetydesk/safetydesk/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type recordingEmail struct {
	sent [][]string
}

func (r *recordingEmail) Send(ctx context.Context, to []string, subject, body string) error {
	r.sent = append(r.sent, to)
	return nil
}

type fanoutFixture struct {
	db      *gorm.DB
	node    *snowflake.Node
	grants  rbacdomain.GrantService
	notify  domain.Service
	email   *recordingEmail
	eventID snowflake.ID
}

func newFanoutFixture(t *testing.T) *fanoutFixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&userdomain.User{},
		&rbacdomain.RoleGrant{},
		&domain.Notification{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	log := zaptest.NewLogger(t)
	fakeClock := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	users := userrepo.Provide()

	grants := rbacservice.NewGrantService(rbacservice.GrantParams{
		DB:       conn,
		Log:      log,
		Clock:    fakeClock,
		GenID:    node,
		Repo:     rbacrepo.Provide(),
		UserRepo: users,
	})

	recorder := &recordingEmail{}
	notify := New(Params{
		DB:       conn,
		Log:      log,
		Clock:    fakeClock,
		GenID:    node,
		Repo:     notifrepo.Provide(),
		Grants:   grants,
		UserRepo: users,
		Email:    recorder,
	})

	return &fanoutFixture{
		db:      conn,
		node:    node,
		grants:  grants,
		notify:  notify,
		email:   recorder,
		eventID: node.Generate(),
	}
}

func (f *fanoutFixture) newUser(t *testing.T, roles ...rbacdomain.Role) snowflake.ID {
	t.Helper()
	user := userdomain.User{
		ID:          f.node.Generate(),
		ExternalID:  uuid.NewString(),
		Email:       uuid.NewString() + "@example.com",
		DisplayName: "Test User",
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	require.NoError(t, f.db.Create(&user).Error)
	for _, role := range roles {
		_, err := f.grants.AssignRole(context.Background(), f.eventID, user.ID, role)
		require.NoError(t, err)
	}
	return user.ID
}

func TestFanoutRecipientSet(t *testing.T) {
	f := newFanoutFixture(t)
	ctx := context.Background()
	reporter := f.newUser(t)
	assignee := f.newUser(t, rbacdomain.RoleResponder)
	admin := f.newUser(t, rbacdomain.RoleAdmin)
	otherResponder := f.newUser(t, rbacdomain.RoleResponder)
	f.newUser(t, rbacdomain.RoleReporter) // reporters of other incidents are not notified

	recipients, err := f.notify.NotifyReportEvent(ctx, nil, domain.FanoutRequest{
		EventID:        f.eventID,
		ReportID:       f.node.Generate(),
		Kind:           domain.KindStateChanged,
		ReporterID:     &reporter,
		AssignedToID:   &assignee,
		ExcludeActorID: admin,
		Detail:         "investigating",
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []snowflake.ID{reporter, assignee, otherResponder}, recipients)

	var count int64
	require.NoError(t, f.db.Model(&domain.Notification{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestFanoutDedup(t *testing.T) {
	f := newFanoutFixture(t)
	// Reporter, assignee, and event responder in one person.
	dual := f.newUser(t, rbacdomain.RoleResponder, rbacdomain.RoleReporter)
	actor := f.newUser(t, rbacdomain.RoleAdmin)

	recipients, err := f.notify.NotifyReportEvent(context.Background(), nil, domain.FanoutRequest{
		EventID:        f.eventID,
		ReportID:       f.node.Generate(),
		Kind:           domain.KindAssigned,
		ReporterID:     &dual,
		AssignedToID:   &dual,
		ExcludeActorID: actor,
	})
	require.NoError(t, err)
	assert.Equal(t, []snowflake.ID{dual}, recipients)
}

func TestFanoutExcludesActor(t *testing.T) {
	f := newFanoutFixture(t)
	reporter := f.newUser(t)

	// The reporter caused the event and nobody else is involved.
	recipients, err := f.notify.NotifyReportEvent(context.Background(), nil, domain.FanoutRequest{
		EventID:        f.eventID,
		ReportID:       f.node.Generate(),
		Kind:           domain.KindReportCreated,
		ReporterID:     &reporter,
		ExcludeActorID: reporter,
	})
	require.NoError(t, err)
	assert.Empty(t, recipients)
}

func TestFanoutInvalidKind(t *testing.T) {
	f := newFanoutFixture(t)

	_, err := f.notify.NotifyReportEvent(context.Background(), nil, domain.FanoutRequest{
		EventID:  f.eventID,
		ReportID: f.node.Generate(),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidKind)
}

func TestEmailOnlyAfterCommit(t *testing.T) {
	f := newFanoutFixture(t)
	ctx := context.Background()
	reporter := f.newUser(t)
	responder := f.newUser(t, rbacdomain.RoleResponder)
	actor := f.newUser(t, rbacdomain.RoleAdmin)

	req := domain.FanoutRequest{
		EventID:        f.eventID,
		ReportID:       f.node.Generate(),
		Kind:           domain.KindStateChanged,
		ReporterID:     &reporter,
		ExcludeActorID: actor,
		Detail:         "resolved",
	}

	tx := f.db.Begin()
	require.NoError(t, tx.Error)
	recipients, err := f.notify.NotifyReportEvent(ctx, tx, req)
	require.NoError(t, err)
	assert.ElementsMatch(t, []snowflake.ID{reporter, responder}, recipients)
	require.NoError(t, tx.Rollback().Error)

	// Rolled back: no rows persisted and nothing was emailed.
	var count int64
	require.NoError(t, f.db.Model(&domain.Notification{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, f.email.sent)

	f.notify.EmailReportEvent(ctx, recipients, req)
	require.Len(t, f.email.sent, 1)
	assert.Len(t, f.email.sent[0], 2)
}

func TestMarkRead(t *testing.T) {
	f := newFanoutFixture(t)
	ctx := context.Background()
	recipient := f.newUser(t, rbacdomain.RoleResponder)
	other := f.newUser(t)

	_, err := f.notify.NotifyReportEvent(ctx, nil, domain.FanoutRequest{
		EventID:  f.eventID,
		ReportID: f.node.Generate(),
		Kind:     domain.KindReportCreated,
	})
	require.NoError(t, err)

	items, err := f.notify.ListForUser(ctx, recipient, true)
	require.NoError(t, err)
	require.Len(t, items, 1)

	// Another user cannot mark someone else's notification.
	err = f.notify.MarkRead(ctx, other, items[0].ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, f.notify.MarkRead(ctx, recipient, items[0].ID))

	items, err = f.notify.ListForUser(ctx, recipient, true)
	require.NoError(t, err)
	assert.Empty(t, items)
}
