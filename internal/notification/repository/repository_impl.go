package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/safetydesk/safetydesk/internal/notification/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, notification *domain.Notification) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO notifications (
			id, recipient_id, kind, priority, title, message, link,
			event_id, report_id, read, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		notification.ID,
		notification.RecipientID,
		notification.Kind,
		notification.Priority,
		notification.Title,
		notification.Message,
		notification.Link,
		notification.EventID,
		notification.ReportID,
		notification.Read,
		notification.CreatedAt,
	).Error
}

func (r *repo) ListForUser(ctx context.Context, db *gorm.DB, userID snowflake.ID, unreadOnly bool) ([]*domain.Notification, error) {
	var notifications []*domain.Notification
	stmt := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("recipient_id = ?", userID)
	if unreadOnly {
		stmt = stmt.Where("read = ?", false)
	}
	err := stmt.Order("created_at desc, id desc").Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *repo) MarkRead(ctx context.Context, db *gorm.DB, userID, notificationID snowflake.ID) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE notifications SET read = ? WHERE id = ? AND recipient_id = ?`,
		true,
		notificationID,
		userID,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
