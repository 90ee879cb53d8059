package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/safetydesk/safetydesk/internal/rbac/domain"
	pkgdb "github.com/safetydesk/safetydesk/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// Upsert inserts first and treats a unique violation as the existing
// grant, so two concurrent assigns of the same triple both land on the
// no-op path instead of one surfacing an internal error.
func (r *repo) Upsert(ctx context.Context, db *gorm.DB, grant *domain.RoleGrant) (*domain.RoleGrant, bool, error) {
	insertErr := db.WithContext(ctx).Exec(
		`INSERT INTO role_grants (id, user_id, event_id, role, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		grant.ID,
		grant.UserID,
		grant.EventID,
		grant.Role,
		grant.CreatedAt,
	).Error
	if insertErr == nil {
		return grant, true, nil
	}
	if !pkgdb.IsDuplicateKeyErr(insertErr) {
		return nil, false, insertErr
	}

	var existing domain.RoleGrant
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, event_id, role, created_at
		 FROM role_grants WHERE user_id = ? AND event_id = ? AND role = ? LIMIT 1`,
		grant.UserID,
		grant.EventID,
		grant.Role,
	).Scan(&existing).Error
	if err != nil {
		return nil, false, err
	}
	if existing.ID == 0 {
		return nil, false, insertErr
	}
	return &existing, false, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, userID, eventID snowflake.ID, role domain.Role) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`DELETE FROM role_grants WHERE user_id = ? AND event_id = ? AND role = ?`,
		userID,
		eventID,
		role,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) ListByUserEvent(ctx context.Context, db *gorm.DB, userID, eventID snowflake.ID) ([]*domain.RoleGrant, error) {
	var grants []*domain.RoleGrant
	err := db.WithContext(ctx).
		Model(&domain.RoleGrant{}).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Find(&grants).Error
	if err != nil {
		return nil, err
	}
	return grants, nil
}

func (r *repo) ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]*domain.RoleGrant, error) {
	var grants []*domain.RoleGrant
	err := db.WithContext(ctx).
		Model(&domain.RoleGrant{}).
		Where("user_id = ?", userID).
		Find(&grants).Error
	if err != nil {
		return nil, err
	}
	return grants, nil
}

func (r *repo) ListByEvent(ctx context.Context, db *gorm.DB, eventID snowflake.ID) ([]*domain.RoleGrant, error) {
	var grants []*domain.RoleGrant
	err := db.WithContext(ctx).
		Model(&domain.RoleGrant{}).
		Where("event_id = ?", eventID).
		Order("created_at, id").
		Find(&grants).Error
	if err != nil {
		return nil, err
	}
	return grants, nil
}

func (r *repo) HasGlobal(ctx context.Context, db *gorm.DB, userID snowflake.ID, role domain.Role) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.RoleGrant{}).
		Where("user_id = ? AND event_id = 0 AND role = ?", userID, role).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) CountEventRole(ctx context.Context, db *gorm.DB, eventID snowflake.ID, role domain.Role) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.RoleGrant{}).
		Where("event_id = ? AND role = ?", eventID, role).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) UserIDsByEventRoles(ctx context.Context, db *gorm.DB, eventID snowflake.ID, roles []domain.Role) ([]snowflake.ID, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	var ids []snowflake.ID
	err := db.WithContext(ctx).
		Model(&domain.RoleGrant{}).
		Distinct("user_id").
		Where("event_id = ? AND role IN ?", eventID, roles).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
