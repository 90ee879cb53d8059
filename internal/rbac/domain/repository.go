package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// Upsert inserts the grant unless an identical (user, event, role)
	// triple exists. Returns the stored grant and whether it was created.
	Upsert(ctx context.Context, db *gorm.DB, grant *RoleGrant) (*RoleGrant, bool, error)
	Delete(ctx context.Context, db *gorm.DB, userID, eventID snowflake.ID, role Role) (bool, error)
	ListByUserEvent(ctx context.Context, db *gorm.DB, userID, eventID snowflake.ID) ([]*RoleGrant, error)
	ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]*RoleGrant, error)
	ListByEvent(ctx context.Context, db *gorm.DB, eventID snowflake.ID) ([]*RoleGrant, error)
	HasGlobal(ctx context.Context, db *gorm.DB, userID snowflake.ID, role Role) (bool, error)
	CountEventRole(ctx context.Context, db *gorm.DB, eventID snowflake.ID, role Role) (int64, error)
	UserIDsByEventRoles(ctx context.Context, db *gorm.DB, eventID snowflake.ID, roles []Role) ([]snowflake.ID, error)
}
