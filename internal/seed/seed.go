// Package seed bootstraps a default organization and a global
// superadmin so a fresh install is usable immediately.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	organizationdomain "github.com/safetydesk/safetydesk/internal/organization/domain"
	rbacdomain "github.com/safetydesk/safetydesk/internal/rbac/domain"
	userdomain "github.com/safetydesk/safetydesk/internal/user/domain"
	"gorm.io/gorm"
)

const (
	defaultOrgName      = "Main"
	defaultOrgSlug      = "main"
	defaultAdminEmail   = "admin@safetydesk.local"
	defaultAdminDisplay = "SafetyDesk Admin"
)

// EnsureDefaultOrgAndAdmin seeds the default organization and a global
// superadmin user. Idempotent; safe to run on every startup.
func EnsureDefaultOrgAndAdmin(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err := ensureDefaultOrg(ctx, tx, node)
		if err != nil {
			return err
		}

		admin, err := ensureAdminUser(ctx, tx, node)
		if err != nil {
			return err
		}

		if err := ensureMembership(ctx, tx, node, org.ID, admin.ID); err != nil {
			return err
		}
		return ensureGlobalSuperAdmin(ctx, tx, node, admin.ID)
	})
}

func ensureDefaultOrg(ctx context.Context, tx *gorm.DB, node *snowflake.Node) (*organizationdomain.Organization, error) {
	var org organizationdomain.Organization
	err := tx.WithContext(ctx).Where("slug = ?", defaultOrgSlug).First(&org).Error
	if err == nil {
		return &org, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	org = organizationdomain.Organization{
		ID:        node.Generate(),
		Name:      defaultOrgName,
		Slug:      defaultOrgSlug,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

func ensureAdminUser(ctx context.Context, tx *gorm.DB, node *snowflake.Node) (*userdomain.User, error) {
	var user userdomain.User
	err := tx.WithContext(ctx).Where("email = ?", defaultAdminEmail).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	user = userdomain.User{
		ID:          node.Generate(),
		ExternalID:  uuid.NewString(),
		Email:       defaultAdminEmail,
		DisplayName: defaultAdminDisplay,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := tx.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func ensureMembership(ctx context.Context, tx *gorm.DB, node *snowflake.Node, orgID, userID snowflake.ID) error {
	var count int64
	err := tx.WithContext(ctx).
		Model(&organizationdomain.OrganizationMember{}).
		Where("org_id = ? AND user_id = ?", orgID, userID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	member := organizationdomain.OrganizationMember{
		ID:        node.Generate(),
		OrgID:     orgID,
		UserID:    userID,
		Role:      organizationdomain.OrgRoleAdmin,
		CreatedAt: time.Now().UTC(),
	}
	return tx.WithContext(ctx).Create(&member).Error
}

func ensureGlobalSuperAdmin(ctx context.Context, tx *gorm.DB, node *snowflake.Node, userID snowflake.ID) error {
	var count int64
	err := tx.WithContext(ctx).
		Model(&rbacdomain.RoleGrant{}).
		Where("user_id = ? AND event_id = ? AND role = ?", userID, 0, rbacdomain.RoleSuperAdmin).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	grant := rbacdomain.RoleGrant{
		ID:        node.Generate(),
		UserID:    userID,
		EventID:   0,
		Role:      rbacdomain.RoleSuperAdmin,
		CreatedAt: time.Now().UTC(),
	}
	return tx.WithContext(ctx).Create(&grant).Error
}
