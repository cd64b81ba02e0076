package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"edudirectory_backend/internals/features/auth/model"
)

func FindUserByEmail(ctx context.Context, db *gorm.DB, email string) (*model.AdminUserModel, error) {
	var user model.AdminUserModel
	if err := db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func FindUserByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.AdminUserModel, error) {
	var user model.AdminUserModel
	if err := db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func CreateUser(ctx context.Context, db *gorm.DB, user *model.AdminUserModel) error {
	return db.WithContext(ctx).Create(user).Error
}

func UpdateUserPassword(ctx context.Context, db *gorm.DB, id uuid.UUID, hash string) error {
	return db.WithContext(ctx).Model(&model.AdminUserModel{}).
		Where("id = ?", id).
		Update("password", hash).Error
}

// IsUserActive backs the JWT middleware's account check.
func IsUserActive(db *gorm.DB) func(ctx context.Context, id uuid.UUID) (bool, error) {
	return func(ctx context.Context, id uuid.UUID) (bool, error) {
		var count int64
		err := db.WithContext(ctx).Model(&model.AdminUserModel{}).
			Where("id = ? AND is_active = ?", id, true).
			Count(&count).Error
		return count > 0, err
	}
}
