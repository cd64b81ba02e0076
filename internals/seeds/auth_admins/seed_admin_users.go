package auth_admins

import (
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"edudirectory_backend/internals/constants"
	"edudirectory_backend/internals/features/auth/model"
	"edudirectory_backend/internals/features/auth/service"
)

type AdminSeed struct {
	UserName string `json:"user_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func SeedAdminUsersFromJSON(db *gorm.DB, filePath string) error {
	zap.L().Info("📥 reading admin seed", zap.String("file", filePath))

	file, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read %s: %w", filePath, err)
	}
	var inputs []AdminSeed
	if err := sonic.Unmarshal(file, &inputs); err != nil {
		return fmt.Errorf("decode %s: %w", filePath, err)
	}

	for _, in := range inputs {
		email := strings.ToLower(strings.TrimSpace(in.Email))
		var count int64
		if err := db.Model(&model.AdminUserModel{}).Where("LOWER(email) = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			zap.L().Debug("admin exists, skipped", zap.String("email", email))
			continue
		}

		role := in.Role
		if !constants.IsValidRole(role) {
			role = constants.RoleAdmin
		}
		hash, err := service.HashPassword(in.Password)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", email, err)
		}
		user := model.AdminUserModel{
			Email:    email,
			UserName: in.UserName,
			Password: hash,
			Role:     role,
			IsActive: true,
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("insert admin %s: %w", email, err)
		}
		zap.L().Info("✅ admin seeded", zap.String("email", email), zap.String("role", role))
	}
	return nil
}
