package controller

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"edudirectory_backend/internals/constants"
	"edudirectory_backend/internals/features/auth/dto"
	authRepo "edudirectory_backend/internals/features/auth/repository"
	"edudirectory_backend/internals/features/auth/service"
	helper "edudirectory_backend/internals/helpers"
)

type AuthController struct {
	DB       *gorm.DB
	Secret   string
	TokenTTL time.Duration
	Now      func() time.Time
}

func NewAuthController(db *gorm.DB, secret string, ttl time.Duration) *AuthController {
	return &AuthController{DB: db, Secret: secret, TokenTTL: ttl, Now: time.Now}
}

// POST /api/auth/login
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Email = strings.TrimSpace(req.Email)
	if errs := helper.ValidateStruct(req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}

	user, err := authRepo.FindUserByEmail(c.UserContext(), ac.DB, req.Email)
	if err != nil {
		if helper.IsNotFound(err) {
			return helper.JsonError(c, fiber.StatusUnauthorized, service.ErrInvalidCredentials.Error())
		}
		zap.L().Error("login: find user", zap.Error(err))
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to sign in")
	}
	if err := service.CheckPassword(user.Password, req.Password); err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}
	if !user.IsActive {
		return helper.JsonError(c, fiber.StatusForbidden, "Account is disabled")
	}

	token, exp, err := service.IssueAccessToken(user, ac.Secret, ac.TokenTTL, ac.Now())
	if err != nil {
		zap.L().Error("login: issue token", zap.Error(err))
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to issue token")
	}

	zap.L().Info("admin signed in", zap.String("email", user.Email))
	return helper.JsonOK(c, "Login successful", dto.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   exp,
		User:        dto.FromModel(user),
	})
}

// GET /api/auth/me
func (ac *AuthController) Me(c *fiber.Ctx) error {
	id, err := uuid.Parse(fmtLocal(c.Locals(constants.LocUserID)))
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Invalid user ID in context")
	}
	user, err := authRepo.FindUserByID(c.UserContext(), ac.DB, id)
	if err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "User not found")
	}
	return helper.JsonOK(c, "", dto.FromModel(user))
}

// POST /api/auth/change-password
func (ac *AuthController) ChangePassword(c *fiber.Ctx) error {
	id, err := uuid.Parse(fmtLocal(c.Locals(constants.LocUserID)))
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Invalid user ID in context")
	}
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if errs := helper.ValidateStruct(req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}

	user, err := authRepo.FindUserByID(c.UserContext(), ac.DB, id)
	if err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "User not found")
	}
	if err := service.CheckPassword(user.Password, req.CurrentPassword); err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Current password is wrong")
	}
	hash, err := service.HashPassword(req.NewPassword)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to hash password")
	}
	if err := authRepo.UpdateUserPassword(c.UserContext(), ac.DB, id, hash); err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to update password")
	}
	return helper.JsonUpdated(c, "Password changed", nil)
}

func fmtLocal(v any) string {
	s, _ := v.(string)
	return s
}
