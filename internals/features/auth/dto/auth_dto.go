package dto

import (
	"time"

	"edudirectory_backend/internals/features/auth/model"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

type AdminUserResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	UserName string `json:"user_name"`
	Role     string `json:"role"`
}

type LoginResponse struct {
	AccessToken string            `json:"access_token"`
	TokenType   string            `json:"token_type"`
	ExpiresAt   time.Time         `json:"expires_at"`
	User        AdminUserResponse `json:"user"`
}

func FromModel(u *model.AdminUserModel) AdminUserResponse {
	return AdminUserResponse{
		ID:       u.ID.String(),
		Email:    u.Email,
		UserName: u.UserName,
		Role:     u.Role,
	}
}
