package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"edudirectory_backend/internals/features/auth/model"
)

const DefaultTokenTTL = 24 * time.Hour

// IssueAccessToken signs an HS256 token carrying id, email and role.
func IssueAccessToken(user *model.AdminUserModel, secret string, ttl time.Duration, now time.Time) (string, time.Time, error) {
	if secret == "" {
		return "", time.Time{}, errors.New("jwt secret is not configured")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"id":    user.ID.String(),
		"email": user.Email,
		"role":  user.Role,
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}
