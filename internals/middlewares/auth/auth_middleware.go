package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthJWTOpts struct {
	Secret string
	// UserActive, when set, rejects tokens whose account was removed or disabled.
	UserActive func(ctx context.Context, userID uuid.UUID) (bool, error)
}

// AuthJWT requires a valid HS256 bearer token and stores its claims in Locals.
func AuthJWT(o AuthJWTOpts) fiber.Handler {
	secret := strings.TrimSpace(o.Secret)

	return func(c *fiber.Ctx) error {
		if secret == "" {
			zap.L().Error("auth: JWT secret is empty")
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - server has no signing secret")
		}

		raw, err := extractBearerToken(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		claims := jwt.MapClaims{}
		tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !tok.Valid {
			var ve *jwt.ValidationError
			if asValidationError(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
				return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Token expired")
			}
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Invalid token")
		}
		if _, ok := claims["exp"]; !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Token has no expiry")
		}

		userID, err := extractUserID(claims)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Invalid or missing user ID")
		}

		if o.UserActive != nil {
			active, err := o.UserActive(c.UserContext(), userID)
			if err != nil {
				zap.L().Error("auth: user lookup", zap.Error(err))
				return fiber.NewError(fiber.StatusInternalServerError, "Internal Server Error")
			}
			if !active {
				return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Account disabled")
			}
		}

		storeClaimsToLocals(c, userID, claims)
		return c.Next()
	}
}
