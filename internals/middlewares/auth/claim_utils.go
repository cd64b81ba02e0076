package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"edudirectory_backend/internals/constants"
)

func extractBearerToken(c *fiber.Ctx) (string, error) {
	auth := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if auth == "" {
		return "", fmt.Errorf("Unauthorized - No token provided")
	}
	fields := strings.Fields(auth)
	if len(fields) < 2 || !strings.EqualFold(fields[0], "Bearer") {
		return "", fmt.Errorf("Unauthorized - Invalid token format")
	}
	tok := strings.Trim(strings.TrimSpace(fields[1]), "\"'")
	if tok == "" {
		return "", fmt.Errorf("Unauthorized - Empty token")
	}
	return tok, nil
}

func extractUserID(claims jwt.MapClaims) (uuid.UUID, error) {
	for _, k := range []string{"id", "sub"} {
		if s, ok := claims[k].(string); ok && strings.TrimSpace(s) != "" {
			return uuid.Parse(strings.TrimSpace(s))
		}
	}
	return uuid.Nil, fmt.Errorf("no user id")
}

func storeClaimsToLocals(c *fiber.Ctx, userID uuid.UUID, claims jwt.MapClaims) {
	c.Locals(constants.LocUserID, userID.String())
	if role, ok := claims["role"].(string); ok {
		c.Locals(constants.LocUserRole, role)
	}
	if email, ok := claims["email"].(string); ok {
		c.Locals(constants.LocUserEmail, email)
	}
}

func asValidationError(err error, target **jwt.ValidationError) bool {
	return err != nil && errors.As(err, target)
}
