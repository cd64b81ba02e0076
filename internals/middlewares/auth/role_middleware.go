package auth

import (
	"github.com/gofiber/fiber/v2"

	"edudirectory_backend/internals/constants"
	helper "edudirectory_backend/internals/helpers"
)

// OnlyRoles must run after AuthJWT.
func OnlyRoles(customMessage string, roles ...string) fiber.Handler {
	if customMessage == "" {
		customMessage = "Forbidden: you are not authorized to access this resource"
	}
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(constants.LocUserRole).(string)
		if !ok {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized: missing role information")
		}
		for _, allowed := range roles {
			if role == allowed {
				return c.Next()
			}
		}
		return helper.JsonError(c, fiber.StatusForbidden, customMessage)
	}
}
