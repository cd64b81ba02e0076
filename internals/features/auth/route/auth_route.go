package route

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"edudirectory_backend/internals/features/auth/controller"
	authRepo "edudirectory_backend/internals/features/auth/repository"
	"edudirectory_backend/internals/middlewares"
	authMiddleware "edudirectory_backend/internals/middlewares/auth"
)

// AuthRoutes mounts /api/auth.
func AuthRoutes(app fiber.Router, db *gorm.DB, secret string, ttl time.Duration) {
	ctrl := controller.NewAuthController(db, secret, ttl)

	auth := app.Group("/api/auth")
	auth.Post("/login", middlewares.LoginRateLimiter(), ctrl.Login)

	requireAdmin := authMiddleware.AuthJWT(authMiddleware.AuthJWTOpts{
		Secret:     secret,
		UserActive: authRepo.IsUserActive(db),
	})
	auth.Get("/me", requireAdmin, ctrl.Me)
	auth.Post("/change-password", requireAdmin, ctrl.ChangePassword)
}
