package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authRoutes "edudirectory_backend/internals/features/auth/route"
	listingRoutes "edudirectory_backend/internals/features/listings/route"
	"edudirectory_backend/internals/helpers/storage"
)

var startTime time.Time

type Deps struct {
	DB        *gorm.DB
	Uploader  *storage.Uploader
	JWTSecret string
	TokenTTL  time.Duration
}

func SetupRoutes(app *fiber.App, d Deps) {
	startTime = time.Now()

	zap.L().Info("setting up base routes")
	BaseRoutes(app, d.DB)

	// ===================== AUTH =====================
	zap.L().Info("setting up auth routes")
	authRoutes.AuthRoutes(app, d.DB, d.JWTSecret, d.TokenTTL)

	// ===================== LISTINGS (public + admin per kind) =====================
	zap.L().Info("setting up listing routes")
	listingRoutes.ListingRoutes(app, d.DB, d.Uploader, d.JWTSecret)
}
