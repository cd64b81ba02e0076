package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"edudirectory_backend/internals/middlewares/logger"
)

type Options struct {
	AllowOrigins   string
	RequestTimeout time.Duration
}

func SetupMiddlewares(app *fiber.App, o Options) {
	app.Use(RecoveryMiddleware())
	app.Use(RequestContext(o.RequestTimeout))
	app.Use(logger.LoggerMiddleware())
	app.Use(CorsMiddleware(o.AllowOrigins))
	app.Use(GlobalRateLimiter())
}
