package logger

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

// zapWriter forwards each formatted access line to the global zap logger.
type zapWriter struct{}

func (zapWriter) Write(p []byte) (int, error) {
	zap.L().Info(strings.TrimRight(string(p), "\n"), zap.String("component", "http"))
	return len(p), nil
}

// LoggerMiddleware logs every request.
func LoggerMiddleware() fiber.Handler {
	return logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "${locals:reqid} ${ip} ${method} ${path} ${status} ${latency}\n",
		Output:     zapWriter{},
	})
}
