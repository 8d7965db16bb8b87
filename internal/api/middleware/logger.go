package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Logger logs one line per request. Errors from the chain are rendered here so
// the logged status is the one the client receives.
func Logger(logger *slog.Logger) fiber.Handler {
	errHandler := ErrorHandler(logger)

	return func(c *fiber.Ctx) error {
		start := time.Now()

		// Process request
		if err := c.Next(); err != nil {
			if herr := errHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		latency := time.Since(start)
		status := c.Response().StatusCode()

		logger.Log(c.Context(), requestLevel(c.Path(), status), "http request",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("route", c.Route().Path),
			slog.Int("status", status),
			slog.Duration("latency", latency),
			slog.String("ip", c.IP()),
			slog.String("request_id", RequestID(c)),
		)

		return nil
	}
}

// requestLevel demotes successful probe and scrape requests to debug.
func requestLevel(path string, status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	case path == "/health" || path == "/ready" || path == "/metrics":
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
