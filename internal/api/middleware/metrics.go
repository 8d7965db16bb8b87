package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/mpd/internal/metrics"
)

// Metrics counts requests by method, matched route and final status. It must
// run outside Logger, which renders chain errors into the response.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		metrics.ObserveRequest(c.Method(), c.Route().Path, c.Response().StatusCode())
		return err
	}
}
