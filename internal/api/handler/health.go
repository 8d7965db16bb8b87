package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/mpd/internal/database"
)

const version = "1.0.0"

type HealthHandler struct {
	db database.Pinger
}

// NewHealthHandler builds the liveness and readiness handlers. A nil db skips
// the database check.
func NewHealthHandler(db database.Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

type HealthResponse struct {
	OK      bool   `json:"ok"`
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return h.check(c, HealthResponse{OK: true, Status: "ok", Version: version})
}

func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	return h.check(c, HealthResponse{OK: true, Status: "ready"})
}

func (h *HealthHandler) check(c *fiber.Ctx, healthy HealthResponse) error {
	if h.db != nil {
		if err := database.HealthCheck(c.Context(), h.db); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
				OK:     false,
				Status: "database_unavailable",
			})
		}
	}
	return c.JSON(healthy)
}
