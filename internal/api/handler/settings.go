package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/mpd/internal/domain"
	"github.com/saturnino-fabrica-de-software/mpd/internal/service"
)

type SettingsService interface {
	CurrentKey(ctx context.Context) (*domain.APIKey, error)
	Rotate(ctx context.Context) (*service.RotatedKey, error)
}

type SettingsHandler struct {
	service SettingsService
}

func NewSettingsHandler(service SettingsService) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// APIKey GET /settings/api-key - only the masked form is ever returned here
func (h *SettingsHandler) APIKey(c *fiber.Ctx) error {
	key, err := h.service.CurrentKey(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"ok":        true,
		"keyMasked": key.Masked(),
		"prefix":    key.Prefix,
		"createdAt": key.CreatedAt,
	})
}

// Rotate POST /settings/rotate - the plain key is shown once
func (h *SettingsHandler) Rotate(c *fiber.Ctx) error {
	rotated, err := h.service.Rotate(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"ok":        true,
		"key":       rotated.PlainKey,
		"keyMasked": rotated.Key.Masked(),
		"prefix":    rotated.Key.Prefix,
		"createdAt": rotated.Key.CreatedAt,
	})
}
