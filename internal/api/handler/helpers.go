package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/mpd/internal/domain"
)

// parseBody decodes the request body into v. An empty body leaves v untouched
// so optional payloads can be omitted.
func parseBody(c *fiber.Ctx, v any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(v); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}
	return nil
}

// parseID reads the :id route param. Malformed ids cannot match a row, so
// they report notFound.
func parseID(c *fiber.Ctx, notFound *domain.AppError) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, notFound
	}
	return id, nil
}
