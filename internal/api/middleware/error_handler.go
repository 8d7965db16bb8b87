package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/mpd/internal/domain"
)

// ErrorHandler renders every error as {"ok": false, "error": <code>, ...}.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		// Check if it's a Fiber error
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"ok":      false,
				"error":   httpErrorCode(fiberErr.Code),
				"message": fiberErr.Message,
			})
		}

		// Validation errors carry per-field details
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			return c.Status(domain.ErrValidationFailed.StatusCode).JSON(fiber.Map{
				"ok":      false,
				"error":   domain.ErrValidationFailed.Code,
				"message": domain.ErrValidationFailed.Message,
				"details": validationErr.Details,
			})
		}

		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			// Log internal errors
			if appErr.StatusCode >= 500 {
				logger.Error("internal error",
					slog.String("code", appErr.Code),
					slog.String("message", appErr.Message),
					slog.Any("error", appErr.Err),
					slog.String("path", c.Path()),
				)
			}

			return c.Status(appErr.StatusCode).JSON(fiber.Map{
				"ok":      false,
				"error":   appErr.Code,
				"message": appErr.Message,
			})
		}

		// Unknown error - log and return generic message
		logger.Error("unhandled error",
			slog.Any("error", err),
			slog.String("path", c.Path()),
			slog.String("request_id", RequestID(c)),
		)

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"ok":      false,
			"error":   domain.ErrInternal.Code,
			"message": domain.ErrInternal.Message,
		})
	}
}

func httpErrorCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return domain.ErrNotFound.Code
	case fiber.StatusMethodNotAllowed:
		return "method_not_allowed"
	case fiber.StatusRequestEntityTooLarge:
		return "payload_too_large"
	case fiber.StatusUpgradeRequired:
		return "upgrade_required"
	}
	if status >= 500 {
		return domain.ErrInternal.Code
	}
	return domain.ErrBadRequest.Code
}

// RequestID returns the id set by the requestid middleware, if any.
func RequestID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}
