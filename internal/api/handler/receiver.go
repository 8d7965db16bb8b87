package handler

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/mpd/internal/domain"
	"github.com/saturnino-fabrica-de-software/mpd/internal/webhook"
)

// ReceiverHandler is a local webhook target for development. With a secret
// configured it rejects deliveries whose signature does not verify.
type ReceiverHandler struct {
	secret    string
	tolerance time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

func NewReceiverHandler(secret string, tolerance time.Duration, logger *slog.Logger) *ReceiverHandler {
	return &ReceiverHandler{
		secret:    secret,
		tolerance: tolerance,
		logger:    logger,
		now:       time.Now,
	}
}

// Receive POST /dev/receiver
func (h *ReceiverHandler) Receive(c *fiber.Ctx) error {
	if h.secret != "" {
		err := webhook.Verify(h.secret, c.Body(), c.Get(webhook.HeaderSignature), h.tolerance, h.now())
		if err != nil {
			h.logger.Warn("webhook signature rejected",
				"event_id", c.Get(webhook.HeaderID),
				"webhook_id", c.Get(webhook.HeaderWebhookID),
				"error", err,
			)
			return domain.ErrInvalidSignature.WithError(err)
		}
	}

	h.logger.Info("webhook received",
		"event", c.Get(webhook.HeaderEvent),
		"event_id", c.Get(webhook.HeaderID),
		"webhook_id", c.Get(webhook.HeaderWebhookID),
		"retry", c.Get(webhook.HeaderRetry),
		"bytes", len(c.Body()),
	)

	return c.JSON(fiber.Map{"received": true})
}
