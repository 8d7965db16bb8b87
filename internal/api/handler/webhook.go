package handler

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/mpd/internal/domain"
	"github.com/saturnino-fabrica-de-software/mpd/internal/webhook"
)

type WebhookEndpointService interface {
	Seed(ctx context.Context, url, signingSecret string) (*domain.WebhookEndpoint, error)
	List(ctx context.Context) ([]domain.WebhookEndpoint, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*domain.WebhookEndpoint, error)
	RecentDeliveries(ctx context.Context, limit int) ([]domain.DeliveryWithRelations, error)
}

// WebhookTester sends a webhook.test event to one endpoint.
type WebhookTester interface {
	SendTest(ctx context.Context, endpointID *uuid.UUID) (*webhook.TestDelivery, error)
}

type WebhookHandler struct {
	endpoints WebhookEndpointService
	tester    WebhookTester
	logger    *slog.Logger
}

func NewWebhookHandler(endpoints WebhookEndpointService, tester WebhookTester, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		endpoints: endpoints,
		tester:    tester,
		logger:    logger,
	}
}

type SeedEndpointRequest struct {
	URL           string `json:"url"`
	SigningSecret string `json:"signingSecret"`
}

type TestWebhookRequest struct {
	EndpointID string `json:"endpointId"`
}

type UpdateEndpointRequest struct {
	IsActive *bool `json:"isActive"`
}

// Seed POST /webhooks/seed
func (h *WebhookHandler) Seed(c *fiber.Ctx) error {
	var req SeedEndpointRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	ep, err := h.endpoints.Seed(c.Context(), req.URL, req.SigningSecret)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"ok":       true,
		"endpoint": ep,
	})
}

// Test POST /webhooks/test
func (h *WebhookHandler) Test(c *fiber.Ctx) error {
	var req TestWebhookRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	var endpointID *uuid.UUID
	if req.EndpointID != "" {
		id, err := uuid.Parse(req.EndpointID)
		if err != nil {
			return (&domain.ValidationError{}).Add("endpointId", "must be a UUID")
		}
		endpointID = &id
	}

	sent, err := h.tester.SendTest(c.Context(), endpointID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"ok":         true,
		"delivered":  sent.Delivered,
		"eventId":    sent.EventID,
		"endpointId": sent.EndpointID,
	})
}

// Endpoints GET /webhooks/endpoints
func (h *WebhookHandler) Endpoints(c *fiber.Ctx) error {
	endpoints, err := h.endpoints.List(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"ok":        true,
		"endpoints": endpoints,
	})
}

// UpdateEndpoint PATCH /webhooks/endpoints/:id
func (h *WebhookHandler) UpdateEndpoint(c *fiber.Ctx) error {
	id, err := parseID(c, domain.ErrEndpointNotFound)
	if err != nil {
		return err
	}

	var req UpdateEndpointRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.IsActive == nil {
		return (&domain.ValidationError{}).Add("isActive", "is required")
	}

	ep, err := h.endpoints.SetActive(c.Context(), id, *req.IsActive)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"ok":       true,
		"endpoint": ep,
	})
}

// Deliveries GET /webhooks/deliveries
func (h *WebhookHandler) Deliveries(c *fiber.Ctx) error {
	rows, err := h.endpoints.RecentDeliveries(c.Context(), c.QueryInt("limit", 0))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"ok":   true,
		"rows": rows,
	})
}
