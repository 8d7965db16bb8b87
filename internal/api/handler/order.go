package handler

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/mpd/internal/domain"
	"github.com/saturnino-fabrica-de-software/mpd/internal/service"
)

type OrderService interface {
	Create(ctx context.Context, in domain.CreateOrderInput) (*service.OrderResult, error)
	List(ctx context.Context, filter domain.OrderFilter) (*service.OrderPage, error)
	Confirm(ctx context.Context, id uuid.UUID, txHash string) (*service.OrderResult, error)
	Fail(ctx context.Context, id uuid.UUID, reason string) (*service.OrderResult, error)
}

type OrderHandler struct {
	service OrderService
	logger  *slog.Logger
}

func NewOrderHandler(service OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger,
	}
}

type ConfirmOrderRequest struct {
	TxHash string `json:"txHash"`
}

type FailOrderRequest struct {
	Reason string `json:"reason"`
}

// Create POST /orders
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in domain.CreateOrderInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	result, err := h.service.Create(c.Context(), in)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(orderResponse(result))
}

// List GET /orders
func (h *OrderHandler) List(c *fiber.Ctx) error {
	page, err := h.service.List(c.Context(), domain.OrderFilter{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("pageSize", domain.DefaultPageSize),
		Status:   c.Query("status"),
		Symbol:   c.Query("symbol"),
		Query:    c.Query("q"),
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"ok":       true,
		"page":     page.Page,
		"pageSize": page.PageSize,
		"total":    page.Total,
		"rows":     page.Rows,
	})
}

// Confirm POST /orders/:id/confirm
func (h *OrderHandler) Confirm(c *fiber.Ctx) error {
	id, err := parseID(c, domain.ErrOrderNotFound)
	if err != nil {
		return err
	}

	var req ConfirmOrderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	result, err := h.service.Confirm(c.Context(), id, req.TxHash)
	if err != nil {
		return err
	}

	return c.JSON(orderResponse(result))
}

// Fail POST /orders/:id/fail
func (h *OrderHandler) Fail(c *fiber.Ctx) error {
	id, err := parseID(c, domain.ErrOrderNotFound)
	if err != nil {
		return err
	}

	var req FailOrderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	result, err := h.service.Fail(c.Context(), id, req.Reason)
	if err != nil {
		return err
	}

	return c.JSON(orderResponse(result))
}

func orderResponse(r *service.OrderResult) fiber.Map {
	resp := fiber.Map{
		"ok":    true,
		"order": r.Order,
		"event": r.Event,
	}
	if r.Note != "" {
		resp["note"] = r.Note
	}
	return resp
}
