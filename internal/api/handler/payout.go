package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/mpd/internal/domain"
	"github.com/saturnino-fabrica-de-software/mpd/internal/service"
)

type PayoutService interface {
	Create(ctx context.Context, amount float64, currency string) (*domain.Payout, error)
	Send(ctx context.Context, id uuid.UUID) (*domain.Payout, error)
	List(ctx context.Context, page, pageSize int) (*service.PayoutPage, error)
}

type PayoutHandler struct {
	service PayoutService
}

func NewPayoutHandler(service PayoutService) *PayoutHandler {
	return &PayoutHandler{service: service}
}

type CreatePayoutRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

func (h *PayoutHandler) Create(c *fiber.Ctx) error {
	var req CreatePayoutRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	payout, err := h.service.Create(c.Context(), req.Amount, req.Currency)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"ok":     true,
		"payout": payout,
	})
}

func (h *PayoutHandler) Send(c *fiber.Ctx) error {
	id, err := parseID(c, domain.ErrPayoutNotFound)
	if err != nil {
		return err
	}

	payout, err := h.service.Send(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"ok":     true,
		"payout": payout,
	})
}

func (h *PayoutHandler) List(c *fiber.Ctx) error {
	page, err := h.service.List(c.Context(), c.QueryInt("page", 1), c.QueryInt("pageSize", domain.DefaultPageSize))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"ok":       true,
		"rows":     page.Rows,
		"total":    page.Total,
		"page":     page.Page,
		"pageSize": page.PageSize,
	})
}
