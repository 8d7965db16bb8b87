package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/mpd/internal/domain"
	"github.com/saturnino-fabrica-de-software/mpd/internal/webhook"
)

const (
	NoteAlreadyConfirmed = "already_confirmed"
	NoteAlreadyFailed    = "already_failed"

	defaultFailReason = "simulation"
)

// OrderResult is an order after a state change plus the fan-out it caused.
// Event is nil when the call was a no-op.
type OrderResult struct {
	Order *domain.Order         `json:"order"`
	Event *webhook.FanoutResult `json:"event"`
	Note  string                `json:"note,omitempty"`
}

type OrderPage struct {
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
	Total    int            `json:"total"`
	Rows     []domain.Order `json:"rows"`
}

type OrderService struct {
	orders    OrderRepositoryInterface
	publisher EventPublisher
	logger    *slog.Logger
}

func NewOrderService(orders OrderRepositoryInterface, publisher EventPublisher, logger *slog.Logger) *OrderService {
	return &OrderService{
		orders:    orders,
		publisher: publisher,
		logger:    logger,
	}
}

// Create stores a PENDING order and publishes order.created.
func (s *OrderService) Create(ctx context.Context, in domain.CreateOrderInput) (*OrderResult, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	order := &domain.Order{
		Status:       domain.OrderStatusPending,
		FiatAmount:   in.FiatAmount,
		FiatCurrency: in.FiatCurrency,
		CryptoAmount: in.CryptoAmount,
		CryptoSymbol: in.CryptoSymbol,
		Address:      in.Address,
		Network:      in.Network,
		Memo:         in.Memo,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("order created", "order_id", order.ID, "symbol", order.CryptoSymbol)

	return s.publish(ctx, order, domain.EventOrderCreated, order.EventData())
}

func (s *OrderService) List(ctx context.Context, filter domain.OrderFilter) (*OrderPage, error) {
	page := domain.NewPage(filter.Page, filter.PageSize)
	filter.Page = page.Page
	filter.PageSize = page.PageSize
	filter.Status = strings.ToUpper(strings.TrimSpace(filter.Status))
	filter.Symbol = strings.ToUpper(strings.TrimSpace(filter.Symbol))
	filter.Query = strings.TrimSpace(filter.Query)

	rows, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domain.Order{}
	}

	return &OrderPage{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Total:    total,
		Rows:     rows,
	}, nil
}

// Confirm marks the order CONFIRMED and publishes order.confirmed. Confirming
// an already confirmed order returns it unchanged without an event.
func (s *OrderService) Confirm(ctx context.Context, id uuid.UUID, txHash string) (*OrderResult, error) {
	txHash = strings.TrimSpace(txHash)
	if err := domain.ValidateTxHash(txHash); err != nil {
		return nil, err
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == domain.OrderStatusConfirmed {
		return &OrderResult{Order: order, Note: NoteAlreadyConfirmed}, nil
	}

	updated, err := s.orders.UpdateStatus(ctx, id, domain.OrderStatusConfirmed, &txHash)
	if err != nil {
		return nil, err
	}

	data := updated.EventData()
	data["txHash"] = txHash

	return s.publish(ctx, updated, domain.EventOrderConfirmed, data)
}

// Fail marks the order FAILED and publishes order.failed with reason.
func (s *OrderService) Fail(ctx context.Context, id uuid.UUID, reason string) (*OrderResult, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = defaultFailReason
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == domain.OrderStatusFailed {
		return &OrderResult{Order: order, Note: NoteAlreadyFailed}, nil
	}

	updated, err := s.orders.UpdateStatus(ctx, id, domain.OrderStatusFailed, nil)
	if err != nil {
		return nil, err
	}

	data := updated.EventData()
	data["reason"] = reason

	return s.publish(ctx, updated, domain.EventOrderFailed, data)
}

func (s *OrderService) publish(ctx context.Context, order *domain.Order, eventType string, data map[string]any) (*OrderResult, error) {
	fanout, err := s.publisher.Publish(ctx, eventType, data)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", order.ID, err)
	}
	return &OrderResult{Order: order, Event: fanout}, nil
}
