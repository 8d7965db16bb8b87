package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/mpd/internal/domain"
)

type PayoutPage struct {
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
	Total    int             `json:"total"`
	Rows     []domain.Payout `json:"rows"`
}

type PayoutService struct {
	payouts PayoutRepositoryInterface
}

func NewPayoutService(payouts PayoutRepositoryInterface) *PayoutService {
	return &PayoutService{payouts: payouts}
}

func (s *PayoutService) Create(ctx context.Context, amount float64, currency string) (*domain.Payout, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = domain.DefaultFiatCurrency
	}

	payout := &domain.Payout{
		Amount:   amount,
		Currency: currency,
		Status:   domain.PayoutStatusPending,
	}
	if err := s.payouts.Create(ctx, payout); err != nil {
		return nil, err
	}

	return payout, nil
}

func (s *PayoutService) Send(ctx context.Context, id uuid.UUID) (*domain.Payout, error) {
	return s.payouts.MarkSent(ctx, id)
}

func (s *PayoutService) List(ctx context.Context, page, pageSize int) (*PayoutPage, error) {
	p := domain.NewPage(page, pageSize)

	rows, total, err := s.payouts.List(ctx, p)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domain.Payout{}
	}

	return &PayoutPage{
		Page:     p.Page,
		PageSize: p.PageSize,
		Total:    total,
		Rows:     rows,
	}, nil
}
