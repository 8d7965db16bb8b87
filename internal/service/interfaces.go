package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/mpd/internal/domain"
	"github.com/saturnino-fabrica-de-software/mpd/internal/webhook"
)

// EventPublisher creates an event and fans it out. *webhook.Publisher
// implements it.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, data any) (*webhook.FanoutResult, error)
}

type OrderRepositoryInterface interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus, txHash *string) (*domain.Order, error)
}

type PayoutRepositoryInterface interface {
	Create(ctx context.Context, payout *domain.Payout) error
	MarkSent(ctx context.Context, id uuid.UUID) (*domain.Payout, error)
	List(ctx context.Context, page domain.Page) ([]domain.Payout, int, error)
}

type APIKeyRepositoryInterface interface {
	Create(ctx context.Context, key *domain.APIKey) error
	GetLatest(ctx context.Context) (*domain.APIKey, error)
}

type WebhookEndpointRepositoryInterface interface {
	Create(ctx context.Context, endpoint *domain.WebhookEndpoint) error
	ListAll(ctx context.Context) ([]domain.WebhookEndpoint, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*domain.WebhookEndpoint, error)
}

type DeliveryRepositoryInterface interface {
	ListRecent(ctx context.Context, limit int) ([]domain.DeliveryWithRelations, error)
}
