package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/saturnino-fabrica-de-software/mpd/internal/domain"
)

// PgxPool is the subset of *pgxpool.Pool used by the repositories.
// pgxmock.PgxPoolIface satisfies it as well.
type PgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// EventRepositoryInterface defines operations for event data access
type EventRepositoryInterface interface {
	Create(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id string) (*domain.StoredEvent, error)
}

// WebhookEndpointRepositoryInterface defines operations for webhook endpoint data access
type WebhookEndpointRepositoryInterface interface {
	Create(ctx context.Context, endpoint *domain.WebhookEndpoint) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.WebhookEndpoint, error)
	GetLatest(ctx context.Context) (*domain.WebhookEndpoint, error)
	ListActive(ctx context.Context) ([]domain.WebhookEndpoint, error)
	ListAll(ctx context.Context) ([]domain.WebhookEndpoint, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*domain.WebhookEndpoint, error)
}

// DeliveryRepositoryInterface defines operations for delivery attempt data access
type DeliveryRepositoryInterface interface {
	Create(ctx context.Context, attempt *domain.DeliveryAttempt) error
	ListRecent(ctx context.Context, limit int) ([]domain.DeliveryWithRelations, error)
}

// OrderRepositoryInterface defines operations for order data access
type OrderRepositoryInterface interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus, txHash *string) (*domain.Order, error)
}

// PayoutRepositoryInterface defines operations for payout data access
type PayoutRepositoryInterface interface {
	Create(ctx context.Context, payout *domain.Payout) error
	MarkSent(ctx context.Context, id uuid.UUID) (*domain.Payout, error)
	List(ctx context.Context, page domain.Page) ([]domain.Payout, int, error)
}

// APIKeyRepositoryInterface defines operations for API key data access
type APIKeyRepositoryInterface interface {
	Create(ctx context.Context, key *domain.APIKey) error
	GetLatest(ctx context.Context) (*domain.APIKey, error)
}
