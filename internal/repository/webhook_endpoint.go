package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/saturnino-fabrica-de-software/mpd/internal/domain"
)

const endpointColumns = `id, url, signing_secret, is_active, created_at`

type WebhookEndpointRepository struct {
	pool PgxPool
}

func NewWebhookEndpointRepository(pool PgxPool) *WebhookEndpointRepository {
	return &WebhookEndpointRepository{pool: pool}
}

func (r *WebhookEndpointRepository) Create(ctx context.Context, endpoint *domain.WebhookEndpoint) error {
	query := `
		INSERT INTO webhook_endpoints (id, url, signing_secret, is_active, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING created_at
	`

	if endpoint.ID == uuid.Nil {
		endpoint.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		endpoint.ID,
		endpoint.URL,
		endpoint.SigningSecret,
		endpoint.IsActive,
	).Scan(&endpoint.CreatedAt)
	if err != nil {
		return fmt.Errorf("create webhook endpoint: %w", err)
	}

	return nil
}

func (r *WebhookEndpointRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.WebhookEndpoint, error) {
	query := `SELECT ` + endpointColumns + ` FROM webhook_endpoints WHERE id = $1`

	ep, err := scanEndpoint(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEndpointNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get webhook endpoint by id: %w", err)
	}

	return ep, nil
}

// GetLatest returns the most recently registered endpoint, active or not.
func (r *WebhookEndpointRepository) GetLatest(ctx context.Context) (*domain.WebhookEndpoint, error) {
	query := `SELECT ` + endpointColumns + ` FROM webhook_endpoints ORDER BY created_at DESC LIMIT 1`

	ep, err := scanEndpoint(r.pool.QueryRow(ctx, query))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEndpointNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get latest webhook endpoint: %w", err)
	}

	return ep, nil
}

// ListActive returns the endpoints a fan-out pass delivers to, oldest first.
func (r *WebhookEndpointRepository) ListActive(ctx context.Context) ([]domain.WebhookEndpoint, error) {
	query := `SELECT ` + endpointColumns + ` FROM webhook_endpoints WHERE is_active = true ORDER BY created_at ASC`
	return r.list(ctx, "list active webhook endpoints", query)
}

// ListAll returns every endpoint, newest first.
func (r *WebhookEndpointRepository) ListAll(ctx context.Context) ([]domain.WebhookEndpoint, error) {
	query := `SELECT ` + endpointColumns + ` FROM webhook_endpoints ORDER BY created_at DESC`
	return r.list(ctx, "list webhook endpoints", query)
}

func (r *WebhookEndpointRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) (*domain.WebhookEndpoint, error) {
	query := `
		UPDATE webhook_endpoints
		SET is_active = $2
		WHERE id = $1
		RETURNING ` + endpointColumns

	ep, err := scanEndpoint(r.pool.QueryRow(ctx, query, id, active))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEndpointNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("set webhook endpoint active: %w", err)
	}

	return ep, nil
}

func (r *WebhookEndpointRepository) list(ctx context.Context, op, query string) ([]domain.WebhookEndpoint, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	endpoints := make([]domain.WebhookEndpoint, 0)
	for rows.Next() {
		ep, err := scanEndpoint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan webhook endpoint: %w", err)
		}
		endpoints = append(endpoints, *ep)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return endpoints, nil
}

func scanEndpoint(row pgx.Row) (*domain.WebhookEndpoint, error) {
	var ep domain.WebhookEndpoint
	err := row.Scan(
		&ep.ID,
		&ep.URL,
		&ep.SigningSecret,
		&ep.IsActive,
		&ep.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ep, nil
}
