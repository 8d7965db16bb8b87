package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/mpd/internal/domain"
)

type DeliveryRepository struct {
	pool PgxPool
}

func NewDeliveryRepository(pool PgxPool) *DeliveryRepository {
	return &DeliveryRepository{pool: pool}
}

// Create inserts one attempt row. Rows are never updated.
func (r *DeliveryRepository) Create(ctx context.Context, attempt *domain.DeliveryAttempt) error {
	query := `
		INSERT INTO webhook_deliveries
			(id, status, attempt, response_code, response_ms, error_message, webhook_endpoint_id, event_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING created_at
	`

	if attempt.ID == uuid.Nil {
		attempt.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		attempt.ID,
		string(attempt.Status),
		attempt.Attempt,
		attempt.ResponseCode,
		attempt.ResponseMs,
		attempt.ErrorMessage,
		attempt.WebhookEndpointID,
		attempt.EventID,
	).Scan(&attempt.CreatedAt)
	if err != nil {
		return fmt.Errorf("create webhook delivery: %w", err)
	}

	return nil
}

// ListRecent returns the newest attempts with their event and endpoint.
func (r *DeliveryRepository) ListRecent(ctx context.Context, limit int) ([]domain.DeliveryWithRelations, error) {
	query := `
		SELECT d.id, d.status, d.attempt, d.response_code, d.response_ms, d.error_message,
			d.webhook_endpoint_id, d.event_id, d.created_at,
			e.id, e.type, e.payload, e.created_at,
			w.id, w.url, w.signing_secret, w.is_active, w.created_at
		FROM webhook_deliveries d
		INNER JOIN events e ON e.id = d.event_id
		INNER JOIN webhook_endpoints w ON w.id = d.webhook_endpoint_id
		ORDER BY d.created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list webhook deliveries: %w", err)
	}
	defer rows.Close()

	deliveries := make([]domain.DeliveryWithRelations, 0, limit)
	for rows.Next() {
		var (
			d       domain.DeliveryWithRelations
			status  string
			evt     domain.StoredEvent
			payload []byte
			ep      domain.WebhookEndpoint
		)
		err := rows.Scan(
			&d.ID,
			&status,
			&d.Attempt,
			&d.ResponseCode,
			&d.ResponseMs,
			&d.ErrorMessage,
			&d.WebhookEndpointID,
			&d.EventID,
			&d.CreatedAt,
			&evt.ID,
			&evt.Type,
			&payload,
			&evt.CreatedAt,
			&ep.ID,
			&ep.URL,
			&ep.SigningSecret,
			&ep.IsActive,
			&ep.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan webhook delivery: %w", err)
		}

		d.Status = domain.DeliveryStatus(status)
		evt.Payload = json.RawMessage(payload)
		d.Event = &evt
		d.WebhookEndpoint = &ep
		deliveries = append(deliveries, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return deliveries, nil
}
