package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/saturnino-fabrica-de-software/mpd/internal/domain"
)

type EventRepository struct {
	pool PgxPool
}

func NewEventRepository(pool PgxPool) *EventRepository {
	return &EventRepository{pool: pool}
}

// Create stores the event with its full serialized form as payload, so the
// delivered body can be reproduced from the row.
func (r *EventRepository) Create(ctx context.Context, event *domain.Event) error {
	query := `
		INSERT INTO events (id, type, payload, created_at)
		VALUES ($1, $2, $3, $4)
	`

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	_, err = r.pool.Exec(ctx, query,
		event.ID,
		event.Type,
		payload,
		event.Time(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEventExists.WithError(err)
		}
		return fmt.Errorf("create event: %w", err)
	}

	return nil
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*domain.StoredEvent, error) {
	query := `
		SELECT id, type, payload, created_at
		FROM events
		WHERE id = $1
	`

	var (
		evt     domain.StoredEvent
		payload []byte
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&evt.ID,
		&evt.Type,
		&payload,
		&evt.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event by id: %w", err)
	}

	evt.Payload = json.RawMessage(payload)
	return &evt, nil
}
