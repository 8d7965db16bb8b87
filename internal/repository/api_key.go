package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/saturnino-fabrica-de-software/mpd/internal/domain"
)

type APIKeyRepository struct {
	pool PgxPool
}

func NewAPIKeyRepository(pool PgxPool) *APIKeyRepository {
	return &APIKeyRepository{pool: pool}
}

func (r *APIKeyRepository) Create(ctx context.Context, key *domain.APIKey) error {
	query := `
		INSERT INTO api_keys (id, key_hash, prefix, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING created_at
	`

	if key.ID == uuid.Nil {
		key.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		key.ID,
		key.KeyHash,
		key.Prefix,
	).Scan(&key.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAPIKeyExists.WithError(err)
		}
		return fmt.Errorf("create api key: %w", err)
	}

	return nil
}

// GetLatest returns the most recently created key; older keys are kept for
// audit but no longer shown.
func (r *APIKeyRepository) GetLatest(ctx context.Context) (*domain.APIKey, error) {
	query := `
		SELECT id, key_hash, prefix, created_at
		FROM api_keys
		ORDER BY created_at DESC
		LIMIT 1
	`

	var key domain.APIKey
	err := r.pool.QueryRow(ctx, query).Scan(
		&key.ID,
		&key.KeyHash,
		&key.Prefix,
		&key.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAPIKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get latest api key: %w", err)
	}

	return &key, nil
}
