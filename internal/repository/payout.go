package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/saturnino-fabrica-de-software/mpd/internal/domain"
)

const payoutColumns = `id, amount, currency, status, created_at, updated_at`

type PayoutRepository struct {
	pool PgxPool
}

func NewPayoutRepository(pool PgxPool) *PayoutRepository {
	return &PayoutRepository{pool: pool}
}

func (r *PayoutRepository) Create(ctx context.Context, payout *domain.Payout) error {
	query := `
		INSERT INTO payouts (id, amount, currency, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	if payout.ID == uuid.Nil {
		payout.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		payout.ID,
		payout.Amount,
		payout.Currency,
		string(payout.Status),
	).Scan(&payout.CreatedAt, &payout.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create payout: %w", err)
	}

	return nil
}

func (r *PayoutRepository) MarkSent(ctx context.Context, id uuid.UUID) (*domain.Payout, error) {
	query := `
		UPDATE payouts
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + payoutColumns

	payout, err := scanPayout(r.pool.QueryRow(ctx, query, id, string(domain.PayoutStatusSent)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPayoutNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mark payout sent: %w", err)
	}

	return payout, nil
}

func (r *PayoutRepository) List(ctx context.Context, page domain.Page) ([]domain.Payout, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM payouts`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count payouts: %w", err)
	}

	query := `SELECT ` + payoutColumns + ` FROM payouts ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, page.PageSize, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list payouts: %w", err)
	}
	defer rows.Close()

	payouts := make([]domain.Payout, 0, page.PageSize)
	for rows.Next() {
		p, err := scanPayout(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan payout: %w", err)
		}
		payouts = append(payouts, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}

	return payouts, total, nil
}

func scanPayout(row pgx.Row) (*domain.Payout, error) {
	var (
		p      domain.Payout
		status string
	)
	err := row.Scan(
		&p.ID,
		&p.Amount,
		&p.Currency,
		&status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Status = domain.PayoutStatus(status)
	return &p, nil
}
