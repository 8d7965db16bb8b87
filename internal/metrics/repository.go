package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Querier is the part of *pgxpool.Pool the repository needs.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Snapshot is the delivery state of the system at one point in time.
type Snapshot struct {
	ActiveEndpoints   int64
	InactiveEndpoints int64
	Succeeded         int64
	Failed            int64
}

// SuccessRatio is Succeeded over all attempts, or 1 when nothing was sent.
func (s Snapshot) SuccessRatio() float64 {
	total := s.Succeeded + s.Failed
	if total == 0 {
		return 1
	}
	return float64(s.Succeeded) / float64(total)
}

// Repository reads aggregates from the endpoint registry and delivery log
type Repository struct {
	db Querier
}

func NewRepository(db Querier) *Repository {
	return &Repository{db: db}
}

// Snapshot counts endpoints by state and delivery attempts recorded since
// since, by outcome.
func (r *Repository) Snapshot(ctx context.Context, since time.Time) (Snapshot, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM webhook_endpoints WHERE is_active = true),
			(SELECT COUNT(*) FROM webhook_endpoints WHERE is_active = false),
			COUNT(*) FILTER (WHERE status = 'SUCCESS'),
			COUNT(*) FILTER (WHERE status = 'FAILED')
		FROM webhook_deliveries
		WHERE created_at >= $1
	`

	var s Snapshot
	err := r.db.QueryRow(ctx, query, since).Scan(
		&s.ActiveEndpoints,
		&s.InactiveEndpoints,
		&s.Succeeded,
		&s.Failed,
	)
	if err != nil {
		return Snapshot{}, fmt.Errorf("query delivery snapshot: %w", err)
	}

	return s, nil
}
