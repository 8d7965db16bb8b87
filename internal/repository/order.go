package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/saturnino-fabrica-de-software/mpd/internal/domain"
)

const orderColumns = `id, status, fiat_amount, fiat_currency, crypto_amount, crypto_symbol,
	address, network, memo, tx_hash, created_at, updated_at`

type OrderRepository struct {
	pool PgxPool
}

func NewOrderRepository(pool PgxPool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (id, status, fiat_amount, fiat_currency, crypto_amount, crypto_symbol,
			address, network, memo, tx_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		order.ID,
		string(order.Status),
		order.FiatAmount,
		order.FiatCurrency,
		order.CryptoAmount,
		order.CryptoSymbol,
		order.Address,
		order.Network,
		order.Memo,
		order.TxHash,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}

	return order, nil
}

// List returns one page of orders, newest first, plus the total number of
// orders matching the filter.
func (r *OrderRepository) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int, error) {
	where, args := orderWhere(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM orders` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	args = append(args, filter.PageSize, filter.Offset())
	query := fmt.Sprintf(`SELECT %s FROM orders%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0, filter.PageSize)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}

	return orders, total, nil
}

// UpdateStatus sets the order status. A nil txHash leaves the stored hash
// untouched.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus, txHash *string) (*domain.Order, error) {
	query := `
		UPDATE orders
		SET status = $2, tx_hash = COALESCE($3, tx_hash), updated_at = NOW()
		WHERE id = $1
		RETURNING ` + orderColumns

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id, string(status), txHash))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	return order, nil
}

func orderWhere(filter domain.OrderFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Symbol != "" {
		args = append(args, filter.Symbol)
		conds = append(conds, fmt.Sprintf("crypto_symbol = $%d", len(args)))
	}
	if filter.Query != "" {
		args = append(args, filter.Query)
		n := len(args)
		conds = append(conds, fmt.Sprintf("(id::text LIKE $%d || '%%' OR address LIKE '%%' || $%d || '%%')", n, n))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o      domain.Order
		status string
	)
	err := row.Scan(
		&o.ID,
		&status,
		&o.FiatAmount,
		&o.FiatCurrency,
		&o.CryptoAmount,
		&o.CryptoSymbol,
		&o.Address,
		&o.Network,
		&o.Memo,
		&o.TxHash,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	return &o, nil
}
