package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/nordmart/storefront/internal/domain/order"
	"github.com/nordmart/storefront/internal/domain/product"
)

const (
	decrementStockSQL = `UPDATE products SET stock = stock - $2
		WHERE id = $1 AND stock >= $2`

	createOrderSQL = `INSERT INTO orders (id, number, user_id, status, total, discount, promo_code, items, address, placed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	orderColumns = `id, number, user_id, status, total, discount, promo_code, items, address, placed_at`

	getOrderByIDSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	listOrdersByUserSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE user_id = $1 ORDER BY placed_at DESC`

	listOrdersSQL = `SELECT ` + orderColumns + ` FROM orders ORDER BY placed_at DESC`

	updateOrderStatusSQL = `UPDATE orders SET status = $2 WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order and decrements catalog stock for each line in
// one transaction. A line exceeding the available stock aborts the whole
// transaction with product.ErrInsufficientStock, so a failed placement leaves
// both the ledger and the catalog untouched and the order can be retried.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}

	var addressJSON []byte
	if o.Address != nil {
		addressJSON, err = json.Marshal(o.Address)
		if err != nil {
			return fmt.Errorf("marshaling order address: %w", err)
		}
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, item := range o.Items {
			tag, err := tx.Exec(ctx, decrementStockSQL, item.ProductID, item.Quantity)
			if err != nil {
				return fmt.Errorf("decrementing stock for product %d: %w", item.ProductID, err)
			}
			if tag.RowsAffected() == 0 {
				return errors.Wrapf(product.ErrInsufficientStock, "product %d", item.ProductID)
			}
		}

		_, err := tx.Exec(ctx, createOrderSQL,
			o.ID, o.Number, o.UserID, string(o.Status),
			o.Total, o.Discount, o.PromoCode,
			itemsJSON, addressJSON, o.PlacedAt,
		)
		if err != nil {
			return fmt.Errorf("creating order %q: %w", o.ID, err)
		}
		return nil
	})
}

// GetByID returns a single order by its identifier.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return &o, nil
}

// ListByUser returns the user's orders most-recent-first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// List returns all orders most-recent-first.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// UpdateStatus replaces the status of the matching order.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status order.Status) error {
	tag, err := r.pool.Exec(ctx, updateOrderStatusSQL, id, string(status))
	if err != nil {
		return fmt.Errorf("updating status of order %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o           order.Order
		status      string
		total       decimal.Decimal
		discount    decimal.Decimal
		itemsJSON   []byte
		addressJSON []byte
	)
	err := row.Scan(
		&o.ID, &o.Number, &o.UserID, &status, &total, &discount,
		&o.PromoCode, &itemsJSON, &addressJSON, &o.PlacedAt,
	)
	if err != nil {
		return o, err
	}

	o.Status = order.Status(status)
	o.Total = total
	o.Discount = discount

	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return o, fmt.Errorf("unmarshaling items of order %q: %w", o.ID, err)
	}
	if len(addressJSON) > 0 {
		var addr order.Address
		if err := json.Unmarshal(addressJSON, &addr); err != nil {
			return o, fmt.Errorf("unmarshaling address of order %q: %w", o.ID, err)
		}
		o.Address = &addr
	}
	return o, nil
}
