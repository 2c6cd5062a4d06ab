package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/order"
	"github.com/shubham90-developer/Total-Health-sub003/internal/storage/document"
)

const createOrderSQL = `INSERT INTO orders (id, cart_key, hotel_id, table_number, lines,
		subtotal, discount, total, coupon_code, splits, placed_by, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order. Lines and splits are serialized to JSON for
// storage in JSONB columns.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	linesJSON, err := json.Marshal(document.FromLines(o.Lines))
	if err != nil {
		return fmt.Errorf("marshaling order lines: %w", err)
	}
	splitsJSON, err := json.Marshal(document.FromSplits(o.Splits))
	if err != nil {
		return fmt.Errorf("marshaling order splits: %w", err)
	}

	_, err = r.pool.Exec(ctx, createOrderSQL,
		o.ID, o.CartKey, o.HotelID, o.TableNumber, linesJSON,
		o.Subtotal, o.Discount, o.Total, o.CouponCode, splitsJSON, o.PlacedBy, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}

	return nil
}
