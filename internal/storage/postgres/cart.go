package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/cart"
	"github.com/shubham90-developer/Total-Health-sub003/internal/storage/document"
)

const (
	findCartSQL = `SELECT document FROM carts WHERE key = $1`

	insertCartSQL = `INSERT INTO carts (key, id, document, version, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (key) DO NOTHING`

	replaceCartSQL = `UPDATE carts SET document = $3, version = $4, updated_at = $5
		WHERE key = $1 AND version = $2`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository stores whole cart aggregates as JSONB rows guarded by a
// version column.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// Find loads the cart stored under key.
func (r *CartRepository) Find(ctx context.Context, key string) (*cart.Cart, error) {
	var raw []byte
	if err := r.pool.QueryRow(ctx, findCartSQL, key).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cart.ErrCartNotFound
		}
		return nil, fmt.Errorf("finding cart %q: %w", key, err)
	}

	var doc document.Cart
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding cart %q: %w", key, err)
	}
	return doc.ToCart()
}

// Save inserts a new cart or replaces the stored one if its version still
// matches.
func (r *CartRepository) Save(ctx context.Context, c *cart.Cart) error {
	next := c.Version + 1
	doc := document.FromCart(c)
	doc.Version = next
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling cart: %w", err)
	}

	var tag pgconn.CommandTag
	if c.Version == 0 {
		tag, err = r.pool.Exec(ctx, insertCartSQL, c.Key, c.ID, raw, next, c.UpdatedAt)
	} else {
		tag, err = r.pool.Exec(ctx, replaceCartSQL, c.Key, c.Version, raw, next, c.UpdatedAt)
	}
	if err != nil {
		return fmt.Errorf("saving cart %q: %w", c.Key, err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrVersionConflict
	}

	c.Version = next
	return nil
}
