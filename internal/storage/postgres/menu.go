package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/menu"
	"github.com/shubham90-developer/Total-Health-sub003/internal/storage/document"
)

const (
	getHotelSQL = `SELECT id, name, vendor_id FROM hotels WHERE id = $1`

	menuItemColumns = `id, hotel_id, title, image, price, sizes, addons, available`

	getMenuItemSQL = `SELECT ` + menuItemColumns + ` FROM menu_items WHERE id = $1`

	getMenuItemsSQL = `SELECT ` + menuItemColumns + ` FROM menu_items WHERE id = ANY($1)`

	listMenuItemsSQL = `SELECT ` + menuItemColumns + ` FROM menu_items WHERE hotel_id = $1 ORDER BY id`

	upsertHotelSQL = `INSERT INTO hotels (id, name, vendor_id) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, vendor_id = EXCLUDED.vendor_id`

	upsertMenuItemSQL = `INSERT INTO menu_items (` + menuItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET hotel_id = EXCLUDED.hotel_id, title = EXCLUDED.title,
			image = EXCLUDED.image, price = EXCLUDED.price, sizes = EXCLUDED.sizes,
			addons = EXCLUDED.addons, available = EXCLUDED.available`
)

var _ menu.Repository = (*MenuRepository)(nil)

// MenuRepository implements menu.Repository backed by PostgreSQL.
type MenuRepository struct {
	pool *pgxpool.Pool
}

// NewMenuRepository returns a MenuRepository that uses the given pool.
func NewMenuRepository(pool *pgxpool.Pool) *MenuRepository {
	return &MenuRepository{pool: pool}
}

// GetHotel returns a hotel by ID.
func (r *MenuRepository) GetHotel(ctx context.Context, id string) (*menu.Hotel, error) {
	var h menu.Hotel
	err := r.pool.QueryRow(ctx, getHotelSQL, id).Scan(&h.ID, &h.Name, &h.VendorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, menu.ErrHotelNotFound
		}
		return nil, fmt.Errorf("getting hotel %q: %w", id, err)
	}
	return &h, nil
}

// GetItem returns a single menu item.
func (r *MenuRepository) GetItem(ctx context.Context, id string) (*menu.Item, error) {
	rows, err := r.pool.Query(ctx, getMenuItemSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting menu item %q: %w", id, err)
	}

	it, err := pgx.CollectExactlyOneRow(rows, scanMenuItem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, menu.ErrItemNotFound
		}
		return nil, fmt.Errorf("getting menu item %q: %w", id, err)
	}
	return &it, nil
}

// GetItems returns the menu items matching any of ids.
func (r *MenuRepository) GetItems(ctx context.Context, ids []string) ([]menu.Item, error) {
	rows, err := r.pool.Query(ctx, getMenuItemsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting menu items by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanMenuItem)
}

// ListByHotel returns a hotel's menu ordered by ID.
func (r *MenuRepository) ListByHotel(ctx context.Context, hotelID string) ([]menu.Item, error) {
	if _, err := r.GetHotel(ctx, hotelID); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, listMenuItemsSQL, hotelID)
	if err != nil {
		return nil, fmt.Errorf("listing menu of %q: %w", hotelID, err)
	}
	return pgx.CollectRows(rows, scanMenuItem)
}

// UpsertHotel inserts or updates a hotel.
func (r *MenuRepository) UpsertHotel(ctx context.Context, h menu.Hotel) error {
	if _, err := r.pool.Exec(ctx, upsertHotelSQL, h.ID, h.Name, h.VendorID); err != nil {
		return fmt.Errorf("upserting hotel %q: %w", h.ID, err)
	}
	return nil
}

// UpsertItem inserts or updates a menu item.
func (r *MenuRepository) UpsertItem(ctx context.Context, it menu.Item) error {
	sizes, err := json.Marshal(document.FromSizes(it.Sizes))
	if err != nil {
		return fmt.Errorf("marshaling sizes: %w", err)
	}
	addons, err := json.Marshal(document.FromAddons(it.Addons))
	if err != nil {
		return fmt.Errorf("marshaling addons: %w", err)
	}
	_, err = r.pool.Exec(ctx, upsertMenuItemSQL,
		it.ID, it.HotelID, it.Title, it.Image, it.Price, sizes, addons, it.Available,
	)
	if err != nil {
		return fmt.Errorf("upserting menu item %q: %w", it.ID, err)
	}
	return nil
}

func scanMenuItem(row pgx.CollectableRow) (menu.Item, error) {
	var (
		it         menu.Item
		sizesJSON  []byte
		addonsJSON []byte
		sizes      []document.Size
		addons     []document.MenuAddon
	)
	if err := row.Scan(
		&it.ID, &it.HotelID, &it.Title, &it.Image, &it.Price, &sizesJSON, &addonsJSON, &it.Available,
	); err != nil {
		return it, err
	}
	if err := json.Unmarshal(sizesJSON, &sizes); err != nil {
		return it, fmt.Errorf("decoding sizes of %q: %w", it.ID, err)
	}
	if err := json.Unmarshal(addonsJSON, &addons); err != nil {
		return it, fmt.Errorf("decoding addons of %q: %w", it.ID, err)
	}
	var err error
	if it.Sizes, err = document.ToSizes(sizes); err != nil {
		return it, err
	}
	if it.Addons, err = document.ToAddons(addons); err != nil {
		return it, err
	}
	return it, nil
}
