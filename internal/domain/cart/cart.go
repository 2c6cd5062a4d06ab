package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/menu"
)

var (
	// ErrCartNotFound is returned when no cart exists for an identity.
	ErrCartNotFound = errors.New("cart not found")
	// ErrItemNotFound is returned when a line ID is not present in the cart.
	ErrItemNotFound = errors.New("item not found in cart")
	// ErrEmptyCart is returned by operations that need at least one line.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidQuantity is returned when a quantity is below 1.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrRestaurantMismatch is returned when an item from another restaurant
	// is added to a cart that already holds lines.
	ErrRestaurantMismatch = errors.New("cart already contains items from another restaurant")
	// ErrVersionConflict is returned by Repository.Save when the stored cart
	// changed since it was read.
	ErrVersionConflict = errors.New("cart was modified concurrently")
)

// Cart is the line-item aggregate of either a single diner (personal) or a
// physical table (shared).
type Cart struct {
	ID  string
	Key string

	// UserID owns a personal cart; empty for shared carts.
	UserID string
	// HotelID and TableNumber identify a shared cart; empty for personal carts.
	HotelID     string
	TableNumber string

	Items       []Line
	TotalAmount decimal.Decimal
	// Users lists the diners that joined a shared cart.
	Users []string

	AppliedCouponCode string
	DiscountAmount    decimal.Decimal

	// Version is the optimistic concurrency token. Zero means never stored.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Line is one menu item configuration in a cart.
type Line struct {
	ID                  string
	MenuItemID          string
	HotelID             string
	Quantity            int
	Size                string
	Addons              []menu.AddonSelection
	Price               decimal.Decimal
	SpecialInstructions string
	OrderedBy           string
}

// Repository persists whole cart aggregates.
type Repository interface {
	// Find returns the cart stored under key or ErrCartNotFound.
	Find(ctx context.Context, key string) (*Cart, error)
	// Save replaces the stored cart if its version still equals c.Version
	// (inserting when c.Version is zero) and bumps c.Version on success.
	// It returns ErrVersionConflict when another writer got there first.
	Save(ctx context.Context, c *Cart) error
}
