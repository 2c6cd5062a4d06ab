package menu

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrHotelNotFound is returned when a requested hotel does not exist.
	ErrHotelNotFound = errors.New("hotel not found")
	// ErrItemNotFound is returned when a requested menu item does not exist
	// or does not belong to the requested hotel.
	ErrItemNotFound = errors.New("menu item not found")
	// ErrItemUnavailable is returned when an item is listed but not
	// currently orderable.
	ErrItemUnavailable = errors.New("menu item is not available")
	// ErrSizeUnavailable is returned when the item has sizes and the requested
	// size is not one of them.
	ErrSizeUnavailable = errors.New("size not available for this item")
	// ErrAddonUnavailable is returned when a requested addon key is not
	// offered by the item.
	ErrAddonUnavailable = errors.New("addon not available for this item")
)

// Hotel is a restaurant owned by a vendor.
type Hotel struct {
	ID       string
	Name     string
	VendorID string
}

// Item is a menu entry of a hotel.
type Item struct {
	ID        string
	HotelID   string
	Title     string
	Image     string
	Price     decimal.Decimal
	Sizes     []Size
	Addons    []Addon
	Available bool
}

// Size is a priced size variant (e.g. "half", "full").
type Size struct {
	Label string
	Price decimal.Decimal
}

// Addon is an optional extra that can be ordered with an item.
type Addon struct {
	Key   string
	Label string
	Price decimal.Decimal
}

// AddonSelection is a requested addon and how many of it.
type AddonSelection struct {
	Key      string
	Quantity int
}

// Repository defines read operations for the menu catalog.
type Repository interface {
	GetHotel(ctx context.Context, id string) (*Hotel, error)
	GetItem(ctx context.Context, id string) (*Item, error)
	GetItems(ctx context.Context, ids []string) ([]Item, error)
	ListByHotel(ctx context.Context, hotelID string) ([]Item, error)
}
