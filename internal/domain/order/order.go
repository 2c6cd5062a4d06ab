package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/cart"
)

// Order is a checked-out cart with its final pricing.
type Order struct {
	ID          string
	CartKey     string
	HotelID     string
	TableNumber string
	Lines       []cart.Line
	Subtotal    decimal.Decimal
	Discount    decimal.Decimal
	Total       decimal.Decimal
	CouponCode  string
	// Splits is each diner's share of Total, in order of first appearance.
	Splits    []Split
	PlacedBy  string
	CreatedAt time.Time
}

// Split is one diner's share of an order.
type Split struct {
	UserID string
	Amount decimal.Decimal
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, order *Order) error
}
