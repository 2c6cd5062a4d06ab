package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/cart"
	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/coupon"
)

// ErrEmptyCart is returned when checking out a cart without lines.
var ErrEmptyCart = cart.ErrEmptyCart

// CartStore is the part of *cart.Service checkout needs.
type CartStore interface {
	Mutate(ctx context.Context, id cart.Identity, create bool, fn func(*cart.Cart) error) (*cart.Cart, error)
}

// CouponRedeemer re-checks and consumes a coupon applied to a cart. It is
// implemented by *coupon.Service.
type CouponRedeemer interface {
	Redeem(ctx context.Context, c *cart.Cart, userID string) (*coupon.Discount, error)
	Release(ctx context.Context, couponID, userID string) error
}

// Service encapsulates checkout business logic.
type Service struct {
	carts   CartStore
	coupons CouponRedeemer
	orders  Repository
	now     func() time.Time
}

// NewService creates an order Service with the required domain dependencies.
func NewService(carts CartStore, coupons CouponRedeemer, orders Repository) *Service {
	return &Service{
		carts:   carts,
		coupons: coupons,
		orders:  orders,
		now:     time.Now,
	}
}

// PlaceOrder turns the addressed cart into an order.
//
// The cart contents are claimed first by clearing the cart, so two diners
// checking out the same table cannot both order its lines. An applied coupon
// is then re-evaluated and redeemed; if that fails the lines are put back
// without the coupon and the coupon error is returned. If the order cannot
// be stored the redemption is released and the lines are put back with the
// coupon still applied.
func (s *Service) PlaceOrder(ctx context.Context, id cart.Identity) (*Order, error) {
	var snapshot *cart.Cart
	_, err := s.carts.Mutate(ctx, id, false, func(c *cart.Cart) error {
		if c.Empty() {
			return ErrEmptyCart
		}
		snapshot = c.Clone()
		c.Clear()
		return nil
	})
	if errors.Is(err, cart.ErrCartNotFound) {
		return nil, ErrEmptyCart
	}
	if err != nil {
		return nil, err
	}

	var (
		discount = decimal.Zero
		redeemed *coupon.Discount
	)
	if snapshot.AppliedCouponCode != "" {
		d, err := s.coupons.Redeem(ctx, snapshot, id.UserID)
		if err != nil {
			if rerr := s.restore(ctx, id, snapshot, false); rerr != nil {
				return nil, errors.Wrap(rerr, "restore cart")
			}
			return nil, fmt.Errorf("redeem coupon: %w", err)
		}
		discount = d.Amount
		redeemed = d
	}

	subtotal := snapshot.TotalAmount
	total := subtotal.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	total = total.Round(2)

	o := &Order{
		ID:          uuid.New().String(),
		CartKey:     snapshot.Key,
		HotelID:     snapshot.RestaurantID(),
		TableNumber: snapshot.TableNumber,
		Lines:       snapshot.Items,
		Subtotal:    subtotal.Round(2),
		Discount:    discount.Round(2),
		Total:       total,
		CouponCode:  snapshot.AppliedCouponCode,
		Splits:      Splits(snapshot.Items, id.UserID, discount),
		PlacedBy:    id.UserID,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, s.rollback(ctx, id, snapshot, redeemed, fmt.Errorf("create order: %w", err))
	}
	return o, nil
}

// rollback undoes the coupon redemption and the cart claim of an order that
// was not stored. Failures are joined to cause.
func (s *Service) rollback(ctx context.Context, id cart.Identity, snapshot *cart.Cart, redeemed *coupon.Discount, cause error) error {
	if redeemed != nil {
		if err := s.coupons.Release(ctx, redeemed.CouponID, id.UserID); err != nil {
			cause = fmt.Errorf("%w; release coupon: %w", cause, err)
		}
	}
	if err := s.restore(ctx, id, snapshot, true); err != nil {
		cause = fmt.Errorf("%w; restore cart: %w", cause, err)
	}
	return cause
}

// restore puts the claimed lines back in front of anything added since the
// claim. With keepCoupon the snapshot's coupon is re-applied unless another
// one was applied meanwhile.
func (s *Service) restore(ctx context.Context, id cart.Identity, snapshot *cart.Cart, keepCoupon bool) error {
	_, err := s.carts.Mutate(ctx, id, true, func(c *cart.Cart) error {
		c.Restore(snapshot.Items, snapshot.Users)
		if keepCoupon && snapshot.AppliedCouponCode != "" && c.AppliedCouponCode == "" {
			c.ApplyCoupon(snapshot.AppliedCouponCode, snapshot.DiscountAmount)
		}
		return nil
	})
	return err
}

// Splits divides the discounted total between the diners who ordered the
// lines. The discount is shared in proportion to each diner's subtotal and
// the last diner absorbs rounding so the shares add up to the order total.
// Lines without an orderer are charged to placedBy.
func Splits(lines []cart.Line, placedBy string, discount decimal.Decimal) []Split {
	var (
		order    []string
		subtotal = decimal.Zero
		byUser   = map[string]decimal.Decimal{}
	)
	for _, l := range lines {
		u := l.OrderedBy
		if u == "" {
			u = placedBy
		}
		if _, ok := byUser[u]; !ok {
			order = append(order, u)
			byUser[u] = decimal.Zero
		}
		byUser[u] = byUser[u].Add(l.Price)
		subtotal = subtotal.Add(l.Price)
	}
	if len(order) == 0 {
		return nil
	}

	total := subtotal.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	total = total.Round(2)

	out := make([]Split, 0, len(order))
	assigned := decimal.Zero
	for i, u := range order {
		var amount decimal.Decimal
		switch {
		case i == len(order)-1:
			amount = total.Sub(assigned)
		case subtotal.IsZero():
			amount = decimal.Zero
		default:
			amount = total.Mul(byUser[u]).Div(subtotal).Round(2)
		}
		assigned = assigned.Add(amount)
		out = append(out, Split{UserID: u, Amount: amount})
	}
	return out
}
