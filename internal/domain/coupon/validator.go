package coupon

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/cart"
)

var hundred = decimal.NewFromInt(100)

// Evaluate checks whether one of the candidate coupons (all sharing a code)
// may be applied to c by userID at now and computes the discount.
//
// Checks run in a fixed order and the first failure is returned: empty cart,
// unknown code, restaurant, validity window, total uses, uses by the user,
// minimum order.
func Evaluate(candidates []Coupon, c *cart.Cart, userID string, now time.Time) (*Discount, error) {
	if c == nil || c.Empty() {
		return nil, ErrEmptyCart
	}

	active := make([]Coupon, 0, len(candidates))
	for _, cp := range candidates {
		if cp.IsActive {
			active = append(active, cp)
		}
	}
	if len(active) == 0 {
		return nil, ErrCouponNotFound
	}

	cp, ok := forRestaurant(active, c)
	if !ok {
		return nil, ErrCouponNotApplicable
	}

	if !cp.ValidFrom.IsZero() && now.Before(cp.ValidFrom) {
		return nil, ErrCouponExpired
	}
	if !cp.ValidUntil.IsZero() && now.After(cp.ValidUntil) {
		return nil, ErrCouponExpired
	}

	if cp.TotalUses >= cp.UsageLimit {
		return nil, ErrUsageLimitReached
	}
	if cp.UsesBy(userID) >= cp.UsagePerUser {
		return nil, ErrPerUserLimitReached
	}

	if c.TotalAmount.LessThan(cp.MinOrderAmount) {
		return nil, ErrMinimumOrderNotMet
	}

	return &Discount{
		CouponID: cp.ID,
		Code:     cp.Code,
		Amount:   Amount(cp, c.TotalAmount),
	}, nil
}

// Amount is total × percentage / 100 capped at the coupon's maximum discount
// and at the total itself, rounded to 2 places.
func Amount(cp *Coupon, total decimal.Decimal) decimal.Decimal {
	raw := total.Mul(cp.DiscountPercentage).Div(hundred)
	amount := decimal.Min(raw, cp.MaxDiscountAmount, total)
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount.Round(2)
}

// forRestaurant picks the coupon issued for the restaurant every cart line
// belongs to.
func forRestaurant(coupons []Coupon, c *cart.Cart) (*Coupon, bool) {
	rid := c.RestaurantID()
	for _, l := range c.Items {
		if l.HotelID != rid {
			return nil, false
		}
	}
	for i := range coupons {
		if coupons[i].RestaurantID == rid {
			return &coupons[i], true
		}
	}
	return nil, false
}
