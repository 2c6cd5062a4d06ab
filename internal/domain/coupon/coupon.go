package coupon

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/cart"
)

var (
	// ErrEmptyCart is returned when a coupon is applied to a cart without lines.
	ErrEmptyCart = cart.ErrEmptyCart
	// ErrCouponNotFound is returned when no active coupon has the given code.
	ErrCouponNotFound = errors.New("coupon not found")
	// ErrCouponNotApplicable is returned when the coupon belongs to a
	// restaurant other than the one the cart orders from.
	ErrCouponNotApplicable = errors.New("coupon is not applicable to this restaurant")
	// ErrCouponExpired is returned outside the coupon's validity window.
	ErrCouponExpired = errors.New("coupon expired or not yet valid")
	// ErrUsageLimitReached is returned when the coupon has been used up.
	ErrUsageLimitReached = errors.New("coupon usage limit reached")
	// ErrPerUserLimitReached is returned when the user has used the coupon
	// as often as allowed.
	ErrPerUserLimitReached = errors.New("coupon usage limit reached for this user")
	// ErrMinimumOrderNotMet is returned when the cart total is below the
	// coupon's minimum order amount.
	ErrMinimumOrderNotMet = errors.New("minimum order amount not met")
	// ErrDuplicateCode is returned when a vendor already has a coupon with
	// the same code.
	ErrDuplicateCode = errors.New("coupon code already exists")
	// ErrRestaurantNotOwned is returned when a vendor creates a coupon for a
	// restaurant it does not own.
	ErrRestaurantNotOwned = errors.New("restaurant does not belong to vendor")
	// ErrInvalidCoupon is returned when coupon terms are out of range.
	ErrInvalidCoupon = errors.New("invalid coupon terms")
	// ErrInvalidWindow is returned when validUntil is not after validFrom.
	ErrInvalidWindow = errors.New("validUntil must be after validFrom")
)

// Coupon is a vendor-issued percentage discount with eligibility rules.
type Coupon struct {
	ID                 string
	Code               string
	Description        string
	DiscountPercentage decimal.Decimal
	MaxDiscountAmount  decimal.Decimal
	MinOrderAmount     decimal.Decimal
	ValidFrom          time.Time
	ValidUntil         time.Time
	UsageLimit         int
	UsagePerUser       int
	TotalUses          int
	UsedBy             []string
	IsActive           bool
	VendorID           string
	RestaurantID       string
	CreatedAt          time.Time
}

// UsesBy counts how often userID redeemed the coupon.
func (c *Coupon) UsesBy(userID string) int {
	n := 0
	for _, u := range c.UsedBy {
		if u == userID {
			n++
		}
	}
	return n
}

// Discount is the result of evaluating a coupon against a cart.
type Discount struct {
	CouponID string
	Code     string
	Amount   decimal.Decimal
}

// Repository provides coupon lookup, creation and redemption.
type Repository interface {
	// FindActiveByCode returns every active coupon with the normalised code.
	// Codes are unique per vendor, so several vendors may share one.
	FindActiveByCode(ctx context.Context, code string) ([]Coupon, error)
	// Create stores a new coupon or returns ErrDuplicateCode.
	Create(ctx context.Context, c *Coupon) error
	// ListByRestaurant returns the coupons issued for a restaurant.
	ListByRestaurant(ctx context.Context, restaurantID string) ([]Coupon, error)
	// Redeem atomically counts one use of the coupon by userID, failing
	// with ErrUsageLimitReached or ErrPerUserLimitReached when a cap is hit.
	Redeem(ctx context.Context, couponID, userID string) error
	// Release gives back one use of the coupon recorded for userID. It is a
	// no-op when the user has no recorded use.
	Release(ctx context.Context, couponID, userID string) error
}

// NormalizeCode upper-cases and trims a coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
