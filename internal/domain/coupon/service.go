package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/cart"
	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/menu"
)

// CartMutator applies a transformation to a stored cart. It is implemented
// by *cart.Service.
type CartMutator interface {
	Mutate(ctx context.Context, id cart.Identity, create bool, fn func(*cart.Cart) error) (*cart.Cart, error)
}

// CreateRequest holds the input for issuing a coupon.
type CreateRequest struct {
	VendorID           string
	RestaurantID       string
	Code               string
	Description        string
	DiscountPercentage decimal.Decimal
	MaxDiscountAmount  decimal.Decimal
	MinOrderAmount     decimal.Decimal
	ValidFrom          time.Time
	ValidUntil         time.Time
	UsageLimit         int
	UsagePerUser       int
}

// Validate checks the coupon terms independently of any store.
func (r CreateRequest) Validate() error {
	switch {
	case NormalizeCode(r.Code) == "":
		return errors.Wrap(ErrInvalidCoupon, "code is required")
	case !r.DiscountPercentage.IsPositive() || r.DiscountPercentage.GreaterThan(hundred):
		return errors.Wrap(ErrInvalidCoupon, "discountPercentage must be in (0, 100]")
	case !r.MaxDiscountAmount.IsPositive():
		return errors.Wrap(ErrInvalidCoupon, "maxDiscountAmount must be positive")
	case r.MinOrderAmount.IsNegative():
		return errors.Wrap(ErrInvalidCoupon, "minOrderAmount must not be negative")
	case r.UsageLimit < 1, r.UsagePerUser < 1:
		return errors.Wrap(ErrInvalidCoupon, "usage limits must be at least 1")
	case !r.ValidUntil.After(r.ValidFrom):
		return ErrInvalidWindow
	}
	return nil
}

// Service applies coupons to carts and manages vendor coupons.
type Service struct {
	coupons Repository
	carts   CartMutator
	catalog menu.Repository

	tracer trace.Tracer
	now    func() time.Time
}

// NewService creates a coupon Service.
func NewService(coupons Repository, carts CartMutator, catalog menu.Repository, tp trace.TracerProvider) *Service {
	if tp == nil {
		tp = noop.NewTracerProvider()
	}
	return &Service{
		coupons: coupons,
		carts:   carts,
		catalog: catalog,
		tracer:  tp.Tracer("restro/coupon"),
		now:     time.Now,
	}
}

// Apply evaluates code against the addressed cart and records the discount
// on the cart. The coupon itself is not modified; uses are counted when an
// order is placed.
func (s *Service) Apply(ctx context.Context, id cart.Identity, code string) (*cart.Cart, *Discount, error) {
	ctx, span := s.tracer.Start(ctx, "coupon.Apply")
	defer span.End()

	candidates, err := s.coupons.FindActiveByCode(ctx, NormalizeCode(code))
	if err != nil {
		return nil, nil, errors.Wrap(err, "find coupon")
	}

	var discount *Discount
	c, err := s.carts.Mutate(ctx, id, false, func(c *cart.Cart) error {
		d, err := Evaluate(candidates, c, id.UserID, s.now())
		if err != nil {
			return err
		}
		c.ApplyCoupon(d.Code, d.Amount)
		discount = d
		return nil
	})
	if errors.Is(err, cart.ErrCartNotFound) {
		return nil, nil, ErrEmptyCart
	}
	if err != nil {
		return nil, nil, err
	}
	return c, discount, nil
}

// Remove clears the applied coupon of the addressed cart. A missing cart is
// a no-op returning (nil, nil).
func (s *Service) Remove(ctx context.Context, id cart.Identity) (*cart.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "coupon.Remove")
	defer span.End()

	c, err := s.carts.Mutate(ctx, id, false, func(c *cart.Cart) error {
		c.RemoveCoupon()
		return nil
	})
	if errors.Is(err, cart.ErrCartNotFound) {
		return nil, nil
	}
	return c, err
}

// Create issues a coupon for a restaurant owned by the vendor.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Coupon, error) {
	ctx, span := s.tracer.Start(ctx, "coupon.Create")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	hotel, err := s.catalog.GetHotel(ctx, req.RestaurantID)
	if err != nil {
		return nil, errors.Wrap(err, "get restaurant")
	}
	if hotel.VendorID != req.VendorID {
		return nil, ErrRestaurantNotOwned
	}

	c := &Coupon{
		ID:                 uuid.New().String(),
		Code:               NormalizeCode(req.Code),
		Description:        req.Description,
		DiscountPercentage: req.DiscountPercentage,
		MaxDiscountAmount:  req.MaxDiscountAmount,
		MinOrderAmount:     req.MinOrderAmount,
		ValidFrom:          req.ValidFrom.UTC(),
		ValidUntil:         req.ValidUntil.UTC(),
		UsageLimit:         req.UsageLimit,
		UsagePerUser:       req.UsagePerUser,
		IsActive:           true,
		VendorID:           req.VendorID,
		RestaurantID:       req.RestaurantID,
		CreatedAt:          s.now().UTC(),
	}
	if err := s.coupons.Create(ctx, c); err != nil {
		if errors.Is(err, ErrDuplicateCode) {
			return nil, ErrDuplicateCode
		}
		return nil, errors.Wrap(err, "create coupon")
	}
	return c, nil
}

// ListByRestaurant returns a restaurant's coupons for its vendor.
func (s *Service) ListByRestaurant(ctx context.Context, vendorID, restaurantID string) ([]Coupon, error) {
	hotel, err := s.catalog.GetHotel(ctx, restaurantID)
	if err != nil {
		return nil, errors.Wrap(err, "get restaurant")
	}
	if hotel.VendorID != vendorID {
		return nil, ErrRestaurantNotOwned
	}
	out, err := s.coupons.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, errors.Wrap(err, "list coupons")
	}
	return out, nil
}

// Redeem re-evaluates the coupon applied to c and counts one use by userID.
// It is called when the cart is turned into an order.
func (s *Service) Redeem(ctx context.Context, c *cart.Cart, userID string) (*Discount, error) {
	ctx, span := s.tracer.Start(ctx, "coupon.Redeem")
	defer span.End()

	candidates, err := s.coupons.FindActiveByCode(ctx, c.AppliedCouponCode)
	if err != nil {
		return nil, errors.Wrap(err, "find coupon")
	}
	d, err := Evaluate(candidates, c, userID, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.coupons.Redeem(ctx, d.CouponID, userID); err != nil {
		return nil, errors.Wrap(err, "redeem coupon")
	}
	return d, nil
}

// Release undoes a Redeem whose order could not be stored.
func (s *Service) Release(ctx context.Context, couponID, userID string) error {
	ctx, span := s.tracer.Start(ctx, "coupon.Release")
	defer span.End()

	if err := s.coupons.Release(ctx, couponID, userID); err != nil {
		return errors.Wrap(err, "release coupon")
	}
	return nil
}
