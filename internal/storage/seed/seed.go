// Package seed holds the demo catalog and loads it into any storage
// backend.
package seed

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/coupon"
	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/menu"
)

// MenuWriter is implemented by every menu repository.
type MenuWriter interface {
	UpsertHotel(ctx context.Context, h menu.Hotel) error
	UpsertItem(ctx context.Context, it menu.Item) error
}

// CouponWriter is implemented by every coupon repository.
type CouponWriter interface {
	Upsert(ctx context.Context, c *coupon.Coupon) error
}

// VendorID owns every demo restaurant.
const VendorID = "vendor-spice"

func price(v string) decimal.Decimal { return decimal.RequireFromString(v) }

// Hotels returns the demo restaurants.
func Hotels() []menu.Hotel {
	return []menu.Hotel{
		{ID: "hotel-spice-route", Name: "Spice Route", VendorID: VendorID},
		{ID: "hotel-tandoor-house", Name: "Tandoor House", VendorID: VendorID},
	}
}

// Items returns the demo menu.
func Items() []menu.Item {
	return []menu.Item{
		{
			ID: "item-paneer-tikka", HotelID: "hotel-spice-route", Title: "Paneer Tikka",
			Image: "paneer-tikka.jpg", Price: price("50"), Available: true,
			Addons: []menu.Addon{{Key: "mint-chutney", Label: "Mint Chutney", Price: price("10")}},
		},
		{
			ID: "item-biryani", HotelID: "hotel-spice-route", Title: "Hyderabadi Biryani",
			Image: "biryani.jpg", Available: true,
			Sizes: []menu.Size{{Label: "half", Price: price("180")}, {Label: "full", Price: price("320")}},
			Addons: []menu.Addon{
				{Key: "raita", Label: "Raita", Price: price("30")},
				{Key: "extra-egg", Label: "Extra Egg", Price: price("20")},
			},
		},
		{
			ID: "item-masala-chai", HotelID: "hotel-spice-route", Title: "Masala Chai",
			Image: "chai.jpg", Price: price("25"), Available: true,
		},
		{
			ID: "item-kulfi", HotelID: "hotel-spice-route", Title: "Kulfi",
			Image: "kulfi.jpg", Price: price("60"), Available: false,
		},
		{
			ID: "item-butter-naan", HotelID: "hotel-tandoor-house", Title: "Butter Naan",
			Image: "naan.jpg", Price: price("40"), Available: true,
		},
		{
			ID: "item-dal-makhani", HotelID: "hotel-tandoor-house", Title: "Dal Makhani",
			Image: "dal.jpg", Available: true,
			Sizes: []menu.Size{{Label: "regular", Price: price("220")}, {Label: "large", Price: price("340")}},
		},
	}
}

// Coupons returns demo coupons valid for 90 days from now.
func Coupons(now time.Time) []coupon.Coupon {
	from, until := now.UTC(), now.UTC().AddDate(0, 0, 90)
	return []coupon.Coupon{
		{
			ID: "coupon-welcome10", Code: "WELCOME10", Description: "10% off your first table order",
			DiscountPercentage: price("10"), MaxDiscountAmount: price("100"), MinOrderAmount: price("200"),
			ValidFrom: from, ValidUntil: until, UsageLimit: 1000, UsagePerUser: 1,
			IsActive: true, VendorID: VendorID, RestaurantID: "hotel-spice-route", CreatedAt: from,
		},
		{
			ID: "coupon-feast25", Code: "FEAST25", Description: "25% off large orders",
			DiscountPercentage: price("25"), MaxDiscountAmount: price("300"), MinOrderAmount: price("1000"),
			ValidFrom: from, ValidUntil: until, UsageLimit: 200, UsagePerUser: 3,
			IsActive: true, VendorID: VendorID, RestaurantID: "hotel-spice-route", CreatedAt: from,
		},
		{
			ID: "coupon-naan15", Code: "NAAN15", Description: "15% off at Tandoor House",
			DiscountPercentage: price("15"), MaxDiscountAmount: price("75"), MinOrderAmount: price("150"),
			ValidFrom: from, ValidUntil: until, UsageLimit: 500, UsagePerUser: 2,
			IsActive: true, VendorID: VendorID, RestaurantID: "hotel-tandoor-house", CreatedAt: from,
		},
	}
}

// Load writes the demo catalog and coupons. It is idempotent.
func Load(ctx context.Context, menus MenuWriter, coupons CouponWriter, now time.Time) error {
	for _, h := range Hotels() {
		if err := menus.UpsertHotel(ctx, h); err != nil {
			return errors.Wrapf(err, "hotel %s", h.ID)
		}
	}
	for _, it := range Items() {
		if err := menus.UpsertItem(ctx, it); err != nil {
			return errors.Wrapf(err, "item %s", it.ID)
		}
	}
	for _, c := range Coupons(now) {
		if err := coupons.Upsert(ctx, &c); err != nil {
			return errors.Wrapf(err, "coupon %s", c.Code)
		}
	}
	return nil
}
