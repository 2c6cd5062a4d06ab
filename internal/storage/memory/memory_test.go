package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/cart"
	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/coupon"
	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/menu"
)

func TestCarts_VersionedSave(t *testing.T) {
	ctx := context.Background()
	s := NewCarts()

	_, err := s.Find(ctx, "user:u1")
	require.ErrorIs(t, err, cart.ErrCartNotFound)

	c := &cart.Cart{ID: "c1", Key: "user:u1"}
	require.NoError(t, s.Save(ctx, c))
	assert.Equal(t, int64(1), c.Version)

	a, err := s.Find(ctx, "user:u1")
	require.NoError(t, err)
	b, err := s.Find(ctx, "user:u1")
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, a))
	require.ErrorIs(t, s.Save(ctx, b), cart.ErrVersionConflict)

	again := &cart.Cart{ID: "c2", Key: "user:u1"}
	require.ErrorIs(t, s.Save(ctx, again), cart.ErrVersionConflict)
}

func TestCarts_ConcurrentMutateLosesNoLines(t *testing.T) {
	ctx := context.Background()
	catalog := NewMenu()
	catalog.PutHotel(menu.Hotel{ID: "h1", VendorID: "v1"})
	catalog.PutItem(menu.Item{ID: "tea", HotelID: "h1", Price: decimal.NewFromInt(10), Available: true})

	svc := cart.NewService(NewCarts(), catalog, cart.WithMaxWriteAttempts(100))

	const diners = 20
	var wg sync.WaitGroup
	errs := make(chan error, diners)
	for i := 0; i < diners; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := cart.ResolveIdentity(string(rune('a'+i)), "h1", "7")
			_, err := svc.AddItem(ctx, id, cart.AddItemRequest{MenuItemID: "tea", HotelID: "h1", Quantity: 1})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	v, err := svc.Get(ctx, cart.ResolveIdentity("a", "h1", "7"))
	require.NoError(t, err)
	assert.Len(t, v.Cart.Items, diners)
	assert.Len(t, v.Cart.Users, diners)
	assert.True(t, decimal.NewFromInt(10*diners).Equal(v.Cart.TotalAmount))
}

func TestCoupons_RedeemEnforcesCaps(t *testing.T) {
	ctx := context.Background()
	s := NewCoupons()
	require.NoError(t, s.Create(ctx, &coupon.Coupon{
		ID: "cp1", Code: "ONCE", IsActive: true, VendorID: "v1", RestaurantID: "h1",
		UsageLimit: 2, UsagePerUser: 1,
	}))

	require.NoError(t, s.Redeem(ctx, "cp1", "u1"))
	require.ErrorIs(t, s.Redeem(ctx, "cp1", "u1"), coupon.ErrPerUserLimitReached)
	require.NoError(t, s.Redeem(ctx, "cp1", "u2"))
	require.ErrorIs(t, s.Redeem(ctx, "cp1", "u3"), coupon.ErrUsageLimitReached)

	got, err := s.FindActiveByCode(ctx, "once")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].TotalUses)
	assert.Equal(t, []string{"u1", "u2"}, got[0].UsedBy)
}

func TestCoupons_ReleaseReturnsUse(t *testing.T) {
	ctx := context.Background()
	s := NewCoupons()
	require.NoError(t, s.Create(ctx, &coupon.Coupon{
		ID: "cp1", Code: "ONCE", IsActive: true, VendorID: "v1", RestaurantID: "h1",
		UsageLimit: 1, UsagePerUser: 1,
	}))

	require.NoError(t, s.Redeem(ctx, "cp1", "u1"))
	require.ErrorIs(t, s.Redeem(ctx, "cp1", "u2"), coupon.ErrUsageLimitReached)

	require.NoError(t, s.Release(ctx, "cp1", "u1"))
	require.NoError(t, s.Release(ctx, "cp1", "u1"))
	require.ErrorIs(t, s.Release(ctx, "nope", "u1"), coupon.ErrCouponNotFound)

	got, err := s.FindActiveByCode(ctx, "ONCE")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Zero(t, got[0].TotalUses)
	assert.Empty(t, got[0].UsedBy)

	require.NoError(t, s.Redeem(ctx, "cp1", "u2"))
}

func TestCoupons_CodeUniquePerVendor(t *testing.T) {
	ctx := context.Background()
	s := NewCoupons()
	require.NoError(t, s.Create(ctx, &coupon.Coupon{ID: "a", Code: "X", VendorID: "v1", IsActive: true}))
	require.ErrorIs(t, s.Create(ctx, &coupon.Coupon{ID: "b", Code: "X", VendorID: "v1"}), coupon.ErrDuplicateCode)
	require.NoError(t, s.Create(ctx, &coupon.Coupon{ID: "c", Code: "X", VendorID: "v2", IsActive: true}))

	got, err := s.FindActiveByCode(ctx, "x")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
