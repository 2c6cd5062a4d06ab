// Package memory implements the domain repositories in process memory. It
// backs tests and local development (Storage.Driver=memory).
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/auth"
	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/cart"
	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/coupon"
	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/menu"
	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/order"
)

var (
	_ menu.Repository   = (*Menu)(nil)
	_ cart.Repository   = (*Carts)(nil)
	_ coupon.Repository = (*Coupons)(nil)
	_ order.Repository  = (*Orders)(nil)
	_ auth.Repository   = (*APIKeys)(nil)
)

// Menu is an in-memory menu catalog.
type Menu struct {
	mu     sync.RWMutex
	hotels map[string]menu.Hotel
	items  map[string]menu.Item
}

// NewMenu returns an empty catalog.
func NewMenu() *Menu {
	return &Menu{hotels: map[string]menu.Hotel{}, items: map[string]menu.Item{}}
}

// PutHotel adds or replaces a hotel.
func (m *Menu) PutHotel(h menu.Hotel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hotels[h.ID] = h
}

// PutItem adds or replaces a menu item.
func (m *Menu) PutItem(it menu.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[it.ID] = cloneItem(it)
}

// UpsertHotel is PutHotel for seeding through the shared loader.
func (m *Menu) UpsertHotel(_ context.Context, h menu.Hotel) error {
	m.PutHotel(h)
	return nil
}

// UpsertItem is PutItem for seeding through the shared loader.
func (m *Menu) UpsertItem(_ context.Context, it menu.Item) error {
	m.PutItem(it)
	return nil
}

func (m *Menu) GetHotel(_ context.Context, id string) (*menu.Hotel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.hotels[id]
	if !ok {
		return nil, menu.ErrHotelNotFound
	}
	return &h, nil
}

func (m *Menu) GetItem(_ context.Context, id string) (*menu.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it, ok := m.items[id]
	if !ok {
		return nil, menu.ErrItemNotFound
	}
	it = cloneItem(it)
	return &it, nil
}

func (m *Menu) GetItems(_ context.Context, ids []string) ([]menu.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]menu.Item, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if it, ok := m.items[id]; ok {
			out = append(out, cloneItem(it))
		}
	}
	return out, nil
}

func (m *Menu) ListByHotel(_ context.Context, hotelID string) ([]menu.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.hotels[hotelID]; !ok {
		return nil, menu.ErrHotelNotFound
	}
	var out []menu.Item
	for _, it := range m.items {
		if it.HotelID == hotelID {
			out = append(out, cloneItem(it))
		}
	}
	slices.SortFunc(out, func(a, b menu.Item) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out, nil
}

func cloneItem(it menu.Item) menu.Item {
	it.Sizes = slices.Clone(it.Sizes)
	it.Addons = slices.Clone(it.Addons)
	return it
}

// Carts stores cart aggregates by key with version checks.
type Carts struct {
	mu    sync.Mutex
	carts map[string]*cart.Cart
}

// NewCarts returns an empty cart store.
func NewCarts() *Carts {
	return &Carts{carts: map[string]*cart.Cart{}}
}

func (s *Carts) Find(_ context.Context, key string) (*cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[key]
	if !ok {
		return nil, cart.ErrCartNotFound
	}
	return c.Clone(), nil
}

func (s *Carts) Save(_ context.Context, c *cart.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.carts[c.Key]
	switch {
	case !ok && c.Version != 0:
		return cart.ErrVersionConflict
	case ok && stored.Version != c.Version:
		return cart.ErrVersionConflict
	}
	c.Version++
	s.carts[c.Key] = c.Clone()
	return nil
}

// Coupons stores coupons and their redemptions.
type Coupons struct {
	mu      sync.Mutex
	coupons map[string]*coupon.Coupon
}

// NewCoupons returns an empty coupon store.
func NewCoupons() *Coupons {
	return &Coupons{coupons: map[string]*coupon.Coupon{}}
}

func (s *Coupons) FindActiveByCode(_ context.Context, code string) ([]coupon.Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code = coupon.NormalizeCode(code)
	var out []coupon.Coupon
	for _, c := range s.coupons {
		if c.IsActive && c.Code == code {
			out = append(out, cloneCoupon(c))
		}
	}
	return out, nil
}

func (s *Coupons) Create(_ context.Context, c *coupon.Coupon) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.coupons {
		if existing.VendorID == c.VendorID && existing.Code == c.Code {
			return coupon.ErrDuplicateCode
		}
	}
	stored := cloneCoupon(c)
	s.coupons[c.ID] = &stored
	return nil
}

// Upsert inserts c or replaces the terms of the vendor's coupon with the
// same code, keeping its usage.
func (s *Coupons) Upsert(_ context.Context, c *coupon.Coupon) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.coupons {
		if existing.VendorID == c.VendorID && existing.Code == c.Code {
			updated := cloneCoupon(c)
			updated.ID = existing.ID
			updated.TotalUses = existing.TotalUses
			updated.UsedBy = existing.UsedBy
			updated.CreatedAt = existing.CreatedAt
			*existing = updated
			return nil
		}
	}
	stored := cloneCoupon(c)
	s.coupons[c.ID] = &stored
	return nil
}

func (s *Coupons) ListByRestaurant(_ context.Context, restaurantID string) ([]coupon.Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []coupon.Coupon
	for _, c := range s.coupons {
		if c.RestaurantID == restaurantID {
			out = append(out, cloneCoupon(c))
		}
	}
	slices.SortFunc(out, func(a, b coupon.Coupon) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

func (s *Coupons) Redeem(_ context.Context, couponID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.coupons[couponID]
	if !ok {
		return coupon.ErrCouponNotFound
	}
	if c.TotalUses >= c.UsageLimit {
		return coupon.ErrUsageLimitReached
	}
	if c.UsesBy(userID) >= c.UsagePerUser {
		return coupon.ErrPerUserLimitReached
	}
	c.TotalUses++
	c.UsedBy = append(c.UsedBy, userID)
	return nil
}

func (s *Coupons) Release(_ context.Context, couponID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.coupons[couponID]
	if !ok {
		return coupon.ErrCouponNotFound
	}
	i := slices.Index(c.UsedBy, userID)
	if i < 0 {
		return nil
	}
	c.UsedBy = slices.Delete(c.UsedBy, i, i+1)
	c.TotalUses--
	return nil
}

func cloneCoupon(c *coupon.Coupon) coupon.Coupon {
	out := *c
	out.UsedBy = slices.Clone(c.UsedBy)
	return out
}

// Orders keeps placed orders.
type Orders struct {
	mu     sync.Mutex
	orders map[string]order.Order
}

// NewOrders returns an empty order store.
func NewOrders() *Orders {
	return &Orders{orders: map[string]order.Order{}}
}

func (s *Orders) Create(_ context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = *o
	return nil
}

// Get returns a placed order.
func (s *Orders) Get(id string) (order.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	return o, ok
}

// APIKeys stores vendor API keys by hash.
type APIKeys struct {
	mu   sync.RWMutex
	keys map[string]auth.APIKeyInfo
}

// NewAPIKeys returns an empty key store.
func NewAPIKeys() *APIKeys {
	return &APIKeys{keys: map[string]auth.APIKeyInfo{}}
}

func (s *APIKeys) FindByHash(_ context.Context, hash string) (*auth.APIKeyInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	k, ok := s.keys[hash]
	if !ok {
		return nil, auth.ErrKeyNotFound
	}
	k.Scopes = slices.Clone(k.Scopes)
	return &k, nil
}

func (s *APIKeys) Create(_ context.Context, k *auth.APIKeyInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[k.KeyHash] = *k
	return nil
}
