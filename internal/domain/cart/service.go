package cart

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/menu"
)

const defaultMaxWriteAttempts = 5

// AddItemRequest holds the input for adding a menu item to a cart.
type AddItemRequest struct {
	MenuItemID          string
	HotelID             string
	Quantity            int
	Size                string
	Addons              []menu.AddonSelection
	SpecialInstructions string
}

// UpdateItemRequest holds the input for changing a cart line. Nil fields are
// left unchanged.
type UpdateItemRequest struct {
	ItemID              string
	Quantity            *int
	SpecialInstructions *string
}

// View is a cart joined with live menu metadata. Line prices are the stored
// ones; Items only supplies titles, images, sizes and addons.
type View struct {
	Cart  *Cart
	Items map[string]menu.Item
}

// Option configures a Service.
type Option func(*Service)

// WithMaxWriteAttempts bounds how many times a mutation is re-applied after
// losing an optimistic write race.
func WithMaxWriteAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithTracerProvider sets the provider used for operation spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) {
		s.tracer = tp.Tracer("restro/cart")
	}
}

// Service encapsulates cart business logic on top of whole-aggregate storage.
type Service struct {
	carts   Repository
	catalog menu.Repository

	maxAttempts int
	tracer      trace.Tracer
	now         func() time.Time
	newID       func() string
}

// NewService creates a cart Service.
func NewService(carts Repository, catalog menu.Repository, opts ...Option) *Service {
	s := &Service{
		carts:       carts,
		catalog:     catalog,
		maxAttempts: defaultMaxWriteAttempts,
		tracer:      noop.NewTracerProvider().Tracer("restro/cart"),
		now:         time.Now,
		newID:       func() string { return uuid.New().String() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Get returns the addressed cart joined with menu metadata. A missing cart
// is returned as an empty, unsaved cart. Reading a shared cart enrolls the
// requester as a participant.
func (s *Service) Get(ctx context.Context, id Identity) (*View, error) {
	ctx, span := s.tracer.Start(ctx, "cart.Get")
	defer span.End()

	c, err := s.carts.Find(ctx, id.Key())
	switch {
	case errors.Is(err, ErrCartNotFound):
		return &View{Cart: s.blank(id), Items: map[string]menu.Item{}}, nil
	case err != nil:
		return nil, errors.Wrap(err, "find cart")
	}

	if id.Shared() && c.Clone().Join(id.UserID) {
		c, err = s.Mutate(ctx, id, false, func(*Cart) error { return nil })
		if err != nil {
			return nil, err
		}
	}

	items, err := s.lookupItems(ctx, c)
	if err != nil {
		return nil, err
	}
	return &View{Cart: c, Items: items}, nil
}

// AddItem prices the requested configuration from the menu and merges it
// into the addressed cart, creating the cart on first use.
func (s *Service) AddItem(ctx context.Context, id Identity, req AddItemRequest) (*Cart, error) {
	ctx, span := s.tracer.Start(ctx, "cart.AddItem")
	defer span.End()

	if req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if _, err := s.catalog.GetHotel(ctx, req.HotelID); err != nil {
		return nil, errors.Wrap(err, "get hotel")
	}
	item, err := s.catalog.GetItem(ctx, req.MenuItemID)
	if err != nil {
		return nil, errors.Wrap(err, "get menu item")
	}
	if item.HotelID != req.HotelID {
		return nil, errors.Wrapf(menu.ErrItemNotFound, "item %s in hotel %s", req.MenuItemID, req.HotelID)
	}
	if !item.Available {
		return nil, menu.ErrItemUnavailable
	}
	price, err := item.LinePrice(req.Size, req.Addons, req.Quantity)
	if err != nil {
		return nil, err
	}

	line := Line{
		MenuItemID:          item.ID,
		HotelID:             item.HotelID,
		Quantity:            req.Quantity,
		Size:                req.Size,
		Addons:              req.Addons,
		Price:               price,
		SpecialInstructions: req.SpecialInstructions,
		OrderedBy:           id.UserID,
	}
	return s.Mutate(ctx, id, true, func(c *Cart) error {
		l := line
		l.ID = s.newID()
		_, err := c.AddLine(l)
		return err
	})
}

// UpdateItem changes the quantity and/or instructions of one line.
func (s *Service) UpdateItem(ctx context.Context, id Identity, req UpdateItemRequest) (*Cart, error) {
	ctx, span := s.tracer.Start(ctx, "cart.UpdateItem")
	defer span.End()

	if req.Quantity != nil && *req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	return s.Mutate(ctx, id, false, func(c *Cart) error {
		_, err := c.UpdateLine(req.ItemID, req.Quantity, req.SpecialInstructions)
		return err
	})
}

// RemoveItem deletes one line.
func (s *Service) RemoveItem(ctx context.Context, id Identity, itemID string) (*Cart, error) {
	ctx, span := s.tracer.Start(ctx, "cart.RemoveItem")
	defer span.End()

	return s.Mutate(ctx, id, false, func(c *Cart) error {
		return c.RemoveLine(itemID)
	})
}

// Clear empties the addressed cart. It is a no-op returning (nil, nil) when
// the cart does not exist.
func (s *Service) Clear(ctx context.Context, id Identity) (*Cart, error) {
	ctx, span := s.tracer.Start(ctx, "cart.Clear")
	defer span.End()

	c, err := s.Mutate(ctx, id, false, func(c *Cart) error {
		c.Clear()
		return nil
	})
	if errors.Is(err, ErrCartNotFound) {
		return nil, nil
	}
	return c, err
}

// Mutate reads the addressed cart, applies fn to a copy and stores the copy
// with a version check. When another writer wins, the whole read-apply-save
// cycle is retried with backoff. Errors returned by fn abort without retry.
//
// When create is true a missing cart is started empty; otherwise Mutate
// returns ErrCartNotFound.
func (s *Service) Mutate(ctx context.Context, id Identity, create bool, fn func(*Cart) error) (*Cart, error) {
	var out *Cart
	op := func() error {
		current, err := s.carts.Find(ctx, id.Key())
		switch {
		case errors.Is(err, ErrCartNotFound):
			if !create {
				return backoff.Permanent(ErrCartNotFound)
			}
			current = s.blank(id)
		case err != nil:
			return backoff.Permanent(errors.Wrap(err, "find cart"))
		}

		next := current.Clone()
		next.Join(id.UserID)
		if err := fn(next); err != nil {
			return backoff.Permanent(err)
		}
		next.recompute()
		next.UpdatedAt = s.now()

		if err := s.carts.Save(ctx, next); err != nil {
			if errors.Is(err, ErrVersionConflict) {
				return err
			}
			return backoff.Permanent(errors.Wrap(err, "save cart"))
		}
		out = next
		return nil
	}

	if err := backoff.Retry(op, s.retryPolicy(ctx)); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) retryPolicy(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 5 * time.Millisecond
	b.MaxInterval = 100 * time.Millisecond
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.maxAttempts-1)), ctx)
}

// blank returns an unsaved empty cart for id.
func (s *Service) blank(id Identity) *Cart {
	now := s.now()
	c := &Cart{
		ID:             s.newID(),
		Key:            id.Key(),
		TotalAmount:    decimal.Zero,
		DiscountAmount: decimal.Zero,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if id.Shared() {
		c.HotelID = id.HotelID
		c.TableNumber = id.TableNumber
	} else {
		c.UserID = id.UserID
	}
	return c
}

func (s *Service) lookupItems(ctx context.Context, c *Cart) (map[string]menu.Item, error) {
	out := make(map[string]menu.Item, len(c.Items))
	if len(c.Items) == 0 {
		return out, nil
	}
	ids := make([]string, 0, len(c.Items))
	for _, l := range c.Items {
		ids = append(ids, l.MenuItemID)
	}
	items, err := s.catalog.GetItems(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get menu items")
	}
	for _, it := range items {
		out[it.ID] = it
	}
	return out, nil
}
