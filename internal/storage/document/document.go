// Package document maps domain aggregates to the serialised form shared by
// the postgres JSONB columns and the mongo collections. Money is kept as a
// decimal string so no backend rounds it through float64.
package document

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/cart"
	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/menu"
	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/order"
)

// Cart is the stored form of cart.Cart.
type Cart struct {
	ID                string    `json:"id" bson:"_id"`
	Key               string    `json:"key" bson:"key"`
	UserID            string    `json:"userId,omitempty" bson:"userId,omitempty"`
	HotelID           string    `json:"hotelId,omitempty" bson:"hotelId,omitempty"`
	TableNumber       string    `json:"tableNumber,omitempty" bson:"tableNumber,omitempty"`
	Items             []Line    `json:"items" bson:"items"`
	TotalAmount       string    `json:"totalAmount" bson:"totalAmount"`
	Users             []string  `json:"users,omitempty" bson:"users,omitempty"`
	AppliedCouponCode string    `json:"appliedCouponCode,omitempty" bson:"appliedCouponCode,omitempty"`
	DiscountAmount    string    `json:"discountAmount" bson:"discountAmount"`
	Version           int64     `json:"version" bson:"version"`
	CreatedAt         time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Line is the stored form of cart.Line.
type Line struct {
	ID                  string  `json:"id" bson:"id"`
	MenuItemID          string  `json:"menuItemId" bson:"menuItemId"`
	HotelID             string  `json:"hotelId" bson:"hotelId"`
	Quantity            int     `json:"quantity" bson:"quantity"`
	Size                string  `json:"size,omitempty" bson:"size,omitempty"`
	Addons              []Addon `json:"addons,omitempty" bson:"addons,omitempty"`
	Price               string  `json:"price" bson:"price"`
	SpecialInstructions string  `json:"specialInstructions,omitempty" bson:"specialInstructions,omitempty"`
	OrderedBy           string  `json:"orderedBy,omitempty" bson:"orderedBy,omitempty"`
}

// Addon is a stored addon selection.
type Addon struct {
	Key      string `json:"key" bson:"key"`
	Quantity int    `json:"quantity" bson:"quantity"`
}

// FromCart converts a cart aggregate.
func FromCart(c *cart.Cart) Cart {
	return Cart{
		ID:                c.ID,
		Key:               c.Key,
		UserID:            c.UserID,
		HotelID:           c.HotelID,
		TableNumber:       c.TableNumber,
		Items:             FromLines(c.Items),
		TotalAmount:       c.TotalAmount.String(),
		Users:             c.Users,
		AppliedCouponCode: c.AppliedCouponCode,
		DiscountAmount:    c.DiscountAmount.String(),
		Version:           c.Version,
		CreatedAt:         c.CreatedAt.UTC(),
		UpdatedAt:         c.UpdatedAt.UTC(),
	}
}

// ToCart converts back to the aggregate.
func (d Cart) ToCart() (*cart.Cart, error) {
	lines, err := ToLines(d.Items)
	if err != nil {
		return nil, err
	}
	total, err := ParseMoney(d.TotalAmount)
	if err != nil {
		return nil, errors.Wrap(err, "totalAmount")
	}
	discount, err := ParseMoney(d.DiscountAmount)
	if err != nil {
		return nil, errors.Wrap(err, "discountAmount")
	}
	return &cart.Cart{
		ID:                d.ID,
		Key:               d.Key,
		UserID:            d.UserID,
		HotelID:           d.HotelID,
		TableNumber:       d.TableNumber,
		Items:             lines,
		TotalAmount:       total,
		Users:             d.Users,
		AppliedCouponCode: d.AppliedCouponCode,
		DiscountAmount:    discount,
		Version:           d.Version,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}, nil
}

// FromLines converts cart lines.
func FromLines(in []cart.Line) []Line {
	out := make([]Line, 0, len(in))
	for _, l := range in {
		addons := make([]Addon, 0, len(l.Addons))
		for _, a := range l.Addons {
			addons = append(addons, Addon{Key: a.Key, Quantity: a.Quantity})
		}
		out = append(out, Line{
			ID:                  l.ID,
			MenuItemID:          l.MenuItemID,
			HotelID:             l.HotelID,
			Quantity:            l.Quantity,
			Size:                l.Size,
			Addons:              addons,
			Price:               l.Price.String(),
			SpecialInstructions: l.SpecialInstructions,
			OrderedBy:           l.OrderedBy,
		})
	}
	return out
}

// ToLines converts stored lines.
func ToLines(in []Line) ([]cart.Line, error) {
	out := make([]cart.Line, 0, len(in))
	for _, l := range in {
		price, err := ParseMoney(l.Price)
		if err != nil {
			return nil, errors.Wrapf(err, "line %s price", l.ID)
		}
		var addons []menu.AddonSelection
		for _, a := range l.Addons {
			addons = append(addons, menu.AddonSelection{Key: a.Key, Quantity: a.Quantity})
		}
		out = append(out, cart.Line{
			ID:                  l.ID,
			MenuItemID:          l.MenuItemID,
			HotelID:             l.HotelID,
			Quantity:            l.Quantity,
			Size:                l.Size,
			Addons:              addons,
			Price:               price,
			SpecialInstructions: l.SpecialInstructions,
			OrderedBy:           l.OrderedBy,
		})
	}
	return out, nil
}

// Split is a stored per-diner share.
type Split struct {
	UserID string `json:"userId" bson:"userId"`
	Amount string `json:"amount" bson:"amount"`
}

// FromSplits converts order splits.
func FromSplits(in []order.Split) []Split {
	out := make([]Split, 0, len(in))
	for _, s := range in {
		out = append(out, Split{UserID: s.UserID, Amount: s.Amount.String()})
	}
	return out
}

// Size is a stored size variant.
type Size struct {
	Label string `json:"label" bson:"label"`
	Price string `json:"price" bson:"price"`
}

// MenuAddon is a stored addon definition.
type MenuAddon struct {
	Key   string `json:"key" bson:"key"`
	Label string `json:"label" bson:"label"`
	Price string `json:"price" bson:"price"`
}

// FromSizes converts item sizes.
func FromSizes(in []menu.Size) []Size {
	out := make([]Size, 0, len(in))
	for _, s := range in {
		out = append(out, Size{Label: s.Label, Price: s.Price.String()})
	}
	return out
}

// ToSizes converts stored sizes.
func ToSizes(in []Size) ([]menu.Size, error) {
	out := make([]menu.Size, 0, len(in))
	for _, s := range in {
		p, err := ParseMoney(s.Price)
		if err != nil {
			return nil, errors.Wrapf(err, "size %s", s.Label)
		}
		out = append(out, menu.Size{Label: s.Label, Price: p})
	}
	return out, nil
}

// FromAddons converts item addon definitions.
func FromAddons(in []menu.Addon) []MenuAddon {
	out := make([]MenuAddon, 0, len(in))
	for _, a := range in {
		out = append(out, MenuAddon{Key: a.Key, Label: a.Label, Price: a.Price.String()})
	}
	return out
}

// ToAddons converts stored addon definitions.
func ToAddons(in []MenuAddon) ([]menu.Addon, error) {
	out := make([]menu.Addon, 0, len(in))
	for _, a := range in {
		p, err := ParseMoney(a.Price)
		if err != nil {
			return nil, errors.Wrapf(err, "addon %s", a.Key)
		}
		out = append(out, menu.Addon{Key: a.Key, Label: a.Label, Price: p})
	}
	return out, nil
}

// ParseMoney reads a stored decimal string; "" is zero.
func ParseMoney(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
