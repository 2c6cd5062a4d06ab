package cart

import (
	"slices"
	"sort"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/menu"
)

// Clone returns a deep copy so a transformation never touches the cart that
// was read from storage.
func (c *Cart) Clone() *Cart {
	out := *c
	out.Users = slices.Clone(c.Users)
	out.Items = make([]Line, len(c.Items))
	for i, l := range c.Items {
		l.Addons = slices.Clone(l.Addons)
		out.Items[i] = l
	}
	return &out
}

// Shared reports whether this is a table cart.
func (c *Cart) Shared() bool {
	return c.TableNumber != ""
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	return len(c.Items) == 0
}

// RestaurantID is the hotel of the cart's lines, or "" for an empty cart.
// Lines of a cart always share a hotel, see AddLine.
func (c *Cart) RestaurantID() string {
	if len(c.Items) == 0 {
		return ""
	}
	return c.Items[0].HotelID
}

// FinalAmount is the total minus the applied discount, floored at zero.
func (c *Cart) FinalAmount() decimal.Decimal {
	total := c.TotalAmount.Sub(c.DiscountAmount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// Line returns the line with the given ID.
func (c *Cart) Line(id string) (*Line, bool) {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return &c.Items[i], true
		}
	}
	return nil, false
}

// Join records userID as a participant of a shared cart. It reports whether
// the user was added.
func (c *Cart) Join(userID string) bool {
	if !c.Shared() || userID == "" || slices.Contains(c.Users, userID) {
		return false
	}
	c.Users = append(c.Users, userID)
	return true
}

// AddLine merges l into the cart and returns the resulting line.
//
// Personal carts merge with a line of the same menu item, size and addons.
// Addons are part of the key, unlike a plain (menu item, size) match, so a
// merged line's price stays its unit price times its quantity. Shared carts
// additionally require the same orderer and special instructions, so one
// diner's order is never folded into another's.
func (c *Cart) AddLine(l Line) (Line, error) {
	if l.Quantity < 1 {
		return Line{}, ErrInvalidQuantity
	}
	if rid := c.RestaurantID(); rid != "" && rid != l.HotelID {
		return Line{}, ErrRestaurantMismatch
	}

	for i := range c.Items {
		existing := &c.Items[i]
		if !c.mergeable(existing, &l) {
			continue
		}
		existing.Quantity += l.Quantity
		existing.Price = existing.Price.Add(l.Price)
		c.recompute()
		return *existing, nil
	}

	c.Items = append(c.Items, l)
	c.recompute()
	return l, nil
}

func (c *Cart) mergeable(existing, l *Line) bool {
	if existing.MenuItemID != l.MenuItemID || existing.Size != l.Size {
		return false
	}
	if !sameAddons(existing.Addons, l.Addons) {
		return false
	}
	if c.Shared() {
		return existing.OrderedBy == l.OrderedBy &&
			existing.SpecialInstructions == l.SpecialInstructions
	}
	return true
}

// UpdateLine rescales the line price to a new quantity using the line's
// current per-unit price and/or replaces its special instructions. Nil
// arguments are left untouched.
func (c *Cart) UpdateLine(id string, quantity *int, instructions *string) (Line, error) {
	l, ok := c.Line(id)
	if !ok {
		return Line{}, errors.Wrapf(ErrItemNotFound, "item %s", id)
	}
	if quantity != nil {
		if *quantity < 1 {
			return Line{}, ErrInvalidQuantity
		}
		unit := l.Price.Div(decimal.NewFromInt(int64(l.Quantity)))
		l.Quantity = *quantity
		l.Price = unit.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2)
	}
	if instructions != nil {
		l.SpecialInstructions = *instructions
	}
	c.recompute()
	return *l, nil
}

// RemoveLine deletes the line with the given ID.
func (c *Cart) RemoveLine(id string) error {
	idx := slices.IndexFunc(c.Items, func(l Line) bool { return l.ID == id })
	if idx < 0 {
		return errors.Wrapf(ErrItemNotFound, "item %s", id)
	}
	c.Items = slices.Delete(c.Items, idx, idx+1)
	c.recompute()
	return nil
}

// Clear drops every line and the applied coupon.
func (c *Cart) Clear() {
	c.Items = nil
	c.RemoveCoupon()
	c.recompute()
}

// ApplyCoupon records an evaluated coupon on the cart.
func (c *Cart) ApplyCoupon(code string, discount decimal.Decimal) {
	c.AppliedCouponCode = code
	c.DiscountAmount = discount
}

// RemoveCoupon clears any applied coupon.
func (c *Cart) RemoveCoupon() {
	c.AppliedCouponCode = ""
	c.DiscountAmount = decimal.Zero
}

// Restore puts lines claimed from this cart back in front of whatever was
// added since. Lines already present are skipped. The restaurant guard of
// AddLine is bypassed: the lines belonged to the cart before it was claimed.
func (c *Cart) Restore(lines []Line, users []string) {
	restored := make([]Line, 0, len(lines)+len(c.Items))
	for _, l := range lines {
		if _, ok := c.Line(l.ID); !ok {
			restored = append(restored, l)
		}
	}
	c.Items = append(restored, c.Items...)
	for _, u := range users {
		c.Join(u)
	}
	c.recompute()
}

// recompute derives TotalAmount from the lines; the stored total is never
// adjusted incrementally. The applied discount is capped at the new total
// and dropped with the last line.
func (c *Cart) recompute() {
	total := decimal.Zero
	for _, l := range c.Items {
		total = total.Add(l.Price)
	}
	c.TotalAmount = total

	if len(c.Items) == 0 {
		c.RemoveCoupon()
		return
	}
	c.DiscountAmount = decimal.Min(c.DiscountAmount, total)
}

func sameAddons(a, b []menu.AddonSelection) bool {
	if len(a) != len(b) {
		return false
	}
	na, nb := normalizeAddons(a), normalizeAddons(b)
	for i := range na {
		if na[i] != nb[i] {
			return false
		}
	}
	return true
}

func normalizeAddons(in []menu.AddonSelection) []menu.AddonSelection {
	out := make([]menu.AddonSelection, len(in))
	for i, a := range in {
		if a.Quantity < 1 {
			a.Quantity = 1
		}
		out[i] = a
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key != out[j].Key {
			return out[i].Key < out[j].Key
		}
		return out[i].Quantity < out[j].Quantity
	})
	return out
}
