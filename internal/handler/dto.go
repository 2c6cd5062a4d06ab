package handler

import (
	"github.com/go-faster/jx"

	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/cart"
	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/coupon"
	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/menu"
	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/order"
)

// cartDTO renders a cart. items, when set, adds live menu metadata to each
// line; stored line prices are never replaced.
type cartDTO struct {
	cart  *cart.Cart
	items map[string]menu.Item
}

func (d cartDTO) Encode(e *jx.Encoder) {
	c := d.cart
	e.ObjStart()
	e.FieldStart("id")
	e.Str(c.ID)
	e.FieldStart("type")
	if c.Shared() {
		e.Str("shared")
		e.FieldStart("hotelId")
		e.Str(c.HotelID)
		e.FieldStart("tableNumber")
		e.Str(c.TableNumber)
		e.FieldStart("users")
		stringArray(e, c.Users)
	} else {
		e.Str("personal")
		e.FieldStart("userId")
		e.Str(c.UserID)
	}

	e.FieldStart("items")
	e.ArrStart()
	for i := range c.Items {
		l := &c.Items[i]
		var it *menu.Item
		if m, ok := d.items[l.MenuItemID]; ok {
			it = &m
		}
		lineDTO{line: l, item: it}.Encode(e)
	}
	e.ArrEnd()

	e.FieldStart("totalAmount")
	money(e, c.TotalAmount)
	e.FieldStart("appliedCouponCode")
	if c.AppliedCouponCode == "" {
		e.Null()
	} else {
		e.Str(c.AppliedCouponCode)
	}
	e.FieldStart("discountAmount")
	money(e, c.DiscountAmount)
	e.FieldStart("finalAmount")
	money(e, c.FinalAmount())
	e.FieldStart("updatedAt")
	timestamp(e, c.UpdatedAt)
	e.ObjEnd()
}

type lineDTO struct {
	line *cart.Line
	item *menu.Item
}

func (d lineDTO) Encode(e *jx.Encoder) {
	l := d.line
	e.ObjStart()
	e.FieldStart("id")
	e.Str(l.ID)
	e.FieldStart("menuItemId")
	e.Str(l.MenuItemID)
	e.FieldStart("hotelId")
	e.Str(l.HotelID)
	e.FieldStart("quantity")
	e.Int(l.Quantity)
	e.FieldStart("size")
	e.Str(l.Size)
	e.FieldStart("addons")
	e.ArrStart()
	for _, a := range l.Addons {
		e.ObjStart()
		e.FieldStart("key")
		e.Str(a.Key)
		e.FieldStart("quantity")
		e.Int(a.Quantity)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("price")
	money(e, l.Price)
	e.FieldStart("specialInstructions")
	e.Str(l.SpecialInstructions)
	e.FieldStart("orderedBy")
	e.Str(l.OrderedBy)
	if d.item != nil {
		e.FieldStart("menuItem")
		menuItemDTO{d.item}.Encode(e)
	}
	e.ObjEnd()
}

type menuItemDTO struct {
	item *menu.Item
}

func (d menuItemDTO) Encode(e *jx.Encoder) {
	it := d.item
	e.ObjStart()
	e.FieldStart("id")
	e.Str(it.ID)
	e.FieldStart("hotelId")
	e.Str(it.HotelID)
	e.FieldStart("title")
	e.Str(it.Title)
	e.FieldStart("image")
	e.Str(it.Image)
	e.FieldStart("price")
	money(e, it.Price)
	e.FieldStart("sizes")
	e.ArrStart()
	for _, s := range it.Sizes {
		e.ObjStart()
		e.FieldStart("label")
		e.Str(s.Label)
		e.FieldStart("price")
		money(e, s.Price)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("addons")
	e.ArrStart()
	for _, a := range it.Addons {
		e.ObjStart()
		e.FieldStart("key")
		e.Str(a.Key)
		e.FieldStart("label")
		e.Str(a.Label)
		e.FieldStart("price")
		money(e, a.Price)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("available")
	e.Bool(it.Available)
	e.ObjEnd()
}

type menuDTO struct {
	hotel *menu.Hotel
	items []menu.Item
}

func (d menuDTO) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("hotel")
	e.ObjStart()
	e.FieldStart("id")
	e.Str(d.hotel.ID)
	e.FieldStart("name")
	e.Str(d.hotel.Name)
	e.ObjEnd()
	e.FieldStart("items")
	e.ArrStart()
	for i := range d.items {
		menuItemDTO{&d.items[i]}.Encode(e)
	}
	e.ArrEnd()
	e.ObjEnd()
}

// appliedDTO is the apply-coupon payload: the discount and the updated cart.
type appliedDTO struct {
	discount *coupon.Discount
	cart     *cart.Cart
}

func (d appliedDTO) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("couponCode")
	e.Str(d.discount.Code)
	e.FieldStart("discountAmount")
	money(e, d.discount.Amount)
	e.FieldStart("cart")
	cartDTO{cart: d.cart}.Encode(e)
	e.ObjEnd()
}

type couponDTO struct {
	coupon *coupon.Coupon
}

func (d couponDTO) Encode(e *jx.Encoder) {
	c := d.coupon
	e.ObjStart()
	e.FieldStart("id")
	e.Str(c.ID)
	e.FieldStart("couponCode")
	e.Str(c.Code)
	e.FieldStart("description")
	e.Str(c.Description)
	e.FieldStart("discountPercentage")
	e.Num(jx.Num(c.DiscountPercentage.String()))
	e.FieldStart("maxDiscountAmount")
	money(e, c.MaxDiscountAmount)
	e.FieldStart("minOrderAmount")
	money(e, c.MinOrderAmount)
	e.FieldStart("validFrom")
	timestamp(e, c.ValidFrom)
	e.FieldStart("validUntil")
	timestamp(e, c.ValidUntil)
	e.FieldStart("usageLimit")
	e.Int(c.UsageLimit)
	e.FieldStart("usagePerUser")
	e.Int(c.UsagePerUser)
	e.FieldStart("totalUses")
	e.Int(c.TotalUses)
	e.FieldStart("isActive")
	e.Bool(c.IsActive)
	e.FieldStart("restaurantId")
	e.Str(c.RestaurantID)
	e.FieldStart("createdAt")
	timestamp(e, c.CreatedAt)
	e.ObjEnd()
}

type couponsDTO []coupon.Coupon

func (d couponsDTO) Encode(e *jx.Encoder) {
	e.ArrStart()
	for i := range d {
		couponDTO{&d[i]}.Encode(e)
	}
	e.ArrEnd()
}

type orderDTO struct {
	order *order.Order
}

func (d orderDTO) Encode(e *jx.Encoder) {
	o := d.order
	e.ObjStart()
	e.FieldStart("id")
	e.Str(o.ID)
	e.FieldStart("hotelId")
	e.Str(o.HotelID)
	e.FieldStart("tableNumber")
	e.Str(o.TableNumber)
	e.FieldStart("items")
	e.ArrStart()
	for i := range o.Lines {
		lineDTO{line: &o.Lines[i]}.Encode(e)
	}
	e.ArrEnd()
	e.FieldStart("subtotal")
	money(e, o.Subtotal)
	e.FieldStart("discount")
	money(e, o.Discount)
	e.FieldStart("total")
	money(e, o.Total)
	e.FieldStart("couponCode")
	if o.CouponCode == "" {
		e.Null()
	} else {
		e.Str(o.CouponCode)
	}
	e.FieldStart("splits")
	e.ArrStart()
	for _, s := range o.Splits {
		e.ObjStart()
		e.FieldStart("userId")
		e.Str(s.UserID)
		e.FieldStart("amount")
		money(e, s.Amount)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("placedBy")
	e.Str(o.PlacedBy)
	e.FieldStart("createdAt")
	timestamp(e, o.CreatedAt)
	e.ObjEnd()
}
