package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/coupon"
)

func (h *Handler) applyCoupon(w http.ResponseWriter, r *http.Request) {
	var req applyCouponRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	id := identity(r, cartScope{HotelID: req.HotelID, TableNumber: req.TableNumber})
	c, discount, err := h.coupons.Apply(r.Context(), id, req.CouponCode)
	h.metrics.couponApply(r.Context(), err)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "Coupon applied", appliedDTO{discount: discount, cart: c})
}

func (h *Handler) removeCoupon(w http.ResponseWriter, r *http.Request) {
	// The body is optional; an empty one addresses the personal cart.
	var scope cartScope
	if r.ContentLength != 0 {
		if err := h.decode(r, &scope); err != nil {
			writeError(w, r, err)
			return
		}
	}

	c, err := h.coupons.Remove(r.Context(), identity(r, scope))
	if err != nil {
		writeError(w, r, err)
		return
	}
	var data encoder
	if c != nil {
		data = cartDTO{cart: c}
	}
	writeJSON(w, http.StatusOK, "Coupon removed", data)
}

func (h *Handler) createCoupon(w http.ResponseWriter, r *http.Request) {
	vendor, _ := vendorFrom(r.Context())

	var req createCouponRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	from, err := time.Parse(time.RFC3339, req.ValidFrom)
	if err != nil {
		writeError(w, r, &ValidationError{Fields: []FieldError{{Field: "validFrom", Message: "must be an RFC 3339 timestamp"}}})
		return
	}
	until, err := time.Parse(time.RFC3339, req.ValidUntil)
	if err != nil {
		writeError(w, r, &ValidationError{Fields: []FieldError{{Field: "validUntil", Message: "must be an RFC 3339 timestamp"}}})
		return
	}

	c, err := h.coupons.Create(r.Context(), coupon.CreateRequest{
		VendorID:           vendor.VendorID,
		RestaurantID:       req.RestaurantID,
		Code:               req.CouponCode,
		Description:        req.Description,
		DiscountPercentage: decimal.NewFromFloat(req.DiscountPercentage),
		MaxDiscountAmount:  decimal.NewFromFloat(req.MaxDiscountAmount),
		MinOrderAmount:     decimal.NewFromFloat(req.MinOrderAmount),
		ValidFrom:          from,
		ValidUntil:         until,
		UsageLimit:         req.UsageLimit,
		UsagePerUser:       req.UsagePerUser,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, "Coupon created", couponDTO{c})
}

func (h *Handler) listCoupons(w http.ResponseWriter, r *http.Request) {
	vendor, _ := vendorFrom(r.Context())

	restaurantID := r.URL.Query().Get("restaurantId")
	if restaurantID == "" {
		writeError(w, r, &ValidationError{Fields: []FieldError{{Field: "restaurantId", Message: "is required"}}})
		return
	}

	coupons, err := h.coupons.ListByRestaurant(r.Context(), vendor.VendorID, restaurantID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "Coupons fetched", couponsDTO(coupons))
}
