package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

// newValidator returns a validator reporting fields by their JSON name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// decode reads a JSON body into dst and validates it. Unknown fields are
// rejected.
func (h *Handler) decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &ValidationError{Reason: "request body is required"}
		}
		return &ValidationError{Reason: "malformed JSON body: " + err.Error()}
	}
	return h.validate(dst)
}

func (h *Handler) validate(v any) error {
	err := h.validator.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(err, "validate")
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fieldPath(fe.Namespace()),
			Message: describe(fe),
		})
	}
	return out
}

// fieldPath drops the struct name validator prefixes to namespaces.
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "required_with":
		return "is required with " + fe.Param()
	case "gtfield":
		return "must be after " + fe.Param()
	}
	return "failed " + fe.Tag() + " validation"
}

// cartScope is the optional shared-cart selector accepted by cart, coupon
// and order requests.
type cartScope struct {
	HotelID     string `json:"hotelId"`
	TableNumber string `json:"tableNumber"`
}

// orQuery fills empty selector fields from the query string.
func (s cartScope) orQuery(r *http.Request) cartScope {
	q := r.URL.Query()
	if s.HotelID == "" {
		s.HotelID = q.Get("hotelId")
	}
	if s.TableNumber == "" {
		s.TableNumber = q.Get("tableNumber")
	}
	return s
}

type addonRequest struct {
	Key      string `json:"key" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

type addItemRequest struct {
	MenuItemID          string         `json:"menuItemId" validate:"required"`
	HotelID             string         `json:"hotelId" validate:"required"`
	Quantity            int            `json:"quantity" validate:"required,min=1"`
	Size                string         `json:"size"`
	Addons              []addonRequest `json:"addons" validate:"dive"`
	SpecialInstructions string         `json:"specialInstructions" validate:"max=500"`
	TableNumber         string         `json:"tableNumber"`
}

type updateItemRequest struct {
	ItemID              string  `json:"itemId" validate:"required"`
	Quantity            *int    `json:"quantity" validate:"omitempty,min=1"`
	SpecialInstructions *string `json:"specialInstructions" validate:"omitempty,max=500"`
	HotelID             string  `json:"hotelId"`
	TableNumber         string  `json:"tableNumber"`
}

type applyCouponRequest struct {
	CouponCode  string `json:"couponCode" validate:"required"`
	HotelID     string `json:"hotelId"`
	TableNumber string `json:"tableNumber"`
}

type createCouponRequest struct {
	CouponCode         string  `json:"couponCode" validate:"required,max=64"`
	Description        string  `json:"description" validate:"max=500"`
	DiscountPercentage float64 `json:"discountPercentage" validate:"gt=0,lte=100"`
	MaxDiscountAmount  float64 `json:"maxDiscountAmount" validate:"gt=0"`
	MinOrderAmount     float64 `json:"minOrderAmount" validate:"gte=0"`
	ValidFrom          string  `json:"validFrom" validate:"required"`
	ValidUntil         string  `json:"validUntil" validate:"required"`
	UsageLimit         int     `json:"usageLimit" validate:"min=1"`
	UsagePerUser       int     `json:"usagePerUser" validate:"min=1"`
	RestaurantID       string  `json:"restaurantId" validate:"required"`
}
