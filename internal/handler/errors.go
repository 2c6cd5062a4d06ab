package handler

import (
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/cart"
	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/coupon"
	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/menu"
)

var (
	errUnauthorized = errors.New("unauthorized")
	errForbidden    = errors.New("forbidden")
	errNotFound     = errors.New("route not found")
	errMethod       = errors.New("method not allowed")
)

// FieldError describes one rejected request field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError is returned when a request body or query fails decoding
// or validation.
type ValidationError struct {
	Fields []FieldError
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

// Encode writes the rejected fields.
func (e *ValidationError) Encode(enc *jx.Encoder) {
	enc.ObjStart()
	enc.FieldStart("errors")
	enc.ArrStart()
	for _, f := range e.Fields {
		enc.ObjStart()
		enc.FieldStart("field")
		enc.Str(f.Field)
		enc.FieldStart("message")
		enc.Str(f.Message)
		enc.ObjEnd()
	}
	enc.ArrEnd()
	enc.ObjEnd()
}

// errorStatus maps domain errors to a status. detailed marks sentinels whose
// wrapped message carries useful context for the client.
var errorStatus = []struct {
	err      error
	status   int
	detailed bool
}{
	{errUnauthorized, http.StatusUnauthorized, false},
	{errForbidden, http.StatusForbidden, false},
	{errNotFound, http.StatusNotFound, false},
	{errMethod, http.StatusMethodNotAllowed, false},

	{menu.ErrHotelNotFound, http.StatusNotFound, false},
	{menu.ErrItemNotFound, http.StatusNotFound, false},
	{cart.ErrCartNotFound, http.StatusNotFound, false},
	{cart.ErrItemNotFound, http.StatusNotFound, false},
	{coupon.ErrCouponNotFound, http.StatusNotFound, false},

	{menu.ErrItemUnavailable, http.StatusUnprocessableEntity, false},
	{menu.ErrSizeUnavailable, http.StatusUnprocessableEntity, true},
	{menu.ErrAddonUnavailable, http.StatusUnprocessableEntity, true},
	{cart.ErrInvalidQuantity, http.StatusUnprocessableEntity, false},
	{cart.ErrRestaurantMismatch, http.StatusUnprocessableEntity, false},
	{cart.ErrEmptyCart, http.StatusUnprocessableEntity, false},
	{coupon.ErrCouponNotApplicable, http.StatusUnprocessableEntity, false},
	{coupon.ErrCouponExpired, http.StatusUnprocessableEntity, false},
	{coupon.ErrUsageLimitReached, http.StatusUnprocessableEntity, false},
	{coupon.ErrPerUserLimitReached, http.StatusUnprocessableEntity, false},
	{coupon.ErrMinimumOrderNotMet, http.StatusUnprocessableEntity, false},

	{coupon.ErrDuplicateCode, http.StatusConflict, false},
	{cart.ErrVersionConflict, http.StatusConflict, false},

	{coupon.ErrRestaurantNotOwned, http.StatusForbidden, false},

	{coupon.ErrInvalidCoupon, http.StatusBadRequest, true},
	{coupon.ErrInvalidWindow, http.StatusBadRequest, false},
}

// classify returns the status and client message for err. Unknown errors
// are reported as 500 with a generic message.
func classify(err error) (int, string) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, verr.Error()
	}
	for _, m := range errorStatus {
		if errors.Is(err, m.err) {
			if m.detailed {
				return m.status, err.Error()
			}
			return m.status, m.err.Error()
		}
	}
	return http.StatusInternalServerError, "internal server error"
}

// writeError renders err as an envelope. Server errors are logged with the
// request logger since their message is hidden from the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := classify(err)
	if status >= http.StatusInternalServerError {
		zctx.From(r.Context()).Error("Request failed", zap.Error(err))
	}

	var data encoder
	var verr *ValidationError
	if errors.As(err, &verr) && len(verr.Fields) > 0 {
		data = verr
	}
	writeJSON(w, status, message, data)
}
