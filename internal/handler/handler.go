// Package handler implements the REST API: diner cart, coupon and order
// endpoints, the public menu and vendor coupon management.
package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/auth"
	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/cart"
	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/coupon"
	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/menu"
	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/order"
	"github.com/shubham90-developer/Total-Health-sub003/pkg/health"
)

// Config holds the credentials used to authenticate callers.
type Config struct {
	// JWTSecret verifies HS256 diner bearer tokens.
	JWTSecret []byte
	// APIKeyPepper is the HMAC key vendor API keys are hashed with.
	APIKeyPepper []byte
}

// Deps are the services the handlers delegate to.
type Deps struct {
	Menu    menu.Repository
	Carts   *cart.Service
	Coupons *coupon.Service
	Orders  *order.Service
	APIKeys auth.Repository
	Health  *health.Health
	// Meter records domain counters. Nil disables them.
	Meter metric.MeterProvider
}

// Handler serves the HTTP API.
type Handler struct {
	menu    menu.Repository
	carts   *cart.Service
	coupons *coupon.Service
	orders  *order.Service
	apiKeys auth.Repository
	health  *health.Health

	jwtSecret []byte
	pepper    []byte
	validator *validator.Validate
	metrics   *metrics
}

// New creates a Handler.
func New(cfg Config, deps Deps) (*Handler, error) {
	mp := deps.Meter
	if mp == nil {
		mp = noop.NewMeterProvider()
	}
	m, err := newMetrics(mp)
	if err != nil {
		return nil, err
	}
	return &Handler{
		menu:      deps.Menu,
		carts:     deps.Carts,
		coupons:   deps.Coupons,
		orders:    deps.Orders,
		apiKeys:   deps.APIKeys,
		health:    deps.Health,
		jwtSecret: cfg.JWTSecret,
		pepper:    cfg.APIKeyPepper,
		validator: newValidator(),
		metrics:   m,
	}, nil
}

// Router returns the API routes. Route names label logs and spans.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errMethod)
	})

	if h.health != nil {
		r.HandleFunc("/livez", h.health.LiveEndpoint).Methods(http.MethodGet).Name("livez")
		r.HandleFunc("/readyz", h.health.ReadyEndpoint).Methods(http.MethodGet).Name("readyz")
	}

	r.HandleFunc("/hotel/{hotelId}/menu", h.getHotelMenu).Methods(http.MethodGet).Name("getHotelMenu")
	r.HandleFunc("/menu/{menuItemId}", h.getMenuItem).Methods(http.MethodGet).Name("getMenuItem")

	diner := r.NewRoute().Subrouter()
	diner.Use(h.requireDiner)
	diner.HandleFunc("/cart", h.addItem).Methods(http.MethodPost).Name("addCartItem")
	diner.HandleFunc("/cart", h.getCart).Methods(http.MethodGet).Name("getCart")
	diner.HandleFunc("/cart", h.clearCart).Methods(http.MethodDelete).Name("clearCart")
	diner.HandleFunc("/cart/item", h.updateItem).Methods(http.MethodPatch).Name("updateCartItem")
	diner.HandleFunc("/cart/item/{itemId}", h.removeItem).Methods(http.MethodDelete).Name("removeCartItem")
	diner.HandleFunc("/coupon/apply", h.applyCoupon).Methods(http.MethodPost).Name("applyCoupon")
	diner.HandleFunc("/coupon/remove", h.removeCoupon).Methods(http.MethodPost).Name("removeCoupon")
	diner.HandleFunc("/order", h.placeOrder).Methods(http.MethodPost).Name("placeOrder")

	r.Handle("/vendor/coupon", h.requireVendor(auth.ScopeCouponsWrite, h.createCoupon)).
		Methods(http.MethodPost).Name("createCoupon")
	r.Handle("/vendor/coupon", h.requireVendor(auth.ScopeCouponsRead, h.listCoupons)).
		Methods(http.MethodGet).Name("listCoupons")

	return r
}
