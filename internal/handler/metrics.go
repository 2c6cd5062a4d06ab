package handler

import (
	"context"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type metrics struct {
	cartMutations metric.Int64Counter
	couponApplies metric.Int64Counter
	ordersPlaced  metric.Int64Counter
}

func newMetrics(mp metric.MeterProvider) (*metrics, error) {
	meter := mp.Meter("restro/handler")

	var (
		m   metrics
		err error
	)
	if m.cartMutations, err = meter.Int64Counter("restro.cart.mutations",
		metric.WithDescription("Cart mutations by operation and outcome"),
	); err != nil {
		return nil, errors.Wrap(err, "cart mutations counter")
	}
	if m.couponApplies, err = meter.Int64Counter("restro.coupon.applies",
		metric.WithDescription("Coupon apply attempts by outcome"),
	); err != nil {
		return nil, errors.Wrap(err, "coupon applies counter")
	}
	if m.ordersPlaced, err = meter.Int64Counter("restro.orders.placed",
		metric.WithDescription("Checkout attempts by outcome"),
	); err != nil {
		return nil, errors.Wrap(err, "orders placed counter")
	}
	return &m, nil
}

// outcome is "ok" or the HTTP status class the error maps to.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	switch status, _ := classify(err); {
	case status >= 500:
		return "error"
	default:
		return "rejected"
	}
}

func (m *metrics) cartMutation(ctx context.Context, op string, err error) {
	m.cartMutations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("outcome", outcome(err)),
	))
}

func (m *metrics) couponApply(ctx context.Context, err error) {
	m.couponApplies.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome(err))))
}

func (m *metrics) orderPlaced(ctx context.Context, err error) {
	m.ordersPlaced.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome(err))))
}
