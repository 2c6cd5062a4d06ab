package mongo

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/order"
	"github.com/shubham90-developer/Total-Health-sub003/internal/storage/document"
)

type orderDoc struct {
	ID          string           `bson:"_id"`
	CartKey     string           `bson:"cartKey"`
	HotelID     string           `bson:"hotelId"`
	TableNumber string           `bson:"tableNumber,omitempty"`
	Lines       []document.Line  `bson:"lines"`
	Subtotal    string           `bson:"subtotal"`
	Discount    string           `bson:"discount"`
	Total       string           `bson:"total"`
	CouponCode  string           `bson:"couponCode,omitempty"`
	Splits      []document.Split `bson:"splits"`
	PlacedBy    string           `bson:"placedBy"`
	CreatedAt   time.Time        `bson:"createdAt"`
}

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository on the orders collection.
type OrderRepository struct {
	orders *mongo.Collection
}

// NewOrderRepository returns an OrderRepository for db.
func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{orders: db.Collection(ordersCollection)}
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	d := orderDoc{
		ID:          o.ID,
		CartKey:     o.CartKey,
		HotelID:     o.HotelID,
		TableNumber: o.TableNumber,
		Lines:       document.FromLines(o.Lines),
		Subtotal:    o.Subtotal.String(),
		Discount:    o.Discount.String(),
		Total:       o.Total.String(),
		CouponCode:  o.CouponCode,
		Splits:      document.FromSplits(o.Splits),
		PlacedBy:    o.PlacedBy,
		CreatedAt:   o.CreatedAt,
	}
	_, err := r.orders.InsertOne(ctx, d)
	return errors.Wrapf(err, "insert order %s", o.ID)
}
