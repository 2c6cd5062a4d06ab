package mongo

import (
	"context"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/cart"
	"github.com/shubham90-developer/Total-Health-sub003/internal/storage/document"
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository stores one document per cart key and replaces it only when
// the stored version matches.
type CartRepository struct {
	carts *mongo.Collection
}

// NewCartRepository returns a CartRepository for db.
func NewCartRepository(db *mongo.Database) *CartRepository {
	return &CartRepository{carts: db.Collection(cartsCollection)}
}

func (r *CartRepository) Find(ctx context.Context, key string) (*cart.Cart, error) {
	var d document.Cart
	if err := r.carts.FindOne(ctx, bson.M{"key": key}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cart.ErrCartNotFound
		}
		return nil, errors.Wrapf(err, "find cart %s", key)
	}
	return d.ToCart()
}

func (r *CartRepository) Save(ctx context.Context, c *cart.Cart) error {
	next := c.Version + 1
	d := document.FromCart(c)
	d.Version = next

	if c.Version == 0 {
		if _, err := r.carts.InsertOne(ctx, d); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return cart.ErrVersionConflict
			}
			return errors.Wrapf(err, "insert cart %s", c.Key)
		}
		c.Version = next
		return nil
	}

	res, err := r.carts.ReplaceOne(ctx, bson.M{"key": c.Key, "version": c.Version}, d)
	if err != nil {
		return errors.Wrapf(err, "replace cart %s", c.Key)
	}
	if res.MatchedCount == 0 {
		return cart.ErrVersionConflict
	}
	c.Version = next
	return nil
}
