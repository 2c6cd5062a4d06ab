package mongo

import (
	"context"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/auth"
)

type apiKeyDoc struct {
	ID       string   `bson:"_id"`
	KeyHash  string   `bson:"keyHash"`
	Name     string   `bson:"name"`
	VendorID string   `bson:"vendorId"`
	Scopes   []string `bson:"scopes"`
	Active   bool     `bson:"active"`
}

var _ auth.Repository = (*APIKeyRepository)(nil)

// APIKeyRepository implements auth.Repository on the api_keys collection.
type APIKeyRepository struct {
	keys *mongo.Collection
}

// NewAPIKeyRepository returns an APIKeyRepository for db.
func NewAPIKeyRepository(db *mongo.Database) *APIKeyRepository {
	return &APIKeyRepository{keys: db.Collection(apiKeysCollection)}
}

func (r *APIKeyRepository) FindByHash(ctx context.Context, hash string) (*auth.APIKeyInfo, error) {
	var d apiKeyDoc
	err := r.keys.FindOne(ctx, bson.M{"keyHash": hash, "active": true}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, auth.ErrKeyNotFound
		}
		return nil, errors.Wrap(err, "find api key")
	}
	return &auth.APIKeyInfo{ID: d.ID, KeyHash: d.KeyHash, Name: d.Name, VendorID: d.VendorID, Scopes: d.Scopes}, nil
}

func (r *APIKeyRepository) Create(ctx context.Context, k *auth.APIKeyInfo) error {
	_, err := r.keys.InsertOne(ctx, apiKeyDoc{
		ID: k.ID, KeyHash: k.KeyHash, Name: k.Name, VendorID: k.VendorID, Scopes: k.Scopes, Active: true,
	})
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return errors.Wrapf(err, "insert api key %s", k.Name)
}
