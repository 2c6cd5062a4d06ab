package auth

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrKeyNotFound is returned when no active key has the given hash.
var ErrKeyNotFound = errors.New("api key not found")

// Scopes granted to vendor keys.
const (
	ScopeCouponsRead  = "coupons:read"
	ScopeCouponsWrite = "coupons:write"
)

// APIKeyInfo holds the identity and permission data for a validated vendor
// API key.
type APIKeyInfo struct {
	ID       string
	KeyHash  string
	Name     string
	VendorID string
	Scopes   []string
}

// HasScope reports whether the key was granted scope.
func (k *APIKeyInfo) HasScope(scope string) bool {
	for _, s := range k.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// Repository provides lookup of API keys by their HMAC hash.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*APIKeyInfo, error)
	Create(ctx context.Context, key *APIKeyInfo) error
}

// Diner is the authenticated end user of cart endpoints.
type Diner struct {
	UserID string
	Role   string
}
