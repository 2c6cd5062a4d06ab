package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/auth"
)

// APIKeyHeader carries vendor API keys.
const APIKeyHeader = "X-API-Key"

type (
	dinerKey  struct{}
	vendorKey struct{}
)

// DinerClaims is the bearer token payload issued by the account service.
type DinerClaims struct {
	UserID string `json:"userId"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func dinerFrom(ctx context.Context) (auth.Diner, bool) {
	d, ok := ctx.Value(dinerKey{}).(auth.Diner)
	return d, ok
}

func vendorFrom(ctx context.Context) (*auth.APIKeyInfo, bool) {
	k, ok := ctx.Value(vendorKey{}).(*auth.APIKeyInfo)
	return k, ok
}

// requireDiner authenticates HS256 bearer tokens. The user ID comes from
// the userId claim, falling back to sub.
func (h *Handler) requireDiner(next http.Handler) http.Handler {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	keyFunc := func(*jwt.Token) (any, error) { return h.jwtSecret, nil }

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeError(w, r, errors.Wrap(errUnauthorized, "missing bearer token"))
			return
		}

		var claims DinerClaims
		if _, err := parser.ParseWithClaims(raw, &claims, keyFunc); err != nil {
			zctx.From(r.Context()).Debug("Rejected bearer token", zap.Error(err))
			writeError(w, r, errUnauthorized)
			return
		}
		userID := claims.UserID
		if userID == "" {
			userID = claims.Subject
		}
		if userID == "" {
			writeError(w, r, errUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), dinerKey{}, auth.Diner{UserID: userID, Role: claims.Role})
		ctx = zctx.With(ctx, zap.String("user_id", userID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireVendor authenticates vendor API keys by their HMAC-SHA256 under
// the configured pepper and checks the key carries scope.
func (h *Handler) requireVendor(scope string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(APIKeyHeader)
		if key == "" {
			writeError(w, r, errors.Wrap(errUnauthorized, "missing api key"))
			return
		}
		info, err := h.authenticateKey(r.Context(), key)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !info.HasScope(scope) {
			writeError(w, r, errForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), vendorKey{}, info)
		ctx = zctx.With(ctx, zap.String("vendor_id", info.VendorID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) authenticateKey(ctx context.Context, key string) (*auth.APIKeyInfo, error) {
	hash := HashAPIKey(h.pepper, key)

	info, err := h.apiKeys.FindByHash(ctx, hex.EncodeToString(hash))
	switch {
	case errors.Is(err, auth.ErrKeyNotFound):
		return nil, errUnauthorized
	case err != nil:
		return nil, errors.Wrap(err, "find api key")
	}

	stored, err := hex.DecodeString(info.KeyHash)
	if err != nil || subtle.ConstantTimeCompare(hash, stored) != 1 {
		return nil, errUnauthorized
	}
	return info, nil
}

// HashAPIKey returns HMAC-SHA256(pepper, key). Keys are stored hex encoded.
func HashAPIKey(pepper []byte, key string) []byte {
	mac := hmac.New(sha256.New, pepper)
	mac.Write([]byte(key))
	return mac.Sum(nil)
}
