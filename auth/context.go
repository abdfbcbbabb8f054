package auth

import (
	"context"

	"github.com/google/uuid"
)

// `contextKey` is a custom type for context keys so they cannot collide with keys
// defined in other packages.
type contextKey string

const claimsContextKey contextKey = "auth_claims"

// NewContextWithClaims returns a child context carrying the caller's claims.
func NewContextWithClaims(ctx context.Context, claims *CustomClaims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext extracts CustomClaims from context.
func ClaimsFromContext(ctx context.Context) (*CustomClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*CustomClaims)
	return claims, ok && claims != nil
}

// UserIDFromContext returns the authenticated user's id.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return claims.UserID, true
}

// ViewerFromContext returns the id of the requesting user, or nil for anonymous requests.
// Read endpoints pass it on to compute viewer-relative flags.
func ViewerFromContext(ctx context.Context) *uuid.UUID {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return nil
	}
	id := claims.UserID
	return &id
}
