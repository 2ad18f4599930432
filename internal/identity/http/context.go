// Package http provides the identity endpoints and the middleware that resolves
// the caller of each request.
package http

import (
	"context"

	identityDomain "github.com/xambitlan/disclosure/internal/identity/domain"
)

// identityKey is a context key type for storing the authenticated identity.
type identityKey struct{}

// WithIdentity stores the authenticated identity in the context.
func WithIdentity(ctx context.Context, identity *identityDomain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// GetIdentity retrieves the authenticated identity from the context.
// Returns (nil, false) when AuthenticationMiddleware did not run.
func GetIdentity(ctx context.Context) (*identityDomain.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(*identityDomain.Identity)
	return identity, ok && identity != nil
}
