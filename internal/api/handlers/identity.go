// Package handlers implements the HTTP handlers for the match API.
package handlers

import (
	"context"

	"github.com/cardduel/cardduel/internal/clients"
)

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity stores a verified identity in the request context. The
// auth middleware calls this after token verification succeeds.
func WithIdentity(ctx context.Context, identity *clients.VerifiedIdentity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFrom returns the verified identity attached to the context,
// or nil when the request was not authenticated.
func IdentityFrom(ctx context.Context) *clients.VerifiedIdentity {
	identity, _ := ctx.Value(identityKey).(*clients.VerifiedIdentity)
	return identity
}
