package model

import (
	"context"

	"github.com/google/uuid"
)

// Identity is the authenticated caller bound to a request
type Identity struct {
	UserID uuid.UUID
	Role   Role
	Token  string
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity bound by the session middleware
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
