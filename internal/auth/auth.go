// Package auth verifies user credentials and issues signed bearer tokens.
//
// The HTTP layer only depends on the Verifier and Issuer interfaces; the
// bcrypt and JWT implementations here are the production wiring.
package auth

import (
	"context"

	"github.com/okian/muziki/internal/domain/model"
)

// Verifier checks a username/password pair.
type Verifier interface {
	// Verify returns the matching user or ErrInvalidCredentials.
	Verify(ctx context.Context, username, password string) (model.User, error)
}

// Issuer produces and validates bearer tokens.
type Issuer interface {
	Issue(ctx context.Context, user model.User) (string, error)
	// Parse returns ErrInvalidToken for anything that is not a valid, unexpired token.
	Parse(ctx context.Context, token string) (*Claims, error)
}

type claimsKey struct{}

// WithClaims returns a context carrying c.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFromContext returns the claims stored by WithClaims.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*Claims)
	return c, ok && c != nil
}
