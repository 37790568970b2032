// Package session maps opaque auth tokens to user ids.
package session

import (
	"context"
	"time"
)

// DefaultTTL is how long a token stays valid after Create.
const DefaultTTL = 24 * time.Hour

type Store interface {
	// Resolve returns the user id behind token, or models.ErrUnauthorized.
	Resolve(ctx context.Context, token string) (string, error)
	Create(ctx context.Context, userID string) (string, error)
	// Revoke returns models.ErrUnauthorized when the token is unknown.
	Revoke(ctx context.Context, token string) error
	Ping(ctx context.Context) error
}

func tokenKey(token string) string {
	return "auth_" + token
}
