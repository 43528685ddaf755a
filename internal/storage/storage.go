// Package storage provides the session key/value store behind the storefront:
// cached store configs, referral codes, and the identity values a shopper
// entered earlier in the session (KTP number, extracted date of birth).
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key is absent or expired.
var ErrNotFound = errors.New("storage: key not found")

// Store is a TTL key/value store. A zero TTL means no expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Key builds a namespaced storage key: "storefront:{session}:{name}".
func Key(session, name string) string {
	if session == "" {
		return "storefront:" + name
	}
	return "storefront:" + session + ":" + name
}
