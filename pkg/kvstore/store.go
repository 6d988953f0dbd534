package kvstore

import (
	"context"
	"time"
)

// Key namespaces used by the auth services. The store itself treats keys as a
// flat opaque space; namespacing is a caller convention.
const (
	NamespaceOAuthState = "oauth:state:"
	NamespaceRefresh    = "refresh:"
	NamespaceCSRF       = "csrf_token:"
	NamespaceSession    = "session:"
)

// Store is a key/value cache with per-entry TTL. Implementations expire
// entries natively (Redis) or lazily plus a background sweep (in-process).
type Store interface {
	// Set upserts an entry that expires ttl from now.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get returns the payload if the entry exists and is unexpired,
	// ErrNotFound otherwise.
	Get(ctx context.Context, key string) ([]byte, error)

	// GetDel atomically fetches and deletes an entry. Exactly one concurrent
	// caller observes the value; all others get ErrNotFound. This is the
	// primitive behind one-time-use tokens.
	GetDel(ctx context.Context, key string) ([]byte, error)

	// Delete removes an entry. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend connections and stops background work.
	Close() error
}
