// Package kvstore provides a TTL-aware key/value cache with a durable Redis
// backend and a transparent in-process fallback.
//
// The package exposes a single Store interface with three implementations:
// RedisStore (durable, shared across replicas), MemoryStore (process-local,
// best-effort) and Fallback, which wraps both and absorbs backend failures so
// callers never see a storage error. Open wires the right combination from
// configuration: it dials Redis with bounded retries and degrades permanently
// to the in-process store when the backend is unreachable.
//
// One-time-use tokens are built on GetDel, an atomic fetch-and-delete. The
// Redis path uses the GETDEL command and the in-process path holds a mutex
// across the read and delete, so a token presented by two concurrent requests
// validates exactly once.
//
// Usage:
//
//	store := kvstore.Open(ctx, cfg, log)
//	defer store.Close()
//
//	_ = store.Set(ctx, kvstore.NamespaceOAuthState+token, payload, 5*time.Minute)
//	payload, err := store.GetDel(ctx, kvstore.NamespaceOAuthState+token)
package kvstore
