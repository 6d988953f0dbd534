package kvstore

import "errors"

var (
	// ErrNotFound is returned when a key is absent or its entry has expired.
	ErrNotFound = errors.New("kvstore: key not found")

	// ErrFailedToParseRedisURL is returned when the Redis connection URL is invalid.
	ErrFailedToParseRedisURL = errors.New("kvstore: failed to parse redis connection url")

	// ErrRedisNotReady is returned when Redis did not become ready within the
	// configured retry budget.
	ErrRedisNotReady = errors.New("kvstore: redis did not become ready within the given time period")
)
