package kvstore

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/communitylabs/authcore/pkg/logger"
)

// Fallback routes operations to a primary (durable) store and degrades to an
// in-process store when the primary errors. Backend failures are logged and
// absorbed here: Set and Delete never fail the caller, and reads fall through
// to the in-process store so values written during an outage stay reachable
// within this process.
type Fallback struct {
	primary Store
	memory  *MemoryStore
	log     *slog.Logger
}

// NewFallback wraps primary with an in-process fallback. The logger records
// degradation events only; it never affects call outcomes.
func NewFallback(primary Store, memory *MemoryStore, log *slog.Logger) *Fallback {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Fallback{primary: primary, memory: memory, log: log}
}

func (f *Fallback) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := f.primary.Set(ctx, key, value, ttl); err != nil {
		f.degraded(ctx, "set", err)
		return f.memory.Set(ctx, key, value, ttl)
	}
	return nil
}

func (f *Fallback) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := f.primary.Get(ctx, key)
	if err == nil {
		return val, nil
	}
	if !errors.Is(err, ErrNotFound) {
		f.degraded(ctx, "get", err)
	}
	// Either absent upstream or the backend is down; the in-process store may
	// hold a value written while degraded.
	return f.memory.Get(ctx, key)
}

func (f *Fallback) GetDel(ctx context.Context, key string) ([]byte, error) {
	val, err := f.primary.GetDel(ctx, key)
	if err == nil {
		return val, nil
	}
	if !errors.Is(err, ErrNotFound) {
		f.degraded(ctx, "getdel", err)
	}
	return f.memory.GetDel(ctx, key)
}

func (f *Fallback) Delete(ctx context.Context, key string) error {
	if err := f.primary.Delete(ctx, key); err != nil {
		f.degraded(ctx, "delete", err)
	}
	return f.memory.Delete(ctx, key)
}

func (f *Fallback) Close() error {
	return errors.Join(f.primary.Close(), f.memory.Close())
}

func (f *Fallback) degraded(ctx context.Context, op string, err error) {
	f.log.WarnContext(ctx, "durable kv backend error, using in-process store",
		slog.String("op", op),
		logger.Error(err),
		logger.Component("kvstore"),
	)
}

var _ Store = (*Fallback)(nil)
