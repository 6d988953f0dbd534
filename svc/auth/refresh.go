package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/communitylabs/authcore/pkg/kvstore"
	"github.com/communitylabs/authcore/pkg/logger"
)

// DefaultRefreshTokenTTL is the lifetime of a refresh token unless rotated
// earlier.
const DefaultRefreshTokenTTL = 7 * 24 * time.Hour

type refreshPayload struct {
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// RefreshService issues long-lived, one-time-use refresh tokens bound to a
// user identity. Tokens rotate on use: validating a token consumes it.
type RefreshService struct {
	store kvstore.Store
	ttl   time.Duration
	log   *slog.Logger
}

// RefreshOption configures a RefreshService during construction.
type RefreshOption func(*RefreshService)

// WithRefreshTTL overrides the default 7-day token lifetime.
func WithRefreshTTL(ttl time.Duration) RefreshOption {
	return func(s *RefreshService) {
		s.ttl = ttl
	}
}

// WithRefreshLogger configures the logger for the refresh service.
func WithRefreshLogger(l *slog.Logger) RefreshOption {
	return func(s *RefreshService) {
		s.log = l
	}
}

// NewRefreshService constructs a refresh token service on the given store.
func NewRefreshService(store kvstore.Store, opts ...RefreshOption) *RefreshService {
	s := &RefreshService{
		store: store,
		ttl:   DefaultRefreshTokenTTL,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create issues a fresh token bound to userID with the configured TTL.
func (s *RefreshService) Create(ctx context.Context, userID int64) (string, error) {
	token, err := newOpaqueToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}

	payload, err := json.Marshal(refreshPayload{UserID: userID, CreatedAt: time.Now()})
	if err != nil {
		return "", fmt.Errorf("failed to encode refresh payload: %w", err)
	}

	if err := s.store.Set(ctx, kvstore.NamespaceRefresh+token, payload, s.ttl); err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}
	return token, nil
}

// Validate resolves a token to its bound user id. CAUTION: despite the query
// name this call mutates state — the underlying entry is deleted before the
// user id is returned, so a replayed token fails even inside its TTL window.
// Returns ErrTokenNotFound for absent, expired or already-consumed tokens.
func (s *RefreshService) Validate(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, ErrTokenNotFound
	}

	raw, err := s.store.GetDel(ctx, kvstore.NamespaceRefresh+token)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return 0, ErrTokenNotFound
		}
		return 0, fmt.Errorf("failed to consume refresh token: %w", err)
	}

	var payload refreshPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return 0, ErrTokenNotFound
	}
	return payload.UserID, nil
}

// Revoke deletes a token without resolving it. Used on logout; revoking an
// absent token is not an error.
func (s *RefreshService) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.store.Delete(ctx, kvstore.NamespaceRefresh+token)
}

// RevokeAllForUser is a documented no-op: the store keeps no reverse index
// from user to tokens, so bulk revocation cannot be implemented on the
// current key layout. Callers relying on full session revocation must not
// assume this works; the call only logs.
func (s *RefreshService) RevokeAllForUser(ctx context.Context, userID int64) {
	s.log.WarnContext(ctx, "RevokeAllForUser is not implemented: no user-to-token index",
		logger.UserID(userID),
		logger.Component("refresh"),
	)
}
