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

// DefaultCSRFTokenTTL is the lifetime of an anti-forgery token.
const DefaultCSRFTokenTTL = time.Hour

type csrfPayload struct {
	IP        string    `json:"ip"`
	CreatedAt time.Time `json:"created_at"`
}

// CSRFService issues and validates short-lived anti-forgery tokens bound to
// the requester's IP address. Unlike state and refresh tokens, CSRF tokens
// are not consumed on validation and stay valid until their TTL elapses.
type CSRFService struct {
	store           kvstore.Store
	ttl             time.Duration
	allowIPMismatch bool
	log             *slog.Logger
}

// CSRFOption configures a CSRFService during construction.
type CSRFOption func(*CSRFService)

// WithCSRFTTL overrides the default 1-hour token lifetime.
func WithCSRFTTL(ttl time.Duration) CSRFOption {
	return func(s *CSRFService) {
		s.ttl = ttl
	}
}

// WithAllowIPMismatch tolerates IP mismatches during validation, logging a
// warning instead of rejecting. Meant for non-production deployments behind
// changing NAT or local proxies; never enable it in production.
func WithAllowIPMismatch(allow bool) CSRFOption {
	return func(s *CSRFService) {
		s.allowIPMismatch = allow
	}
}

// WithCSRFLogger configures the logger for the CSRF service.
func WithCSRFLogger(l *slog.Logger) CSRFOption {
	return func(s *CSRFService) {
		s.log = l
	}
}

// NewCSRFService constructs a CSRF token service on the given store.
func NewCSRFService(store kvstore.Store, opts ...CSRFOption) *CSRFService {
	s := &CSRFService{
		store: store,
		ttl:   DefaultCSRFTokenTTL,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue generates a fresh token bound to the requester's IP.
func (s *CSRFService) Issue(ctx context.Context, requesterIP string) (string, error) {
	token, err := newOpaqueToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate csrf token: %w", err)
	}

	payload, err := json.Marshal(csrfPayload{IP: requesterIP, CreatedAt: time.Now()})
	if err != nil {
		return "", fmt.Errorf("failed to encode csrf payload: %w", err)
	}

	if err := s.store.Set(ctx, kvstore.NamespaceCSRF+token, payload, s.ttl); err != nil {
		return "", fmt.Errorf("failed to store csrf token: %w", err)
	}
	return token, nil
}

// Validate reports whether the token was issued, is unexpired and is bound to
// the presenting IP. Absence, malformed input and mismatches all resolve to
// false; nothing is surfaced as an error. The token is not consumed.
func (s *CSRFService) Validate(ctx context.Context, token, requesterIP string) bool {
	if token == "" {
		return false
	}

	raw, err := s.store.Get(ctx, kvstore.NamespaceCSRF+token)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			s.log.WarnContext(ctx, "csrf token lookup failed",
				logger.Error(err),
				logger.Component("csrf"),
			)
		}
		return false
	}

	var payload csrfPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return false
	}

	if payload.IP != requesterIP {
		if s.allowIPMismatch {
			s.log.WarnContext(ctx, "csrf token ip mismatch tolerated",
				logger.ClientIP(requesterIP),
				slog.String("bound_ip", payload.IP),
				logger.Component("csrf"),
			)
			return true
		}
		return false
	}

	return true
}

// Revoke deletes a token before its TTL elapses. Rarely needed; tokens
// normally just expire.
func (s *CSRFService) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.store.Delete(ctx, kvstore.NamespaceCSRF+token)
}
