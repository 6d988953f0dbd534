package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/communitylabs/authcore/pkg/kvstore"
	"github.com/communitylabs/authcore/pkg/logger"
)

// Service orchestrates the OAuth authorization-code flow and the session
// lifecycle built on top of it: state issue/consume, code exchange, profile
// fetch, pseudonymized user resolution and session artifact issuance.
//
// Cookie writes are atomic by convention: a Session is only ever produced
// after every preceding step succeeded, so a failed flow leaves no partial
// artifacts behind.
type Service struct {
	store     kvstore.Store
	users     UserRepository
	issuer    AccessTokenIssuer
	refresh   *RefreshService
	providers ProviderConfigs
	pseudo    *Pseudonymizer
	adapters  map[string]ProviderAdapter

	log          *slog.Logger
	stateTTL     time.Duration
	verifiedOnly bool
}

// ServiceOption configures a Service during construction.
type ServiceOption func(*Service)

// WithAdapter registers a provider adapter under its ProviderID.
func WithAdapter(adapter ProviderAdapter) ServiceOption {
	return func(s *Service) {
		s.adapters[adapter.ProviderID()] = adapter
	}
}

// WithLogger configures the logger for the service.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.log = l
	}
}

// WithStateTTL overrides the default 5-minute state token lifetime.
func WithStateTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.stateTTL = ttl
	}
}

// WithVerifiedOnly controls whether unverified provider emails are rejected.
func WithVerifiedOnly(verifiedOnly bool) ServiceOption {
	return func(s *Service) {
		s.verifiedOnly = verifiedOnly
	}
}

// NewService constructs the OAuth flow service.
// Defaults: stateTTL = 5 minutes, verifiedOnly = true, logger discards.
func NewService(
	store kvstore.Store,
	users UserRepository,
	issuer AccessTokenIssuer,
	refresh *RefreshService,
	providers ProviderConfigs,
	pseudo *Pseudonymizer,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		store:        store,
		users:        users,
		issuer:       issuer,
		refresh:      refresh,
		providers:    providers,
		pseudo:       pseudo,
		adapters:     make(map[string]ProviderAdapter),
		log:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		stateTTL:     DefaultStateTTL,
		verifiedOnly: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BeginAuth starts the flow for the named provider: it checks the provider is
// enabled, persists a one-time state token and returns the authorization URL
// to redirect the client to. A disabled or unknown provider aborts before any
// state is written.
func (s *Service) BeginAuth(ctx context.Context, provider string) (string, error) {
	adapter, err := s.enabledAdapter(provider)
	if err != nil {
		return "", err
	}

	state, err := s.issueState(ctx)
	if err != nil {
		return "", err
	}

	url, err := adapter.AuthURL(state)
	if err != nil {
		return "", fmt.Errorf("failed to build auth url: %w", err)
	}
	return url, nil
}

// CompleteAuth finishes the flow with the code and state returned by the
// provider. The state is consumed first (one-time use; a replay fails with
// ErrInvalidState even if the first presentation failed later on), then the
// code is exchanged, the profile fetched, the local user resolved via
// pseudonymous identity and the session artifacts issued.
func (s *Service) CompleteAuth(ctx context.Context, provider, code, state string) (*Session, error) {
	if err := s.consumeState(ctx, state); err != nil {
		return nil, err
	}

	if code == "" {
		return nil, ErrCodeMissing
	}

	adapter, err := s.enabledAdapter(provider)
	if err != nil {
		return nil, err
	}

	accessToken, err := adapter.Exchange(ctx, code)
	if err != nil {
		s.log.WarnContext(ctx, "code exchange failed",
			logger.Provider(provider),
			logger.Error(err),
			logger.Component("oauth"),
		)
		return nil, err
	}

	profile, err := adapter.FetchProfile(ctx, accessToken)
	if err != nil {
		s.log.WarnContext(ctx, "profile fetch failed",
			logger.Provider(provider),
			logger.Error(err),
			logger.Component("oauth"),
		)
		return nil, err
	}

	if profile.Email == "" {
		return nil, ErrNoPrimaryEmail
	}
	// Reject unverified emails to prevent account takeover via the provider.
	if s.verifiedOnly && !profile.EmailVerified {
		return nil, ErrUnverifiedEmail
	}

	user, err := s.resolveUser(ctx, profile)
	if err != nil {
		return nil, err
	}

	return s.issueSession(ctx, user)
}

// Refresh rotates a refresh token: the presented token is consumed and a new
// access/refresh pair is issued for its user. An invalid, expired or replayed
// token fails with ErrTokenNotFound.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	userID, err := s.refresh.Validate(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return s.issueSession(ctx, user)
}

// Logout revokes the refresh token best-effort. It never fails: revocation
// errors are logged and swallowed so cookie clearing can always proceed.
func (s *Service) Logout(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}
	if err := s.refresh.Revoke(ctx, refreshToken); err != nil {
		s.log.WarnContext(ctx, "refresh token revocation failed",
			logger.Error(err),
			logger.Component("oauth"),
		)
	}
}

// resolveUser finds or creates the local user for a provider profile. The
// pseudonymous identity is deterministic, so repeated logins with the same
// provider email land on the same record.
func (s *Service) resolveUser(ctx context.Context, profile Profile) (*User, error) {
	pseudonym := s.pseudo.Derive(profile.Email)

	user, err := s.users.FindByPseudonym(ctx, pseudonym)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	user = &User{
		Username: temporaryUsername(),
		Email:    pseudonym,
		Role:     RoleAuthenticated,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.InfoContext(ctx, "created user from oauth profile",
		logger.UserID(user.ID),
		logger.Component("oauth"),
	)
	return user, nil
}

func (s *Service) issueSession(ctx context.Context, user *User) (*Session, error) {
	accessToken, err := s.issuer.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	refreshToken, err := s.refresh.Create(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

func (s *Service) enabledAdapter(provider string) (ProviderAdapter, error) {
	cfg, err := s.providers.Get(provider)
	if err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		return nil, ErrProviderDisabled
	}

	adapter, ok := s.adapters[provider]
	if !ok {
		return nil, ErrUnknownProvider
	}
	return adapter, nil
}

// temporaryUsername produces a non-identifying display name for users created
// through the flow. Users pick a real name later through the profile UI.
func temporaryUsername() string {
	return "member_" + uuid.NewString()[:8]
}
