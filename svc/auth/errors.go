package auth

import "errors"

// Provider and flow errors.
var (
	ErrUnknownProvider  = errors.New("unknown oauth provider")
	ErrProviderDisabled = errors.New("oauth provider is disabled")
	ErrInvalidState     = errors.New("oauth state is missing or invalid")
	ErrCodeMissing      = errors.New("authorization code is missing")
	ErrProviderTimeout  = errors.New("connection to identity provider timed out")
	ErrExchangeFailed   = errors.New("oauth code exchange failed")
	ErrProfileFetch     = errors.New("failed to fetch provider profile")
	ErrNoPrimaryEmail   = errors.New("no email address from provider")
	ErrUnverifiedEmail  = errors.New("email not verified by provider")
)

// Token and user errors.
var (
	ErrTokenNotFound = errors.New("token not found or expired")
	ErrUserNotFound  = errors.New("user not found")
)
