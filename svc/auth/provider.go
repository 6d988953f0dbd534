package auth

import "context"

// OAuth provider identifiers. Google is the only provider currently enabled;
// the adapter interface keeps the flow provider-agnostic.
const ProviderGoogle = "google"

// Profile is the normalized user profile reported by an identity provider.
type Profile struct {
	// ProviderUserID is the provider's stable user identifier.
	ProviderUserID string

	// Email is the raw address reported by the provider. The flow normalizes
	// and pseudonymizes it before anything is persisted.
	Email string

	// EmailVerified indicates whether the provider asserts the email is verified.
	EmailVerified bool

	Name      string
	AvatarURL string
}

// ProviderAdapter abstracts provider-specific OAuth behavior. Implementations
// encapsulate protocol details (oauth2.Config, token exchange, profile API)
// and expose only the primitives the flow needs.
type ProviderAdapter interface {
	// ProviderID returns a stable provider identifier, e.g. "google".
	ProviderID() string

	// AuthURL builds the provider authorization URL carrying the state token.
	AuthURL(state string) (string, error)

	// Exchange trades an authorization code for a provider access token.
	// Deadline hits map to ErrProviderTimeout; provider rejections wrap
	// ErrExchangeFailed with the upstream status code.
	Exchange(ctx context.Context, code string) (string, error)

	// FetchProfile calls the provider's userinfo endpoint with a bearer token.
	// Same timeout and rejection mapping as Exchange, wrapping ErrProfileFetch.
	FetchProfile(ctx context.Context, accessToken string) (Profile, error)
}

// ProviderConfig is the per-provider record from the settings store.
type ProviderConfig struct {
	Enabled      bool
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// ProviderConfigs looks up provider configuration by name.
type ProviderConfigs interface {
	// Get returns the provider's configuration or ErrUnknownProvider.
	Get(name string) (*ProviderConfig, error)
}

// StaticProviderConfigs is an in-memory ProviderConfigs, typically built from
// the environment at startup.
type StaticProviderConfigs map[string]ProviderConfig

func (s StaticProviderConfigs) Get(name string) (*ProviderConfig, error) {
	cfg, ok := s[name]
	if !ok {
		return nil, ErrUnknownProvider
	}
	return &cfg, nil
}
