package auth

import (
	"errors"
	"log/slog"
	"time"

	"github.com/communitylabs/authcore/pkg/logger"
)

// Config is the environment surface of the auth service.
type Config struct {
	AppEnv    string `env:"APP_ENV" envDefault:"development"` // AppEnv distinguishes production from non-production deployments.
	AppSecret string `env:"APP_SECRET,required"`              // AppSecret signs access tokens and backs pseudonymization outside production.
	BaseURL   string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// PseudonymSecret keys the email pseudonymization HMAC. Required in
	// production; non-production falls back to AppSecret with a warning.
	PseudonymSecret string `env:"PSEUDONYM_SECRET"`
	PseudonymDomain string `env:"PSEUDONYM_DOMAIN" envDefault:"users.noreply.invalid"`

	SuccessRedirect string `env:"AUTH_SUCCESS_REDIRECT" envDefault:"/auth/callback"` // SuccessRedirect is the landing route after a completed login.
	ErrorRedirect   string `env:"AUTH_ERROR_REDIRECT" envDefault:"/auth/error"`      // ErrorRedirect receives flow failures with a url-encoded message.

	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`
	StateTTL        time.Duration `env:"OAUTH_STATE_TTL" envDefault:"5m"`
	CSRFTokenTTL    time.Duration `env:"CSRF_TOKEN_TTL" envDefault:"1h"`

	// CSRFAllowIPMismatch tolerates (and logs) IP mismatches on CSRF token
	// validation. It is an explicit switch rather than something inferred from
	// AppEnv, so a misconfigured production deployment cannot silently weaken
	// the binding; enabling it in production logs an error at startup.
	CSRFAllowIPMismatch bool `env:"CSRF_ALLOW_IP_MISMATCH" envDefault:"false"`

	// VerifiedOnly rejects provider profiles whose email is not verified.
	VerifiedOnly bool `env:"OAUTH_VERIFIED_ONLY" envDefault:"true"`

	GoogleEnabled      bool   `env:"GOOGLE_OAUTH_ENABLED" envDefault:"false"`
	GoogleClientID     string `env:"GOOGLE_OAUTH_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_OAUTH_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"GOOGLE_OAUTH_REDIRECT_URL"`
}

// ErrPseudonymSecretRequired is returned when no dedicated pseudonymization
// secret is configured in a production deployment.
var ErrPseudonymSecretRequired = errors.New("PSEUDONYM_SECRET is required in production")

func (c Config) IsProduction() bool {
	return c.AppEnv == "production" || c.AppEnv == "prod"
}

// PseudonymizationSecret resolves the HMAC secret per deployment mode:
// the dedicated secret when set, a startup error in production without one,
// and the shared application secret (with a warning) otherwise.
func (c Config) PseudonymizationSecret(log *slog.Logger) (string, error) {
	if c.PseudonymSecret != "" {
		return c.PseudonymSecret, nil
	}
	if c.IsProduction() {
		return "", ErrPseudonymSecretRequired
	}
	if log != nil {
		log.Warn("PSEUDONYM_SECRET not set, falling back to APP_SECRET",
			logger.Component("auth"),
		)
	}
	return c.AppSecret, nil
}

// Providers builds the provider configuration store from the environment.
func (c Config) Providers() StaticProviderConfigs {
	redirectURL := c.GoogleRedirectURL
	if redirectURL == "" {
		redirectURL = c.BaseURL + "/connect/" + ProviderGoogle + "/callback"
	}

	return StaticProviderConfigs{
		ProviderGoogle: {
			Enabled:      c.GoogleEnabled,
			ClientID:     c.GoogleClientID,
			ClientSecret: c.GoogleClientSecret,
			RedirectURL:  redirectURL,
		},
	}
}
