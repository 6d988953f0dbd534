package auth

import (
	"net/http"
	"time"

	"github.com/communitylabs/authcore/pkg/cookie"
)

// Cookie names for the session artifact pair.
const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

// CookieTransport places and clears the session artifacts as HTTP cookies.
// The two cookies carry different protection levels: the access token must be
// readable by client-side request code (it populates the Authorization
// header), while the refresh token is HttpOnly and only ever travels back to
// the refresh endpoint.
type CookieTransport struct {
	cookies    *cookie.Manager
	secure     bool
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewCookieTransport builds the transport. secure should be true in
// production so both cookies carry the Secure attribute.
func NewCookieTransport(secure bool, accessTTL, refreshTTL time.Duration) *CookieTransport {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTokenTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTokenTTL
	}
	return &CookieTransport{
		cookies:    cookie.New(cookie.WithPath("/"), cookie.WithSameSite(http.SameSiteLaxMode)),
		secure:     secure,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Write sets both session cookies. Tokens never appear in URLs; the cookie
// pair is the only transport.
func (t *CookieTransport) Write(w http.ResponseWriter, sess *Session) {
	t.WriteAccess(w, sess.AccessToken)
	t.WriteRefresh(w, sess.RefreshToken)
}

// WriteAccess sets the script-readable access token cookie.
func (t *CookieTransport) WriteAccess(w http.ResponseWriter, token string) {
	t.cookies.Set(w, AccessTokenCookie, token,
		cookie.WithHTTPOnly(false),
		cookie.WithSecure(t.secure),
		cookie.WithMaxAge(int(t.accessTTL.Seconds())),
	)
}

// WriteRefresh sets the HttpOnly refresh token cookie.
func (t *CookieTransport) WriteRefresh(w http.ResponseWriter, token string) {
	t.cookies.Set(w, RefreshTokenCookie, token,
		cookie.WithHTTPOnly(true),
		cookie.WithSecure(t.secure),
		cookie.WithMaxAge(int(t.refreshTTL.Seconds())),
	)
}

// ClearAll expires both cookies immediately, matching the attributes they
// were set with.
func (t *CookieTransport) ClearAll(w http.ResponseWriter) {
	t.cookies.Delete(w, AccessTokenCookie,
		cookie.WithHTTPOnly(false),
		cookie.WithSecure(t.secure),
	)
	t.cookies.Delete(w, RefreshTokenCookie,
		cookie.WithHTTPOnly(true),
		cookie.WithSecure(t.secure),
	)
}

// RefreshToken reads the refresh token cookie from the request.
func (t *CookieTransport) RefreshToken(r *http.Request) (string, error) {
	return t.cookies.Get(r, RefreshTokenCookie)
}
