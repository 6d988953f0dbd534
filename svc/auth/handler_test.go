package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type handlerFixture struct {
	*flowFixture
	handler *Handler
	router  http.Handler
}

func newHandlerFixture(t *testing.T, profile Profile) *handlerFixture {
	t.Helper()

	flow := newFlowFixture(t, profile)
	handler := NewHandler(
		flow.svc,
		NewCSRFService(flow.store),
		NewCookieTransport(false, 15*time.Minute, 7*24*time.Hour),
	)
	return &handlerFixture{flowFixture: flow, handler: handler, router: handler.Router()}
}

func (f *handlerFixture) do(req *http.Request) *http.Response {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec.Result()
}

// login runs connect plus callback and returns the callback response,
// which carries the session cookies.
func (f *handlerFixture) login(t *testing.T) *http.Response {
	t.Helper()

	connect := f.do(httptest.NewRequest(http.MethodGet, "/connect/google", nil))
	require.Equal(t, http.StatusFound, connect.StatusCode)

	authURL, err := url.Parse(connect.Header.Get("Location"))
	require.NoError(t, err)
	state := authURL.Query().Get("state")
	require.NotEmpty(t, state)

	resp := f.do(httptest.NewRequest(http.MethodGet,
		"/connect/google/callback?code=the-code&state="+url.QueryEscape(state), nil))
	require.Equal(t, http.StatusFound, resp.StatusCode)
	return resp
}

func responseCookie(t *testing.T, resp *http.Response, name string) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHandler_Connect(t *testing.T) {
	t.Parallel()

	t.Run("redirects to the provider", func(t *testing.T) {
		t.Parallel()

		f := newHandlerFixture(t, verifiedProfile())
		resp := f.do(httptest.NewRequest(http.MethodGet, "/connect/google", nil))

		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Location"), "https://provider.test/authorize?state=")
	})

	t.Run("unknown provider yields 400 json", func(t *testing.T) {
		t.Parallel()

		f := newHandlerFixture(t, verifiedProfile())
		resp := f.do(httptest.NewRequest(http.MethodGet, "/connect/myspace", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeBody[map[string]string](t, resp)
		assert.Equal(t, msgUnavailable, body["error"])
		assert.Zero(t, f.store.Len())
	})
}

func TestHandler_Callback(t *testing.T) {
	t.Parallel()

	t.Run("sets session cookies and redirects", func(t *testing.T) {
		t.Parallel()

		f := newHandlerFixture(t, verifiedProfile())
		resp := f.login(t)

		assert.Equal(t, "/auth/callback", resp.Header.Get("Location"))

		access := responseCookie(t, resp, AccessTokenCookie)
		assert.NotEmpty(t, access.Value)
		assert.False(t, access.HttpOnly)
		assert.Equal(t, "/", access.Path)
		assert.Equal(t, http.SameSiteLaxMode, access.SameSite)

		refresh := responseCookie(t, resp, RefreshTokenCookie)
		assert.NotEmpty(t, refresh.Value)
		assert.True(t, refresh.HttpOnly)
		assert.Equal(t, "/", refresh.Path)

		// Tokens travel only in cookies, never in the redirect target.
		assert.NotContains(t, resp.Header.Get("Location"), access.Value)
		assert.NotContains(t, resp.Header.Get("Location"), refresh.Value)
	})

	t.Run("alias path serves the same callback", func(t *testing.T) {
		t.Parallel()

		f := newHandlerFixture(t, verifiedProfile())
		connect := f.do(httptest.NewRequest(http.MethodGet, "/connect/google", nil))
		authURL, err := url.Parse(connect.Header.Get("Location"))
		require.NoError(t, err)

		resp := f.do(httptest.NewRequest(http.MethodGet,
			"/auth/google/callback?code=the-code&state="+url.QueryEscape(authURL.Query().Get("state")), nil))
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/auth/callback", resp.Header.Get("Location"))
	})

	t.Run("forged state redirects to the error page without cookies", func(t *testing.T) {
		t.Parallel()

		f := newHandlerFixture(t, verifiedProfile())
		resp := f.do(httptest.NewRequest(http.MethodGet,
			"/connect/google/callback?code=the-code&state=forged", nil))

		assert.Equal(t, http.StatusFound, resp.StatusCode)
		loc, err := url.Parse(resp.Header.Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, "/auth/error", loc.Path)
		assert.Equal(t, msgCSRF, loc.Query().Get("message"))
		assert.Empty(t, resp.Cookies())
		assert.Zero(t, f.users.count())
	})

	t.Run("replayed state is rejected like a forged one", func(t *testing.T) {
		t.Parallel()

		f := newHandlerFixture(t, verifiedProfile())
		connect := f.do(httptest.NewRequest(http.MethodGet, "/connect/google", nil))
		authURL, err := url.Parse(connect.Header.Get("Location"))
		require.NoError(t, err)
		state := authURL.Query().Get("state")

		path := "/connect/google/callback?code=the-code&state=" + url.QueryEscape(state)
		first := f.do(httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, "/auth/callback", first.Header.Get("Location"))

		second := f.do(httptest.NewRequest(http.MethodGet, path, nil))
		loc, err := url.Parse(second.Header.Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, "/auth/error", loc.Path)
		assert.Equal(t, msgCSRF, loc.Query().Get("message"))
	})

	t.Run("missing code reports a code error", func(t *testing.T) {
		t.Parallel()

		f := newHandlerFixture(t, verifiedProfile())
		connect := f.do(httptest.NewRequest(http.MethodGet, "/connect/google", nil))
		authURL, err := url.Parse(connect.Header.Get("Location"))
		require.NoError(t, err)

		resp := f.do(httptest.NewRequest(http.MethodGet,
			"/connect/google/callback?state="+url.QueryEscape(authURL.Query().Get("state")), nil))
		loc, err := url.Parse(resp.Header.Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, msgCodeMissing, loc.Query().Get("message"))
	})
}

func TestHandler_Refresh(t *testing.T) {
	t.Parallel()

	t.Run("rotates the refresh cookie", func(t *testing.T) {
		t.Parallel()

		f := newHandlerFixture(t, verifiedProfile())
		loginResp := f.login(t)
		oldRefresh := responseCookie(t, loginResp, RefreshTokenCookie)

		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
		req.AddCookie(oldRefresh)
		resp := f.do(req)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		rotated := responseCookie(t, resp, RefreshTokenCookie)
		assert.NotEqual(t, oldRefresh.Value, rotated.Value)
		assert.True(t, rotated.HttpOnly)

		body := decodeBody[struct {
			AccessToken string `json:"accessToken"`
			User        struct {
				ID       int64  `json:"id"`
				Username string `json:"username"`
				Email    string `json:"email"`
			} `json:"user"`
		}](t, resp)
		assert.NotEmpty(t, body.AccessToken)
		assert.Equal(t, int64(1), body.User.ID)
		assert.True(t, strings.HasPrefix(body.User.Username, "member_"))

		// Replaying the consumed token must fail.
		replay := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
		replay.AddCookie(oldRefresh)
		assert.Equal(t, http.StatusUnauthorized, f.do(replay).StatusCode)
	})

	t.Run("missing cookie yields 401", func(t *testing.T) {
		t.Parallel()

		f := newHandlerFixture(t, verifiedProfile())
		resp := f.do(httptest.NewRequest(http.MethodPost, "/auth/refresh", nil))
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown token yields 401", func(t *testing.T) {
		t.Parallel()

		f := newHandlerFixture(t, verifiedProfile())
		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "never-issued"})
		assert.Equal(t, http.StatusUnauthorized, f.do(req).StatusCode)
	})
}

func TestHandler_Logout(t *testing.T) {
	t.Parallel()

	assertCleared := func(t *testing.T, resp *http.Response) {
		t.Helper()
		for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
			c := responseCookie(t, resp, name)
			assert.Empty(t, c.Value)
			assert.Negative(t, c.MaxAge)
		}
	}

	t.Run("revokes the token and clears cookies", func(t *testing.T) {
		t.Parallel()

		f := newHandlerFixture(t, verifiedProfile())
		refresh := responseCookie(t, f.login(t), RefreshTokenCookie)

		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		req.AddCookie(refresh)
		resp := f.do(req)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, decodeBody[map[string]bool](t, resp)["ok"])
		assertCleared(t, resp)

		replay := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
		replay.AddCookie(refresh)
		assert.Equal(t, http.StatusUnauthorized, f.do(replay).StatusCode)
	})

	t.Run("clears cookies even when revocation backend is down", func(t *testing.T) {
		t.Parallel()

		f := newHandlerFixture(t, verifiedProfile())
		refresh := responseCookie(t, f.login(t), RefreshTokenCookie)
		f.svc.refresh = NewRefreshService(brokenDeleteStore{Store: f.store})

		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		req.AddCookie(refresh)
		resp := f.do(req)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assertCleared(t, resp)
	})

	t.Run("succeeds without a session", func(t *testing.T) {
		t.Parallel()

		f := newHandlerFixture(t, verifiedProfile())
		resp := f.do(httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assertCleared(t, resp)
	})
}

func TestHandler_CSRF(t *testing.T) {
	t.Parallel()

	issueToken := func(t *testing.T, f *handlerFixture) string {
		t.Helper()
		resp := f.do(httptest.NewRequest(http.MethodGet, "/auth/csrf", nil))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		token := decodeBody[map[string]string](t, resp)["csrfToken"]
		require.NotEmpty(t, token)
		return token
	}

	t.Run("issues a token", func(t *testing.T) {
		t.Parallel()

		f := newHandlerFixture(t, verifiedProfile())
		issueToken(t, f)
	})

	t.Run("middleware guards mutating methods", func(t *testing.T) {
		t.Parallel()

		f := newHandlerFixture(t, verifiedProfile())
		protected := f.handler.RequireCSRF(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

		serve := func(req *http.Request) *http.Response {
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)
			return rec.Result()
		}

		// Safe methods pass untouched.
		assert.Equal(t, http.StatusNoContent,
			serve(httptest.NewRequest(http.MethodGet, "/posts", nil)).StatusCode)

		// Mutations without a token are forbidden.
		assert.Equal(t, http.StatusForbidden,
			serve(httptest.NewRequest(http.MethodPost, "/posts", nil)).StatusCode)

		// A freshly issued token from the same client IP is accepted, and
		// stays valid for further requests.
		token := issueToken(t, f)
		for range 2 {
			req := httptest.NewRequest(http.MethodPost, "/posts", nil)
			req.Header.Set(CSRFHeader, token)
			assert.Equal(t, http.StatusNoContent, serve(req).StatusCode)
		}

		// A different client IP is rejected.
		mismatch := httptest.NewRequest(http.MethodPost, "/posts", nil)
		mismatch.Header.Set(CSRFHeader, token)
		mismatch.RemoteAddr = "203.0.113.7:4444"
		assert.Equal(t, http.StatusForbidden, serve(mismatch).StatusCode)
	})
}
