package auth

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/communitylabs/authcore/pkg/clientip"
	"github.com/communitylabs/authcore/pkg/logger"
)

// Browser-facing failure messages. CSRF-class failures always present the
// same generic text so internal state never leaks to the error page.
const (
	msgCSRF            = "Possible CSRF attack: state is missing or invalid"
	msgCodeMissing     = "Authorization code is missing"
	msgProviderTimeout = "Connection to the identity provider timed out"
	msgUnavailable     = "This login provider is not available"
	msgUnverified      = "The provider did not verify your email address"
	msgGeneric         = "Authentication failed"
)

// Handler exposes the auth service over HTTP.
type Handler struct {
	svc       *Service
	csrf      *CSRFService
	transport *CookieTransport
	log       *slog.Logger

	successRedirect string
	errorRedirect   string
}

// HandlerOption configures a Handler during construction.
type HandlerOption func(*Handler)

// WithHandlerLogger configures the logger for the handler.
func WithHandlerLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) {
		h.log = l
	}
}

// WithRedirects overrides the post-login landing route and the error route.
func WithRedirects(success, failure string) HandlerOption {
	return func(h *Handler) {
		if success != "" {
			h.successRedirect = success
		}
		if failure != "" {
			h.errorRedirect = failure
		}
	}
}

// NewHandler wires the flow service, CSRF service and cookie transport into
// an HTTP surface.
func NewHandler(svc *Service, csrf *CSRFService, transport *CookieTransport, opts ...HandlerOption) *Handler {
	h := &Handler{
		svc:             svc,
		csrf:            csrf,
		transport:       transport,
		log:             slog.New(slog.NewTextHandler(io.Discard, nil)),
		successRedirect: "/auth/callback",
		errorRedirect:   "/auth/error",
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router mounts all auth endpoints. None of them require prior authentication.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/connect/{provider}", h.connect)
	r.Get("/connect/{provider}/callback", h.callback)
	// Alias kept for clients that were built against the older path layout.
	r.Get("/auth/{provider}/callback", h.callback)

	r.Post("/auth/refresh", h.refresh)
	r.Post("/auth/logout", h.logout)
	r.Get("/auth/csrf", h.csrfToken)

	return r
}

func (h *Handler) connect(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	authURL, err := h.svc.BeginAuth(r.Context(), provider)
	if err != nil {
		h.log.WarnContext(r.Context(), "connect rejected",
			logger.Provider(provider),
			logger.Error(err),
			logger.Component("auth_http"),
		)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgUnavailable})
		return
	}

	http.Redirect(w, r, authURL, http.StatusFound)
}

func (h *Handler) callback(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	query := r.URL.Query()

	sess, err := h.svc.CompleteAuth(r.Context(), provider, query.Get("code"), query.Get("state"))
	if err != nil {
		h.log.WarnContext(r.Context(), "oauth callback failed",
			logger.Provider(provider),
			logger.Error(err),
			logger.Component("auth_http"),
		)
		h.redirectError(w, r, err)
		return
	}

	// Cookies are the only transport; tokens never ride in the redirect URL.
	h.transport.Write(w, sess)
	http.Redirect(w, r, h.successRedirect, http.StatusFound)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	token, err := h.transport.RefreshToken(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "refresh token is missing"})
		return
	}

	sess, err := h.svc.Refresh(r.Context(), token)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) || errors.Is(err, ErrUserNotFound) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid or expired refresh token"})
			return
		}
		h.log.ErrorContext(r.Context(), "refresh failed",
			logger.Error(err),
			logger.Component("auth_http"),
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	// The old refresh token is already consumed; rotate the cookie.
	h.transport.WriteRefresh(w, sess.RefreshToken)
	writeJSON(w, http.StatusOK, map[string]any{
		"accessToken": sess.AccessToken,
		"user": map[string]any{
			"id":       sess.User.ID,
			"username": sess.User.Username,
			"email":    sess.User.Email,
		},
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if token, err := h.transport.RefreshToken(r); err == nil {
		h.svc.Logout(r.Context(), token)
	}

	// Cookies are cleared unconditionally; logout must never leave client
	// state behind, whatever happened to revocation.
	h.transport.ClearAll(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) csrfToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.csrf.Issue(r.Context(), clientip.GetIP(r))
	if err != nil {
		h.log.ErrorContext(r.Context(), "csrf token issuance failed",
			logger.Error(err),
			logger.Component("auth_http"),
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"csrfToken": token})
}

// CSRFHeader is the request header checked by RequireCSRF.
const CSRFHeader = "X-CSRF-Token"

// RequireCSRF guards state-changing endpoints: non-safe methods must present
// a valid CSRF token in the X-CSRF-Token header. Mount it on application
// routes that mutate state; the auth endpoints themselves stay outside it.
func (h *Handler) RequireCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		if !h.csrf.Validate(r.Context(), r.Header.Get(CSRFHeader), clientip.GetIP(r)) {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "invalid csrf token"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// redirectError sends the browser to the error route with a url-encoded,
// human-readable message. No retry happens server-side; the client's redirect
// cycle is the retry mechanism.
func (h *Handler) redirectError(w http.ResponseWriter, r *http.Request, err error) {
	http.Redirect(w, r, h.errorRedirect+"?message="+url.QueryEscape(publicMessage(err)), http.StatusFound)
}

// publicMessage maps flow errors to user-facing text. Upstream rejections
// keep their status code for observability; everything unexpected collapses
// to a generic message.
func publicMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidState):
		return msgCSRF
	case errors.Is(err, ErrCodeMissing):
		return msgCodeMissing
	case errors.Is(err, ErrProviderTimeout):
		return msgProviderTimeout
	case errors.Is(err, ErrProviderDisabled), errors.Is(err, ErrUnknownProvider):
		return msgUnavailable
	case errors.Is(err, ErrUnverifiedEmail), errors.Is(err, ErrNoPrimaryEmail):
		return msgUnverified
	case errors.Is(err, ErrExchangeFailed), errors.Is(err, ErrProfileFetch):
		return err.Error()
	default:
		return msgGeneric
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
