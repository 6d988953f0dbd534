package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/communitylabs/authcore/migrations"
	"github.com/communitylabs/authcore/pkg/config"
	"github.com/communitylabs/authcore/pkg/httpserver"
	"github.com/communitylabs/authcore/pkg/kvstore"
	"github.com/communitylabs/authcore/pkg/logger"
	"github.com/communitylabs/authcore/pkg/pg"
	"github.com/communitylabs/authcore/svc/auth"
)

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("authd exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var authCfg auth.Config
	if err := config.Load(&authCfg); err != nil {
		return err
	}
	var kvCfg kvstore.Config
	if err := config.Load(&kvCfg); err != nil {
		return err
	}
	var pgCfg pg.Config
	if err := config.Load(&pgCfg); err != nil {
		return err
	}
	var httpCfg httpserver.Config
	if err := config.Load(&httpCfg); err != nil {
		return err
	}

	log := logger.New(logger.WithEnvironment(authCfg.AppEnv, "authd"))
	logger.SetAsDefault(log)

	if authCfg.CSRFAllowIPMismatch && authCfg.IsProduction() {
		log.Error("CSRF_ALLOW_IP_MISMATCH is enabled in production; IP binding is weakened")
	}

	store := kvstore.Open(ctx, kvCfg, log)
	defer func() { _ = store.Close() }()

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, migrations.FS, ".", log); err != nil {
		return err
	}

	pseudoSecret, err := authCfg.PseudonymizationSecret(log)
	if err != nil {
		return err
	}
	pseudo, err := auth.NewPseudonymizer(pseudoSecret, authCfg.PseudonymDomain)
	if err != nil {
		return err
	}

	issuer, err := auth.NewJWTIssuer(authCfg.AppSecret, authCfg.AccessTokenTTL)
	if err != nil {
		return err
	}

	refresh := auth.NewRefreshService(store,
		auth.WithRefreshTTL(authCfg.RefreshTokenTTL),
		auth.WithRefreshLogger(log),
	)
	csrf := auth.NewCSRFService(store,
		auth.WithCSRFTTL(authCfg.CSRFTokenTTL),
		auth.WithAllowIPMismatch(authCfg.CSRFAllowIPMismatch),
		auth.WithCSRFLogger(log),
	)

	providers := authCfg.Providers()
	googleCfg, _ := providers.Get(auth.ProviderGoogle)

	svc := auth.NewService(
		store,
		auth.NewPgUserRepository(pool),
		issuer,
		refresh,
		providers,
		pseudo,
		auth.WithAdapter(auth.NewGoogleAdapter(*googleCfg)),
		auth.WithLogger(log),
		auth.WithStateTTL(authCfg.StateTTL),
		auth.WithVerifiedOnly(authCfg.VerifiedOnly),
	)

	transport := auth.NewCookieTransport(authCfg.IsProduction(), authCfg.AccessTokenTTL, authCfg.RefreshTokenTTL)
	handler := auth.NewHandler(svc, csrf, transport,
		auth.WithHandlerLogger(log),
		auth.WithRedirects(authCfg.SuccessRedirect, authCfg.ErrorRedirect),
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Mount("/", handler.Router())

	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))
	return srv.Run(ctx, r)
}

// requestLogger emits one structured log line per request.
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.InfoContext(r.Context(), "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}
