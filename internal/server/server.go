package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/config"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/handler"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/handler/auth"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/handler/drive"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/httputil"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/logging"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/metrics"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/middleware"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/spa"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/svc"
)

// ServerOptions holds optional dependencies for the server
type ServerOptions struct {
	SvcCtx *svc.ServiceContext // Pre-initialized service context
	// Fallback serves every unmatched route. When nil it is built from the
	// config: the dev proxy in development, the static SPA otherwise.
	Fallback http.Handler
	// Listener overrides binding c.Addr().
	Listener net.Listener
}

// Run starts the PromptMetal backend with the given configuration.
// It blocks until the context is cancelled or the listener fails.
func Run(ctx context.Context, c config.Config, opts ...ServerOptions) error {
	var o ServerOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	return run(ctx, c, o)
}

func run(ctx context.Context, c config.Config, opts ServerOptions) error {
	svcCtx := opts.SvcCtx
	if svcCtx == nil {
		var err error
		if svcCtx, err = svc.NewServiceContext(c); err != nil {
			return err
		}
	}

	fallback := opts.Fallback
	if fallback == nil {
		fallback = newFallback(c)
	}

	ln := opts.Listener
	if ln == nil {
		var err error
		if ln, err = net.Listen("tcp", c.Addr()); err != nil {
			return fmt.Errorf("port %d is already in use or unavailable: %w", c.Server.Port, err)
		}
	}

	httpServer := &http.Server{
		Handler:           NewRouter(svcCtx, fallback),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logging.Info("backend listening", "addr", ln.Addr().String(), "mode", c.App.Env, "url", c.BaseURL())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logging.Info("shutting down backend", "timeout", c.Server.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.Server.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newFallback(c config.Config) http.Handler {
	if !c.IsProduction() {
		h, err := spa.DevProxy(c.Server.DevServerURL)
		if err != nil {
			logging.Warn("invalid dev server URL, front end will not be served", "url", c.Server.DevServerURL, "error", err)
			return nil
		}
		logging.Info("proxying front end to dev server", "url", c.Server.DevServerURL)
		return h
	}
	h, err := spa.DirHandler(c.Server.StaticDir)
	if err != nil {
		logging.Warn("front-end build not found, run the web build first", "dir", c.Server.StaticDir, "error", err)
		return nil
	}
	return h
}

// NewRouter builds the backend routes. fallback may be nil.
func NewRouter(svcCtx *svc.ServiceContext, fallback http.Handler) http.Handler {
	c := svcCtx.Config

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORSMiddleware(c.BaseURL(), c.Server.DevServerURL))
	r.Use(svcCtx.HTTPMetrics.Middleware)

	r.Get("/health", handler.HealthCheckHandler(svcCtx))
	r.Handle("/metrics", metrics.Handler(svcCtx.Registry))

	authLimiter, apiLimiter := passthrough, passthrough
	if c.IsRateLimitEnabled() {
		authLimiter = middleware.NewRateLimiter(middleware.AuthRateLimitConfig()).Middleware()
		apiLimiter = middleware.NewRateLimiter(middleware.RateLimitConfig{
			RequestsPerSecond: c.Security.RateLimitPerSecond,
			Burst:             c.Security.RateLimitBurst,
		}).Middleware()
	}

	// Redirect URI registered with Google
	r.With(authLimiter).Get("/auth/google/callback", auth.GoogleCallbackHandler(svcCtx))

	r.Route("/api", func(r chi.Router) {
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			httputil.NotFound(w, "")
		})

		// The callback page runs an inline script, so it stays outside the
		// API content security policy.
		r.With(authLimiter).Get("/auth/google/callback", auth.GoogleCallbackHandler(svcCtx))

		r.Group(func(r chi.Router) {
			if c.IsSecurityHeadersEnabled() {
				r.Use(middleware.SecurityHeadersMiddleware())
			}

			r.Group(func(r chi.Router) {
				r.Use(authLimiter)
				registerAuthRoutes(r, svcCtx)
			})

			r.Group(func(r chi.Router) {
				r.Use(apiLimiter)
				r.Get("/auth/google/status", auth.GoogleStatusHandler(svcCtx))
				r.Post("/auth/google/logout", auth.GoogleLogoutHandler(svcCtx))

				r.Group(func(r chi.Router) {
					r.Use(middleware.GoogleSessionMiddleware(svcCtx.Sessions))
					registerDriveRoutes(r, svcCtx)
				})
			})
		})
	})

	// SPA fallback - serve frontend for all other routes
	if fallback != nil {
		r.NotFound(fallback.ServeHTTP)
	}
	return r
}

// registerAuthRoutes registers the OAuth routes with stricter rate limiting
func registerAuthRoutes(r chi.Router, svcCtx *svc.ServiceContext) {
	r.Get("/auth/google/url", auth.GoogleURLHandler(svcCtx))
}

// registerDriveRoutes registers the Drive passthrough; callers must already
// hold a Google session.
func registerDriveRoutes(r chi.Router, svcCtx *svc.ServiceContext) {
	r.Post("/drive/backup", drive.BackupHandler(svcCtx))
	r.Get("/drive/restore", drive.RestoreHandler(svcCtx))
	r.Get("/drive/history", drive.HistoryHandler(svcCtx))
	r.Post("/drive/upload-file", drive.UploadFileHandler(svcCtx))
}

func passthrough(next http.Handler) http.Handler { return next }
