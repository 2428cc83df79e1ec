package app

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/markdave123-py/Docsense/internal/api/handlers"
	appMiddleware "github.com/markdave123-py/Docsense/internal/api/middlewares"
	"github.com/markdave123-py/Docsense/internal/auth"
	"github.com/markdave123-py/Docsense/internal/config"
	"github.com/markdave123-py/Docsense/internal/core/textcache"
)

// Routes collects the handlers a Server mounts. Auth and OAuth are nil when
// the corresponding AUTH_MODE is off; Tokens is set whenever Auth is.
type Routes struct {
	Ask    *handlers.AskHandler
	Auth   *handlers.AuthHandler
	OAuth  *handlers.OAuthHandler
	Tokens *auth.TokenIssuer
	Cache  *textcache.Cache
}

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	router     chi.Router
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, routes Routes) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: !slices.Contains(cfg.AllowedOrigins, "*"),
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		body := map[string]any{"status": "ok"}
		if routes.Cache != nil {
			body["cache"] = routes.Cache.Stats()
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	})

	if routes.Auth == nil {
		r.Post("/ask", routes.Ask.Ask)
	} else {
		// public endpoints
		r.Post("/signup", routes.Auth.Signup)
		r.Post("/token", routes.Auth.Token)
		if routes.OAuth != nil {
			r.Get("/google-login", routes.OAuth.Login)
			r.Get("/google-callback", routes.OAuth.Callback)
		}

		// protected endpoints
		r.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.JWTMiddleware(routes.Tokens))
			protected.Post("/ask", routes.Ask.Ask)
			protected.Get("/me", routes.Auth.Me)
			protected.Get("/documents", routes.Auth.Documents)
		})
	}

	// Serve the frontend when it is shipped alongside the binary.
	if info, err := os.Stat(cfg.StaticDir); err == nil && info.IsDir() {
		r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Server{httpServer: httpSrv, router: r}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	slog.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
