// Package web provides the HTTP server and handlers for the inventory grid UI.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/JonMunkholm/stockpilot/internal/analysis"
	"github.com/JonMunkholm/stockpilot/internal/config"
	"github.com/JonMunkholm/stockpilot/internal/session"
	"github.com/JonMunkholm/stockpilot/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Analyzer answers natural-language questions about serialized table text.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (*analysis.Result, error)
	Enabled() bool
}

// Server is the HTTP server for the inventory application.
type Server struct {
	cfg      *config.Config
	sessions *session.Manager
	analyzer Analyzer

	router        *chi.Mux
	server        *http.Server
	limiter       *middleware.RateLimiter
	uploadLimiter *middleware.RateLimiter
}

// NewServer creates a new Server instance. analyzer may be nil, which
// disables the analyze endpoint.
func NewServer(cfg *config.Config, sessions *session.Manager, analyzer Analyzer) *Server {
	s := &Server{
		cfg:      cfg,
		sessions: sessions,
		analyzer: analyzer,
		router:   chi.NewRouter(),
	}
	if cfg.Rate.Enabled {
		s.limiter = middleware.NewRateLimiter(cfg.Rate.RequestsPerMinute, time.Minute)
		s.uploadLimiter = middleware.NewRateLimiter(cfg.Rate.UploadLimit, time.Minute)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(middleware.SecurityHeaders(s.cfg.Security.EnableCSP))

	if s.limiter != nil {
		s.router.Use(s.limiter.Handler)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	// Pages share the /api key so their HTMX calls authenticate through
	// the cookie set on sign-in.
	s.router.Group(func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(&s.cfg.Security))
		r.Get("/", s.handleIndex)
		r.Get("/w/{id}", s.handleWorkspacePage)
		r.Post("/w/{id}/sort/{column}", s.handleToggleSort)
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(&s.cfg.Security))

		r.Group(func(r chi.Router) {
			// Uploads and analyses are expensive; they get a tighter budget.
			if s.uploadLimiter != nil {
				r.Use(s.uploadLimiter.Handler)
			}
			r.Post("/workspaces", s.handleCreateWorkspace)
			r.Post("/workspaces/{id}/file", s.handleReplaceFile)
			r.Post("/workspaces/{id}/analyze", s.handleAnalyze)
		})

		if s.cfg.Security.RequireAPIKey {
			r.Get("/workspaces", s.handleListWorkspaces)
		}
		r.Get("/workspaces/{id}", s.handleWorkspaceInfo)
		r.Delete("/workspaces/{id}", s.handleDeleteWorkspace)
		r.Get("/workspaces/{id}/table", s.handleTableSnapshot)
		r.Get("/workspaces/{id}/stats", s.handleStats)
		r.Post("/workspaces/{id}/cells", s.handleUpdateCell)
		r.Get("/workspaces/{id}/history", s.handleHistory)
		r.Post("/workspaces/{id}/history/{entryID}/revert", s.handleRevert)
		r.Get("/workspaces/{id}/export", s.handleExport)
		r.Get("/analysis/status", s.handleAnalysisStatus)
	})
}

// StartBackground runs the rate limiter cleanup loops until ctx is cancelled.
func (s *Server) StartBackground(ctx context.Context) {
	for _, rl := range []*middleware.RateLimiter{s.limiter, s.uploadLimiter} {
		if rl != nil {
			go rl.StartCleanup(ctx)
		}
	}
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) analysisEnabled() bool {
	return s.analyzer != nil && s.analyzer.Enabled()
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
