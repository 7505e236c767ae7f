package server

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ziadkadry99/riskpanes/internal/audit"
	"github.com/ziadkadry99/riskpanes/internal/pages"
)

// Config holds server configuration.
type Config struct {
	Addr        string
	CORSOrigins []string
	AllowAll    bool // allow all CORS origins (dev mode)
}

// Deps are the collaborators the server renders pages with.
type Deps struct {
	Audit  *audit.Store // optional toggle trail
	Pages  *pages.Builder
	Data   fs.FS // site root holding data/*.json; nil when data comes from elsewhere
	Static fs.FS
}

// Server serves the risk analysis pages to the local browser.
type Server struct {
	cfg        Config
	deps       Deps
	router     chi.Router
	httpServer *http.Server
}

// New creates a server.
func New(cfg Config, deps Deps) *Server {
	s := &Server{cfg: cfg, deps: deps}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	origins := s.cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	corsOpts := cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Live sessions outlive the request timeout.
	r.Get("/ws/risk", s.handleLive)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Get("/", s.handleHome)
		r.Get("/index.html", s.handleHome)
		r.Get("/riskPage.html", s.handleRisk)
		r.Get("/risk", s.handleRisk)
		r.Post("/risk/toggle", s.handleToggle)
		r.Get("/api/summary/{service}", s.handleSummary)
		if s.deps.Audit != nil {
			audit.RegisterRoutes(r, s.deps.Audit)
		}

		if s.deps.Data != nil {
			r.Handle("/data/*", http.FileServer(http.FS(s.deps.Data)))
		}
		if s.deps.Static != nil {
			r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(s.deps.Static))))
		}
	})

	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start begins listening on the configured address.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	slog.Info("riskpanes server listening", "addr", s.cfg.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
