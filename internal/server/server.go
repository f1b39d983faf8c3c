// Package server owns the HTTP surface: router construction, middleware
// ordering, health probes, and graceful shutdown. The super-admin guard is
// installed once on the /admins subtree so the credential check always runs
// before any handler logic.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/kubhq/admind/internal/handler"
	"github.com/kubhq/admind/internal/openapi"
	"github.com/kubhq/admind/internal/server/middleware"
	"github.com/kubhq/admind/internal/service"
	"github.com/kubhq/admind/internal/store"
)

// Config holds the HTTP server configuration.
type Config struct {
	Host               string
	Port               int
	ShutdownTimeout    time.Duration
	CORSOrigins        []string
	RateLimitPerMinute int
	Version            string
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() Config {
	return Config{
		Host:               "0.0.0.0",
		Port:               8080,
		ShutdownTimeout:    30 * time.Second,
		CORSOrigins:        []string{"*"},
		RateLimitPerMinute: 300,
		Version:            "dev",
	}
}

// Server is the top-level HTTP server. It owns the chi router and delegates
// the admin operations to the service layer.
type Server struct {
	cfg        Config
	router     chi.Router
	store      *store.Store
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a Server with all routes and middleware wired, ready for
// ListenAndServe. verify guards the /admins subtree.
func New(cfg Config, st *store.Store, svc *service.AdminService, verify middleware.Verifier, logger *slog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		store:  st,
		logger: logger,
	}
	s.setupRouter(svc, verify)
	return s
}

func (s *Server) setupRouter(svc *service.AdminService, verify middleware.Verifier) {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.SuperAdminHeader, "X-Requested-With"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	if s.cfg.RateLimitPerMinute > 0 {
		r.Use(middleware.RateLimit(s.cfg.RateLimitPerMinute))
	}

	// Health probes, unauthenticated.
	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)

	// API description, unauthenticated.
	spec := openapi.Generate(s.cfg.Version)
	r.Get("/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(spec)
	})

	adminHandler := handler.NewAdminHandler(svc, s.logger)
	r.Route("/admins", func(r chi.Router) {
		r.Use(middleware.RequireSuperAdmin(verify))

		r.Get("/", adminHandler.List)
		r.Post("/", adminHandler.Create)
		r.Get("/{adminID}", adminHandler.Get)
		r.Put("/{adminID}", adminHandler.Update)
		r.Delete("/{adminID}", adminHandler.Delete)
		r.Post("/{adminID}/resend", adminHandler.ResendInvite)
	})

	s.router = r
}

// handleHealthz is a liveness probe. Returns 200 while the process runs.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// handleReadyz is a readiness probe. Returns 200 when the admin store is
// reachable, 503 otherwise.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	httpStatus := http.StatusOK
	if err := s.store.Ping(r.Context()); err != nil {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}

// ListenAndServe starts the server and blocks until SIGINT or SIGTERM, then
// drains in-flight requests within the shutdown timeout.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server listen: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutdown signal received, draining connections")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Router returns the underlying chi router, useful for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ServeHTTP implements http.Handler, delegating to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
