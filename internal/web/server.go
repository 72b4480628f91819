// Package web serves the bridge's HTTP API: library listings, player state
// and commands, service dispatch, search, and a manual refresh hook.
package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tidalbridge/tidalbridge/internal/bridge"
	"github.com/tidalbridge/tidalbridge/internal/coordinator"
	"github.com/tidalbridge/tidalbridge/internal/entity"
)

// DefaultAddr is the default server address.
const DefaultAddr = "127.0.0.1:8080"

// Library is the slice of the refresh coordinator the API serves.
type Library interface {
	entity.Library
	State() coordinator.State
	Stale() bool
	RefreshNow(ctx context.Context) (bool, error)
}

// ServerConfig holds the server address and the components the API exposes.
type ServerConfig struct {
	Addr    string
	Library Library
	Player  *entity.Player
	Actions *bridge.Service
}

// Server is the HTTP server for the bridge API.
type Server struct {
	router   chi.Router
	server   *http.Server
	handlers *Handlers
}

// NewServer creates a new API server.
func NewServer(cfg ServerConfig) *Server {
	addr := cfg.Addr
	if addr == "" {
		addr = DefaultAddr
	}

	router := chi.NewRouter()

	s := &Server{
		router:   router,
		handlers: NewHandlers(cfg.Library, cfg.Player, cfg.Actions),
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         addr,
		Handler:      otelhttp.NewHandler(router, "tidalbridge.http"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware for the router.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

// setupRoutes configures routes for the API.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handlers.Health)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/library", s.handlers.Library)
		r.Get("/library/{kind}", s.handlers.LibraryKind)
		r.Get("/player", s.handlers.PlayerStatus)
		r.Post("/player/{command}", s.handlers.PlayerCommand)
		r.Get("/browse", s.handlers.Browse)
		r.Get("/search", s.handlers.Search)
		r.Post("/services/{service}", s.handlers.Service)
		r.Post("/refresh", s.handlers.Refresh)
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	log.Printf("Starting server at http://%s", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Run starts the server and handles graceful shutdown on interrupt signals.
func (s *Server) Run() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-stop:
		log.Println("Shutting down server...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Println("Server stopped")
	return nil
}
