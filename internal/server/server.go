// package server exposes the local cache as a read-only JSON API for browser
// dashboards and scripting. It never accepts writes; mutations go through the
// CLI so they are validated and published to relays.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/hearthkeep/hearth/internal/repositories"
	"github.com/hearthkeep/hearth/internal/shared"
)

// Server wraps an http.Server bound to the configured local address.
type Server struct {
	registry   *repositories.Registry
	logger     *log.Logger
	httpServer *http.Server
}

// New creates a Server for the registry, listening per config.
func New(registry *repositories.Registry, config shared.ServerConfig, logger *log.Logger) *Server {
	s := &Server{
		registry: registry,
		logger:   shared.WithLogger(logger, "component", "server"),
	}
	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(config.Host, fmt.Sprintf("%d", config.Port)),
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Handler returns the full request handler: the route tree behind the
// read-only method gate.
func (s *Server) Handler() http.Handler {
	return ReadOnly(s.Router())
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string { return s.httpServer.Addr }

// Start blocks serving requests until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("serving local API", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
