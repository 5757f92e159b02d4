package api

import (
	"context"
	"net/http"
	"time"

	"github.com/ignite/listpilot/internal/config"
)

// Server wraps the HTTP server and its routed handlers.
type Server struct {
	cfg     config.ServerConfig
	handler http.Handler
	server  *http.Server
}

// NewServer creates an API server. tokens are the accepted bearer tokens;
// an empty slice disables authentication.
func NewServer(cfg config.ServerConfig, h *Handlers, tokens []string) *Server {
	return &Server{
		cfg:     cfg,
		handler: SetupRoutes(h, tokens),
	}
}

// ListenAndServe starts the HTTP server on the configured address.
func (s *Server) ListenAndServe() error {
	s.server = &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.handler,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.handler
}
