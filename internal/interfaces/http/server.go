package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/turtacn/KeyIP-Renewals/internal/config"
	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/monitoring/logging"
)

// Server wraps http.Server with the configured timeouts.
type Server struct {
	srv             *http.Server
	shutdownTimeout time.Duration
	logger          logging.Logger
}

// NewServer serves handler on cfg.Port.
func NewServer(cfg config.ServerConfig, handler http.Handler, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Server{
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       60 * time.Second,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger.Named("http"),
	}
}

// Addr is the configured listen address.
func (s *Server) Addr() string { return s.srv.Addr }

// Start blocks serving until Stop.  A clean shutdown returns nil.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.srv.Addr, err)
	}
	return s.Serve(ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("http server listening", logging.String("addr", ln.Addr().String()))
	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop drains in-flight requests for at most the shutdown timeout.
func (s *Server) Stop(ctx context.Context) error {
	if s.shutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.shutdownTimeout)
		defer cancel()
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}

// Handler returns the served handler.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

//Personal.AI order the ending
