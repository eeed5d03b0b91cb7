// Package webserver runs the Quality Wheel HTTP API with graceful shutdown.
package webserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host defaults to 127.0.0.1.
	Host string
	// Port defaults to 3000. Use -1 to pick a free port.
	Port int
	// ShutdownTimeout bounds graceful shutdown; zero means 5s.
	ShutdownTimeout time.Duration
	Logger          *slog.Logger
}

// Server wraps the HTTP server with configuration.
type Server struct {
	cfg    Config
	srv    *http.Server
	logger *slog.Logger

	ready chan string
}

// New creates a server that serves handler.
func New(cfg Config, handler http.Handler) (*Server, error) {
	if handler == nil {
		return nil, errors.New("webserver: nil handler")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	switch {
	case cfg.Port == 0:
		cfg.Port = 3000
	case cfg.Port == -1:
		cfg.Port = 0
	case cfg.Port < 0 || cfg.Port > 65535:
		return nil, fmt.Errorf("webserver: invalid port %d", cfg.Port)
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}

	return &Server{
		cfg:    cfg,
		logger: cfg.Logger,
		ready:  make(chan string, 1),
		srv: &http.Server{
			Addr:              net.JoinHostPort(cfg.Host, fmt.Sprint(cfg.Port)),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.srv.Addr
}

// Ready yields the bound address once the listener is open.
func (s *Server) Ready() <-chan string {
	return s.ready
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("HTTP server listen: %w", err)
	}
	addr := ln.Addr().String()
	s.logger.Info("HTTP server starting", "address", addr)
	s.ready <- addr

	stopped := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		select {
		case <-ctx.Done():
		case <-stopped:
			return
		}
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("HTTP server shutdown error", "error", err)
		}
	}()

	err = s.srv.Serve(ln)
	close(stopped)
	<-done
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Handler returns the underlying http.Handler (useful for testing).
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}
