// Package server provides HTTP server lifecycle management.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/remiblancher/capikey/internal/api/router"
	"github.com/remiblancher/capikey/internal/config"
	"github.com/remiblancher/capikey/internal/logger"
)

// Server runs the key conversion API.
type Server struct {
	cfg     *config.Config
	version string
	log     logger.Logger
	srv     *http.Server
}

// New creates a new Server.
func New(cfg *config.Config, version string, log logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	handler := router.New(&router.Config{
		Version:      version,
		StrictXML:    cfg.XML.Strict,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Logger:       log,
	})
	return &Server{
		cfg:     cfg,
		version: version,
		log:     log,
		srv: &http.Server{
			Addr:         cfg.Server.Address(),
			Handler:      handler,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.srv.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errChan := make(chan error, 1)
	go func() {
		errChan <- s.srv.Serve(ln)
	}()

	s.log.Info("server started",
		logger.String("address", ln.Addr().String()),
		logger.String("version", s.version),
		logger.Bool("strict_xml", s.cfg.XML.Strict))

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	s.log.Info("server stopped")
	return nil
}
