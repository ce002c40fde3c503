// Package router provides HTTP routing configuration using Chi.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/remiblancher/capikey/internal/api/handler"
	"github.com/remiblancher/capikey/internal/api/middleware"
	"github.com/remiblancher/capikey/internal/api/service"
	"github.com/remiblancher/capikey/internal/logger"
)

// Config holds router configuration.
type Config struct {
	Version      string
	StrictXML    bool
	MaxBodyBytes int64
	Logger       logger.Logger
}

// New creates a new Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recoverer(log))
	if cfg.MaxBodyBytes > 0 {
		r.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	}

	healthHandler := handler.NewHealthHandler(cfg.Version)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	keyHandler := handler.NewKeyHandler(service.NewKeyService(cfg.StrictXML, log))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/blob", func(r chi.Router) {
			r.Post("/parse", keyHandler.Parse)
			r.Post("/build", keyHandler.Build)
			r.Post("/weaken", keyHandler.Weaken)
		})
		r.Get("/layout/{bits}", keyHandler.Layout)
		r.Post("/xml/redact", keyHandler.Redact)
	})

	return r
}
