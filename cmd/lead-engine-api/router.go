// Package main provides the API router setup.
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/spherical-ai/spherical/libs/lead-engine/cmd/lead-engine-api/handlers"
	"github.com/spherical-ai/spherical/libs/lead-engine/cmd/lead-engine-api/middleware"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/app"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/observability"
)

// NewRouter creates the main API router with all routes configured.
func NewRouter(logger *observability.Logger, svc *app.Services) http.Handler {
	cfg := svc.Config
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Trace)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	if cfg.Server.WriteTimeout > 0 {
		r.Use(chimiddleware.Timeout(cfg.Server.WriteTimeout))
	}

	healthHandler := handlers.NewHealthHandler(cfg.Observability.ServiceName, svc.DB)
	leadHandler := handlers.NewLeadHandler(logger, svc.Repos.Leads, svc.Cache, svc.Exporter)
	ingestionHandler := handlers.NewIngestionHandler(logger, svc.Pipeline, svc.Repos.Uploads, cfg.Ingestion.MaxUploadBytes)
	searchHandler := handlers.NewSearchHandler(logger, svc.Scorer)
	aiHandler := handlers.NewAIHandler(logger, svc.AI)

	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/leads", func(r chi.Router) {
			r.Get("/", leadHandler.List)
			r.Post("/", leadHandler.Create)
			r.Post("/upload", ingestionHandler.Upload)
			r.Get("/export", leadHandler.Export)
			r.Get("/{id}", leadHandler.Get)
			r.Put("/{id}", leadHandler.Update)
			r.Delete("/{id}", leadHandler.Delete)
		})

		r.Post("/search", searchHandler.Search)

		r.Route("/ai", func(r chi.Router) {
			r.Get("/overview", aiHandler.Overview)
			r.Post("/match", aiHandler.Match)
		})

		r.Get("/uploads", ingestionHandler.History)
	})

	return r
}
