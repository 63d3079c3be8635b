// Package router wires HTTP routes to handlers and shared middleware.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/homedger-dev/homedger/internal/setup"
	"github.com/homedger-dev/homedger/shared/middleware/metrics"
)

// New creates and configures the chi router with all routes.
func New(deps *setup.Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:8081"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	h := deps.Handler
	authMw := deps.AuthMiddleware

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMw.NeedAuth())
			r.Post("/attachments", h.CreateAttachment)
			r.Get("/attachments", h.ListAttachments)
			r.Get("/attachments/{attachment}", h.GetAttachment)
		})
		r.Group(func(r chi.Router) {
			r.Use(authMw.AdminOnly())
			r.Delete("/attachments/{attachment}", h.DeleteAttachment)
		})
	})

	return r
}
