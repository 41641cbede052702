// Package httpapi exposes the identification service over HTTP: the
// scan endpoint, the stats endpoint, static card image serving, and a
// client-bundle fallback route (§6).
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the chi router for /health, /api/identify, /api/stats,
// static card image serving under /card_images, and a static-asset
// fallback for everything else (the client bundle).
func NewRouter(h *Handlers, cardImagesDir, staticDir string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.Health)
	r.Post("/api/identify", h.Identify)
	r.Get("/api/stats", h.Stats)
	r.Handle("/metrics", promhttp.Handler())

	fileServer := http.StripPrefix("/card_images/", http.FileServer(http.Dir(cardImagesDir)))
	r.Get("/card_images/*", fileServer.ServeHTTP)

	if staticDir != "" {
		r.NotFound(http.FileServer(http.Dir(staticDir)).ServeHTTP)
	}

	return r
}
