package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(mux chi.Router, h *Handlers, metricsHandler http.Handler) {
	mux.Get("/health", h.Health)
	mux.Get("/version", h.Version)
	mux.Post("/api/chat", h.Chat)

	if metricsHandler != nil {
		mux.Method(http.MethodGet, "/metrics", metricsHandler)
	}
}
