package routers

import (
	"bordersense/surveillance/internal/handlers"
	"bordersense/surveillance/internal/metrics"

	"github.com/go-chi/chi/v5"
)

func HealthRoutes(router *chi.Mux, healthHandler *handlers.HealthHandler) {
	router.Get("/healthz", healthHandler.HealthzHandler)
	router.Get("/readyz", healthHandler.ReadyzHandler)
	router.Handle("/metrics", metrics.Handler())
}

func EventRoutes(router *chi.Mux, eventsHandler *handlers.EventsHandler) {
	router.Get("/ws", eventsHandler.Subscribe)
}
