package routers

import (
	"bordersense/surveillance/internal/handlers"

	"github.com/go-chi/chi/v5"
)

// APIRoutes registers the surveillance API surface.
func APIRoutes(
	router *chi.Mux,
	alertHandler *handlers.AlertHandler,
	detectionHandler *handlers.DetectionHandler,
	feedbackHandler *handlers.FeedbackHandler,
	modelHandler *handlers.ModelHandler,
) {
	router.Route("/api/v1/alerts", func(r chi.Router) {
		r.Get("/", alertHandler.ListAlerts)
		r.Post("/", alertHandler.CreateAlert)
		r.Post("/{id}/acknowledge", alertHandler.AcknowledgeAlert)
	})

	router.Post("/api/v1/detections", detectionHandler.Ingest)

	router.Route("/api/v1/feedback", func(r chi.Router) {
		r.Post("/", feedbackHandler.SubmitFeedback)
		r.Get("/alert/{alertId}", feedbackHandler.GetAlertFeedback)
		r.Get("/stats", feedbackHandler.GetFeedbackStats)
	})

	router.Route("/api/v1/models", func(r chi.Router) {
		r.Get("/", modelHandler.ListModels)
		r.Post("/", modelHandler.CreateModel)
		r.Get("/needs-retraining", modelHandler.NeedsRetraining)
		r.Get("/{id}", modelHandler.GetModel)
		r.Put("/{id}", modelHandler.UpdateModel)
		r.Delete("/{id}", modelHandler.DeleteModel)
		r.Post("/{id}/metrics", modelHandler.AddMetric)
		r.Post("/{id}/version", modelHandler.AddVersion)
	})

	router.Post("/api/v1/retraining/run", modelHandler.RunRetraining)
}
