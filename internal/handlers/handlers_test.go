package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"bordersense/surveillance/internal/detection"
	"bordersense/surveillance/internal/feedback"
	"bordersense/surveillance/internal/models"
	"bordersense/surveillance/internal/repositories"
	"bordersense/surveillance/internal/retraining"
	"bordersense/surveillance/internal/testhelpers"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type recordedEmitter struct {
	mu     sync.Mutex
	events []string
}

func (e *recordedEmitter) Emit(name string, payload interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, name)
}

type noopEnqueuer struct{}

func (noopEnqueuer) Enqueue(feedbackID string) {}

// fixture wires the full handler stack onto an in-memory database with a
// best-effort emitter stub.
type fixture struct {
	router   *chi.Mux
	db       *gorm.DB
	alerts   *repositories.AlertRepository
	registry *repositories.ModelRepository
	emitter  *recordedEmitter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testhelpers.SetupTestDB(t)
	alertRepo := &repositories.AlertRepository{DB: db}
	modelRepo := &repositories.ModelRepository{DB: db}
	feedbackRepo := &repositories.FeedbackRepository{DB: db}
	emitter := &recordedEmitter{}
	logger := zap.NewNop()

	cache := detection.NewModelCache(5*time.Minute, nil)
	resolver := detection.NewResolver(modelRepo, cache)
	pipeline := detection.NewPipeline(resolver, alertRepo, emitter, 0.65, logger)
	intake := feedback.NewIntake(feedbackRepo, alertRepo, modelRepo, noopEnqueuer{}, 100, logger)
	controller := retraining.NewController(
		feedbackRepo, alertRepo, modelRepo, retraining.SimulatedTrainer{},
		resolver, emitter, nil,
		retraining.Config{Schedule: "@every 1h", BatchSize: 50, MinGroupSize: 10, FeedbackThreshold: 100},
		nil, logger,
	)

	alertHandler := NewAlertHandler(alertRepo, emitter)
	detectionHandler := NewDetectionHandler(pipeline)
	feedbackHandler := NewFeedbackHandler(intake)
	modelHandler := NewModelHandler(modelRepo, resolver, controller)

	router := chi.NewRouter()
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/alerts", alertHandler.ListAlerts)
		r.Post("/alerts", alertHandler.CreateAlert)
		r.Post("/alerts/{id}/acknowledge", alertHandler.AcknowledgeAlert)
		r.Post("/detections", detectionHandler.Ingest)
		r.Post("/feedback", feedbackHandler.SubmitFeedback)
		r.Get("/feedback/alert/{alertId}", feedbackHandler.GetAlertFeedback)
		r.Get("/feedback/stats", feedbackHandler.GetFeedbackStats)
		r.Get("/models", modelHandler.ListModels)
		r.Post("/models", modelHandler.CreateModel)
		r.Get("/models/needs-retraining", modelHandler.NeedsRetraining)
		r.Get("/models/{id}", modelHandler.GetModel)
		r.Put("/models/{id}", modelHandler.UpdateModel)
		r.Delete("/models/{id}", modelHandler.DeleteModel)
		r.Post("/models/{id}/metrics", modelHandler.AddMetric)
		r.Post("/models/{id}/version", modelHandler.AddVersion)
		r.Post("/retraining/run", modelHandler.RunRetraining)
	})

	return &fixture{
		router:   router,
		db:       db,
		alerts:   alertRepo,
		registry: modelRepo,
		emitter:  emitter,
	}
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeResp(t *testing.T, rec *httptest.ResponseRecorder) models.Resp {
	t.Helper()
	var resp models.Resp
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed decoding response: %v", err)
	}
	return resp
}

func (f *fixture) seedAlert(t *testing.T, modelID *string) *models.Alert {
	t.Helper()
	alert := &models.Alert{
		Type: "unauthorized-crossing", Severity: models.SeverityMedium,
		Confidence: 0.8, ModelID: modelID,
	}
	if err := f.alerts.Create(alert); err != nil {
		t.Fatalf("failed seeding alert: %v", err)
	}
	return alert
}
