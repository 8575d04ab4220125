package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMiddlewarePassesThrough(t *testing.T) {
	handler := Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/alerts", nil))

	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected status preserved, got %d", rec.Code)
	}
	if rec.Body.String() != "short and stout" {
		t.Fatalf("expected body preserved, got %q", rec.Body.String())
	}
}

func TestMetricsEndpointServes(t *testing.T) {
	AlertProduced("High")
	CandidateGated()
	FeedbackRecorded()
	RetrainingCycle()
	ModelRetrained()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Fatal("expected metrics exposition output")
	}
}
