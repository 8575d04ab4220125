package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"bordersense/surveillance/internal/models"
)

func TestIngestDetections(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/detections", models.DetectionEvent{
		Type:   models.ModelTypeObjectDetection,
		Source: "camera-07",
		Candidates: []models.DetectionCandidate{
			{Type: "weapon-detected", Confidence: 0.92},
			{Type: "unauthorized-crossing", Confidence: 0.3},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		OK   bool `json:"ok"`
		Info struct {
			AlertsCreated int            `json:"alerts_created"`
			Alerts        []models.Alert `json:"alerts"`
		} `json:"info"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed decoding response: %v", err)
	}
	if resp.Info.AlertsCreated != 1 {
		t.Fatalf("expected 1 alert past the default threshold, got %d", resp.Info.AlertsCreated)
	}
	if resp.Info.Alerts[0].Severity != models.SeverityCritical {
		t.Fatalf("expected Critical severity, got %q", resp.Info.Alerts[0].Severity)
	}
}

func TestIngestUsesModelThreshold(t *testing.T) {
	f := newFixture(t)
	if err := f.registry.Create(&models.AIModel{
		Name: "fence-watch", Type: models.ModelTypeObjectDetection,
		ConfidenceThreshold: 0.9, CurrentVersion: "2.0.0",
	}); err != nil {
		t.Fatalf("failed seeding model: %v", err)
	}

	rec := f.do(t, http.MethodPost, "/api/v1/detections", models.DetectionEvent{
		Type: models.ModelTypeObjectDetection,
		Candidates: []models.DetectionCandidate{
			{Type: "unauthorized-crossing", Confidence: 0.8},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Info struct {
			AlertsCreated int `json:"alerts_created"`
		} `json:"info"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed decoding response: %v", err)
	}
	if resp.Info.AlertsCreated != 0 {
		t.Fatalf("expected the model threshold to gate the candidate, got %d alerts", resp.Info.AlertsCreated)
	}
}

func TestIngestRejectsBadInput(t *testing.T) {
	f := newFixture(t)

	cases := []models.DetectionEvent{
		{Type: "sonar"},
		{Type: models.ModelTypeObjectDetection, Candidates: []models.DetectionCandidate{{Confidence: 0.5}}},
		{Type: models.ModelTypeObjectDetection, Candidates: []models.DetectionCandidate{{Type: "x", Confidence: 1.5}}},
	}
	for _, body := range cases {
		if rec := f.do(t, http.MethodPost, "/api/v1/detections", body); rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %+v, got %d", body, rec.Code)
		}
	}
}
