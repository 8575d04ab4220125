package repositories

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"bordersense/surveillance/internal/models"
	"bordersense/surveillance/internal/testhelpers"
)

func seedAlert(t *testing.T, repo *AlertRepository, alert *models.Alert) *models.Alert {
	t.Helper()
	if err := repo.Create(alert); err != nil {
		t.Fatalf("failed seeding alert: %v", err)
	}
	return alert
}

func TestAlertCreateDefaults(t *testing.T) {
	repo := &AlertRepository{DB: testhelpers.SetupTestDB(t)}

	alert := seedAlert(t, repo, &models.Alert{
		Type: "unauthorized-crossing", Severity: models.SeverityMedium, Confidence: 0.8,
	})

	if alert.ID == "" {
		t.Fatal("expected generated id")
	}
	if alert.Status != models.AlertStatusNew {
		t.Fatalf("expected New default, got %q", alert.Status)
	}
	if alert.Timestamp.IsZero() {
		t.Fatal("expected timestamp default")
	}
}

func TestAlertSetStatus(t *testing.T) {
	repo := &AlertRepository{DB: testhelpers.SetupTestDB(t)}
	alert := seedAlert(t, repo, &models.Alert{
		Type: "unauthorized-crossing", Severity: models.SeverityMedium, Confidence: 0.8,
	})

	if err := repo.SetStatus(alert.ID, models.AlertStatusAcknowledged); err != nil {
		t.Fatalf("SetStatus error: %v", err)
	}
	got, err := repo.GetByID(alert.ID)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.Status != models.AlertStatusAcknowledged {
		t.Fatalf("expected Acknowledged, got %q", got.Status)
	}
}

func TestAlertSetStatusNotFound(t *testing.T) {
	repo := &AlertRepository{DB: testhelpers.SetupTestDB(t)}
	if err := repo.SetStatus("missing", models.AlertStatusDismissed); !errors.Is(err, ErrAlertNotFound) {
		t.Fatalf("expected ErrAlertNotFound, got %v", err)
	}
}

func TestAlertSetStatusFinalStates(t *testing.T) {
	repo := &AlertRepository{DB: testhelpers.SetupTestDB(t)}

	cases := []struct {
		name string
		from models.AlertStatus
		to   models.AlertStatus
	}{
		{"dismissed to acknowledged", models.AlertStatusDismissed, models.AlertStatusAcknowledged},
		{"acknowledged to dismissed", models.AlertStatusAcknowledged, models.AlertStatusDismissed},
		{"resolved to dismissed", models.AlertStatusResolved, models.AlertStatusDismissed},
		{"resolved to acknowledged", models.AlertStatusResolved, models.AlertStatusAcknowledged},
	}
	for _, tc := range cases {
		alert := seedAlert(t, repo, &models.Alert{
			Type: "unauthorized-crossing", Severity: models.SeverityMedium,
			Confidence: 0.8, Status: tc.from,
		})

		if err := repo.SetStatus(alert.ID, tc.to); !errors.Is(err, ErrAlertStatusFinal) {
			t.Fatalf("%s: expected ErrAlertStatusFinal, got %v", tc.name, err)
		}
		got, err := repo.GetByID(alert.ID)
		if err != nil {
			t.Fatalf("%s: GetByID error: %v", tc.name, err)
		}
		if got.Status != tc.from {
			t.Fatalf("%s: status changed to %q", tc.name, got.Status)
		}
	}
}

func TestAlertSetStatusIdempotent(t *testing.T) {
	repo := &AlertRepository{DB: testhelpers.SetupTestDB(t)}
	alert := seedAlert(t, repo, &models.Alert{
		Type: "unauthorized-crossing", Severity: models.SeverityMedium,
		Confidence: 0.8, Status: models.AlertStatusAcknowledged,
	})

	if err := repo.SetStatus(alert.ID, models.AlertStatusAcknowledged); err != nil {
		t.Fatalf("expected re-applying the current status to succeed, got %v", err)
	}
	got, _ := repo.GetByID(alert.ID)
	if got.Status != models.AlertStatusAcknowledged {
		t.Fatalf("expected Acknowledged, got %q", got.Status)
	}
}

func TestAppendCommentPreservesSequence(t *testing.T) {
	repo := &AlertRepository{DB: testhelpers.SetupTestDB(t)}
	alert := seedAlert(t, repo, &models.Alert{
		Type: "unauthorized-crossing", Severity: models.SeverityMedium, Confidence: 0.8,
	})

	for i := 0; i < 5; i++ {
		if err := repo.AppendComment(alert.ID, fmt.Sprintf("note %d", i), "operator-1"); err != nil {
			t.Fatalf("AppendComment error: %v", err)
		}
	}

	got, err := repo.GetByID(alert.ID)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if len(got.Comments) != 5 {
		t.Fatalf("expected all 5 comments, got %d", len(got.Comments))
	}
	for i, c := range got.Comments {
		if c.Text != fmt.Sprintf("note %d", i) {
			t.Fatalf("expected insertion order, comment %d is %q", i, c.Text)
		}
	}
}

func TestAppendCommentConcurrentWriters(t *testing.T) {
	repo := &AlertRepository{DB: testhelpers.SetupTestDB(t)}
	alert := seedAlert(t, repo, &models.Alert{
		Type: "unauthorized-crossing", Severity: models.SeverityMedium, Confidence: 0.8,
	})

	const writers = 10
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.AppendComment(alert.ID, fmt.Sprintf("note %d", i), fmt.Sprintf("operator-%d", i))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("writer %d: AppendComment error: %v", i, err)
		}
	}

	got, err := repo.GetByID(alert.ID)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if len(got.Comments) != writers {
		t.Fatalf("expected all %d comments, got %d", writers, len(got.Comments))
	}
	seen := make(map[string]bool, writers)
	for _, c := range got.Comments {
		seen[c.Text] = true
	}
	for i := 0; i < writers; i++ {
		if !seen[fmt.Sprintf("note %d", i)] {
			t.Fatalf("comment %d lost", i)
		}
	}
}

func TestMarkHasFeedback(t *testing.T) {
	repo := &AlertRepository{DB: testhelpers.SetupTestDB(t)}
	alert := seedAlert(t, repo, &models.Alert{
		Type: "unauthorized-crossing", Severity: models.SeverityMedium, Confidence: 0.8,
	})

	if err := repo.MarkHasFeedback(alert.ID); err != nil {
		t.Fatalf("MarkHasFeedback error: %v", err)
	}
	got, _ := repo.GetByID(alert.ID)
	if !got.HasFeedback {
		t.Fatal("expected has_feedback to be set")
	}
}

func TestAlertListFiltersAndOrders(t *testing.T) {
	repo := &AlertRepository{DB: testhelpers.SetupTestDB(t)}
	seedAlert(t, repo, &models.Alert{
		Type: "unauthorized-crossing", Severity: models.SeverityHigh,
		Confidence: 0.9, Timestamp: time.Now().Add(-2 * time.Hour),
	})
	latest := seedAlert(t, repo, &models.Alert{
		Type: "unauthorized-crossing", Severity: models.SeverityHigh,
		Confidence: 0.95, Timestamp: time.Now(),
	})
	seedAlert(t, repo, &models.Alert{
		Type: "suspicious-vehicle", Severity: models.SeverityMedium,
		Confidence: 0.7, Timestamp: time.Now(),
	})

	result, total, err := repo.List(AlertFilter{Severity: models.SeverityHigh}, 1, 10)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 matching alerts, got %d", total)
	}
	if result[0].ID != latest.ID {
		t.Fatal("expected newest alert first")
	}
}
