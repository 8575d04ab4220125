package feedback

import (
	"errors"
	"fmt"

	"bordersense/surveillance/internal/metrics"
	"bordersense/surveillance/internal/models"
	"bordersense/surveillance/internal/repositories"

	"go.uber.org/zap"
)

// ErrMissingFields is returned when a submission lacks a required field.
var ErrMissingFields = errors.New("alertId, submittedBy and correctedLabel are required")

// Enqueuer is the fire-and-forget side channel toward the retraining
// controller.
type Enqueuer interface {
	Enqueue(feedbackID string)
}

// Intake accepts human corrections on alerts, enforces the
// one-correction-per-user-per-alert rule and keeps model error counters
// current.
type Intake struct {
	feedback          *repositories.FeedbackRepository
	alerts            *repositories.AlertRepository
	registry          *repositories.ModelRepository
	enqueuer          Enqueuer
	feedbackThreshold int64
	logger            *zap.Logger
}

func NewIntake(
	feedback *repositories.FeedbackRepository,
	alerts *repositories.AlertRepository,
	registry *repositories.ModelRepository,
	enqueuer Enqueuer,
	feedbackThreshold int64,
	logger *zap.Logger,
) *Intake {
	return &Intake{
		feedback:          feedback,
		alerts:            alerts,
		registry:          registry,
		enqueuer:          enqueuer,
		feedbackThreshold: feedbackThreshold,
		logger:            logger,
	}
}

// SubmitInput is one correction as supplied by the caller. OriginalLabel and
// OriginalConfidence are optional; they default to the alert's own
// type/confidence.
type SubmitInput struct {
	AlertID            string
	SubmittedBy        string
	CorrectedLabel     string
	Comments           string
	OriginalLabel      string
	OriginalConfidence float64
}

// Submit records a correction. Returns repositories.ErrAlertNotFound when the
// alert does not exist and repositories.ErrDuplicateFeedback when this user
// already corrected this alert.
func (in *Intake) Submit(input SubmitInput) (*models.Feedback, error) {
	if input.AlertID == "" || input.SubmittedBy == "" || input.CorrectedLabel == "" {
		return nil, ErrMissingFields
	}

	alert, err := in.alerts.GetByID(input.AlertID)
	if err != nil {
		return nil, err
	}

	fb := &models.Feedback{
		AlertID:            input.AlertID,
		SubmittedBy:        input.SubmittedBy,
		CorrectedLabel:     input.CorrectedLabel,
		Comments:           input.Comments,
		OriginalLabel:      input.OriginalLabel,
		OriginalConfidence: input.OriginalConfidence,
	}
	if fb.OriginalLabel == "" {
		fb.OriginalLabel = alert.Type
		fb.OriginalConfidence = alert.Confidence
	}

	if err := in.feedback.Insert(fb); err != nil {
		return nil, err
	}
	metrics.FeedbackRecorded()

	if err := in.alerts.MarkHasFeedback(alert.ID); err != nil {
		in.logger.Warn("failed to flag alert feedback",
			zap.String("alert_id", alert.ID), zap.Error(err))
	}

	if alert.ModelID != nil {
		in.updateModelCounters(*alert.ModelID, fb)
	}

	// Latency optimization only; the periodic scan is the durability backstop.
	in.enqueuer.Enqueue(fb.ID)

	return fb, nil
}

func (in *Intake) updateModelCounters(modelID string, fb *models.Feedback) {
	falsePositive := fb.IsFalsePositive()
	falseNegative := fb.IsFalseNegative()

	if err := in.registry.RecordFeedback(modelID, falsePositive, falseNegative); err != nil {
		in.logger.Error("failed to update model feedback counters",
			zap.String("model_id", modelID), zap.Error(err))
		return
	}

	model, err := in.registry.GetByID(modelID)
	if err != nil {
		return
	}
	if model.NeedsRetraining(in.feedbackThreshold) {
		in.logger.Info("model crossed retraining threshold",
			zap.String("model_id", model.ID),
			zap.String("model_name", model.Name),
			zap.Float64("error_rate", model.ErrorRate()))
	}
}

// ByAlert lists the corrections submitted against one alert.
func (in *Intake) ByAlert(alertID string) ([]models.Feedback, error) {
	if _, err := in.alerts.GetByID(alertID); err != nil {
		return nil, err
	}
	return in.feedback.ByAlert(alertID)
}

// Stats summarizes stored corrections.
func (in *Intake) Stats() (*repositories.FeedbackStats, error) {
	stats, err := in.feedback.Stats()
	if err != nil {
		return nil, fmt.Errorf("failed to compute feedback stats: %w", err)
	}
	return stats, nil
}
