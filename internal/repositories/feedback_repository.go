package repositories

import (
	"errors"
	"time"

	"bordersense/surveillance/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrDuplicateFeedback = errors.New("feedback already submitted for this alert by this user")

type FeedbackRepository struct {
	DB *gorm.DB
}

// Insert stores a correction. The (alert_id, submitted_by) unique index makes
// this an atomic insert-if-absent: a duplicate surfaces as
// ErrDuplicateFeedback instead of a second row.
func (r *FeedbackRepository) Insert(fb *models.Feedback) error {
	if fb.ID == "" {
		fb.ID = uuid.New().String()
	}
	if fb.ReceivedAt.IsZero() {
		fb.ReceivedAt = time.Now()
	}
	err := r.DB.Create(fb).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateFeedback
	}
	return err
}

// ListUnprocessed returns the oldest corrections not yet consumed by a
// retraining batch cycle.
func (r *FeedbackRepository) ListUnprocessed(limit int) ([]models.Feedback, error) {
	var result []models.Feedback
	query := r.DB.Where("processed = ?", false).Order("received_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&result).Error
	return result, err
}

// MarkProcessed flips the processed flag for a scanned batch. Idempotent: a
// re-run over already-processed ids is a no-op.
func (r *FeedbackRepository) MarkProcessed(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.DB.Model(&models.Feedback{}).
		Where("id IN ?", ids).
		Update("processed", true).Error
}

// ByAlert lists corrections for one alert, newest first.
func (r *FeedbackRepository) ByAlert(alertID string) ([]models.Feedback, error) {
	var result []models.Feedback
	err := r.DB.Where("alert_id = ?", alertID).
		Order("received_at DESC").
		Find(&result).Error
	return result, err
}

// FeedbackStats summarizes stored corrections.
type FeedbackStats struct {
	Total       int64 `json:"total"`
	Processed   int64 `json:"processed"`
	Unprocessed int64 `json:"unprocessed"`
}

func (r *FeedbackRepository) Stats() (*FeedbackStats, error) {
	var stats FeedbackStats
	if err := r.DB.Model(&models.Feedback{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := r.DB.Model(&models.Feedback{}).Where("processed = ?", true).
		Count(&stats.Processed).Error; err != nil {
		return nil, err
	}
	stats.Unprocessed = stats.Total - stats.Processed
	return &stats, nil
}
