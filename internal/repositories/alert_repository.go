package repositories

import (
	"errors"
	"time"

	"bordersense/surveillance/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrAlertNotFound    = errors.New("alert not found")
	ErrAlertStatusFinal = errors.New("alert status is final")
)

type AlertRepository struct {
	DB *gorm.DB
}

// AlertFilter narrows List results.
type AlertFilter struct {
	Severity models.Severity
	Status   models.AlertStatus
	Type     string
}

func (r *AlertRepository) Create(alert *models.Alert) error {
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	if alert.Status == "" {
		alert.Status = models.AlertStatusNew
	}
	if alert.Timestamp.IsZero() {
		alert.Timestamp = time.Now()
	}
	return r.DB.Create(alert).Error
}

func (r *AlertRepository) GetByID(id string) (*models.Alert, error) {
	var alert models.Alert
	err := r.DB.Preload("Comments", func(db *gorm.DB) *gorm.DB {
		return db.Order("alert_comments.id ASC")
	}).First(&alert, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAlertNotFound
	}
	return &alert, err
}

func (r *AlertRepository) List(filter AlertFilter, page, perPage int) ([]models.Alert, int64, error) {
	query := r.DB.Model(&models.Alert{})
	if filter.Severity != "" {
		query = query.Where("severity = ?", filter.Severity)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var result []models.Alert
	err := query.Order("timestamp DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&result).Error
	return result, total, err
}

// SetStatus writes the alert's review state as a single conditional field
// update, not a read-modify-write from application memory. Only New alerts
// may move to a different status; re-applying the current status is allowed
// so a repeated acknowledge can still carry a comment. Acknowledged,
// Dismissed and Resolved alerts never move to another status.
func (r *AlertRepository) SetStatus(id string, status models.AlertStatus) error {
	result := r.DB.Model(&models.Alert{}).
		Where("id = ? AND status IN ?", id, []models.AlertStatus{models.AlertStatusNew, status}).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.DB.Model(&models.Alert{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrAlertNotFound
		}
		return ErrAlertStatusFinal
	}
	return nil
}

// AppendComment adds one operator note. Each comment is its own row, so the
// sequence is append-only and interleaved writers cannot lose entries.
func (r *AlertRepository) AppendComment(alertID, text, author string) error {
	comment := models.AlertComment{
		AlertID: alertID,
		Text:    text,
		Author:  author,
	}
	return r.DB.Create(&comment).Error
}

// MarkHasFeedback flags the alert after its first accepted correction.
func (r *AlertRepository) MarkHasFeedback(id string) error {
	return r.DB.Model(&models.Alert{}).Where("id = ?", id).
		Update("has_feedback", true).Error
}
