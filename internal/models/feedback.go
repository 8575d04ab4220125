package models

import (
	"time"
)

// Feedback is one human correction on an alert. A user may submit at most one
// correction per alert, enforced by the composite unique index rather than a
// read-then-write check.
type Feedback struct {
	ID                 string    `gorm:"primaryKey" json:"id"`
	AlertID            string    `gorm:"not null;index;uniqueIndex:idx_feedback_alert_user" json:"alert_id"`
	SubmittedBy        string    `gorm:"not null;uniqueIndex:idx_feedback_alert_user" json:"submitted_by"`
	CorrectedLabel     string    `gorm:"not null" json:"corrected_label"`
	Comments           string    `gorm:"type:text" json:"comments,omitempty"`
	OriginalLabel      string    `json:"original_label"`
	OriginalConfidence float64   `json:"original_confidence"`
	Processed          bool      `gorm:"not null;default:false;index" json:"processed"`
	ReceivedAt         time.Time `gorm:"not null" json:"received_at"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// IsFalsePositive reports whether this correction says the model detected
// something that was not there.
func (f *Feedback) IsFalsePositive() bool {
	return f.OriginalLabel != "" && f.OriginalLabel != LabelNone && f.CorrectedLabel == LabelNone
}

// IsFalseNegative reports whether this correction says the model missed
// something that was there.
func (f *Feedback) IsFalseNegative() bool {
	return f.OriginalLabel == LabelNone && f.CorrectedLabel != LabelNone
}
