package models

import (
	"time"
)

// Alert is one surveillance detection surfaced to operators.
type Alert struct {
	ID           string      `gorm:"primaryKey" json:"id"`
	Type         string      `gorm:"not null;index" json:"type"`
	Severity     Severity    `gorm:"not null;index" json:"severity"`
	Confidence   float64     `gorm:"not null" json:"confidence"`
	Status       AlertStatus `gorm:"not null;default:New;index" json:"status"`
	Source       string      `json:"source"`
	Lat          float64     `json:"lat"`
	Lon          float64     `json:"lon"`
	ModelID      *string     `gorm:"index" json:"model_id,omitempty"`
	ModelName    string      `json:"model_name,omitempty"`
	ModelVersion string      `json:"model_version,omitempty"`
	HasFeedback  bool        `gorm:"not null;default:false;index" json:"has_feedback"`
	Timestamp    time.Time   `gorm:"not null;index" json:"timestamp"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`

	Comments []AlertComment `gorm:"foreignKey:AlertID" json:"comments,omitempty"`
}

// AlertComment is one operator note on an alert. Comments are append-only:
// each append is a fresh row, so concurrent writers cannot clobber each other.
type AlertComment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AlertID   string    `gorm:"not null;index" json:"alert_id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	Author    string    `gorm:"not null" json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

// DetectionCandidate is one raw model output inside an ingested event,
// before threshold gating.
type DetectionCandidate struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

// DetectionEvent is a batch of candidates from one sensor or camera frame.
type DetectionEvent struct {
	Type       ModelType            `json:"type"`
	Source     string               `json:"source"`
	Lat        float64              `json:"lat"`
	Lon        float64              `json:"lon"`
	Candidates []DetectionCandidate `json:"candidates"`
}
