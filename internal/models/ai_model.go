package models

import (
	"time"
)

// maxStoredMetrics caps the performance metric history per model; the oldest
// entries are evicted first.
const maxStoredMetrics = 100

// PerformanceMetric is one evaluation snapshot for a model.
type PerformanceMetric struct {
	Timestamp         time.Time `json:"timestamp"`
	Accuracy          float64   `json:"accuracy"`
	Precision         float64   `json:"precision"`
	Recall            float64   `json:"recall"`
	F1Score           float64   `json:"f1_score"`
	FalsePositiveRate float64   `json:"false_positive_rate"`
	FalseNegativeRate float64   `json:"false_negative_rate"`
	LatencyMs         float64   `json:"latency_ms"`
}

// VersionRecord is one entry in a model's append-only version history.
type VersionRecord struct {
	Version         string    `json:"version"`
	TrainedAt       time.Time `json:"trained_at"`
	ValidationScore float64   `json:"validation_score"`
	Notes           string    `json:"notes,omitempty"`
}

// AIModel is a registered detection model and its lifecycle bookkeeping.
// Status transitions go through the retraining controller only; feedback
// intake touches the counters and nothing else.
type AIModel struct {
	ID                  string              `gorm:"primaryKey" json:"id"`
	Name                string              `gorm:"not null" json:"name"`
	Type                ModelType           `gorm:"not null;index:idx_models_type_status" json:"type"`
	Description         string              `json:"description,omitempty"`
	Status              ModelStatus         `gorm:"not null;default:Active;index:idx_models_type_status" json:"status"`
	ConfidenceThreshold float64             `gorm:"not null;default:0.7" json:"confidence_threshold"`
	CurrentVersion      string              `json:"current_version"`
	VersionHistory      []VersionRecord     `gorm:"serializer:json" json:"version_history"`
	PerformanceMetrics  []PerformanceMetric `gorm:"serializer:json" json:"performance_metrics"`
	LastRetrainedAt     *time.Time          `json:"last_retrained_at,omitempty"`
	FeedbackCount       int64               `gorm:"not null;default:0" json:"feedback_count"`
	FalsePositiveCount  int64               `gorm:"not null;default:0" json:"false_positive_count"`
	FalseNegativeCount  int64               `gorm:"not null;default:0" json:"false_negative_count"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

// AppendMetric adds a performance snapshot, evicting the oldest entries past
// the storage cap.
func (m *AIModel) AppendMetric(pm PerformanceMetric) {
	m.PerformanceMetrics = append(m.PerformanceMetrics, pm)
	if len(m.PerformanceMetrics) > maxStoredMetrics {
		m.PerformanceMetrics = m.PerformanceMetrics[len(m.PerformanceMetrics)-maxStoredMetrics:]
	}
}

// AppendVersion records a promotion: the history entry is appended and the
// current version advances to it.
func (m *AIModel) AppendVersion(v VersionRecord) {
	m.VersionHistory = append(m.VersionHistory, v)
	m.CurrentVersion = v.Version
	trainedAt := v.TrainedAt
	m.LastRetrainedAt = &trainedAt
}

// ErrorRate is the share of collected feedback that corrected a model error.
func (m *AIModel) ErrorRate() float64 {
	if m.FeedbackCount == 0 {
		return 0
	}
	return float64(m.FalsePositiveCount+m.FalseNegativeCount) / float64(m.FeedbackCount)
}

// NeedsRetraining reports whether enough feedback has accumulated and the
// error rate is high enough to justify a retraining cycle. Pure; repeated
// calls never mutate the model.
func (m *AIModel) NeedsRetraining(feedbackThreshold int64) bool {
	if m.FeedbackCount < feedbackThreshold {
		return false
	}
	return m.ErrorRate() > 0.10
}
