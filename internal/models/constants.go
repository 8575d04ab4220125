package models

// ModelType is the detection discipline an AI model is trained for.
type ModelType string

const (
	ModelTypeObjectDetection       ModelType = "object-detection"
	ModelTypeAnomalyDetection      ModelType = "anomaly-detection"
	ModelTypePredictiveMaintenance ModelType = "predictive-maintenance"
	ModelTypeRouteOptimization     ModelType = "route-optimization"
	ModelTypeThreatAssessment      ModelType = "threat-assessment"
	ModelTypeImageClassification   ModelType = "image-classification"
	ModelTypeOther                 ModelType = "other"
)

// ModelStatus is the lifecycle state of an AI model. Transitions are owned by
// the retraining controller; feedback intake never writes status directly.
type ModelStatus string

const (
	ModelStatusActive     ModelStatus = "Active"
	ModelStatusTraining   ModelStatus = "Training"
	ModelStatusTesting    ModelStatus = "Testing"
	ModelStatusDeprecated ModelStatus = "Deprecated"
	ModelStatusFailed     ModelStatus = "Failed"
)

// Severity of an alert.
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

// AlertStatus is the review state of an alert. Resolved is set by the
// incident-report workflow, not by the acknowledge endpoint.
type AlertStatus string

const (
	AlertStatusNew          AlertStatus = "New"
	AlertStatusAcknowledged AlertStatus = "Acknowledged"
	AlertStatusDismissed    AlertStatus = "Dismissed"
	AlertStatusResolved     AlertStatus = "Resolved"
)

// LabelNone is the corrected label meaning "nothing was actually there".
const LabelNone = "none"

// Broadcast event names consumed by dashboard subscribers.
const (
	EventNewAlert     = "new-alert"
	EventAlertUpdated = "alert-updated"
	EventModelUpdated = "model-updated"
)

// ValidModelType reports whether t is one of the closed set of model types.
func ValidModelType(t ModelType) bool {
	switch t {
	case ModelTypeObjectDetection, ModelTypeAnomalyDetection, ModelTypePredictiveMaintenance,
		ModelTypeRouteOptimization, ModelTypeThreatAssessment, ModelTypeImageClassification,
		ModelTypeOther:
		return true
	}
	return false
}

// ValidModelStatus reports whether s is one of the closed set of model statuses.
func ValidModelStatus(s ModelStatus) bool {
	switch s {
	case ModelStatusActive, ModelStatusTraining, ModelStatusTesting,
		ModelStatusDeprecated, ModelStatusFailed:
		return true
	}
	return false
}

// ValidSeverity reports whether s is one of the closed set of severities.
func ValidSeverity(s Severity) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// ValidAlertStatus reports whether s is one of the closed set of alert statuses.
func ValidAlertStatus(s AlertStatus) bool {
	switch s {
	case AlertStatusNew, AlertStatusAcknowledged, AlertStatusDismissed, AlertStatusResolved:
		return true
	}
	return false
}
