package detection

import (
	"bordersense/surveillance/internal/models"
)

// SeverityOf maps a detection type and confidence to an alert severity. The
// mapping is a fixed two-tier table per detection type, not a model output.
func SeverityOf(detectionType string, confidence float64) models.Severity {
	switch detectionType {
	case "weapon-detected":
		if confidence > 0.8 {
			return models.SeverityCritical
		}
		return models.SeverityHigh
	case "unauthorized-crossing":
		if confidence > 0.9 {
			return models.SeverityHigh
		}
		return models.SeverityMedium
	case "suspicious-vehicle":
		if confidence > 0.85 {
			return models.SeverityHigh
		}
		return models.SeverityMedium
	default:
		if confidence > 0.9 {
			return models.SeverityMedium
		}
		return models.SeverityLow
	}
}
