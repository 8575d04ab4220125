package retraining

import (
	"bordersense/surveillance/internal/models"
)

// Trainer is the pluggable retraining strategy. The controller owns all
// orchestration (state transitions, version promotion, counter resets); the
// trainer only turns a feedback batch into fresh evaluation metrics.
type Trainer interface {
	Train(model *models.AIModel, batch []models.Feedback) (models.PerformanceMetric, error)
}

// SimulatedTrainer derives metrics from the correction mix in the batch. It
// stands in for a real training backend behind the same interface.
type SimulatedTrainer struct{}

func (SimulatedTrainer) Train(model *models.AIModel, batch []models.Feedback) (models.PerformanceMetric, error) {
	n := len(batch)
	if n == 0 {
		n = 1
	}

	var falsePositives, falseNegatives int
	for _, fb := range batch {
		if fb.IsFalsePositive() {
			falsePositives++
		}
		if fb.IsFalseNegative() {
			falseNegatives++
		}
	}

	fpRate := float64(falsePositives) / float64(n)
	fnRate := float64(falseNegatives) / float64(n)

	precision := clamp(1-fpRate, 0.5, 0.99)
	recall := clamp(1-fnRate, 0.5, 0.99)
	accuracy := clamp(1-(fpRate+fnRate)/2, 0.5, 0.99)

	return models.PerformanceMetric{
		Accuracy:          accuracy,
		Precision:         precision,
		Recall:            recall,
		F1Score:           2 * precision * recall / (precision + recall),
		FalsePositiveRate: fpRate,
		FalseNegativeRate: fnRate,
		LatencyMs:         75,
	}, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
