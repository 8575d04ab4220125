package detection

import (
	"errors"
	"fmt"

	"bordersense/surveillance/internal/metrics"
	"bordersense/surveillance/internal/models"

	"go.uber.org/zap"
)

// AlertStore persists alerts produced by the pipeline.
type AlertStore interface {
	Create(alert *models.Alert) error
}

// Emitter is the best-effort broadcast side of the pipeline.
type Emitter interface {
	Emit(name string, payload interface{})
}

// Pipeline turns raw detection events into alerts: resolve the model for the
// event's type, gate candidates on the confidence threshold, derive severity,
// persist and broadcast.
type Pipeline struct {
	resolver         *Resolver
	alerts           AlertStore
	emitter          Emitter
	defaultThreshold float64
	logger           *zap.Logger
}

func NewPipeline(resolver *Resolver, alerts AlertStore, emitter Emitter, defaultThreshold float64, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		resolver:         resolver,
		alerts:           alerts,
		emitter:          emitter,
		defaultThreshold: defaultThreshold,
		logger:           logger,
	}
}

// Ingest processes one event and returns the alerts it produced. Candidates
// below the threshold are dropped, not stored. A persistence failure for one
// candidate aborts only that candidate; the rest of the event is still
// processed, and the first error is returned alongside the surviving alerts.
func (p *Pipeline) Ingest(event models.DetectionEvent) ([]models.Alert, error) {
	if !models.ValidModelType(event.Type) {
		return nil, fmt.Errorf("unknown detection type %q", event.Type)
	}

	threshold := p.defaultThreshold
	var model *models.AIModel

	resolved, err := p.resolver.Resolve(event.Type)
	switch {
	case err == nil:
		model = resolved
		threshold = model.ConfidenceThreshold
	case errors.Is(err, ErrNoActiveModel):
		// fall back to the system default with no attribution
	default:
		return nil, fmt.Errorf("resolving model for %s: %w", event.Type, err)
	}

	var created []models.Alert
	var firstErr error

	for _, candidate := range event.Candidates {
		if candidate.Confidence < threshold {
			metrics.CandidateGated()
			continue
		}

		alert := models.Alert{
			Type:       candidate.Type,
			Severity:   SeverityOf(candidate.Type, candidate.Confidence),
			Confidence: candidate.Confidence,
			Status:     models.AlertStatusNew,
			Source:     event.Source,
			Lat:        event.Lat,
			Lon:        event.Lon,
		}
		if model != nil {
			modelID := model.ID
			alert.ModelID = &modelID
			alert.ModelName = model.Name
			alert.ModelVersion = model.CurrentVersion
		}

		if err := p.alerts.Create(&alert); err != nil {
			p.logger.Error("failed to persist alert",
				zap.String("detection_type", candidate.Type),
				zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		metrics.AlertProduced(string(alert.Severity))
		p.emitter.Emit(models.EventNewAlert, alert)
		created = append(created, alert)
	}

	return created, firstErr
}
