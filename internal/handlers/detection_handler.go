package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"bordersense/surveillance/internal/detection"
	"bordersense/surveillance/internal/models"
	"bordersense/surveillance/internal/utils"
)

type DetectionHandler struct {
	pipeline *detection.Pipeline
}

func NewDetectionHandler(pipeline *detection.Pipeline) *DetectionHandler {
	return &DetectionHandler{pipeline: pipeline}
}

// Ingest handles POST /api/v1/detections: one raw event in, zero or more
// alerts out.
func (h *DetectionHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var event models.DetectionEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{
			OK:   false,
			Info: "invalid request body",
		})
		return
	}

	if !models.ValidModelType(event.Type) {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{
			OK:   false,
			Info: "unknown detection type",
		})
		return
	}
	for _, c := range event.Candidates {
		if c.Type == "" || c.Confidence < 0 || c.Confidence > 1 {
			utils.WriteJSON(w, http.StatusBadRequest, models.Resp{
				OK:   false,
				Info: "each candidate needs a type and a confidence within [0,1]",
			})
			return
		}
	}

	alerts, err := h.pipeline.Ingest(event)
	if err != nil && len(alerts) == 0 {
		log.Printf("Failed to ingest detection event: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, models.Resp{
			OK:   false,
			Info: "failed to process detection event",
		})
		return
	}
	if err != nil {
		// Some candidates failed to persist; the rest were processed.
		log.Printf("Partial ingest failure: %v", err)
	}

	utils.WriteJSON(w, http.StatusOK, models.Resp{
		OK: true,
		Info: map[string]interface{}{
			"alerts_created": len(alerts),
			"alerts":         alerts,
		},
	})
}
