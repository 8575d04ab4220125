package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"bordersense/surveillance/internal/feedback"
	"bordersense/surveillance/internal/models"
	"bordersense/surveillance/internal/repositories"
	"bordersense/surveillance/internal/utils"

	"github.com/go-chi/chi/v5"
)

type FeedbackHandler struct {
	intake *feedback.Intake
}

func NewFeedbackHandler(intake *feedback.Intake) *FeedbackHandler {
	return &FeedbackHandler{intake: intake}
}

// SubmitFeedbackRequest is the body for POST /api/v1/feedback.
type SubmitFeedbackRequest struct {
	AlertID            string  `json:"alert_id"`
	SubmittedBy        string  `json:"submitted_by"`
	CorrectedLabel     string  `json:"corrected_label"`
	Comments           string  `json:"comments,omitempty"`
	OriginalLabel      string  `json:"original_label,omitempty"`
	OriginalConfidence float64 `json:"original_confidence,omitempty"`
}

// SubmitFeedback handles POST /api/v1/feedback.
func (h *FeedbackHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req SubmitFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{
			OK:   false,
			Info: "invalid request body",
		})
		return
	}

	fb, err := h.intake.Submit(feedback.SubmitInput{
		AlertID:            req.AlertID,
		SubmittedBy:        req.SubmittedBy,
		CorrectedLabel:     req.CorrectedLabel,
		Comments:           req.Comments,
		OriginalLabel:      req.OriginalLabel,
		OriginalConfidence: req.OriginalConfidence,
	})
	if err != nil {
		switch {
		case errors.Is(err, feedback.ErrMissingFields):
			utils.WriteJSON(w, http.StatusBadRequest, models.Resp{
				OK:   false,
				Info: err.Error(),
			})
		case errors.Is(err, repositories.ErrAlertNotFound):
			utils.WriteJSON(w, http.StatusNotFound, models.Resp{
				OK:   false,
				Info: "alert not found",
			})
		case errors.Is(err, repositories.ErrDuplicateFeedback):
			utils.WriteJSON(w, http.StatusConflict, models.Resp{
				OK:   false,
				Info: "feedback for this alert by this user already exists",
			})
		default:
			log.Printf("Failed to submit feedback: %v", err)
			utils.WriteJSON(w, http.StatusInternalServerError, models.Resp{
				OK:   false,
				Info: "failed to submit feedback",
			})
		}
		return
	}

	utils.WriteJSON(w, http.StatusCreated, models.Resp{OK: true, Info: fb})
}

// GetAlertFeedback handles GET /api/v1/feedback/alert/{alertId}.
func (h *FeedbackHandler) GetAlertFeedback(w http.ResponseWriter, r *http.Request) {
	alertID := chi.URLParam(r, "alertId")

	records, err := h.intake.ByAlert(alertID)
	if err != nil {
		if errors.Is(err, repositories.ErrAlertNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, models.Resp{
				OK:   false,
				Info: "alert not found",
			})
			return
		}
		log.Printf("Failed to get feedback for alert %s: %v", alertID, err)
		utils.WriteJSON(w, http.StatusInternalServerError, models.Resp{
			OK:   false,
			Info: "failed to get feedback",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, models.Resp{OK: true, Info: records})
}

// GetFeedbackStats handles GET /api/v1/feedback/stats.
func (h *FeedbackHandler) GetFeedbackStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.intake.Stats()
	if err != nil {
		log.Printf("Failed to get feedback stats: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, models.Resp{
			OK:   false,
			Info: "failed to get feedback stats",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, models.Resp{OK: true, Info: stats})
}
