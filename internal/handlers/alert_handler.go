package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"bordersense/surveillance/internal/models"
	"bordersense/surveillance/internal/repositories"
	"bordersense/surveillance/internal/utils"

	"github.com/go-chi/chi/v5"
)

// Emitter is the best-effort broadcast dependency shared by the handlers.
type Emitter interface {
	Emit(name string, payload interface{})
}

type AlertHandler struct {
	alerts  *repositories.AlertRepository
	emitter Emitter
}

func NewAlertHandler(alerts *repositories.AlertRepository, emitter Emitter) *AlertHandler {
	return &AlertHandler{alerts: alerts, emitter: emitter}
}

// ListAlerts handles GET /api/v1/alerts with optional severity/status/type
// filters and capped pagination.
func (h *AlertHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := repositories.AlertFilter{Type: query.Get("type")}
	if severity := query.Get("severity"); severity != "" {
		if !models.ValidSeverity(models.Severity(severity)) {
			utils.WriteJSON(w, http.StatusBadRequest, models.Resp{
				OK:   false,
				Info: "invalid severity",
			})
			return
		}
		filter.Severity = models.Severity(severity)
	}
	if status := query.Get("status"); status != "" {
		if !models.ValidAlertStatus(models.AlertStatus(status)) {
			utils.WriteJSON(w, http.StatusBadRequest, models.Resp{
				OK:   false,
				Info: "invalid status",
			})
			return
		}
		filter.Status = models.AlertStatus(status)
	}

	page := parsePositiveInt(query.Get("page"), 1)
	perPage := parsePositiveInt(query.Get("perPage"), 50)
	if perPage > 200 {
		perPage = 200
	}

	alerts, total, err := h.alerts.List(filter, page, perPage)
	if err != nil {
		log.Printf("Failed to list alerts: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, models.Resp{
			OK:   false,
			Info: "failed to fetch alerts",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, models.PagedResp{
		Meta: models.PageMeta{
			Page:       page,
			PerPage:    perPage,
			Total:      total,
			TotalPages: (total + int64(perPage) - 1) / int64(perPage),
		},
		Data: alerts,
	})
}

// CreateAlertRequest is the body for manually reported alerts.
type CreateAlertRequest struct {
	Type       string  `json:"type"`
	Severity   string  `json:"severity"`
	Source     string  `json:"source"`
	Confidence float64 `json:"confidence"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
}

// CreateAlert handles POST /api/v1/alerts. Manual alerts carry no model
// attribution.
func (h *AlertHandler) CreateAlert(w http.ResponseWriter, r *http.Request) {
	var req CreateAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{
			OK:   false,
			Info: "invalid request body",
		})
		return
	}

	if req.Type == "" || req.Severity == "" {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{
			OK:   false,
			Info: "type and severity are required",
		})
		return
	}
	if !models.ValidSeverity(models.Severity(req.Severity)) {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{
			OK:   false,
			Info: "invalid severity",
		})
		return
	}

	confidence := req.Confidence
	if confidence == 0 {
		confidence = 1.0
	}
	if confidence < 0 || confidence > 1 {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{
			OK:   false,
			Info: "confidence must be within [0,1]",
		})
		return
	}

	source := req.Source
	if source == "" {
		source = "Unknown"
	}

	alert := models.Alert{
		Type:       req.Type,
		Severity:   models.Severity(req.Severity),
		Confidence: confidence,
		Status:     models.AlertStatusNew,
		Source:     source,
		Lat:        req.Lat,
		Lon:        req.Lon,
	}
	if err := h.alerts.Create(&alert); err != nil {
		log.Printf("Failed to create alert: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, models.Resp{
			OK:   false,
			Info: "failed to create alert",
		})
		return
	}

	h.emitter.Emit(models.EventNewAlert, alert)

	utils.WriteJSON(w, http.StatusCreated, models.Resp{OK: true, Info: alert})
}

// AcknowledgeRequest is the body for POST /api/v1/alerts/{id}/acknowledge.
type AcknowledgeRequest struct {
	Action  string `json:"action"` // "acknowledge" or "dismiss"
	Comment string `json:"comment,omitempty"`
	Author  string `json:"author,omitempty"`
}

// AcknowledgeAlert handles POST /api/v1/alerts/{id}/acknowledge. The comment,
// when present, is appended to the alert's comment sequence, never replacing
// earlier entries.
func (h *AlertHandler) AcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	alertID := chi.URLParam(r, "id")

	var req AcknowledgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{
			OK:   false,
			Info: "invalid request body",
		})
		return
	}

	var status models.AlertStatus
	switch req.Action {
	case "acknowledge":
		status = models.AlertStatusAcknowledged
	case "dismiss":
		status = models.AlertStatusDismissed
	default:
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{
			OK:   false,
			Info: "action must be 'acknowledge' or 'dismiss'",
		})
		return
	}

	if err := h.alerts.SetStatus(alertID, status); err != nil {
		if errors.Is(err, repositories.ErrAlertNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, models.Resp{
				OK:   false,
				Info: "alert not found",
			})
			return
		}
		if errors.Is(err, repositories.ErrAlertStatusFinal) {
			utils.WriteJSON(w, http.StatusConflict, models.Resp{
				OK:   false,
				Info: "alert status can no longer change",
			})
			return
		}
		log.Printf("Failed to update alert %s: %v", alertID, err)
		utils.WriteJSON(w, http.StatusInternalServerError, models.Resp{
			OK:   false,
			Info: "failed to update alert",
		})
		return
	}

	if req.Comment != "" {
		author := req.Author
		if author == "" {
			author = "system"
		}
		if err := h.alerts.AppendComment(alertID, req.Comment, author); err != nil {
			log.Printf("Failed to append comment to alert %s: %v", alertID, err)
		}
	}

	alert, err := h.alerts.GetByID(alertID)
	if err != nil {
		log.Printf("Failed to reload alert %s: %v", alertID, err)
		utils.WriteJSON(w, http.StatusInternalServerError, models.Resp{
			OK:   false,
			Info: "failed to load alert",
		})
		return
	}

	h.emitter.Emit(models.EventAlertUpdated, alert)

	utils.WriteJSON(w, http.StatusOK, models.Resp{OK: true, Info: alert})
}

func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
