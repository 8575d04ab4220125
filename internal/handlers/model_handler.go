package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"bordersense/surveillance/internal/detection"
	"bordersense/surveillance/internal/models"
	"bordersense/surveillance/internal/repositories"
	"bordersense/surveillance/internal/retraining"
	"bordersense/surveillance/internal/utils"

	"github.com/go-chi/chi/v5"
)

type ModelHandler struct {
	registry   *repositories.ModelRepository
	resolver   *detection.Resolver
	controller *retraining.Controller
}

func NewModelHandler(registry *repositories.ModelRepository, resolver *detection.Resolver, controller *retraining.Controller) *ModelHandler {
	return &ModelHandler{registry: registry, resolver: resolver, controller: controller}
}

// ListModels handles GET /api/v1/models.
func (h *ModelHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := repositories.ModelFilter{}
	if t := query.Get("type"); t != "" {
		if !models.ValidModelType(models.ModelType(t)) {
			utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: "invalid model type"})
			return
		}
		filter.Type = models.ModelType(t)
	}
	if s := query.Get("status"); s != "" {
		if !models.ValidModelStatus(models.ModelStatus(s)) {
			utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: "invalid model status"})
			return
		}
		filter.Status = models.ModelStatus(s)
	}

	page := parsePositiveInt(query.Get("page"), 1)
	perPage := parsePositiveInt(query.Get("perPage"), 20)
	if perPage > 100 {
		perPage = 100
	}

	result, total, err := h.registry.List(filter, page, perPage)
	if err != nil {
		log.Printf("Failed to list models: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, models.Resp{OK: false, Info: "failed to fetch models"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, models.PagedResp{
		Meta: models.PageMeta{
			Page:       page,
			PerPage:    perPage,
			Total:      total,
			TotalPages: (total + int64(perPage) - 1) / int64(perPage),
		},
		Data: result,
	})
}

// GetModel handles GET /api/v1/models/{id}.
func (h *ModelHandler) GetModel(w http.ResponseWriter, r *http.Request) {
	model, err := h.registry.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repositories.ErrModelNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, models.Resp{OK: false, Info: "model not found"})
			return
		}
		log.Printf("Failed to fetch model: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, models.Resp{OK: false, Info: "failed to fetch model"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, models.Resp{OK: true, Info: model})
}

// CreateModelRequest is the body for POST /api/v1/models.
type CreateModelRequest struct {
	Name                string  `json:"name"`
	Type                string  `json:"type"`
	Description         string  `json:"description,omitempty"`
	ConfidenceThreshold float64 `json:"confidence_threshold,omitempty"`
}

// CreateModel handles POST /api/v1/models. New models register as Active with
// zeroed counters.
func (h *ModelHandler) CreateModel(w http.ResponseWriter, r *http.Request) {
	var req CreateModelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: "invalid request body"})
		return
	}

	if req.Name == "" || req.Type == "" {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: "name and type are required"})
		return
	}
	if !models.ValidModelType(models.ModelType(req.Type)) {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: "invalid model type"})
		return
	}
	if req.ConfidenceThreshold < 0 || req.ConfidenceThreshold > 1 {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: "confidence_threshold must be within [0,1]"})
		return
	}

	model := models.AIModel{
		Name:                req.Name,
		Type:                models.ModelType(req.Type),
		Description:         req.Description,
		ConfidenceThreshold: req.ConfidenceThreshold,
	}
	if err := h.registry.Create(&model); err != nil {
		log.Printf("Failed to create model: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, models.Resp{OK: false, Info: "failed to create model"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, models.Resp{OK: true, Info: model})
}

// UpdateModelRequest is the body for PUT /api/v1/models/{id}. Status is
// deliberately absent: lifecycle transitions belong to the retraining
// controller and the Deprecated path of DeleteModel.
type UpdateModelRequest struct {
	Name                *string  `json:"name,omitempty"`
	Description         *string  `json:"description,omitempty"`
	ConfidenceThreshold *float64 `json:"confidence_threshold,omitempty"`
}

// UpdateModel handles PUT /api/v1/models/{id}.
func (h *ModelHandler) UpdateModel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateModelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: "invalid request body"})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ConfidenceThreshold != nil {
		if *req.ConfidenceThreshold < 0 || *req.ConfidenceThreshold > 1 {
			utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: "confidence_threshold must be within [0,1]"})
			return
		}
		updates["confidence_threshold"] = *req.ConfidenceThreshold
	}
	if len(updates) == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: "no updatable fields supplied"})
		return
	}

	model, err := h.registry.Update(id, updates)
	if err != nil {
		if errors.Is(err, repositories.ErrModelNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, models.Resp{OK: false, Info: "model not found"})
			return
		}
		log.Printf("Failed to update model %s: %v", id, err)
		utils.WriteJSON(w, http.StatusInternalServerError, models.Resp{OK: false, Info: "failed to update model"})
		return
	}

	h.resolver.Invalidate(model.Type)

	utils.WriteJSON(w, http.StatusOK, models.Resp{OK: true, Info: model})
}

// DeleteModel handles DELETE /api/v1/models/{id}. Models still referenced by
// alerts are soft-deprecated instead of removed.
func (h *ModelHandler) DeleteModel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	model, err := h.registry.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrModelNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, models.Resp{OK: false, Info: "model not found"})
			return
		}
		log.Printf("Failed to fetch model %s: %v", id, err)
		utils.WriteJSON(w, http.StatusInternalServerError, models.Resp{OK: false, Info: "failed to fetch model"})
		return
	}

	deprecated, err := h.registry.Delete(id)
	if err != nil {
		log.Printf("Failed to delete model %s: %v", id, err)
		utils.WriteJSON(w, http.StatusInternalServerError, models.Resp{OK: false, Info: "failed to delete model"})
		return
	}

	h.resolver.Invalidate(model.Type)

	info := "model deleted"
	if deprecated {
		info = "model is referenced by alerts and was deprecated instead"
	}
	utils.WriteJSON(w, http.StatusOK, models.Resp{OK: true, Info: info})
}

// NeedsRetraining handles GET /api/v1/models/needs-retraining.
func (h *ModelHandler) NeedsRetraining(w http.ResponseWriter, r *http.Request) {
	needing, err := h.controller.ModelsNeedingRetraining()
	if err != nil {
		log.Printf("Failed to evaluate retraining candidates: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, models.Resp{OK: false, Info: "failed to evaluate retraining candidates"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, models.Resp{OK: true, Info: needing})
}

// AddMetricRequest is the body for POST /api/v1/models/{id}/metrics.
type AddMetricRequest struct {
	Accuracy          float64 `json:"accuracy"`
	Precision         float64 `json:"precision"`
	Recall            float64 `json:"recall"`
	F1Score           float64 `json:"f1_score,omitempty"`
	FalsePositiveRate float64 `json:"false_positive_rate,omitempty"`
	FalseNegativeRate float64 `json:"false_negative_rate,omitempty"`
	LatencyMs         float64 `json:"latency_ms,omitempty"`
}

// AddMetric handles POST /api/v1/models/{id}/metrics.
func (h *ModelHandler) AddMetric(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req AddMetricRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: "invalid request body"})
		return
	}
	if req.Accuracy == 0 || req.Precision == 0 || req.Recall == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: "accuracy, precision and recall are required"})
		return
	}

	model, err := h.registry.AppendMetric(id, models.PerformanceMetric{
		Timestamp:         time.Now(),
		Accuracy:          req.Accuracy,
		Precision:         req.Precision,
		Recall:            req.Recall,
		F1Score:           req.F1Score,
		FalsePositiveRate: req.FalsePositiveRate,
		FalseNegativeRate: req.FalseNegativeRate,
		LatencyMs:         req.LatencyMs,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrModelNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, models.Resp{OK: false, Info: "model not found"})
			return
		}
		log.Printf("Failed to add metric to model %s: %v", id, err)
		utils.WriteJSON(w, http.StatusInternalServerError, models.Resp{OK: false, Info: "failed to add metric"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, models.Resp{OK: true, Info: model})
}

// AddVersionRequest is the body for POST /api/v1/models/{id}/version.
type AddVersionRequest struct {
	Version         string  `json:"version"`
	ValidationScore float64 `json:"validation_score,omitempty"`
	Notes           string  `json:"notes,omitempty"`
}

// AddVersion handles POST /api/v1/models/{id}/version.
func (h *ModelHandler) AddVersion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req AddVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: "invalid request body"})
		return
	}
	if req.Version == "" {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: "version is required"})
		return
	}

	model, err := h.registry.AppendVersion(id, models.VersionRecord{
		Version:         req.Version,
		TrainedAt:       time.Now(),
		ValidationScore: req.ValidationScore,
		Notes:           req.Notes,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrModelNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, models.Resp{OK: false, Info: "model not found"})
			return
		}
		log.Printf("Failed to add version to model %s: %v", id, err)
		utils.WriteJSON(w, http.StatusInternalServerError, models.Resp{OK: false, Info: "failed to add version"})
		return
	}

	h.resolver.Invalidate(model.Type)

	utils.WriteJSON(w, http.StatusCreated, models.Resp{OK: true, Info: model})
}

// RunRetraining handles POST /api/v1/retraining/run, an on-demand batch cycle.
func (h *ModelHandler) RunRetraining(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.RunCycle(); err != nil {
		log.Printf("On-demand retraining cycle failed: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, models.Resp{OK: false, Info: "retraining cycle failed"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, models.Resp{OK: true, Info: "retraining cycle complete"})
}
