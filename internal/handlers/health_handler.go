package handlers

import (
	"net/http"

	"bordersense/surveillance/internal/utils"

	"gorm.io/gorm"
)

type ReadinessCheck struct {
	Status  string `json:"status"` // "ok" | "failed"
	Message string `json:"message,omitempty"`
}

type ReadinessResponse struct {
	Status  string                    `json:"status"`  // "ready" | "not_ready"
	Service string                    `json:"service"` // Service name
	Checks  map[string]ReadinessCheck `json:"checks"`  // Individual check results
}

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

func (handler *HealthHandler) HealthzHandler(writer http.ResponseWriter, request *http.Request) {
	utils.JSON(writer, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "surveillance",
		"version": "1.0.0",
	})
}

func (handler *HealthHandler) ReadyzHandler(writer http.ResponseWriter, request *http.Request) {
	checks := make(map[string]ReadinessCheck)
	allChecksPass := true

	if handler.db == nil {
		checks["database"] = ReadinessCheck{
			Status:  "failed",
			Message: "database not initialized",
		}
		allChecksPass = false
	} else if sqlDB, err := handler.db.DB(); err != nil || sqlDB.PingContext(request.Context()) != nil {
		checks["database"] = ReadinessCheck{
			Status:  "failed",
			Message: "database unreachable",
		}
		allChecksPass = false
	} else {
		checks["database"] = ReadinessCheck{Status: "ok"}
	}

	status := "ready"
	code := http.StatusOK
	if !allChecksPass {
		status = "not_ready"
		code = http.StatusServiceUnavailable
	}

	utils.JSON(writer, code, ReadinessResponse{
		Status:  status,
		Service: "surveillance",
		Checks:  checks,
	})
}
