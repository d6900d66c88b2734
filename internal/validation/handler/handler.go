// Package handler exposes the validation service over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"securedeal/internal/platform/middleware"
	"securedeal/internal/validation/audit"
	"securedeal/internal/validation/models"
	"securedeal/internal/validation/sink"
	id "securedeal/pkg/domain"
)

// Service defines the validation operations the handler needs.
type Service interface {
	Validate(ctx context.Context, record models.InputRecord) (models.RunResult, error)
	Preview(ctx context.Context, record models.InputRecord, candidates []models.Rule, config *models.EngineConfig) (models.RunResult, error)
	Run(ctx context.Context, runID id.RunID) (models.RunResult, error)
	RunsByOpportunity(ctx context.Context, opportunityID id.OpportunityID) ([]models.RunResult, error)
	Rules() ([]models.Rule, string, error)
	ReloadRules(ctx context.Context) (string, error)
	AuditTrail(ctx context.Context, runID id.RunID) ([]audit.Event, error)
}

// Handler handles validation endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the validation routes with the shared middleware chain.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.CallerInfo)
	router.Use(middleware.Logger(h.logger))
	router.Use(middleware.Timeout(60 * time.Second))

	router.Post("/validations", h.handleValidate)
	router.Post("/validations/preview", h.handlePreview)
	router.Get("/validations/{runID}", h.handleGetRun)
	router.Get("/validations/{runID}/audit", h.handleGetAudit)
	router.Get("/opportunities/{opportunityID}/validations", h.handleListRuns)
	router.Get("/rules", h.handleGetRules)
	router.Post("/rules/reload", h.handleReloadRules)

	r.Mount("/v1", router)
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, h.logger, http.StatusBadRequest, "invalid request body", err)
		return
	}
	record, err := req.toRecord(true)
	if err != nil {
		writeError(w, r, h.logger, http.StatusBadRequest, err.Error(), err)
		return
	}

	result, err := h.service.Validate(r.Context(), record)
	if err != nil {
		writeError(w, r, h.logger, http.StatusInternalServerError, "validation failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, h.logger, http.StatusBadRequest, "invalid request body", err)
		return
	}
	record, err := req.toRecord(false)
	if err != nil {
		writeError(w, r, h.logger, http.StatusBadRequest, err.Error(), err)
		return
	}

	result, err := h.service.Preview(r.Context(), record, req.Rules, nil)
	if err != nil {
		writeError(w, r, h.logger, http.StatusUnprocessableEntity, err.Error(), err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := id.RunID(chi.URLParam(r, "runID"))

	result, err := h.service.Run(r.Context(), runID)
	if errors.Is(err, sink.ErrNotFound) {
		writeError(w, r, h.logger, http.StatusNotFound, "run not found", nil)
		return
	}
	if err != nil {
		writeError(w, r, h.logger, http.StatusInternalServerError, "lookup failed", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleGetAudit(w http.ResponseWriter, r *http.Request) {
	runID := id.RunID(chi.URLParam(r, "runID"))

	events, err := h.service.AuditTrail(r.Context(), runID)
	if err != nil {
		writeError(w, r, h.logger, http.StatusInternalServerError, "lookup failed", err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	opportunityID := id.OpportunityID(chi.URLParam(r, "opportunityID"))

	runs, err := h.service.RunsByOpportunity(r.Context(), opportunityID)
	if err != nil {
		writeError(w, r, h.logger, http.StatusInternalServerError, "lookup failed", err)
		return
	}
	if runs == nil {
		runs = []models.RunResult{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (h *Handler) handleGetRules(w http.ResponseWriter, r *http.Request) {
	defs, hash, err := h.service.Rules()
	if err != nil {
		writeError(w, r, h.logger, http.StatusServiceUnavailable, "no rule snapshot loaded", err)
		return
	}
	writeJSON(w, http.StatusOK, rulesResponse{SnapshotHash: hash, Rules: defs})
}

func (h *Handler) handleReloadRules(w http.ResponseWriter, r *http.Request) {
	hash, err := h.service.ReloadRules(r.Context())
	if err != nil {
		writeError(w, r, h.logger, http.StatusUnprocessableEntity, err.Error(), err)
		return
	}
	writeJSON(w, http.StatusOK, reloadResponse{SnapshotHash: hash})
}
