package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shift-etl/internal/config"
	"shift-etl/internal/pipeline"
	"shift-etl/internal/store"
	"shift-etl/pkg/utils"
)

// Handler serves the ETL run endpoints.
type Handler struct {
	store  *store.Store
	source pipeline.Source
	cfg    *config.Config
	log    *zap.Logger
}

// New wires a Handler with its dependencies.
func New(st *store.Store, src pipeline.Source, cfg *config.Config, log *zap.Logger) *Handler {
	return &Handler{store: st, source: src, cfg: cfg, log: log}
}

// createRunRequest optionally overrides the configured truncate flag.
type createRunRequest struct {
	Truncate *bool `json:"truncate,omitempty"`
}

// CreateRun starts a new ETL run
// @Summary Start an ETL run
// @Description Trigger a full fetch-flatten-persist-KPI pass asynchronously
// @Tags runs
// @Accept json
// @Produce json
// @Param run body createRunRequest false "Run options"
// @Success 200 {object} map[string]interface{} "Run started"
// @Failure 400 {object} map[string]interface{} "Invalid request payload"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs [post]
func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	var req createRunRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
			return
		}
	}

	truncate := h.cfg.Truncate
	if req.Truncate != nil {
		truncate = *req.Truncate
	}

	runID := uuid.New().String()
	if err := h.store.SaveRun(runID); err != nil {
		http.Error(w, "Failed to save run", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(),
		utils.ParseDuration(h.cfg.RunTimeout, 5*time.Minute))

	go func() {
		defer cancel()
		// Run records its own failure state; nothing to do here.
		_ = pipeline.Run(ctx, runID, h.store, h.source, truncate, h.log)
	}()

	writeJSON(w, map[string]interface{}{
		"message":   "ETL run started",
		"runID":     runID,
		"status":    "pending",
		"createdAt": time.Now().UTC(),
	})
}

// ListRuns retrieves all ETL runs
// @Summary List runs
// @Description Get all ETL runs with their current status and row counts
// @Tags runs
// @Produce json
// @Success 200 {object} map[string]interface{} "Runs"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs [get]
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.store.ListRuns()
	if err != nil {
		http.Error(w, "Failed to list runs", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}

// GetRun retrieves a specific ETL run
// @Summary Get run
// @Description Retrieve status and row counts of a specific ETL run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Run details"
// @Failure 400 {object} map[string]interface{} "Invalid run ID"
// @Failure 404 {object} map[string]interface{} "Run not found"
// @Router /runs/{id} [get]
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDFromPath(r.URL.Path, "")
	if !ok {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return
	}

	run, err := h.store.GetRun(runID)
	if err != nil {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}
	writeJSON(w, run)
}

// GetRunErrors retrieves errors recorded for a run
// @Summary Get run errors
// @Description Retrieve all errors captured during an ETL run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Run errors"
// @Failure 400 {object} map[string]interface{} "Invalid run ID"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs/{id}/errors [get]
func (h *Handler) GetRunErrors(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDFromPath(r.URL.Path, "/errors")
	if !ok {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return
	}

	runErrors, err := h.store.GetRunErrors(runID)
	if err != nil {
		http.Error(w, "Failed to retrieve errors", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{
		"run_id": runID,
		"errors": runErrors,
		"count":  len(runErrors),
	})
}

// LatestKPIs retrieves the most recently computed KPI rows
// @Summary Latest KPIs
// @Description Get the KPI rows written by the most recent completed run
// @Tags kpis
// @Produce json
// @Success 200 {object} map[string]interface{} "KPI rows"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /kpis [get]
func (h *Handler) LatestKPIs(w http.ResponseWriter, r *http.Request) {
	kpis, err := h.store.LatestKPIs()
	if err != nil {
		http.Error(w, "Failed to retrieve KPIs", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{
		"kpis":  kpis,
		"count": len(kpis),
	})
}

// runIDFromPath extracts the run ID between the runs prefix and an
// optional suffix like "/errors".
func runIDFromPath(path, suffix string) (string, bool) {
	const prefix = "/api/v1/runs/"
	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		return "", false
	}
	id := path[len(prefix) : len(path)-len(suffix)]
	return id, id != "" && !strings.Contains(id, "/")
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
