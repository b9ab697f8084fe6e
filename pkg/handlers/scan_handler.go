package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vigil-intel/vigil-engine/pkg/models"
	"github.com/vigil-intel/vigil-engine/pkg/services"
)

// ScanListResponse for GET /api/scans
type ScanListResponse struct {
	Results []*models.ScanResult `json:"results"`
	Total   int                  `json:"total"`
}

// UpdateScanStatusRequest for PATCH /api/scans/{id}/status
type UpdateScanStatusRequest struct {
	Status string `json:"status"`
}

// ScanHandler handles scan result ingestion and triage HTTP requests.
type ScanHandler struct {
	scanService services.ScanService
	logger      *zap.Logger
}

// NewScanHandler creates a new scan handler.
func NewScanHandler(scanService services.ScanService, logger *zap.Logger) *ScanHandler {
	return &ScanHandler{
		scanService: scanService,
		logger:      logger,
	}
}

// RegisterRoutes registers the scan handler's routes on the given mux.
func (h *ScanHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/scans", h.Ingest)
	mux.HandleFunc("GET /api/scans", h.List)
	mux.HandleFunc("GET /api/scans/{id}", h.Get)
	mux.HandleFunc("PATCH /api/scans/{id}/status", h.UpdateStatus)
}

// Ingest handles POST /api/scans.
func (h *ScanHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req services.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	result, err := h.scanService.Ingest(r.Context(), &req)
	if err != nil {
		h.logger.Warn("scan ingestion failed", zap.Error(err))
		_ = ServiceError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusCreated, result)
}

// List handles GET /api/scans with limit/offset pagination.
func (h *ScanHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	results, err := h.scanService.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("failed to list scans", zap.Error(err))
		_ = ServiceError(w, err)
		return
	}
	if results == nil {
		results = []*models.ScanResult{}
	}

	_ = WriteJSON(w, http.StatusOK, ScanListResponse{Results: results, Total: len(results)})
}

// Get handles GET /api/scans/{id}.
func (h *ScanHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid scan id")
		return
	}

	result, err := h.scanService.Get(r.Context(), id)
	if err != nil {
		_ = ServiceError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, result)
}

// UpdateStatus handles PATCH /api/scans/{id}/status.
func (h *ScanHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid scan id")
		return
	}

	var req UpdateScanStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	result, err := h.scanService.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		_ = ServiceError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, result)
}
