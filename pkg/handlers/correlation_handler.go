package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vigil-intel/vigil-engine/pkg/models"
	"github.com/vigil-intel/vigil-engine/pkg/services"
)

// AnalyzeCorrelationsRequest for POST /api/correlations/analyze
type AnalyzeCorrelationsRequest struct {
	ThreatIDs []uuid.UUID `json:"threat_ids"`
}

// AnalyzeCorrelationsResponse for POST /api/correlations/analyze
type AnalyzeCorrelationsResponse struct {
	Correlations []*models.ThreatCorrelation `json:"correlations"`
	Total        int                         `json:"total"`
}

// CreateCaseThreadRequest for POST /api/case-threads
type CreateCaseThreadRequest struct {
	Title        string                      `json:"title"`
	Correlations []*models.ThreatCorrelation `json:"correlations"`
}

// CaseThreadListResponse for GET /api/case-threads
type CaseThreadListResponse struct {
	Threads []*models.CaseThread `json:"threads"`
	Total   int                  `json:"total"`
}

// CorrelationHandler exposes correlation analysis and case threads.
type CorrelationHandler struct {
	correlationService services.CorrelationService
	logger             *zap.Logger
}

// NewCorrelationHandler creates a new correlation handler.
func NewCorrelationHandler(correlationService services.CorrelationService, logger *zap.Logger) *CorrelationHandler {
	return &CorrelationHandler{
		correlationService: correlationService,
		logger:             logger,
	}
}

// RegisterRoutes registers the correlation handler's routes on the given mux.
func (h *CorrelationHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/correlations/analyze", h.Analyze)
	mux.HandleFunc("POST /api/case-threads", h.CreateCaseThread)
	mux.HandleFunc("GET /api/case-threads", h.ListCaseThreads)
	mux.HandleFunc("GET /api/case-threads/{id}", h.GetCaseThread)
}

// Analyze handles POST /api/correlations/analyze.
func (h *CorrelationHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeCorrelationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	correlations, err := h.correlationService.AnalyzeCorrelations(r.Context(), req.ThreatIDs)
	if err != nil {
		h.logger.Warn("correlation analysis failed", zap.Error(err))
		_ = ServiceError(w, err)
		return
	}
	if correlations == nil {
		correlations = []*models.ThreatCorrelation{}
	}

	_ = WriteJSON(w, http.StatusOK, AnalyzeCorrelationsResponse{Correlations: correlations, Total: len(correlations)})
}

// CreateCaseThread handles POST /api/case-threads.
func (h *CorrelationHandler) CreateCaseThread(w http.ResponseWriter, r *http.Request) {
	var req CreateCaseThreadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	thread, err := h.correlationService.CreateCaseThread(r.Context(), req.Title, req.Correlations)
	if err != nil {
		_ = ServiceError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusCreated, thread)
}

// ListCaseThreads handles GET /api/case-threads.
func (h *CorrelationHandler) ListCaseThreads(w http.ResponseWriter, r *http.Request) {
	threads, err := h.correlationService.ListCaseThreads(r.Context())
	if err != nil {
		h.logger.Error("failed to list case threads", zap.Error(err))
		_ = ServiceError(w, err)
		return
	}
	if threads == nil {
		threads = []*models.CaseThread{}
	}

	_ = WriteJSON(w, http.StatusOK, CaseThreadListResponse{Threads: threads, Total: len(threads)})
}

// GetCaseThread handles GET /api/case-threads/{id}.
func (h *CorrelationHandler) GetCaseThread(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid case thread id")
		return
	}

	thread, err := h.correlationService.GetCaseThread(r.Context(), id)
	if err != nil {
		_ = ServiceError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, thread)
}
