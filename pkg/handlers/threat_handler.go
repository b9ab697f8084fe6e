package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/vigil-intel/vigil-engine/pkg/services"
)

// ClassifyRequest for POST /api/threats/classify
type ClassifyRequest struct {
	Content  string `json:"content"`
	Platform string `json:"platform,omitempty"`
	Brand    string `json:"brand,omitempty"`
	Context  string `json:"context,omitempty"`
}

// RespondRequest for POST /api/threats/respond
type RespondRequest struct {
	Content string `json:"content"`
	Tone    string `json:"tone,omitempty"`
}

// RespondResponse for POST /api/threats/respond
type RespondResponse struct {
	Response string `json:"response"`
}

// ThreatHandler exposes LLM-backed threat classification and response
// drafting.
type ThreatHandler struct {
	classificationService services.ClassificationService
	logger                *zap.Logger
}

// NewThreatHandler creates a new threat handler.
func NewThreatHandler(classificationService services.ClassificationService, logger *zap.Logger) *ThreatHandler {
	return &ThreatHandler{
		classificationService: classificationService,
		logger:                logger,
	}
}

// RegisterRoutes registers the threat handler's routes on the given mux.
func (h *ThreatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/threats/classify", h.Classify)
	mux.HandleFunc("POST /api/threats/respond", h.Respond)
}

// Classify handles POST /api/threats/classify. Provider failures surface as
// 502 so callers can distinguish them from our own errors.
func (h *ThreatHandler) Classify(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	classification, err := h.classificationService.Classify(r.Context(), req.Content, req.Platform, req.Brand, req.Context)
	if err != nil {
		h.logger.Warn("classification failed", zap.Error(err))
		h.upstreamError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, classification)
}

// Respond handles POST /api/threats/respond.
func (h *ThreatHandler) Respond(w http.ResponseWriter, r *http.Request) {
	var req RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	response, err := h.classificationService.SuggestResponse(r.Context(), req.Content, req.Tone)
	if err != nil {
		h.logger.Warn("response drafting failed", zap.Error(err))
		h.upstreamError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, RespondResponse{Response: response})
}

// upstreamError distinguishes caller mistakes from provider failures.
func (h *ThreatHandler) upstreamError(w http.ResponseWriter, err error) {
	if handled := isValidationError(err); handled {
		_ = ServiceError(w, err)
		return
	}
	_ = ErrorResponse(w, http.StatusBadGateway, "upstream_error", "language model request failed")
}
