package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vigil-intel/vigil-engine/pkg/analysis"
	"github.com/vigil-intel/vigil-engine/pkg/models"
	"github.com/vigil-intel/vigil-engine/pkg/services"
)

// AssessAttributionRequest for POST /api/attribution/assess. Either a stored
// threat id or an inline payload.
type AssessAttributionRequest struct {
	ThreatID  *uuid.UUID `json:"threat_id,omitempty"`
	Content   string     `json:"content,omitempty"`
	Platform  string     `json:"platform,omitempty"`
	URL       string     `json:"url,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// AttributionHandler exposes the attribution engine.
type AttributionHandler struct {
	attributionService services.AttributionService
	scanService        services.ScanService
	logger             *zap.Logger
}

// NewAttributionHandler creates a new attribution handler.
func NewAttributionHandler(
	attributionService services.AttributionService,
	scanService services.ScanService,
	logger *zap.Logger,
) *AttributionHandler {
	return &AttributionHandler{
		attributionService: attributionService,
		scanService:        scanService,
		logger:             logger,
	}
}

// RegisterRoutes registers the attribution handler's routes on the given mux.
func (h *AttributionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/attribution/assess", h.Assess)
}

// Assess handles POST /api/attribution/assess.
func (h *AttributionHandler) Assess(w http.ResponseWriter, r *http.Request) {
	var req AssessAttributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	var threat *models.ScanResult
	if req.ThreatID != nil {
		stored, err := h.scanService.Get(r.Context(), *req.ThreatID)
		if err != nil {
			_ = ServiceError(w, err)
			return
		}
		threat = stored
	} else {
		if strings.TrimSpace(req.Content) == "" {
			_ = ErrorResponse(w, http.StatusBadRequest, "validation_error", "threat_id or content is required")
			return
		}
		createdAt := time.Now()
		if req.CreatedAt != nil {
			createdAt = *req.CreatedAt
		}
		threat = &models.ScanResult{
			Content:          req.Content,
			Platform:         strings.ToLower(req.Platform),
			URL:              req.URL,
			DetectedEntities: analysis.Extract(req.Content),
			CreatedAt:        createdAt,
		}
	}

	assessment := h.attributionService.Assess(threat)
	_ = WriteJSON(w, http.StatusOK, assessment)
}
