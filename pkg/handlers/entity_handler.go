package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/vigil-intel/vigil-engine/pkg/analysis"
	"github.com/vigil-intel/vigil-engine/pkg/config"
	"github.com/vigil-intel/vigil-engine/pkg/models"
	"github.com/vigil-intel/vigil-engine/pkg/services"
)

// ExtractRequest for POST /api/entities/extract
type ExtractRequest struct {
	Text string `json:"text"`
	Mode string `json:"mode,omitempty"` // simple (default) or advanced
}

// ExtractResponse for POST /api/entities/extract
type ExtractResponse struct {
	Entities []models.Entity `json:"entities"`
	Mode     string          `json:"mode"`
}

// FingerprintRequest for POST /api/entities/fingerprint
type FingerprintRequest struct {
	EntityName string   `json:"entity_name"`
	Aliases    []string `json:"aliases,omitempty"`
}

// MatchRequest for POST /api/entities/match
type MatchRequest struct {
	Content    string   `json:"content"`
	EntityName string   `json:"entity_name"`
	Aliases    []string `json:"aliases,omitempty"`
}

// MatchResponse for POST /api/entities/match
type MatchResponse struct {
	Matched bool                `json:"matched"`
	Match   *models.EntityMatch `json:"match,omitempty"`
}

// EntityHandler exposes fingerprinting, matching, and extraction.
type EntityHandler struct {
	classifier services.ClassificationService
	cfg        config.AnalysisConfig
	logger     *zap.Logger
}

// NewEntityHandler creates a new entity handler.
func NewEntityHandler(classifier services.ClassificationService, cfg config.AnalysisConfig, logger *zap.Logger) *EntityHandler {
	return &EntityHandler{
		classifier: classifier,
		cfg:        cfg,
		logger:     logger,
	}
}

// RegisterRoutes registers the entity handler's routes on the given mux.
func (h *EntityHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/entities/extract", h.Extract)
	mux.HandleFunc("POST /api/entities/fingerprint", h.Fingerprint)
	mux.HandleFunc("POST /api/entities/match", h.Match)
}

// Extract handles POST /api/entities/extract. Advanced mode is LLM-backed
// with a regex fallback; simple mode is regex only.
func (h *EntityHandler) Extract(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "validation_error", "text is required")
		return
	}

	mode := req.Mode
	var entities []models.Entity
	switch mode {
	case "advanced":
		var err error
		entities, err = h.classifier.ExtractAdvanced(r.Context(), req.Text)
		if err != nil {
			_ = ServiceError(w, err)
			return
		}
	case "", "simple":
		mode = "simple"
		entities = analysis.Extract(req.Text)
	default:
		_ = ErrorResponse(w, http.StatusBadRequest, "validation_error", "mode must be simple or advanced")
		return
	}

	if entities == nil {
		entities = []models.Entity{}
	}
	_ = WriteJSON(w, http.StatusOK, ExtractResponse{Entities: entities, Mode: mode})
}

// Fingerprint handles POST /api/entities/fingerprint.
func (h *EntityHandler) Fingerprint(w http.ResponseWriter, r *http.Request) {
	var req FingerprintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.EntityName) == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "validation_error", "entity_name is required")
		return
	}

	fp := analysis.GenerateFingerprint(req.EntityName)
	analysis.MergeAliases(fp, req.Aliases)

	_ = WriteJSON(w, http.StatusOK, fp)
}

// Match handles POST /api/entities/match.
func (h *EntityHandler) Match(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Content) == "" || strings.TrimSpace(req.EntityName) == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "validation_error", "content and entity_name are required")
		return
	}

	fp := analysis.GenerateFingerprint(req.EntityName)
	analysis.MergeAliases(fp, req.Aliases)

	match := analysis.Match(req.Content, fp)
	resp := MatchResponse{Matched: match != nil && match.ConfidenceScore >= h.cfg.MinMatchConfidence}
	if resp.Matched {
		resp.Match = match
	}

	_ = WriteJSON(w, http.StatusOK, resp)
}
