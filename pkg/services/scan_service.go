package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vigil-intel/vigil-engine/pkg/analysis"
	"github.com/vigil-intel/vigil-engine/pkg/apperrors"
	"github.com/vigil-intel/vigil-engine/pkg/config"
	"github.com/vigil-intel/vigil-engine/pkg/logging"
	"github.com/vigil-intel/vigil-engine/pkg/models"
	"github.com/vigil-intel/vigil-engine/pkg/repositories"
)

// IngestRequest carries a mention into the system from manual entry, a
// scraper, or an external API caller.
type IngestRequest struct {
	Content        string     `json:"content"`
	Platform       string     `json:"platform"`
	URL            string     `json:"url,omitempty"`
	Severity       string     `json:"severity,omitempty"`
	ThreatType     string     `json:"threat_type,omitempty"`
	Sentiment      float64    `json:"sentiment,omitempty"`
	ClientID       *uuid.UUID `json:"client_id,omitempty"`
	SourceType     string     `json:"source_type,omitempty"`
	PotentialReach int        `json:"potential_reach,omitempty"`
}

// ScanService handles ingestion and triage of scan results.
type ScanService interface {
	Ingest(ctx context.Context, req *IngestRequest) (*models.ScanResult, error)
	Get(ctx context.Context, id uuid.UUID) (*models.ScanResult, error)
	List(ctx context.Context, limit, offset int) ([]*models.ScanResult, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.ScanResult, error)
}

type scanService struct {
	scans   repositories.ScanResultRepository
	clients repositories.ClientRepository
	cfg     config.AnalysisConfig
	logger  *zap.Logger
}

// NewScanService creates a new ScanService.
func NewScanService(
	scans repositories.ScanResultRepository,
	clients repositories.ClientRepository,
	cfg config.AnalysisConfig,
	logger *zap.Logger,
) ScanService {
	return &scanService{
		scans:   scans,
		clients: clients,
		cfg:     cfg,
		logger:  logger.Named("scan_service"),
	}
}

var _ ScanService = (*scanService)(nil)

// triage status ordering; transitions only move forward.
var statusRank = map[string]int{
	models.StatusNew:      0,
	models.StatusRead:     1,
	models.StatusActioned: 2,
	models.StatusResolved: 3,
}

// Ingest validates a mention, runs entity extraction, picks the risk entity,
// and persists the resulting scan row. When the mention belongs to a client
// with monitored entities, the content must match at least one of them.
func (s *scanService) Ingest(ctx context.Context, req *IngestRequest) (*models.ScanResult, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("%w: content is required", apperrors.ErrValidation)
	}
	if strings.TrimSpace(req.Platform) == "" {
		return nil, fmt.Errorf("%w: platform is required", apperrors.ErrValidation)
	}

	severity := req.Severity
	if severity == "" {
		severity = models.SeverityLow
	}
	if !models.ValidSeverity(severity) {
		return nil, fmt.Errorf("%w: unknown severity %q", apperrors.ErrValidation, req.Severity)
	}

	sourceType := req.SourceType
	if sourceType == "" {
		sourceType = models.SourceManual
	}

	s.logger.Debug("extracting entities from mention",
		zap.String("platform", req.Platform),
		zap.String("content", logging.SanitizeContent(req.Content)))

	entities := analysis.Extract(req.Content)
	riskName, riskType := pickRiskEntity(entities)
	confidence := 0.5

	if req.ClientID != nil {
		client, err := s.clients.GetByID(ctx, *req.ClientID)
		if err != nil {
			return nil, err
		}
		if client == nil {
			return nil, fmt.Errorf("%w: client %s", apperrors.ErrNotFound, req.ClientID)
		}

		match, err := s.matchClientEntity(ctx, *req.ClientID, req.Content)
		if err != nil {
			return nil, err
		}
		if match != nil {
			riskName = match.entity.EntityName
			riskType = match.entity.EntityType
			confidence = match.confidence
		}
	}

	result := &models.ScanResult{
		Content:          req.Content,
		Platform:         strings.ToLower(req.Platform),
		URL:              req.URL,
		Severity:         severity,
		Status:           models.StatusNew,
		ThreatType:       req.ThreatType,
		Sentiment:        req.Sentiment,
		ConfidenceScore:  confidence,
		DetectedEntities: entities,
		RiskEntityName:   riskName,
		RiskEntityType:   riskType,
		ClientID:         req.ClientID,
		SourceType:       sourceType,
		PotentialReach:   req.PotentialReach,
	}

	if err := s.scans.Create(ctx, result); err != nil {
		return nil, err
	}

	s.logger.Info("scan result ingested",
		zap.String("scan_id", result.ID.String()),
		zap.String("platform", result.Platform),
		zap.String("risk_entity_type", result.RiskEntityType),
		zap.Int("entities", len(entities)))

	return result, nil
}

type clientEntityMatch struct {
	entity     *models.ClientEntity
	confidence float64
}

// matchClientEntity tests the content against each of the client's monitored
// entity fingerprints and returns the strongest qualifying match. A client
// with no monitored entities matches nothing, without error.
func (s *scanService) matchClientEntity(ctx context.Context, clientID uuid.UUID, content string) (*clientEntityMatch, error) {
	entities, err := s.clients.GetEntities(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if len(entities) == 0 {
		return nil, nil
	}

	var best *clientEntityMatch
	for _, e := range entities {
		fp := analysis.GenerateFingerprint(e.EntityName)
		analysis.MergeAliases(fp, e.Aliases)

		m := analysis.Match(content, fp)
		if m == nil || m.ConfidenceScore < s.cfg.MinMatchConfidence {
			continue
		}
		if best == nil || m.ConfidenceScore > best.confidence {
			best = &clientEntityMatch{entity: e, confidence: m.ConfidenceScore}
		}
	}

	if best == nil {
		return nil, fmt.Errorf("%w: content does not reference any monitored entity", apperrors.ErrValidation)
	}
	return best, nil
}

func (s *scanService) Get(ctx context.Context, id uuid.UUID) (*models.ScanResult, error) {
	result, err := s.scans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, apperrors.ErrNotFound
	}
	return result, nil
}

func (s *scanService) List(ctx context.Context, limit, offset int) ([]*models.ScanResult, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.scans.List(ctx, limit, offset)
}

// UpdateStatus moves a scan result forward through triage. Backward
// transitions are rejected; rows are never deleted.
func (s *scanService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.ScanResult, error) {
	if !models.ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrInvalidStatus, status)
	}

	current, err := s.scans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperrors.ErrNotFound
	}

	if statusRank[status] < statusRank[current.Status] {
		return nil, fmt.Errorf("%w: cannot move from %s back to %s", apperrors.ErrInvalidStatus, current.Status, status)
	}

	if err := s.scans.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	current.Status = status

	s.logger.Info("scan status updated",
		zap.String("scan_id", id.String()),
		zap.String("status", status))

	return current, nil
}

// pickRiskEntity selects the primary at-risk entity from an extraction pass,
// preferring people over organizations.
func pickRiskEntity(entities []models.Entity) (name, entityType string) {
	for _, e := range entities {
		if e.Type == models.EntityPerson {
			return e.Name, models.EntityPerson
		}
	}
	for _, e := range entities {
		if e.Type == models.EntityOrganization {
			return e.Name, models.EntityOrganization
		}
	}
	return "", models.EntityUnknown
}
