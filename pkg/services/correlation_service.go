// Package services contains the business logic for vigil-engine.
package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vigil-intel/vigil-engine/pkg/analysis"
	"github.com/vigil-intel/vigil-engine/pkg/apperrors"
	"github.com/vigil-intel/vigil-engine/pkg/config"
	"github.com/vigil-intel/vigil-engine/pkg/models"
	"github.com/vigil-intel/vigil-engine/pkg/repositories"
)

// CorrelationService finds relationships between scan results that suggest
// coordinated activity.
type CorrelationService interface {
	AnalyzeCorrelations(ctx context.Context, threatIDs []uuid.UUID) ([]*models.ThreatCorrelation, error)
	CreateCaseThread(ctx context.Context, title string, correlations []*models.ThreatCorrelation) (*models.CaseThread, error)
	ListCaseThreads(ctx context.Context) ([]*models.CaseThread, error)
	GetCaseThread(ctx context.Context, id uuid.UUID) (*models.CaseThread, error)
}

type correlationService struct {
	scans   repositories.ScanResultRepository
	threads repositories.CaseThreadRepository
	cfg     config.AnalysisConfig
	logger  *zap.Logger
}

// NewCorrelationService creates a new CorrelationService.
func NewCorrelationService(
	scans repositories.ScanResultRepository,
	threads repositories.CaseThreadRepository,
	cfg config.AnalysisConfig,
	logger *zap.Logger,
) CorrelationService {
	return &correlationService{
		scans:   scans,
		threads: threads,
		cfg:     cfg,
		logger:  logger.Named("correlation_service"),
	}
}

var _ CorrelationService = (*correlationService)(nil)

// AnalyzeCorrelations fetches the given threats and runs every correlation
// pass over them. A fetch failure is propagated rather than returning a
// partial answer.
func (s *correlationService) AnalyzeCorrelations(ctx context.Context, threatIDs []uuid.UUID) ([]*models.ThreatCorrelation, error) {
	if len(threatIDs) < 2 {
		return nil, fmt.Errorf("%w: correlation requires at least two threats", apperrors.ErrInsufficientBatch)
	}

	threats, err := s.scans.GetByIDs(ctx, threatIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch threats for correlation: %w", err)
	}
	if len(threats) < 2 {
		return nil, fmt.Errorf("%w: found %d of %d requested threats", apperrors.ErrInsufficientBatch, len(threats), len(threatIDs))
	}

	var correlations []*models.ThreatCorrelation
	correlations = append(correlations, s.correlateLanguage(threats)...)
	correlations = append(correlations, s.correlateUsernames(threats)...)
	correlations = append(correlations, s.correlateTiming(threats)...)

	sort.SliceStable(correlations, func(i, j int) bool {
		return correlations[i].Confidence > correlations[j].Confidence
	})
	if len(correlations) > s.cfg.MaxCorrelations {
		correlations = correlations[:s.cfg.MaxCorrelations]
	}

	s.logger.Info("correlation analysis complete",
		zap.Int("threats", len(threats)),
		zap.Int("correlations", len(correlations)))

	return correlations, nil
}

// correlateLanguage finds pairs of threats whose content token sets overlap
// beyond the configured Jaccard threshold.
func (s *correlationService) correlateLanguage(threats []*models.ScanResult) []*models.ThreatCorrelation {
	var out []*models.ThreatCorrelation
	for i := 0; i < len(threats); i++ {
		for j := i + 1; j < len(threats); j++ {
			sim := analysis.Jaccard(threats[i].Content, threats[j].Content)
			if sim <= s.cfg.JaccardThreshold {
				continue
			}

			shared := analysis.SharedTokens(threats[i].Content, threats[j].Content, 3)
			evidence := []string{
				fmt.Sprintf("content similarity %.2f", sim),
			}
			if len(shared) > 0 {
				evidence = append(evidence, "shared terms: "+strings.Join(shared, ", "))
			}

			out = append(out, &models.ThreatCorrelation{
				ID:              correlationID(models.CorrelationLanguage, threats[i].ID, threats[j].ID),
				ThreatIDs:       []uuid.UUID{threats[i].ID, threats[j].ID},
				CorrelationType: models.CorrelationLanguage,
				Confidence:      sim,
				Evidence:        evidence,
				RiskLevel:       riskForConfidence(sim),
			})
		}
	}
	return out
}

// correlateUsernames groups threats sharing a detected social handle.
func (s *correlationService) correlateUsernames(threats []*models.ScanResult) []*models.ThreatCorrelation {
	byHandle := make(map[string][]*models.ScanResult)
	for _, t := range threats {
		for _, e := range t.DetectedEntities {
			if e.Type == models.EntityHandle {
				handle := strings.ToLower(e.Name)
				byHandle[handle] = append(byHandle[handle], t)
			}
		}
	}

	handles := make([]string, 0, len(byHandle))
	for h := range byHandle {
		handles = append(handles, h)
	}
	sort.Strings(handles)

	var out []*models.ThreatCorrelation
	for _, handle := range handles {
		group := byHandle[handle]
		if len(group) < 2 {
			continue
		}
		ids := make([]uuid.UUID, 0, len(group))
		for _, t := range group {
			ids = append(ids, t.ID)
		}
		out = append(out, &models.ThreatCorrelation{
			ID:              correlationID(models.CorrelationUsername, ids...),
			ThreatIDs:       ids,
			CorrelationType: models.CorrelationUsername,
			Confidence:      s.cfg.UsernameConfidence,
			Evidence:        []string{fmt.Sprintf("handle %s appears in %d threats", handle, len(group))},
			RiskLevel:       riskForConfidence(s.cfg.UsernameConfidence),
		})
	}
	return out
}

// correlateTiming clusters threats created within the configured window of
// each other. The window boundary is inclusive: two threats exactly a full
// window apart still cluster.
func (s *correlationService) correlateTiming(threats []*models.ScanResult) []*models.ThreatCorrelation {
	sorted := make([]*models.ScanResult, len(threats))
	copy(sorted, threats)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	window := s.cfg.TimingWindow()

	var out []*models.ThreatCorrelation
	var cluster []*models.ScanResult
	flush := func() {
		if len(cluster) < 2 {
			cluster = nil
			return
		}
		ids := make([]uuid.UUID, 0, len(cluster))
		for _, t := range cluster {
			ids = append(ids, t.ID)
		}
		span := cluster[len(cluster)-1].CreatedAt.Sub(cluster[0].CreatedAt)
		out = append(out, &models.ThreatCorrelation{
			ID:              correlationID(models.CorrelationTiming, ids...),
			ThreatIDs:       ids,
			CorrelationType: models.CorrelationTiming,
			Confidence:      s.cfg.TimingConfidence,
			Evidence:        []string{fmt.Sprintf("%d threats posted within %s", len(cluster), span.Round(time.Second))},
			RiskLevel:       riskForConfidence(s.cfg.TimingConfidence),
		})
		cluster = nil
	}

	for _, t := range sorted {
		if len(cluster) == 0 {
			cluster = append(cluster, t)
			continue
		}
		gap := t.CreatedAt.Sub(cluster[len(cluster)-1].CreatedAt)
		if gap <= window {
			cluster = append(cluster, t)
			continue
		}
		flush()
		cluster = append(cluster, t)
	}
	flush()

	return out
}

// CreateCaseThread persists a case thread aggregating the given correlations.
func (s *correlationService) CreateCaseThread(ctx context.Context, title string, correlations []*models.ThreatCorrelation) (*models.CaseThread, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: case thread title is required", apperrors.ErrValidation)
	}
	if len(correlations) == 0 {
		return nil, fmt.Errorf("%w: case thread requires at least one correlation", apperrors.ErrValidation)
	}

	seen := make(map[uuid.UUID]bool)
	var threatIDs []uuid.UUID
	summary := make([]models.ThreatCorrelation, 0, len(correlations))
	maxConfidence := 0.0
	for _, c := range correlations {
		summary = append(summary, *c)
		if c.Confidence > maxConfidence {
			maxConfidence = c.Confidence
		}
		for _, id := range c.ThreatIDs {
			if !seen[id] {
				seen[id] = true
				threatIDs = append(threatIDs, id)
			}
		}
	}

	thread := &models.CaseThread{
		Title:              strings.TrimSpace(title),
		Status:             models.CaseOpen,
		Priority:           riskForConfidence(maxConfidence),
		ThreatIDs:          threatIDs,
		CorrelationSummary: summary,
	}
	if err := s.threads.Create(ctx, thread); err != nil {
		return nil, err
	}

	s.logger.Info("case thread created",
		zap.String("thread_id", thread.ID.String()),
		zap.Int("threats", len(threatIDs)))

	return thread, nil
}

func (s *correlationService) ListCaseThreads(ctx context.Context) ([]*models.CaseThread, error) {
	return s.threads.List(ctx)
}

func (s *correlationService) GetCaseThread(ctx context.Context, id uuid.UUID) (*models.CaseThread, error) {
	thread, err := s.threads.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if thread == nil {
		return nil, apperrors.ErrNotFound
	}
	return thread, nil
}

// correlationID builds a stable identifier from the correlation type and the
// participating threat ids.
func correlationID(kind string, ids ...uuid.UUID) string {
	parts := make([]string, 0, len(ids)+1)
	parts = append(parts, kind)
	for _, id := range ids {
		parts = append(parts, id.String()[:8])
	}
	return strings.Join(parts, "-")
}

// riskForConfidence maps a correlation confidence onto a risk band.
func riskForConfidence(c float64) string {
	switch {
	case c >= 0.9:
		return models.RiskCritical
	case c >= 0.75:
		return models.RiskHigh
	case c >= 0.5:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}
