package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/vigil-intel/vigil-engine/pkg/models"
	"github.com/vigil-intel/vigil-engine/pkg/services"
)

// ============================================================================
// Mock Services for Handler Tests
// ============================================================================

type mockScanService struct {
	ingestFn       func(ctx context.Context, req *services.IngestRequest) (*models.ScanResult, error)
	getFn          func(ctx context.Context, id uuid.UUID) (*models.ScanResult, error)
	listFn         func(ctx context.Context, limit, offset int) ([]*models.ScanResult, error)
	updateStatusFn func(ctx context.Context, id uuid.UUID, status string) (*models.ScanResult, error)
}

var _ services.ScanService = (*mockScanService)(nil)

func (m *mockScanService) Ingest(ctx context.Context, req *services.IngestRequest) (*models.ScanResult, error) {
	return m.ingestFn(ctx, req)
}

func (m *mockScanService) Get(ctx context.Context, id uuid.UUID) (*models.ScanResult, error) {
	return m.getFn(ctx, id)
}

func (m *mockScanService) List(ctx context.Context, limit, offset int) ([]*models.ScanResult, error) {
	return m.listFn(ctx, limit, offset)
}

func (m *mockScanService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.ScanResult, error) {
	return m.updateStatusFn(ctx, id, status)
}

type mockClassificationService struct {
	classifyFn        func(ctx context.Context, content, platform, brand, extraContext string) (*models.ThreatClassification, error)
	suggestResponseFn func(ctx context.Context, content, tone string) (string, error)
	extractAdvancedFn func(ctx context.Context, text string) ([]models.Entity, error)
}

var _ services.ClassificationService = (*mockClassificationService)(nil)

func (m *mockClassificationService) Classify(ctx context.Context, content, platform, brand, extraContext string) (*models.ThreatClassification, error) {
	return m.classifyFn(ctx, content, platform, brand, extraContext)
}

func (m *mockClassificationService) SuggestResponse(ctx context.Context, content, tone string) (string, error) {
	return m.suggestResponseFn(ctx, content, tone)
}

func (m *mockClassificationService) ExtractAdvanced(ctx context.Context, text string) ([]models.Entity, error) {
	return m.extractAdvancedFn(ctx, text)
}
