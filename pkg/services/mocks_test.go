package services

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/vigil-intel/vigil-engine/pkg/apperrors"
	"github.com/vigil-intel/vigil-engine/pkg/config"
	"github.com/vigil-intel/vigil-engine/pkg/models"
	"github.com/vigil-intel/vigil-engine/pkg/repositories"
)

// ============================================================================
// Mock Implementations for Service Tests
// ============================================================================

type mockScanRepo struct {
	mu      sync.Mutex
	results map[uuid.UUID]*models.ScanResult

	createErr   error
	getByIDsFn  func(ctx context.Context, ids []uuid.UUID) ([]*models.ScanResult, error)
	createCalls int
}

func newMockScanRepo() *mockScanRepo {
	return &mockScanRepo{results: make(map[uuid.UUID]*models.ScanResult)}
}

var _ repositories.ScanResultRepository = (*mockScanRepo)(nil)

func (m *mockScanRepo) Create(ctx context.Context, result *models.ScanResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.createCalls++
	if result.ID == uuid.Nil {
		result.ID = uuid.New()
	}
	stored := *result
	m.results[result.ID] = &stored
	return nil
}

func (m *mockScanRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ScanResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result, ok := m.results[id]
	if !ok {
		return nil, nil
	}
	copied := *result
	return &copied, nil
}

func (m *mockScanRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.ScanResult, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, ids)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.ScanResult
	for _, id := range ids {
		if r, ok := m.results[id]; ok {
			copied := *r
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockScanRepo) List(ctx context.Context, limit, offset int) ([]*models.ScanResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.ScanResult
	for _, r := range m.results {
		copied := *r
		out = append(out, &copied)
	}
	return out, nil
}

func (m *mockScanRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	result, ok := m.results[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	result.Status = status
	return nil
}

func (m *mockScanRepo) UpdateEntities(ctx context.Context, sr *models.ScanResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.results[sr.ID]; !ok {
		return apperrors.ErrNotFound
	}
	stored := *sr
	m.results[sr.ID] = &stored
	return nil
}

type mockClientRepo struct {
	clients  map[uuid.UUID]*models.Client
	entities map[uuid.UUID][]*models.ClientEntity

	createErr      error
	getEntitiesErr error
}

func newMockClientRepo() *mockClientRepo {
	return &mockClientRepo{
		clients:  make(map[uuid.UUID]*models.Client),
		entities: make(map[uuid.UUID][]*models.ClientEntity),
	}
}

var _ repositories.ClientRepository = (*mockClientRepo)(nil)

func (m *mockClientRepo) Create(ctx context.Context, client *models.Client) error {
	if m.createErr != nil {
		return m.createErr
	}
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	m.clients[client.ID] = client
	return nil
}

func (m *mockClientRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	return m.clients[id], nil
}

func (m *mockClientRepo) List(ctx context.Context) ([]*models.Client, error) {
	var out []*models.Client
	for _, c := range m.clients {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockClientRepo) Update(ctx context.Context, client *models.Client) error {
	if _, ok := m.clients[client.ID]; !ok {
		return apperrors.ErrNotFound
	}
	m.clients[client.ID] = client
	return nil
}

func (m *mockClientRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.clients[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.clients, id)
	return nil
}

func (m *mockClientRepo) AddEntity(ctx context.Context, entity *models.ClientEntity) error {
	if entity.ID == uuid.Nil {
		entity.ID = uuid.New()
	}
	m.entities[entity.ClientID] = append(m.entities[entity.ClientID], entity)
	return nil
}

func (m *mockClientRepo) GetEntities(ctx context.Context, clientID uuid.UUID) ([]*models.ClientEntity, error) {
	if m.getEntitiesErr != nil {
		return nil, m.getEntitiesErr
	}
	return m.entities[clientID], nil
}

func (m *mockClientRepo) RemoveEntity(ctx context.Context, id uuid.UUID) error {
	for clientID, list := range m.entities {
		for i, e := range list {
			if e.ID == id {
				m.entities[clientID] = append(list[:i], list[i+1:]...)
				return nil
			}
		}
	}
	return apperrors.ErrNotFound
}

type mockCaseThreadRepo struct {
	threads   map[uuid.UUID]*models.CaseThread
	createErr error
}

func newMockCaseThreadRepo() *mockCaseThreadRepo {
	return &mockCaseThreadRepo{threads: make(map[uuid.UUID]*models.CaseThread)}
}

var _ repositories.CaseThreadRepository = (*mockCaseThreadRepo)(nil)

func (m *mockCaseThreadRepo) Create(ctx context.Context, thread *models.CaseThread) error {
	if m.createErr != nil {
		return m.createErr
	}
	if thread.ID == uuid.Nil {
		thread.ID = uuid.New()
	}
	m.threads[thread.ID] = thread
	return nil
}

func (m *mockCaseThreadRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.CaseThread, error) {
	return m.threads[id], nil
}

func (m *mockCaseThreadRepo) List(ctx context.Context) ([]*models.CaseThread, error) {
	var out []*models.CaseThread
	for _, t := range m.threads {
		out = append(out, t)
	}
	return out, nil
}

func (m *mockCaseThreadRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	thread, ok := m.threads[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	thread.Status = status
	return nil
}

// testAnalysisConfig mirrors the shipped calibration defaults.
func testAnalysisConfig() config.AnalysisConfig {
	return config.AnalysisConfig{
		JaccardThreshold:    0.7,
		TimingWindowMinutes: 30,
		UsernameConfidence:  0.9,
		TimingConfidence:    0.8,
		MaxCorrelations:     20,
		MinMatchConfidence:  0.6,
	}
}
