//go:build integration

package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigil-intel/vigil-engine/pkg/apperrors"
	"github.com/vigil-intel/vigil-engine/pkg/models"
	"github.com/vigil-intel/vigil-engine/pkg/testhelpers"
)

// repoTestContext holds shared dependencies for repository integration tests.
type repoTestContext struct {
	t           *testing.T
	tdb         *testhelpers.TestDB
	scans       ScanResultRepository
	clients     ClientRepository
	caseThreads CaseThreadRepository
}

func setupRepoTest(t *testing.T) *repoTestContext {
	tdb := testhelpers.GetTestDB(t)
	tc := &repoTestContext{
		t:           t,
		tdb:         tdb,
		scans:       NewScanResultRepository(tdb.DB),
		clients:     NewClientRepository(tdb.DB),
		caseThreads: NewCaseThreadRepository(tdb.DB),
	}
	t.Cleanup(func() {
		tdb.Truncate(t, "case_threads", "scan_results", "client_entities", "clients")
	})
	return tc
}

func (tc *repoTestContext) createScan(ctx context.Context, content string) *models.ScanResult {
	tc.t.Helper()
	sr := &models.ScanResult{
		Content:    content,
		Platform:   "twitter",
		Severity:   models.SeverityMedium,
		Status:     models.StatusNew,
		Sentiment:  -0.4,
		SourceType: models.SourceManual,
		DetectedEntities: []models.Entity{
			{Name: "@spambot", Type: models.EntityHandle, Confidence: 0.95, Mentions: 1},
		},
	}
	require.NoError(tc.t, tc.scans.Create(ctx, sr))
	return sr
}

func TestScanResultRepository_CreateAndGet(t *testing.T) {
	tc := setupRepoTest(t)
	ctx := context.Background()

	created := tc.createScan(ctx, "Acme Corp is a scam, avoid them")
	require.NotEqual(t, uuid.Nil, created.ID)

	got, err := tc.scans.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Acme Corp is a scam, avoid them", got.Content)
	assert.Equal(t, models.StatusNew, got.Status)
	require.Len(t, got.DetectedEntities, 1)
	assert.Equal(t, "@spambot", got.DetectedEntities[0].Name)
}

func TestScanResultRepository_GetByID_NotFound(t *testing.T) {
	tc := setupRepoTest(t)

	got, err := tc.scans.GetByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestScanResultRepository_GetByIDs(t *testing.T) {
	tc := setupRepoTest(t)
	ctx := context.Background()

	first := tc.createScan(ctx, "first mention")
	second := tc.createScan(ctx, "second mention")
	tc.createScan(ctx, "not requested")

	got, err := tc.scans.GetByIDs(ctx, []uuid.UUID{first.ID, second.ID})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	empty, err := tc.scans.GetByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestScanResultRepository_List(t *testing.T) {
	tc := setupRepoTest(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		tc.createScan(ctx, "mention")
	}

	page, err := tc.scans.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	rest, err := tc.scans.List(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}

func TestScanResultRepository_UpdateStatus(t *testing.T) {
	tc := setupRepoTest(t)
	ctx := context.Background()

	sr := tc.createScan(ctx, "mention")
	require.NoError(t, tc.scans.UpdateStatus(ctx, sr.ID, models.StatusRead))

	got, err := tc.scans.GetByID(ctx, sr.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRead, got.Status)

	err = tc.scans.UpdateStatus(ctx, uuid.New(), models.StatusRead)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestScanResultRepository_UpdateEntities(t *testing.T) {
	tc := setupRepoTest(t)
	ctx := context.Background()

	sr := tc.createScan(ctx, "mention")
	sr.DetectedEntities = append(sr.DetectedEntities, models.Entity{
		Name: "Acme Corp", Type: models.EntityOrganization, Confidence: 0.85, Mentions: 1,
	})
	sr.RiskEntityName = "Acme Corp"
	sr.RiskEntityType = models.EntityOrganization
	sr.ConfidenceScore = 0.85

	require.NoError(t, tc.scans.UpdateEntities(ctx, sr))

	got, err := tc.scans.GetByID(ctx, sr.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", got.RiskEntityName)
	assert.Len(t, got.DetectedEntities, 2)
}

func TestClientRepository_CRUD(t *testing.T) {
	tc := setupRepoTest(t)
	ctx := context.Background()

	client := &models.Client{
		Name:         "Acme Corp",
		ContactEmail: "ops@acme.example",
		Industry:     "manufacturing",
	}
	require.NoError(t, tc.clients.Create(ctx, client))
	require.NotEqual(t, uuid.Nil, client.ID)

	got, err := tc.clients.GetByID(ctx, client.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Acme Corp", got.Name)
	assert.Equal(t, "manufacturing", got.Industry)
	assert.Empty(t, got.Notes)

	got.Notes = "priority account"
	require.NoError(t, tc.clients.Update(ctx, got))

	updated, err := tc.clients.GetByID(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, "priority account", updated.Notes)

	all, err := tc.clients.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, tc.clients.Delete(ctx, client.ID))
	gone, err := tc.clients.GetByID(ctx, client.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestClientRepository_DuplicateEmailConflicts(t *testing.T) {
	tc := setupRepoTest(t)
	ctx := context.Background()

	first := &models.Client{Name: "Acme Corp", ContactEmail: "ops@acme.example"}
	require.NoError(t, tc.clients.Create(ctx, first))

	dup := &models.Client{Name: "Other Inc", ContactEmail: "OPS@acme.example"}
	err := tc.clients.Create(ctx, dup)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestClientRepository_Entities(t *testing.T) {
	tc := setupRepoTest(t)
	ctx := context.Background()

	client := &models.Client{Name: "Acme Corp", ContactEmail: "ops@acme.example"}
	require.NoError(t, tc.clients.Create(ctx, client))

	entity := &models.ClientEntity{
		ClientID:   client.ID,
		EntityName: "John Smith",
		EntityType: models.EntityPerson,
		Aliases:    []string{"@jsmith_real"},
	}
	require.NoError(t, tc.clients.AddEntity(ctx, entity))

	entities, err := tc.clients.GetEntities(ctx, client.ID)
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "John Smith", entities[0].EntityName)
	assert.Equal(t, []string{"@jsmith_real"}, entities[0].Aliases)

	require.NoError(t, tc.clients.RemoveEntity(ctx, entity.ID))
	entities, err = tc.clients.GetEntities(ctx, client.ID)
	require.NoError(t, err)
	assert.Empty(t, entities)
}

func TestClientRepository_AddEntity_UnknownClient(t *testing.T) {
	tc := setupRepoTest(t)

	entity := &models.ClientEntity{
		ClientID:   uuid.New(),
		EntityName: "John Smith",
		EntityType: models.EntityPerson,
	}
	err := tc.clients.AddEntity(context.Background(), entity)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestClientRepository_DeleteCascadesEntities(t *testing.T) {
	tc := setupRepoTest(t)
	ctx := context.Background()

	client := &models.Client{Name: "Acme Corp", ContactEmail: "ops@acme.example"}
	require.NoError(t, tc.clients.Create(ctx, client))
	require.NoError(t, tc.clients.AddEntity(ctx, &models.ClientEntity{
		ClientID:   client.ID,
		EntityName: "Acme Corp",
		EntityType: models.EntityOrganization,
	}))

	require.NoError(t, tc.clients.Delete(ctx, client.ID))

	entities, err := tc.clients.GetEntities(ctx, client.ID)
	require.NoError(t, err)
	assert.Empty(t, entities)
}

func TestCaseThreadRepository_CreateAndGet(t *testing.T) {
	tc := setupRepoTest(t)
	ctx := context.Background()

	first := tc.createScan(ctx, "coordinated post one")
	second := tc.createScan(ctx, "coordinated post two")

	thread := &models.CaseThread{
		Title:     "Coordinated smear campaign",
		Status:    models.CaseOpen,
		Priority:  models.RiskHigh,
		ThreatIDs: []uuid.UUID{first.ID, second.ID},
		CorrelationSummary: []models.ThreatCorrelation{
			{
				ID:              "username-abc",
				ThreatIDs:       []uuid.UUID{first.ID, second.ID},
				CorrelationType: models.CorrelationUsername,
				Confidence:      0.9,
				Evidence:        []string{"shared handle @spambot across 2 threats"},
				RiskLevel:       models.RiskCritical,
			},
		},
	}
	require.NoError(t, tc.caseThreads.Create(ctx, thread))

	got, err := tc.caseThreads.GetByID(ctx, thread.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Coordinated smear campaign", got.Title)
	assert.Equal(t, []uuid.UUID{first.ID, second.ID}, got.ThreatIDs)
	require.Len(t, got.CorrelationSummary, 1)
	assert.Equal(t, models.CorrelationUsername, got.CorrelationSummary[0].CorrelationType)
}

func TestCaseThreadRepository_List(t *testing.T) {
	tc := setupRepoTest(t)
	ctx := context.Background()

	scan := tc.createScan(ctx, "mention")
	for _, title := range []string{"first case", "second case"} {
		require.NoError(t, tc.caseThreads.Create(ctx, &models.CaseThread{
			Title:     title,
			Status:    models.CaseOpen,
			Priority:  models.RiskLow,
			ThreatIDs: []uuid.UUID{scan.ID},
		}))
	}

	threads, err := tc.caseThreads.List(ctx)
	require.NoError(t, err)
	assert.Len(t, threads, 2)
}

func TestCaseThreadRepository_UpdateStatus(t *testing.T) {
	tc := setupRepoTest(t)
	ctx := context.Background()

	scan := tc.createScan(ctx, "mention")
	thread := &models.CaseThread{
		Title:     "case",
		Status:    models.CaseOpen,
		Priority:  models.RiskLow,
		ThreatIDs: []uuid.UUID{scan.ID},
	}
	require.NoError(t, tc.caseThreads.Create(ctx, thread))

	require.NoError(t, tc.caseThreads.UpdateStatus(ctx, thread.ID, models.CaseClosed))
	got, err := tc.caseThreads.GetByID(ctx, thread.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CaseClosed, got.Status)

	err = tc.caseThreads.UpdateStatus(ctx, uuid.New(), models.CaseClosed)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
