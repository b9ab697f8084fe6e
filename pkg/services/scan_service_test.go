package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vigil-intel/vigil-engine/pkg/apperrors"
	"github.com/vigil-intel/vigil-engine/pkg/models"
)

func newScanService(scans *mockScanRepo, clients *mockClientRepo) ScanService {
	return NewScanService(scans, clients, testAnalysisConfig(), zap.NewNop())
}

func TestIngest_Validation(t *testing.T) {
	svc := newScanService(newMockScanRepo(), newMockClientRepo())

	_, err := svc.Ingest(context.Background(), &IngestRequest{Platform: "twitter"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Ingest(context.Background(), &IngestRequest{Content: "something"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Ingest(context.Background(), &IngestRequest{
		Content: "something", Platform: "twitter", Severity: "catastrophic",
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestIngest_TagsCompanyRiskEntity(t *testing.T) {
	scans := newMockScanRepo()
	svc := newScanService(scans, newMockClientRepo())

	result, err := svc.Ingest(context.Background(), &IngestRequest{
		Content:  "Acme Corp LLC is defrauding its customers, spread the word",
		Platform: "Reddit",
	})
	require.NoError(t, err)

	assert.Equal(t, models.EntityOrganization, result.RiskEntityType)
	assert.Contains(t, result.RiskEntityName, "Acme")
	assert.Equal(t, models.StatusNew, result.Status)
	assert.Equal(t, models.SeverityLow, result.Severity, "severity defaults to low")
	assert.Equal(t, models.SourceManual, result.SourceType)
	assert.Equal(t, "reddit", result.Platform, "platform is normalized")
	assert.NotEmpty(t, result.DetectedEntities)
	assert.NotEqual(t, uuid.Nil, result.ID)
	assert.Equal(t, 1, scans.createCalls)
}

func TestIngest_PersonOutranksOrganization(t *testing.T) {
	svc := newScanService(newMockScanRepo(), newMockClientRepo())

	result, err := svc.Ingest(context.Background(), &IngestRequest{
		Content:  "John Smith of Acme Corp LLC is a crook",
		Platform: "twitter",
	})
	require.NoError(t, err)

	assert.Equal(t, models.EntityPerson, result.RiskEntityType)
	assert.Equal(t, "John Smith", result.RiskEntityName)
}

func TestIngest_NoEntities(t *testing.T) {
	svc := newScanService(newMockScanRepo(), newMockClientRepo())

	result, err := svc.Ingest(context.Background(), &IngestRequest{
		Content:  "nothing notable happened here at all",
		Platform: "twitter",
	})
	require.NoError(t, err)

	assert.Equal(t, models.EntityUnknown, result.RiskEntityType)
	assert.Empty(t, result.RiskEntityName)
}

func TestIngest_ClientEntityMatch(t *testing.T) {
	scans := newMockScanRepo()
	clients := newMockClientRepo()
	client := &models.Client{Name: "Acme", ContactEmail: "ops@acme.example"}
	require.NoError(t, clients.Create(context.Background(), client))
	require.NoError(t, clients.AddEntity(context.Background(), &models.ClientEntity{
		ClientID:   client.ID,
		EntityName: "Acme Corp",
		EntityType: models.EntityOrganization,
	}))

	svc := newScanService(scans, clients)

	result, err := svc.Ingest(context.Background(), &IngestRequest{
		Content:  "acme corp ripped me off and I want everyone to know",
		Platform: "reddit",
		ClientID: &client.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, "Acme Corp", result.RiskEntityName)
	assert.Equal(t, models.EntityOrganization, result.RiskEntityType)
	assert.Equal(t, 1.0, result.ConfidenceScore, "exact phrase match")
}

func TestIngest_ClientEntityNoMatchRejected(t *testing.T) {
	clients := newMockClientRepo()
	client := &models.Client{Name: "Acme", ContactEmail: "ops@acme.example"}
	require.NoError(t, clients.Create(context.Background(), client))
	require.NoError(t, clients.AddEntity(context.Background(), &models.ClientEntity{
		ClientID:   client.ID,
		EntityName: "Acme Corp",
		EntityType: models.EntityOrganization,
	}))

	svc := newScanService(newMockScanRepo(), clients)

	_, err := svc.Ingest(context.Background(), &IngestRequest{
		Content:  "some totally unrelated rant about the weather",
		Platform: "reddit",
		ClientID: &client.ID,
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestIngest_UnknownClient(t *testing.T) {
	svc := newScanService(newMockScanRepo(), newMockClientRepo())
	unknown := uuid.New()

	_, err := svc.Ingest(context.Background(), &IngestRequest{
		Content:  "whatever content",
		Platform: "reddit",
		ClientID: &unknown,
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateStatus_ForwardOnly(t *testing.T) {
	scans := newMockScanRepo()
	svc := newScanService(scans, newMockClientRepo())

	result, err := svc.Ingest(context.Background(), &IngestRequest{
		Content:  "Acme Corp LLC again",
		Platform: "twitter",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), result.ID, models.StatusRead)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRead, updated.Status)

	updated, err = svc.UpdateStatus(context.Background(), result.ID, models.StatusResolved)
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, updated.Status)

	// No moving backwards, and no unknown statuses.
	_, err = svc.UpdateStatus(context.Background(), result.ID, models.StatusRead)
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)

	_, err = svc.UpdateStatus(context.Background(), result.ID, "deleted")
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	svc := newScanService(newMockScanRepo(), newMockClientRepo())

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), models.StatusRead)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGet_NotFound(t *testing.T) {
	svc := newScanService(newMockScanRepo(), newMockClientRepo())

	_, err := svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
