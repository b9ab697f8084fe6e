package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vigil-intel/vigil-engine/pkg/apperrors"
	"github.com/vigil-intel/vigil-engine/pkg/models"
	"github.com/vigil-intel/vigil-engine/pkg/repositories"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ClientService manages clients and their monitored entities.
type ClientService interface {
	Create(ctx context.Context, client *models.Client) (*models.Client, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Client, error)
	List(ctx context.Context) ([]*models.Client, error)
	Update(ctx context.Context, client *models.Client) (*models.Client, error)
	Delete(ctx context.Context, id uuid.UUID) error

	AddEntity(ctx context.Context, entity *models.ClientEntity) (*models.ClientEntity, error)
	ListEntities(ctx context.Context, clientID uuid.UUID) ([]*models.ClientEntity, error)
	RemoveEntity(ctx context.Context, id uuid.UUID) error
}

type clientService struct {
	repo   repositories.ClientRepository
	logger *zap.Logger
}

// NewClientService creates a new ClientService.
func NewClientService(repo repositories.ClientRepository, logger *zap.Logger) ClientService {
	return &clientService{
		repo:   repo,
		logger: logger.Named("client_service"),
	}
}

var _ ClientService = (*clientService)(nil)

func validateClient(client *models.Client) error {
	if strings.TrimSpace(client.Name) == "" {
		return fmt.Errorf("%w: client name is required", apperrors.ErrValidation)
	}
	if !emailPattern.MatchString(client.ContactEmail) {
		return fmt.Errorf("%w: invalid contact email %q", apperrors.ErrValidation, client.ContactEmail)
	}
	return nil
}

func (s *clientService) Create(ctx context.Context, client *models.Client) (*models.Client, error) {
	if err := validateClient(client); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, client); err != nil {
		return nil, err
	}

	s.logger.Info("client created", zap.String("client_id", client.ID.String()))
	return client, nil
}

func (s *clientService) Get(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	client, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperrors.ErrNotFound
	}
	return client, nil
}

func (s *clientService) List(ctx context.Context) ([]*models.Client, error) {
	return s.repo.List(ctx)
}

func (s *clientService) Update(ctx context.Context, client *models.Client) (*models.Client, error) {
	if err := validateClient(client); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *clientService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("client deleted", zap.String("client_id", id.String()))
	return nil
}

func (s *clientService) AddEntity(ctx context.Context, entity *models.ClientEntity) (*models.ClientEntity, error) {
	if strings.TrimSpace(entity.EntityName) == "" {
		return nil, fmt.Errorf("%w: entity name is required", apperrors.ErrValidation)
	}
	if entity.EntityType == "" {
		entity.EntityType = models.EntityUnknown
	}

	if err := s.repo.AddEntity(ctx, entity); err != nil {
		return nil, err
	}

	s.logger.Info("client entity added",
		zap.String("client_id", entity.ClientID.String()),
		zap.String("entity_type", entity.EntityType))
	return entity, nil
}

func (s *clientService) ListEntities(ctx context.Context, clientID uuid.UUID) ([]*models.ClientEntity, error) {
	client, err := s.repo.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperrors.ErrNotFound
	}
	return s.repo.GetEntities(ctx, clientID)
}

func (s *clientService) RemoveEntity(ctx context.Context, id uuid.UUID) error {
	return s.repo.RemoveEntity(ctx, id)
}
