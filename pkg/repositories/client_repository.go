package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vigil-intel/vigil-engine/pkg/apperrors"
	"github.com/vigil-intel/vigil-engine/pkg/database"
	"github.com/vigil-intel/vigil-engine/pkg/models"
)

// ClientRepository provides data access for managed clients and the entities
// monitored on their behalf.
type ClientRepository interface {
	Create(ctx context.Context, client *models.Client) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
	List(ctx context.Context) ([]*models.Client, error)
	Update(ctx context.Context, client *models.Client) error
	Delete(ctx context.Context, id uuid.UUID) error

	AddEntity(ctx context.Context, entity *models.ClientEntity) error
	GetEntities(ctx context.Context, clientID uuid.UUID) ([]*models.ClientEntity, error)
	RemoveEntity(ctx context.Context, id uuid.UUID) error
}

type clientRepository struct {
	db *database.DB
}

// NewClientRepository creates a new ClientRepository.
func NewClientRepository(db *database.DB) ClientRepository {
	return &clientRepository{db: db}
}

var _ ClientRepository = (*clientRepository)(nil)

func (r *clientRepository) Create(ctx context.Context, client *models.Client) error {
	now := time.Now()

	query := `
		INSERT INTO clients (name, contact_name, contact_email, website, industry, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		client.Name,
		nullString(client.ContactName),
		client.ContactEmail,
		nullString(client.Website),
		nullString(client.Industry),
		nullString(client.Notes),
		now,
		now,
	).Scan(&client.ID, &client.CreatedAt, &client.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to create client: %w", err)
	}

	return nil
}

func (r *clientRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	row := r.db.QueryRow(ctx, clientSelect+` WHERE id = $1`, id)
	client, err := scanClient(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, err
	}
	return client, nil
}

func (r *clientRepository) List(ctx context.Context) ([]*models.Client, error) {
	rows, err := r.db.Query(ctx, clientSelect+` ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clients: %w", err)
	}
	return clients, nil
}

func (r *clientRepository) Update(ctx context.Context, client *models.Client) error {
	query := `
		UPDATE clients
		SET name = $2, contact_name = $3, contact_email = $4, website = $5, industry = $6, notes = $7, updated_at = $8
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		client.ID,
		client.Name,
		nullString(client.ContactName),
		client.ContactEmail,
		nullString(client.Website),
		nullString(client.Industry),
		nullString(client.Notes),
		time.Now(),
	).Scan(&client.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to update client: %w", err)
	}
	return nil
}

func (r *clientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *clientRepository) AddEntity(ctx context.Context, entity *models.ClientEntity) error {
	now := time.Now()

	aliases, err := json.Marshal(entity.Aliases)
	if err != nil {
		return fmt.Errorf("failed to marshal aliases: %w", err)
	}

	query := `
		INSERT INTO client_entities (client_id, entity_name, entity_type, aliases, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err = r.db.QueryRow(ctx, query,
		entity.ClientID,
		entity.EntityName,
		entity.EntityType,
		aliases,
		now,
	).Scan(&entity.ID, &entity.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to add client entity: %w", err)
	}

	return nil
}

func (r *clientRepository) GetEntities(ctx context.Context, clientID uuid.UUID) ([]*models.ClientEntity, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, client_id, entity_name, entity_type, aliases, created_at
		FROM client_entities
		WHERE client_id = $1
		ORDER BY entity_name`, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query client entities: %w", err)
	}
	defer rows.Close()

	var entities []*models.ClientEntity
	for rows.Next() {
		var e models.ClientEntity
		var aliases []byte
		if err := rows.Scan(&e.ID, &e.ClientID, &e.EntityName, &e.EntityType, &aliases, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan client entity: %w", err)
		}
		if len(aliases) > 0 && string(aliases) != "null" {
			if err := json.Unmarshal(aliases, &e.Aliases); err != nil {
				return nil, fmt.Errorf("failed to unmarshal aliases: %w", err)
			}
		}
		entities = append(entities, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating client entities: %w", err)
	}
	return entities, nil
}

func (r *clientRepository) RemoveEntity(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM client_entities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to remove client entity: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

const clientSelect = `
	SELECT id, name, contact_name, contact_email, website, industry, notes, created_at, updated_at
	FROM clients`

func scanClient(row pgx.Row) (*models.Client, error) {
	var c models.Client
	var contactName, website, industry, notes *string

	err := row.Scan(&c.ID, &c.Name, &contactName, &c.ContactEmail, &website, &industry, &notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan client: %w", err)
	}

	if contactName != nil {
		c.ContactName = *contactName
	}
	if website != nil {
		c.Website = *website
	}
	if industry != nil {
		c.Industry = *industry
	}
	if notes != nil {
		c.Notes = *notes
	}
	return &c, nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint error.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}

// isForeignKeyViolation reports whether err is a Postgres FK constraint error.
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23503")
}
