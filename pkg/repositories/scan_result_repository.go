// Package repositories provides pgx-backed data access behind interfaces so
// the storage backend stays swappable.
package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vigil-intel/vigil-engine/pkg/apperrors"
	"github.com/vigil-intel/vigil-engine/pkg/database"
	"github.com/vigil-intel/vigil-engine/pkg/models"
)

// ScanResultRepository provides data access for captured mentions.
type ScanResultRepository interface {
	Create(ctx context.Context, result *models.ScanResult) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ScanResult, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.ScanResult, error)
	List(ctx context.Context, limit, offset int) ([]*models.ScanResult, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	UpdateEntities(ctx context.Context, result *models.ScanResult) error
}

type scanResultRepository struct {
	db *database.DB
}

// NewScanResultRepository creates a new ScanResultRepository.
func NewScanResultRepository(db *database.DB) ScanResultRepository {
	return &scanResultRepository{db: db}
}

var _ ScanResultRepository = (*scanResultRepository)(nil)

func (r *scanResultRepository) Create(ctx context.Context, result *models.ScanResult) error {
	now := time.Now()

	query := `
		INSERT INTO scan_results (
			content, platform, url, severity, status, threat_type,
			sentiment, confidence_score, detected_entities,
			risk_entity_name, risk_entity_type, client_id, source_type,
			potential_reach, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		result.Content,
		result.Platform,
		nullString(result.URL),
		result.Severity,
		result.Status,
		nullString(result.ThreatType),
		result.Sentiment,
		result.ConfidenceScore,
		jsonbEntities(result.DetectedEntities),
		nullString(result.RiskEntityName),
		nullString(result.RiskEntityType),
		result.ClientID,
		result.SourceType,
		result.PotentialReach,
		now,
		now,
	).Scan(&result.ID, &result.CreatedAt, &result.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create scan result: %w", err)
	}

	return nil
}

func (r *scanResultRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ScanResult, error) {
	row := r.db.QueryRow(ctx, scanResultSelect+` WHERE id = $1`, id)
	result, err := scanScanResult(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, err
	}
	return result, nil
}

func (r *scanResultRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.ScanResult, error) {
	if len(ids) == 0 {
		return []*models.ScanResult{}, nil
	}

	rows, err := r.db.Query(ctx, scanResultSelect+` WHERE id = ANY($1) ORDER BY created_at`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan results: %w", err)
	}
	defer rows.Close()

	return collectScanResults(rows)
}

func (r *scanResultRepository) List(ctx context.Context, limit, offset int) ([]*models.ScanResult, error) {
	rows, err := r.db.Query(ctx,
		scanResultSelect+` ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan results: %w", err)
	}
	defer rows.Close()

	return collectScanResults(rows)
}

func (r *scanResultRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	result, err := r.db.Exec(ctx,
		`UPDATE scan_results SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update scan result status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *scanResultRepository) UpdateEntities(ctx context.Context, sr *models.ScanResult) error {
	query := `
		UPDATE scan_results
		SET detected_entities = $2, risk_entity_name = $3, risk_entity_type = $4,
		    confidence_score = $5, updated_at = $6
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		sr.ID,
		jsonbEntities(sr.DetectedEntities),
		nullString(sr.RiskEntityName),
		nullString(sr.RiskEntityType),
		sr.ConfidenceScore,
		time.Now(),
	).Scan(&sr.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to update scan result entities: %w", err)
	}
	return nil
}

// ============================================================================
// Helper Functions
// ============================================================================

const scanResultSelect = `
	SELECT id, content, platform, url, severity, status, threat_type,
	       sentiment, confidence_score, detected_entities,
	       risk_entity_name, risk_entity_type, client_id, source_type,
	       potential_reach, created_at, updated_at
	FROM scan_results`

func scanScanResult(row pgx.Row) (*models.ScanResult, error) {
	var sr models.ScanResult
	var url, threatType, riskName, riskType *string
	var detected []byte

	err := row.Scan(
		&sr.ID,
		&sr.Content,
		&sr.Platform,
		&url,
		&sr.Severity,
		&sr.Status,
		&threatType,
		&sr.Sentiment,
		&sr.ConfidenceScore,
		&detected,
		&riskName,
		&riskType,
		&sr.ClientID,
		&sr.SourceType,
		&sr.PotentialReach,
		&sr.CreatedAt,
		&sr.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan scan result: %w", err)
	}

	if url != nil {
		sr.URL = *url
	}
	if threatType != nil {
		sr.ThreatType = *threatType
	}
	if riskName != nil {
		sr.RiskEntityName = *riskName
	}
	if riskType != nil {
		sr.RiskEntityType = *riskType
	}

	if len(detected) > 0 && string(detected) != "null" {
		if err := json.Unmarshal(detected, &sr.DetectedEntities); err != nil {
			return nil, fmt.Errorf("failed to unmarshal detected_entities: %w", err)
		}
	}

	return &sr, nil
}

func collectScanResults(rows pgx.Rows) ([]*models.ScanResult, error) {
	var results []*models.ScanResult
	for rows.Next() {
		sr, err := scanScanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scan results: %w", err)
	}
	return results, nil
}

// nullString returns nil if the string is empty, otherwise returns the string pointer.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// jsonbEntities converts an entity slice to JSONB bytes for insertion.
// Empty slices store NULL.
func jsonbEntities(entities []models.Entity) []byte {
	if len(entities) == 0 {
		return nil
	}
	b, err := json.Marshal(entities)
	if err != nil {
		return nil
	}
	return b
}
