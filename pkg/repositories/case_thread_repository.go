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

// CaseThreadRepository provides data access for investigation case threads.
type CaseThreadRepository interface {
	Create(ctx context.Context, thread *models.CaseThread) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.CaseThread, error)
	List(ctx context.Context) ([]*models.CaseThread, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type caseThreadRepository struct {
	db *database.DB
}

// NewCaseThreadRepository creates a new CaseThreadRepository.
func NewCaseThreadRepository(db *database.DB) CaseThreadRepository {
	return &caseThreadRepository{db: db}
}

var _ CaseThreadRepository = (*caseThreadRepository)(nil)

func (r *caseThreadRepository) Create(ctx context.Context, thread *models.CaseThread) error {
	now := time.Now()

	summary, err := json.Marshal(thread.CorrelationSummary)
	if err != nil {
		return fmt.Errorf("failed to marshal correlation summary: %w", err)
	}
	threatIDs, err := json.Marshal(thread.ThreatIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal threat ids: %w", err)
	}

	query := `
		INSERT INTO case_threads (title, status, priority, threat_ids, correlation_summary, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err = r.db.QueryRow(ctx, query,
		thread.Title,
		thread.Status,
		thread.Priority,
		threatIDs,
		summary,
		now,
		now,
	).Scan(&thread.ID, &thread.CreatedAt, &thread.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create case thread: %w", err)
	}

	return nil
}

func (r *caseThreadRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.CaseThread, error) {
	row := r.db.QueryRow(ctx, caseThreadSelect+` WHERE id = $1`, id)
	thread, err := scanCaseThread(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, err
	}
	return thread, nil
}

func (r *caseThreadRepository) List(ctx context.Context) ([]*models.CaseThread, error) {
	rows, err := r.db.Query(ctx, caseThreadSelect+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query case threads: %w", err)
	}
	defer rows.Close()

	var threads []*models.CaseThread
	for rows.Next() {
		thread, err := scanCaseThread(rows)
		if err != nil {
			return nil, err
		}
		threads = append(threads, thread)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating case threads: %w", err)
	}
	return threads, nil
}

func (r *caseThreadRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	result, err := r.db.Exec(ctx,
		`UPDATE case_threads SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update case thread status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

const caseThreadSelect = `
	SELECT id, title, status, priority, threat_ids, correlation_summary, created_at, updated_at
	FROM case_threads`

func scanCaseThread(row pgx.Row) (*models.CaseThread, error) {
	var t models.CaseThread
	var threatIDs, summary []byte

	err := row.Scan(&t.ID, &t.Title, &t.Status, &t.Priority, &threatIDs, &summary, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan case thread: %w", err)
	}

	if len(threatIDs) > 0 && string(threatIDs) != "null" {
		if err := json.Unmarshal(threatIDs, &t.ThreatIDs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal threat ids: %w", err)
		}
	}
	if len(summary) > 0 && string(summary) != "null" {
		if err := json.Unmarshal(summary, &t.CorrelationSummary); err != nil {
			return nil, fmt.Errorf("failed to unmarshal correlation summary: %w", err)
		}
	}

	return &t, nil
}
