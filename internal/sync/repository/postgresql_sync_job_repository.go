// Package repository provides data persistence implementations for sync jobs.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/pensionworks/pensync/internal/database"
	"github.com/pensionworks/pensync/internal/sync/domain"

	apperrors "github.com/pensionworks/pensync/internal/errors"
)

// PostgreSQLSyncJobRepository handles sync job persistence for PostgreSQL
type PostgreSQLSyncJobRepository struct {
	db *sql.DB
}

// NewPostgreSQLSyncJobRepository creates a new PostgreSQLSyncJobRepository
func NewPostgreSQLSyncJobRepository(db *sql.DB) *PostgreSQLSyncJobRepository {
	return &PostgreSQLSyncJobRepository{
		db: db,
	}
}

const syncJobColumns = `id, type, status, records_processed, records_created,
			  records_updated, records_skipped, records_failed, error_message,
			  started_at, completed_at, created_at, updated_at`

// Create inserts a new sync job in the pending state
func (r *PostgreSQLSyncJobRepository) Create(ctx context.Context, job *domain.SyncJob) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO sync_jobs (id, type, status, created_at, updated_at)
			  VALUES ($1, $2, $3, NOW(), NOW())`

	_, err := querier.ExecContext(ctx, query, job.ID, job.Type, domain.SyncJobStatusPending)
	if err != nil {
		return apperrors.Wrap(err, "failed to create sync job")
	}
	return nil
}

// Start transitions a pending job to running and stamps its start time
func (r *PostgreSQLSyncJobRepository) Start(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE sync_jobs
			  SET status = $1, started_at = NOW(), updated_at = NOW()
			  WHERE id = $2 AND status = $3`

	result, err := querier.ExecContext(ctx, query, domain.SyncJobStatusRunning, id, domain.SyncJobStatusPending)
	if err != nil {
		return apperrors.Wrap(err, "failed to start sync job")
	}
	return requireAffected(result, domain.ErrSyncJobNotFound)
}

// UpdateCounters writes the current progress counters of a running job
func (r *PostgreSQLSyncJobRepository) UpdateCounters(ctx context.Context, job *domain.SyncJob) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE sync_jobs
			  SET records_processed = $1, records_created = $2, records_updated = $3,
				  records_skipped = $4, records_failed = $5, updated_at = NOW()
			  WHERE id = $6 AND status = $7`

	result, err := querier.ExecContext(ctx, query,
		job.RecordsProcessed, job.RecordsCreated, job.RecordsUpdated,
		job.RecordsSkipped, job.RecordsFailed, job.ID, domain.SyncJobStatusRunning,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update sync job counters")
	}
	return requireAffected(result, domain.ErrJobFinalized)
}

// Complete finalizes a running job as completed with its final counters.
// The status guard makes the terminal transition happen exactly once.
func (r *PostgreSQLSyncJobRepository) Complete(ctx context.Context, job *domain.SyncJob) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE sync_jobs
			  SET status = $1, records_processed = $2, records_created = $3,
				  records_updated = $4, records_skipped = $5, records_failed = $6,
				  completed_at = NOW(), updated_at = NOW()
			  WHERE id = $7 AND status = $8`

	result, err := querier.ExecContext(ctx, query,
		domain.SyncJobStatusCompleted,
		job.RecordsProcessed, job.RecordsCreated, job.RecordsUpdated,
		job.RecordsSkipped, job.RecordsFailed,
		job.ID, domain.SyncJobStatusRunning,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to complete sync job")
	}
	return requireAffected(result, domain.ErrJobFinalized)
}

// Fail finalizes a job as failed with the abort reason and the counters
// accumulated up to the abort point.
func (r *PostgreSQLSyncJobRepository) Fail(ctx context.Context, job *domain.SyncJob, reason string) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE sync_jobs
			  SET status = $1, records_processed = $2, records_created = $3,
				  records_updated = $4, records_skipped = $5, records_failed = $6,
				  error_message = $7, completed_at = NOW(), updated_at = NOW()
			  WHERE id = $8 AND status IN ($9, $10)`

	result, err := querier.ExecContext(ctx, query,
		domain.SyncJobStatusFailed,
		job.RecordsProcessed, job.RecordsCreated, job.RecordsUpdated,
		job.RecordsSkipped, job.RecordsFailed, reason,
		job.ID, domain.SyncJobStatusPending, domain.SyncJobStatusRunning,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to fail sync job")
	}
	return requireAffected(result, domain.ErrJobFinalized)
}

// GetByID retrieves a sync job by ID
func (r *PostgreSQLSyncJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.SyncJob, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + syncJobColumns + ` FROM sync_jobs WHERE id = $1`

	job, err := scanSyncJob(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSyncJobNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get sync job")
	}
	return job, nil
}

// List retrieves sync jobs ordered by creation time, newest first
func (r *PostgreSQLSyncJobRepository) List(ctx context.Context, offset, limit int) ([]*domain.SyncJob, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + syncJobColumns + ` FROM sync_jobs
			  ORDER BY created_at DESC
			  LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list sync jobs")
	}
	defer rows.Close()

	var jobs []*domain.SyncJob
	for rows.Next() {
		var job domain.SyncJob
		err := rows.Scan(
			&job.ID, &job.Type, &job.Status,
			&job.RecordsProcessed, &job.RecordsCreated, &job.RecordsUpdated,
			&job.RecordsSkipped, &job.RecordsFailed, &job.ErrorMessage,
			&job.StartedAt, &job.CompletedAt, &job.CreatedAt, &job.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan sync job")
		}
		jobs = append(jobs, &job)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to read sync jobs")
	}

	return jobs, nil
}

// scanSyncJob maps one result row onto a sync job entity.
func scanSyncJob(row *sql.Row) (*domain.SyncJob, error) {
	var job domain.SyncJob

	err := row.Scan(
		&job.ID, &job.Type, &job.Status,
		&job.RecordsProcessed, &job.RecordsCreated, &job.RecordsUpdated,
		&job.RecordsSkipped, &job.RecordsFailed, &job.ErrorMessage,
		&job.StartedAt, &job.CompletedAt, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &job, nil
}

// requireAffected turns a zero-row update into the given domain error.
func requireAffected(result sql.Result, missing error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return missing
	}
	return nil
}
