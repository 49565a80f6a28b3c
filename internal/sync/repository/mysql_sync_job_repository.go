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

// MySQLSyncJobRepository handles sync job persistence for MySQL
type MySQLSyncJobRepository struct {
	db *sql.DB
}

// NewMySQLSyncJobRepository creates a new MySQLSyncJobRepository
func NewMySQLSyncJobRepository(db *sql.DB) *MySQLSyncJobRepository {
	return &MySQLSyncJobRepository{
		db: db,
	}
}

// Create inserts a new sync job in the pending state
func (r *MySQLSyncJobRepository) Create(ctx context.Context, job *domain.SyncJob) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO sync_jobs (id, type, status, created_at, updated_at)
			  VALUES (?, ?, ?, NOW(), NOW())`

	_, err := querier.ExecContext(ctx, query, job.ID, job.Type, domain.SyncJobStatusPending)
	if err != nil {
		return apperrors.Wrap(err, "failed to create sync job")
	}
	return nil
}

// Start transitions a pending job to running and stamps its start time
func (r *MySQLSyncJobRepository) Start(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE sync_jobs
			  SET status = ?, started_at = NOW(), updated_at = NOW()
			  WHERE id = ? AND status = ?`

	result, err := querier.ExecContext(ctx, query, domain.SyncJobStatusRunning, id, domain.SyncJobStatusPending)
	if err != nil {
		return apperrors.Wrap(err, "failed to start sync job")
	}
	return requireAffected(result, domain.ErrSyncJobNotFound)
}

// UpdateCounters writes the current progress counters of a running job
func (r *MySQLSyncJobRepository) UpdateCounters(ctx context.Context, job *domain.SyncJob) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE sync_jobs
			  SET records_processed = ?, records_created = ?, records_updated = ?,
				  records_skipped = ?, records_failed = ?, updated_at = NOW()
			  WHERE id = ? AND status = ?`

	result, err := querier.ExecContext(ctx, query,
		job.RecordsProcessed, job.RecordsCreated, job.RecordsUpdated,
		job.RecordsSkipped, job.RecordsFailed, job.ID, domain.SyncJobStatusRunning,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update sync job counters")
	}
	return requireAffected(result, domain.ErrJobFinalized)
}

// Complete finalizes a running job as completed with its final counters
func (r *MySQLSyncJobRepository) Complete(ctx context.Context, job *domain.SyncJob) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE sync_jobs
			  SET status = ?, records_processed = ?, records_created = ?,
				  records_updated = ?, records_skipped = ?, records_failed = ?,
				  completed_at = NOW(), updated_at = NOW()
			  WHERE id = ? AND status = ?`

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

// Fail finalizes a job as failed with the abort reason
func (r *MySQLSyncJobRepository) Fail(ctx context.Context, job *domain.SyncJob, reason string) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE sync_jobs
			  SET status = ?, records_processed = ?, records_created = ?,
				  records_updated = ?, records_skipped = ?, records_failed = ?,
				  error_message = ?, completed_at = NOW(), updated_at = NOW()
			  WHERE id = ? AND status IN (?, ?)`

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
func (r *MySQLSyncJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.SyncJob, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + syncJobColumns + ` FROM sync_jobs WHERE id = ?`

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
func (r *MySQLSyncJobRepository) List(ctx context.Context, offset, limit int) ([]*domain.SyncJob, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + syncJobColumns + ` FROM sync_jobs
			  ORDER BY created_at DESC
			  LIMIT ? OFFSET ?`

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
