package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pensionworks/pensync/internal/breaker"
	"github.com/pensionworks/pensync/internal/metrics"
	"github.com/pensionworks/pensync/internal/sync/domain"
	"github.com/pensionworks/pensync/internal/warehouse"
)

// useCaseWithMetrics decorates UseCase with metrics instrumentation.
type useCaseWithMetrics struct {
	next    UseCase
	metrics metrics.BusinessMetrics
}

// NewUseCaseWithMetrics wraps a UseCase with metrics recording.
func NewUseCaseWithMetrics(useCase UseCase, m metrics.BusinessMetrics) UseCase {
	return &useCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Sync records metrics for full sync runs.
func (u *useCaseWithMetrics) Sync(
	ctx context.Context,
	options domain.SyncOptions,
) (*domain.SyncResult, error) {
	start := time.Now()
	result, err := u.next.Sync(ctx, options)

	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(ctx, "sync", "sync_run", status)
	u.metrics.RecordDuration(ctx, "sync", "sync_run", time.Since(start), status)
	if result != nil {
		u.metrics.RecordSyncOutcome(ctx, result.Created, result.Updated, result.Skipped, result.Failed)
	}

	return result, err
}

// Preview records metrics for warehouse preview operations.
func (u *useCaseWithMetrics) Preview(
	ctx context.Context,
	branchCodes []string,
	limit int,
) ([]warehouse.Record, error) {
	start := time.Now()
	records, err := u.next.Preview(ctx, branchCodes, limit)

	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(ctx, "sync", "preview", status)
	u.metrics.RecordDuration(ctx, "sync", "preview", time.Since(start), status)

	return records, err
}

// GetJob records metrics for job retrieval operations.
func (u *useCaseWithMetrics) GetJob(ctx context.Context, id uuid.UUID) (*domain.SyncJob, error) {
	start := time.Now()
	job, err := u.next.GetJob(ctx, id)

	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(ctx, "sync", "job_get", status)
	u.metrics.RecordDuration(ctx, "sync", "job_get", time.Since(start), status)

	return job, err
}

// ListJobs records metrics for job list operations.
func (u *useCaseWithMetrics) ListJobs(
	ctx context.Context,
	offset, limit int,
) ([]*domain.SyncJob, error) {
	start := time.Now()
	jobs, err := u.next.ListJobs(ctx, offset, limit)

	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(ctx, "sync", "job_list", status)
	u.metrics.RecordDuration(ctx, "sync", "job_list", time.Since(start), status)

	return jobs, err
}

// CircuitState passes through without instrumentation.
func (u *useCaseWithMetrics) CircuitState() breaker.Snapshot {
	return u.next.CircuitState()
}

// Circuits passes through without instrumentation.
func (u *useCaseWithMetrics) Circuits() []breaker.Snapshot {
	return u.next.Circuits()
}
