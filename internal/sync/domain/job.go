// Package domain defines the core sync domain entities and types.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/pensionworks/pensync/internal/errors"
)

// SyncJobStatus represents the lifecycle status of a sync job.
type SyncJobStatus string

const (
	SyncJobStatusPending   SyncJobStatus = "pending"
	SyncJobStatusRunning   SyncJobStatus = "running"
	SyncJobStatusCompleted SyncJobStatus = "completed"
	SyncJobStatusFailed    SyncJobStatus = "failed"
)

// SyncTypeWarehouse identifies full or branch-filtered ingestion runs from the
// analytical warehouse.
const SyncTypeWarehouse = "warehouse"

// SyncJob is the audit record describing one execution of the ingestion
// pipeline. Counters only grow during a run, and a terminal status
// (completed or failed) is written exactly once; after that the job is never
// reopened.
type SyncJob struct {
	ID               uuid.UUID
	Type             string
	Status           SyncJobStatus
	RecordsProcessed int
	RecordsCreated   int
	RecordsUpdated   int
	RecordsSkipped   int
	RecordsFailed    int
	ErrorMessage     *string
	StartedAt        *time.Time
	CompletedAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// SyncOptions controls a single sync run.
type SyncOptions struct {
	// BranchCodes restricts the run to warehouse rows from the given branches.
	// Empty means a full sync. A filter matching no rows is a zero-row
	// completed run, not an error.
	BranchCodes []string
	// DryRun computes the created/updated/skipped classification but skips
	// both the upsert and the change recording.
	DryRun bool
	// RecordChanges enables per-field change history for updated records.
	RecordChanges bool
	// Authorized carries the caller's pre-resolved permission decision.
	// Authorization policy itself lives outside the sync core.
	Authorized bool
}

// SyncResult is the immutable summary returned to the caller once a run has
// finalized.
type SyncResult struct {
	SyncJobID      uuid.UUID     `json:"sync_job_id"`
	TotalProcessed int           `json:"total_processed"`
	Created        int           `json:"created"`
	Updated        int           `json:"updated"`
	Skipped        int           `json:"skipped"`
	Failed         int           `json:"failed"`
	ProcessingTime time.Duration `json:"-"`
}

// Domain-specific errors for sync operations.
var (
	// ErrSyncJobNotFound indicates the requested sync job does not exist.
	ErrSyncJobNotFound = errors.Wrap(errors.ErrNotFound, "sync job not found")

	// ErrSyncNotPermitted indicates the caller's permission decision denied the run.
	ErrSyncNotPermitted = errors.Wrap(errors.ErrForbidden, "sync not permitted")

	// ErrCacheBuild indicates the lookup cache could not be built and the run
	// was aborted before touching the warehouse.
	ErrCacheBuild = errors.Wrap(errors.ErrUnavailable, "failed to build lookup cache")

	// ErrWarehouseIsolated indicates the warehouse circuit is open; callers
	// should retry after the configured cooldown.
	ErrWarehouseIsolated = errors.Wrap(errors.ErrUnavailable, "warehouse circuit open")

	// ErrJobFinalized indicates an attempt to write a terminal status to a job
	// that already has one. Terminal statuses are written exactly once.
	ErrJobFinalized = errors.Wrap(errors.ErrConflict, "sync job already finalized")
)
