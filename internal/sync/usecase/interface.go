// Package usecase implements the sync business logic and orchestrates
// warehouse ingestion runs.
package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/pensionworks/pensync/internal/breaker"
	clientDomain "github.com/pensionworks/pensync/internal/client/domain"
	"github.com/pensionworks/pensync/internal/sync/domain"
	"github.com/pensionworks/pensync/internal/warehouse"
)

// UseCase defines the interface for sync business logic operations.
type UseCase interface {
	// Sync runs one full or branch-filtered ingestion from the warehouse.
	Sync(ctx context.Context, options domain.SyncOptions) (*domain.SyncResult, error)
	// Preview fetches up to limit raw warehouse rows without creating a job
	// or writing anything.
	Preview(ctx context.Context, branchCodes []string, limit int) ([]warehouse.Record, error)
	// GetJob retrieves one sync job by id.
	GetJob(ctx context.Context, id uuid.UUID) (*domain.SyncJob, error)
	// ListJobs retrieves past sync jobs, newest first.
	ListJobs(ctx context.Context, offset, limit int) ([]*domain.SyncJob, error)
	// CircuitState reports the warehouse breaker's current state.
	CircuitState() breaker.Snapshot
	// Circuits reports the state of every registered breaker.
	Circuits() []breaker.Snapshot
}

// WarehouseReader defines the paged read interface of the analytical warehouse.
type WarehouseReader interface {
	FetchPage(ctx context.Context, branchCodes []string, offset, limit int) ([]warehouse.Record, error)
}

// ClientRepository defines client repository operations used by the sync core.
type ClientRepository interface {
	GetByCode(ctx context.Context, clientCode string) (*clientDomain.Client, error)
	Upsert(ctx context.Context, client *clientDomain.Client) (*clientDomain.UpsertResult, error)
}

// ChangeRepository defines the append-only change history store.
type ChangeRepository interface {
	CreateBatch(ctx context.Context, changes []clientDomain.SyncChange) error
}

// LookupRepository defines the reference-table reads backing the lookup cache.
type LookupRepository interface {
	PensionTypes(ctx context.Context) (map[string]uuid.UUID, error)
	PensionerTypes(ctx context.Context) (map[string]uuid.UUID, error)
	Products(ctx context.Context) (map[string]uuid.UUID, error)
	Branches(ctx context.Context) (map[string]uuid.UUID, error)
	PARStatuses(ctx context.Context) (map[string]uuid.UUID, error)
	AccountTypes(ctx context.Context) (map[string]uuid.UUID, error)
}

// SyncJobRepository defines the sync job lifecycle store.
type SyncJobRepository interface {
	Create(ctx context.Context, job *domain.SyncJob) error
	Start(ctx context.Context, id uuid.UUID) error
	UpdateCounters(ctx context.Context, job *domain.SyncJob) error
	Complete(ctx context.Context, job *domain.SyncJob) error
	Fail(ctx context.Context, job *domain.SyncJob, reason string) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.SyncJob, error)
	List(ctx context.Context, offset, limit int) ([]*domain.SyncJob, error)
}
