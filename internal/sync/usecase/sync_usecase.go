package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pensionworks/pensync/internal/breaker"
	clientDomain "github.com/pensionworks/pensync/internal/client/domain"
	"github.com/pensionworks/pensync/internal/database"
	"github.com/pensionworks/pensync/internal/sync/domain"
	"github.com/pensionworks/pensync/internal/warehouse"

	apperrors "github.com/pensionworks/pensync/internal/errors"
)

// CircuitWarehouse names the breaker shared by every warehouse-path call.
const CircuitWarehouse = "warehouse"

// Config holds sync use case configuration.
type Config struct {
	// PageSize is the number of warehouse rows fetched per page.
	PageSize int
	// JobUpdateEvery controls how many processed rows trigger an incremental
	// job counter write. Zero disables incremental updates.
	JobUpdateEvery int
}

// SyncUseCase orchestrates warehouse ingestion runs: job lifecycle, lookup
// cache, per-row transform and upsert, change recording, and counters.
type SyncUseCase struct {
	config           Config
	txManager        database.TxManager
	warehouseReader  WarehouseReader
	clientRepo       ClientRepository
	changeRepo       ChangeRepository
	jobRepo          SyncJobRepository
	cacheBuilder     *LookupCacheBuilder
	warehouseBreaker *breaker.Breaker
	registry         *breaker.Registry
	logger           *slog.Logger
}

// NewSyncUseCase creates a new SyncUseCase. The warehouse breaker must be
// registered in the given registry under CircuitWarehouse.
func NewSyncUseCase(
	config Config,
	txManager database.TxManager,
	warehouseReader WarehouseReader,
	clientRepo ClientRepository,
	changeRepo ChangeRepository,
	jobRepo SyncJobRepository,
	cacheBuilder *LookupCacheBuilder,
	registry *breaker.Registry,
	logger *slog.Logger,
) (*SyncUseCase, error) {
	if config.PageSize <= 0 {
		config.PageSize = 500
	}

	warehouseBreaker, ok := registry.Get(CircuitWarehouse)
	if !ok {
		return nil, apperrors.New("warehouse circuit breaker is not registered")
	}

	return &SyncUseCase{
		config:           config,
		txManager:        txManager,
		warehouseReader:  warehouseReader,
		clientRepo:       clientRepo,
		changeRepo:       changeRepo,
		jobRepo:          jobRepo,
		cacheBuilder:     cacheBuilder,
		warehouseBreaker: warehouseBreaker,
		registry:         registry,
		logger:           logger,
	}, nil
}

// runCounters is the mutable accumulator owned by one sync run. It is never
// shared outside the run; FinalizeResult snapshots it into the immutable
// SyncResult returned to callers.
type runCounters struct {
	processed int
	created   int
	updated   int
	skipped   int
	failed    int
}

func (c *runCounters) applyTo(job *domain.SyncJob) {
	job.RecordsProcessed = c.processed
	job.RecordsCreated = c.created
	job.RecordsUpdated = c.updated
	job.RecordsSkipped = c.skipped
	job.RecordsFailed = c.failed
}

// Sync runs one ingestion from the warehouse into the operational store.
//
// Run-level failures (cache build, open circuit, cancellation) finalize the
// job as failed and are returned together with a partial result carrying the
// counters accumulated up to the abort, so callers see true progress.
// Row-level failures never abort the run.
func (uc *SyncUseCase) Sync(ctx context.Context, options domain.SyncOptions) (*domain.SyncResult, error) {
	if !options.Authorized {
		return nil, domain.ErrSyncNotPermitted
	}

	start := time.Now()

	job := &domain.SyncJob{
		ID:     uuid.Must(uuid.NewV7()),
		Type:   domain.SyncTypeWarehouse,
		Status: domain.SyncJobStatusPending,
	}
	if err := uc.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}
	if err := uc.jobRepo.Start(ctx, job.ID); err != nil {
		return nil, err
	}
	job.Status = domain.SyncJobStatusRunning

	uc.log().Info("sync run started",
		slog.String("sync_job_id", job.ID.String()),
		slog.Any("branch_codes", options.BranchCodes),
		slog.Bool("dry_run", options.DryRun),
		slog.Bool("record_changes", options.RecordChanges),
	)

	counters := &runCounters{}

	cache, err := uc.cacheBuilder.Build(ctx)
	if err != nil {
		uc.failJob(ctx, job, counters, err)
		return uc.result(job, counters, start), err
	}

	if err := uc.processAll(ctx, job, counters, cache, options); err != nil {
		uc.failJob(ctx, job, counters, err)
		return uc.result(job, counters, start), err
	}

	counters.applyTo(job)
	if err := uc.jobRepo.Complete(ctx, job); err != nil {
		// A job stuck in running breaks auditability; surface loudly.
		uc.log().Error("critical: failed to finalize sync job",
			slog.String("sync_job_id", job.ID.String()),
			slog.Any("error", err),
		)
		return uc.result(job, counters, start), err
	}

	result := uc.result(job, counters, start)
	uc.log().Info("sync run completed",
		slog.String("sync_job_id", job.ID.String()),
		slog.Int("total_processed", result.TotalProcessed),
		slog.Int("created", result.Created),
		slog.Int("updated", result.Updated),
		slog.Int("skipped", result.Skipped),
		slog.Int("failed", result.Failed),
		slog.Duration("processing_time", result.ProcessingTime),
	)
	return result, nil
}

// processAll pages through the warehouse until exhausted, processing every
// row. Returns nil when all pages were consumed, or the run-level error that
// aborted the loop.
func (uc *SyncUseCase) processAll(
	ctx context.Context,
	job *domain.SyncJob,
	counters *runCounters,
	cache *domain.LookupCache,
	options domain.SyncOptions,
) error {
	offset := 0
	for {
		records, err := breaker.Execute(ctx, uc.warehouseBreaker,
			func(ctx context.Context) ([]warehouse.Record, error) {
				return uc.warehouseReader.FetchPage(ctx, options.BranchCodes, offset, uc.config.PageSize)
			})
		if err != nil {
			if errors.Is(err, breaker.ErrOpen) {
				return domain.ErrWarehouseIsolated
			}
			return apperrors.Wrap(err, "failed to fetch warehouse page")
		}

		if len(records) == 0 {
			return nil
		}

		for _, record := range records {
			// Cooperative cancellation point: counters only ever reflect
			// fully-processed rows.
			if err := ctx.Err(); err != nil {
				return err
			}

			if err := uc.processRecord(ctx, counters, cache, options, record); err != nil {
				return err
			}
			counters.processed++

			if uc.config.JobUpdateEvery > 0 && counters.processed%uc.config.JobUpdateEvery == 0 {
				counters.applyTo(job)
				if err := uc.jobRepo.UpdateCounters(ctx, job); err != nil {
					uc.log().Warn("failed to update sync job counters",
						slog.String("sync_job_id", job.ID.String()),
						slog.Any("error", err),
					)
				}
			}
		}

		if len(records) < uc.config.PageSize {
			return nil
		}
		offset += len(records)
	}
}

// processRecord handles a single warehouse row. A non-nil return aborts the
// whole run; row-level problems are absorbed into the counters instead.
func (uc *SyncUseCase) processRecord(
	ctx context.Context,
	counters *runCounters,
	cache *domain.LookupCache,
	options domain.SyncOptions,
	record warehouse.Record,
) error {
	incoming, warnings := TransformRecord(record, cache)
	for _, warning := range warnings {
		uc.log().Warn("unresolved warehouse code", slog.String("detail", warning.String()))
	}

	if incoming.ClientCode == "" {
		uc.log().Warn("warehouse row without client code skipped")
		counters.failed++
		return nil
	}

	// Unresolved lookups degrade the record; hold it back rather than
	// overwrite resolved references with nulls.
	if len(warnings) > 0 {
		counters.skipped++
		return nil
	}

	existing, err := uc.clientRepo.GetByCode(ctx, incoming.ClientCode)
	if err != nil && !errors.Is(err, clientDomain.ErrClientNotFound) {
		uc.log().Error("failed to load existing client",
			slog.String("client_code", incoming.ClientCode),
			slog.Any("error", err),
		)
		counters.failed++
		return nil
	}

	if options.DryRun {
		// Classification still runs so the dry-run report is meaningful, but
		// nothing is written.
		if existing == nil {
			counters.created++
		} else {
			counters.updated++
		}
		return nil
	}

	incoming.ID = uuid.Must(uuid.NewV7())
	if existing != nil {
		incoming.ID = existing.ID
	}

	var result *clientDomain.UpsertResult
	err = uc.warehouseBreaker.Execute(ctx, func(ctx context.Context) error {
		return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
			upserted, err := uc.clientRepo.Upsert(ctx, incoming)
			if err != nil {
				return err
			}
			result = upserted

			// Change entries commit atomically with the upsert they describe.
			if options.RecordChanges && existing != nil {
				changes := clientDomain.Diff(existing, incoming)
				if len(changes) > 0 {
					return uc.changeRepo.CreateBatch(ctx, changes)
				}
			}
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, breaker.ErrOpen) {
			return domain.ErrWarehouseIsolated
		}
		uc.log().Error("failed to upsert client",
			slog.String("client_code", incoming.ClientCode),
			slog.Any("error", err),
		)
		counters.failed++
		return nil
	}

	if result.WasCreated {
		counters.created++
	} else {
		counters.updated++
	}
	return nil
}

// Preview fetches up to limit raw warehouse rows through the breaker without
// creating a job or touching the upsert path.
func (uc *SyncUseCase) Preview(
	ctx context.Context,
	branchCodes []string,
	limit int,
) ([]warehouse.Record, error) {
	records, err := breaker.Execute(ctx, uc.warehouseBreaker,
		func(ctx context.Context) ([]warehouse.Record, error) {
			return uc.warehouseReader.FetchPage(ctx, branchCodes, 0, limit)
		})
	if err != nil {
		if errors.Is(err, breaker.ErrOpen) {
			return nil, domain.ErrWarehouseIsolated
		}
		return nil, apperrors.Wrap(err, "failed to fetch warehouse preview")
	}
	return records, nil
}

// GetJob retrieves one sync job by id.
func (uc *SyncUseCase) GetJob(ctx context.Context, id uuid.UUID) (*domain.SyncJob, error) {
	return uc.jobRepo.GetByID(ctx, id)
}

// ListJobs retrieves past sync jobs, newest first.
func (uc *SyncUseCase) ListJobs(ctx context.Context, offset, limit int) ([]*domain.SyncJob, error) {
	return uc.jobRepo.List(ctx, offset, limit)
}

// CircuitState reports the warehouse breaker's current state.
func (uc *SyncUseCase) CircuitState() breaker.Snapshot {
	return uc.warehouseBreaker.Snapshot()
}

// Circuits reports the state of every registered breaker.
func (uc *SyncUseCase) Circuits() []breaker.Snapshot {
	return uc.registry.Snapshots()
}

// failJob finalizes the job as failed with the counters gathered so far.
// Finalization runs on a cancellation-proof context so an aborted run still
// gets its terminal status written.
func (uc *SyncUseCase) failJob(
	ctx context.Context,
	job *domain.SyncJob,
	counters *runCounters,
	cause error,
) {
	counters.applyTo(job)

	finalizeCtx := context.WithoutCancel(ctx)
	if err := uc.jobRepo.Fail(finalizeCtx, job, cause.Error()); err != nil {
		uc.log().Error("critical: failed to finalize sync job as failed",
			slog.String("sync_job_id", job.ID.String()),
			slog.Any("cause", cause),
			slog.Any("error", err),
		)
		return
	}

	uc.log().Warn("sync run failed",
		slog.String("sync_job_id", job.ID.String()),
		slog.Int("records_processed", job.RecordsProcessed),
		slog.Any("error", cause),
	)
}

func (uc *SyncUseCase) result(job *domain.SyncJob, counters *runCounters, start time.Time) *domain.SyncResult {
	return &domain.SyncResult{
		SyncJobID:      job.ID,
		TotalProcessed: counters.processed,
		Created:        counters.created,
		Updated:        counters.updated,
		Skipped:        counters.skipped,
		Failed:         counters.failed,
		ProcessingTime: time.Since(start),
	}
}

// log returns the configured logger or a no-op placeholder.
func (uc *SyncUseCase) log() *slog.Logger {
	if uc.logger != nil {
		return uc.logger
	}
	return slog.New(slog.DiscardHandler)
}
