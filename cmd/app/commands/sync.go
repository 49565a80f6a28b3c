package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/pensionworks/pensync/internal/sync/domain"
	syncUsecase "github.com/pensionworks/pensync/internal/sync/usecase"
)

// RunSync triggers a single warehouse sync run from the command line.
// Supports branch filtering, dry-run mode, and both text/JSON output formats.
//
// Requirements: both databases must be migrated and accessible.
func RunSync(
	ctx context.Context,
	useCase syncUsecase.UseCase,
	logger *slog.Logger,
	w io.Writer,
	branchCodesFlag string,
	dryRun, recordChanges bool,
	format string,
) error {
	branchCodes := splitBranchCodes(branchCodesFlag)

	logger.Info("triggering sync run",
		slog.Int("branch_codes", len(branchCodes)),
		slog.Bool("dry_run", dryRun),
		slog.Bool("record_changes", recordChanges),
	)

	result, err := useCase.Sync(ctx, domain.SyncOptions{
		BranchCodes:   branchCodes,
		DryRun:        dryRun,
		RecordChanges: recordChanges,
		Authorized:    true,
	})
	if err != nil {
		return fmt.Errorf("sync run failed: %w", err)
	}

	// Output result based on format
	if format == "json" {
		outputSyncJSON(w, result, dryRun)
	} else {
		outputSyncText(w, result, dryRun)
	}

	logger.Info("sync run completed",
		slog.String("sync_job_id", result.SyncJobID.String()),
		slog.Int("total_processed", result.TotalProcessed),
		slog.Int("failed", result.Failed),
	)

	return nil
}

// outputSyncText outputs the result in human-readable text format.
func outputSyncText(w io.Writer, result *domain.SyncResult, dryRun bool) {
	if dryRun {
		fmt.Fprintln(w, "Dry-run mode: no records were written")
	}
	fmt.Fprintf(w, "Sync job: %s\n", result.SyncJobID)
	fmt.Fprintf(w, "Processed: %d (created=%d updated=%d skipped=%d failed=%d)\n",
		result.TotalProcessed, result.Created, result.Updated, result.Skipped, result.Failed)
	fmt.Fprintf(w, "Duration: %s\n", result.ProcessingTime)
}

// outputSyncJSON outputs the result in JSON format for machine consumption.
func outputSyncJSON(w io.Writer, result *domain.SyncResult, dryRun bool) {
	payload := map[string]interface{}{
		"sync_job_id":        result.SyncJobID,
		"total_processed":    result.TotalProcessed,
		"created":            result.Created,
		"updated":            result.Updated,
		"skipped":            result.Skipped,
		"failed":             result.Failed,
		"processing_time_ms": result.ProcessingTime.Milliseconds(),
		"dry_run":            dryRun,
	}

	jsonBytes, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		fmt.Fprintf(w, "failed to marshal JSON: %v\n", err)
		return
	}

	fmt.Fprintln(w, string(jsonBytes))
}
