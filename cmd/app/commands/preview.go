package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/pensionworks/pensync/internal/sync/http/dto"
	syncUsecase "github.com/pensionworks/pensync/internal/sync/usecase"
	"github.com/pensionworks/pensync/internal/warehouse"
)

// RunPreview fetches raw warehouse rows from the command line without
// creating a job or writing anything.
func RunPreview(
	ctx context.Context,
	useCase syncUsecase.UseCase,
	logger *slog.Logger,
	w io.Writer,
	branchCodesFlag string,
	limit int,
	format string,
) error {
	if limit <= 0 {
		return fmt.Errorf("limit must be a positive number, got: %d", limit)
	}
	branchCodes := splitBranchCodes(branchCodesFlag)

	logger.Info("previewing warehouse rows",
		slog.Int("branch_codes", len(branchCodes)),
		slog.Int("limit", limit),
	)

	records, err := useCase.Preview(ctx, branchCodes, limit)
	if err != nil {
		return fmt.Errorf("preview failed: %w", err)
	}

	if format == "json" {
		outputPreviewJSON(w, records)
	} else {
		outputPreviewText(w, records)
	}

	return nil
}

// outputPreviewText outputs one line per warehouse row.
func outputPreviewText(w io.Writer, records []warehouse.Record) {
	fmt.Fprintf(w, "Fetched %d warehouse row(s)\n", len(records))
	for _, record := range records {
		fmt.Fprintf(w, "%s  %s  branch=%s pension_type=%s loan_status=%s\n",
			record.ClientCode, record.FullName, record.BranchCode,
			record.PensionTypeCode, record.LoanStatus)
	}
}

// outputPreviewJSON outputs the rows in JSON format for machine consumption.
func outputPreviewJSON(w io.Writer, records []warehouse.Record) {
	jsonBytes, err := json.MarshalIndent(dto.MapRecordsToPreviewResponse(records), "", "  ")
	if err != nil {
		fmt.Fprintf(w, "failed to marshal JSON: %v\n", err)
		return
	}

	fmt.Fprintln(w, string(jsonBytes))
}
