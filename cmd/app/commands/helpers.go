// Package commands contains CLI command implementations for the application.
package commands

import (
	"context"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"

	"github.com/pensionworks/pensync/internal/app"
)

// closeContainer closes all resources in the container and logs any errors.
func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

// closeMigrate closes the migration instance and logs any errors.
func closeMigrate(migrate *migrate.Migrate, logger *slog.Logger) {
	sourceError, databaseError := migrate.Close()
	if sourceError != nil || databaseError != nil {
		logger.Error(
			"failed to close the migrate",
			slog.Any("source_error", sourceError),
			slog.Any("database_error", databaseError),
		)
	}
}

// splitBranchCodes turns a comma-separated flag value into trimmed branch
// codes, dropping empty entries.
func splitBranchCodes(value string) []string {
	if value == "" {
		return nil
	}

	var codes []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			codes = append(codes, trimmed)
		}
	}
	return codes
}
