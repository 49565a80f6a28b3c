// Package testutil provides shared helpers for database-facing tests.
//
// Repository tests run against go-sqlmock rather than a live database, so the
// suite stays hermetic; the SQL itself is covered by the integration schema in
// migrations/.
package testutil

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

// NewMockDB returns a sqlmock-backed connection that is closed and verified
// when the test finishes.
func NewMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err, "failed to create sqlmock")

	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet(), "unmet sqlmock expectations")
		_ = db.Close()
	})

	return db, mock
}
