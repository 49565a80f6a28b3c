package database

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/pensionworks/pensync/internal/errors"
)

func TestTxManager_WithTx_Commit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE clients").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	manager := NewTxManager(db)
	err = manager.WithTx(context.Background(), func(ctx context.Context) error {
		querier := GetTx(ctx, db)
		_, execErr := querier.ExecContext(ctx, "UPDATE clients SET loan_status = $1", "CURRENT")
		return execErr
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager_WithTx_RollbackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	manager := NewTxManager(db)
	err = manager.WithTx(context.Background(), func(ctx context.Context) error {
		return apperrors.ErrConflict
	})

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTx_WithoutTransaction(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	querier := GetTx(context.Background(), db)
	assert.Equal(t, Querier(db), querier)
}
