package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pensionworks/pensync/internal/testutil"
)

func TestMySQLClientRepository_Upsert_Created(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewMySQLClientRepository(db)

	client := warehouseClient()
	mock.ExpectExec("INSERT INTO clients").
		WillReturnResult(sqlmock.NewResult(0, 1))

	result, err := repo.Upsert(context.Background(), client)

	require.NoError(t, err)
	assert.Equal(t, client.ID, result.ID)
	assert.True(t, result.WasCreated)
}

func TestMySQLClientRepository_Upsert_Updated(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewMySQLClientRepository(db)

	existingID := uuid.Must(uuid.NewV7())
	mock.ExpectExec("INSERT INTO clients").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery("SELECT id FROM clients WHERE client_code").
		WithArgs("CL-1001").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(existingID.String()))

	result, err := repo.Upsert(context.Background(), warehouseClient())

	require.NoError(t, err)
	assert.Equal(t, existingID, result.ID)
	assert.False(t, result.WasCreated)
}

func TestMySQLClientRepository_Upsert_NoopUpdate(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewMySQLClientRepository(db)

	existingID := uuid.Must(uuid.NewV7())
	// An identical replay affects zero rows; it is still an update.
	mock.ExpectExec("INSERT INTO clients").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id FROM clients WHERE client_code").
		WithArgs("CL-1001").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(existingID.String()))

	result, err := repo.Upsert(context.Background(), warehouseClient())

	require.NoError(t, err)
	assert.False(t, result.WasCreated)
}
