package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pensionworks/pensync/internal/testutil"
)

var recordColumns = []string{
	"client_code", "full_name", "pension_number", "birth_date",
	"phone_number", "mobile_number", "pension_type_code", "pensioner_type_code",
	"product_code", "branch_code", "par_status_code", "account_type_code",
	"overdue_amount", "loan_status",
}

func TestPostgreSQLWarehouseRepository_FetchPage(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewPostgreSQLWarehouseRepository(db, time.Second)

	birthDate := time.Date(1955, 11, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM client_master ORDER BY client_code").
		WithArgs(100, 0).
		WillReturnRows(sqlmock.NewRows(recordColumns).
			AddRow("CL-1001", "Amina Yusuf", "PN-778", birthDate,
				"0912000111", nil, "OLD_AGE", "CIVIL",
				"PL-01", "BR-004", "PAR-0", "SAV",
				150.25, "PENDING"))

	records, err := repo.FetchPage(context.Background(), nil, 0, 100)

	require.NoError(t, err)
	require.Len(t, records, 1)
	record := records[0]
	assert.Equal(t, "CL-1001", record.ClientCode)
	assert.Equal(t, "Amina Yusuf", record.FullName)
	assert.Equal(t, birthDate, record.BirthDate)
	assert.Empty(t, record.MobileNumber)
	assert.Equal(t, "BR-004", record.BranchCode)
	assert.Equal(t, 150.25, record.OverdueAmount)
}

func TestPostgreSQLWarehouseRepository_FetchPage_BranchFilter(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewPostgreSQLWarehouseRepository(db, time.Second)

	mock.ExpectQuery("SELECT (.+) FROM client_master WHERE branch_code = ANY(.+)").
		WithArgs(sqlmock.AnyArg(), 50, 100).
		WillReturnRows(sqlmock.NewRows(recordColumns))

	records, err := repo.FetchPage(context.Background(), []string{"BR-004", "BR-007"}, 100, 50)

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestPostgreSQLWarehouseRepository_FetchPage_ByteBirthDate(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewPostgreSQLWarehouseRepository(db, time.Second)

	mock.ExpectQuery("SELECT (.+) FROM client_master").
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows(recordColumns).
			AddRow("CL-1002", "Bekele Tadesse", nil, []byte("1960-07-21"),
				nil, nil, nil, nil, nil, nil, nil, nil, nil, nil))

	records, err := repo.FetchPage(context.Background(), nil, 0, 10)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "1960-07-21", records[0].BirthDate)
	assert.Zero(t, records[0].OverdueAmount)
}

func TestPostgreSQLWarehouseRepository_FetchPage_QueryError(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewPostgreSQLWarehouseRepository(db, time.Second)

	mock.ExpectQuery("SELECT (.+) FROM client_master").
		WillReturnError(assert.AnError)

	records, err := repo.FetchPage(context.Background(), nil, 0, 10)

	assert.Error(t, err)
	assert.Nil(t, records)
}
