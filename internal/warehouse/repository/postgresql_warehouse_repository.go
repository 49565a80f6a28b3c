// Package repository provides read-only access to the analytical warehouse.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	apperrors "github.com/pensionworks/pensync/internal/errors"
	"github.com/pensionworks/pensync/internal/warehouse"
)

// PostgreSQLWarehouseRepository reads client master rows from a PostgreSQL
// warehouse. The connection pool is separate from the operational store and
// every query carries its own deadline; the circuit breaker wrapping these
// calls relies on that deadline instead of timing calls out itself.
type PostgreSQLWarehouseRepository struct {
	db           *sql.DB
	queryTimeout time.Duration
}

// NewPostgreSQLWarehouseRepository creates a new PostgreSQLWarehouseRepository.
func NewPostgreSQLWarehouseRepository(db *sql.DB, queryTimeout time.Duration) *PostgreSQLWarehouseRepository {
	return &PostgreSQLWarehouseRepository{
		db:           db,
		queryTimeout: queryTimeout,
	}
}

const selectColumns = `client_code, full_name, pension_number, birth_date,
		phone_number, mobile_number, pension_type_code, pensioner_type_code,
		product_code, branch_code, par_status_code, account_type_code,
		overdue_amount, loan_status`

// FetchPage retrieves one page of client master rows ordered by client code,
// optionally filtered to the given branch codes.
func (r *PostgreSQLWarehouseRepository) FetchPage(
	ctx context.Context,
	branchCodes []string,
	offset, limit int,
) ([]warehouse.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	query := `SELECT ` + selectColumns + ` FROM client_master`
	args := []any{}

	if len(branchCodes) > 0 {
		query += ` WHERE branch_code = ANY($1) ORDER BY client_code LIMIT $2 OFFSET $3`
		args = append(args, pq.Array(branchCodes), limit, offset)
	} else {
		query += ` ORDER BY client_code LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to fetch warehouse page")
	}
	defer rows.Close()

	var records []warehouse.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan warehouse row")
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to read warehouse rows")
	}

	return records, nil
}

// scanRecord maps one result row onto a warehouse record, tolerating NULLs in
// every column except the client code.
func scanRecord(rows *sql.Rows) (warehouse.Record, error) {
	var (
		record        warehouse.Record
		fullName      sql.NullString
		pensionNumber sql.NullString
		birthDate     any
		phoneNumber   sql.NullString
		mobileNumber  sql.NullString
		pensionType   sql.NullString
		pensionerType sql.NullString
		product       sql.NullString
		branch        sql.NullString
		parStatus     sql.NullString
		accountType   sql.NullString
		overdueAmount sql.NullFloat64
		loanStatus    sql.NullString
	)

	err := rows.Scan(
		&record.ClientCode,
		&fullName,
		&pensionNumber,
		&birthDate,
		&phoneNumber,
		&mobileNumber,
		&pensionType,
		&pensionerType,
		&product,
		&branch,
		&parStatus,
		&accountType,
		&overdueAmount,
		&loanStatus,
	)
	if err != nil {
		return warehouse.Record{}, err
	}

	record.FullName = fullName.String
	record.PensionNumber = pensionNumber.String
	record.BirthDate = normalizeBirthDate(birthDate)
	record.PhoneNumber = phoneNumber.String
	record.MobileNumber = mobileNumber.String
	record.PensionTypeCode = pensionType.String
	record.PensionerTypeCode = pensionerType.String
	record.ProductCode = product.String
	record.BranchCode = branch.String
	record.PARStatusCode = parStatus.String
	record.AccountTypeCode = accountType.String
	record.OverdueAmount = overdueAmount.Float64
	record.LoanStatus = loanStatus.String

	return record, nil
}

// normalizeBirthDate keeps native timestamps as time.Time and turns raw byte
// columns into strings; the transformer handles both shapes.
func normalizeBirthDate(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case time.Time:
		return v
	case []byte:
		return string(v)
	default:
		return v
	}
}
