package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/pensionworks/pensync/internal/client/domain"
	"github.com/pensionworks/pensync/internal/database"

	apperrors "github.com/pensionworks/pensync/internal/errors"
)

// MySQLClientRepository handles client persistence for MySQL
type MySQLClientRepository struct {
	db *sql.DB
}

// NewMySQLClientRepository creates a new MySQLClientRepository
func NewMySQLClientRepository(db *sql.DB) *MySQLClientRepository {
	return &MySQLClientRepository{
		db: db,
	}
}

// GetByCode retrieves a client by its warehouse business code
func (r *MySQLClientRepository) GetByCode(ctx context.Context, clientCode string) (*domain.Client, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + clientColumns + ` FROM clients WHERE client_code = ?`

	client, err := scanClient(querier.QueryRowContext(ctx, query, clientCode))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrClientNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get client by code")
	}

	return client, nil
}

// Upsert inserts the client or updates the existing row with the same client
// code, reporting whether a new row was created.
func (r *MySQLClientRepository) Upsert(
	ctx context.Context,
	client *domain.Client,
) (*domain.UpsertResult, error) {
	if client.ClientCode == "" {
		return nil, domain.ErrClientCodeRequired
	}

	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO clients (id, client_code, pension_number, full_name, birth_date,
				  phone_number, mobile_number, pension_type_id, pensioner_type_id,
				  product_id, branch_id, par_status_id, account_type_id,
				  overdue_amount, loan_status, sync_source, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
			  ON DUPLICATE KEY UPDATE
				  pension_number = VALUES(pension_number),
				  full_name = VALUES(full_name),
				  birth_date = VALUES(birth_date),
				  phone_number = VALUES(phone_number),
				  mobile_number = VALUES(mobile_number),
				  pension_type_id = VALUES(pension_type_id),
				  pensioner_type_id = VALUES(pensioner_type_id),
				  product_id = VALUES(product_id),
				  branch_id = VALUES(branch_id),
				  par_status_id = VALUES(par_status_id),
				  account_type_id = VALUES(account_type_id),
				  overdue_amount = VALUES(overdue_amount),
				  loan_status = VALUES(loan_status),
				  sync_source = VALUES(sync_source),
				  updated_at = NOW()`

	result, err := querier.ExecContext(ctx, query,
		client.ID, client.ClientCode, client.PensionNumber, client.FullName, client.BirthDate,
		client.PhoneNumber, client.MobileNumber, client.PensionTypeID, client.PensionerTypeID,
		client.ProductID, client.BranchID, client.PARStatusID, client.AccountTypeID,
		client.OverdueAmount, client.LoanStatus, client.SyncSource,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to upsert client")
	}

	// MySQL reports 1 affected row for an insert and 2 for an update through
	// ON DUPLICATE KEY; 0 means the update changed nothing.
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read upsert result")
	}
	if affected == 1 {
		return &domain.UpsertResult{ID: client.ID, WasCreated: true}, nil
	}

	upsertResult := domain.UpsertResult{WasCreated: false}
	err = querier.QueryRowContext(ctx, `SELECT id FROM clients WHERE client_code = ?`, client.ClientCode).
		Scan(&upsertResult.ID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to resolve upserted client id")
	}

	return &upsertResult, nil
}
