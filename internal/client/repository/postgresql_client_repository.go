// Package repository provides data persistence implementations for client entities.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/pensionworks/pensync/internal/client/domain"
	"github.com/pensionworks/pensync/internal/database"

	apperrors "github.com/pensionworks/pensync/internal/errors"
)

// PostgreSQLClientRepository handles client persistence for PostgreSQL
type PostgreSQLClientRepository struct {
	db *sql.DB
}

// NewPostgreSQLClientRepository creates a new PostgreSQLClientRepository
func NewPostgreSQLClientRepository(db *sql.DB) *PostgreSQLClientRepository {
	return &PostgreSQLClientRepository{
		db: db,
	}
}

const clientColumns = `id, client_code, pension_number, full_name, birth_date,
			  phone_number, mobile_number, pension_type_id, pensioner_type_id,
			  product_id, branch_id, par_status_id, account_type_id,
			  overdue_amount, loan_status, sync_source, created_at, updated_at`

// GetByCode retrieves a client by its warehouse business code
func (r *PostgreSQLClientRepository) GetByCode(ctx context.Context, clientCode string) (*domain.Client, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + clientColumns + ` FROM clients WHERE client_code = $1`

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
func (r *PostgreSQLClientRepository) Upsert(
	ctx context.Context,
	client *domain.Client,
) (*domain.UpsertResult, error) {
	if client.ClientCode == "" {
		return nil, domain.ErrClientCodeRequired
	}

	querier := database.GetTx(ctx, r.db)

	// xmax = 0 holds only for freshly inserted tuples, which distinguishes
	// create from update in a single round trip.
	query := `INSERT INTO clients (id, client_code, pension_number, full_name, birth_date,
				  phone_number, mobile_number, pension_type_id, pensioner_type_id,
				  product_id, branch_id, par_status_id, account_type_id,
				  overdue_amount, loan_status, sync_source, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW(), NOW())
			  ON CONFLICT (client_code) DO UPDATE SET
				  pension_number = EXCLUDED.pension_number,
				  full_name = EXCLUDED.full_name,
				  birth_date = EXCLUDED.birth_date,
				  phone_number = EXCLUDED.phone_number,
				  mobile_number = EXCLUDED.mobile_number,
				  pension_type_id = EXCLUDED.pension_type_id,
				  pensioner_type_id = EXCLUDED.pensioner_type_id,
				  product_id = EXCLUDED.product_id,
				  branch_id = EXCLUDED.branch_id,
				  par_status_id = EXCLUDED.par_status_id,
				  account_type_id = EXCLUDED.account_type_id,
				  overdue_amount = EXCLUDED.overdue_amount,
				  loan_status = EXCLUDED.loan_status,
				  sync_source = EXCLUDED.sync_source,
				  updated_at = NOW()
			  RETURNING id, (xmax = 0) AS was_created`

	var result domain.UpsertResult
	err := querier.QueryRowContext(ctx, query,
		client.ID, client.ClientCode, client.PensionNumber, client.FullName, client.BirthDate,
		client.PhoneNumber, client.MobileNumber, client.PensionTypeID, client.PensionerTypeID,
		client.ProductID, client.BranchID, client.PARStatusID, client.AccountTypeID,
		client.OverdueAmount, client.LoanStatus, client.SyncSource,
	).Scan(&result.ID, &result.WasCreated)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to upsert client")
	}

	return &result, nil
}

// scanClient maps one result row onto a client entity.
func scanClient(row *sql.Row) (*domain.Client, error) {
	var client domain.Client

	err := row.Scan(
		&client.ID, &client.ClientCode, &client.PensionNumber, &client.FullName, &client.BirthDate,
		&client.PhoneNumber, &client.MobileNumber, &client.PensionTypeID, &client.PensionerTypeID,
		&client.ProductID, &client.BranchID, &client.PARStatusID, &client.AccountTypeID,
		&client.OverdueAmount, &client.LoanStatus, &client.SyncSource,
		&client.CreatedAt, &client.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &client, nil
}
