package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/pensionworks/pensync/internal/database"

	apperrors "github.com/pensionworks/pensync/internal/errors"
)

// Reference table names for the lookup domains. Fixed identifiers, never
// interpolated from user input.
const (
	tablePensionTypes   = "pension_types"
	tablePensionerTypes = "pensioner_types"
	tableProducts       = "products"
	tableBranches       = "branches"
	tablePARStatuses    = "par_statuses"
	tableAccountTypes   = "account_types"
)

// PostgreSQLLookupRepository reads the reference tables that map warehouse
// business codes to internal surrogate ids, for PostgreSQL
type PostgreSQLLookupRepository struct {
	db *sql.DB
}

// NewPostgreSQLLookupRepository creates a new PostgreSQLLookupRepository
func NewPostgreSQLLookupRepository(db *sql.DB) *PostgreSQLLookupRepository {
	return &PostgreSQLLookupRepository{
		db: db,
	}
}

// PensionTypes returns the code to id map for pension types.
func (r *PostgreSQLLookupRepository) PensionTypes(ctx context.Context) (map[string]uuid.UUID, error) {
	return r.codeMap(ctx, tablePensionTypes)
}

// PensionerTypes returns the code to id map for pensioner types.
func (r *PostgreSQLLookupRepository) PensionerTypes(ctx context.Context) (map[string]uuid.UUID, error) {
	return r.codeMap(ctx, tablePensionerTypes)
}

// Products returns the code to id map for products.
func (r *PostgreSQLLookupRepository) Products(ctx context.Context) (map[string]uuid.UUID, error) {
	return r.codeMap(ctx, tableProducts)
}

// Branches returns the code to id map for branches.
func (r *PostgreSQLLookupRepository) Branches(ctx context.Context) (map[string]uuid.UUID, error) {
	return r.codeMap(ctx, tableBranches)
}

// PARStatuses returns the code to id map for portfolio-at-risk statuses.
func (r *PostgreSQLLookupRepository) PARStatuses(ctx context.Context) (map[string]uuid.UUID, error) {
	return r.codeMap(ctx, tablePARStatuses)
}

// AccountTypes returns the code to id map for account types.
func (r *PostgreSQLLookupRepository) AccountTypes(ctx context.Context) (map[string]uuid.UUID, error) {
	return r.codeMap(ctx, tableAccountTypes)
}

// codeMap reads one reference table fully. The tables are small and bounded,
// so a full read per sync run is cheaper than tracking invalidation.
func (r *PostgreSQLLookupRepository) codeMap(ctx context.Context, table string) (map[string]uuid.UUID, error) {
	querier := database.GetTx(ctx, r.db)

	rows, err := querier.QueryContext(ctx, `SELECT code, id FROM `+table)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read "+table)
	}
	defer rows.Close()

	codes := make(map[string]uuid.UUID)
	for rows.Next() {
		var (
			code string
			id   uuid.UUID
		)
		if err := rows.Scan(&code, &id); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan "+table+" row")
		}
		codes[code] = id
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to read "+table+" rows")
	}

	return codes, nil
}
