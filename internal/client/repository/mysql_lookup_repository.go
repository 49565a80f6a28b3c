package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/pensionworks/pensync/internal/database"

	apperrors "github.com/pensionworks/pensync/internal/errors"
)

// MySQLLookupRepository reads the reference tables that map warehouse business
// codes to internal surrogate ids, for MySQL
type MySQLLookupRepository struct {
	db *sql.DB
}

// NewMySQLLookupRepository creates a new MySQLLookupRepository
func NewMySQLLookupRepository(db *sql.DB) *MySQLLookupRepository {
	return &MySQLLookupRepository{
		db: db,
	}
}

// PensionTypes returns the code to id map for pension types.
func (r *MySQLLookupRepository) PensionTypes(ctx context.Context) (map[string]uuid.UUID, error) {
	return r.codeMap(ctx, tablePensionTypes)
}

// PensionerTypes returns the code to id map for pensioner types.
func (r *MySQLLookupRepository) PensionerTypes(ctx context.Context) (map[string]uuid.UUID, error) {
	return r.codeMap(ctx, tablePensionerTypes)
}

// Products returns the code to id map for products.
func (r *MySQLLookupRepository) Products(ctx context.Context) (map[string]uuid.UUID, error) {
	return r.codeMap(ctx, tableProducts)
}

// Branches returns the code to id map for branches.
func (r *MySQLLookupRepository) Branches(ctx context.Context) (map[string]uuid.UUID, error) {
	return r.codeMap(ctx, tableBranches)
}

// PARStatuses returns the code to id map for portfolio-at-risk statuses.
func (r *MySQLLookupRepository) PARStatuses(ctx context.Context) (map[string]uuid.UUID, error) {
	return r.codeMap(ctx, tablePARStatuses)
}

// AccountTypes returns the code to id map for account types.
func (r *MySQLLookupRepository) AccountTypes(ctx context.Context) (map[string]uuid.UUID, error) {
	return r.codeMap(ctx, tableAccountTypes)
}

// codeMap reads one reference table fully. UUIDs are stored as CHAR(36) in
// the MySQL schema and scan directly into uuid.UUID.
func (r *MySQLLookupRepository) codeMap(ctx context.Context, table string) (map[string]uuid.UUID, error) {
	querier := database.GetTx(ctx, r.db)

	rows, err := querier.QueryContext(ctx, "SELECT code, id FROM `"+table+"`")
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
