package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	apperrors "github.com/pensionworks/pensync/internal/errors"
	"github.com/pensionworks/pensync/internal/warehouse"
)

// MySQLWarehouseRepository reads client master rows from a MySQL warehouse.
type MySQLWarehouseRepository struct {
	db           *sql.DB
	queryTimeout time.Duration
}

// NewMySQLWarehouseRepository creates a new MySQLWarehouseRepository.
func NewMySQLWarehouseRepository(db *sql.DB, queryTimeout time.Duration) *MySQLWarehouseRepository {
	return &MySQLWarehouseRepository{
		db:           db,
		queryTimeout: queryTimeout,
	}
}

// FetchPage retrieves one page of client master rows ordered by client code,
// optionally filtered to the given branch codes.
func (r *MySQLWarehouseRepository) FetchPage(
	ctx context.Context,
	branchCodes []string,
	offset, limit int,
) ([]warehouse.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	query := `SELECT ` + selectColumns + ` FROM client_master`
	args := []any{}

	if len(branchCodes) > 0 {
		placeholders := strings.Repeat("?,", len(branchCodes))
		placeholders = placeholders[:len(placeholders)-1]
		query += ` WHERE branch_code IN (` + placeholders + `)`
		for _, code := range branchCodes {
			args = append(args, code)
		}
	}
	query += ` ORDER BY client_code LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

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
