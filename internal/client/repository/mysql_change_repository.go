package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/pensionworks/pensync/internal/client/domain"
	"github.com/pensionworks/pensync/internal/database"

	apperrors "github.com/pensionworks/pensync/internal/errors"
)

// MySQLChangeRepository persists the append-only client change history for MySQL
type MySQLChangeRepository struct {
	db *sql.DB
}

// NewMySQLChangeRepository creates a new MySQLChangeRepository
func NewMySQLChangeRepository(db *sql.DB) *MySQLChangeRepository {
	return &MySQLChangeRepository{
		db: db,
	}
}

// CreateBatch inserts the change entries detected for one synced record.
func (r *MySQLChangeRepository) CreateBatch(ctx context.Context, changes []domain.SyncChange) error {
	if len(changes) == 0 {
		return nil
	}

	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO client_sync_changes (id, client_id, field, old_value, new_value, source, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, NOW())`

	for _, change := range changes {
		_, err := querier.ExecContext(ctx, query,
			change.ID, change.ClientID, change.Field,
			change.OldValue, change.NewValue, change.Source,
		)
		if err != nil {
			return apperrors.Wrap(err, "failed to create sync change")
		}
	}

	return nil
}

// ListByClient retrieves the change history for one client, newest first.
func (r *MySQLChangeRepository) ListByClient(
	ctx context.Context,
	clientID uuid.UUID,
	offset, limit int,
) ([]domain.SyncChange, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, client_id, field, old_value, new_value, source, created_at
			  FROM client_sync_changes
			  WHERE client_id = ?
			  ORDER BY created_at DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, clientID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list sync changes")
	}
	defer rows.Close()

	var changes []domain.SyncChange
	for rows.Next() {
		var change domain.SyncChange
		err := rows.Scan(
			&change.ID, &change.ClientID, &change.Field,
			&change.OldValue, &change.NewValue, &change.Source, &change.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan sync change")
		}
		changes = append(changes, change)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to read sync changes")
	}

	return changes, nil
}
