package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ganot/tally-mcp/internal/domain/activity"
)

// ActivityRepository implements repository.ActivityRepository for SQLite
type ActivityRepository struct {
	db *DB
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Log inserts a new activity entry
func (r *ActivityRepository) Log(ctx context.Context, entry *activity.Entry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO activity_log (
			operation_id, action, phase, title, message, entry_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	var entryID sql.NullString
	if entry.EntryID != "" {
		entryID = sql.NullString{String: entry.EntryID, Valid: true}
	}

	result, err := r.db.ExecContext(ctx, query,
		entry.OperationID,
		entry.Action,
		entry.Phase,
		entry.Title,
		entry.Message,
		entryID,
		createdAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to log activity: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		entry.ID = id
	}
	entry.CreatedAt = createdAt

	return nil
}

// List returns activity entries matching the given filters, newest first
func (r *ActivityRepository) List(ctx context.Context, opts activity.ListOptions) ([]activity.Entry, error) {
	query := `
		SELECT
			id, operation_id, action, phase, title, message, entry_id, created_at
		FROM activity_log
	`

	var args []any
	var conditions []string

	if opts.OperationID != "" {
		conditions = append(conditions, "operation_id = ?")
		args = append(args, opts.OperationID)
	}
	if opts.EntryID != "" {
		conditions = append(conditions, "entry_id = ?")
		args = append(args, opts.EntryID)
	}
	if opts.Action != nil {
		conditions = append(conditions, "action = ?")
		args = append(args, *opts.Action)
	}
	if opts.Phase != nil {
		conditions = append(conditions, "phase = ?")
		args = append(args, *opts.Phase)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY created_at DESC, id DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}
	if opts.Offset > 0 {
		if opts.Limit <= 0 {
			query += " LIMIT -1"
		}
		query += " OFFSET ?"
		args = append(args, opts.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	var entries []activity.Entry
	for rows.Next() {
		var entry activity.Entry
		var entryID sql.NullString
		if err := rows.Scan(
			&entry.ID,
			&entry.OperationID,
			&entry.Action,
			&entry.Phase,
			&entry.Title,
			&entry.Message,
			&entryID,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity entry: %w", err)
		}
		entry.EntryID = entryID.String
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity rows: %w", err)
	}

	return entries, nil
}
