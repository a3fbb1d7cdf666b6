// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/safer/internal/ports/secondary"
)

// ActivityLogRepository implements secondary.ActivityLogRepository with SQLite.
type ActivityLogRepository struct {
	db *sql.DB
}

// NewActivityLogRepository creates a new SQLite activity log repository.
func NewActivityLogRepository(db *sql.DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

func nullable(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// Create persists a new activity log entry.
func (r *ActivityLogRepository) Create(ctx context.Context, log *secondary.ActivityLogRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO activity_logs (id, actor_id, entity_type, entity_id, action, field_name, old_value, new_value) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		log.ID,
		nullable(log.ActorID),
		log.EntityType,
		log.EntityID,
		log.Action,
		nullable(log.FieldName),
		nullable(log.OldValue),
		nullable(log.NewValue),
	)
	if err != nil {
		return fmt.Errorf("failed to create activity log: %w", err)
	}

	return nil
}

const selectColumns = `SELECT id, timestamp, actor_id, entity_type, entity_id, action, field_name, old_value, new_value FROM activity_logs`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*secondary.ActivityLogRecord, error) {
	var (
		actorID   sql.NullString
		fieldName sql.NullString
		oldValue  sql.NullString
		newValue  sql.NullString
		timestamp time.Time
	)

	record := &secondary.ActivityLogRecord{}
	err := row.Scan(&record.ID,
		&timestamp,
		&actorID,
		&record.EntityType,
		&record.EntityID,
		&record.Action,
		&fieldName,
		&oldValue,
		&newValue)
	if err != nil {
		return nil, err
	}
	record.Timestamp = timestamp.Format(time.RFC3339)
	record.ActorID = actorID.String
	record.FieldName = fieldName.String
	record.OldValue = oldValue.String
	record.NewValue = newValue.String
	return record, nil
}

// GetByID retrieves a log entry by its ID.
func (r *ActivityLogRepository) GetByID(ctx context.Context, id string) (*secondary.ActivityLogRecord, error) {
	record, err := scanRecord(r.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("activity log %s: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get activity log: %w", err)
	}
	return record, nil
}

// List retrieves log entries matching the given filters, newest first.
func (r *ActivityLogRepository) List(ctx context.Context, filters secondary.ActivityLogFilters) ([]*secondary.ActivityLogRecord, error) {
	query := selectColumns + ` WHERE 1=1`
	args := []any{}

	if filters.EntityType != "" {
		query += " AND entity_type = ?"
		args = append(args, filters.EntityType)
	}

	if filters.EntityID != "" {
		query += " AND entity_id = ?"
		args = append(args, filters.EntityID)
	}

	if filters.ActorID != "" {
		query += " AND actor_id = ?"
		args = append(args, filters.ActorID)
	}

	if filters.Action != "" {
		query += " AND action = ?"
		args = append(args, filters.Action)
	}

	query += " ORDER BY timestamp DESC, id DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity logs: %w", err)
	}
	defer rows.Close()

	var logs []*secondary.ActivityLogRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity log: %w", err)
		}
		logs = append(logs, record)
	}

	return logs, rows.Err()
}

// GetNextID returns the next available log ID.
func (r *ActivityLogRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	prefixLen := len("AL-") + 1
	err := r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COALESCE(MAX(CAST(SUBSTR(id, %d) AS INTEGER)), 0) FROM activity_logs", prefixLen),
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next activity log ID: %w", err)
	}

	return fmt.Sprintf("AL-%04d", maxID+1), nil
}

// PruneOlderThan deletes log entries older than the given number of days.
func (r *ActivityLogRepository) PruneOlderThan(ctx context.Context, days int) (int, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM activity_logs WHERE timestamp < datetime('now', ?)",
		fmt.Sprintf("-%d days", days),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune activity logs: %w", err)
	}

	count, _ := result.RowsAffected()
	return int(count), nil
}

// Ensure ActivityLogRepository implements the interface
var _ secondary.ActivityLogRepository = (*ActivityLogRepository)(nil)
