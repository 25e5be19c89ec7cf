package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/daytrack/daytrack/internal/models"
	"github.com/google/uuid"
)

// TimeEntryRepository owns the start/stop interval ledger for tasks.
type TimeEntryRepository struct {
	db *DB
}

// NewTimeEntryRepository creates a new time entry repository
func NewTimeEntryRepository(db *DB) *TimeEntryRepository {
	return &TimeEntryRepository{db: db}
}

// Create inserts a new entry. An open entry (nil EndTime) will trip the
// partial unique index if the task already has one running, which surfaces
// here as an error rather than a second open interval.
func (r *TimeEntryRepository) Create(ctx context.Context, entry *models.TimeEntry) error {
	query := `
		INSERT INTO time_entries (id, task_id, start_time, end_time, duration_seconds, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	var endTime any
	if entry.EndTime != nil {
		endTime = *entry.EndTime
	}

	err := r.db.QueryRowContext(ctx, query,
		entry.ID,
		entry.TaskID,
		entry.StartTime,
		endTime,
		entry.DurationSeconds,
		time.Now(),
	).Scan(&entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create time entry: %w", err)
	}

	return nil
}

// GetByID retrieves a time entry by ID
func (r *TimeEntryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TimeEntry, error) {
	query := `
		SELECT id, task_id, start_time, end_time, duration_seconds, created_at
		FROM time_entries
		WHERE id = $1
	`

	entry, err := scanTimeEntry(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("time entry %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get time entry: %w", err)
	}

	return entry, nil
}

// ListByTask returns all entries for a task, chronological by start time.
func (r *TimeEntryRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*models.TimeEntry, error) {
	query := `
		SELECT id, task_id, start_time, end_time, duration_seconds, created_at
		FROM time_entries
		WHERE task_id = $1
		ORDER BY start_time ASC
	`

	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to query time entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.TimeEntry
	for rows.Next() {
		entry, err := scanTimeEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating time entries: %w", err)
	}

	return entries, nil
}

// OpenByTask returns the task's single open entry, or nil if the timer is idle.
func (r *TimeEntryRepository) OpenByTask(ctx context.Context, taskID uuid.UUID) (*models.TimeEntry, error) {
	query := `
		SELECT id, task_id, start_time, end_time, duration_seconds, created_at
		FROM time_entries
		WHERE task_id = $1 AND end_time IS NULL
	`

	entry, err := scanTimeEntry(r.db.QueryRowContext(ctx, query, taskID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get open time entry: %w", err)
	}

	return entry, nil
}

// Close seals an open entry. Closing is terminal: the statement only matches
// entries whose end_time is still null, so a second close is a no-op error.
func (r *TimeEntryRepository) Close(ctx context.Context, id uuid.UUID, endTime time.Time, durationSeconds int) error {
	query := `
		UPDATE time_entries
		SET end_time = $2, duration_seconds = $3
		WHERE id = $1 AND end_time IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, id, endTime, durationSeconds)
	if err != nil {
		return fmt.Errorf("failed to close time entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("open time entry %s: %w", id, models.ErrNotFound)
	}

	return nil
}

// ClosedTotalByTask sums closed durations for one task. Open entries are
// excluded; their elapsed time is a read-time projection, never a stored sum.
func (r *TimeEntryRepository) ClosedTotalByTask(ctx context.Context, taskID uuid.UUID) (int, error) {
	query := `
		SELECT COALESCE(SUM(duration_seconds), 0)
		FROM time_entries
		WHERE task_id = $1 AND end_time IS NOT NULL
	`

	var total int
	if err := r.db.QueryRowContext(ctx, query, taskID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum time entries: %w", err)
	}

	return total, nil
}

// ClosedTotalsByDate sums closed durations per task for all tasks on a date.
func (r *TimeEntryRepository) ClosedTotalsByDate(ctx context.Context, date string) (map[uuid.UUID]int, error) {
	query := `
		SELECT t.id, COALESCE(SUM(e.duration_seconds), 0)
		FROM tasks t
		LEFT JOIN time_entries e ON e.task_id = t.id AND e.end_time IS NOT NULL
		WHERE t.date = $1
		GROUP BY t.id
	`

	rows, err := r.db.QueryContext(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query closed totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[uuid.UUID]int)
	for rows.Next() {
		var taskID uuid.UUID
		var total int
		if err := rows.Scan(&taskID, &total); err != nil {
			return nil, fmt.Errorf("failed to scan closed total: %w", err)
		}
		totals[taskID] = total
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating closed totals: %w", err)
	}

	return totals, nil
}

// Delete removes a single entry, open or closed.
func (r *TimeEntryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM time_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete time entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("time entry %s: %w", id, models.ErrNotFound)
	}

	return nil
}

// DeleteAllForTask removes every entry for a task. Used by the task deletion
// cascade.
func (r *TimeEntryRepository) DeleteAllForTask(ctx context.Context, taskID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM time_entries WHERE task_id = $1`, taskID); err != nil {
		return fmt.Errorf("failed to delete time entries for task: %w", err)
	}
	return nil
}

func scanTimeEntry(row rowScanner) (*models.TimeEntry, error) {
	entry := &models.TimeEntry{}
	var endTime sql.NullTime

	err := row.Scan(
		&entry.ID,
		&entry.TaskID,
		&entry.StartTime,
		&endTime,
		&entry.DurationSeconds,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if endTime.Valid {
		entry.EndTime = &endTime.Time
	}

	return entry, nil
}
