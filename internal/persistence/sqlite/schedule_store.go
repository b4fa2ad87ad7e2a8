package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/fieldops-scheduler/internal/persistence"
)

// SaveSchedule upserts a schedule entry. The coordinator mutates entries in
// memory first and replays the full row here, so an upsert keeps the durable
// copy convergent regardless of how many side-effect retries happen.
func (s *Store) SaveSchedule(ctx context.Context, entry persistence.ScheduleEntry) error {
	if entry.ID == "" {
		return persistence.ErrConstraintViolation
	}

	var workerID sql.NullString
	if entry.AssignedWorkerID != "" {
		workerID = sql.NullString{String: entry.AssignedWorkerID, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO schedule_entries (
			id, task_id, scheduled_at, assigned_worker_id, building_id, created_by,
			priority, estimated_duration_seconds, status,
			requires_worker_confirmation, smart_scheduling_enabled, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			scheduled_at = excluded.scheduled_at,
			assigned_worker_id = excluded.assigned_worker_id,
			status = excluded.status,
			priority = excluded.priority,
			estimated_duration_seconds = excluded.estimated_duration_seconds,
			requires_worker_confirmation = excluded.requires_worker_confirmation,
			smart_scheduling_enabled = excluded.smart_scheduling_enabled,
			updated_at = excluded.updated_at`,
		entry.ID,
		entry.TaskID,
		entry.ScheduledAt.UTC().Format(time.RFC3339Nano),
		workerID,
		entry.BuildingID,
		entry.CreatedBy,
		entry.Priority,
		int64(entry.EstimatedDuration/time.Second),
		entry.Status,
		boolToInt(entry.RequiresWorkerConfirmation),
		boolToInt(entry.SmartSchedulingEnabled),
		entry.CreatedAt.UTC().Format(time.RFC3339Nano),
		entry.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return mapSQLiteError(err)
	}
	return nil
}

// GetSchedule retrieves one schedule entry by id.
func (s *Store) GetSchedule(ctx context.Context, id string) (persistence.ScheduleEntry, error) {
	row := s.db.QueryRowContext(ctx, scheduleSelect+` WHERE id = ?`, id)
	entry, err := scanScheduleEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.ScheduleEntry{}, persistence.ErrNotFound
	}
	if err != nil {
		return persistence.ScheduleEntry{}, fmt.Errorf("sqlite: get schedule %s: %w", id, err)
	}
	return entry, nil
}

// ListSchedules returns entries matching the filter ordered by scheduled time
// then id, so results are stable for equal timestamps.
func (s *Store) ListSchedules(ctx context.Context, filter persistence.ScheduleFilter) ([]persistence.ScheduleEntry, error) {
	var conditions []string
	var args []any

	if filter.WorkerID != "" {
		conditions = append(conditions, "assigned_worker_id = ?")
		args = append(args, filter.WorkerID)
	}
	if filter.BuildingID != "" {
		conditions = append(conditions, "building_id = ?")
		args = append(args, filter.BuildingID)
	}
	if filter.From != nil {
		conditions = append(conditions, "scheduled_at >= ?")
		args = append(args, filter.From.UTC().Format(time.RFC3339Nano))
	}
	if filter.To != nil {
		conditions = append(conditions, "scheduled_at <= ?")
		args = append(args, filter.To.UTC().Format(time.RFC3339Nano))
	}

	query := scheduleSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY scheduled_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list schedules: %w", err)
	}
	defer rows.Close()

	var entries []persistence.ScheduleEntry
	for rows.Next() {
		entry, err := scanScheduleEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan schedule: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate schedules: %w", err)
	}
	return entries, nil
}

const scheduleSelect = `
	SELECT id, task_id, scheduled_at, assigned_worker_id, building_id, created_by,
		priority, estimated_duration_seconds, status,
		requires_worker_confirmation, smart_scheduling_enabled, created_at, updated_at
	FROM schedule_entries`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScheduleEntry(row rowScanner) (persistence.ScheduleEntry, error) {
	var (
		entry           persistence.ScheduleEntry
		scheduledAt     string
		workerID        sql.NullString
		durationSeconds int64
		requiresConfirm int
		smartEnabled    int
		createdAt       string
		updatedAt       string
	)
	if err := row.Scan(
		&entry.ID,
		&entry.TaskID,
		&scheduledAt,
		&workerID,
		&entry.BuildingID,
		&entry.CreatedBy,
		&entry.Priority,
		&durationSeconds,
		&entry.Status,
		&requiresConfirm,
		&smartEnabled,
		&createdAt,
		&updatedAt,
	); err != nil {
		return persistence.ScheduleEntry{}, err
	}

	var err error
	if entry.ScheduledAt, err = parseStoredTime(scheduledAt); err != nil {
		return persistence.ScheduleEntry{}, err
	}
	if entry.CreatedAt, err = parseStoredTime(createdAt); err != nil {
		return persistence.ScheduleEntry{}, err
	}
	if entry.UpdatedAt, err = parseStoredTime(updatedAt); err != nil {
		return persistence.ScheduleEntry{}, err
	}

	entry.AssignedWorkerID = workerID.String
	entry.EstimatedDuration = time.Duration(durationSeconds) * time.Second
	entry.RequiresWorkerConfirmation = requiresConfirm != 0
	entry.SmartSchedulingEnabled = smartEnabled != 0
	return entry, nil
}

func parseStoredTime(value string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts, nil
	}
	return time.Parse(time.RFC3339, value)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func mapSQLiteError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return persistence.ErrDuplicate
	case strings.Contains(msg, "CHECK constraint failed"),
		strings.Contains(msg, "NOT NULL constraint failed"),
		strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return persistence.ErrConstraintViolation
	default:
		return err
	}
}
