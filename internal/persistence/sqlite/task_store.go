package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/fieldops-scheduler/internal/persistence"
)

// AnnotateTask stamps schedule metadata onto the originating task record.
// Re-annotating the same task replaces the previous stamp, which is what
// reschedules need.
func (s *Store) AnnotateTask(ctx context.Context, annotation persistence.TaskAnnotation) error {
	if annotation.TaskID == "" || annotation.ScheduleID == "" {
		return persistence.ErrConstraintViolation
	}

	var workerID sql.NullString
	if annotation.WorkerID != "" {
		workerID = sql.NullString{String: annotation.WorkerID, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO task_annotations (task_id, schedule_id, scheduled_at, worker_id, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(task_id) DO UPDATE SET
			schedule_id = excluded.schedule_id,
			scheduled_at = excluded.scheduled_at,
			worker_id = excluded.worker_id,
			updated_at = excluded.updated_at`,
		annotation.TaskID,
		annotation.ScheduleID,
		annotation.ScheduledAt.UTC().Format(time.RFC3339Nano),
		workerID,
		annotation.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return mapSQLiteError(err)
	}
	return nil
}
