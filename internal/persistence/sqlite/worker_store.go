package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/fieldops-scheduler/internal/persistence"
)

// UpsertWorker writes a worker's directory attributes, replacing the
// availability and building rows wholesale.
func (s *Store) UpsertWorker(ctx context.Context, worker persistence.Worker) error {
	if worker.ID == "" {
		return persistence.ErrConstraintViolation
	}

	return s.withTransaction(ctx, func(tx *sql.Tx) error {
		now := time.Now().UTC().Format(time.RFC3339Nano)
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO workers (id, display_name, preferred_start_minute, preferred_end_minute, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				display_name = excluded.display_name,
				preferred_start_minute = excluded.preferred_start_minute,
				preferred_end_minute = excluded.preferred_end_minute,
				updated_at = excluded.updated_at`,
			worker.ID, worker.DisplayName, worker.PreferredStartMinute, worker.PreferredEndMinute, now, now,
		); err != nil {
			return mapSQLiteError(err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM worker_availability WHERE worker_id = ?`, worker.ID); err != nil {
			return mapSQLiteError(err)
		}
		for _, window := range worker.AvailabilityWindows {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO worker_availability (worker_id, weekday, start_minute, end_minute)
				VALUES (?, ?, ?, ?)`,
				worker.ID, int(window.Weekday), window.StartMinute, window.EndMinute,
			); err != nil {
				return mapSQLiteError(err)
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM worker_buildings WHERE worker_id = ?`, worker.ID); err != nil {
			return mapSQLiteError(err)
		}
		for _, buildingID := range worker.BuildingIDs {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO worker_buildings (worker_id, building_id) VALUES (?, ?)`,
				worker.ID, buildingID,
			); err != nil {
				return mapSQLiteError(err)
			}
		}
		return nil
	})
}

// GetWorker retrieves one worker with availability windows and building
// assignments attached.
func (s *Store) GetWorker(ctx context.Context, id string) (persistence.Worker, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, display_name, preferred_start_minute, preferred_end_minute, created_at, updated_at
		FROM workers WHERE id = ?`, id)

	worker, err := scanWorker(row)
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.Worker{}, persistence.ErrNotFound
	}
	if err != nil {
		return persistence.Worker{}, fmt.Errorf("sqlite: get worker %s: %w", id, err)
	}

	if worker.AvailabilityWindows, err = s.workerAvailability(ctx, id); err != nil {
		return persistence.Worker{}, err
	}
	if worker.BuildingIDs, err = s.workerBuildings(ctx, id); err != nil {
		return persistence.Worker{}, err
	}
	return worker, nil
}

// ListWorkers enumerates all workers ordered by id, without the per-worker
// detail rows.
func (s *Store) ListWorkers(ctx context.Context) ([]persistence.Worker, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, display_name, preferred_start_minute, preferred_end_minute, created_at, updated_at
		FROM workers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list workers: %w", err)
	}
	defer rows.Close()

	var workers []persistence.Worker
	for rows.Next() {
		worker, err := scanWorker(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan worker: %w", err)
		}
		workers = append(workers, worker)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate workers: %w", err)
	}
	return workers, nil
}

func scanWorker(row rowScanner) (persistence.Worker, error) {
	var (
		worker    persistence.Worker
		createdAt string
		updatedAt string
	)
	if err := row.Scan(
		&worker.ID,
		&worker.DisplayName,
		&worker.PreferredStartMinute,
		&worker.PreferredEndMinute,
		&createdAt,
		&updatedAt,
	); err != nil {
		return persistence.Worker{}, err
	}

	var err error
	if worker.CreatedAt, err = parseStoredTime(createdAt); err != nil {
		return persistence.Worker{}, err
	}
	if worker.UpdatedAt, err = parseStoredTime(updatedAt); err != nil {
		return persistence.Worker{}, err
	}
	return worker, nil
}

func (s *Store) workerAvailability(ctx context.Context, workerID string) ([]persistence.AvailabilityWindow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT weekday, start_minute, end_minute
		FROM worker_availability WHERE worker_id = ?
		ORDER BY weekday, start_minute`, workerID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: worker availability %s: %w", workerID, err)
	}
	defer rows.Close()

	var windows []persistence.AvailabilityWindow
	for rows.Next() {
		var weekday int
		var window persistence.AvailabilityWindow
		if err := rows.Scan(&weekday, &window.StartMinute, &window.EndMinute); err != nil {
			return nil, fmt.Errorf("sqlite: scan availability: %w", err)
		}
		window.Weekday = time.Weekday(weekday)
		windows = append(windows, window)
	}
	return windows, rows.Err()
}

func (s *Store) workerBuildings(ctx context.Context, workerID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT building_id FROM worker_buildings WHERE worker_id = ? ORDER BY building_id`, workerID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: worker buildings %s: %w", workerID, err)
	}
	defer rows.Close()

	var buildingIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scan building: %w", err)
		}
		buildingIDs = append(buildingIDs, id)
	}
	return buildingIDs, rows.Err()
}
