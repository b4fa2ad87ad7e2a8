package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/fieldops-scheduler/internal/notify"
	"github.com/example/fieldops-scheduler/internal/scheduling"
)

// ScheduleSaver persists the durable copy of a schedule entry. Saves happen
// after the in-memory mutation and are never rolled back.
type ScheduleSaver interface {
	SaveSchedule(ctx context.Context, entry scheduling.ScheduleEntry) error
}

// WorkerDirectory exposes the read-only worker attributes consumed when
// building schedule contexts.
type WorkerDirectory interface {
	WorkerProfile(ctx context.Context, workerID string) (WorkerProfile, error)
}

// TaskAnnotator stamps schedule metadata back onto the originating task.
type TaskAnnotator interface {
	AnnotateTask(ctx context.Context, taskID, scheduleID string, scheduledAt time.Time, workerID string) error
}

// Coordinator owns the authoritative schedule list and serializes every
// mutation to it, including the synchronous rebuild of the affected worker's
// cached context. Reads take snapshots and may run concurrently.
type Coordinator struct {
	saver     ScheduleSaver
	directory WorkerDirectory
	tasks     TaskAnnotator
	notifier  notify.Notifier

	engine  *scheduling.Engine
	cache   *contextCache
	emitter *emitter

	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger

	mu      sync.RWMutex
	entries map[string]scheduling.ScheduleEntry
	lastErr error
}

// NewCoordinator wires dependencies for schedule orchestration. saver,
// directory, tasks and notifier may be nil; the corresponding side effect is
// then skipped.
func NewCoordinator(saver ScheduleSaver, directory WorkerDirectory, tasks TaskAnnotator, notifier notify.Notifier, idGenerator func() string, now func() time.Time, logger *slog.Logger) *Coordinator {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &Coordinator{
		saver:       saver,
		directory:   directory,
		tasks:       tasks,
		notifier:    notifier,
		engine:      scheduling.NewEngine(now),
		cache:       newContextCache(contextTTL, contextCacheSize),
		emitter:     newEmitter(),
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
		entries:     make(map[string]scheduling.ScheduleEntry),
	}
}

// Subscribe registers an observer for schedule mutations and returns a cancel
// function. Observers run synchronously on the mutating goroutine while the
// write lock is held, so they must not call back into the Coordinator.
func (c *Coordinator) Subscribe(fn func(Event)) func() {
	return c.emitter.subscribe(fn)
}

// LoadEntries seeds the authoritative list from persisted state at startup.
// No side effects fire and no contexts are built.
func (c *Coordinator) LoadEntries(entries []scheduling.ScheduleEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, entry := range entries {
		if entry.ID == "" {
			continue
		}
		c.entries[entry.ID] = entry
	}
}

// ScheduleTask creates a schedule entry for a task. When smart scheduling is
// enabled and a worker is assigned, one bounded optimization pass may move
// the entry to a nearby conflict-free time; the caller receives the adjusted
// entry without an error. An exhausted search keeps the original, still
// conflicting time and only records ErrOptimizationFailed for display.
func (c *Coordinator) ScheduleTask(ctx context.Context, params ScheduleTaskParams) (scheduling.ScheduleEntry, error) {
	logger := operationLogger(ctx, c.logger, "schedule_task", "task_id", params.TaskID)

	if strings.TrimSpace(params.BuildingID) == "" {
		return scheduling.ScheduleEntry{}, fmt.Errorf("%w: building id is required", ErrInvalidTimeSlot)
	}
	if params.EstimatedDuration <= 0 {
		return scheduling.ScheduleEntry{}, fmt.Errorf("%w: estimated duration must be positive", ErrInvalidTimeSlot)
	}
	priority := params.Priority
	if priority == "" {
		priority = scheduling.PriorityMedium
	}
	if !priority.Valid() {
		return scheduling.ScheduleEntry{}, fmt.Errorf("%w: unknown priority %q", ErrInvalidTimeSlot, params.Priority)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	createdAt := c.now()
	entry := scheduling.ScheduleEntry{
		ID:                         c.idGenerator(),
		TaskID:                     params.TaskID,
		ScheduledAt:                params.ScheduledAt,
		AssignedWorkerID:           params.AssignedWorkerID,
		BuildingID:                 strings.TrimSpace(params.BuildingID),
		CreatedBy:                  params.CreatedBy,
		Priority:                   priority,
		EstimatedDuration:          params.EstimatedDuration,
		Status:                     scheduling.StatusScheduled,
		RequiresWorkerConfirmation: params.RequiresWorkerConfirmation,
		SmartSchedulingEnabled:     params.SmartSchedulingEnabled,
		CreatedAt:                  createdAt,
		UpdatedAt:                  createdAt,
	}

	var optimizationErr error
	if params.SmartSchedulingEnabled && entry.AssignedWorkerID != "" {
		workerContext := c.buildContextLocked(ctx, entry.AssignedWorkerID)
		conflicts := scheduling.DetectConflicts(entry.AssignedWorkerID, entry.Interval(), workerContext.CurrentSchedule, "")
		if len(conflicts) > 0 {
			if slot, ok := c.engine.FindBestTimeSlot(entry.AssignedWorkerID, entry.ScheduledAt, entry.EstimatedDuration, workerContext.CurrentSchedule); ok {
				logger.InfoContext(ctx, "relocated conflicting placement",
					"requested_at", params.ScheduledAt,
					"scheduled_at", slot.Start,
					"reasoning", slot.Reasoning,
					"confidence", slot.Confidence,
				)
				entry.ScheduledAt = slot.Start
			} else {
				optimizationErr = fmt.Errorf("%w: no nearby slot clears %d conflict(s) for worker %s", ErrOptimizationFailed, len(conflicts), entry.AssignedWorkerID)
				logger.WarnContext(ctx, "optimization exhausted, keeping requested time",
					"scheduled_at", entry.ScheduledAt,
					"conflicts", len(conflicts),
					"error_kind", ErrorKind(optimizationErr),
				)
			}
		}
		if !scheduling.Covers(workerContext.AvailabilityWindows, entry.Interval()) {
			logger.WarnContext(ctx, "placement outside worker availability windows",
				"worker_id", entry.AssignedWorkerID,
				"scheduled_at", entry.ScheduledAt,
			)
		}
	}

	c.entries[entry.ID] = entry
	c.refreshWorkerContextLocked(ctx, entry.AssignedWorkerID)
	c.emitter.emit(Event{Type: EventScheduleCreated, Entry: entry, At: createdAt})

	sideEffectErr := c.applySideEffects(ctx, logger, entry, notify.EventCreated, notify.Payload{
		ScheduleID:  entry.ID,
		TaskID:      entry.TaskID,
		BuildingID:  entry.BuildingID,
		ScheduledAt: entry.ScheduledAt,
		Priority:    string(entry.Priority),
	})

	c.lastErr = firstError(sideEffectErr, optimizationErr)
	return entry, sideEffectErr
}

// RescheduleTask moves an existing entry to a new time. Conflicts at the new
// time are logged but never block the move; an explicit reschedule always
// wins. The entry transitions to the rescheduled status.
func (c *Coordinator) RescheduleTask(ctx context.Context, scheduleID string, newAt time.Time, reason string) (scheduling.ScheduleEntry, error) {
	logger := operationLogger(ctx, c.logger, "reschedule_task", "schedule_id", scheduleID)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[scheduleID]
	if !ok {
		return scheduling.ScheduleEntry{}, fmt.Errorf("%w: %s", ErrScheduleNotFound, scheduleID)
	}
	if entry.Status == scheduling.StatusCancelled {
		return scheduling.ScheduleEntry{}, fmt.Errorf("%w: schedule %s is cancelled", ErrInvalidTimeSlot, scheduleID)
	}

	candidate := scheduling.Interval{Start: newAt, End: newAt.Add(entry.EstimatedDuration)}
	if conflicts := scheduling.DetectConflicts(entry.AssignedWorkerID, candidate, c.rosterLocked(entry.AssignedWorkerID), entry.ID); len(conflicts) > 0 {
		logger.WarnContext(ctx, "reschedule introduces conflicts, applying anyway",
			"new_at", newAt,
			"conflicts", len(conflicts),
		)
	}

	previousAt := entry.ScheduledAt
	entry.ScheduledAt = newAt
	entry.Status = scheduling.StatusRescheduled
	entry.UpdatedAt = c.now()
	c.entries[entry.ID] = entry

	c.refreshWorkerContextLocked(ctx, entry.AssignedWorkerID)
	c.emitter.emit(Event{Type: EventScheduleRescheduled, Entry: entry, PreviousAt: previousAt, Reason: reason, At: entry.UpdatedAt})

	sideEffectErr := c.applySideEffects(ctx, logger, entry, notify.EventRescheduled, notify.Payload{
		ScheduleID:  entry.ID,
		TaskID:      entry.TaskID,
		BuildingID:  entry.BuildingID,
		ScheduledAt: entry.ScheduledAt,
		PreviousAt:  previousAt,
		Reason:      reason,
		Priority:    string(entry.Priority),
	})

	c.lastErr = sideEffectErr
	return entry, sideEffectErr
}

// CancelScheduledTask marks an entry cancelled. Cancellation is terminal and
// idempotent; the entry remains in the list as soft state.
func (c *Coordinator) CancelScheduledTask(ctx context.Context, scheduleID string, reason string) (scheduling.ScheduleEntry, error) {
	logger := operationLogger(ctx, c.logger, "cancel_scheduled_task", "schedule_id", scheduleID)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[scheduleID]
	if !ok {
		return scheduling.ScheduleEntry{}, fmt.Errorf("%w: %s", ErrScheduleNotFound, scheduleID)
	}
	if entry.Status == scheduling.StatusCancelled {
		return entry, nil
	}

	entry.Status = scheduling.StatusCancelled
	entry.UpdatedAt = c.now()
	c.entries[entry.ID] = entry

	c.refreshWorkerContextLocked(ctx, entry.AssignedWorkerID)
	c.emitter.emit(Event{Type: EventScheduleCancelled, Entry: entry, Reason: reason, At: entry.UpdatedAt})

	sideEffectErr := c.applySideEffects(ctx, logger, entry, notify.EventCancelled, notify.Payload{
		ScheduleID:  entry.ID,
		TaskID:      entry.TaskID,
		BuildingID:  entry.BuildingID,
		ScheduledAt: entry.ScheduledAt,
		Reason:      reason,
		Priority:    string(entry.Priority),
	})

	c.lastErr = sideEffectErr
	return entry, sideEffectErr
}

// ConfirmScheduledTask records a worker's confirmation of an entry that
// requires one. Cancelled entries cannot be confirmed.
func (c *Coordinator) ConfirmScheduledTask(ctx context.Context, scheduleID string) (scheduling.ScheduleEntry, error) {
	logger := operationLogger(ctx, c.logger, "confirm_scheduled_task", "schedule_id", scheduleID)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[scheduleID]
	if !ok {
		return scheduling.ScheduleEntry{}, fmt.Errorf("%w: %s", ErrScheduleNotFound, scheduleID)
	}
	if entry.Status == scheduling.StatusCancelled {
		return scheduling.ScheduleEntry{}, fmt.Errorf("%w: schedule %s is cancelled", ErrInvalidTimeSlot, scheduleID)
	}
	if entry.Status == scheduling.StatusConfirmed {
		return entry, nil
	}

	entry.Status = scheduling.StatusConfirmed
	entry.UpdatedAt = c.now()
	c.entries[entry.ID] = entry

	c.refreshWorkerContextLocked(ctx, entry.AssignedWorkerID)
	c.emitter.emit(Event{Type: EventScheduleConfirmed, Entry: entry, At: entry.UpdatedAt})

	sideEffectErr := c.applySideEffects(ctx, logger, entry, notify.EventConfirmed, notify.Payload{
		ScheduleID:  entry.ID,
		TaskID:      entry.TaskID,
		BuildingID:  entry.BuildingID,
		ScheduledAt: entry.ScheduledAt,
		Priority:    string(entry.Priority),
	})

	c.lastErr = sideEffectErr
	return entry, sideEffectErr
}

// WorkerScheduleContext returns the cached context for a worker when it is
// younger than the TTL, otherwise rebuilds it deterministically from the
// current entry list. Cache hits run concurrently; a miss fills under the
// write lock so the fill cannot interleave with a mutation and store a view
// older than that mutation's synchronous refresh.
func (c *Coordinator) WorkerScheduleContext(ctx context.Context, workerID string) (WorkerScheduleContext, error) {
	if workerID == "" {
		return WorkerScheduleContext{}, fmt.Errorf("%w: worker id is required", ErrInvalidTimeSlot)
	}

	if cached, ok := c.cache.Get(workerID); ok {
		return cached, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// A mutation may have refreshed the cache while this call waited for the
	// lock; that refresh is current, so serve it.
	if cached, ok := c.cache.Get(workerID); ok {
		return cached, nil
	}

	built := c.buildContextLocked(ctx, workerID)
	c.cache.Store(built)
	return built, nil
}

// ScheduledTasks returns a snapshot of the worker's entries matching the
// query, ordered by scheduled time then id.
func (c *Coordinator) ScheduledTasks(workerID string, query ScheduleQuery) []scheduling.ScheduleEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filterLocked(query, func(entry scheduling.ScheduleEntry) bool {
		return entry.AssignedWorkerID == workerID
	})
}

// ScheduledTasksForBuilding returns a snapshot of the building's entries
// matching the query, ordered by scheduled time then id.
func (c *Coordinator) ScheduledTasksForBuilding(buildingID string, query ScheduleQuery) []scheduling.ScheduleEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filterLocked(query, func(entry scheduling.ScheduleEntry) bool {
		return entry.BuildingID == buildingID
	})
}

// LastError returns the most recent operation error retained for display, or
// nil when the last mutation completed cleanly.
func (c *Coordinator) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

func (c *Coordinator) filterLocked(query ScheduleQuery, match func(scheduling.ScheduleEntry) bool) []scheduling.ScheduleEntry {
	var result []scheduling.ScheduleEntry
	for _, entry := range c.entries {
		if !match(entry) {
			continue
		}
		if query.ActiveOnly && !entry.Status.Active() {
			continue
		}
		if query.From != nil && entry.ScheduledAt.Before(*query.From) {
			continue
		}
		if query.To != nil && entry.ScheduledAt.After(*query.To) {
			continue
		}
		result = append(result, entry)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].ScheduledAt.Equal(result[j].ScheduledAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].ScheduledAt.Before(result[j].ScheduledAt)
	})
	return result
}

// rosterLocked returns the worker's active entries ordered by time then id.
// Callers must hold at least a read lock.
func (c *Coordinator) rosterLocked(workerID string) []scheduling.ScheduleEntry {
	var roster []scheduling.ScheduleEntry
	if workerID == "" {
		return roster
	}
	for _, entry := range c.entries {
		if entry.AssignedWorkerID == workerID && entry.Status.Active() {
			roster = append(roster, entry)
		}
	}
	sort.SliceStable(roster, func(i, j int) bool {
		if roster[i].ScheduledAt.Equal(roster[j].ScheduledAt) {
			return roster[i].ID < roster[j].ID
		}
		return roster[i].ScheduledAt.Before(roster[j].ScheduledAt)
	})
	return roster
}

// buildContextLocked derives a fresh context from the current entry list.
// Directory lookups are tolerated to fail; the context then carries defaults
// and the miss is logged.
func (c *Coordinator) buildContextLocked(ctx context.Context, workerID string) WorkerScheduleContext {
	roster := c.rosterLocked(workerID)

	profile := WorkerProfile{WorkerID: workerID, PreferredWorkingHours: scheduling.DefaultWorkingHours}
	if c.directory != nil {
		fetched, err := c.directory.WorkerProfile(ctx, workerID)
		if err != nil {
			operationLogger(ctx, c.logger, "build_context", "worker_id", workerID).
				WarnContext(ctx, "worker profile lookup failed, using defaults", "error", err)
		} else {
			profile = fetched
			if !profile.PreferredWorkingHours.Valid() {
				profile.PreferredWorkingHours = scheduling.DefaultWorkingHours
			}
		}
	}

	return WorkerScheduleContext{
		WorkerID:              workerID,
		CurrentSchedule:       roster,
		AvailabilityWindows:   profile.AvailabilityWindows,
		PreferredWorkingHours: profile.PreferredWorkingHours,
		BuildingAssignments:   profile.BuildingAssignments,
		ConflictingTasks:      scheduling.ScanConflicts(roster),
		RecommendedSlots:      c.engine.GenerateRecommendedSlots(workerID, roster, profile.PreferredWorkingHours),
		LastUpdated:           c.now(),
	}
}

// refreshWorkerContextLocked invalidates and synchronously rebuilds the
// context for the affected worker. Unassigned entries have no context.
func (c *Coordinator) refreshWorkerContextLocked(ctx context.Context, workerID string) {
	if workerID == "" {
		return
	}
	c.cache.Invalidate(workerID)
	c.cache.Store(c.buildContextLocked(ctx, workerID))
}

// applySideEffects runs the delegated persistence, task annotation and
// notification calls after the in-memory mutation. The first failure is
// returned to the caller; the mutation is never rolled back.
func (c *Coordinator) applySideEffects(ctx context.Context, logger *slog.Logger, entry scheduling.ScheduleEntry, event notify.Event, payload notify.Payload) error {
	var firstErr error

	if c.saver != nil {
		if err := c.saver.SaveSchedule(ctx, entry); err != nil {
			logger.ErrorContext(ctx, "persistence write failed", "schedule_id", entry.ID, "error", err)
			firstErr = err
		}
	}

	if c.tasks != nil && entry.TaskID != "" {
		if err := c.tasks.AnnotateTask(ctx, entry.TaskID, entry.ID, entry.ScheduledAt, entry.AssignedWorkerID); err != nil {
			logger.ErrorContext(ctx, "task annotation failed", "task_id", entry.TaskID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if c.notifier != nil && entry.AssignedWorkerID != "" {
		if err := c.notifier.Notify(ctx, entry.AssignedWorkerID, event, payload); err != nil {
			logger.ErrorContext(ctx, "worker notification failed", "worker_id", entry.AssignedWorkerID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
