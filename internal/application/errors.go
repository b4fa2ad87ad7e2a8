package application

import "errors"

var (
	// ErrScheduleNotFound is returned when a reschedule, cancel or confirm
	// targets an id that does not exist. No mutation occurs on this path.
	ErrScheduleNotFound = errors.New("application: schedule not found")
	// ErrInvalidTimeSlot is returned for malformed scheduling input; the
	// operation aborts before any mutation.
	ErrInvalidTimeSlot = errors.New("application: invalid time slot")
	// ErrOptimizationFailed records that the bounded relocation search
	// exhausted its offsets. It is non-fatal: the entry keeps its original,
	// still-conflicting time and the error is only retained for display.
	ErrOptimizationFailed = errors.New("application: optimization failed")
	// ErrConflictingSchedule is part of the error taxonomy but is not raised
	// by the current control flow; conflicts are surfaced through the worker
	// context instead of blocking.
	ErrConflictingSchedule = errors.New("application: conflicting schedule")
	// ErrWorkerNotAvailable is part of the error taxonomy but is not raised
	// by the current control flow; availability misses are logged only.
	ErrWorkerNotAvailable = errors.New("application: worker not available")
)
