package application

import (
	"time"

	"github.com/example/fieldops-scheduler/internal/scheduling"
)

// ScheduleTaskParams wraps the caller-provided fields for scheduling a task.
type ScheduleTaskParams struct {
	TaskID                     string
	ScheduledAt                time.Time
	AssignedWorkerID           string
	BuildingID                 string
	CreatedBy                  string
	Priority                   scheduling.Priority
	EstimatedDuration          time.Duration
	RequiresWorkerConfirmation bool
	SmartSchedulingEnabled     bool
}

// ScheduleQuery narrows schedule listings. Time bounds are tested against the
// entry's scheduled time only, not the full occupied interval. ActiveOnly
// excludes cancelled entries.
type ScheduleQuery struct {
	From       *time.Time
	To         *time.Time
	ActiveOnly bool
}

// WorkerProfile is the read-only directory view of a worker consumed when
// building schedule contexts.
type WorkerProfile struct {
	WorkerID              string
	AvailabilityWindows   []scheduling.AvailabilityWindow
	PreferredWorkingHours scheduling.WorkingHours
	BuildingAssignments   []string
}

// WorkerScheduleContext is the cached, derived view of one worker's
// commitments, conflicts and recommendations.
type WorkerScheduleContext struct {
	WorkerID              string
	CurrentSchedule       []scheduling.ScheduleEntry
	AvailabilityWindows   []scheduling.AvailabilityWindow
	PreferredWorkingHours scheduling.WorkingHours
	BuildingAssignments   []string
	ConflictingTasks      []scheduling.ScheduleEntry
	RecommendedSlots      []scheduling.Slot
	LastUpdated           time.Time
}
