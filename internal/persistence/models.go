package persistence

import "time"

// ScheduleEntry is the storage representation of one task-to-time binding.
type ScheduleEntry struct {
	ID                         string
	TaskID                     string
	ScheduledAt                time.Time
	AssignedWorkerID           string
	BuildingID                 string
	CreatedBy                  string
	Priority                   string
	EstimatedDuration          time.Duration
	Status                     string
	RequiresWorkerConfirmation bool
	SmartSchedulingEnabled     bool
	CreatedAt                  time.Time
	UpdatedAt                  time.Time
}

// AvailabilityWindow is a recurring weekday span during which a worker
// accepts assignments. Minutes count from local midnight.
type AvailabilityWindow struct {
	Weekday     time.Weekday
	StartMinute int
	EndMinute   int
}

// Worker holds the directory attributes the scheduling core reads: recurring
// availability, preferred working hours and building assignments.
type Worker struct {
	ID                   string
	DisplayName          string
	PreferredStartMinute int
	PreferredEndMinute   int
	AvailabilityWindows  []AvailabilityWindow
	BuildingIDs          []string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// TaskAnnotation records the schedule metadata stamped onto an originating
// task once it has been placed on the calendar.
type TaskAnnotation struct {
	TaskID      string
	ScheduleID  string
	ScheduledAt time.Time
	WorkerID    string
	UpdatedAt   time.Time
}

// ScheduleFilter narrows schedule queries. Time bounds are tested against
// ScheduledAt only, not the full occupied interval.
type ScheduleFilter struct {
	WorkerID   string
	BuildingID string
	From       *time.Time
	To         *time.Time
}
