package scheduling

import "time"

// Priority ranks how urgently a scheduled task must be carried out.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Valid reports whether the priority is one of the closed set of values.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	default:
		return false
	}
}

// Status tracks the lifecycle of a schedule entry.
//
// The only transitions performed by this package's callers are
// scheduled -> {confirmed, rescheduled, cancelled} and
// rescheduled -> {rescheduled, cancelled}. Cancelled is terminal.
type Status string

const (
	StatusScheduled   Status = "scheduled"
	StatusConfirmed   Status = "confirmed"
	StatusRescheduled Status = "rescheduled"
	StatusCancelled   Status = "cancelled"
)

// Valid reports whether the status is one of the closed set of values.
func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusRescheduled, StatusCancelled:
		return true
	default:
		return false
	}
}

// Active reports whether an entry with this status still occupies its time
// interval for conflict purposes.
func (s Status) Active() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusRescheduled:
		return true
	default:
		return false
	}
}

// ConflictLevel grades how contested a recommended slot is.
type ConflictLevel string

const (
	ConflictLevelNone  ConflictLevel = "none"
	ConflictLevelMinor ConflictLevel = "minor"
	ConflictLevelMajor ConflictLevel = "major"
)

// ScheduleEntry binds one operational task to a time and, optionally, a worker.
type ScheduleEntry struct {
	ID                         string
	TaskID                     string
	ScheduledAt                time.Time
	AssignedWorkerID           string
	BuildingID                 string
	CreatedBy                  string
	Priority                   Priority
	EstimatedDuration          time.Duration
	Status                     Status
	RequiresWorkerConfirmation bool
	SmartSchedulingEnabled     bool
	CreatedAt                  time.Time
	UpdatedAt                  time.Time
}

// Interval returns the half-open time interval the entry occupies.
func (e ScheduleEntry) Interval() Interval {
	return Interval{Start: e.ScheduledAt, End: e.ScheduledAt.Add(e.EstimatedDuration)}
}

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals share any instant.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Duration returns the span covered by the interval.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}
