package testfixtures

import (
	"time"

	"github.com/example/fieldops-scheduler/internal/application"
	"github.com/example/fieldops-scheduler/internal/persistence"
	"github.com/example/fieldops-scheduler/internal/scheduling"
)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
// It is a Monday so weekday-bound availability windows line up.
func ReferenceTime() time.Time {
	return time.Date(2025, time.June, 2, 8, 0, 0, 0, time.UTC)
}

// ScheduleEntryFixture builds schedule entries with sensible defaults that
// individual tests override through options.
type ScheduleEntryFixture struct {
	Entry scheduling.ScheduleEntry
}

// EntryOption mutates a ScheduleEntryFixture under construction.
type EntryOption func(*ScheduleEntryFixture)

// NewScheduleEntryFixture returns a one hour high priority entry at 09:00 on
// the reference day, assigned to worker-1 in bldg-1.
func NewScheduleEntryFixture(opts ...EntryOption) ScheduleEntryFixture {
	base := ReferenceTime()
	fixture := ScheduleEntryFixture{Entry: scheduling.ScheduleEntry{
		ID:                "entry-1",
		TaskID:            "task-1",
		ScheduledAt:       base.Add(time.Hour),
		AssignedWorkerID:  "worker-1",
		BuildingID:        "bldg-1",
		CreatedBy:         "dispatcher-1",
		Priority:          scheduling.PriorityHigh,
		EstimatedDuration: time.Hour,
		Status:            scheduling.StatusScheduled,
		CreatedAt:         base,
		UpdatedAt:         base,
	}}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithEntryID overrides the entry identifier.
func WithEntryID(id string) EntryOption {
	return func(f *ScheduleEntryFixture) { f.Entry.ID = id }
}

// WithEntryTask overrides the originating task identifier.
func WithEntryTask(taskID string) EntryOption {
	return func(f *ScheduleEntryFixture) { f.Entry.TaskID = taskID }
}

// WithEntryWorker overrides the assigned worker.
func WithEntryWorker(workerID string) EntryOption {
	return func(f *ScheduleEntryFixture) { f.Entry.AssignedWorkerID = workerID }
}

// WithEntryBuilding overrides the building.
func WithEntryBuilding(buildingID string) EntryOption {
	return func(f *ScheduleEntryFixture) { f.Entry.BuildingID = buildingID }
}

// WithEntryStart overrides the scheduled time.
func WithEntryStart(at time.Time) EntryOption {
	return func(f *ScheduleEntryFixture) { f.Entry.ScheduledAt = at }
}

// WithEntryDuration overrides the estimated duration.
func WithEntryDuration(d time.Duration) EntryOption {
	return func(f *ScheduleEntryFixture) { f.Entry.EstimatedDuration = d }
}

// WithEntryStatus overrides the lifecycle status.
func WithEntryStatus(status scheduling.Status) EntryOption {
	return func(f *ScheduleEntryFixture) { f.Entry.Status = status }
}

// WithEntryPriority overrides the priority.
func WithEntryPriority(priority scheduling.Priority) EntryOption {
	return func(f *ScheduleEntryFixture) { f.Entry.Priority = priority }
}

// WithEntryConfirmation toggles the worker confirmation requirement.
func WithEntryConfirmation(required bool) EntryOption {
	return func(f *ScheduleEntryFixture) { f.Entry.RequiresWorkerConfirmation = required }
}

// WithSmartScheduling toggles the smart scheduling flag.
func WithSmartScheduling(enabled bool) EntryOption {
	return func(f *ScheduleEntryFixture) { f.Entry.SmartSchedulingEnabled = enabled }
}

// WithEntryTimestamps overrides both bookkeeping timestamps.
func WithEntryTimestamps(created, updated time.Time) EntryOption {
	return func(f *ScheduleEntryFixture) {
		f.Entry.CreatedAt = created
		f.Entry.UpdatedAt = updated
	}
}

// Domain returns the scheduling representation of the fixture.
func (f ScheduleEntryFixture) Domain() scheduling.ScheduleEntry {
	return f.Entry
}

// Persistence returns the storage representation of the fixture.
func (f ScheduleEntryFixture) Persistence() persistence.ScheduleEntry {
	e := f.Entry
	return persistence.ScheduleEntry{
		ID:                         e.ID,
		TaskID:                     e.TaskID,
		ScheduledAt:                e.ScheduledAt,
		AssignedWorkerID:           e.AssignedWorkerID,
		BuildingID:                 e.BuildingID,
		CreatedBy:                  e.CreatedBy,
		Priority:                   string(e.Priority),
		EstimatedDuration:          e.EstimatedDuration,
		Status:                     string(e.Status),
		RequiresWorkerConfirmation: e.RequiresWorkerConfirmation,
		SmartSchedulingEnabled:     e.SmartSchedulingEnabled,
		CreatedAt:                  e.CreatedAt,
		UpdatedAt:                  e.UpdatedAt,
	}
}

// Params returns the coordinator input that would create an equivalent entry.
func (f ScheduleEntryFixture) Params() application.ScheduleTaskParams {
	e := f.Entry
	return application.ScheduleTaskParams{
		TaskID:                     e.TaskID,
		ScheduledAt:                e.ScheduledAt,
		AssignedWorkerID:           e.AssignedWorkerID,
		BuildingID:                 e.BuildingID,
		CreatedBy:                  e.CreatedBy,
		Priority:                   e.Priority,
		EstimatedDuration:          e.EstimatedDuration,
		RequiresWorkerConfirmation: e.RequiresWorkerConfirmation,
		SmartSchedulingEnabled:     e.SmartSchedulingEnabled,
	}
}

// WorkerFixture builds worker directory records with defaults that tests
// override through options.
type WorkerFixture struct {
	Worker persistence.Worker
}

// WorkerOption mutates a WorkerFixture under construction.
type WorkerOption func(*WorkerFixture)

// NewWorkerFixture returns worker-1, available weekdays 08:00-18:00 and
// assigned to bldg-1.
func NewWorkerFixture(opts ...WorkerOption) WorkerFixture {
	base := ReferenceTime()
	fixture := WorkerFixture{Worker: persistence.Worker{
		ID:                   "worker-1",
		DisplayName:          "Worker One",
		PreferredStartMinute: 8 * 60,
		PreferredEndMinute:   18 * 60,
		AvailabilityWindows: []persistence.AvailabilityWindow{
			{Weekday: time.Monday, StartMinute: 8 * 60, EndMinute: 18 * 60},
			{Weekday: time.Tuesday, StartMinute: 8 * 60, EndMinute: 18 * 60},
			{Weekday: time.Wednesday, StartMinute: 8 * 60, EndMinute: 18 * 60},
			{Weekday: time.Thursday, StartMinute: 8 * 60, EndMinute: 18 * 60},
			{Weekday: time.Friday, StartMinute: 8 * 60, EndMinute: 18 * 60},
		},
		BuildingIDs: []string{"bldg-1"},
		CreatedAt:   base,
		UpdatedAt:   base,
	}}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithWorkerID overrides the worker identifier.
func WithWorkerID(id string) WorkerOption {
	return func(f *WorkerFixture) { f.Worker.ID = id }
}

// WithWorkerName overrides the display name.
func WithWorkerName(name string) WorkerOption {
	return func(f *WorkerFixture) { f.Worker.DisplayName = name }
}

// WithWorkerHours overrides the preferred working hours in minutes from
// midnight.
func WithWorkerHours(startMinute, endMinute int) WorkerOption {
	return func(f *WorkerFixture) {
		f.Worker.PreferredStartMinute = startMinute
		f.Worker.PreferredEndMinute = endMinute
	}
}

// WithWorkerWindows replaces the recurring availability windows.
func WithWorkerWindows(windows ...persistence.AvailabilityWindow) WorkerOption {
	return func(f *WorkerFixture) { f.Worker.AvailabilityWindows = windows }
}

// WithWorkerBuildings replaces the building assignments.
func WithWorkerBuildings(buildingIDs ...string) WorkerOption {
	return func(f *WorkerFixture) { f.Worker.BuildingIDs = buildingIDs }
}

// Persistence returns the storage representation of the fixture.
func (f WorkerFixture) Persistence() persistence.Worker {
	return f.Worker
}

// Profile returns the directory view the coordinator consumes.
func (f WorkerFixture) Profile() application.WorkerProfile {
	w := f.Worker
	windows := make([]scheduling.AvailabilityWindow, 0, len(w.AvailabilityWindows))
	for _, window := range w.AvailabilityWindows {
		windows = append(windows, scheduling.AvailabilityWindow{
			Weekday:     window.Weekday,
			StartMinute: window.StartMinute,
			EndMinute:   window.EndMinute,
		})
	}
	return application.WorkerProfile{
		WorkerID:            w.ID,
		AvailabilityWindows: windows,
		PreferredWorkingHours: scheduling.WorkingHours{
			StartMinute: w.PreferredStartMinute,
			EndMinute:   w.PreferredEndMinute,
		},
		BuildingAssignments: append([]string(nil), w.BuildingIDs...),
	}
}
