package main

import (
	"context"
	"testing"
	"time"

	"github.com/example/fieldops-scheduler/internal/application"
	"github.com/example/fieldops-scheduler/internal/scheduling"
	"github.com/example/fieldops-scheduler/internal/testfixtures"
)

func TestScheduleSurvivesRestart(t *testing.T) {
	t.Parallel()

	store := testfixtures.NewSQLiteHarness(t).Store
	ctx := context.Background()
	idGen := testfixtures.NewIDGenerator("").NextFunc()

	coordinator := application.NewCoordinator(
		newScheduleSaverAdapter(store),
		newWorkerDirectoryAdapter(store),
		newTaskAnnotatorAdapter(store),
		nil,
		idGen,
		time.Now,
		nil,
	)

	entry, err := coordinator.ScheduleTask(ctx, testfixtures.NewScheduleEntryFixture().Params())
	if err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	restarted := application.NewCoordinator(
		newScheduleSaverAdapter(store),
		newWorkerDirectoryAdapter(store),
		newTaskAnnotatorAdapter(store),
		nil,
		idGen,
		time.Now,
		nil,
	)
	if err := reloadSchedules(ctx, store, restarted); err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	tasks := restarted.ScheduledTasks("worker-1", application.ScheduleQuery{})
	if len(tasks) != 1 || tasks[0].ID != entry.ID {
		t.Fatalf("expected restored entry %s, got %+v", entry.ID, tasks)
	}
	if tasks[0].Status != scheduling.StatusScheduled {
		t.Fatalf("unexpected restored status: %s", tasks[0].Status)
	}
}

func TestWorkerDirectoryAdapterBuildsProfile(t *testing.T) {
	t.Parallel()

	store := testfixtures.NewSQLiteHarness(t).Store
	ctx := context.Background()

	worker := testfixtures.NewWorkerFixture(
		testfixtures.WithWorkerHours(9*60, 17*60),
		testfixtures.WithWorkerBuildings("bldg-1", "bldg-2"),
	).Persistence()
	if err := store.UpsertWorker(ctx, worker); err != nil {
		t.Fatalf("seed worker: %v", err)
	}

	profile, err := newWorkerDirectoryAdapter(store).WorkerProfile(ctx, "worker-1")
	if err != nil {
		t.Fatalf("profile lookup failed: %v", err)
	}

	if profile.PreferredWorkingHours.StartMinute != 9*60 || profile.PreferredWorkingHours.EndMinute != 17*60 {
		t.Fatalf("unexpected working hours: %+v", profile.PreferredWorkingHours)
	}
	if len(profile.AvailabilityWindows) != 5 || profile.AvailabilityWindows[0].Weekday != time.Monday {
		t.Fatalf("unexpected windows: %+v", profile.AvailabilityWindows)
	}
	if len(profile.BuildingAssignments) != 2 {
		t.Fatalf("unexpected buildings: %v", profile.BuildingAssignments)
	}
}

func TestEntryConversionRoundTrip(t *testing.T) {
	t.Parallel()

	original := scheduling.ScheduleEntry{
		ID:                         "sched-1",
		TaskID:                     "task-1",
		ScheduledAt:                time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
		AssignedWorkerID:           "worker-1",
		BuildingID:                 "bldg-1",
		CreatedBy:                  "dispatcher-1",
		Priority:                   scheduling.PriorityCritical,
		EstimatedDuration:          90 * time.Minute,
		Status:                     scheduling.StatusRescheduled,
		RequiresWorkerConfirmation: true,
		SmartSchedulingEnabled:     true,
		CreatedAt:                  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		UpdatedAt:                  time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC),
	}

	restored := toSchedulingEntry(toPersistenceEntry(original))
	if restored != original {
		t.Fatalf("conversion mismatch:\n  original %+v\n  restored %+v", original, restored)
	}
}
