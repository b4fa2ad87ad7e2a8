package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/fieldops-scheduler/internal/persistence"
	"github.com/example/fieldops-scheduler/internal/testfixtures"
)

func sampleEntry(t *testing.T, id string, at time.Time, opts ...testfixtures.EntryOption) persistence.ScheduleEntry {
	t.Helper()
	all := append([]testfixtures.EntryOption{
		testfixtures.WithEntryID(id),
		testfixtures.WithEntryTask("task-" + id),
		testfixtures.WithEntryStart(at),
		testfixtures.WithEntryTimestamps(at, at),
		testfixtures.WithEntryConfirmation(true),
		testfixtures.WithSmartScheduling(true),
	}, opts...)
	return testfixtures.NewScheduleEntryFixture(all...).Persistence()
}

func TestMigrateIsIdempotent(t *testing.T) {
	t.Parallel()

	harness := testfixtures.NewSQLiteHarness(t)
	require.NoError(t, harness.Store.Migrate(context.Background()))
}

func TestSaveAndGetSchedule(t *testing.T) {
	t.Parallel()

	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()
	at := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	entry := sampleEntry(t, "sched-1", at)
	require.NoError(t, harness.Schedules.SaveSchedule(ctx, entry))

	got, err := harness.Schedules.GetSchedule(ctx, "sched-1")
	require.NoError(t, err)
	assert.Equal(t, entry.TaskID, got.TaskID)
	assert.True(t, got.ScheduledAt.Equal(at))
	assert.Equal(t, "worker-1", got.AssignedWorkerID)
	assert.Equal(t, time.Hour, got.EstimatedDuration)
	assert.True(t, got.RequiresWorkerConfirmation)
	assert.True(t, got.SmartSchedulingEnabled)
}

func TestSaveScheduleUpserts(t *testing.T) {
	t.Parallel()

	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()
	at := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	entry := sampleEntry(t, "sched-1", at)
	require.NoError(t, harness.Schedules.SaveSchedule(ctx, entry))

	entry.ScheduledAt = at.Add(2 * time.Hour)
	entry.Status = "rescheduled"
	entry.UpdatedAt = at.Add(time.Minute)
	require.NoError(t, harness.Schedules.SaveSchedule(ctx, entry))

	got, err := harness.Schedules.GetSchedule(ctx, "sched-1")
	require.NoError(t, err)
	assert.Equal(t, "rescheduled", got.Status)
	assert.True(t, got.ScheduledAt.Equal(at.Add(2*time.Hour)))
}

func TestSaveScheduleRejectsEmptyID(t *testing.T) {
	t.Parallel()

	harness := testfixtures.NewSQLiteHarness(t)
	err := harness.Schedules.SaveSchedule(context.Background(), persistence.ScheduleEntry{})
	assert.ErrorIs(t, err, persistence.ErrConstraintViolation)
}

func TestGetScheduleNotFound(t *testing.T) {
	t.Parallel()

	harness := testfixtures.NewSQLiteHarness(t)
	_, err := harness.Schedules.GetSchedule(context.Background(), "missing")
	assert.ErrorIs(t, err, persistence.ErrNotFound)
}

func TestListSchedulesFilters(t *testing.T) {
	t.Parallel()

	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	first := sampleEntry(t, "sched-1", base)
	second := sampleEntry(t, "sched-2", base.Add(3*time.Hour), testfixtures.WithEntryWorker("worker-2"))
	third := sampleEntry(t, "sched-3", base.Add(26*time.Hour), testfixtures.WithEntryBuilding("bldg-2"))

	for _, entry := range []persistence.ScheduleEntry{first, second, third} {
		require.NoError(t, harness.Schedules.SaveSchedule(ctx, entry))
	}

	byWorker, err := harness.Schedules.ListSchedules(ctx, persistence.ScheduleFilter{WorkerID: "worker-1"})
	require.NoError(t, err)
	require.Len(t, byWorker, 2)
	assert.Equal(t, "sched-1", byWorker[0].ID)
	assert.Equal(t, "sched-3", byWorker[1].ID)

	byBuilding, err := harness.Schedules.ListSchedules(ctx, persistence.ScheduleFilter{BuildingID: "bldg-1"})
	require.NoError(t, err)
	require.Len(t, byBuilding, 2)

	to := base.Add(4 * time.Hour)
	inRange, err := harness.Schedules.ListSchedules(ctx, persistence.ScheduleFilter{From: &base, To: &to})
	require.NoError(t, err)
	require.Len(t, inRange, 2)
	assert.Equal(t, "sched-1", inRange[0].ID)
	assert.Equal(t, "sched-2", inRange[1].ID)
}

func TestWorkerRoundTrip(t *testing.T) {
	t.Parallel()

	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	worker := testfixtures.NewWorkerFixture(
		testfixtures.WithWorkerName("Dana Reyes"),
		testfixtures.WithWorkerHours(7*60, 15*60),
		testfixtures.WithWorkerWindows(
			persistence.AvailabilityWindow{Weekday: time.Monday, StartMinute: 7 * 60, EndMinute: 15 * 60},
			persistence.AvailabilityWindow{Weekday: time.Wednesday, StartMinute: 8 * 60, EndMinute: 16 * 60},
		),
		testfixtures.WithWorkerBuildings("bldg-1", "bldg-2"),
	).Persistence()
	require.NoError(t, harness.Workers.UpsertWorker(ctx, worker))

	got, err := harness.Workers.GetWorker(ctx, "worker-1")
	require.NoError(t, err)
	assert.Equal(t, "Dana Reyes", got.DisplayName)
	assert.Equal(t, 7*60, got.PreferredStartMinute)
	require.Len(t, got.AvailabilityWindows, 2)
	assert.Equal(t, time.Monday, got.AvailabilityWindows[0].Weekday)
	assert.Equal(t, []string{"bldg-1", "bldg-2"}, got.BuildingIDs)

	worker.BuildingIDs = []string{"bldg-3"}
	require.NoError(t, harness.Workers.UpsertWorker(ctx, worker))
	got, err = harness.Workers.GetWorker(ctx, "worker-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"bldg-3"}, got.BuildingIDs)

	_, err = harness.Workers.GetWorker(ctx, "missing")
	assert.ErrorIs(t, err, persistence.ErrNotFound)

	workers, err := harness.Workers.ListWorkers(ctx)
	require.NoError(t, err)
	require.Len(t, workers, 1)
}

func TestAnnotateTaskRejectsMissingSchedule(t *testing.T) {
	t.Parallel()

	harness := testfixtures.NewSQLiteHarness(t)
	err := harness.Tasks.AnnotateTask(context.Background(), persistence.TaskAnnotation{TaskID: "task-2"})
	assert.ErrorIs(t, err, persistence.ErrConstraintViolation)
}
