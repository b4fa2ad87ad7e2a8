package testfixtures

import (
	"context"
	"testing"

	"github.com/example/fieldops-scheduler/internal/scheduling"
)

type capturingSaver struct {
	saved []scheduling.ScheduleEntry
}

func (c *capturingSaver) SaveSchedule(ctx context.Context, entry scheduling.ScheduleEntry) error {
	c.saved = append(c.saved, entry)
	return nil
}

func TestServiceFactoryNewCoordinator(t *testing.T) {
	factory := NewServiceFactory()
	saver := &capturingSaver{}

	coordinator := factory.NewCoordinator(CoordinatorDeps{Saver: saver})

	entry, err := coordinator.ScheduleTask(context.Background(), NewScheduleEntryFixture().Params())
	if err != nil {
		t.Fatalf("ScheduleTask returned error: %v", err)
	}

	if entry.ID != "sched-1" {
		t.Fatalf("expected generated ID sched-1, got %q", entry.ID)
	}
	if !entry.CreatedAt.Equal(factory.Clock.Current()) {
		t.Fatalf("expected timestamp %v, got %v", factory.Clock.Current(), entry.CreatedAt)
	}
	if len(saver.saved) != 1 || saver.saved[0].ID != entry.ID {
		t.Fatalf("saver received unexpected entries: %+v", saver.saved)
	}
}

func TestWorkerFixtureProfile(t *testing.T) {
	profile := NewWorkerFixture(WithWorkerHours(9*60, 17*60), WithWorkerBuildings("bldg-2")).Profile()

	if profile.PreferredWorkingHours.StartMinute != 9*60 {
		t.Fatalf("unexpected working hours: %+v", profile.PreferredWorkingHours)
	}
	if len(profile.BuildingAssignments) != 1 || profile.BuildingAssignments[0] != "bldg-2" {
		t.Fatalf("unexpected building assignments: %v", profile.BuildingAssignments)
	}
	if len(profile.AvailabilityWindows) != 5 {
		t.Fatalf("expected five weekday windows, got %d", len(profile.AvailabilityWindows))
	}
}
