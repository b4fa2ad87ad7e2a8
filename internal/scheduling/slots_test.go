package scheduling

import (
	"strings"
	"testing"
	"time"
)

func fixedClock(t *testing.T, hour, minute int) func() time.Time {
	t.Helper()
	at := time.Date(2025, 6, 2, hour, minute, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func TestFindBestTimeSlotPrefersEarliestOffset(t *testing.T) {
	t.Parallel()

	roster := []ScheduleEntry{
		entryAt(t, "e1", "worker-1", 9, 60, StatusScheduled), // 09:00-10:00
	}

	engine := NewEngine(fixedClock(t, 8, 0))
	preferred := time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)

	slot, ok := engine.FindBestTimeSlot("worker-1", preferred, time.Hour, roster)
	if !ok {
		t.Fatal("expected a relocation slot")
	}

	wantStart := time.Date(2025, 6, 2, 7, 30, 0, 0, time.UTC)
	if !slot.Start.Equal(wantStart) {
		t.Fatalf("expected first clearing offset 07:30, got %s", slot.Start.Format("15:04"))
	}
	if !slot.End.Equal(wantStart.Add(time.Hour)) {
		t.Fatalf("expected one hour slot, got end %s", slot.End.Format("15:04"))
	}
	if slot.Confidence != 0.85 {
		t.Fatalf("expected fixed confidence 0.85, got %v", slot.Confidence)
	}
	if slot.ConflictLevel != ConflictLevelNone {
		t.Fatalf("expected conflict level none, got %s", slot.ConflictLevel)
	}
	if !strings.Contains(slot.Reasoning, "earlier") {
		t.Fatalf("expected reasoning to describe the earlier shift, got %q", slot.Reasoning)
	}
}

func TestFindBestTimeSlotSkipsOccupiedOffsets(t *testing.T) {
	t.Parallel()

	// 07:00-08:00 and 08:00-09:00 block the two earlier offsets of a 09:30
	// preferred time; 10:30 is the first later offset that clears.
	roster := []ScheduleEntry{
		entryAt(t, "e1", "worker-1", 7, 60, StatusScheduled),
		entryAt(t, "e2", "worker-1", 8, 60, StatusScheduled),
		entryAt(t, "e3", "worker-1", 9, 60, StatusScheduled),
	}

	engine := NewEngine(fixedClock(t, 8, 0))
	preferred := time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)

	slot, ok := engine.FindBestTimeSlot("worker-1", preferred, time.Hour, roster)
	if !ok {
		t.Fatal("expected a relocation slot")
	}
	wantStart := time.Date(2025, 6, 2, 10, 30, 0, 0, time.UTC)
	if !slot.Start.Equal(wantStart) {
		t.Fatalf("expected 10:30 slot, got %s", slot.Start.Format("15:04"))
	}
	if !strings.Contains(slot.Reasoning, "later") {
		t.Fatalf("expected reasoning to describe the later shift, got %q", slot.Reasoning)
	}
}

func TestFindBestTimeSlotExhaustsOffsets(t *testing.T) {
	t.Parallel()

	// Back-to-back entries covering 07:00-18:00 leave no offset clear for a
	// 09:00 preferred time.
	roster := make([]ScheduleEntry, 0, 11)
	for hour := 7; hour < 18; hour++ {
		roster = append(roster, entryAt(t, "e"+time.Date(2025, 6, 2, hour, 0, 0, 0, time.UTC).Format("15"), "worker-1", hour, 60, StatusScheduled))
	}

	engine := NewEngine(fixedClock(t, 8, 0))
	preferred := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	if _, ok := engine.FindBestTimeSlot("worker-1", preferred, time.Hour, roster); ok {
		t.Fatal("expected every offset to conflict")
	}
}

func TestFindBestTimeSlotRejectsNonPositiveDuration(t *testing.T) {
	t.Parallel()

	engine := NewEngine(fixedClock(t, 8, 0))
	if _, ok := engine.FindBestTimeSlot("worker-1", time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), 0, nil); ok {
		t.Fatal("expected no slot for zero duration")
	}
}

func TestGenerateRecommendedSlotsRanksGaps(t *testing.T) {
	t.Parallel()

	roster := []ScheduleEntry{
		entryAt(t, "e1", "worker-1", 9, 60, StatusScheduled),  // 09:00-10:00
		entryAt(t, "e2", "worker-1", 13, 60, StatusScheduled), // 13:00-14:00
	}

	engine := NewEngine(fixedClock(t, 6, 0))
	slots := engine.GenerateRecommendedSlots("worker-1", roster, DefaultWorkingHours)

	if len(slots) != 3 {
		t.Fatalf("expected three recommendations, got %d", len(slots))
	}

	wantStarts := []string{"08:00", "10:00", "11:00"}
	for i, want := range wantStarts {
		if got := slots[i].Start.Format("15:04"); got != want {
			t.Fatalf("slot %d: expected start %s, got %s", i, want, got)
		}
	}

	for i := 1; i < len(slots); i++ {
		if slots[i].Confidence >= slots[i-1].Confidence {
			t.Fatalf("expected descending confidence, got %v then %v", slots[i-1].Confidence, slots[i].Confidence)
		}
	}

	for _, slot := range slots {
		if slot.ConflictLevel != ConflictLevelNone {
			t.Fatalf("gap slots must carry conflict level none, got %s", slot.ConflictLevel)
		}
		if slot.Reasoning == "" {
			t.Fatal("expected human readable reasoning")
		}
		if slot.End.Sub(slot.Start) != time.Hour {
			t.Fatalf("expected one hour slot, got %s", slot.End.Sub(slot.Start))
		}
	}
}

func TestGenerateRecommendedSlotsIgnoresOtherWorkers(t *testing.T) {
	t.Parallel()

	roster := []ScheduleEntry{
		entryAt(t, "e1", "worker-2", 8, 600, StatusScheduled), // fills worker-2's day
	}

	engine := NewEngine(fixedClock(t, 6, 0))
	slots := engine.GenerateRecommendedSlots("worker-1", roster, DefaultWorkingHours)

	if len(slots) != 3 {
		t.Fatalf("expected a fully open day for worker-1, got %d slots", len(slots))
	}
	if got := slots[0].Start.Format("15:04"); got != "08:00" {
		t.Fatalf("expected first slot at start of working hours, got %s", got)
	}
}

func TestGenerateRecommendedSlotsFullDay(t *testing.T) {
	t.Parallel()

	roster := make([]ScheduleEntry, 0, 10)
	for hour := 8; hour < 18; hour++ {
		roster = append(roster, entryAt(t, "e"+time.Date(2025, 6, 2, hour, 0, 0, 0, time.UTC).Format("15"), "worker-1", hour, 60, StatusScheduled))
	}

	engine := NewEngine(fixedClock(t, 6, 0))
	if slots := engine.GenerateRecommendedSlots("worker-1", roster, DefaultWorkingHours); len(slots) != 0 {
		t.Fatalf("expected no recommendations for a packed day, got %d", len(slots))
	}
}
