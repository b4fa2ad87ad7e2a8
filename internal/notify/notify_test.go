package notify

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestServiceRecordsHistory(t *testing.T) {
	t.Parallel()

	svc := NewService(nil)
	at := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	err := svc.Notify(context.Background(), "worker-1", EventCreated, Payload{
		ScheduleID:  "sched-1",
		TaskID:      "task-1",
		ScheduledAt: at,
	})
	if err != nil {
		t.Fatalf("notify failed: %v", err)
	}

	history := svc.History()
	if len(history) != 1 {
		t.Fatalf("expected one notification, got %d", len(history))
	}
	if history[0].WorkerID != "worker-1" || history[0].Event != EventCreated {
		t.Fatalf("unexpected notification: %+v", history[0])
	}
}

func TestServiceBoundsHistory(t *testing.T) {
	t.Parallel()

	svc := NewService(nil)
	for i := 0; i < historyLimit+25; i++ {
		_ = svc.Notify(context.Background(), fmt.Sprintf("worker-%d", i), EventCancelled, Payload{})
	}

	history := svc.History()
	if len(history) != historyLimit {
		t.Fatalf("expected history capped at %d, got %d", historyLimit, len(history))
	}
	if history[0].WorkerID != "worker-25" {
		t.Fatalf("expected oldest retained entry worker-25, got %s", history[0].WorkerID)
	}
}
