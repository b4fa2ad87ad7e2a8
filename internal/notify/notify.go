// Package notify delivers best-effort schedule notifications to workers.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Event identifies what happened to a schedule entry.
type Event string

const (
	EventCreated     Event = "created"
	EventRescheduled Event = "rescheduled"
	EventCancelled   Event = "cancelled"
	EventConfirmed   Event = "confirmed"
)

// Payload carries the schedule details attached to a notification. Old times
// and the reason are only populated for reschedules and cancellations.
type Payload struct {
	ScheduleID  string
	TaskID      string
	BuildingID  string
	ScheduledAt time.Time
	PreviousAt  time.Time
	Reason      string
	Priority    string
}

// Notifier delivers a notification to a worker. Implementations are
// best-effort; the scheduling core never rolls back on delivery failure.
type Notifier interface {
	Notify(ctx context.Context, workerID string, event Event, payload Payload) error
}

// Notification is one recorded delivery attempt.
type Notification struct {
	WorkerID string
	Event    Event
	Payload  Payload
}

const historyLimit = 300

// Service logs deliveries and retains a bounded history for inspection. It
// stands in for the external notification collaborator in local deployments.
type Service struct {
	log *slog.Logger

	mu      sync.Mutex
	history []Notification
}

// NewService constructs a Service. When log is nil, slog.Default is used.
func NewService(log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{log: log}
}

// Notify records the notification and logs it. It never fails.
func (s *Service) Notify(ctx context.Context, workerID string, event Event, payload Payload) error {
	s.log.InfoContext(ctx, "worker notification",
		"worker_id", workerID,
		"event", string(event),
		"schedule_id", payload.ScheduleID,
		"task_id", payload.TaskID,
		"scheduled_at", payload.ScheduledAt,
		"reason", payload.Reason,
	)
	s.appendHistory(Notification{WorkerID: workerID, Event: event, Payload: payload})
	return nil
}

// History returns a copy of the recorded notifications, oldest first.
func (s *Service) History() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Notification, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Service) appendHistory(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, n)
	if len(s.history) > historyLimit {
		s.history = s.history[len(s.history)-historyLimit:]
	}
}
