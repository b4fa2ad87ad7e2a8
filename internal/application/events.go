package application

import (
	"sync"
	"time"

	"github.com/example/fieldops-scheduler/internal/scheduling"
)

// EventType identifies a schedule mutation observers can react to.
type EventType string

const (
	EventScheduleCreated     EventType = "schedule.created"
	EventScheduleRescheduled EventType = "schedule.rescheduled"
	EventScheduleCancelled   EventType = "schedule.cancelled"
	EventScheduleConfirmed   EventType = "schedule.confirmed"
)

// Event describes one applied schedule mutation. PreviousAt and Reason are
// only populated for reschedules and cancellations.
type Event struct {
	Type       EventType
	Entry      scheduling.ScheduleEntry
	PreviousAt time.Time
	Reason     string
	At         time.Time
}

// emitter is a synchronous callback registry. Observers run on the mutating
// goroutine after the mutation has been applied, so a handler sees state at
// least as new as the event it receives.
type emitter struct {
	mu          sync.RWMutex
	nextID      int
	subscribers map[int]func(Event)
}

func newEmitter() *emitter {
	return &emitter{subscribers: make(map[int]func(Event))}
}

// subscribe registers fn and returns a cancel function that removes it.
func (e *emitter) subscribe(fn func(Event)) func() {
	if fn == nil {
		return func() {}
	}
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.subscribers[id] = fn
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.subscribers, id)
		e.mu.Unlock()
	}
}

func (e *emitter) emit(event Event) {
	e.mu.RLock()
	callbacks := make([]func(Event), 0, len(e.subscribers))
	for _, fn := range e.subscribers {
		callbacks = append(callbacks, fn)
	}
	e.mu.RUnlock()

	for _, fn := range callbacks {
		fn(event)
	}
}
