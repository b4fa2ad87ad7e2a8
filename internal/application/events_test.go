package application

import (
	"sync"
	"testing"
)

func TestEmitterDeliversToAllSubscribers(t *testing.T) {
	t.Parallel()

	e := newEmitter()
	var first, second []Event
	e.subscribe(func(ev Event) { first = append(first, ev) })
	e.subscribe(func(ev Event) { second = append(second, ev) })

	e.emit(Event{Type: EventScheduleCreated})
	e.emit(Event{Type: EventScheduleCancelled})

	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected both subscribers to see both events, got %d and %d", len(first), len(second))
	}
}

func TestEmitterCancelStopsDelivery(t *testing.T) {
	t.Parallel()

	e := newEmitter()
	var seen []Event
	cancel := e.subscribe(func(ev Event) { seen = append(seen, ev) })

	e.emit(Event{Type: EventScheduleCreated})
	cancel()
	cancel()
	e.emit(Event{Type: EventScheduleCancelled})

	if len(seen) != 1 || seen[0].Type != EventScheduleCreated {
		t.Fatalf("expected delivery to stop after cancel, saw %d events", len(seen))
	}
}

func TestEmitterNilSubscriberIgnored(t *testing.T) {
	t.Parallel()

	e := newEmitter()
	cancel := e.subscribe(nil)
	cancel()
	e.emit(Event{Type: EventScheduleCreated})
}

func TestEmitterConcurrentSubscribeAndEmit(t *testing.T) {
	t.Parallel()

	e := newEmitter()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			cancel := e.subscribe(func(Event) {})
			cancel()
		}()
		go func() {
			defer wg.Done()
			e.emit(Event{Type: EventScheduleCreated})
		}()
	}
	wg.Wait()
}
