package application

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/example/fieldops-scheduler/internal/scheduling"
)

const (
	// contextTTL bounds how long a cached worker context may serve reads
	// with no intervening mutation.
	contextTTL = 5 * time.Minute
	// contextCacheSize caps the number of workers with a live cached view.
	contextCacheSize = 256
)

// contextCache stores derived worker schedule contexts keyed by worker id.
// Entries expire after the TTL; mutations invalidate explicitly so a stale
// read is never possible immediately after a write to that worker.
type contextCache struct {
	lru *expirable.LRU[string, WorkerScheduleContext]
}

func newContextCache(ttl time.Duration, size int) *contextCache {
	if ttl <= 0 {
		ttl = contextTTL
	}
	if size <= 0 {
		size = contextCacheSize
	}
	return &contextCache{lru: expirable.NewLRU[string, WorkerScheduleContext](size, nil, ttl)}
}

// Get returns a deep copy of the cached context so callers cannot mutate the
// cached slices in place.
func (c *contextCache) Get(workerID string) (WorkerScheduleContext, bool) {
	cached, ok := c.lru.Get(workerID)
	if !ok {
		return WorkerScheduleContext{}, false
	}
	return cloneContext(cached), true
}

func (c *contextCache) Store(context WorkerScheduleContext) {
	c.lru.Add(context.WorkerID, cloneContext(context))
}

func (c *contextCache) Invalidate(workerID string) {
	c.lru.Remove(workerID)
}

func cloneContext(in WorkerScheduleContext) WorkerScheduleContext {
	out := in
	out.CurrentSchedule = cloneEntries(in.CurrentSchedule)
	out.ConflictingTasks = cloneEntries(in.ConflictingTasks)
	out.AvailabilityWindows = append([]scheduling.AvailabilityWindow(nil), in.AvailabilityWindows...)
	out.BuildingAssignments = append([]string(nil), in.BuildingAssignments...)
	out.RecommendedSlots = append([]scheduling.Slot(nil), in.RecommendedSlots...)
	return out
}

func cloneEntries(in []scheduling.ScheduleEntry) []scheduling.ScheduleEntry {
	if in == nil {
		return nil
	}
	out := make([]scheduling.ScheduleEntry, len(in))
	copy(out, in)
	return out
}
