package scheduling

import (
	"fmt"
	"sort"
	"time"
)

// Slot is a recommended placement for a task on a worker's calendar.
type Slot struct {
	Start         time.Time
	End           time.Time
	Confidence    float64
	Reasoning     string
	ConflictLevel ConflictLevel
	BuildingID    string
}

// Interval returns the half-open time range the slot covers.
func (s Slot) Interval() Interval {
	return Interval{Start: s.Start, End: s.End}
}

// relocationOffsets is the bounded search space used to repair a conflicting
// placement. The order is load-bearing: two hours earlier is tried before one
// hour earlier, then one and two hours later.
var relocationOffsets = []time.Duration{-2 * time.Hour, -time.Hour, time.Hour, 2 * time.Hour}

const (
	maxRecommendedSlots   = 3
	recommendedSlotLength = time.Hour
	relocationConfidence  = 0.85
)

// Engine produces ranked slot recommendations and searches for conflict-free
// alternatives near a preferred time. It is a bounded local-search heuristic:
// the relocation search terminates after a fixed number of candidates and the
// returned slot is only guaranteed to be locally conflict-free.
type Engine struct {
	now func() time.Time
}

// NewEngine constructs an Engine. When now is nil, time.Now is used.
func NewEngine(now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now}
}

// GenerateRecommendedSlots proposes up to three one-hour slots drawn from the
// gaps in the worker's day, constrained to the supplied working hours.
//
// Slots are ordered by descending confidence; earlier openings in the day
// score higher. Results are deterministic for a fixed roster and clock.
func (e *Engine) GenerateRecommendedSlots(workerID string, currentSchedule []ScheduleEntry, hours WorkingHours) []Slot {
	if !hours.Valid() {
		hours = DefaultWorkingHours
	}

	day := e.now()
	window := hours.Materialize(day)

	busy := make([]Interval, 0, len(currentSchedule))
	buildingByStart := make(map[time.Time]string, len(currentSchedule))
	for _, entry := range currentSchedule {
		if entry.AssignedWorkerID != workerID || !entry.Status.Active() {
			continue
		}
		occupied := entry.Interval()
		if !occupied.Overlaps(window) {
			continue
		}
		busy = append(busy, occupied)
		buildingByStart[occupied.Start] = entry.BuildingID
	}
	sort.Slice(busy, func(i, j int) bool { return busy[i].Start.Before(busy[j].Start) })

	slots := make([]Slot, 0, maxRecommendedSlots)
	cursor := window.Start
	confidence := 0.9

	appendGap := func(gap Interval, neighborBuilding string) {
		for gap.Duration() >= recommendedSlotLength && len(slots) < maxRecommendedSlots {
			end := gap.Start.Add(recommendedSlotLength)
			slots = append(slots, Slot{
				Start:      gap.Start,
				End:        end,
				Confidence: confidence,
				Reasoning: fmt.Sprintf("open window %s-%s inside preferred working hours",
					gap.Start.Format("15:04"), end.Format("15:04")),
				ConflictLevel: ConflictLevelNone,
				BuildingID:    neighborBuilding,
			})
			confidence -= 0.1
			gap.Start = end
		}
	}

	for _, occupied := range busy {
		if cursor.Before(occupied.Start) {
			appendGap(Interval{Start: cursor, End: occupied.Start}, buildingByStart[occupied.Start])
		}
		if occupied.End.After(cursor) {
			cursor = occupied.End
		}
		if len(slots) >= maxRecommendedSlots {
			break
		}
	}
	if cursor.Before(window.End) {
		appendGap(Interval{Start: cursor, End: window.End}, "")
	}

	return slots
}

// FindBestTimeSlot searches the fixed relocation offsets around the preferred
// time and returns the first candidate that does not overlap any of the
// worker's active entries.
//
// The boolean result is false when every offset conflicts; that is an
// unresolved conflict for the caller to surface, not an error.
func (e *Engine) FindBestTimeSlot(workerID string, preferred time.Time, duration time.Duration, roster []ScheduleEntry) (Slot, bool) {
	if duration <= 0 {
		return Slot{}, false
	}

	for _, offset := range relocationOffsets {
		start := preferred.Add(offset)
		candidate := Interval{Start: start, End: start.Add(duration)}
		if len(DetectConflicts(workerID, candidate, roster, "")) > 0 {
			continue
		}
		return Slot{
			Start:         candidate.Start,
			End:           candidate.End,
			Confidence:    relocationConfidence,
			Reasoning:     describeOffset(offset),
			ConflictLevel: ConflictLevelNone,
		}, true
	}
	return Slot{}, false
}

func describeOffset(offset time.Duration) string {
	if offset < 0 {
		return fmt.Sprintf("shifted %s earlier to clear an existing assignment", -offset)
	}
	return fmt.Sprintf("shifted %s later to clear an existing assignment", offset)
}
