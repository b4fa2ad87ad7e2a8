package scheduling

import "time"

// AvailabilityWindow describes a recurring span of a weekday during which a
// worker accepts assignments. Minutes count from local midnight.
type AvailabilityWindow struct {
	Weekday     time.Weekday
	StartMinute int
	EndMinute   int
}

// Valid reports whether the window covers a positive span inside one day.
func (w AvailabilityWindow) Valid() bool {
	return w.StartMinute >= 0 && w.EndMinute <= 24*60 && w.StartMinute < w.EndMinute
}

// Materialize projects the recurring window onto the calendar day of the
// provided reference time, in the reference's location.
func (w AvailabilityWindow) Materialize(day time.Time) Interval {
	y, m, d := day.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	return Interval{
		Start: midnight.Add(time.Duration(w.StartMinute) * time.Minute),
		End:   midnight.Add(time.Duration(w.EndMinute) * time.Minute),
	}
}

// WorkingHours bounds the portion of a day considered for slot
// recommendations. Minutes count from local midnight.
type WorkingHours struct {
	StartMinute int
	EndMinute   int
}

// DefaultWorkingHours spans a standard 08:00-18:00 operational day.
var DefaultWorkingHours = WorkingHours{StartMinute: 8 * 60, EndMinute: 18 * 60}

// Valid reports whether the hours cover a positive span inside one day.
func (h WorkingHours) Valid() bool {
	return h.StartMinute >= 0 && h.EndMinute <= 24*60 && h.StartMinute < h.EndMinute
}

// Materialize projects the working hours onto the calendar day of the
// provided reference time.
func (h WorkingHours) Materialize(day time.Time) Interval {
	y, m, d := day.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	return Interval{
		Start: midnight.Add(time.Duration(h.StartMinute) * time.Minute),
		End:   midnight.Add(time.Duration(h.EndMinute) * time.Minute),
	}
}

// Covers reports whether the candidate interval falls entirely inside one of
// the worker's recurring availability windows.
//
// Intervals spanning midnight never match because windows are bounded to a
// single weekday. An empty window list means availability is unknown rather
// than empty, so every interval is treated as covered.
func Covers(windows []AvailabilityWindow, candidate Interval) bool {
	if len(windows) == 0 {
		return true
	}
	if !candidate.Start.Before(candidate.End) {
		return false
	}

	for _, window := range windows {
		if !window.Valid() {
			continue
		}
		if window.Weekday != candidate.Start.Weekday() {
			continue
		}
		materialized := window.Materialize(candidate.Start)
		if !candidate.Start.Before(materialized.Start) && !candidate.End.After(materialized.End) {
			return true
		}
	}
	return false
}
