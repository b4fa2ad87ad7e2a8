package scheduling

// DetectConflicts returns the subset of entries whose occupied interval
// overlaps the candidate interval for the given worker.
//
// Only entries assigned to workerID with an active status participate.
// excludeID, when non-empty, skips the entry's own prior occurrence so a
// reschedule does not conflict with itself. The result preserves the order
// of the input slice, which keeps the function deterministic.
func DetectConflicts(workerID string, candidate Interval, entries []ScheduleEntry, excludeID string) []ScheduleEntry {
	if workerID == "" || !candidate.Start.Before(candidate.End) {
		return nil
	}

	var conflicts []ScheduleEntry
	for _, entry := range entries {
		if entry.AssignedWorkerID != workerID {
			continue
		}
		if !entry.Status.Active() {
			continue
		}
		if excludeID != "" && entry.ID == excludeID {
			continue
		}
		if candidate.Overlaps(entry.Interval()) {
			conflicts = append(conflicts, entry)
		}
	}
	return conflicts
}

// ScanConflicts performs a pairwise scan over a single worker's roster and
// returns every entry that overlaps at least one other active entry.
//
// The scan is O(n^2) over the active entries; rosters are small enough that
// no interval index is warranted. Order of the input is preserved and each
// entry appears at most once.
func ScanConflicts(entries []ScheduleEntry) []ScheduleEntry {
	active := make([]ScheduleEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.Status.Active() {
			active = append(active, entry)
		}
	}
	if len(active) < 2 {
		return nil
	}

	conflicted := make(map[string]struct{}, len(active))
	for i := 0; i < len(active); i++ {
		for j := i + 1; j < len(active); j++ {
			if active[i].Interval().Overlaps(active[j].Interval()) {
				conflicted[active[i].ID] = struct{}{}
				conflicted[active[j].ID] = struct{}{}
			}
		}
	}
	if len(conflicted) == 0 {
		return nil
	}

	result := make([]ScheduleEntry, 0, len(conflicted))
	for _, entry := range active {
		if _, ok := conflicted[entry.ID]; ok {
			result = append(result, entry)
		}
	}
	return result
}
