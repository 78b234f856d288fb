package sizing

import "time"

const (
	// Trailing window during which a stage-2 trigger keeps stage-3 and
	// continuation bonuses reachable, inclusive on both ends.
	triggerWindowDays = 10

	// Entries older than this rolling window are evicted. The legacy
	// behavior evicted everything before the first of the current
	// calendar month; a fixed rolling window keeps eviction consistent
	// with the trigger window above.
	retentionDays = 30
)

// stateEntry records a stage-2 trigger observed on a given date.
// Active is cleared (without deleting the entry) when the market is
// judged recovered.
type stateEntry struct {
	Date   time.Time
	Active bool
}

// State is the windowed memory of the bottom_3stage strategy. It is
// owned by exactly one Calculator and must not be shared across runs;
// Reset empties it at run start.
type State struct {
	entries map[time.Time]*stateEntry
}

// NewState returns an empty sizing state.
func NewState() *State {
	return &State{entries: make(map[time.Time]*stateEntry)}
}

// Reset clears all entries for a fresh run.
func (s *State) Reset() {
	s.entries = make(map[time.Time]*stateEntry)
}

// recordTrigger marks a stage-2 trigger on the given date.
func (s *State) recordTrigger(date time.Time) {
	s.entries[date] = &stateEntry{Date: date, Active: true}
}

// hasRecentTrigger reports whether an active stage-2 trigger exists in
// the trailing window [date-triggerWindowDays, date].
func (s *State) hasRecentTrigger(date time.Time) bool {
	for _, entry := range s.entries {
		if !entry.Active {
			continue
		}
		days := int(date.Sub(entry.Date).Hours() / 24)
		if days >= 0 && days <= triggerWindowDays {
			return true
		}
	}
	return false
}

// deactivateTriggers clears the active flag on all recorded triggers;
// called when the breadth 8MA exceeds the reset threshold.
func (s *State) deactivateTriggers() {
	for _, entry := range s.entries {
		entry.Active = false
	}
}

// evictStale drops entries older than the retention window relative to
// the current processing date, bounding memory on long runs.
func (s *State) evictStale(current time.Time) {
	cutoff := current.AddDate(0, 0, -retentionDays)
	for date := range s.entries {
		if date.Before(cutoff) {
			delete(s.entries, date)
		}
	}
}

// Len returns the number of recorded entries.
func (s *State) Len() int {
	return len(s.entries)
}

// ActiveTriggers returns the number of entries still marked active.
func (s *State) ActiveTriggers() int {
	count := 0
	for _, entry := range s.entries {
		if entry.Active {
			count++
		}
	}
	return count
}
