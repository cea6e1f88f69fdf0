package schedule

import (
	"sort"
	"strconv"
	"time"
)

// Event is one calendar entry extracted from a schedule day cell.
type Event struct {
	// Name is the shift label (work day) or day label (free day).
	Name string

	// Begin is the start of the shift, or midnight of the date for all-day events.
	Begin time.Time

	// End is the end of the shift. Zero for all-day events.
	End time.Time

	// AllDay marks a free day without a time-of-day component.
	AllDay bool
}

// Key identifies an event by its full value.
// Instants are compared in UTC so that equal times in different
// *time.Location values collapse to one entry.
func (e Event) Key() string {
	end := ""
	if !e.End.IsZero() {
		end = e.End.UTC().Format(time.RFC3339)
	}
	return e.Name + "|" + e.Begin.UTC().Format(time.RFC3339) + "|" + end + "|" + strconv.FormatBool(e.AllDay)
}

// EventSet is a value-keyed set of events.
// The zero value is not usable; use NewEventSet.
type EventSet struct {
	items map[string]Event
}

// NewEventSet returns an empty set, optionally seeded with events.
func NewEventSet(events ...Event) *EventSet {
	s := &EventSet{items: make(map[string]Event, len(events))}
	for _, e := range events {
		s.Add(e)
	}
	return s
}

// Add inserts e and reports whether it was new.
func (s *EventSet) Add(e Event) bool {
	k := e.Key()
	if _, ok := s.items[k]; ok {
		return false
	}
	s.items[k] = e
	return true
}

// Contains reports whether an event with the same value is in the set.
func (s *EventSet) Contains(e Event) bool {
	_, ok := s.items[e.Key()]
	return ok
}

// Len returns the number of distinct events.
func (s *EventSet) Len() int {
	return len(s.items)
}

// Events returns the events ordered by begin time, then name.
func (s *EventSet) Events() []Event {
	out := make([]Event, 0, len(s.items))
	for _, e := range s.items {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Begin.Equal(out[j].Begin) {
			return out[i].Begin.Before(out[j].Begin)
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Key() < out[j].Key()
	})
	return out
}

// Filter returns a new set holding the events for which keep returns true.
func (s *EventSet) Filter(keep func(Event) bool) *EventSet {
	out := NewEventSet()
	for k, e := range s.items {
		if keep(e) {
			out.items[k] = e
		}
	}
	return out
}
