package adapter

import (
	"github.com/harborlight/crm-calendar/internal/event"
	"github.com/harborlight/crm-calendar/internal/record"
)

// Workshops synthesizes one event per dated workshop record, with the same
// skip and all-day rules as coaching sessions.
func Workshops(workshops []record.Workshop) []event.Event {
	events := make([]event.Event, 0, len(workshops))
	for _, w := range workshops {
		start, startClock, ok := parseDate(w.Start)
		if !ok {
			continue
		}
		end, endClock := start, startClock
		if parsed, clock, ok := parseDate(w.End); ok && !parsed.Before(start) {
			end, endClock = parsed, clock
		}
		e := event.Event{
			ID:       "workshop-" + w.ID,
			OwnerID:  w.OwnerID,
			Title:    w.Title,
			Start:    start,
			End:      end,
			AllDay:   !startClock && !endClock,
			Location: w.Location,
			Source:   event.SourceWorkshop,
		}
		e.Normalize()
		events = append(events, e)
	}
	return events
}
