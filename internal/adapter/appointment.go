package adapter

import (
	"github.com/harborlight/crm-calendar/internal/event"
	"github.com/harborlight/crm-calendar/internal/record"
)

// Appointments maps native appointment rows one-to-one into unified events,
// carrying provider linkage through when the row has it. Rows that fail
// validation are dropped, never raised.
func Appointments(appointments []record.Appointment) []event.Event {
	events := make([]event.Event, 0, len(appointments))
	for _, a := range appointments {
		e := event.Event{
			ID:          a.ID,
			OwnerID:     a.OwnerID,
			Title:       a.Title,
			Start:       a.StartTime,
			End:         a.EndTime,
			AllDay:      a.AllDay,
			Location:    a.Location,
			Description: a.Description,
			Source:      event.SourceAppointment,
		}
		if a.Mirrored {
			e.Source = event.SourceExternalMirror
		}
		if a.ExternalEventID != "" {
			e.External = &event.ExternalRef{
				EventID:    a.ExternalEventID,
				CalendarID: a.ExternalCalendarID,
			}
		}
		if a.LinkedKind != "" && a.LinkedID != "" {
			e.Linked = &event.LinkedEntity{Kind: event.LinkedKind(a.LinkedKind), ID: a.LinkedID}
		}
		if e.Validate() != nil {
			continue
		}
		e.Normalize()
		events = append(events, e)
	}
	return events
}
