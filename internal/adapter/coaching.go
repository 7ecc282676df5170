package adapter

import (
	"github.com/harborlight/crm-calendar/internal/event"
	"github.com/harborlight/crm-calendar/internal/record"
)

// CoachingSessions synthesizes one event per dated session. These events are
// never persisted; they are reprojected on every read and disappear with
// their owning seeker record. Sessions with missing or unparsable dates are
// skipped. An event is all-day only when neither raw date value carries a
// time component.
func CoachingSessions(seekers []record.Seeker, sessions []record.CoachingSession) []event.Event {
	bySeeker := make(map[string]record.Seeker, len(seekers))
	for _, s := range seekers {
		bySeeker[s.ID] = s
	}

	events := make([]event.Event, 0, len(sessions))
	for _, session := range sessions {
		seeker, ok := bySeeker[session.SeekerID]
		if !ok {
			continue
		}
		start, startClock, ok := parseDate(session.Date)
		if !ok {
			continue
		}
		end, endClock := start, startClock
		if parsed, clock, ok := parseDate(session.EndDate); ok && !parsed.Before(start) {
			end, endClock = parsed, clock
		}
		e := event.Event{
			ID:          "coaching-" + session.ID,
			OwnerID:     seeker.CoachID,
			Title:       seeker.Name,
			Start:       start,
			End:         end,
			AllDay:      !startClock && !endClock,
			Description: session.Notes,
			Source:      event.SourceCoachingSession,
			Linked:      &event.LinkedEntity{Kind: event.LinkedRecoverySeeker, ID: seeker.ID},
		}
		e.Normalize()
		events = append(events, e)
	}
	return events
}
