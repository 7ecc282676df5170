package event

import (
	"errors"
	"fmt"
	"time"

	"github.com/harborlight/crm-calendar/internal/util"
)

var ErrIncorrectEventTime = errors.New("incorrect event time")

// SourceKind identifies which adapter produced an event. It is fixed at
// creation; updates replace the whole record.
type SourceKind string

const (
	SourceAppointment     SourceKind = "appointment"
	SourceCoachingSession SourceKind = "coaching-session"
	SourceWorkshop        SourceKind = "workshop"
	SourceExternalMirror  SourceKind = "external-mirror"
)

type LinkedKind string

const (
	LinkedContact        LinkedKind = "contact"
	LinkedRecoverySeeker LinkedKind = "recovery-seeker"
)

// ExternalRef carries the provider-assigned identity of a mirrored event.
// CalendarID is empty for purely local events.
type ExternalRef struct {
	EventID    string `json:"eventId"`
	CalendarID string `json:"calendarId,omitempty"`
}

type LinkedEntity struct {
	Kind LinkedKind `json:"kind"`
	ID   string     `json:"id"`
}

// Event is the unified shape every source adapter projects into and every
// view consumes.
type Event struct {
	ID          string        `json:"id"`
	OwnerID     string        `json:"ownerId"`
	Title       string        `json:"title"`
	Start       time.Time     `json:"start"`
	End         time.Time     `json:"end"`
	AllDay      bool          `json:"allDay"`
	Location    string        `json:"location,omitempty"`
	Description string        `json:"description,omitempty"`
	Source      SourceKind    `json:"source"`
	External    *ExternalRef  `json:"external,omitempty"`
	Linked      *LinkedEntity `json:"linked,omitempty"`
}

func (e Event) Validate() error {
	if e.OwnerID == "" {
		return fmt.Errorf("event %q has no owner: %w", e.ID, ErrIncorrectEventTime)
	}
	if e.End.Before(e.Start) {
		return fmt.Errorf("event %q ends before it starts: %w", e.ID, ErrIncorrectEventTime)
	}
	return nil
}

// Normalize drops the time-of-day from all-day events so that equal calendar
// dates compare equal regardless of how the source stored them.
func (e *Event) Normalize() {
	if e.AllDay {
		e.Start = util.TruncateToDay(e.Start)
		e.End = util.TruncateToDay(e.End)
	}
}

// CalendarID returns the provider calendar tag, or "" for local events.
func (e Event) CalendarID() string {
	if e.External == nil {
		return ""
	}
	return e.External.CalendarID
}

// OnDay reports month-view membership of an event on a calendar day.
// All-day events use inclusive date-range containment; timed events belong
// only to the day they start on.
func OnDay(e Event, day time.Time) bool {
	d := util.TruncateToDay(day)
	if e.AllDay {
		start := util.TruncateToDay(e.Start)
		end := util.TruncateToDay(e.End)
		return !d.Before(start) && !d.After(end)
	}
	return util.SameDay(e.Start, d)
}
