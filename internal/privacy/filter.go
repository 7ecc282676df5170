// Package privacy enforces the diary-visibility boundary: a viewer may see
// another owner's externally-mirrored events only through that owner's
// designated default calendar. Ambiguous calendar linkage always excludes.
package privacy

import (
	"github.com/harborlight/crm-calendar/internal/event"
)

type Mode string

const (
	// ModeOwn is the viewer's own diary, ModeOther a single selected
	// colleague, ModeAll the aggregate across every owner.
	ModeOwn   Mode = "own"
	ModeOther Mode = "other"
	ModeAll   Mode = "all"
)

// Scope carries everything the filter needs about the current viewer.
type Scope struct {
	Viewer string
	Mode   Mode
	// Owner is the selected diary owner in ModeOther.
	Owner string
	// DefaultCalendars maps each owner to their default calendar id. An
	// owner absent from the map has no shareable calendar, so only their
	// purely local events pass.
	DefaultCalendars map[string]string
	// EnabledCalendars is the viewer's own toggled-on calendar set for
	// ModeOwn. The caller resolves the all-visible default to a full set;
	// here a nil map means nothing beyond local events is enabled.
	EnabledCalendars map[string]struct{}
	// EnabledOwners restricts ModeAll to the toggled-on owners. Nil means
	// no owner restriction.
	EnabledOwners map[string]struct{}
}

// Filter returns the events the scope's viewer is allowed to see. Output
// order follows input order.
func Filter(events []event.Event, s Scope) []event.Event {
	visible := make([]event.Event, 0, len(events))
	for _, e := range events {
		if allowed(e, s) {
			visible = append(visible, e)
		}
	}
	return visible
}

// Allowed reports whether a single event may be shown under the scope. Used
// directly for pushed live-update records.
func Allowed(e event.Event, s Scope) bool {
	return allowed(e, s)
}

func allowed(e event.Event, s Scope) bool {
	calendarID := e.CalendarID()
	switch s.Mode {
	case ModeOwn:
		if e.OwnerID != s.Viewer {
			return false
		}
		if calendarID == "" {
			return true
		}
		_, ok := s.EnabledCalendars[calendarID]
		return ok
	case ModeOther:
		if e.OwnerID != s.Owner {
			return false
		}
		if calendarID == "" {
			return true
		}
		def, ok := s.DefaultCalendars[s.Owner]
		return ok && calendarID == def
	case ModeAll:
		if s.EnabledOwners != nil {
			if _, ok := s.EnabledOwners[e.OwnerID]; !ok {
				return false
			}
		}
		if calendarID == "" {
			return true
		}
		def, ok := s.DefaultCalendars[e.OwnerID]
		return ok && calendarID == def
	default:
		// Unknown mode shows nothing.
		return false
	}
}
