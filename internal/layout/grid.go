package layout

import (
	"time"

	"github.com/harborlight/crm-calendar/internal/event"
	"github.com/harborlight/crm-calendar/internal/util"
)

// MinDurationMinutes is the visual floor for timed events so short bookings
// stay clickable.
const MinDurationMinutes = 30

// Positioned maps a timed event onto a day column. TopMinutes is the offset
// from the window's start hour; events running past the bottom are capped at
// the window's last minute and flagged Clipped.
type Positioned struct {
	Event           event.Event `json:"event"`
	Day             time.Time   `json:"day"`
	TopMinutes      int         `json:"topMinutes"`
	DurationMinutes int         `json:"durationMinutes"`
	Clipped         bool        `json:"clipped"`
}

// MapToTimeGrid positions the timed events of a window between startHour and
// endHour. A timed event belongs to the day column its start falls on; the
// grid does not attempt collision-free placement for same-day events.
func MapToTimeGrid(events []event.Event, w event.Window, startHour, endHour int) []Positioned {
	windowMinutes := (endHour - startHour) * 60
	if windowMinutes <= 0 {
		return nil
	}

	positioned := make([]Positioned, 0, len(events))
	for i := 0; i < w.Days(); i++ {
		day := w.Day(i)
		for _, e := range events {
			if e.AllDay || !util.SameDay(e.Start, day) {
				continue
			}

			top := e.Start.Hour()*60 + e.Start.Minute() - startHour*60
			endMinute := e.End.Hour()*60 + e.End.Minute() - startHour*60
			clipped := false
			if !util.SameDay(e.End, day) {
				endMinute = windowMinutes
				clipped = true
			}
			if top >= windowMinutes || endMinute <= 0 {
				continue
			}
			if top < 0 {
				top = 0
			}

			duration := endMinute - top
			if duration < MinDurationMinutes {
				duration = MinDurationMinutes
			}
			// The visual floor yields to the window bottom; only an event
			// whose real end overflows counts as clipped.
			if top+duration > windowMinutes {
				duration = windowMinutes - top
				clipped = clipped || endMinute > windowMinutes
			}

			positioned = append(positioned, Positioned{
				Event:           e,
				Day:             day,
				TopMinutes:      top,
				DurationMinutes: duration,
				Clipped:         clipped,
			})
		}
	}
	return positioned
}
