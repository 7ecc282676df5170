// Package layout turns unified events into presentation coordinates: banner
// tracks for spanning events and minute offsets for timed ones.
package layout

import (
	"sort"

	"github.com/harborlight/crm-calendar/internal/event"
	"github.com/harborlight/crm-calendar/internal/util"
)

// Placement assigns a banner event to a horizontal track within a window.
// StartDay and EndDay are day indexes clipped to the window.
type Placement struct {
	Event    event.Event `json:"event"`
	Track    int         `json:"track"`
	StartDay int         `json:"startDay"`
	EndDay   int         `json:"endDay"`
}

// AllDayTracks places the all-day and multi-day events intersecting the
// window into the lowest-indexed tracks such that no two events in a track
// overlap in day-span. Greedy first-fit over events sorted by descending
// span; not guaranteed minimal for adversarial inputs, but deterministic:
// the same event set yields the same placements regardless of input order.
func AllDayTracks(events []event.Event, w event.Window) []Placement {
	lastDay := w.Days() - 1

	spans := make([]Placement, 0, len(events))
	seen := make(map[string]struct{}, len(events))
	for _, e := range events {
		if _, ok := seen[e.ID]; ok {
			continue
		}
		seen[e.ID] = struct{}{}

		start := util.TruncateToDay(e.Start)
		end := util.TruncateToDay(e.End)
		if !e.AllDay && end.Equal(start) {
			// Single-day timed events render in the time grid, not the
			// banner row.
			continue
		}
		startDay := w.DayIndex(start)
		endDay := w.DayIndex(end)
		if endDay < 0 || startDay > lastDay {
			continue
		}
		if startDay < 0 {
			startDay = 0
		}
		if endDay > lastDay {
			endDay = lastDay
		}
		spans = append(spans, Placement{Event: e, StartDay: startDay, EndDay: endDay})
	}

	sort.Slice(spans, func(i, j int) bool {
		si := spans[i].EndDay - spans[i].StartDay
		sj := spans[j].EndDay - spans[j].StartDay
		if si != sj {
			return si > sj
		}
		if spans[i].StartDay != spans[j].StartDay {
			return spans[i].StartDay < spans[j].StartDay
		}
		return spans[i].Event.ID < spans[j].Event.ID
	})

	var tracks [][]Placement
	for i := range spans {
		placed := false
		for t := range tracks {
			if fits(tracks[t], spans[i]) {
				spans[i].Track = t
				tracks[t] = append(tracks[t], spans[i])
				placed = true
				break
			}
		}
		if !placed {
			spans[i].Track = len(tracks)
			tracks = append(tracks, []Placement{spans[i]})
		}
	}
	return spans
}

func fits(track []Placement, p Placement) bool {
	for _, placed := range track {
		if placed.EndDay >= p.StartDay && placed.StartDay <= p.EndDay {
			return false
		}
	}
	return true
}
