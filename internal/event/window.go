package event

import (
	"time"

	"github.com/harborlight/crm-calendar/internal/util"
)

// Window is an inclusive day range. From and To are midnight instants of the
// first and last day.
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func DayWindow(day time.Time) Window {
	d := util.TruncateToDay(day)
	return Window{From: d, To: d}
}

// WeekWindow returns the Monday-first week containing day.
func WeekWindow(day time.Time) Window {
	d := util.TruncateToDay(day)
	offset := (int(d.Weekday()) + 6) % 7
	from := d.AddDate(0, 0, -offset)
	return Window{From: from, To: from.AddDate(0, 0, 6)}
}

func MonthWindow(day time.Time) Window {
	from := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
	return Window{From: from, To: from.AddDate(0, 1, -1)}
}

func (w Window) Days() int {
	return util.DaysBetween(w.From, w.To) + 1
}

// DayIndex returns the zero-based index of a day within the window, negative
// or >= Days() when outside.
func (w Window) DayIndex(day time.Time) int {
	return util.DaysBetween(w.From, day)
}

// Day returns the midnight instant of the i-th day of the window.
func (w Window) Day(i int) time.Time {
	return w.From.AddDate(0, 0, i)
}

// Contains reports whether an event is visible anywhere in the window.
// All-day and multi-day events intersect by date range; single-day timed
// events belong to the day they start on, matching OnDay.
func (w Window) Contains(e Event) bool {
	start := util.TruncateToDay(e.Start)
	end := util.TruncateToDay(e.End)
	if e.AllDay || end.After(start) {
		return !end.Before(w.From) && !start.After(w.To)
	}
	return !start.Before(w.From) && !start.After(w.To)
}
