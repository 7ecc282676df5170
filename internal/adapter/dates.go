package adapter

import "time"

// dateLayouts pairs each accepted raw-date layout with whether it carries a
// time-of-day component. CRM forms have stored dates in all of these shapes
// over the years.
var dateLayouts = []struct {
	layout   string
	hasClock bool
}{
	{time.RFC3339, true},
	{"2006-01-02T15:04:05", true},
	{"2006-01-02 15:04:05", true},
	{"2006-01-02 15:04", true},
	{"2006-01-02", false},
}

// parseDate parses a raw record date. ok is false when the value is empty or
// matches no known layout; callers skip such records rather than erroring.
func parseDate(raw string) (t time.Time, hasClock bool, ok bool) {
	if raw == "" {
		return time.Time{}, false, false
	}
	for _, l := range dateLayouts {
		if parsed, err := time.ParseInLocation(l.layout, raw, time.Local); err == nil {
			return parsed, l.hasClock, true
		}
	}
	return time.Time{}, false, false
}
