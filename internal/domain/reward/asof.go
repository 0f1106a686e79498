package reward

import "time"

// AsOf is the instant a report is taken at. The zero value means "now".
// A date-only AsOf names a calendar day without a zone; it resolves to the
// start of that day in the learner's reporting timezone.
type AsOf struct {
	at   time.Time
	date bool
}

// At reports as of the instant t.
func At(t time.Time) AsOf {
	return AsOf{at: t}
}

// OnDate reports as of the start of the given calendar day.
func OnDate(year int, month time.Month, day int) AsOf {
	return AsOf{at: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), date: true}
}

// IsZero reports whether a is the "now" value.
func (a AsOf) IsZero() bool { return a.at.IsZero() }

// DateOnly reports whether a names a calendar day rather than an instant.
func (a AsOf) DateOnly() bool { return a.date }

// Resolve returns the instant a denotes for a learner reporting in loc.
func (a AsOf) Resolve(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	switch {
	case a.at.IsZero():
		return now
	case a.date:
		y, m, d := a.at.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	default:
		return a.at
	}
}

func (a AsOf) String() string {
	switch {
	case a.at.IsZero():
		return "now"
	case a.date:
		return a.at.Format(DateLayout)
	default:
		return a.at.Format(time.RFC3339)
	}
}
