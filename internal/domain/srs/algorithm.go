package srs

import (
	"math"
	"time"

	"github.com/arch2702/smart-study-scheduler/internal/domain"
)

// intervalDays computes the review interval in (possibly fractional) days.
//
// The interval starts at the difficulty's base and grows geometrically with
// every recorded review:
//
//	interval = min(base * growth^reviewCount, max)
//
// The caller has already validated difficulty and reviewCount.
func intervalDays(difficulty domain.Difficulty, reviewCount int, params *Params) float64 {
	base := params.BaseIntervals[difficulty]
	interval := base * math.Pow(params.GrowthFactor, float64(reviewCount))
	if math.IsInf(interval, 1) || interval > params.MaxIntervalDays {
		interval = params.MaxIntervalDays
	}
	return interval
}

// addInterval adds a fractional number of days to now and truncates the
// result to the start of its calendar day in now's location.
//
// Whole days are added as calendar days so that a daylight saving change
// between now and the target cannot move the result onto a different date.
// The fractional remainder is added as elapsed time, which means a review
// scheduled late in the day can roll onto the following date.
func addInterval(now time.Time, days float64) time.Time {
	whole, frac := math.Modf(days)
	t := now.AddDate(0, 0, int(whole))
	t = t.Add(time.Duration(frac * float64(24*time.Hour)))
	return StartOfDay(t)
}

// StartOfDay returns midnight at the beginning of t's calendar day in t's
// own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDate reports whether a and b fall on the same calendar date in loc.
func SameDate(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// DateOnOrBefore reports whether a's calendar date in loc is the same as or
// earlier than b's. Time of day is ignored.
func DateOnOrBefore(a, b time.Time, loc *time.Location) bool {
	return !StartOfDay(a.In(loc)).After(StartOfDay(b.In(loc)))
}
