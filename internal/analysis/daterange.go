package analysis

import (
	"fmt"
	"time"
)

// DateRange is an ordered pair of instants. A zero endpoint is treated as
// missing. Ordering is not enforced.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Complete reports whether both endpoints are present.
func (r DateRange) Complete() bool {
	return !r.Start.IsZero() && !r.End.IsZero()
}

func (r DateRange) Inverted() bool {
	return r.Complete() && r.Start.After(r.End)
}

// Contains reports whether t's calendar date falls inside the range,
// inclusive on both ends. Each value is read in its own location, so a
// date stored as UTC midnight still matches the same local day.
func (r DateRange) Contains(t time.Time) bool {
	if !r.Complete() {
		return false
	}
	d := calendarDay(t)
	return !d.Before(calendarDay(r.Start)) && !d.After(calendarDay(r.End))
}

// calendarDay strips the time and zone from t, keeping its wall-clock date.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (r DateRange) String() string {
	start, end := "…", "…"
	if !r.Start.IsZero() {
		start = r.Start.Format("2006-01-02")
	}
	if !r.End.IsZero() {
		end = r.End.Format("2006-01-02")
	}
	return fmt.Sprintf("%s → %s", start, end)
}

// SameDay reports whether a and b fall on the same calendar day. b is read
// in a's location so that two instants differing only in time-of-day match.
func SameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.In(a.Location()).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
