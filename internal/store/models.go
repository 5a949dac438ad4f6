package store

import "time"

// dateLayout is how daily values are keyed in the database.
const dateLayout = "2006-01-02"

// parseDay reads a stored date as local midnight, the zone presets and the
// range picker use.
func parseDay(s string) time.Time {
	d, _ := time.ParseInLocation(dateLayout, s, time.Local)
	return d
}

type Fund struct {
	Code      string
	Name      string
	FundType  string
	Channel   string // online, stores
	Archived  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Setting struct {
	Key   string
	Value string
}
