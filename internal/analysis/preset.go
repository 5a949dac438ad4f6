package analysis

import "time"

// Preset is a named shortcut that resolves to a concrete date range.
type Preset string

const (
	PresetToday Preset = "today"
	PresetWeek  Preset = "week"
	PresetMonth Preset = "month"
	PresetYear  Preset = "year"
)

// Presets in display order.
var Presets = []Preset{PresetToday, PresetWeek, PresetMonth, PresetYear}

func (p Preset) Label() string {
	switch p {
	case PresetToday:
		return "Today"
	case PresetWeek:
		return "Week"
	case PresetMonth:
		return "Month"
	case PresetYear:
		return "Year"
	}
	return string(p)
}

func ParsePreset(s string) (Preset, bool) {
	for _, p := range Presets {
		if string(p) == s {
			return p, true
		}
	}
	return "", false
}

// PresetResolver maps a preset to a concrete range. It returns false for
// presets it does not recognise.
type PresetResolver func(Preset) (DateRange, bool)

// NewPresetResolver returns the default resolver. Every range starts at
// midnight and ends one second before the following period begins.
func NewPresetResolver(now func() time.Time, weekStart time.Weekday) PresetResolver {
	if now == nil {
		now = time.Now
	}
	return func(p Preset) (DateRange, bool) {
		today := StartOfDay(now())
		var start, next time.Time

		switch p {
		case PresetToday:
			start = today
			next = today.AddDate(0, 0, 1)
		case PresetWeek:
			offset := (int(today.Weekday()) - int(weekStart) + 7) % 7
			start = today.AddDate(0, 0, -offset)
			next = start.AddDate(0, 0, 7)
		case PresetMonth:
			start = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
			next = start.AddDate(0, 1, 0)
		case PresetYear:
			start = time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, today.Location())
			next = start.AddDate(1, 0, 0)
		default:
			return DateRange{}, false
		}
		return DateRange{Start: start, End: next.Add(-time.Second)}, true
	}
}

// ParseWeekStart reads the week_start setting. Anything other than
// "sunday" means Monday.
func ParseWeekStart(s string) time.Weekday {
	if s == "sunday" {
		return time.Sunday
	}
	return time.Monday
}
