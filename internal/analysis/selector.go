package analysis

// RangeSelector tracks the selected date range and which presets it
// matches. It is owned by a single view and never shared.
type RangeSelector struct {
	resolve PresetResolver
	current DateRange
	set     bool
}

// NewRangeSelector starts with the range that initial resolves to.
func NewRangeSelector(resolve PresetResolver, initial Preset) RangeSelector {
	s := RangeSelector{resolve: resolve}
	s.SelectPreset(initial)
	return s
}

// SelectPreset replaces the current range with the preset's range. A preset
// the resolver does not know leaves nothing selected.
func (s *RangeSelector) SelectPreset(p Preset) {
	if s.resolve == nil {
		s.Clear()
		return
	}
	r, ok := s.resolve(p)
	if !ok {
		s.Clear()
		return
	}
	s.current = r
	s.set = true
}

// SetRange replaces the current range verbatim. Inverted ranges are kept
// as given.
func (s *RangeSelector) SetRange(r DateRange) {
	s.current = r
	s.set = true
}

func (s *RangeSelector) Clear() {
	s.current = DateRange{}
	s.set = false
}

func (s RangeSelector) Range() (DateRange, bool) {
	return s.current, s.set
}

// IsPresetActive reports whether the current range matches p's range at day
// granularity on both ends.
func (s RangeSelector) IsPresetActive(p Preset) bool {
	if !s.set || !s.current.Complete() || s.resolve == nil {
		return false
	}
	r, ok := s.resolve(p)
	if !ok || !r.Complete() {
		return false
	}
	return SameDay(s.current.Start, r.Start) && SameDay(s.current.End, r.End)
}

// ActivePresets returns every preset that currently matches. Two presets
// resolving to day-identical ranges are both active.
func (s RangeSelector) ActivePresets() []Preset {
	active := []Preset{}
	for _, p := range Presets {
		if s.IsPresetActive(p) {
			active = append(active, p)
		}
	}
	return active
}
