package analysis

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// Wednesday.
var testNow = time.Date(2023, time.June, 14, 15, 30, 0, 0, time.UTC)

func testResolver() PresetResolver {
	return NewPresetResolver(fixedClock(testNow), time.Monday)
}

func day(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC)
}

// ============================================================
// SameDay
// ============================================================

func TestSameDay(t *testing.T) {
	tests := []struct {
		name string
		a, b time.Time
		want bool
	}{
		{"identical", day(2023, 1, 1, 0, 0), day(2023, 1, 1, 0, 0), true},
		{"different time of day", day(2023, 12, 31, 23, 59), day(2023, 12, 31, 8, 0), true},
		{"adjacent days", day(2023, 12, 31, 23, 59), day(2024, 1, 1, 0, 0), false},
		{"same day different month", day(2023, 1, 5, 0, 0), day(2023, 2, 5, 0, 0), false},
		{"same day different year", day(2023, 1, 5, 0, 0), day(2024, 1, 5, 0, 0), false},
	}
	for _, tt := range tests {
		if got := SameDay(tt.a, tt.b); got != tt.want {
			t.Errorf("%s: SameDay(%v, %v) = %v, want %v", tt.name, tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSameDayUsesFirstLocation(t *testing.T) {
	plus2 := time.FixedZone("UTC+2", 2*60*60)
	a := time.Date(2023, 3, 1, 0, 30, 0, 0, plus2)
	// 2023-02-28 23:00 UTC is 2023-03-01 01:00 in UTC+2.
	b := time.Date(2023, 2, 28, 23, 0, 0, 0, time.UTC)
	if !SameDay(a, b) {
		t.Fatal("instants on the same day in a's location should match")
	}
}

// ============================================================
// Preset resolver
// ============================================================

func TestResolverRanges(t *testing.T) {
	resolve := testResolver()
	tests := []struct {
		p          Preset
		start, end time.Time
	}{
		{PresetToday, day(2023, 6, 14, 0, 0), time.Date(2023, 6, 14, 23, 59, 59, 0, time.UTC)},
		{PresetWeek, day(2023, 6, 12, 0, 0), time.Date(2023, 6, 18, 23, 59, 59, 0, time.UTC)},
		{PresetMonth, day(2023, 6, 1, 0, 0), time.Date(2023, 6, 30, 23, 59, 59, 0, time.UTC)},
		{PresetYear, day(2023, 1, 1, 0, 0), time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC)},
	}
	for _, tt := range tests {
		r, ok := resolve(tt.p)
		if !ok {
			t.Fatalf("%s: not resolved", tt.p)
		}
		if !r.Start.Equal(tt.start) || !r.End.Equal(tt.end) {
			t.Errorf("%s: got %v..%v, want %v..%v", tt.p, r.Start, r.End, tt.start, tt.end)
		}
	}
}

func TestResolverWeekStartSunday(t *testing.T) {
	resolve := NewPresetResolver(fixedClock(testNow), time.Sunday)
	r, _ := resolve(PresetWeek)
	if !r.Start.Equal(day(2023, 6, 11, 0, 0)) {
		t.Fatalf("week should start on Sunday 11th, got %v", r.Start)
	}
}

func TestResolverWeekOnWeekStart(t *testing.T) {
	monday := time.Date(2023, 6, 12, 9, 0, 0, 0, time.UTC)
	r, _ := NewPresetResolver(fixedClock(monday), time.Monday)(PresetWeek)
	if !r.Start.Equal(day(2023, 6, 12, 0, 0)) {
		t.Fatalf("week starting today should start today, got %v", r.Start)
	}
}

func TestResolverUnknownPreset(t *testing.T) {
	if _, ok := testResolver()(Preset("decade")); ok {
		t.Fatal("unknown preset should not resolve")
	}
}

func TestParsePreset(t *testing.T) {
	if p, ok := ParsePreset("month"); !ok || p != PresetMonth {
		t.Fatalf("ParsePreset(month) = %q, %v", p, ok)
	}
	if _, ok := ParsePreset("fortnight"); ok {
		t.Fatal("fortnight is not a preset")
	}
}

func TestParseWeekStart(t *testing.T) {
	if ParseWeekStart("sunday") != time.Sunday {
		t.Fatal("sunday")
	}
	if ParseWeekStart("monday") != time.Monday || ParseWeekStart("") != time.Monday {
		t.Fatal("default should be monday")
	}
}

// ============================================================
// RangeSelector
// ============================================================

func TestSelectPresetMakesItActive(t *testing.T) {
	resolve := testResolver()
	for _, p := range Presets {
		sel := NewRangeSelector(resolve, PresetYear)
		sel.SelectPreset(p)

		want, _ := resolve(p)
		got, ok := sel.Range()
		if !ok {
			t.Fatalf("%s: no range after SelectPreset", p)
		}
		if !SameDay(got.Start, want.Start) || !SameDay(got.End, want.End) {
			t.Fatalf("%s: range %v, want %v", p, got, want)
		}
		if !sel.IsPresetActive(p) {
			t.Fatalf("%s: should be active after selecting it", p)
		}
	}
}

func TestInitialPresetSelected(t *testing.T) {
	sel := NewRangeSelector(testResolver(), PresetYear)
	if !sel.IsPresetActive(PresetYear) {
		t.Fatal("initial preset should be active")
	}
}

func TestIsPresetActiveWhenUnset(t *testing.T) {
	sel := NewRangeSelector(testResolver(), PresetYear)
	sel.Clear()
	for _, p := range Presets {
		if sel.IsPresetActive(p) {
			t.Fatalf("%s should not be active without a range", p)
		}
	}
	if len(sel.ActivePresets()) != 0 {
		t.Fatal("no presets should be active")
	}
}

func TestOtherPresetsInactive(t *testing.T) {
	sel := NewRangeSelector(testResolver(), PresetYear)
	for _, p := range Presets {
		sel.SelectPreset(p)
		for _, q := range Presets {
			if q != p && sel.IsPresetActive(q) {
				t.Fatalf("selected %s, but %s is active", p, q)
			}
		}
	}
}

func TestDayIdenticalPresetsTie(t *testing.T) {
	r := DateRange{Start: day(2023, 1, 1, 0, 0), End: day(2023, 1, 1, 23, 0)}
	resolve := func(p Preset) (DateRange, bool) {
		switch p {
		case PresetToday, PresetWeek:
			return r, true
		}
		return DateRange{}, false
	}
	sel := NewRangeSelector(resolve, PresetToday)
	if !sel.IsPresetActive(PresetWeek) {
		t.Fatal("a preset with a day-identical range should also be active")
	}
	active := sel.ActivePresets()
	if len(active) != 2 || active[0] != PresetToday || active[1] != PresetWeek {
		t.Fatalf("active presets = %v", active)
	}
}

func TestYearActiveDespiteTimeOfDay(t *testing.T) {
	resolve := func(p Preset) (DateRange, bool) {
		if p != PresetYear {
			return DateRange{}, false
		}
		return DateRange{Start: day(2023, 1, 1, 0, 0), End: day(2023, 12, 31, 23, 59)}, true
	}
	sel := NewRangeSelector(resolve, PresetYear)
	if !sel.IsPresetActive(PresetYear) {
		t.Fatal("year should be active after selecting it")
	}

	sel.SetRange(DateRange{Start: day(2023, 1, 1, 0, 0), End: day(2023, 12, 31, 8, 0)})
	if !sel.IsPresetActive(PresetYear) {
		t.Fatal("year should stay active when only the end time-of-day differs")
	}
}

func TestSelectUnknownPresetClears(t *testing.T) {
	sel := NewRangeSelector(testResolver(), PresetYear)
	sel.SelectPreset(Preset("decade"))
	if _, ok := sel.Range(); ok {
		t.Fatal("unresolved preset should leave no range selected")
	}
}

func TestSetRangeInvertedAccepted(t *testing.T) {
	sel := NewRangeSelector(testResolver(), PresetYear)
	d1 := day(2023, 3, 1, 0, 0)
	d2 := day(2023, 4, 1, 0, 0)
	sel.SetRange(DateRange{Start: d2, End: d1})

	got, ok := sel.Range()
	if !ok {
		t.Fatal("inverted range should be stored")
	}
	if !got.Start.Equal(d2) || !got.End.Equal(d1) {
		t.Fatalf("range was altered: %v", got)
	}
	if !got.Inverted() {
		t.Fatal("range should report inverted")
	}
}

func TestMissingEndpointNotActive(t *testing.T) {
	sel := NewRangeSelector(testResolver(), PresetYear)
	r, _ := testResolver()(PresetYear)
	sel.SetRange(DateRange{Start: r.Start})
	if sel.IsPresetActive(PresetYear) {
		t.Fatal("range missing its end should never be active")
	}
}

func TestPresetResolvingIncompleteNotActive(t *testing.T) {
	resolve := func(p Preset) (DateRange, bool) {
		return DateRange{Start: day(2023, 1, 1, 0, 0)}, true
	}
	sel := RangeSelector{resolve: resolve}
	sel.SetRange(DateRange{Start: day(2023, 1, 1, 0, 0), End: day(2023, 1, 2, 0, 0)})
	if sel.IsPresetActive(PresetToday) {
		t.Fatal("preset with an empty end should not be active")
	}
}

func TestNilResolver(t *testing.T) {
	sel := NewRangeSelector(nil, PresetYear)
	if _, ok := sel.Range(); ok {
		t.Fatal("nil resolver should select nothing")
	}
	if sel.IsPresetActive(PresetYear) {
		t.Fatal("nil resolver should never be active")
	}
}

// ============================================================
// DateRange
// ============================================================

func TestDateRangeContains(t *testing.T) {
	r := DateRange{Start: day(2023, 1, 10, 12, 0), End: day(2023, 1, 12, 0, 0)}
	if !r.Contains(day(2023, 1, 10, 0, 0)) {
		t.Fatal("start day should be included from midnight")
	}
	if !r.Contains(day(2023, 1, 12, 23, 0)) {
		t.Fatal("end day should be included until midnight")
	}
	if r.Contains(day(2023, 1, 13, 0, 0)) {
		t.Fatal("day after end should be excluded")
	}
	if (DateRange{}).Contains(day(2023, 1, 10, 0, 0)) {
		t.Fatal("empty range contains nothing")
	}
}

func TestDateRangeString(t *testing.T) {
	r := DateRange{Start: day(2023, 1, 1, 0, 0)}
	if got := r.String(); got != "2023-01-01 → …" {
		t.Fatalf("String() = %q", got)
	}
}

// ============================================================
// CategoryFilter
// ============================================================

func TestCategoryFilterDefault(t *testing.T) {
	if NewCategoryFilter().Current() != SalesAll {
		t.Fatal("default should be all")
	}
	var zero CategoryFilter
	if zero.Current() != SalesAll {
		t.Fatal("zero value should read as all")
	}
}

func TestCategoryFilterSet(t *testing.T) {
	c := NewCategoryFilter()
	for _, v := range SalesTypes {
		c.Set(v)
		if c.Current() != v {
			t.Fatalf("Set(%q) then Current() = %q", v, c.Current())
		}
	}
}

func TestCategoryFilterCycle(t *testing.T) {
	c := NewCategoryFilter()
	want := []SalesType{SalesOnline, SalesStores, SalesAll}
	for _, w := range want {
		c.Cycle()
		if c.Current() != w {
			t.Fatalf("Cycle() = %q, want %q", c.Current(), w)
		}
	}
}

func TestParseSalesType(t *testing.T) {
	if v, ok := ParseSalesType("stores"); !ok || v != SalesStores {
		t.Fatalf("ParseSalesType(stores) = %q, %v", v, ok)
	}
	if _, ok := ParseSalesType("wholesale"); ok {
		t.Fatal("wholesale is not a sales type")
	}
}

// ============================================================
// Binding
// ============================================================

func TestBindingLifecycle(t *testing.T) {
	var b Binding
	gen := b.Activate()
	if !b.Loading() || !b.Active() {
		t.Fatal("activation should start loading")
	}

	data := Data{History: []NAVPoint{{FundCode: "A"}}}
	if !b.Settle(gen, data, nil) {
		t.Fatal("live result should apply")
	}
	if b.Loading() {
		t.Fatal("loading should end after settle")
	}
	if len(b.Data().History) != 1 {
		t.Fatal("data not stored")
	}
}

func TestBindingDropsResultAfterDeactivate(t *testing.T) {
	var b Binding
	gen := b.Activate()
	b.Deactivate()

	if b.Settle(gen, Data{History: []NAVPoint{{FundCode: "A"}}}, nil) {
		t.Fatal("result after deactivation should be dropped")
	}
	if len(b.Data().History) != 0 {
		t.Fatal("dropped result must not mutate data")
	}
}

func TestBindingDropsStaleGeneration(t *testing.T) {
	var b Binding
	old := b.Activate()
	b.Deactivate()
	cur := b.Activate()

	if b.Settle(old, Data{History: []NAVPoint{{FundCode: "old"}}}, nil) {
		t.Fatal("stale result should be dropped")
	}
	if !b.Settle(cur, Data{History: []NAVPoint{{FundCode: "new"}}}, nil) {
		t.Fatal("current result should apply")
	}
	if b.Data().History[0].FundCode != "new" {
		t.Fatal("wrong result applied")
	}
}

func TestBindingFailureStaysLoading(t *testing.T) {
	var b Binding
	gen := b.Activate()
	boom := errors.New("boom")
	if !b.Settle(gen, Data{}, boom) {
		t.Fatal("failure of a live fetch should be recorded")
	}
	if !b.Loading() {
		t.Fatal("failed fetch should look pending")
	}
	if !errors.Is(b.Err(), boom) {
		t.Fatalf("Err() = %v", b.Err())
	}
}

func TestSourceFunc(t *testing.T) {
	src := SourceFunc(func(ctx context.Context) (Data, error) {
		return Data{FundTypes: []FundTypeShare{{FundType: "bond"}}}, nil
	})
	d, err := src.FetchAnalysis(context.Background())
	if err != nil || len(d.FundTypes) != 1 {
		t.Fatalf("FetchAnalysis = %+v, %v", d, err)
	}
}

// ============================================================
// Derivation
// ============================================================

func TestDeriveWhileLoading(t *testing.T) {
	var b Binding
	b.Activate()
	in := Derive(b, NewRangeSelector(testResolver(), PresetYear), NewCategoryFilter())

	if !in.Loading {
		t.Fatal("inputs should be loading")
	}
	if in.History == nil || in.LatestPredictions == nil || in.FundTypes == nil || in.Errors == nil {
		t.Fatal("every slice should fall back to empty, not nil")
	}
	if len(in.History)+len(in.LatestPredictions)+len(in.FundTypes)+len(in.Errors) != 0 {
		t.Fatal("nothing should be loaded yet")
	}
}

func TestDeriveAfterResolve(t *testing.T) {
	pt1 := NAVPoint{FundCode: "F1", Date: day(2023, 1, 2, 0, 0), NAV: 1.01}
	pt2 := NAVPoint{FundCode: "F1", Date: day(2023, 1, 3, 0, 0), NAV: 1.02}
	seg1 := FundTypeShare{FundType: "bond", Channel: SalesOnline, Count: 3}

	var b Binding
	gen := b.Activate()
	b.Settle(gen, Data{
		History:           []NAVPoint{pt1, pt2},
		LatestPredictions: []Prediction{},
		FundTypes:         []FundTypeShare{seg1},
	}, nil)

	in := Derive(b, NewRangeSelector(testResolver(), PresetYear), NewCategoryFilter())
	if in.Loading {
		t.Fatal("should not be loading")
	}
	if len(in.History) != 2 || in.History[0] != pt1 || in.History[1] != pt2 {
		t.Fatalf("history = %v", in.History)
	}
	if len(in.LatestPredictions) != 0 {
		t.Fatalf("predictions = %v", in.LatestPredictions)
	}
	if len(in.FundTypes) != 1 || in.FundTypes[0] != seg1 {
		t.Fatalf("fund types = %v", in.FundTypes)
	}
	if in.Errors == nil {
		t.Fatal("missing field should fall back to empty")
	}
}

func TestDeriveCarriesFilterState(t *testing.T) {
	sel := NewRangeSelector(testResolver(), PresetMonth)
	cat := NewCategoryFilter()
	cat.Set(SalesStores)

	in := Derive(Binding{}, sel, cat)
	if !in.HasRange || in.SalesType != SalesStores {
		t.Fatalf("inputs = %+v", in)
	}
	if len(in.ActivePresets) != 1 || in.ActivePresets[0] != PresetMonth {
		t.Fatalf("active presets = %v", in.ActivePresets)
	}
}

func TestProportionFor(t *testing.T) {
	shares := []FundTypeShare{
		{FundType: "bond", Channel: SalesOnline, Count: 2},
		{FundType: "equity", Channel: SalesOnline, Count: 5},
		{FundType: "bond", Channel: SalesStores, Count: 4},
		{FundType: "money", Channel: SalesStores, Count: 1},
	}

	all := ProportionFor(shares, SalesAll)
	if len(all) != 3 {
		t.Fatalf("expected 3 slices, got %d", len(all))
	}
	if all[0].FundType != "bond" || all[0].Count != 6 {
		t.Fatalf("first slice = %+v", all[0])
	}
	if all[0].Share != 0.5 {
		t.Fatalf("bond share = %v, want 0.5", all[0].Share)
	}

	online := ProportionFor(shares, SalesOnline)
	if len(online) != 2 || online[0].FundType != "equity" || online[0].Count != 5 {
		t.Fatalf("online = %+v", online)
	}

	stores := ProportionFor(shares, SalesStores)
	if len(stores) != 2 || stores[1].FundType != "money" {
		t.Fatalf("stores = %+v", stores)
	}

	if got := ProportionFor(nil, SalesAll); got == nil || len(got) != 0 {
		t.Fatal("no shares should yield an empty slice")
	}
}

func TestClipHistory(t *testing.T) {
	points := []NAVPoint{
		{FundCode: "A", Date: day(2023, 1, 1, 0, 0)},
		{FundCode: "A", Date: day(2023, 2, 1, 0, 0)},
		{FundCode: "A", Date: day(2023, 3, 1, 0, 0)},
	}
	r := DateRange{Start: day(2023, 1, 15, 0, 0), End: day(2023, 3, 1, 0, 0)}
	got := ClipHistory(points, r)
	if len(got) != 2 {
		t.Fatalf("expected 2 points, got %d", len(got))
	}

	inverted := DateRange{Start: r.End, End: r.Start}
	if len(ClipHistory(points, inverted)) != 3 {
		t.Fatal("inverted range should not clip")
	}
	if len(ClipHistory(points, DateRange{})) != 3 {
		t.Fatal("empty range should not clip")
	}
}

func TestClipHistoryAcrossZones(t *testing.T) {
	// Stored dates at UTC midnight against a range resolved west of UTC.
	ny := time.FixedZone("EST", -5*60*60)
	points := []NAVPoint{
		{FundCode: "A", Date: day(2023, 1, 1, 0, 0)},
		{FundCode: "A", Date: day(2023, 6, 15, 0, 0)},
		{FundCode: "A", Date: day(2023, 12, 31, 0, 0)},
		{FundCode: "A", Date: day(2024, 1, 1, 0, 0)},
	}
	resolve := NewPresetResolver(func() time.Time {
		return time.Date(2023, 6, 1, 9, 0, 0, 0, ny)
	}, time.Monday)
	year, _ := resolve(PresetYear)

	got := ClipHistory(points, year)
	if len(got) != 3 {
		t.Fatalf("expected 3 points in 2023, got %d: %+v", len(got), got)
	}
	if !got[0].Date.Equal(day(2023, 1, 1, 0, 0)) {
		t.Fatalf("first day of the year dropped: %v", got[0].Date)
	}
	if got[2].Date.Year() != 2023 {
		t.Fatalf("day after the range included: %v", got[2].Date)
	}
}

func TestErrorExtremesNegativeCount(t *testing.T) {
	errs := []ErrorPoint{{FundCode: "A", Date: day(2023, 1, 1, 0, 0), Error: 0.1}}
	largest, smallest := ErrorExtremes(errs, -1)
	if len(largest) != 0 || len(smallest) != 0 {
		t.Fatalf("negative n should yield nothing, got %+v / %+v", largest, smallest)
	}
}

func TestErrorExtremes(t *testing.T) {
	errs := []ErrorPoint{
		{FundCode: "A", Date: day(2023, 1, 1, 0, 0), Error: 0.5},
		{FundCode: "A", Date: day(2023, 1, 2, 0, 0), Error: 0.01},
		{FundCode: "B", Date: day(2023, 1, 2, 0, 0), Error: -0.2},
		{FundCode: "C", Date: day(2023, 1, 2, 0, 0), Error: 0.05},
	}
	largest, smallest := ErrorExtremes(errs, 2)
	if len(largest) != 2 || largest[0].FundCode != "B" || largest[1].FundCode != "C" {
		t.Fatalf("largest = %+v", largest)
	}
	if len(smallest) != 2 || smallest[0].FundCode != "A" || smallest[1].FundCode != "C" {
		t.Fatalf("smallest = %+v", smallest)
	}

	largest, smallest = ErrorExtremes(errs, 10)
	if len(largest) != 3 || len(smallest) != 3 {
		t.Fatal("n larger than fund count should cap")
	}

	largest, smallest = ErrorExtremes(nil, 3)
	if largest == nil || smallest == nil {
		t.Fatal("no errors should yield empty slices")
	}
}

func TestFundErrorSeries(t *testing.T) {
	errs := []ErrorPoint{
		{FundCode: "A", Date: day(2023, 1, 3, 0, 0), Error: 0.3},
		{FundCode: "B", Date: day(2023, 1, 1, 0, 0), Error: 0.1},
		{FundCode: "A", Date: day(2023, 1, 1, 0, 0), Error: 0.1},
	}
	got := FundErrorSeries(errs, "A")
	if len(got) != 2 || !got[0].Date.Before(got[1].Date) {
		t.Fatalf("series = %+v", got)
	}
	codes := FundCodes(errs)
	if len(codes) != 2 || codes[0] != "A" || codes[1] != "B" {
		t.Fatalf("codes = %v", codes)
	}
}

func TestSummarizePredictions(t *testing.T) {
	preds := []Prediction{
		{FundCode: "A", Predicted: 1.1, Actual: 1.0},
		{FundCode: "B", Predicted: 0.95, Actual: 1.0},
		{FundCode: "C", Predicted: 2.0},
	}
	s := SummarizePredictions(preds)
	if s.Settled != 2 || s.Pending != 1 {
		t.Fatalf("summary = %+v", s)
	}
	if s.MaxFund != "A" {
		t.Fatalf("max fund = %q", s.MaxFund)
	}
	if s.MeanAbs < 0.0749 || s.MeanAbs > 0.0751 {
		t.Fatalf("mean = %v", s.MeanAbs)
	}
}

func TestPredictionErrorPending(t *testing.T) {
	if _, ok := (Prediction{Predicted: 1}).Error(); ok {
		t.Fatal("prediction without actual should be pending")
	}
}
