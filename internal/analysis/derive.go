package analysis

import (
	"math"
	"sort"
)

// Inputs is everything the analysis widgets render from. Slices are never
// nil so widgets can render an empty state without special-casing.
type Inputs struct {
	Loading       bool
	Range         DateRange
	HasRange      bool
	ActivePresets []Preset
	SalesType     SalesType

	History           []NAVPoint
	LatestPredictions []Prediction
	FundTypes         []FundTypeShare
	Errors            []ErrorPoint
}

// Derive builds widget inputs from the view state. It has no side effects.
func Derive(b Binding, sel RangeSelector, cat CategoryFilter) Inputs {
	r, ok := sel.Range()
	d := b.Data()
	return Inputs{
		Loading:           b.Loading(),
		Range:             r,
		HasRange:          ok,
		ActivePresets:     sel.ActivePresets(),
		SalesType:         cat.Current(),
		History:           orEmpty(d.History),
		LatestPredictions: orEmpty(d.LatestPredictions),
		FundTypes:         orEmpty(d.FundTypes),
		Errors:            orEmpty(d.Errors),
	}
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Slice is one segment of the proportion chart.
type Slice struct {
	FundType string
	Count    int
	Share    float64
}

// ProportionFor aggregates shares by fund type for the given sales type.
// SalesAll sums every channel. Segments are ordered by count, largest
// first, then by name.
func ProportionFor(shares []FundTypeShare, t SalesType) []Slice {
	counts := make(map[string]int)
	var order []string
	total := 0
	for _, s := range shares {
		if t != SalesAll && s.Channel != t {
			continue
		}
		if _, seen := counts[s.FundType]; !seen {
			order = append(order, s.FundType)
		}
		counts[s.FundType] += s.Count
		total += s.Count
	}

	out := make([]Slice, 0, len(order))
	for _, ft := range order {
		sl := Slice{FundType: ft, Count: counts[ft]}
		if total > 0 {
			sl.Share = float64(sl.Count) / float64(total)
		}
		out = append(out, sl)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].FundType < out[j].FundType
	})
	return out
}

// ClipHistory returns the points inside r. Incomplete or inverted ranges
// return the series unchanged.
func ClipHistory(points []NAVPoint, r DateRange) []NAVPoint {
	if !r.Complete() || r.Inverted() {
		return orEmpty(points)
	}
	out := []NAVPoint{}
	for _, p := range points {
		if r.Contains(p.Date) {
			out = append(out, p)
		}
	}
	return out
}

// ErrorExtremes returns, per fund, the most recent error, then the n funds
// with the largest and the n with the smallest absolute error.
func ErrorExtremes(errs []ErrorPoint, n int) (largest, smallest []ErrorPoint) {
	latest := LatestErrors(errs)
	byAbs := make([]ErrorPoint, len(latest))
	copy(byAbs, latest)
	sort.SliceStable(byAbs, func(i, j int) bool {
		if byAbs[i].Abs() != byAbs[j].Abs() {
			return byAbs[i].Abs() > byAbs[j].Abs()
		}
		return byAbs[i].FundCode < byAbs[j].FundCode
	})
	n = min(max(n, 0), len(byAbs))
	largest = append([]ErrorPoint{}, byAbs[:n]...)
	smallest = []ErrorPoint{}
	for i := len(byAbs) - 1; i >= len(byAbs)-n; i-- {
		smallest = append(smallest, byAbs[i])
	}
	return largest, smallest
}

// LatestErrors keeps the most recent error for each fund, ordered by fund
// code.
func LatestErrors(errs []ErrorPoint) []ErrorPoint {
	last := make(map[string]ErrorPoint)
	for _, e := range errs {
		if cur, ok := last[e.FundCode]; !ok || e.Date.After(cur.Date) {
			last[e.FundCode] = e
		}
	}
	out := make([]ErrorPoint, 0, len(last))
	for _, e := range last {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FundCode < out[j].FundCode })
	return out
}

// FundErrorSeries returns one fund's errors in date order.
func FundErrorSeries(errs []ErrorPoint, code string) []ErrorPoint {
	out := []ErrorPoint{}
	for _, e := range errs {
		if e.FundCode == code {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// FundCodes lists the distinct funds that have errors, sorted.
func FundCodes(errs []ErrorPoint) []string {
	seen := make(map[string]bool)
	var codes []string
	for _, e := range errs {
		if !seen[e.FundCode] {
			seen[e.FundCode] = true
			codes = append(codes, e.FundCode)
		}
	}
	sort.Strings(codes)
	return codes
}

// ErrorSummary describes the settled errors of the latest predictions.
type ErrorSummary struct {
	Settled int
	Pending int
	MeanAbs float64
	MaxAbs  float64
	MaxFund string
}

func SummarizePredictions(preds []Prediction) ErrorSummary {
	var s ErrorSummary
	var sum float64
	for _, p := range preds {
		e, ok := p.Error()
		if !ok {
			s.Pending++
			continue
		}
		s.Settled++
		a := math.Abs(e)
		sum += a
		if a > s.MaxAbs || s.MaxFund == "" {
			s.MaxAbs = a
			s.MaxFund = p.FundCode
		}
	}
	if s.Settled > 0 {
		s.MeanAbs = sum / float64(s.Settled)
	}
	return s
}
