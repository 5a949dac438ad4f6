package tui

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/NimbleMarkets/ntcharts/linechart/timeserieslinechart"
	"github.com/NimbleMarkets/ntcharts/sparkline"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/fundscope/internal/analysis"
)

// extremesCount is how many funds the error max/min panels list.
const extremesCount = 5

// render lays out every widget. Widgets render independently; each shows
// its own placeholder while loading.
func (a analysisModel) render() string {
	w := a.width - 2
	in := a.inputs

	rows := []string{
		renderIntroduceRow(in, w),
		a.renderHistoryCard(w),
		pair(w,
			func(w int) string { return renderPredictionCard(in, w) },
			func(w int) string { return renderPredictionErrorCard(in, w) },
		),
		a.renderProportionCard(w),
		pair(w,
			func(w int) string { return renderErrorExtremesCard(in, w, true) },
			func(w int) string { return renderErrorExtremesCard(in, w, false) },
		),
		a.renderFundErrorCard(w),
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// pair puts two cards side by side on wide terminals and stacks them
// otherwise.
func pair(w int, left, right func(int) string) string {
	if w < 100 {
		return lipgloss.JoinVertical(lipgloss.Left, left(w), right(w))
	}
	half := w / 2
	return lipgloss.JoinHorizontal(lipgloss.Top, left(half), right(w-half))
}

// card wraps content in a panel whose outer width is w.
func card(w int, title, content string) string {
	body := titleStyle.Render(title)
	if content != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, body, content)
	}
	return panelStyle.Width(max(w-2, 1)).Render(body)
}

// innerWidth is the usable width inside a card of outer width w.
func innerWidth(w int) int {
	return max(w-4, 10)
}

func placeholder() string {
	return mutedStyle.Render("Loading…")
}

// --- Introduce row ---

func renderIntroduceRow(in analysis.Inputs, w int) string {
	type stat struct{ title, value, note string }
	var stats []stat

	if in.Loading {
		for _, t := range []string{"Funds", "Latest NAV", "Predictions", "Mean Error"} {
			stats = append(stats, stat{title: t, value: placeholder()})
		}
	} else {
		funds := make(map[string]bool)
		var latest time.Time
		for _, p := range in.History {
			funds[p.FundCode] = true
			if p.Date.After(latest) {
				latest = p.Date
			}
		}
		sum := analysis.SummarizePredictions(in.LatestPredictions)
		mean := "—"
		if sum.Settled > 0 {
			mean = formatAbsPercent(sum.MeanAbs)
		}
		stats = []stat{
			{"Funds", fmt.Sprintf("%d", len(funds)), fmt.Sprintf("%d NAV points", len(in.History))},
			{"Latest NAV", formatDate(latest), ""},
			{"Predictions", fmt.Sprintf("%d", len(in.LatestPredictions)), fmt.Sprintf("%d settled, %d pending", sum.Settled, sum.Pending)},
			{"Mean Error", mean, "latest predictions"},
		}
	}

	perRow := 4
	if w < 80 {
		perRow = 2
	}
	cw := w / perRow

	var lines, current []string
	for i, s := range stats {
		content := cardValueStyle.Render(s.value)
		if s.note != "" {
			content = lipgloss.JoinVertical(lipgloss.Left, content, mutedStyle.Render(s.note))
		}
		current = append(current, card(cw, s.title, content))
		if len(current) == perRow || i == len(stats)-1 {
			lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, current...))
			current = nil
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// --- NAV history ---

func (a *analysisModel) buildHistoryChart() {
	in := a.inputs
	points := analysis.ClipHistory(in.History, in.Range)
	a.historyCount = len(points)
	a.historyCodes = nil
	if len(points) == 0 {
		return
	}

	minT, maxT := points[0].Date, points[0].Date
	minY, maxY := points[0].NAV, points[0].NAV
	seen := make(map[string]bool)
	for _, p := range points {
		if p.Date.Before(minT) {
			minT = p.Date
		}
		if p.Date.After(maxT) {
			maxT = p.Date
		}
		minY = math.Min(minY, p.NAV)
		maxY = math.Max(maxY, p.NAV)
		if !seen[p.FundCode] {
			seen[p.FundCode] = true
			a.historyCodes = append(a.historyCodes, p.FundCode)
		}
	}
	sort.Strings(a.historyCodes)

	if in.Range.Complete() && !in.Range.Inverted() {
		minT = analysis.StartOfDay(in.Range.Start)
		maxT = in.Range.End
	}
	if !maxT.After(minT) {
		maxT = minT.Add(24 * time.Hour)
	}
	pad := (maxY - minY) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(maxY)*0.01, 0.01)
	}
	minY, maxY = minY-pad, maxY+pad

	height := 10
	if a.height > 40 {
		height = 14
	}
	chart := timeserieslinechart.New(innerWidth(a.width-2), height)
	chart.SetTimeRange(minT, maxT)
	chart.SetViewTimeRange(minT, maxT)
	chart.SetYRange(minY, maxY)
	chart.SetViewYRange(minY, maxY)

	for i, code := range a.historyCodes {
		chart.SetDataSetStyle(code, lipgloss.NewStyle().Foreground(seriesColor(i)))
	}
	for _, p := range points {
		chart.PushDataSet(p.FundCode, timeserieslinechart.TimePoint{Time: p.Date, Value: p.NAV})
	}
	chart.DrawBrailleAll()
	a.history = chart
}

func (a analysisModel) renderHistoryCard(w int) string {
	in := a.inputs

	var buttons []string
	for _, p := range analysis.Presets {
		if a.selector.IsPresetActive(p) {
			buttons = append(buttons, currentOptionStyle.Render(p.Label()))
		} else {
			buttons = append(buttons, optionStyle.Render(p.Label()))
		}
	}

	rangeLabel := mutedStyle.Render("no range selected")
	if in.HasRange {
		rangeLabel = highlightStyle.Render(in.Range.String())
		if in.Range.Inverted() {
			rangeLabel += warningStyle.Render("  (start after end)")
		}
	}
	toolbar := lipgloss.JoinHorizontal(lipgloss.Bottom,
		lipgloss.JoinHorizontal(lipgloss.Bottom, buttons...), "  ", rangeLabel,
	)

	var body string
	switch {
	case in.Loading:
		body = placeholder()
	case a.historyCount == 0:
		body = mutedStyle.Render("No NAV history in this range")
	default:
		body = lipgloss.JoinVertical(lipgloss.Left, a.history.View(), renderLegend(a.historyCodes))
	}

	hint := mutedStyle.Render("t/w/m/y: preset  g: pick range")
	return card(w, "NAV History", lipgloss.JoinVertical(lipgloss.Left, toolbar, "", body, hint))
}

func renderLegend(names []string) string {
	var items []string
	for i, n := range names {
		dot := lipgloss.NewStyle().Foreground(seriesColor(i)).Render("●")
		items = append(items, fmt.Sprintf("%s %s", dot, n))
	}
	return strings.Join(items, "  ")
}

// --- Predictions ---

func renderPredictionCard(in analysis.Inputs, w int) string {
	if in.Loading {
		return card(w, "Latest Predictions", placeholder())
	}
	if len(in.LatestPredictions) == 0 {
		return card(w, "Latest Predictions", mutedStyle.Render("No predictions yet"))
	}

	iw := innerWidth(w)
	nameW := max(iw-52, 6)
	rows := []string{
		mutedStyle.Render(fmt.Sprintf("%-8s %-*s %-10s %9s %9s %8s", "Fund", nameW, "Name", "Date", "Predicted", "Actual", "Error")),
	}
	for _, p := range in.LatestPredictions {
		actual, errStr := "pending", ""
		if e, ok := p.Error(); ok {
			actual = formatNAV(p.Actual)
			errStr = errorStyleFor(e).Render(fmt.Sprintf("%8s", formatPercent(e)))
		}
		rows = append(rows, fmt.Sprintf("%-8s %-*s %-10s %9s %9s %s",
			truncate(p.FundCode, 8), nameW, truncate(p.FundName, nameW), formatDate(p.Date),
			formatNAV(p.Predicted), actual, errStr,
		))
	}
	return card(w, "Latest Predictions", strings.Join(rows, "\n"))
}

func renderPredictionErrorCard(in analysis.Inputs, w int) string {
	if in.Loading {
		return card(w, "Prediction Error", placeholder())
	}
	s := analysis.SummarizePredictions(in.LatestPredictions)
	if s.Settled == 0 {
		return card(w, "Prediction Error", mutedStyle.Render("No settled predictions"))
	}
	rows := []string{
		fmt.Sprintf("Mean |error|  %s", cardValueStyle.Render(formatAbsPercent(s.MeanAbs))),
		fmt.Sprintf("Worst fund    %s %s", highlightStyle.Render(s.MaxFund), errorStyleFor(s.MaxAbs).Render(formatAbsPercent(s.MaxAbs))),
		mutedStyle.Render(fmt.Sprintf("%d settled, %d pending", s.Settled, s.Pending)),
	}
	return card(w, "Prediction Error", strings.Join(rows, "\n"))
}

// errorStyleFor colours an error by magnitude.
func errorStyleFor(e float64) lipgloss.Style {
	switch a := math.Abs(e); {
	case a >= 0.05:
		return errorStyle
	case a >= 0.01:
		return warningStyle
	}
	return successStyle
}

// --- Proportion ---

func (a *analysisModel) buildProportionChart() {
	slices := analysis.ProportionFor(a.inputs.FundTypes, a.inputs.SalesType)
	var bars []barchart.BarData
	for i, s := range slices {
		bars = append(bars, barchart.BarData{
			Label: truncate(s.FundType, 8),
			Values: []barchart.BarValue{{
				Name:  s.FundType,
				Value: float64(s.Count),
				Style: lipgloss.NewStyle().Foreground(seriesColor(i)),
			}},
		})
	}
	a.proportion = barchart.New(innerWidth(a.width-2), 10)
	if len(bars) > 0 {
		a.proportion.PushAll(bars)
		a.proportion.Draw()
	}
}

func (a analysisModel) renderProportionCard(w int) string {
	in := a.inputs

	var radio []string
	for _, t := range analysis.SalesTypes {
		if t == in.SalesType {
			radio = append(radio, currentOptionStyle.Render("◉ "+t.Label()))
		} else {
			radio = append(radio, optionStyle.Render("○ "+t.Label()))
		}
	}
	toolbar := lipgloss.JoinHorizontal(lipgloss.Bottom, radio...)

	var body string
	slices := analysis.ProportionFor(in.FundTypes, in.SalesType)
	switch {
	case in.Loading:
		body = placeholder()
	case len(slices) == 0:
		body = mutedStyle.Render("No funds for this sales type")
	default:
		var legend []string
		for i, s := range slices {
			dot := lipgloss.NewStyle().Foreground(seriesColor(i)).Render("●")
			legend = append(legend, fmt.Sprintf("%s %s %d (%.1f%%)", dot, s.FundType, s.Count, s.Share*100))
		}
		body = lipgloss.JoinVertical(lipgloss.Left, a.proportion.View(), strings.Join(legend, "  "))
	}

	hint := mutedStyle.Render("c: sales type")
	return card(w, "Fund Type Proportion", lipgloss.JoinVertical(lipgloss.Left, toolbar, "", body, hint))
}

// --- Error breakdown ---

func renderErrorExtremesCard(in analysis.Inputs, w int, largest bool) string {
	title := "Largest Errors"
	if !largest {
		title = "Smallest Errors"
	}
	if in.Loading {
		return card(w, title, placeholder())
	}

	hi, lo := analysis.ErrorExtremes(in.Errors, extremesCount)
	list := lo
	if largest {
		list = hi
	}
	if len(list) == 0 {
		return card(w, title, mutedStyle.Render("No settled predictions"))
	}

	var rows []string
	for i, e := range list {
		rows = append(rows, fmt.Sprintf("%d. %-10s %s  %s",
			i+1, truncate(e.FundCode, 10), errorStyleFor(e.Error).Render(fmt.Sprintf("%8s", formatPercent(e.Error))),
			mutedStyle.Render(formatDate(e.Date)),
		))
	}
	return card(w, title, strings.Join(rows, "\n"))
}

func (a *analysisModel) buildFundSpark() {
	a.fundSpark = sparkline.New(innerWidth(a.width-2), 4)
	codes := analysis.FundCodes(a.inputs.Errors)
	if len(codes) == 0 {
		return
	}
	for _, e := range analysis.FundErrorSeries(a.inputs.Errors, codes[a.fundCursor]) {
		a.fundSpark.Push(e.Abs() * 100)
	}
	a.fundSpark.Draw()
}

func (a analysisModel) renderFundErrorCard(w int) string {
	const title = "Error by Fund"
	in := a.inputs
	if in.Loading {
		return card(w, title, placeholder())
	}
	codes := analysis.FundCodes(in.Errors)
	if len(codes) == 0 {
		return card(w, title, mutedStyle.Render("No settled predictions"))
	}

	code := codes[a.fundCursor]
	series := analysis.FundErrorSeries(in.Errors, code)
	last := series[len(series)-1]

	header := fmt.Sprintf("%s %s  %s",
		highlightStyle.Render(code),
		mutedStyle.Render(fmt.Sprintf("(%d/%d)", a.fundCursor+1, len(codes))),
		mutedStyle.Render(fmt.Sprintf("%d points, last %s on %s", len(series), formatPercent(last.Error), formatDate(last.Date))),
	)
	hint := mutedStyle.Render("[/]: switch fund  |error| in %")
	return card(w, title, lipgloss.JoinVertical(lipgloss.Left, header, a.fundSpark.View(), hint))
}
