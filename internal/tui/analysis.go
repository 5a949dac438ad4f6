package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/NimbleMarkets/ntcharts/linechart/timeserieslinechart"
	"github.com/NimbleMarkets/ntcharts/sparkline"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/fundscope/internal/analysis"
	"github.com/sadopc/fundscope/internal/store"
)

const dateInputLayout = "2006-01-02"

// analysisModel is the fund analysis view. Filter state lives only as long
// as the view is mounted.
type analysisModel struct {
	source analysis.Source
	prefs  func() store.Preferences
	now    func() time.Time
	width  int
	height int

	timeout  time.Duration
	binding  analysis.Binding
	selector analysis.RangeSelector
	category analysis.CategoryFilter
	inputs   analysis.Inputs

	fundCursor int

	// Range picker form; values are pointers so they survive value copies.
	formActive bool
	form       *huh.Form
	formStart  *string
	formEnd    *string

	viewport     viewport.Model
	history      timeserieslinechart.Model
	historyCodes []string
	historyCount int
	proportion   barchart.Model
	fundSpark    sparkline.Model
}

func newAnalysisModel(src analysis.Source, prefs func() store.Preferences, now func() time.Time) analysisModel {
	if now == nil {
		now = time.Now
	}
	start, end := "", ""
	return analysisModel{
		source:    src,
		prefs:     prefs,
		now:       now,
		category:  analysis.NewCategoryFilter(),
		formStart: &start,
		formEnd:   &end,
		viewport:  viewport.New(0, 0),
	}
}

func (a *analysisModel) setSize(w, h int) {
	a.width = w
	a.height = h
	a.viewport.Width = w
	a.viewport.Height = h
	a.refresh()
}

// mount resets the filters to their defaults and issues the single fetch
// for this activation.
func (a *analysisModel) mount() tea.Cmd {
	p := store.Preferences{DefaultPreset: "year", DefaultSalesType: "all", WeekStart: "monday", FetchTimeout: 10 * time.Second}
	if a.prefs != nil {
		p = a.prefs()
	}
	a.timeout = p.FetchTimeout

	preset, ok := analysis.ParsePreset(p.DefaultPreset)
	if !ok {
		preset = analysis.PresetYear
	}
	resolve := analysis.NewPresetResolver(a.now, analysis.ParseWeekStart(p.WeekStart))
	a.selector = analysis.NewRangeSelector(resolve, preset)

	a.category = analysis.NewCategoryFilter()
	if st, ok := analysis.ParseSalesType(p.DefaultSalesType); ok {
		a.category.Set(st)
	}

	a.fundCursor = 0
	a.formActive = false
	a.form = nil

	gen := a.binding.Activate()
	a.refresh()
	a.viewport.GotoTop()
	return a.fetch(gen)
}

// unmount ends the activation; a fetch still in flight is ignored.
func (a *analysisModel) unmount() {
	a.binding.Deactivate()
	a.formActive = false
	a.form = nil
}

func (a analysisModel) fetch(gen uint64) tea.Cmd {
	src := a.source
	timeout := a.timeout
	return func() tea.Msg {
		if src == nil {
			return analysisDataMsg{gen: gen, err: fmt.Errorf("no analysis source")}
		}
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		data, err := src.FetchAnalysis(ctx)
		return analysisDataMsg{gen: gen, data: data, err: err}
	}
}

func (a analysisModel) update(msg tea.Msg) (analysisModel, tea.Cmd) {
	if a.formActive && a.form != nil {
		return a.updateForm(msg)
	}

	switch msg := msg.(type) {
	case analysisDataMsg:
		if !a.binding.Settle(msg.gen, msg.data, msg.err) {
			return a, nil
		}
		if msg.err != nil {
			return a, func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("Load error: %v", msg.err), isError: true}
			}
		}
		a.refresh()
		return a, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Today):
			a.selector.SelectPreset(analysis.PresetToday)
		case key.Matches(msg, keys.Week):
			a.selector.SelectPreset(analysis.PresetWeek)
		case key.Matches(msg, keys.Month):
			a.selector.SelectPreset(analysis.PresetMonth)
		case key.Matches(msg, keys.Year):
			a.selector.SelectPreset(analysis.PresetYear)
		case key.Matches(msg, keys.Sales):
			a.category.Cycle()
		case key.Matches(msg, keys.PrevFund):
			if a.fundCursor > 0 {
				a.fundCursor--
			}
		case key.Matches(msg, keys.NextFund):
			if a.fundCursor < len(analysis.FundCodes(a.inputs.Errors))-1 {
				a.fundCursor++
			}
		case key.Matches(msg, keys.Range):
			return a.showRangeForm()
		case key.Matches(msg, keys.Reload):
			a.unmount()
			cmd := a.mount()
			return a, cmd
		default:
			var cmd tea.Cmd
			a.viewport, cmd = a.viewport.Update(msg)
			return a, cmd
		}
		a.refresh()
		return a, nil
	}
	return a, nil
}

func (a analysisModel) showRangeForm() (analysisModel, tea.Cmd) {
	*a.formStart, *a.formEnd = "", ""
	if r, ok := a.selector.Range(); ok {
		if !r.Start.IsZero() {
			*a.formStart = r.Start.Format(dateInputLayout)
		}
		if !r.End.IsZero() {
			*a.formEnd = r.End.Format(dateInputLayout)
		}
	}

	a.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Start date").Placeholder("YYYY-MM-DD").Value(a.formStart).Validate(validateDate),
			huh.NewInput().Title("End date").Placeholder("YYYY-MM-DD").Value(a.formEnd).Validate(validateDate),
		).Title("Date range"),
	).WithShowHelp(true).WithShowErrors(true)

	a.formActive = true
	return a, a.form.Init()
}

// validateDate accepts an empty value (missing endpoint) or YYYY-MM-DD.
func validateDate(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := time.Parse(dateInputLayout, strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("use YYYY-MM-DD")
	}
	return nil
}

func (a analysisModel) updateForm(msg tea.Msg) (analysisModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			a.formActive = false
			a.form = nil
			return a, nil
		}
	}

	// Fetch results still have to land while the picker is open.
	if dm, ok := msg.(analysisDataMsg); ok {
		var cmd tea.Cmd
		a.formActive = false
		a, cmd = a.update(dm)
		a.formActive = true
		return a, cmd
	}

	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	if a.form.State == huh.StateCompleted {
		a.formActive = false
		a.form = nil
		a.selector.SetRange(a.parseFormRange())
		a.refresh()
		return a, nil
	}

	return a, cmd
}

// parseFormRange builds the range from the picker verbatim. Ordering is
// left to the user.
func (a analysisModel) parseFormRange() analysis.DateRange {
	loc := a.now().Location()
	var r analysis.DateRange
	if t, err := time.ParseInLocation(dateInputLayout, strings.TrimSpace(*a.formStart), loc); err == nil {
		r.Start = t
	}
	if t, err := time.ParseInLocation(dateInputLayout, strings.TrimSpace(*a.formEnd), loc); err == nil {
		r.End = t
	}
	return r
}

// refresh re-derives widget inputs and redraws every chart. It runs after
// each state change.
func (a *analysisModel) refresh() {
	a.inputs = analysis.Derive(a.binding, a.selector, a.category)
	if codes := analysis.FundCodes(a.inputs.Errors); a.fundCursor >= len(codes) {
		a.fundCursor = max(0, len(codes)-1)
	}
	if a.width <= 0 {
		return
	}
	a.buildHistoryChart()
	a.buildProportionChart()
	a.buildFundSpark()
	a.viewport.SetContent(a.render())
}

func (a analysisModel) loading() bool { return a.binding.Loading() }

func (a analysisModel) view() string {
	if a.width < 20 {
		return "Terminal too small"
	}
	if a.formActive && a.form != nil {
		title := titleStyle.Render("Pick Date Range")
		hint := mutedStyle.Render("Leave a field empty to clear that end of the range.")
		return activePanelStyle.Width(a.width - 4).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, hint, "", a.form.View()),
		)
	}
	return a.viewport.View()
}
