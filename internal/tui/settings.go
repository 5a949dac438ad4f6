package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/fundscope/internal/analysis"
	"github.com/sadopc/fundscope/internal/store"
)

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	defaultPreset    *string
	defaultSalesType *string
	weekStart        *string
	fetchTimeout     *string
}

func newSettingsModel(s *store.Store) settingsModel {
	dp, ds, ws, ft := "", "", "", ""
	return settingsModel{
		store:            s,
		defaultPreset:    &dp,
		defaultSalesType: &ds,
		weekStart:        &ws,
		fetchTimeout:     &ft,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	st := s.store
	return func() tea.Msg {
		settings, _ := st.GetAllSettings()
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Enter) {
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	p := s.store.LoadPreferences()
	*s.defaultPreset = p.DefaultPreset
	*s.defaultSalesType = p.DefaultSalesType
	*s.weekStart = p.WeekStart
	*s.fetchTimeout = strconv.Itoa(int(p.FetchTimeout / time.Second))

	presetOptions := make([]huh.Option[string], len(analysis.Presets))
	for i, pr := range analysis.Presets {
		presetOptions[i] = huh.NewOption(pr.Label(), string(pr))
	}
	salesOptions := make([]huh.Option[string], len(analysis.SalesTypes))
	for i, st := range analysis.SalesTypes {
		salesOptions[i] = huh.NewOption(st.Label(), string(st))
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Default range").Options(presetOptions...).Value(s.defaultPreset),
			huh.NewSelect[string]().Title("Default sales type").Options(salesOptions...).Value(s.defaultSalesType),
			huh.NewSelect[string]().Title("Week starts on").
				Options(
					huh.NewOption("Monday", "monday"),
					huh.NewOption("Sunday", "sunday"),
				).Value(s.weekStart),
		).Title("Analysis"),
		huh.NewGroup(
			huh.NewInput().Title("Fetch timeout (sec)").Value(s.fetchTimeout).Validate(validateSeconds),
		).Title("Data"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func validateSeconds(v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a positive number of seconds")
	}
	return nil
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.form = nil
		if err := s.saveSettings(); err != nil {
			return s, func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("Settings error: %v", err), isError: true}
			}
		}
		return s, tea.Batch(s.refresh(), func() tea.Msg {
			return statusMsg{text: "Settings saved; applied on next reload"}
		})
	}

	return s, cmd
}

func (s settingsModel) saveSettings() error {
	secs, _ := strconv.Atoi(strings.TrimSpace(*s.fetchTimeout))
	return s.store.SavePreferences(store.Preferences{
		DefaultPreset:    *s.defaultPreset,
		DefaultSalesType: *s.defaultSalesType,
		WeekStart:        *s.weekStart,
		FetchTimeout:     time.Duration(max(secs, 1)) * time.Second,
	})
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	switch k {
	case "default_preset":
		if p, ok := analysis.ParsePreset(v); ok {
			return p.Label()
		}
	case "default_sales_type":
		if st, ok := analysis.ParseSalesType(v); ok {
			return st.Label()
		}
	case "fetch_timeout":
		if secs, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("%d sec", secs)
		}
	}
	return v
}
