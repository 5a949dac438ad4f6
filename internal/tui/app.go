package tui

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/fundscope/internal/export"
	"github.com/sadopc/fundscope/internal/store"
)

// App is the root Bubble Tea model.
type App struct {
	store     *store.Store
	logger    *slog.Logger
	exportDir string
	width     int
	height    int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	analysis analysisModel
	funds    fundsModel
	settings settingsModel

	help        help.Model
	status      string
	statusError bool
}

func NewApp(s *store.Store, logger *slog.Logger, exportDir string) App {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := help.New()
	h.ShowAll = false

	return App{
		store:      s,
		logger:     logger,
		exportDir:  exportDir,
		activeView: viewAnalysis,
		analysis:   newAnalysisModel(s, s.LoadPreferences, time.Now),
		funds:      newFundsModel(s),
		settings:   newSettingsModel(s),
		help:       h,
	}
}

// Init defers mounting the analysis view to the first Update, where the
// model can be mutated.
func (a App) Init() tea.Cmd {
	return func() tea.Msg { return mountMsg{} }
}

type mountMsg struct{}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case mountMsg:
		if a.activeView == viewAnalysis && !a.analysis.binding.Active() {
			return a, a.analysis.mount()
		}
		return a, nil

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.analysis.setSize(a.width, contentHeight)
		a.funds.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		// Export picker
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchView(viewAnalysis)
		case key.Matches(msg, keys.Tab2):
			return a.switchView(viewFunds)
		case key.Matches(msg, keys.Tab3):
			return a.switchView(viewSettings)
		case key.Matches(msg, keys.Tab):
			return a.switchView((a.activeView + 1) % viewState(len(viewNames)))
		}

	case analysisDataMsg:
		// Results are routed regardless of the active tab; the binding
		// drops anything from a previous activation.
		if msg.err != nil && msg.gen == a.analysis.binding.Gen() {
			a.logger.Error("analysis fetch failed", "gen", msg.gen, "err", msg.err)
		}
		var cmd tea.Cmd
		a.analysis, cmd = a.analysis.update(msg)
		return a, cmd

	case statusMsg:
		a.status = msg.text
		a.statusError = msg.isError
		return a, nil

	case exportDoneMsg:
		a.logger.Info("exported analysis data", "path", msg.path)
		a.status = "Exported to " + msg.path
		a.statusError = false
		a.exportPicking = false
		return a, nil

	case importDoneMsg:
		a.applyImportStatus(msg)
		var cmd tea.Cmd
		a.funds, cmd = a.funds.update(msg)
		return a, cmd
	}

	return a.updateActiveView(msg)
}

// switchView changes tabs. Leaving the analysis view unmounts it; entering
// it mounts a fresh activation.
func (a App) switchView(v viewState) (tea.Model, tea.Cmd) {
	if v == a.activeView {
		return a, nil
	}
	if a.activeView == viewAnalysis {
		a.analysis.unmount()
	}
	a.activeView = v
	return a, a.refreshCurrentView()
}

func (a *App) applyImportStatus(msg importDoneMsg) {
	res := msg.result
	if msg.err != nil {
		a.logger.Error("import failed", "kind", res.Kind, "err", msg.err)
		a.status = fmt.Sprintf("Import error: %v", msg.err)
		a.statusError = true
		return
	}
	for _, err := range res.Errors {
		a.logger.Warn("import row skipped", "kind", res.Kind, "err", err)
	}
	a.logger.Info("import finished", "kind", res.Kind, "imported", res.Imported, "skipped", res.Skipped)
	a.status = fmt.Sprintf("Imported %d %s rows", res.Imported, res.Kind)
	a.statusError = false
	if res.Skipped > 0 {
		a.status += fmt.Sprintf(", skipped %d", res.Skipped)
		a.statusError = true
	}
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewAnalysis:
		a.analysis, cmd = a.analysis.update(msg)
	case viewFunds:
		a.funds, cmd = a.funds.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewAnalysis:
		return a.analysis.formActive
	case viewFunds:
		return a.funds.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a *App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewAnalysis:
		return a.analysis.mount()
	case viewFunds:
		return a.funds.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewAnalysis:
		content = a.analysis.view()
	case viewFunds:
		content = a.funds.view()
	case viewSettings:
		content = a.settings.view()
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(a.height-headerHeight-footerHeight, 1)

	// Show export picker overlay
	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("fundscope")
	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusError {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	loading := ""
	if a.activeView == viewAnalysis && a.analysis.loading() {
		loading = warningStyle.Render(" ● loading")
	}

	left := footerStyle.Render(helpView)
	right := loading + status

	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

var exportFormats = []string{"CSV", "JSON"}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

// doExport writes the dataset the mounted analysis view currently holds.
func (a App) doExport(format int) tea.Cmd {
	b := a.analysis.binding
	dir := a.exportDir
	return func() tea.Msg {
		if !b.Active() {
			return statusMsg{text: "Nothing to export: open the Analysis tab first", isError: true}
		}
		if b.Loading() {
			return statusMsg{text: "Nothing to export: analysis data is not loaded", isError: true}
		}
		data := b.Data()
		now := time.Now()

		if format == 0 {
			path := export.Filename(dir, "csv", now)
			if err := export.ToCSV(data, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
			return exportDoneMsg{path: path}
		}
		path := export.Filename(dir, "json", now)
		if err := export.ToJSON(data, path); err != nil {
			return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}
