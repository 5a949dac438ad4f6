package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/fundscope/internal/importer"
	"github.com/sadopc/fundscope/internal/store"
)

type fundsModel struct {
	store  *store.Store
	width  int
	height int

	funds  []store.Fund
	cursor int

	formActive bool
	form       *huh.Form

	// Form field pointers (survive value copies)
	formKind *string
	formPath *string
}

func newFundsModel(s *store.Store) fundsModel {
	kind, path := string(importer.KindFunds), ""
	return fundsModel{
		store:    s,
		formKind: &kind,
		formPath: &path,
	}
}

func (f *fundsModel) setSize(w, h int) {
	f.width = w
	f.height = h
}

type fundsDataMsg struct {
	funds []store.Fund
	err   error
}

func (f fundsModel) refresh() tea.Cmd {
	s := f.store
	return func() tea.Msg {
		funds, err := s.ListFunds(false)
		return fundsDataMsg{funds: funds, err: err}
	}
}

func (f fundsModel) update(msg tea.Msg) (fundsModel, tea.Cmd) {
	if f.formActive && f.form != nil {
		return f.updateForm(msg)
	}

	switch msg := msg.(type) {
	case fundsDataMsg:
		if msg.err != nil {
			return f, func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("Load error: %v", msg.err), isError: true}
			}
		}
		f.funds = msg.funds
		if f.cursor >= len(f.funds) {
			f.cursor = max(0, len(f.funds)-1)
		}
		return f, nil

	case importDoneMsg:
		return f, f.refresh()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if f.cursor > 0 {
				f.cursor--
			}
		case key.Matches(msg, keys.Down):
			if f.cursor < len(f.funds)-1 {
				f.cursor++
			}
		case key.Matches(msg, keys.Import):
			return f.showImportForm()
		case key.Matches(msg, keys.Archive):
			if len(f.funds) > 0 {
				return f, f.archive(f.funds[f.cursor].Code)
			}
		}
	}
	return f, nil
}

func (f fundsModel) archive(code string) tea.Cmd {
	s := f.store
	return func() tea.Msg {
		if err := s.ArchiveFund(code); err != nil {
			return statusMsg{text: fmt.Sprintf("Archive error: %v", err), isError: true}
		}
		funds, err := s.ListFunds(false)
		return fundsDataMsg{funds: funds, err: err}
	}
}

func (f fundsModel) showImportForm() (fundsModel, tea.Cmd) {
	*f.formPath = ""

	kindOptions := make([]huh.Option[string], len(importer.Kinds))
	for i, k := range importer.Kinds {
		kindOptions[i] = huh.NewOption(string(k), string(k))
	}

	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("File kind").Options(kindOptions...).Value(f.formKind),
			huh.NewInput().Title("CSV path").Placeholder("~/funds.csv").Value(f.formPath).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("path is required")
					}
					return nil
				}),
		),
	).WithShowHelp(true).WithShowErrors(true)

	f.formActive = true
	return f, f.form.Init()
}

func (f fundsModel) updateForm(msg tea.Msg) (fundsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			f.formActive = false
			f.form = nil
			return f, nil
		}
	}

	form, cmd := f.form.Update(msg)
	if fm, ok := form.(*huh.Form); ok {
		f.form = fm
	}

	if f.form.State == huh.StateCompleted {
		f.formActive = false
		f.form = nil
		return f, importCmd(f.store, importer.Kind(*f.formKind), expandHome(strings.TrimSpace(*f.formPath)))
	}

	return f, cmd
}

func importCmd(s *store.Store, kind importer.Kind, path string) tea.Cmd {
	return func() tea.Msg {
		res, err := importer.File(s, kind, path)
		return importDoneMsg{result: res, err: err}
	}
}

func (f fundsModel) view() string {
	w := f.width - 4

	if f.formActive && f.form != nil {
		title := titleStyle.Render("Import CSV")
		hint := mutedStyle.Render("funds: code,name,type,channel  nav: code,date,nav  predictions: code,date,predicted,actual")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, hint, "", f.form.View()),
		)
	}

	title := titleStyle.Render("Funds")

	if len(f.funds) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No funds yet. Press i to import a CSV."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	header := mutedStyle.Render(fmt.Sprintf("  %-3s %-10s %-28s %-14s %-8s", "", "Code", "Name", "Type", "Channel"))
	rows = append(rows, header)

	for i, fund := range f.funds {
		dot := lipgloss.NewStyle().Foreground(seriesColor(i)).Render("●")
		cursor := "  "
		style := normalItemStyle
		if i == f.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		channel := accentStyle.Render(fund.Channel)
		row := style.Render(fmt.Sprintf("%s%s %-10s %-28s %-14s",
			cursor, dot, truncate(fund.Code, 10), truncate(fund.Name, 28), truncate(fund.FundType, 14)))
		rows = append(rows, row+" "+channel)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  i: import  d: archive"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
