package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Today    key.Binding
	Week     key.Binding
	Month    key.Binding
	Year     key.Binding
	Range    key.Binding
	Sales    key.Binding
	Reload   key.Binding
	PrevFund key.Binding
	NextFund key.Binding
	Import   key.Binding
	Archive  key.Binding
	Export   key.Binding
	Tab1     key.Binding
	Tab2     key.Binding
	Tab3     key.Binding
	Tab      key.Binding
	Help     key.Binding
	Enter    key.Binding
	Back     key.Binding
	Up       key.Binding
	Down     key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Today: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "today"),
	),
	Week: key.NewBinding(
		key.WithKeys("w"),
		key.WithHelp("w", "week"),
	),
	Month: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "month"),
	),
	Year: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "year"),
	),
	Range: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "pick range"),
	),
	Sales: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "sales type"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	PrevFund: key.NewBinding(
		key.WithKeys("["),
		key.WithHelp("[", "prev fund"),
	),
	NextFund: key.NewBinding(
		key.WithKeys("]"),
		key.WithHelp("]", "next fund"),
	),
	Import: key.NewBinding(
		key.WithKeys("i"),
		key.WithHelp("i", "import"),
	),
	Archive: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "archive"),
	),
	Export: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "export"),
	),
	Tab1: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "analysis"),
	),
	Tab2: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "funds"),
	),
	Tab3: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "settings"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Year, k.Range, k.Sales, k.Reload, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Today, k.Week, k.Month, k.Year, k.Range},
		{k.Sales, k.PrevFund, k.NextFund, k.Reload},
		{k.Import, k.Archive, k.Export},
		{k.Tab1, k.Tab2, k.Tab3, k.Tab},
		{k.Up, k.Down, k.Enter, k.Back, k.Quit},
	}
}
