// Package usage provides the per-app data usage tab for the netscope TUI.
package usage

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smartnet-labs/netscope/internal/app"
	"github.com/smartnet-labs/netscope/internal/models"
	"github.com/smartnet-labs/netscope/internal/ui/components"
	"github.com/smartnet-labs/netscope/internal/ui/styles"
)

// keyMap defines the key bindings specific to the usage tab.
type keyMap struct {
	Period    key.Binding
	Transport key.Binding
	Refresh   key.Binding
}

// defaultKeyMap returns the default key bindings for the usage tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Period: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "cycle period"),
		),
		Transport: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "cycle network"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

// Model represents the usage tab state.
type Model struct {
	state   *app.AppState
	table   table.Model
	width   int
	height  int
	spinner components.LoadingSpinner
	keys    keyMap

	// accessHint holds the usage access instructions when the traffic
	// database cannot be read; empty means access is fine.
	accessHint string
}

// New creates a new usage model.
func New(state *app.AppState) *Model {
	columns := []table.Column{
		{Title: "App", Width: 30},
		{Title: "Received", Width: 12},
		{Title: "Sent", Width: 12},
		{Title: "Total", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Subtle).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Primary)
	s.Selected = s.Selected.
		Foreground(styles.TextPrimary).
		Background(styles.BgAccent).
		Bold(true)
	t.SetStyles(s)

	return &Model{
		state:   state,
		table:   t,
		spinner: components.NewSpinner("Loading usage..."),
		keys:    defaultKeyMap(),
	}
}

// SetAccessHint sets the instructions shown when usage access is missing.
func (m *Model) SetAccessHint(hint string) {
	m.accessHint = hint
}

// Init initializes the usage tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the usage tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Period):
			next := m.state.GetPeriod().Next()
			m.state.SetPeriod(next)
			return m, m.reloadCmd()

		case key.Matches(msg, m.keys.Transport):
			next := m.state.GetTransport().Next()
			m.state.SetTransport(next)
			return m, m.reloadCmd()

		default:
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			cmds = append(cmds, cmd)
		}

	case app.UsageLoadedMsg:
		m.updateTableData()
	}

	return m, tea.Batch(cmds...)
}

// reloadCmd requests a usage reload for the current selection.
func (m *Model) reloadCmd() tea.Cmd {
	return func() tea.Msg {
		return app.RefreshMsg{Resource: "usage"}
	}
}

// updateTableData updates the table with the current usage rows.
func (m *Model) updateTableData() {
	rows := m.state.GetUsage()
	tableRows := make([]table.Row, 0, len(rows))

	for _, row := range rows {
		name := row.AppName
		if row.Icon != "" {
			name = row.Icon + " " + name
		}

		tableRows = append(tableRows, table.Row{
			name,
			models.FormatBytes(int64(row.RxBytes)),
			models.FormatBytes(int64(row.TxBytes)),
			models.FormatBytes(int64(row.TotalBytes())),
		})
	}

	m.table.SetRows(tableRows)
}

// SetSize sets the available size for the usage tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	tableHeight := height - 10
	if tableHeight < 3 {
		tableHeight = 3
	}
	m.table.SetHeight(tableHeight)

	// Adjust the app column to the available width
	appWidth := width - 48
	if appWidth < 20 {
		appWidth = 20
	}
	if appWidth > 40 {
		appWidth = 40
	}

	columns := []table.Column{
		{Title: "App", Width: appWidth},
		{Title: "Received", Width: 12},
		{Title: "Sent", Width: 12},
		{Title: "Total", Width: 12},
	}
	m.table.SetColumns(columns)
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.Period,
		m.keys.Transport,
		m.keys.Refresh,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Period, m.keys.Transport},
		{m.keys.Refresh},
	}
}
