// Package charts provides the daily usage chart tab for the netscope TUI.
package charts

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smartnet-labs/netscope/internal/app"
	"github.com/smartnet-labs/netscope/internal/models"
	"github.com/smartnet-labs/netscope/internal/ui/components"
)

// maxMonthsBack bounds how far the month navigation can go. Together with
// the current month this spans the year of samples the traffic store
// retains.
const maxMonthsBack = 11

// keyMap defines the key bindings specific to the charts tab.
type keyMap struct {
	PrevMonth key.Binding
	NextMonth key.Binding
	Kind      key.Binding
	NextApp   key.Binding
	PrevApp   key.Binding
	Transport key.Binding
	Refresh   key.Binding
}

// defaultKeyMap returns the default key bindings for the charts tab.
func defaultKeyMap() keyMap {
	return keyMap{
		PrevMonth: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "previous month"),
		),
		NextMonth: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next month"),
		),
		Kind: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "cycle series"),
		),
		NextApp: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j", "next app"),
		),
		PrevApp: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k", "prev app"),
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

// transportSeries caches the last loaded per-network points so both lines
// can be drawn together once each network was loaded for the same month.
type transportSeries struct {
	monthOffset int
	points      []float64
}

// Model represents the charts tab state.
type Model struct {
	state    *app.AppState
	spinner  components.LoadingSpinner
	keys     keyMap
	viewport viewport.Model
	width    int
	height   int

	networkCache map[models.Transport]transportSeries
}

// New creates a new charts model.
func New(state *app.AppState) *Model {
	return &Model{
		state:        state,
		spinner:      components.NewSpinner("Loading charts..."),
		keys:         defaultKeyMap(),
		viewport:     viewport.New(0, 0),
		networkCache: make(map[models.Transport]transportSeries),
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Init()
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case app.SeriesLoadedMsg:
		if msg.Kind == app.SeriesNetworkType {
			m.networkCache[m.state.GetTransport()] = transportSeries{
				monthOffset: msg.MonthOffset,
				points:      msg.Series.PointsMB,
			}
		}

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(msg))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	kind, _, _ := m.state.GetSeries()

	switch {
	case key.Matches(msg, m.keys.PrevMonth):
		offset := m.state.GetMonthOffset()
		if offset > -maxMonthsBack {
			m.state.SetMonthOffset(offset - 1)
			return m.reloadCmd()
		}

	case key.Matches(msg, m.keys.NextMonth):
		offset := m.state.GetMonthOffset()
		if offset < 0 {
			m.state.SetMonthOffset(offset + 1)
			return m.reloadCmd()
		}

	case key.Matches(msg, m.keys.Kind):
		m.state.SetSeriesKind(nextKind(kind))
		return m.reloadCmd()

	case key.Matches(msg, m.keys.NextApp):
		if kind == app.SeriesApp {
			return m.cycleApp(1)
		}

	case key.Matches(msg, m.keys.PrevApp):
		if kind == app.SeriesApp {
			return m.cycleApp(-1)
		}

	case key.Matches(msg, m.keys.Transport):
		if kind == app.SeriesNetworkType {
			m.state.SetTransport(m.state.GetTransport().Next())
			return m.reloadCmd()
		}

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	return nil
}

// nextKind cycles total -> per-network -> per-app.
func nextKind(kind app.SeriesKind) app.SeriesKind {
	switch kind {
	case app.SeriesTotal:
		return app.SeriesNetworkType
	case app.SeriesNetworkType:
		return app.SeriesApp
	default:
		return app.SeriesTotal
	}
}

func (m *Model) cycleApp(step int) tea.Cmd {
	apps := m.state.GetUserApps()
	if len(apps) == 0 {
		return nil
	}

	idx := m.state.GetSelectedAppIndex()
	idx = (idx + step + len(apps)) % len(apps)
	m.state.SetSelectedAppIndex(idx)
	return m.reloadCmd()
}

// reloadCmd requests a series reload for the current selection.
func (m *Model) reloadCmd() tea.Cmd {
	return func() tea.Msg {
		return app.RefreshMsg{Resource: "series"}
	}
}

// SetSize sets the available size for the charts tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.PrevMonth,
		m.keys.NextMonth,
		m.keys.Kind,
		m.keys.Refresh,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.PrevMonth, m.keys.NextMonth},
		{m.keys.Kind, m.keys.Transport},
		{m.keys.NextApp, m.keys.PrevApp},
		{m.keys.Refresh},
	}
}
