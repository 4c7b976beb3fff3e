// Package speedtest provides the throughput measurement tab for the
// netscope TUI.
package speedtest

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smartnet-labs/netscope/internal/app"
	"github.com/smartnet-labs/netscope/internal/models"
	"github.com/smartnet-labs/netscope/internal/services"
	"github.com/smartnet-labs/netscope/internal/ui/components"
)

// defaultGaugeMaxMBps is the gauge scale used until a snapshot lets us
// derive the configured maximum.
const defaultGaugeMaxMBps = 25.0

// maxSampleHistory bounds the sparkline ring of recent samples.
const maxSampleHistory = 120

// keyMap defines the key bindings specific to the speed test tab.
type keyMap struct {
	Toggle key.Binding
	Up     key.Binding
	Down   key.Binding
}

// defaultKeyMap returns the default key bindings for the speed test tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Toggle: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "start/stop test"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// Model represents the speed test tab state.
type Model struct {
	state    *app.AppState
	keys     keyMap
	viewport viewport.Model
	gauge    components.SpeedGauge
	width    int
	height   int

	// samples holds recent MB/s readings of the running test for the
	// sparkline. Cleared when a new test starts.
	samples []float64

	// connectingFrame drives the shimmer while the handshake runs.
	connectingFrame int
}

// New creates a new speed test model.
func New(state *app.AppState) *Model {
	return &Model{
		state:    state,
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
		gauge:    components.NewSpeedGauge(),
	}
}

// Init initializes the speed test tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the speed test tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case app.ServiceEventMsg:
		if sample, ok := msg.Event.(services.SpeedSampleEvent); ok {
			cmds = append(cmds, m.applySample(sample.Snapshot))
		}

	case app.SpeedSnapshotMsg:
		cmds = append(cmds, m.applySample(msg.Snapshot))

	case app.SpeedResultMsg:
		// The averages live in state; drop the in-flight sparkline tail.
		cmds = append(cmds, m.gauge.SetProgress(0))

	case components.AnimationTickMsg:
		m.connectingFrame++
		var cmd tea.Cmd
		m.gauge, cmd = m.gauge.Update(msg)
		cmds = append(cmds, cmd)

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.gauge, cmd = m.gauge.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(msg))
	}

	return m, tea.Batch(cmds...)
}

// applySample feeds one snapshot into the gauge and the sparkline ring.
func (m *Model) applySample(snap models.SpeedSnapshot) tea.Cmd {
	switch snap.State {
	case models.SpeedTestRunning:
		m.samples = append(m.samples, snap.CurrentMBps)
		if len(m.samples) > maxSampleHistory {
			m.samples = m.samples[len(m.samples)-maxSampleHistory:]
		}
	case models.SpeedTestConnecting:
		m.samples = nil
	}

	return m.gauge.SetProgress(snap.GaugeProgress)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Toggle):
		return m.toggleCmd()

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
}

// toggleCmd starts or stops the measurement depending on the current state.
func (m *Model) toggleCmd() tea.Cmd {
	snap := m.state.GetSpeedSnapshot()

	switch snap.State {
	case models.SpeedTestIdle:
		m.samples = nil
		return func() tea.Msg { return app.StartSpeedTestMsg{} }
	default:
		return func() tea.Msg { return app.StopSpeedTestMsg{} }
	}
}

// gaugeMax derives the gauge scale from a snapshot, falling back to the
// default when the gauge is at rest.
func gaugeMax(snap models.SpeedSnapshot) float64 {
	if snap.GaugeProgress > 0 && snap.CurrentMBps > 0 {
		return snap.CurrentMBps / snap.GaugeProgress
	}
	return defaultGaugeMaxMBps
}

// SetSize sets the available size for the speed test tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height

	gaugeWidth := width - 30
	if gaugeWidth < 20 {
		gaugeWidth = 20
	}
	m.gauge.SetWidth(gaugeWidth)
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.Toggle,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Toggle},
		{m.keys.Up, m.keys.Down},
	}
}
