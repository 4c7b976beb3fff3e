package speedtest

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/smartnet-labs/netscope/internal/models"
	"github.com/smartnet-labs/netscope/internal/ui/components"
	"github.com/smartnet-labs/netscope/internal/ui/styles"
)

// View renders the speed test tab.
func (m *Model) View() string {
	var sections []string

	sections = append(sections, m.renderTitle())
	sections = append(sections, m.renderGauge())
	sections = append(sections, m.renderStats())

	if result := m.state.GetSpeedResult(); result != nil {
		sections = append(sections, m.renderResult(result))
	}

	sections = append(sections, m.renderFooter())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderTitle renders the tab title with the measurement state.
func (m *Model) renderTitle() string {
	snap := m.state.GetSpeedSnapshot()

	title := styles.TitleStyle.Render("Speed Test")
	subtitle := styles.HelpStyle.Render("Download throughput · " + snap.State.String())

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

// renderGauge renders the live gauge for the current state.
func (m *Model) renderGauge() string {
	snap := m.state.GetSpeedSnapshot()

	cardWidth := m.width - 6
	if cardWidth < 50 {
		cardWidth = 50
	}
	innerWidth := cardWidth - 6

	var body string
	switch snap.State {
	case models.SpeedTestConnecting:
		body = components.ConnectingBar(innerWidth, m.connectingFrame)
	case models.SpeedTestRunning:
		body = m.gauge.View(snap.GaugeProgress, snap.CurrentMBps, gaugeMax(snap), innerWidth)
	default:
		body = m.gauge.ViewIdle(innerWidth)
	}

	rows := []string{body}

	if snap.PeakMBps > 0 {
		scale := gaugeMax(snap)
		peakProgress := snap.PeakMBps / scale
		if peakProgress > 1 {
			peakProgress = 1
		}
		rows = append(rows, "")
		rows = append(rows, components.SimpleSpeedGauge(peakProgress, snap.PeakMBps, "Peak", innerWidth))
	}

	if len(m.samples) > 1 {
		rows = append(rows, "")
		rows = append(rows, components.RenderSparkline(m.samples, innerWidth))
	}

	return styles.GaugeCardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderStats renders the current, peak and ping readouts.
func (m *Model) renderStats() string {
	snap := m.state.GetSpeedSnapshot()

	ping := "—"
	if snap.PingMs > 0 {
		ping = fmt.Sprintf("%d ms", snap.PingMs)
	}

	stats := []string{
		m.renderStat("Current", fmt.Sprintf("%.2f MB/s", snap.CurrentMBps)),
		m.renderStat("Peak", fmt.Sprintf("%.2f MB/s", snap.PeakMBps)),
		m.renderStat("Ping", ping),
	}

	return lipgloss.NewStyle().MarginTop(1).Render(
		lipgloss.JoinHorizontal(lipgloss.Top, stats...),
	)
}

func (m *Model) renderStat(label, value string) string {
	return lipgloss.NewStyle().MarginRight(4).Render(
		lipgloss.JoinVertical(lipgloss.Center,
			styles.HelpStyle.Render(label),
			lipgloss.NewStyle().Bold(true).Render(value),
		),
	)
}

// renderResult renders the summary card of the last finished run.
func (m *Model) renderResult(result *models.SpeedResult) string {
	cardWidth := m.width - 6
	if cardWidth < 50 {
		cardWidth = 50
	}

	ping := "—"
	if result.PingMs > 0 {
		ping = fmt.Sprintf("%d ms", result.PingMs)
	}

	rows := []string{
		styles.CardTitleStyle.Render("Last Result"),
		"",
		fmt.Sprintf("  Average    %s", styles.SuccessTextStyle.Render(fmt.Sprintf("%.2f MB/s", result.AverageMBps))),
		fmt.Sprintf("  Peak       %.2f MB/s", result.PeakMBps),
		fmt.Sprintf("  Ping       %s", ping),
		fmt.Sprintf("  Downloaded %s in %.1fs", models.FormatBytes(result.TotalBytes), result.Seconds),
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderFooter renders the start/stop control and shortcuts.
func (m *Model) renderFooter() string {
	snap := m.state.GetSpeedSnapshot()

	buttonStyle := styles.ButtonActiveStyle
	if snap.State == models.SpeedTestConnecting {
		buttonStyle = styles.ButtonInactiveStyle
	}
	button := buttonStyle.Render(" " + snap.State.ButtonText() + " ")

	shortcuts := styles.HelpKeyStyle.Render("Enter") + " start/stop" +
		styles.HelpSeparatorStyle.Render(" | ") +
		styles.HelpKeyStyle.Render("↑/↓") + " scroll"

	return lipgloss.NewStyle().
		MarginTop(1).
		Render(lipgloss.JoinVertical(lipgloss.Left,
			button,
			"",
			lipgloss.NewStyle().Foreground(styles.TextMuted).Render(shortcuts),
		))
}
