package charts

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/smartnet-labs/netscope/internal/app"
	"github.com/smartnet-labs/netscope/internal/models"
	"github.com/smartnet-labs/netscope/internal/ui/components"
	"github.com/smartnet-labs/netscope/internal/ui/styles"
)

// View renders the charts tab.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return m.renderLoading()
	}

	var sections []string

	sections = append(sections, m.renderTitle())
	sections = append(sections, m.renderChart())
	sections = append(sections, m.renderRecentDays())
	sections = append(sections, m.renderFooter())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderLoading renders the loading state.
func (m *Model) renderLoading() string {
	return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
}

// renderTitle renders the charts title with the active series selection.
func (m *Model) renderTitle() string {
	kind, _, series := m.state.GetSeries()

	title := styles.TitleStyle.Render("Usage Charts")

	subtitle := fmt.Sprintf("%s · %s · %s",
		m.kindLabel(kind),
		series.Summary.Month,
		series.Summary.Total,
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		styles.HelpStyle.Render(subtitle),
		"",
	)
}

// kindLabel returns the display label for the active series variant.
func (m *Model) kindLabel(kind app.SeriesKind) string {
	switch kind {
	case app.SeriesNetworkType:
		transport := m.state.GetTransport()
		return styles.GetTransportStyle(transport.String()).Render(transport.String())
	case app.SeriesApp:
		if picked, ok := m.state.GetSelectedApp(); ok {
			name := picked.Label
			if picked.Icon != "" {
				name = picked.Icon + " " + name
			}
			return name
		}
		return "No apps installed"
	default:
		return "All networks"
	}
}

// renderChart renders the daily MB line chart for the current month.
func (m *Model) renderChart() string {
	kind, offset, series := m.state.GetSeries()

	cardWidth := m.width - 6
	if cardWidth < 50 {
		cardWidth = 50
	}
	chartWidth := cardWidth - 12
	chartHeight := m.height / 3
	if chartHeight < 6 {
		chartHeight = 6
	}

	caption := "MB per day"

	var rows []string

	if kind == app.SeriesNetworkType {
		cellular, wifi := m.cachedNetworkPoints(offset)
		rows = append(rows, components.RenderDualLineChart(cellular, wifi, chartWidth, chartHeight, caption))
		rows = append(rows, "")
		rows = append(rows, components.RenderLegend([]components.LegendItem{
			{Label: "Cellular", Color: components.ChartCellularColor},
			{Label: "Wi-Fi", Color: components.ChartWifiColor},
		}))
	} else {
		rows = append(rows, components.RenderLineChart(series.PointsMB, chartWidth, chartHeight, caption))
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// cachedNetworkPoints returns the per-network lines for the offset. The line
// for a network not yet loaded this month is empty.
func (m *Model) cachedNetworkPoints(offset int) (cellular, wifi []float64) {
	if c, ok := m.networkCache[models.TransportCellular]; ok && c.monthOffset == offset {
		cellular = c.points
	}
	if w, ok := m.networkCache[models.TransportWifi]; ok && w.monthOffset == offset {
		wifi = w.points
	}
	return cellular, wifi
}

// renderRecentDays renders a bar chart of the last days of the series.
func (m *Model) renderRecentDays() string {
	_, _, series := m.state.GetSeries()

	points := series.PointsMB
	if len(points) == 0 {
		return ""
	}

	const recentDays = 7
	start := len(points) - recentDays
	if start < 0 {
		start = 0
	}

	values := points[start:]
	labels := make([]string, len(values))
	for i := range values {
		labels[i] = fmt.Sprintf("Day %d", start+i+1)
	}

	cardWidth := m.width - 6
	if cardWidth < 50 {
		cardWidth = 50
	}

	sparkWidth := cardWidth - 6
	if sparkWidth > len(points) {
		sparkWidth = len(points)
	}

	rows := []string{
		styles.CardTitleStyle.Render("Recent Days (MB)"),
		"",
		"Month  " + components.RenderColoredSparkline(points, sparkWidth),
		"",
		components.RenderBarChart(values, labels, cardWidth-6),
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderFooter renders the footer with keyboard shortcuts.
func (m *Model) renderFooter() string {
	kind, _, _ := m.state.GetSeries()

	shortcuts := []string{
		styles.HelpKeyStyle.Render("←/→") + " month",
		styles.HelpKeyStyle.Render("s") + " series",
	}

	switch kind {
	case app.SeriesNetworkType:
		shortcuts = append(shortcuts, styles.HelpKeyStyle.Render("t")+" network")
	case app.SeriesApp:
		shortcuts = append(shortcuts, styles.HelpKeyStyle.Render("j/k")+" app")
	}

	shortcuts = append(shortcuts, styles.HelpKeyStyle.Render("r")+" refresh")

	footer := ""
	for i, s := range shortcuts {
		if i > 0 {
			footer += styles.HelpSeparatorStyle.Render(" | ")
		}
		footer += s
	}

	return lipgloss.NewStyle().
		MarginTop(1).
		Foreground(styles.TextMuted).
		Render(footer)
}
