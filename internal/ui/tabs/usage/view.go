package usage

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/smartnet-labs/netscope/internal/models"
	"github.com/smartnet-labs/netscope/internal/ui/components"
	"github.com/smartnet-labs/netscope/internal/ui/styles"
)

// View renders the usage tab.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return m.renderLoading()
	}

	var sections []string

	sections = append(sections, m.renderTitle())

	if m.accessHint != "" {
		sections = append(sections, m.renderAccessHint())
	} else {
		sections = append(sections, m.renderTable())
	}

	sections = append(sections, m.renderFooter())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

// renderLoading renders the loading state.
func (m *Model) renderLoading() string {
	return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
}

// renderTitle renders the usage tab title with the active period and network.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Data Usage")

	period := m.state.GetPeriod()
	transport := m.state.GetTransport()

	selection := fmt.Sprintf("%s · %s",
		styles.GetTransportStyle(transport.String()).Render(transport.String()),
		period.String(),
	)

	total := styles.HelpStyle.Render(
		fmt.Sprintf("Total: %s", models.FormatBytes(int64(m.state.UsageTotal()))),
	)

	return lipgloss.JoinVertical(lipgloss.Left, title, selection, total, "")
}

// renderTable renders the per-app usage table.
func (m *Model) renderTable() string {
	rows := m.state.GetUsage()

	if len(rows) == 0 {
		return m.renderEmptyState()
	}

	m.updateTableData()

	cardWidth := m.width - 6
	if cardWidth < 60 {
		cardWidth = 60
	}

	return styles.CardStyle.Width(cardWidth).Render(m.table.View())
}

// renderEmptyState renders the empty state when no usage was recorded.
func (m *Model) renderEmptyState() string {
	cardWidth := m.width - 6
	if cardWidth < 40 {
		cardWidth = 40
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		styles.SubTitleStyle.Render("No Data Recorded"),
		"",
		styles.HelpStyle.Render("No traffic was recorded for this period and network."),
		"",
		styles.InfoTextStyle.Render("Press 'p' to change the period or 't' to change the network"),
		"",
	)

	return styles.CardStyle.Width(cardWidth).Render(content)
}

// renderAccessHint renders the instructions shown when usage access is missing.
func (m *Model) renderAccessHint() string {
	cardWidth := m.width - 10
	if cardWidth < 50 {
		cardWidth = 50
	}
	if cardWidth > 80 {
		cardWidth = 80
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.WarningTextStyle.Bold(true).Render("Usage Access Required"),
		"",
		m.accessHint,
	)

	return styles.ModalContentStyle.Width(cardWidth).Render(content)
}

// renderFooter renders the footer with keyboard shortcuts.
func (m *Model) renderFooter() string {
	shortcuts := []string{
		styles.HelpKeyStyle.Render("p") + " period",
		styles.HelpKeyStyle.Render("t") + " network",
		styles.HelpKeyStyle.Render("r") + " refresh",
		styles.HelpKeyStyle.Render("↑/↓") + " scroll",
	}

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
