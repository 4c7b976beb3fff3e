package info

import (
	"fmt"
	"runtime"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/smartnet-labs/netscope/internal/ui/styles"
)

// Version info - can be set at build time
var (
	Version   = "0.1.0"
	BuildDate = "dev"
	GitCommit = "unknown"
)

func init() {
	if BuildDate == "dev" {
		BuildDate = time.Now().Format("2006-01-02") + "-dev"
	}
}

// View renders the info tab.
func (m *Model) View() string {
	var sections []string

	sections = append(sections, m.renderTitle())
	sections = append(sections, m.renderAccessCard())
	sections = append(sections, m.renderConfigCard())
	sections = append(sections, m.renderAboutCard())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderTitle renders the info tab title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Configuration and application information")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	cardWidth := m.width - 6
	if cardWidth < 50 {
		cardWidth = 50
	}
	if cardWidth > 80 {
		cardWidth = 80
	}
	return cardWidth
}

// renderAccessCard renders the traffic accounting access status.
func (m *Model) renderAccessCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Usage Access"))
	rows = append(rows, "")

	if m.hasAccess {
		rows = append(rows, styles.SuccessTextStyle.Render("● Granted"))
		rows = append(rows, styles.HelpStyle.Render("Per-app traffic accounting is available."))
	} else {
		rows = append(rows, styles.WarningTextStyle.Render("○ Missing"))
		if m.accessHint != "" {
			rows = append(rows, m.accessHint)
		}
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderConfigCard renders the configuration paths card.
func (m *Model) renderConfigCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Configuration"))
	rows = append(rows, "")

	if m.config != nil {
		rows = append(rows, m.renderConfigRow("Stats Database", m.config.StatsDBPath))
		rows = append(rows, m.renderConfigRow("App Catalog", m.config.CatalogPath))
		rows = append(rows, m.renderConfigRow("Log File", m.config.LogPath))
		rows = append(rows, m.renderConfigRow("Speed Test URL", m.config.SpeedTestBaseURL))
		rows = append(rows, m.renderConfigRow("Sample Interval", m.config.SampleInterval.String()))
		rows = append(rows, m.renderConfigRow("Gauge Maximum", fmt.Sprintf("%.1f MB/s", m.config.GaugeMaxMBps)))
	} else {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderConfigRow renders a configuration key-value row.
func (m *Model) renderConfigRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(18).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

// renderAboutCard renders the about/version information card.
func (m *Model) renderAboutCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("About netscope"))
	rows = append(rows, "")

	rows = append(rows, m.renderConfigRow("Version", Version))
	rows = append(rows, m.renderConfigRow("Build Date", BuildDate))
	rows = append(rows, m.renderConfigRow("Git Commit", GitCommit))
	rows = append(rows, m.renderConfigRow("Go Version", runtime.Version()))
	rows = append(rows, m.renderConfigRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)))
	rows = append(rows, "")

	appCount := len(m.state.GetUserApps())
	rows = append(rows, fmt.Sprintf("Tracked apps: %s", styles.InfoTextStyle.Render(fmt.Sprintf("%d", appCount))))

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}
