// Package components provides reusable UI components.
package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smartnet-labs/netscope/internal/logger"
	"github.com/smartnet-labs/netscope/internal/ui/styles"
)

type AnimationTickMsg time.Time

func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*50, func(t time.Time) tea.Msg {
		return AnimationTickMsg(t)
	})
}

// SpeedGauge renders the throughput meter as a progress bar with the
// current reading. Progress is the service's gauge value in [0, 1].
type SpeedGauge struct {
	progress        progress.Model
	animationFrame  int
	isAnimating     bool
	targetProgress  float64
	currentProgress float64
}

// NewSpeedGauge creates a new gauge with gradient colors.
func NewSpeedGauge() SpeedGauge {
	return NewSpeedGaugeWithWidth(30)
}

// NewSpeedGaugeWithWidth creates a gauge with a specific width.
func NewSpeedGaugeWithWidth(width int) SpeedGauge {
	p := progress.New(
		progress.WithScaledGradient("#51cf66", "#ff6b6b"),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)

	return SpeedGauge{
		progress:        p,
		animationFrame:  0,
		isAnimating:     false,
		targetProgress:  0,
		currentProgress: 0,
	}
}

// Init initializes the progress bar model.
func (g SpeedGauge) Init() tea.Cmd {
	return nil
}

// Update handles gauge animation messages.
func (g SpeedGauge) Update(msg tea.Msg) (SpeedGauge, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg.(type) {
	case AnimationTickMsg:
		if g.isAnimating {
			g.animationFrame++

			if g.currentProgress < g.targetProgress {
				step := (g.targetProgress - g.currentProgress) / 10
				if step < 0.005 {
					step = 0.005
				}
				g.currentProgress += step
				if g.currentProgress > g.targetProgress {
					g.currentProgress = g.targetProgress
				}
				cmds = append(cmds, animationTick())
			} else if g.currentProgress > g.targetProgress {
				step := (g.currentProgress - g.targetProgress) / 10
				if step < 0.005 {
					step = 0.005
				}
				g.currentProgress -= step
				if g.currentProgress < g.targetProgress {
					g.currentProgress = g.targetProgress
				}
				cmds = append(cmds, animationTick())
			} else {
				g.isAnimating = false
			}
		}
	}

	var cmd tea.Cmd
	model, cmd := g.progress.Update(msg)
	g.progress = model.(progress.Model)
	cmds = append(cmds, cmd)

	return g, tea.Batch(cmds...)
}

// SetProgress sets the gauge target in [0, 1].
func (g *SpeedGauge) SetProgress(p float64) tea.Cmd {
	g.targetProgress = p

	if !g.isAnimating {
		g.isAnimating = true
		g.animationFrame = 0
		return tea.Batch(
			g.progress.SetPercent(p),
			animationTick(),
		)
	}

	return g.progress.SetPercent(p)
}

// SetWidth sets the gauge width.
func (g *SpeedGauge) SetWidth(width int) {
	g.progress.Width = width
}

// View renders the gauge with the current reading.
func (g SpeedGauge) View(gaugeProgress, mbps, gaugeMax float64, width int) string {
	barWidth := width - 24 // Reserve space for the reading
	if barWidth < 10 {
		barWidth = 10
	}
	g.progress.Width = barWidth

	bar := g.progress.ViewAs(gaugeProgress)

	readingStyle := styles.GetSpeedStyle(mbps, gaugeMax)
	reading := readingStyle.Width(14).Align(lipgloss.Right).Render(fmt.Sprintf("%.2f MB/s", mbps))

	return lipgloss.JoinHorizontal(
		lipgloss.Center,
		bar,
		" ",
		reading,
	)
}

// ViewIdle renders an empty gauge for the idle state.
func (g SpeedGauge) ViewIdle(width int) string {
	barWidth := width - 24
	if barWidth < 10 {
		barWidth = 10
	}

	emptyBar := lipgloss.NewStyle().
		Foreground(styles.Subtle).
		Render(strings.Repeat("░", barWidth))

	reading := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Width(14).
		Align(lipgloss.Right).
		Render("— MB/s")

	return lipgloss.JoinHorizontal(
		lipgloss.Center,
		emptyBar,
		" ",
		reading,
	)
}

// RenderGradientBar renders a gauge bar with per-cell gradient colors for
// a progress value in [0, 1].
func RenderGradientBar(gaugeProgress float64, width int) string {
	if width < 1 {
		return ""
	}

	filled := int(float64(width) * gaugeProgress)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	var barChars []string
	for i := 0; i < width; i++ {
		if i < filled {
			t := float64(i) / float64(max(1, width-1))
			color := interpolateColor("#51cf66", "#ff6b6b", t)
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
			barChars = append(barChars, style.Render("█"))
		} else {
			style := lipgloss.NewStyle().Foreground(styles.Subtle)
			barChars = append(barChars, style.Render("░"))
		}
	}

	return strings.Join(barChars, "")
}

// SimpleSpeedGauge renders a one-line gauge without the progress model.
func SimpleSpeedGauge(gaugeProgress, mbps float64, label string, width int) string {
	labelWidth := len(label) + 1
	readingWidth := 12
	barWidth := width - labelWidth - readingWidth - 4

	if barWidth < 5 {
		barWidth = 5
	}

	bar := RenderGradientBar(gaugeProgress, barWidth)

	labelStr := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Render(label)

	readingStr := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		Width(readingWidth).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%.2f MB/s", mbps))

	return fmt.Sprintf("%s [%s] %s", labelStr, bar, readingStr)
}

// ConnectingBar renders a shimmer animation for the connecting state.
func ConnectingBar(width int, frame int) string {
	const readingWidth = 14

	barWidth := width - readingWidth - 2
	if barWidth < 10 {
		barWidth = 10
	}

	accentColor := styles.Primary
	cycle := 120

	t := float64(frame%cycle) / float64(cycle)
	var p float64
	if t < 0.5 {
		p = t * 2
	} else {
		p = (1 - t) * 2
	}
	eased := p * p * (3 - 2*p)
	shimmerPos := int(eased * float64(barWidth))
	var barChars []string

	for i := 0; i < barWidth; i++ {
		dist := shimmerPos - i
		if dist < 0 {
			dist = -dist
		}

		var char string
		var style lipgloss.Style

		if dist < 3 {
			char = "▓"
			style = lipgloss.NewStyle().Foreground(accentColor)
		} else if dist < 5 {
			char = "▒"
			style = lipgloss.NewStyle().Foreground(styles.TextSecondary)
		} else {
			char = "░"
			style = lipgloss.NewStyle().Foreground(styles.BgLight)
		}

		barChars = append(barChars, style.Render(char))
	}

	bar := strings.Join(barChars, "")

	dots := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	dot := dots[(frame/2)%len(dots)]

	statusStr := lipgloss.NewStyle().
		Width(readingWidth).
		Align(lipgloss.Right).
		Foreground(accentColor).
		Render(dot + " connecting")

	return lipgloss.JoinHorizontal(lipgloss.Left,
		bar,
		" ",
		statusStr,
	)
}

func interpolateColor(fromHex, toHex string, t float64) string {
	from := hexToRGB(fromHex)
	to := hexToRGB(toHex)

	r := int(float64(from[0]) + t*(float64(to[0])-float64(from[0])))
	g := int(float64(from[1]) + t*(float64(to[1])-float64(from[1])))
	b := int(float64(from[2]) + t*(float64(to[2])-float64(from[2])))

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hexToRGB(hex string) [3]int {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		logger.Error("failed to parse hex color", "hex", hex, "error", err)
		return [3]int{0, 0, 0}
	}
	return [3]int{r, g, b}
}
