package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/fehbrank/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ProgressBar renders a loading progress bar with percentage.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	barColor := t.Accent
	if pct >= 0.8 {
		barColor = t.AccentBright
	}

	filledStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	b.WriteString(filledStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(emptyStyle.Render(strings.Repeat("░", width-filled)))

	return b.String() + spaceStyle.Render(" ") + pctStyle.Render(fmt.Sprintf("%.0f%%", pct*100))
}

// CostBar renders a solid bar for value relative to the most expensive
// plan on screen. Values at or below zero render an empty bar.
func CostBar(value, maxValue float64, width int, lowConfidence bool) string {
	t := theme.Active

	pct := 0.0
	if maxValue > 0 && value > 0 {
		pct = value / maxValue
	}
	if pct > 1 {
		pct = 1
	}

	fill := t.Blue
	if lowConfidence {
		fill = t.Orange
	}
	bar := progress.New(
		progress.WithSolidFill(string(fill)),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)
	bar.Empty = ' '
	return bar.ViewAs(pct)
}
