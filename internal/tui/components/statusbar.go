package components

import (
	"strings"

	"github.com/theirongolddev/fehbrank/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom status bar with key hints on the
// left and run information on the right.
func RenderStatusBar(width int, hints, info string) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Width(width)

	left := " " + hints
	right := ""
	if info != "" {
		right = info + " "
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		// Drop the right side rather than wrapping.
		right = ""
		padding = max(0, width-lipgloss.Width(left))
	}

	return style.Render(left + strings.Repeat(" ", padding) + right)
}
