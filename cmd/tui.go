package cmd

import (
	"fmt"

	"github.com/theirongolddev/fehbrank/internal/pipeline"
	"github.com/theirongolddev/fehbrank/internal/tui"
	"github.com/theirongolddev/fehbrank/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive ranking TUI",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	theme.SetActive(s.cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	app := tui.NewApp(tui.Options{
		Query:     s.query,
		AddOnSpec: s.addOnSpec,
		Estimator: s.estimator,
		Load: func(progressFn pipeline.ProgressFunc) (*pipeline.LoadResult, error) {
			return loadDataWith(s.dataPath, progressFn, true)
		},
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
