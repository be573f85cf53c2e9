// Package browse implements the browse command: the interactive cost
// drill-down.
package browse

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"costscope/internal/config"
	"costscope/internal/costs"
	"costscope/internal/logging"
	"costscope/internal/platform"
	"costscope/internal/tui"
)

// NewBrowseCmd creates the browse command
func NewBrowseCmd() *cobra.Command {
	var exportDir string

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse costs interactively",
		Long: `Browse the cost hierarchy interactively. Teams and projects expand
on demand to show their per-app breakdown; cost data is fetched lazily
per node and period and kept warm for the session.

Keys: up/down or j/k move, enter/space expand, r refresh, tab or 1/2/3
switch period, e export CSV, q quit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			period, err := costs.ParsePeriod(config.Config.Period)
			if err != nil {
				return err
			}

			source, err := platform.NewSourceFromConfig()
			if err != nil {
				return err
			}

			// The alternate screen belongs to the TUI; keep log lines
			// out of it.
			logging.SetOutput(io.Discard)

			model := tui.New(source, period, exportDir)
			program := tea.NewProgram(model, tea.WithAltScreen())
			if _, err := program.Run(); err != nil {
				return fmt.Errorf("failed to run browser: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&exportDir, "output-dir", "reports", "Directory for in-session CSV exports")

	return cmd
}
