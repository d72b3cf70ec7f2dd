package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/derickschaefer/liftoff/internal/app"
	"github.com/derickschaefer/liftoff/internal/pipeline"
	"github.com/derickschaefer/liftoff/internal/tui"
)

var dashCmd = &cobra.Command{
	Use:   "dash",
	Short: "Open the interactive launch dashboard",
	Long: `Opens a full-screen dashboard with stats cards and three tabs: Table,
Charts and Timeline. The last cached batch is shown immediately while a fresh
fetch runs in the background.

Keys:
  ←/→        switch tab
  1-4        sort by flight, mission, date, status (again to flip)
  n/p g/G    next/previous, first/last page
  /          edit filters (search, status, from, to)
  c          clear filters
  s          sync the backend, then refetch
  r          refetch
  q          quit

Logs are written to liftoff.log next to the database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !pipeline.IsTTY() {
			return fmt.Errorf("dash needs an interactive terminal; use 'liftoff launches list' in scripts")
		}
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()
		if deps.Config.Offline {
			return fmt.Errorf("dash always fetches; drop --offline (cached launches are shown while it loads)")
		}
		if err := deps.Config.Validate(); err != nil {
			return err
		}
		if err := deps.OpenLogFile(); err != nil {
			return err
		}

		d := deps.NewDashboard()
		if _, err := d.Restore(); err != nil {
			deps.Logger.Warn("restoring cached launches", "err", err)
		}
		deps.Logger.Info("dashboard started", "api", deps.Client.BaseURL(), "log", app.LogPath(deps.Config))

		program := tea.NewProgram(tui.NewModel(cmd.Context(), d), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run dashboard: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dashCmd)
}
