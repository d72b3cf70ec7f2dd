package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/liftoff/internal/model"
)

var statsServer bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show summary cards over every launch",
	Long: `Counts launches by status and computes the success rate as
round(100 * success / (success + failed)). Stats always cover the full
launch set; filters do not apply.

With --server the backend's own /launches/stats payload is shown instead.`,
	Example: `  liftoff stats
  liftoff stats --format json
  liftoff stats --offline
  liftoff stats --server`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		start := time.Now()
		if statsServer {
			if err := deps.Config.Validate(); err != nil {
				return err
			}
			s, err := deps.Client.GetServerStats(cmd.Context())
			if err != nil {
				return err
			}
			return emit(cmd, deps, newResult(model.KindStats, "stats --server", s, s.Total, start))
		}

		d, err := loadDashboard(cmd.Context(), deps)
		if err != nil {
			return err
		}
		snap := d.Snapshot()
		result := newResult(model.KindStats, "stats", snap.Stats, snap.Stats.Total, start)
		markSource(result, snap)
		return emit(cmd, deps, result)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&statsServer, "server", false, "show the backend-computed stats")
}
