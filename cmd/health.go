package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/liftoff/internal/model"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the launch backend is up",
	Long: `Calls GET /health on the API host (not under the base path) and prints the
backend status, its database status and version.`,
	Example: `  liftoff health
  liftoff health --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()
		if err := deps.Config.Validate(); err != nil {
			return err
		}
		start := time.Now()
		h, err := deps.Client.Health(cmd.Context())
		if err != nil {
			return err
		}
		return emit(cmd, deps, newResult(model.KindHealth, "health", h, 1, start))
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
