package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/liftoff/internal/analyze"
	"github.com/derickschaefer/liftoff/internal/chart"
	"github.com/derickschaefer/liftoff/internal/model"
	"github.com/derickschaefer/liftoff/internal/pipeline"
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render launch aggregates as ASCII charts",
	Long: `Chart commands aggregate the full launch set and render to the terminal.

By default the launches are fetched from the API (or the cache with
--offline). With --stdin they are read as JSONL instead, so any filtered
list can be charted:

  liftoff launches list --status success --all --format jsonl | liftoff chart years --stdin`,
}

var (
	chartStdin  bool
	chartWidth  int
	chartHeight int
	chartTitle  string
)

// chartLaunches reads launches from stdin with --stdin, or loads the full batch.
func chartLaunches(ctx context.Context) ([]model.Launch, error) {
	if chartStdin {
		if !pipeline.StdinIsPiped() {
			return nil, fmt.Errorf("--stdin expects JSONL launches on a pipe, e.g. liftoff launches list --all --format jsonl | liftoff chart status --stdin")
		}
		return pipeline.ReadLaunches(os.Stdin)
	}
	deps, err := buildDeps()
	if err != nil {
		return nil, err
	}
	defer deps.Close()
	d, err := loadDashboard(ctx, deps)
	if err != nil {
		return nil, err
	}
	return d.Snapshot().Records, nil
}

// ─── chart status ─────────────────────────────────────────────────────────────

var chartStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Horizontal bars, one per launch status",
	Example: `  liftoff chart status
  liftoff chart status --width 60`,
	RunE: func(cmd *cobra.Command, args []string) error {
		launches, err := chartLaunches(cmd.Context())
		if err != nil {
			return err
		}
		return chart.StatusBars(cmd.OutOrStdout(), analyze.StatusDistribution(launches),
			chart.BarOptions{Width: chartWidth})
	},
}

// ─── chart years ──────────────────────────────────────────────────────────────

var chartYearsCmd = &cobra.Command{
	Use:   "years",
	Short: "Stacked bars of success, failed and upcoming launches per year",
	Long: `One stacked bar per calendar year (UTC). Launches without a valid date
are grouped under N/A. Unknown-status launches are not counted.`,
	Example: `  liftoff chart years
  liftoff launches list --search falcon --all --format jsonl | liftoff chart years --stdin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		launches, err := chartLaunches(cmd.Context())
		if err != nil {
			return err
		}
		return chart.YearBars(cmd.OutOrStdout(), analyze.LaunchesByYear(launches),
			chart.BarOptions{Width: chartWidth})
	},
}

// ─── chart success ────────────────────────────────────────────────────────────

var chartSuccessCmd = &cobra.Command{
	Use:   "success",
	Short: "Cumulative successful launches over time",
	Example: `  liftoff chart success
  liftoff chart success --height 16 --title "Successes"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		launches, err := chartLaunches(cmd.Context())
		if err != nil {
			return err
		}
		points := analyze.CumulativeSuccess(launches)
		if len(points) < 2 {
			return fmt.Errorf("chart success: need at least 2 dated successful launches, got %d", len(points))
		}
		title := chartTitle
		if title == "" {
			title = "Cumulative successful launches"
		}
		return chart.Plot(cmd.OutOrStdout(), points, chart.PlotOptions{
			Width:   chartWidth,
			Height:  chartHeight,
			Title:   title,
			Integer: true,
		})
	},
}

// ─── Registration ─────────────────────────────────────────────────────────────

func init() {
	rootCmd.AddCommand(chartCmd)
	chartCmd.AddCommand(chartStatusCmd)
	chartCmd.AddCommand(chartYearsCmd)
	chartCmd.AddCommand(chartSuccessCmd)

	pf := chartCmd.PersistentFlags()
	pf.BoolVar(&chartStdin, "stdin", false, "read JSONL launches from stdin instead of fetching")
	pf.IntVar(&chartWidth, "width", 0,
		"chart width in characters (default: auto-detect from the terminal, fallback 80)")

	chartSuccessCmd.Flags().IntVar(&chartHeight, "height", 12, "chart height in rows")
	chartSuccessCmd.Flags().StringVar(&chartTitle, "title", "", "chart title")
}
