package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/liftoff/internal/model"
	"github.com/derickschaefer/liftoff/internal/view"
)

var timelineFilters filterFlags

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Show the newest matching launches as an alternating timeline",
	Long: `Renders the filtered launches newest first, at most 40 entries, alternating
left and right of a vertical rail. Details are cut to 100 characters.`,
	Example: `  liftoff timeline
  liftoff timeline --status upcoming
  liftoff timeline --preset starlink --format jsonl`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		filters, err := resolveFilters(cmd, deps, &timelineFilters)
		if err != nil {
			return err
		}

		start := time.Now()
		d, err := loadDashboard(cmd.Context(), deps)
		if err != nil {
			return err
		}
		d.SetFilters(filters)
		snap := d.Snapshot()

		entries := view.Timeline(snap.Visible)
		result := newResult(model.KindTimeline, "timeline", entries, len(entries), start)
		markSource(result, snap)
		return emit(cmd, deps, result)
	},
}

func init() {
	rootCmd.AddCommand(timelineCmd)
	addFilterFlags(timelineCmd, &timelineFilters)
}
