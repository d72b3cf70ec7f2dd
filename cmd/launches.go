package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/liftoff/internal/launchapi"
	"github.com/derickschaefer/liftoff/internal/model"
	"github.com/derickschaefer/liftoff/internal/table"
)

var launchesCmd = &cobra.Command{
	Use:   "launches",
	Short: "List and inspect launch records",
	Long: `Launch records are fetched in full from GET /launches and then filtered,
sorted and paginated locally, 15 rows per page.

Sort keys: flight_number, mission_name, launch_date (default), status.
Date bounds are compared as text against the raw launch_date, so use the
same ISO layout the backend returns (e.g. 2020-01-01).`,
}

// ─── launches list ────────────────────────────────────────────────────────────

var (
	listFilters filterFlags
	listSort    string
	listAsc     bool
	listPage    int
	listAll     bool
)

var launchesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show one page of the filtered, sorted launches",
	Example: `  liftoff launches list
  liftoff launches list --status failed
  liftoff launches list --search falcon --sort mission --asc
  liftoff launches list --from 2020-01-01 --to 2020-12-31 --page 2
  liftoff launches list --all --format jsonl | liftoff chart years --stdin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := table.ParseSortKey(listSort)
		if err != nil {
			return err
		}
		if listPage < 1 {
			return fmt.Errorf("--page must be 1 or greater")
		}

		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		filters, err := resolveFilters(cmd, deps, &listFilters)
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

		st := table.State{Key: key, Ascending: listAsc, Page: listPage}
		if listAll {
			sorted := table.Sort(snap.Visible, st.Key, st.Ascending)
			result := newResult(model.KindLaunches, "launches list", sorted, len(sorted), start)
			markSource(result, snap)
			return emit(cmd, deps, result)
		}

		pg := st.Apply(snap.Visible)
		page := &model.LaunchPage{
			Items:      pg.Items,
			Page:       pg.Page,
			TotalPages: pg.TotalPages,
			Total:      pg.Total,
			SortKey:    string(st.Key),
			Ascending:  st.Ascending,
		}
		result := newResult(model.KindPage, "launches list", page, len(pg.Items), start)
		if listPage > pg.TotalPages {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("page %d is past the last page (%d)", listPage, pg.TotalPages))
		}
		markSource(result, snap)
		return emit(cmd, deps, result)
	},
}

// ─── launches get ─────────────────────────────────────────────────────────────

var launchesGetCmd = &cobra.Command{
	Use:   "get <LAUNCH_ID>",
	Short: "Show one launch record",
	Example: `  liftoff launches get 5eb87cd9ffd86e000604b32a
  liftoff launches get 5eb87cd9ffd86e000604b32a --format json
  liftoff launches get 5eb87cd9ffd86e000604b32a --offline`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		id := args[0]
		start := time.Now()

		if deps.Config.Offline {
			s, err := deps.RequireStore()
			if err != nil {
				return err
			}
			l, ok, err := s.GetLaunch(id)
			if err != nil {
				return fmt.Errorf("reading cached launch: %w", err)
			}
			if !ok {
				return fmt.Errorf("launch %q is not in the local cache", id)
			}
			result := newResult(model.KindLaunch, "launches get "+id, &l, 1, start)
			result.Stats.CacheHit = true
			return emit(cmd, deps, result)
		}

		if err := deps.Config.Validate(); err != nil {
			return err
		}
		l, err := deps.Client.GetLaunch(cmd.Context(), id)
		if err != nil {
			if errors.Is(err, launchapi.ErrNotFound) {
				return fmt.Errorf("launch %q not found", id)
			}
			return err
		}
		return emit(cmd, deps, newResult(model.KindLaunch, "launches get "+id, l, 1, start))
	},
}

// ─── Registration ─────────────────────────────────────────────────────────────

func init() {
	rootCmd.AddCommand(launchesCmd)
	launchesCmd.AddCommand(launchesListCmd)
	launchesCmd.AddCommand(launchesGetCmd)

	addFilterFlags(launchesListCmd, &listFilters)
	launchesListCmd.Flags().StringVar(&listSort, "sort", "launch_date",
		"sort key: flight_number|mission_name|launch_date|status (or flight|mission|date)")
	launchesListCmd.Flags().BoolVar(&listAsc, "asc", false, "sort ascending (default: descending)")
	launchesListCmd.Flags().IntVar(&listPage, "page", 1, "page number, 15 launches per page")
	launchesListCmd.Flags().BoolVar(&listAll, "all", false, "print every matching launch instead of one page")
}
