package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/derickschaefer/liftoff/internal/app"
	"github.com/derickschaefer/liftoff/internal/dashboard"
	"github.com/derickschaefer/liftoff/internal/model"
	"github.com/derickschaefer/liftoff/internal/render"
	"github.com/derickschaefer/liftoff/internal/store"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Ask the backend to refresh its launch data, then refetch",
	Long: `Calls POST /trigger so the backend pulls fresh launch data from its upstream
source, prints the sync summary and, only when the sync succeeded, refetches
the full launch list into the local cache.

Every run is recorded in the local store; see 'liftoff sync history'.`,
	Example: `  liftoff sync
  liftoff sync --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()
		if deps.Config.Offline {
			return fmt.Errorf("sync needs the network and cannot run with --offline")
		}
		if err := deps.Config.Validate(); err != nil {
			return err
		}

		d := deps.NewDashboard()
		start := time.Now()
		syncErr := d.RequestSync(cmd.Context())
		snap := d.Snapshot()
		recordSync(deps, start, snap, syncErr)
		if syncErr != nil {
			return syncErr
		}

		summary := snap.LastSync
		if summary == nil {
			summary = &model.SyncSummary{}
		}
		result := newResult(model.KindSync, "sync", summary, summary.TotalFetched, start)
		if err := emit(cmd, deps, result); err != nil {
			return err
		}
		say(cmd, "✓ Refetched %d launches", len(snap.Records))
		return nil
	},
}

// recordSync appends the run to the sync history. A sync that succeeded but
// whose refetch failed is still recorded as ok with the refetch error.
func recordSync(deps *app.Deps, start time.Time, snap dashboard.Snapshot, syncErr error) {
	if deps.Config.NoCache {
		return
	}
	s, err := deps.RequireStore()
	if err != nil {
		deps.Logger.Warn("sync history unavailable", "err", err)
		return
	}
	rec := store.SyncRecord{
		StartedAt:  start.UTC(),
		DurationMs: time.Since(start).Milliseconds(),
		OK:         syncErr == nil || !errors.Is(syncErr, dashboard.ErrSyncFailed),
	}
	if syncErr != nil {
		rec.Error = syncErr.Error()
	}
	if snap.LastSync != nil {
		rec.Summary = *snap.LastSync
	}
	if _, err := s.PutSync(rec); err != nil {
		deps.Logger.Warn("recording sync history", "err", err)
	}
}

// ─── sync history ─────────────────────────────────────────────────────────────

var syncHistoryLimit int

var syncHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent sync runs, newest first",
	Example: `  liftoff sync history
  liftoff sync history --limit 5 --format csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()
		s, err := deps.RequireStore()
		if err != nil {
			return err
		}
		recs, err := s.ListSyncs(syncHistoryLimit)
		if err != nil {
			return fmt.Errorf("reading sync history: %w", err)
		}
		if len(recs) == 0 {
			say(cmd, "No syncs recorded yet. Run 'liftoff sync'.")
			return nil
		}

		t := &render.Table{Headers: []string{"WHEN", "RESULT", "FETCHED", "INSERTED", "UPDATED", "ERRORS", "DURATION"}}
		for _, r := range recs {
			res := "ok"
			if !r.OK {
				res = "failed"
			}
			if r.Error != "" {
				res += ": " + r.Error
			}
			t.Rows = append(t.Rows, []string{
				humanize.Time(r.StartedAt),
				res,
				strconv.Itoa(r.Summary.TotalFetched),
				strconv.Itoa(r.Summary.Inserted),
				strconv.Itoa(r.Summary.Updated),
				strconv.Itoa(r.Summary.Errors),
				fmt.Sprintf("%dms", r.DurationMs),
			})
		}
		return emit(cmd, deps, newResult(model.KindTable, "sync history", t, len(recs), time.Now()))
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.AddCommand(syncHistoryCmd)
	syncHistoryCmd.Flags().IntVar(&syncHistoryLimit, "limit", 20, "number of runs to show (0 = all)")
}
