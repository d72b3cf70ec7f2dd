package cmd

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/derickschaefer/liftoff/internal/store"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the local data store",
	Long: `Commands for inspecting and clearing the local bbolt database.

The store keeps the last fetched launch batch (used by --offline and as the
dashboard's starting point), the sync history and saved filter presets.`,
}

// ─── cache stats ──────────────────────────────────────────────────────────────

var cacheStatsCmd = &cobra.Command{
	Use:     "stats",
	Short:   "Show row counts and sizes for each bucket",
	Example: `  liftoff cache stats`,
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

		stats, err := s.Stats()
		if err != nil {
			return fmt.Errorf("reading store stats: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Database: %s\n", s.Path())
		if _, at, ok, err := s.LoadLaunches(); err == nil && ok {
			fmt.Fprintf(out, "Launches cached %s\n", humanize.Time(at))
		}
		fmt.Fprintln(out)
		printSimpleTable(out, []string{"BUCKET", "ROWS", "SIZE"}, func(add func(...string)) {
			for _, b := range stats {
				add(b.Name, humanize.Comma(int64(b.Count)), humanize.Bytes(uint64(b.Bytes)))
			}
		})
		return nil
	},
}

// ─── cache clear ──────────────────────────────────────────────────────────────

var (
	cacheClearAll    bool
	cacheClearBucket string
)

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete entries from the local store",
	Long: `Delete entries from one or all buckets.

Note: bbolt does not shrink the database file automatically after clearing.
Free pages are reused internally on the next write. To reclaim disk space,
run 'liftoff cache compact' after clearing.`,
	Example: `  liftoff cache clear --all
  liftoff cache clear --bucket launches
  liftoff cache clear --bucket syncs`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cacheClearAll && cacheClearBucket == "" {
			return fmt.Errorf("specify --all or --bucket <name>\n\nBuckets: %s", strings.Join(store.AllBuckets, ", "))
		}

		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()
		s, err := deps.RequireStore()
		if err != nil {
			return err
		}

		if cacheClearAll {
			if err := s.ClearAll(); err != nil {
				return fmt.Errorf("clearing all buckets: %w", err)
			}
			say(cmd, "✓ Cleared all buckets")
			say(cmd, "  Run 'liftoff cache compact' to reclaim disk space.")
			return nil
		}

		if err := s.ClearBucket(cacheClearBucket); err != nil {
			return err
		}
		say(cmd, "✓ Cleared bucket %q", cacheClearBucket)
		say(cmd, "  Run 'liftoff cache compact' to reclaim disk space.")
		return nil
	},
}

// ─── cache compact ────────────────────────────────────────────────────────────

var cacheCompactCmd = &cobra.Command{
	Use:   "compact",
	Short: "Rewrite the database file to reclaim freed disk space",
	Long: `Compact rewrites the entire bbolt database to a new file, recovering space
freed by prior 'cache clear' operations.

All live data is copied to a temporary file first, then the original is
replaced. The database remains fully usable after compaction completes.`,
	Example: `  liftoff cache compact`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		// Compact closes and reopens the bolt.DB itself; the Store handle
		// stays valid, so it is closed normally.
		defer deps.Close()
		s, err := deps.RequireStore()
		if err != nil {
			return err
		}

		say(cmd, "Compacting %s ...", s.Path())

		before, after, err := s.Compact()
		if err != nil {
			return fmt.Errorf("compaction failed: %w", err)
		}

		say(cmd, "✓ Compaction complete")
		say(cmd, "  Before: %s", humanize.Bytes(uint64(before)))
		say(cmd, "  After:  %s", humanize.Bytes(uint64(after)))
		if before > after {
			say(cmd, "  Saved:  %s", humanize.Bytes(uint64(before-after)))
		} else {
			say(cmd, "  No space reclaimed (database was already compact).")
		}
		return nil
	},
}

// ─── Registration ─────────────────────────────────────────────────────────────

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheCompactCmd)

	cacheClearCmd.Flags().BoolVar(&cacheClearAll, "all", false, "clear all buckets")
	cacheClearCmd.Flags().StringVar(&cacheClearBucket, "bucket", "",
		"clear a specific bucket: "+strings.Join(store.AllBuckets, "|"))
}
