package cmd

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/derickschaefer/liftoff/internal/model"
	"github.com/derickschaefer/liftoff/internal/render"
	"github.com/derickschaefer/liftoff/internal/store"
)

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Save and reuse named filter criteria",
	Long: `Presets store a status, search text and date range under a name in the
local database. Apply one with --preset on 'launches list' or 'timeline';
flags given alongside --preset override the saved values.`,
}

// ─── preset save ──────────────────────────────────────────────────────────────

var presetFilters filterFlags

var presetSaveCmd = &cobra.Command{
	Use:   "save <NAME>",
	Short: "Save filter criteria under a name (replaces an existing preset)",
	Example: `  liftoff preset save failures --status failed
  liftoff preset save starlink --search starlink --from 2019-05-01`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		filters, err := resolveFilters(cmd, deps, &presetFilters)
		if err != nil {
			return err
		}
		if filters.IsZero() {
			return fmt.Errorf("nothing to save: set at least one of --status, --search, --from, --to")
		}
		s, err := deps.RequireStore()
		if err != nil {
			return err
		}
		p, err := s.PutPreset(store.Preset{Name: args[0], Filters: filters})
		if err != nil {
			return fmt.Errorf("saving preset: %w", err)
		}
		say(cmd, "✓ Saved preset %q", p.Name)
		return nil
	},
}

// ─── preset list ──────────────────────────────────────────────────────────────

var presetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved presets",
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
		presets, err := s.ListPresets()
		if err != nil {
			return fmt.Errorf("listing presets: %w", err)
		}
		if len(presets) == 0 {
			say(cmd, "No presets saved. Create one with 'liftoff preset save <name> --status failed'.")
			return nil
		}
		t := &render.Table{Headers: []string{"NAME", "STATUS", "SEARCH", "FROM", "TO", "CREATED"}}
		for _, p := range presets {
			t.Rows = append(t.Rows, presetRow(p))
		}
		return emit(cmd, deps, newResult(model.KindTable, "preset list", t, len(presets), time.Now()))
	},
}

func presetRow(p store.Preset) []string {
	return []string{
		p.Name,
		p.Filters.Status,
		p.Filters.Search,
		p.Filters.DateFrom,
		p.Filters.DateTo,
		humanize.Time(p.CreatedAt),
	}
}

// ─── preset show ──────────────────────────────────────────────────────────────

var presetShowCmd = &cobra.Command{
	Use:   "show <NAME>",
	Short: "Show one preset",
	Args:  cobra.ExactArgs(1),
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
		p, ok, err := s.GetPreset(args[0])
		if err != nil {
			return fmt.Errorf("reading preset: %w", err)
		}
		if !ok {
			return fmt.Errorf("preset %q not found", args[0])
		}
		switch resolveFormat(deps.Config.Format) {
		case render.FormatJSON, render.FormatJSONL:
			return emit(cmd, deps, newResult(model.KindTable, "preset show", &p, 1, time.Now()))
		}
		t := &render.Table{Headers: []string{"FIELD", "VALUE"}, Rows: [][]string{
			{"name", p.Name},
			{"id", p.ID},
			{"status", p.Filters.Status},
			{"search", p.Filters.Search},
			{"from", p.Filters.DateFrom},
			{"to", p.Filters.DateTo},
			{"created", p.CreatedAt.Format(time.RFC3339)},
		}}
		return emit(cmd, deps, newResult(model.KindTable, "preset show", t, 1, time.Now()))
	},
}

// ─── preset delete ────────────────────────────────────────────────────────────

var presetDeleteCmd = &cobra.Command{
	Use:     "delete <NAME>",
	Aliases: []string{"rm"},
	Short:   "Delete a preset",
	Args:    cobra.ExactArgs(1),
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
		existed, err := s.DeletePreset(args[0])
		if err != nil {
			return fmt.Errorf("deleting preset: %w", err)
		}
		if !existed {
			return fmt.Errorf("preset %q not found", args[0])
		}
		say(cmd, "✓ Deleted preset %q", args[0])
		return nil
	},
}

// ─── Registration ─────────────────────────────────────────────────────────────

func init() {
	rootCmd.AddCommand(presetCmd)
	presetCmd.AddCommand(presetSaveCmd)
	presetCmd.AddCommand(presetListCmd)
	presetCmd.AddCommand(presetShowCmd)
	presetCmd.AddCommand(presetDeleteCmd)

	addFilterFlags(presetSaveCmd, &presetFilters)
	_ = presetSaveCmd.Flags().MarkHidden("preset")
}
