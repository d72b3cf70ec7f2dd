package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/liftoff/internal/app"
	"github.com/derickschaefer/liftoff/internal/model"
)

// filterFlags are the filter criteria flags shared by launches list and timeline.
type filterFlags struct {
	Status string
	Search string
	From   string
	To     string
	Preset string
}

func addFilterFlags(cmd *cobra.Command, f *filterFlags) {
	cmd.Flags().StringVar(&f.Status, "status", "", "status filter: all|success|failed|upcoming")
	cmd.Flags().StringVar(&f.Search, "search", "", "case-insensitive match on mission, rocket or launchpad")
	cmd.Flags().StringVar(&f.From, "from", "", "earliest launch date, inclusive (e.g. 2020-01-01)")
	cmd.Flags().StringVar(&f.To, "to", "", "latest launch date, inclusive (compared as text)")
	cmd.Flags().StringVar(&f.Preset, "preset", "", "start from a saved filter preset")
}

// resolveFilters builds the filter criteria: the named preset first (if any),
// then every flag the user set explicitly on top of it.
func resolveFilters(cmd *cobra.Command, deps *app.Deps, f *filterFlags) (model.Filters, error) {
	out := model.DefaultFilters()
	if f.Preset != "" {
		s, err := deps.RequireStore()
		if err != nil {
			return out, err
		}
		p, ok, err := s.GetPreset(f.Preset)
		if err != nil {
			return out, fmt.Errorf("reading preset %q: %w", f.Preset, err)
		}
		if !ok {
			return out, fmt.Errorf("preset %q not found (see 'liftoff preset list')", f.Preset)
		}
		out = p.Filters
	}

	flags := cmd.Flags()
	if flags.Changed("status") {
		st, err := model.ParseFilterStatus(f.Status)
		if err != nil {
			return out, err
		}
		out.Status = st
	}
	if flags.Changed("search") {
		out.Search = f.Search
	}
	if flags.Changed("from") {
		out.DateFrom = f.From
	}
	if flags.Changed("to") {
		out.DateTo = f.To
	}
	if out.Status == "" {
		out.Status = model.StatusAll
	}
	return out, nil
}
