// Package cmd implements the liftoff CLI command tree.
// This file defines the root command and registers all global persistent flags.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/liftoff/internal/app"
	"github.com/derickschaefer/liftoff/internal/config"
	"github.com/derickschaefer/liftoff/internal/render"
)

// globalFlags holds the parsed values of all persistent (global) flags.
// Commands read from this struct via the deps they receive.
var globalFlags struct {
	APIBase string
	Format  string
	Out     string
	Timeout string
	Rate    float64
	Offline bool
	NoCache bool
	Quiet   bool
	Verbose bool
	Debug   bool
}

// rootCmd is the base command. Running `liftoff` with no subcommand
// prints help.
var rootCmd = &cobra.Command{
	Use:   "liftoff",
	Short: "liftoff: spaceflight launch dashboard for the terminal",
	Long: `liftoff reads launch records from a launch backend API and turns them into
stats, filtered and sorted tables, charts and a timeline.

The backend serves GET /launches and POST /trigger under its base URL
(default http://localhost:8000/api). The last fetched batch is kept in a
local bbolt database so every read command also works with --offline.

Quick start:
  liftoff config init              # create a config.json
  liftoff health                   # check the backend is reachable
  liftoff launches list            # first page, newest launches first
  liftoff stats                    # summary cards
  liftoff dash                     # interactive dashboard`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// buildDeps resolves config and constructs the dependency container.
// Called at the start of each command's RunE.
func buildDeps() (*app.Deps, error) {
	cfg, err := config.Load(globalFlags.APIBase)
	if err != nil {
		return nil, err
	}
	if err := applyGlobalFlags(cfg); err != nil {
		return nil, err
	}
	app.Version = Version
	return app.New(cfg), nil
}

// applyGlobalFlags copies CLI flag overrides onto a loaded config.
func applyGlobalFlags(cfg *config.Config) error {
	cfg.Offline = globalFlags.Offline
	cfg.NoCache = globalFlags.NoCache
	cfg.Quiet = globalFlags.Quiet
	cfg.Verbose = globalFlags.Verbose
	cfg.Debug = globalFlags.Debug

	if cfg.Offline && cfg.NoCache {
		return fmt.Errorf("--offline reads the local cache and cannot be combined with --no-cache")
	}
	if globalFlags.Format != "" {
		cfg.Format = globalFlags.Format
	}
	if !render.ValidFormat(cfg.Format) {
		return fmt.Errorf("invalid format %q: expected table|json|jsonl|csv|tsv|md", cfg.Format)
	}
	if globalFlags.Timeout != "" {
		d, err := time.ParseDuration(globalFlags.Timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("--timeout: invalid duration %q (e.g. 15s, 1m)", globalFlags.Timeout)
		}
		cfg.Timeout = d
	}
	if globalFlags.Rate > 0 {
		cfg.Rate = globalFlags.Rate
	}
	return nil
}

func init() {
	pf := rootCmd.PersistentFlags()

	pf.StringVar(&globalFlags.APIBase, "api-base", "",
		"API base URL (overrides env LIFTOFF_API_BASE_URL and config.json)")
	pf.StringVar(&globalFlags.Format, "format", "",
		"output format: table|json|jsonl|csv|tsv|md (default: table)")
	pf.StringVar(&globalFlags.Out, "out", "",
		"write output to file instead of stdout")
	pf.StringVar(&globalFlags.Timeout, "timeout", "",
		"HTTP request timeout (e.g. 15s, 1m)")
	pf.Float64Var(&globalFlags.Rate, "rate", 0,
		"max API requests per second (default: 5.0)")
	pf.BoolVar(&globalFlags.Offline, "offline", false,
		"use the last cached launch batch instead of the network")
	pf.BoolVar(&globalFlags.NoCache, "no-cache", false,
		"do not save fetched launches to the local cache")
	pf.BoolVar(&globalFlags.Quiet, "quiet", false,
		"suppress all non-error output")
	pf.BoolVar(&globalFlags.Verbose, "verbose", false,
		"show cache/timing stats after output")
	pf.BoolVar(&globalFlags.Debug, "debug", false,
		"log HTTP requests and responses")
}
