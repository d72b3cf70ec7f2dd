package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/liftoff/internal/config"
	"github.com/derickschaefer/liftoff/internal/launchapi"
	"github.com/derickschaefer/liftoff/internal/render"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage liftoff configuration",
	Long: `Read and write liftoff configuration stored in config.json.

Resolution order (first non-empty wins): --api-base flag, environment
(LIFTOFF_API_BASE_URL, LIFTOFF_API_HOST, LIFTOFF_DB_PATH, LOG_LEVEL),
config.json in the current directory, built-in defaults.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a template config.json in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultConfigFile
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config.json already exists at %s (delete it first to re-initialise)", path)
		}
		if err := config.WriteFile(path, config.Template()); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ Created %s\n", path)
		fmt.Fprintln(out, "  Point api_host (or api_base_url) at your launch backend to get started.")
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get [KEY]",
	Short: "Print the resolved configuration, or one config.json key",
	Example: `  liftoff config get
  liftoff config get api_host
  liftoff config get --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 1 {
			f, err := config.ReadFile(config.DefaultConfigFile)
			if err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("no config.json in the current directory (run 'liftoff config init')")
				}
				return err
			}
			v, err := f.Get(strings.ToLower(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintln(out, v)
			return nil
		}

		cfg, err := config.Load(globalFlags.APIBase)
		if err != nil {
			return err
		}
		src := "(not found)"
		if cfg.ConfigPath != "" {
			src = cfg.ConfigPath
		}
		resolved := launchapi.ResolveBaseURL(cfg.BaseURL, cfg.Host)

		if resolveFormat(cfg.Format) == render.FormatJSON {
			type configOut struct {
				BaseURL    string  `json:"api_base_url"`
				Host       string  `json:"api_host"`
				Resolved   string  `json:"resolved_base_url"`
				Format     string  `json:"default_format"`
				Timeout    string  `json:"timeout"`
				Rate       float64 `json:"rate"`
				DBPath     string  `json:"db_path"`
				LogLevel   string  `json:"log_level"`
				ConfigFile string  `json:"config_file"`
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(configOut{
				BaseURL:    cfg.BaseURL,
				Host:       cfg.Host,
				Resolved:   resolved,
				Format:     cfg.Format,
				Timeout:    cfg.Timeout.String(),
				Rate:       cfg.Rate,
				DBPath:     cfg.DBPath,
				LogLevel:   cfg.LogLevel,
				ConfigFile: src,
			})
		}

		printKVTable(out, [][]string{
			{"api_base_url", cfg.BaseURL},
			{"api_host", cfg.Host},
			{"resolved", resolved},
			{"default_format", cfg.Format},
			{"timeout", cfg.Timeout.String()},
			{"rate", fmt.Sprintf("%.1f req/s", cfg.Rate)},
			{"db_path", cfg.DBPath},
			{"log_level", cfg.LogLevel},
			{"config_file", src},
		})
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <KEY> <VALUE>",
	Short: "Set a configuration value in config.json",
	Example: `  liftoff config set api_host https://launches.example.com
  liftoff config set timeout 30s
  liftoff config set default_format json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := strings.ToLower(args[0])
		if key == "format" {
			key = "default_format"
		}
		val := args[1]

		// Load existing file or start from template
		path := config.DefaultConfigFile
		f := config.Template()
		if existing, err := config.ReadFile(path); err == nil {
			f = *existing
		} else if !os.IsNotExist(err) {
			return err
		}

		if key == "default_format" && !render.ValidFormat(val) {
			return fmt.Errorf("invalid format %q: expected %s", val, strings.Join(render.Formats, "|"))
		}
		if err := f.Set(key, val); err != nil {
			return err
		}
		if err := config.WriteFile(path, f); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Set %s in %s\n", key, path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}
