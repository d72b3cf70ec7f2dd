// Package config handles loading and resolving liftoff configuration.
// Resolution order (first non-empty value wins):
//  1. CLI flag --api-base
//  2. Environment variables LIFTOFF_API_BASE_URL, LIFTOFF_API_HOST,
//     LIFTOFF_DB_PATH, LOG_LEVEL
//  3. config.json in the current working directory
//  4. Built-in defaults
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultConfigFile = "config.json"
	DefaultFormat     = "table"
	DefaultTimeout    = 15 * time.Second
	DefaultRate       = 5.0
	DefaultBaseURL    = "/api"
	DefaultHost       = "http://localhost:8000"
	DefaultLogLevel   = "info"

	EnvBaseURL  = "LIFTOFF_API_BASE_URL"
	EnvHost     = "LIFTOFF_API_HOST"
	EnvDBPath   = "LIFTOFF_DB_PATH"
	EnvLogLevel = "LOG_LEVEL"
)

// File is the on-disk representation of config.json.
type File struct {
	APIBaseURL    string  `json:"api_base_url"`
	APIHost       string  `json:"api_host"`
	DefaultFormat string  `json:"default_format"`
	Timeout       string  `json:"timeout"`
	Rate          float64 `json:"rate"`
	DBPath        string  `json:"db_path"`
	LogLevel      string  `json:"log_level"`
}

// Keys lists the config.json keys accepted by `config get` and `config set`.
var Keys = []string{"api_base_url", "api_host", "default_format", "timeout", "rate", "db_path", "log_level"}

// Config is the fully-resolved runtime configuration.
// All callers use this struct; the File is only read during loading.
type Config struct {
	BaseURL    string
	Host       string
	Format     string
	Timeout    time.Duration
	Rate       float64
	DBPath     string
	LogLevel   string
	ConfigPath string // path of the config.json that was loaded (empty if none found)

	// Runtime overrides set from CLI flags after Load()
	Offline bool
	NoCache bool
	Quiet   bool
	Verbose bool
	Debug   bool
}

// Load resolves configuration from all sources.
// flagBaseURL is the value of --api-base (empty string if not set).
// A config.json that exists but cannot be parsed is an error.
func Load(flagBaseURL string) (*Config, error) {
	cfg := &Config{
		BaseURL:  DefaultBaseURL,
		Host:     DefaultHost,
		Format:   DefaultFormat,
		Timeout:  DefaultTimeout,
		Rate:     DefaultRate,
		LogLevel: DefaultLogLevel,
	}

	// Layer 1: config.json (lowest priority)
	f, path, err := loadFile()
	if err != nil {
		return nil, err
	}
	if f != nil {
		applyFile(cfg, f, path)
	}

	// Layer 2: environment
	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv(EnvHost); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	// Layer 3: CLI flag (highest priority)
	if flagBaseURL != "" {
		cfg.BaseURL = flagBaseURL
	}

	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath()
	}
	return cfg, nil
}

// DefaultDBPath returns ~/.liftoff/liftoff.db, or a relative fallback when
// the home directory is unknown.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".liftoff", "liftoff.db")
	}
	return filepath.Join(home, ".liftoff", "liftoff.db")
}

// Validate checks that the resolved values are usable.
func (c *Config) Validate() error {
	base := c.BaseURL
	if !strings.Contains(base, "://") {
		base = strings.TrimRight(c.Host, "/") + "/" + strings.TrimLeft(base, "/")
	}
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf(
			"invalid API base URL %q.\n\n"+
				"Set it one of these ways:\n"+
				"  1. CLI flag:        liftoff --api-base https://host/api ...\n"+
				"  2. Environment:     export %s=https://host/api\n"+
				"  3. config.json:     {\"api_base_url\": \"/api\", \"api_host\": \"http://localhost:8000\"}",
			base, EnvBaseURL,
		)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.Rate <= 0 {
		return fmt.Errorf("rate must be positive, got %g", c.Rate)
	}
	return nil
}

// SlogLevel maps LogLevel (and the Debug flag) onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	if c.Debug {
		return slog.LevelDebug
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadFile reads config.json from the current working directory.
// A missing file is not an error: it returns (nil, "", nil).
func loadFile() (*File, string, error) {
	path, err := filepath.Abs(DefaultConfigFile)
	if err != nil {
		return nil, "", err
	}
	f, err := ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", nil
		}
		return nil, "", err
	}
	return f, path, nil
}

// ReadFile parses the config file at path.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return &f, nil
}

// applyFile copies values from a parsed File into cfg,
// skipping any fields that are zero/empty.
func applyFile(cfg *Config, f *File, path string) {
	cfg.ConfigPath = path
	if f.APIBaseURL != "" {
		cfg.BaseURL = f.APIBaseURL
	}
	if f.APIHost != "" {
		cfg.Host = f.APIHost
	}
	if f.DefaultFormat != "" {
		cfg.Format = f.DefaultFormat
	}
	if f.Timeout != "" {
		if d, err := time.ParseDuration(f.Timeout); err == nil {
			cfg.Timeout = d
		}
	}
	if f.Rate > 0 {
		cfg.Rate = f.Rate
	}
	if f.DBPath != "" {
		cfg.DBPath = f.DBPath
	}
	if f.LogLevel != "" {
		cfg.LogLevel = strings.ToLower(f.LogLevel)
	}
}

// Template returns a File populated with the defaults, suitable for
// writing an initial config.json via `liftoff config init`.
func Template() File {
	return File{
		APIBaseURL:    DefaultBaseURL,
		APIHost:       DefaultHost,
		DefaultFormat: DefaultFormat,
		Timeout:       DefaultTimeout.String(),
		Rate:          DefaultRate,
		LogLevel:      DefaultLogLevel,
	}
}

// WriteFile serialises a File to the given path.
func WriteFile(path string, f File) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0600)
}

// Get returns the value of a config.json key as a string.
func (f File) Get(key string) (string, error) {
	switch key {
	case "api_base_url":
		return f.APIBaseURL, nil
	case "api_host":
		return f.APIHost, nil
	case "default_format":
		return f.DefaultFormat, nil
	case "timeout":
		return f.Timeout, nil
	case "rate":
		if f.Rate == 0 {
			return "", nil
		}
		return strconv.FormatFloat(f.Rate, 'f', -1, 64), nil
	case "db_path":
		return f.DBPath, nil
	case "log_level":
		return f.LogLevel, nil
	}
	return "", unknownKey(key)
}

// Set assigns a config.json key from its string form, validating the value.
func (f *File) Set(key, value string) error {
	switch key {
	case "api_base_url":
		f.APIBaseURL = value
	case "api_host":
		f.APIHost = value
	case "default_format":
		f.DefaultFormat = value
	case "timeout":
		if value != "" {
			d, err := time.ParseDuration(value)
			if err != nil || d <= 0 {
				return fmt.Errorf("invalid timeout %q: expected a positive duration like 15s", value)
			}
		}
		f.Timeout = value
	case "rate":
		if value == "" {
			f.Rate = 0
			return nil
		}
		r, err := strconv.ParseFloat(value, 64)
		if err != nil || r <= 0 {
			return fmt.Errorf("invalid rate %q: expected a positive number", value)
		}
		f.Rate = r
	case "db_path":
		f.DBPath = value
	case "log_level":
		switch strings.ToLower(value) {
		case "", "debug", "info", "warn", "warning", "error":
			f.LogLevel = strings.ToLower(value)
		default:
			return fmt.Errorf("invalid log_level %q: expected debug|info|warn|error", value)
		}
	default:
		return unknownKey(key)
	}
	return nil
}

func unknownKey(key string) error {
	return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys, ", "))
}
