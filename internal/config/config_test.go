package config_test

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/derickschaefer/liftoff/internal/config"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

// writeConfig writes a config.json into dir and changes the working directory
// to dir for the duration of the test.
func writeConfig(t *testing.T, dir string, f config.File) {
	t.Helper()
	path := filepath.Join(dir, "config.json")
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	chdir(t, dir)
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

// clearEnv unsets every liftoff environment variable for the test.
func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvBaseURL, "")
	t.Setenv(config.EnvHost, "")
	t.Setenv(config.EnvDBPath, "")
	t.Setenv(config.EnvLogLevel, "")
}

// ─── Defaults ─────────────────────────────────────────────────────────────────

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != config.DefaultBaseURL {
		t.Errorf("BaseURL: expected %q, got %q", config.DefaultBaseURL, cfg.BaseURL)
	}
	if cfg.Host != config.DefaultHost {
		t.Errorf("Host: expected %q, got %q", config.DefaultHost, cfg.Host)
	}
	if cfg.Format != config.DefaultFormat {
		t.Errorf("Format: expected %q, got %q", config.DefaultFormat, cfg.Format)
	}
	if cfg.Timeout != config.DefaultTimeout {
		t.Errorf("Timeout: expected %v, got %v", config.DefaultTimeout, cfg.Timeout)
	}
	if cfg.Rate != config.DefaultRate {
		t.Errorf("Rate: expected %g, got %g", config.DefaultRate, cfg.Rate)
	}
	if !strings.HasSuffix(cfg.DBPath, filepath.Join(".liftoff", "liftoff.db")) {
		t.Errorf("DBPath: expected ~/.liftoff/liftoff.db, got %q", cfg.DBPath)
	}
	if cfg.ConfigPath != "" {
		t.Errorf("ConfigPath: expected empty with no config.json, got %q", cfg.ConfigPath)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

// ─── Layering ─────────────────────────────────────────────────────────────────

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	writeConfig(t, t.TempDir(), config.File{
		APIBaseURL:    "https://launches.example.com/api",
		DefaultFormat: "json",
		Timeout:       "5s",
		Rate:          2,
		DBPath:        "/tmp/x.db",
		LogLevel:      "DEBUG",
	})

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "https://launches.example.com/api" {
		t.Errorf("BaseURL: got %q", cfg.BaseURL)
	}
	if cfg.Format != "json" {
		t.Errorf("Format: expected json, got %q", cfg.Format)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout: expected 5s, got %v", cfg.Timeout)
	}
	if cfg.Rate != 2 {
		t.Errorf("Rate: expected 2, got %g", cfg.Rate)
	}
	if cfg.DBPath != "/tmp/x.db" {
		t.Errorf("DBPath: got %q", cfg.DBPath)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel: expected debug, got %q", cfg.LogLevel)
	}
	if cfg.ConfigPath == "" {
		t.Error("ConfigPath should be set when config.json was found")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	writeConfig(t, t.TempDir(), config.File{APIBaseURL: "/file", APIHost: "http://file:1"})
	t.Setenv(config.EnvBaseURL, "/env")
	t.Setenv(config.EnvHost, "http://env:2")
	t.Setenv(config.EnvDBPath, "/env.db")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "/env" || cfg.Host != "http://env:2" || cfg.DBPath != "/env.db" {
		t.Errorf("env did not win: %+v", cfg)
	}
}

func TestFlagOverridesEnv(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv(config.EnvBaseURL, "/env")

	cfg, err := config.Load("https://flag.example.com/api")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "https://flag.example.com/api" {
		t.Errorf("BaseURL: expected flag value, got %q", cfg.BaseURL)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)
	if _, err := config.Load(""); err == nil {
		t.Error("expected error for malformed config.json")
	}
}

func TestInvalidTimeoutInFileIgnored(t *testing.T) {
	clearEnv(t)
	writeConfig(t, t.TempDir(), config.File{Timeout: "soon"})
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timeout != config.DefaultTimeout {
		t.Errorf("Timeout: expected default, got %v", cfg.Timeout)
	}
}

// ─── Validate ─────────────────────────────────────────────────────────────────

func TestValidate(t *testing.T) {
	base := config.Config{BaseURL: "/api", Host: "http://localhost:8000", Timeout: time.Second, Rate: 1}

	cases := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr bool
	}{
		{"relative base with host", func(c *config.Config) {}, false},
		{"absolute base", func(c *config.Config) { c.BaseURL = "https://x.io/api"; c.Host = "" }, false},
		{"relative base without host", func(c *config.Config) { c.Host = "" }, true},
		{"ftp scheme", func(c *config.Config) { c.BaseURL = "ftp://x.io/api" }, true},
		{"zero timeout", func(c *config.Config) { c.Timeout = 0 }, true},
		{"zero rate", func(c *config.Config) { c.Rate = 0 }, true},
	}
	for _, tc := range cases {
		c := base
		tc.mutate(&c)
		err := c.Validate()
		if (err != nil) != tc.wantErr {
			t.Errorf("%s: expected error=%v, got %v", tc.name, tc.wantErr, err)
		}
	}
}

func TestSlogLevel(t *testing.T) {
	c := config.Config{LogLevel: "warn"}
	if c.SlogLevel() != slog.LevelWarn {
		t.Errorf("warn: got %v", c.SlogLevel())
	}
	c.Debug = true
	if c.SlogLevel() != slog.LevelDebug {
		t.Errorf("--debug should force debug level, got %v", c.SlogLevel())
	}
	c = config.Config{LogLevel: "chatty"}
	if c.SlogLevel() != slog.LevelInfo {
		t.Errorf("unknown level should fall back to info, got %v", c.SlogLevel())
	}
}

// ─── Template / WriteFile ─────────────────────────────────────────────────────

func TestTemplateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := config.WriteFile(path, config.Template()); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("permissions: expected 0600, got %o", info.Mode().Perm())
	}
	f, err := config.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if *f != config.Template() {
		t.Errorf("round trip: expected %+v, got %+v", config.Template(), *f)
	}
}

// ─── Get / Set ────────────────────────────────────────────────────────────────

func TestSetAndGet(t *testing.T) {
	var f config.File
	if err := f.Set("rate", "2.5"); err != nil {
		t.Fatalf("Set rate: %v", err)
	}
	if v, _ := f.Get("rate"); v != "2.5" {
		t.Errorf("Get rate: expected 2.5, got %q", v)
	}
	if err := f.Set("timeout", "30s"); err != nil {
		t.Fatalf("Set timeout: %v", err)
	}
	if err := f.Set("log_level", "ERROR"); err != nil {
		t.Fatalf("Set log_level: %v", err)
	}
	if v, _ := f.Get("log_level"); v != "error" {
		t.Errorf("Get log_level: expected error, got %q", v)
	}
	for _, k := range config.Keys {
		if _, err := f.Get(k); err != nil {
			t.Errorf("Get(%q): unexpected error %v", k, err)
		}
	}
}

func TestSetRejectsBadValues(t *testing.T) {
	var f config.File
	bad := map[string]string{
		"timeout":   "-1s",
		"rate":      "fast",
		"log_level": "loud",
		"nope":      "x",
	}
	for k, v := range bad {
		if err := f.Set(k, v); err == nil {
			t.Errorf("Set(%q, %q): expected error", k, v)
		}
	}
	if _, err := f.Get("nope"); err == nil {
		t.Error("Get of unknown key should fail")
	}
}
