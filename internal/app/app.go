// Package app wires together configuration, the API client, the local store
// and logging into a single Deps struct that commands receive at runtime.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/derickschaefer/liftoff/internal/config"
	"github.com/derickschaefer/liftoff/internal/dashboard"
	"github.com/derickschaefer/liftoff/internal/launchapi"
	"github.com/derickschaefer/liftoff/internal/store"
)

// Version is stamped into the User-Agent; cmd overrides it at startup.
var Version = "dev"

// Deps holds all runtime dependencies injected into command Run functions.
// Store is opened lazily by RequireStore since most read paths never need it
// when --no-cache is set.
type Deps struct {
	Config *config.Config
	Client *launchapi.Client
	Store  *store.Store
	Logger *slog.Logger

	logFile io.Closer
}

// New builds a Deps from resolved config. Logs go to stderr.
func New(cfg *config.Config) *Deps {
	return NewWithLogWriter(cfg, os.Stderr)
}

// NewWithLogWriter is New with an explicit log destination. The dashboard
// uses it to keep log lines off the alternate screen.
func NewWithLogWriter(cfg *config.Config, w io.Writer) *Deps {
	logger := NewLogger(w, cfg.SlogLevel())
	slog.SetDefault(logger)

	client := launchapi.NewClient(launchapi.Options{
		BaseURL:   cfg.BaseURL,
		Host:      cfg.Host,
		Timeout:   cfg.Timeout,
		Rate:      cfg.Rate,
		Debug:     cfg.Debug,
		UserAgent: "liftoff-cli/" + Version,
	})
	return &Deps{
		Config: cfg,
		Client: client,
		Logger: logger,
	}
}

// NewLogger returns a text slog logger at level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// LogPath returns the dashboard log file path, next to the database.
func LogPath(cfg *config.Config) string {
	return filepath.Join(filepath.Dir(cfg.DBPath), "liftoff.log")
}

// OpenLogFile opens LogPath for appending and routes the default logger to
// it. The file is closed by Close.
func (d *Deps) OpenLogFile() error {
	path := LogPath(d.Config)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	d.logFile = f
	d.Logger = NewLogger(f, d.Config.SlogLevel())
	slog.SetDefault(d.Logger)
	return nil
}

// RequireStore opens the bbolt store on first use.
func (d *Deps) RequireStore() (*store.Store, error) {
	if d.Store != nil {
		return d.Store, nil
	}
	s, err := store.Open(d.Config.DBPath)
	if err != nil {
		return nil, err
	}
	d.Store = s
	return s, nil
}

// NewDashboard returns a dashboard backed by the API client. Unless
// --no-cache is set, the local store is attached as its offline cache; a
// store that cannot be opened is logged and skipped.
func (d *Deps) NewDashboard() *dashboard.Dashboard {
	opts := []dashboard.Option{dashboard.WithLogger(d.Logger)}
	if !d.Config.NoCache {
		if s, err := d.RequireStore(); err != nil {
			d.Logger.Warn("launch cache unavailable", "path", d.Config.DBPath, "err", err)
		} else {
			opts = append(opts, dashboard.WithCache(s))
		}
	}
	return dashboard.New(d.Client, opts...)
}

// Close releases the store and log file.
func (d *Deps) Close() {
	if d.Store != nil {
		_ = d.Store.Close()
		d.Store = nil
	}
	if d.logFile != nil {
		_ = d.logFile.Close()
		d.logFile = nil
	}
}
