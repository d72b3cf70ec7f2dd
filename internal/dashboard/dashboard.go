// Package dashboard holds the launch dashboard's view state and orchestrates
// fetch and sync requests against the backend. It is shared by the one-shot
// CLI commands and the interactive terminal dashboard.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/derickschaefer/liftoff/internal/analyze"
	"github.com/derickschaefer/liftoff/internal/filter"
	"github.com/derickschaefer/liftoff/internal/model"
)

// User-facing messages shown in place of the underlying cause.
const (
	MsgFetchFailed = "Could not load launches. Check that the API is reachable and try again."
	MsgSyncFailed  = "Sync failed. The launch data was not refreshed."
)

// Sentinel errors returned (wrapped) by RequestFetch and RequestSync.
var (
	ErrFetchFailed = errors.New("fetch failed")
	ErrSyncFailed  = errors.New("sync failed")
)

// Source is the backend the dashboard reads from.
type Source interface {
	FetchLaunches(ctx context.Context) ([]model.Launch, error)
	TriggerSync(ctx context.Context) (*model.SyncSummary, error)
}

// Cache persists the last successfully fetched batch.
type Cache interface {
	SaveLaunches(launches []model.Launch, fetchedAt time.Time) error
	LoadLaunches() ([]model.Launch, time.Time, bool, error)
}

// Phase is the fetch lifecycle position.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
	PhaseError   Phase = "error"
)

// Snapshot is a point-in-time copy of the view state.
type Snapshot struct {
	Phase     Phase
	Loading   bool
	Syncing   bool
	LastError string
	Records   []model.Launch
	Visible   []model.Launch
	Stats     model.Stats
	Filters   model.Filters
	FetchedAt time.Time
	FromCache bool
	LastSync  *model.SyncSummary
}

// Option configures a Dashboard.
type Option func(*Dashboard)

// WithCache persists every successful fetch to c and enables Restore.
func WithCache(c Cache) Option {
	return func(d *Dashboard) { d.cache = c }
}

// WithLogger sets the logger used for fetch and sync diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dashboard) { d.log = l }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(d *Dashboard) { d.now = now }
}

// Dashboard is safe for concurrent use. Fetches are not de-duplicated: two
// overlapping requests both run and the last to finish wins.
type Dashboard struct {
	src   Source
	cache Cache
	log   *slog.Logger
	now   func() time.Time

	mu        sync.Mutex
	phase     Phase
	loading   bool
	syncing   bool
	lastErr   string
	records   []model.Launch
	stats     model.Stats
	filters   model.Filters
	fetchedAt time.Time
	fromCache bool
	lastSync  *model.SyncSummary

	gen        uint64
	visibleGen uint64
	visible    []model.Launch
}

// New creates an idle dashboard reading from src.
func New(src Source, opts ...Option) *Dashboard {
	d := &Dashboard{
		src:     src,
		log:     slog.Default(),
		now:     time.Now,
		phase:   PhaseIdle,
		filters: model.DefaultFilters(),
		gen:     1,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// RequestFetch loads the full launch batch. On failure the previous records
// are kept, LastError is set to MsgFetchFailed and the cause is returned
// wrapped in ErrFetchFailed.
func (d *Dashboard) RequestFetch(ctx context.Context) error {
	d.mu.Lock()
	d.loading = true
	d.phase = PhaseLoading
	d.lastErr = ""
	d.mu.Unlock()

	start := d.now()
	launches, err := d.src.FetchLaunches(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.loading = false
	if err != nil {
		d.log.Error("fetching launches", "error", err)
		d.lastErr = MsgFetchFailed
		d.phase = PhaseError
		return fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	d.setRecordsLocked(launches, d.now(), false)
	d.phase = PhaseReady
	d.log.Debug("launches fetched", "count", len(launches), "duration", d.now().Sub(start))

	if d.cache != nil {
		if err := d.cache.SaveLaunches(launches, d.fetchedAt); err != nil {
			d.log.Warn("caching launch batch", "error", err)
		}
	}
	return nil
}

// RequestSync asks the backend to refresh its data and, only if that
// succeeds, refetches. Syncing stays on until the refetch has finished.
func (d *Dashboard) RequestSync(ctx context.Context) error {
	d.mu.Lock()
	d.syncing = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.syncing = false
		d.mu.Unlock()
	}()

	summary, err := d.src.TriggerSync(ctx)
	if err != nil {
		d.log.Error("triggering sync", "error", err)
		d.mu.Lock()
		d.lastErr = MsgSyncFailed
		d.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrSyncFailed, err)
	}

	d.mu.Lock()
	d.lastSync = summary
	d.mu.Unlock()
	if summary != nil {
		d.log.Info("sync complete",
			"fetched", summary.TotalFetched,
			"inserted", summary.Inserted,
			"updated", summary.Updated,
			"errors", summary.Errors,
		)
	}

	return d.RequestFetch(ctx)
}

// Restore seeds the records from the cache without touching the network.
// It reports false when no batch has been cached yet.
func (d *Dashboard) Restore() (bool, error) {
	if d.cache == nil {
		return false, nil
	}
	launches, fetchedAt, ok, err := d.cache.LoadLaunches()
	if err != nil {
		return false, fmt.Errorf("loading cached launches: %w", err)
	}
	if !ok {
		return false, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.setRecordsLocked(launches, fetchedAt, true)
	d.phase = PhaseReady
	d.lastErr = ""
	return true, nil
}

// SetFilters replaces the filter criteria.
func (d *Dashboard) SetFilters(f model.Filters) {
	if f.Status == "" {
		f.Status = model.StatusAll
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if f == d.filters {
		return
	}
	d.filters = f
	d.gen++
}

// ClearFilters restores the default "no filter" criteria.
func (d *Dashboard) ClearFilters() {
	d.SetFilters(model.DefaultFilters())
}

// Snapshot returns a copy of the current state. Visible always reflects the
// latest records and filters.
func (d *Dashboard) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.visibleGen != d.gen {
		d.visible = filter.Apply(d.records, d.filters)
		d.visibleGen = d.gen
	}

	return Snapshot{
		Phase:     d.phase,
		Loading:   d.loading,
		Syncing:   d.syncing,
		LastError: d.lastErr,
		Records:   append([]model.Launch(nil), d.records...),
		Visible:   append([]model.Launch(nil), d.visible...),
		Stats:     d.stats,
		Filters:   d.filters,
		FetchedAt: d.fetchedAt,
		FromCache: d.fromCache,
		LastSync:  d.lastSync,
	}
}

func (d *Dashboard) setRecordsLocked(launches []model.Launch, at time.Time, fromCache bool) {
	d.records = launches
	d.stats = analyze.ComputeStats(launches)
	d.fetchedAt = at
	d.fromCache = fromCache
	d.gen++
}
