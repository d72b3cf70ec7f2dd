// Package store provides a thin bbolt wrapper for liftoff's local data.
//
// The store keeps the last successfully fetched launch batch so commands can
// run offline, a history of sync requests, and named filter presets. Nothing
// expires on its own; `liftoff cache clear` is the only eviction.
//
// Buckets:
//
//	launches  latest batch envelope plus one entry per launch ID
//	syncs     sync history keyed by start time
//	presets   saved filter criteria keyed by name
//	_meta     schema version, created_at (internal)
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/derickschaefer/liftoff/internal/model"
)

// Current schema version. Bump when bucket layout or key format changes.
const schemaVersion = 1

// Bucket name constants.
var (
	bucketLaunches = []byte("launches")
	bucketSyncs    = []byte("syncs")
	bucketPresets  = []byte("presets")
	bucketInternal = []byte("_meta")
)

// AllBuckets lists every user-facing bucket for stats and clear operations.
var AllBuckets = []string{"launches", "syncs", "presets"}

// batchKey holds the latest batch envelope. Per-launch keys are prefixed
// with "id:" so they never collide with it.
var batchKey = []byte("batch:latest")

const launchPrefix = "id:"

// Store wraps a bbolt database.
type Store struct {
	db   *bolt.DB
	path string
}

// Open opens (or creates) the bbolt database at path.
// Parent directories are created automatically.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening db %s: %w", path, err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the filesystem path of the open database.
func (s *Store) Path() string {
	return s.path
}

// ─── Migrations ───────────────────────────────────────────────────────────────

func (s *Store) migrate() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketLaunches, bucketSyncs, bucketPresets, bucketInternal} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("creating bucket %s: %w", name, err)
			}
		}

		meta := tx.Bucket(bucketInternal)
		if meta.Get([]byte("schema_version")) == nil {
			if err := meta.Put([]byte("schema_version"), []byte(fmt.Sprintf("%d", schemaVersion))); err != nil {
				return err
			}
			if err := meta.Put([]byte("created_at"), []byte(time.Now().UTC().Format(time.RFC3339))); err != nil {
				return err
			}
		}
		return nil
	})
}

// ─── Launch Batch ─────────────────────────────────────────────────────────────

// storedBatch is the on-disk envelope for the latest fetched batch.
type storedBatch struct {
	FetchedAt time.Time      `json:"fetched_at"`
	Count     int            `json:"count"`
	Launches  []model.Launch `json:"launches"`
}

// SaveLaunches replaces the cached batch. The previous per-launch entries
// are dropped so lookups never return a launch the backend no longer has.
func (s *Store) SaveLaunches(launches []model.Launch, fetchedAt time.Time) error {
	env := storedBatch{FetchedAt: fetchedAt.UTC(), Count: len(launches), Launches: launches}
	if env.Launches == nil {
		env.Launches = []model.Launch{}
	}
	b, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encoding launch batch: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketLaunches); err != nil {
			return fmt.Errorf("resetting launches: %w", err)
		}
		bkt, err := tx.CreateBucket(bucketLaunches)
		if err != nil {
			return err
		}
		if err := bkt.Put(batchKey, b); err != nil {
			return err
		}
		for _, l := range launches {
			if l.ID == "" {
				continue
			}
			v, err := json.Marshal(l)
			if err != nil {
				return fmt.Errorf("encoding launch %s: %w", l.ID, err)
			}
			if err := bkt.Put([]byte(launchPrefix+l.ID), v); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadLaunches returns the cached batch and when it was fetched.
// Returns (nil, zero, false, nil) if nothing has been cached yet.
func (s *Store) LoadLaunches() ([]model.Launch, time.Time, bool, error) {
	var env storedBatch
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketLaunches).Get(batchKey)
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &env)
	})
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("decoding launch batch: %w", err)
	}
	if !found {
		return nil, time.Time{}, false, nil
	}
	return env.Launches, env.FetchedAt, true, nil
}

// GetLaunch looks one launch up in the cached batch.
func (s *Store) GetLaunch(id string) (model.Launch, bool, error) {
	var l model.Launch
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketLaunches).Get([]byte(launchPrefix + id))
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &l)
	})
	return l, found, err
}

// ─── Sync History ─────────────────────────────────────────────────────────────

// SyncRecord is one entry in the sync history.
type SyncRecord struct {
	ID         string            `json:"id"`
	StartedAt  time.Time         `json:"started_at"`
	DurationMs int64             `json:"duration_ms"`
	OK         bool              `json:"ok"`
	Error      string            `json:"error,omitempty"`
	Summary    model.SyncSummary `json:"summary"`
}

// syncKey orders history entries chronologically; the ID breaks ties.
func syncKey(r SyncRecord) []byte {
	return []byte(r.StartedAt.UTC().Format("20060102T150405.000000000") + "|" + r.ID)
}

// PutSync appends a sync record, assigning an ID if it has none.
// The preview launch list is not persisted.
func (s *Store) PutSync(r SyncRecord) (SyncRecord, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now().UTC()
	}
	r.Summary.Launches = nil
	b, err := json.Marshal(r)
	if err != nil {
		return r, fmt.Errorf("encoding sync record: %w", err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSyncs).Put(syncKey(r), b)
	})
	return r, err
}

// ListSyncs returns up to limit sync records, newest first.
// limit <= 0 returns all of them.
func (s *Store) ListSyncs(limit int) ([]SyncRecord, error) {
	var out []SyncRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketSyncs).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var r SyncRecord
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			out = append(out, r)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
		return nil
	})
	return out, err
}

// ─── Presets ──────────────────────────────────────────────────────────────────

// Preset is a named set of filter criteria.
type Preset struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Filters   model.Filters `json:"filters"`
	CreatedAt time.Time     `json:"created_at"`
}

func presetKey(name string) []byte {
	return []byte("preset:" + strings.ToLower(name))
}

// PutPreset saves a preset, replacing any preset with the same name
// (case-insensitive). A new ID is assigned unless one is set.
func (s *Store) PutPreset(p Preset) (Preset, error) {
	if strings.TrimSpace(p.Name) == "" {
		return p, fmt.Errorf("preset name is required")
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	b, err := json.Marshal(p)
	if err != nil {
		return p, fmt.Errorf("encoding preset: %w", err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPresets).Put(presetKey(p.Name), b)
	})
	return p, err
}

// GetPreset retrieves a preset by name.
func (s *Store) GetPreset(name string) (Preset, bool, error) {
	var p Preset
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketPresets).Get(presetKey(name))
		if v == nil {
			return nil
		}
		return json.Unmarshal(v, &p)
	})
	if err != nil {
		return p, false, err
	}
	return p, p.ID != "", nil
}

// ListPresets returns every preset sorted by name.
func (s *Store) ListPresets() ([]Preset, error) {
	var presets []Preset
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPresets).ForEach(func(k, v []byte) error {
			var p Preset
			if err := json.Unmarshal(v, &p); err != nil {
				return err
			}
			presets = append(presets, p)
			return nil
		})
	})
	return presets, err
}

// DeletePreset removes a preset. It reports whether the preset existed.
func (s *Store) DeletePreset(name string) (bool, error) {
	var existed bool
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPresets)
		existed = b.Get(presetKey(name)) != nil
		return b.Delete(presetKey(name))
	})
	return existed, err
}

// ─── Stats & Maintenance ──────────────────────────────────────────────────────

// BucketStats holds row count and byte size for a single bucket.
type BucketStats struct {
	Name  string
	Count int
	Bytes int64
}

// Stats returns row counts and approximate sizes for all user buckets,
// in AllBuckets order.
func (s *Store) Stats() ([]BucketStats, error) {
	var stats []BucketStats
	err := s.db.View(func(tx *bolt.Tx) error {
		for _, name := range AllBuckets {
			b := tx.Bucket([]byte(name))
			if b == nil {
				continue
			}
			var count int
			var bytes int64
			if err := b.ForEach(func(k, v []byte) error {
				count++
				bytes += int64(len(k) + len(v))
				return nil
			}); err != nil {
				return err
			}
			stats = append(stats, BucketStats{Name: name, Count: count, Bytes: bytes})
		}
		return nil
	})
	return stats, err
}

// ClearBucket deletes all entries in the named bucket.
func (s *Store) ClearBucket(name string) error {
	if !isUserBucket(name) {
		return fmt.Errorf("unknown bucket %q (valid: %s)", name, strings.Join(AllBuckets, ", "))
	}
	bname := []byte(name)
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bname); err != nil {
			return fmt.Errorf("clearing bucket %s: %w", name, err)
		}
		_, err := tx.CreateBucket(bname)
		return err
	})
}

// ClearAll deletes all entries from every user-facing bucket.
func (s *Store) ClearAll() error {
	for _, name := range AllBuckets {
		if err := s.ClearBucket(name); err != nil {
			return err
		}
	}
	return nil
}

func isUserBucket(name string) bool {
	i := sort.SearchStrings(sortedBuckets, name)
	return i < len(sortedBuckets) && sortedBuckets[i] == name
}

var sortedBuckets = func() []string {
	b := append([]string(nil), AllBuckets...)
	sort.Strings(b)
	return b
}()

// Compact rewrites the database into a fresh file, reclaiming the space
// freed by deletes. It returns the file size before and after.
func (s *Store) Compact() (before, after int64, err error) {
	fi, err := os.Stat(s.path)
	if err != nil {
		return 0, 0, err
	}
	before = fi.Size()

	tmp := s.path + ".compact"
	_ = os.Remove(tmp)
	dst, err := bolt.Open(tmp, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return before, 0, fmt.Errorf("opening compaction target: %w", err)
	}
	if err := bolt.Compact(dst, s.db, 1<<20); err != nil {
		dst.Close()
		os.Remove(tmp)
		return before, 0, fmt.Errorf("compacting: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(tmp)
		return before, 0, err
	}
	if err := s.db.Close(); err != nil {
		return before, 0, err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return before, 0, fmt.Errorf("replacing db: %w", err)
	}

	db, err := bolt.Open(s.path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return before, 0, fmt.Errorf("reopening db: %w", err)
	}
	s.db = db

	fi, err = os.Stat(s.path)
	if err != nil {
		return before, 0, err
	}
	return before, fi.Size(), nil
}
