package store_test

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/derickschaefer/liftoff/internal/model"
	"github.com/derickschaefer/liftoff/internal/store"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

// testDB opens a fresh isolated database in t.TempDir().
func testDB(t *testing.T) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := store.Open(path)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func makeLaunches(n int) []model.Launch {
	out := make([]model.Launch, n)
	for i := range out {
		out[i] = model.Launch{
			ID:          fmt.Sprintf("L%03d", i),
			MissionName: fmt.Sprintf("Mission %d", i),
			LaunchDate:  "2020-01-01T00:00:00Z",
			Status:      model.StatusSuccess,
			Payloads:    []string{"sat"},
		}
	}
	return out
}

// ─── Open / Path ──────────────────────────────────────────────────────────────

func TestOpenCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "liftoff.db")
	s, err := store.Open(path)
	if err != nil {
		t.Fatalf("Open with nested path: %v", err)
	}
	defer s.Close()
	if s.Path() != path {
		t.Errorf("Path: expected %q, got %q", path, s.Path())
	}
}

// ─── Launch Batch ─────────────────────────────────────────────────────────────

func TestLoadLaunchesEmpty(t *testing.T) {
	s := testDB(t)
	launches, at, ok, err := s.LoadLaunches()
	if err != nil {
		t.Fatalf("LoadLaunches: %v", err)
	}
	if ok || launches != nil || !at.IsZero() {
		t.Errorf("expected nothing cached, got ok=%v len=%d at=%v", ok, len(launches), at)
	}
}

func TestSaveLoadLaunches(t *testing.T) {
	s := testDB(t)
	at := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	if err := s.SaveLaunches(makeLaunches(20), at); err != nil {
		t.Fatalf("SaveLaunches: %v", err)
	}

	got, gotAt, ok, err := s.LoadLaunches()
	if err != nil || !ok {
		t.Fatalf("LoadLaunches: ok=%v err=%v", ok, err)
	}
	if len(got) != 20 {
		t.Errorf("expected 20 launches, got %d", len(got))
	}
	if !gotAt.Equal(at) {
		t.Errorf("FetchedAt: expected %v, got %v", at, gotAt)
	}
	if got[5].ID != "L005" || got[5].Payloads[0] != "sat" {
		t.Errorf("launch 5 round-trip: got %+v", got[5])
	}
}

func TestSaveLaunchesEmptyBatchIsCached(t *testing.T) {
	s := testDB(t)
	if err := s.SaveLaunches(nil, time.Now()); err != nil {
		t.Fatalf("SaveLaunches: %v", err)
	}
	got, _, ok, err := s.LoadLaunches()
	if err != nil || !ok {
		t.Fatalf("expected an empty batch to be found: ok=%v err=%v", ok, err)
	}
	if len(got) != 0 {
		t.Errorf("expected 0 launches, got %d", len(got))
	}
}

func TestSaveLaunchesReplacesPrevious(t *testing.T) {
	s := testDB(t)
	_ = s.SaveLaunches(makeLaunches(10), time.Now())
	_ = s.SaveLaunches(makeLaunches(3), time.Now())

	if _, found, _ := s.GetLaunch("L009"); found {
		t.Error("L009 should be gone after a smaller batch replaced it")
	}
	if _, found, _ := s.GetLaunch("L002"); !found {
		t.Error("L002 should still be present")
	}
	got, _, _, _ := s.LoadLaunches()
	if len(got) != 3 {
		t.Errorf("expected 3 launches, got %d", len(got))
	}
}

func TestGetLaunch(t *testing.T) {
	s := testDB(t)
	_ = s.SaveLaunches(makeLaunches(3), time.Now())

	l, found, err := s.GetLaunch("L001")
	if err != nil || !found {
		t.Fatalf("GetLaunch: found=%v err=%v", found, err)
	}
	if l.MissionName != "Mission 1" {
		t.Errorf("MissionName: expected 'Mission 1', got %q", l.MissionName)
	}
	if _, found, _ := s.GetLaunch("nope"); found {
		t.Error("expected not found for unknown ID")
	}
}

// ─── Sync History ─────────────────────────────────────────────────────────────

func TestPutListSyncs(t *testing.T) {
	s := testDB(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		rec := store.SyncRecord{
			StartedAt: base.Add(time.Duration(i) * time.Hour),
			OK:        i != 2,
			Summary:   model.SyncSummary{TotalFetched: 100 + i},
		}
		if i == 2 {
			rec.Error = "HTTP 500"
		}
		saved, err := s.PutSync(rec)
		if err != nil {
			t.Fatalf("PutSync %d: %v", i, err)
		}
		if saved.ID == "" {
			t.Errorf("PutSync %d: expected an ID to be assigned", i)
		}
	}

	all, err := s.ListSyncs(0)
	if err != nil {
		t.Fatalf("ListSyncs: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 records, got %d", len(all))
	}
	if all[0].Summary.TotalFetched != 104 {
		t.Errorf("newest first: expected 104, got %d", all[0].Summary.TotalFetched)
	}
	if all[2].OK || all[2].Error != "HTTP 500" {
		t.Errorf("failed sync round-trip: got %+v", all[2])
	}

	two, _ := s.ListSyncs(2)
	if len(two) != 2 {
		t.Errorf("limit 2: got %d", len(two))
	}
}

func TestPutSyncDropsPreview(t *testing.T) {
	s := testDB(t)
	_, _ = s.PutSync(store.SyncRecord{OK: true, Summary: model.SyncSummary{
		Launches: []model.SyncPreview{{ID: "x"}},
	}})
	recs, _ := s.ListSyncs(1)
	if len(recs) != 1 || len(recs[0].Summary.Launches) != 0 {
		t.Errorf("preview list should not be stored: %+v", recs)
	}
}

// ─── Presets ──────────────────────────────────────────────────────────────────

func TestPresetLifecycle(t *testing.T) {
	s := testDB(t)
	f := model.Filters{Status: "failed", Search: "falcon", DateFrom: "2010"}

	saved, err := s.PutPreset(store.Preset{Name: "Falcon-Failures", Filters: f})
	if err != nil {
		t.Fatalf("PutPreset: %v", err)
	}
	if saved.ID == "" || saved.CreatedAt.IsZero() {
		t.Errorf("PutPreset should stamp ID and CreatedAt: %+v", saved)
	}

	got, found, err := s.GetPreset("falcon-failures")
	if err != nil || !found {
		t.Fatalf("GetPreset (case-insensitive): found=%v err=%v", found, err)
	}
	if got.Filters != f {
		t.Errorf("Filters: expected %+v, got %+v", f, got.Filters)
	}

	existed, err := s.DeletePreset("FALCON-FAILURES")
	if err != nil || !existed {
		t.Errorf("DeletePreset: existed=%v err=%v", existed, err)
	}
	if _, found, _ := s.GetPreset("falcon-failures"); found {
		t.Error("preset should be gone after delete")
	}
	existed, _ = s.DeletePreset("falcon-failures")
	if existed {
		t.Error("second delete should report not existed")
	}
}

func TestPutPresetRequiresName(t *testing.T) {
	s := testDB(t)
	if _, err := s.PutPreset(store.Preset{Name: "  "}); err == nil {
		t.Error("expected error for blank preset name")
	}
}

func TestListPresetsSortedByName(t *testing.T) {
	s := testDB(t)
	for _, n := range []string{"zeta", "Alpha", "mid"} {
		if _, err := s.PutPreset(store.Preset{Name: n}); err != nil {
			t.Fatalf("PutPreset %s: %v", n, err)
		}
	}
	presets, err := s.ListPresets()
	if err != nil {
		t.Fatalf("ListPresets: %v", err)
	}
	want := []string{"Alpha", "mid", "zeta"}
	for i, p := range presets {
		if p.Name != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], p.Name)
		}
	}
}

// ─── Stats & Maintenance ──────────────────────────────────────────────────────

func TestStats(t *testing.T) {
	s := testDB(t)
	_ = s.SaveLaunches(makeLaunches(4), time.Now())
	_, _ = s.PutPreset(store.Preset{Name: "p"})

	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if len(stats) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(stats))
	}
	byName := map[string]store.BucketStats{}
	for _, b := range stats {
		byName[b.Name] = b
	}
	if byName["launches"].Count != 5 {
		t.Errorf("launches: expected 4 entries + batch = 5, got %d", byName["launches"].Count)
	}
	if byName["presets"].Count != 1 || byName["syncs"].Count != 0 {
		t.Errorf("counts: %+v", byName)
	}
	if byName["launches"].Bytes <= 0 {
		t.Error("launches bytes should be positive")
	}
}

func TestClearBucket(t *testing.T) {
	s := testDB(t)
	_ = s.SaveLaunches(makeLaunches(2), time.Now())
	_, _ = s.PutPreset(store.Preset{Name: "keep"})

	if err := s.ClearBucket("launches"); err != nil {
		t.Fatalf("ClearBucket: %v", err)
	}
	if _, _, ok, _ := s.LoadLaunches(); ok {
		t.Error("batch should be gone after clearing launches")
	}
	if _, found, _ := s.GetPreset("keep"); !found {
		t.Error("clearing launches must not touch presets")
	}
	if err := s.ClearBucket("_meta"); err == nil {
		t.Error("expected error clearing an internal bucket")
	}
}

func TestClearAll(t *testing.T) {
	s := testDB(t)
	_ = s.SaveLaunches(makeLaunches(2), time.Now())
	_, _ = s.PutSync(store.SyncRecord{OK: true})
	_, _ = s.PutPreset(store.Preset{Name: "p"})

	if err := s.ClearAll(); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	stats, _ := s.Stats()
	for _, b := range stats {
		if b.Count != 0 {
			t.Errorf("bucket %s: expected empty, got %d", b.Name, b.Count)
		}
	}
}

func TestCompact(t *testing.T) {
	s := testDB(t)
	_ = s.SaveLaunches(makeLaunches(500), time.Now())
	_ = s.ClearBucket("launches")

	before, after, err := s.Compact()
	if err != nil {
		t.Fatalf("Compact: %v", err)
	}
	if after > before {
		t.Errorf("compacted file grew: %d -> %d", before, after)
	}

	// The store must remain usable after compaction.
	if _, err := s.PutPreset(store.Preset{Name: "after"}); err != nil {
		t.Errorf("PutPreset after Compact: %v", err)
	}
	if _, found, _ := s.GetPreset("after"); !found {
		t.Error("preset written after Compact not found")
	}
}
