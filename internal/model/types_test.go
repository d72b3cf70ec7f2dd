package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/derickschaefer/liftoff/internal/model"
)

// ─── Status ───────────────────────────────────────────────────────────────────

func TestParseStatus(t *testing.T) {
	cases := map[string]model.Status{
		"success":  model.StatusSuccess,
		"failed":   model.StatusFailed,
		"upcoming": model.StatusUpcoming,
		"unknown":  model.StatusUnknown,
		"":         model.StatusUnknown,
		"SUCCESS":  model.StatusUnknown,
		"partial":  model.StatusUnknown,
	}
	for in, want := range cases {
		if got := model.ParseStatus(in); got != want {
			t.Errorf("ParseStatus(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestLaunchUnmarshalMapsUnknownStatus(t *testing.T) {
	raw := `[
		{"launch_id":"a","status":"success"},
		{"launch_id":"b","status":"scrubbed"},
		{"launch_id":"c","status":null}
	]`
	var launches []model.Launch
	if err := json.Unmarshal([]byte(raw), &launches); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := []model.Status{model.StatusSuccess, model.StatusUnknown, model.StatusUnknown}
	for i, l := range launches {
		if l.Status != want[i] {
			t.Errorf("launch %s: expected status %q, got %q", l.ID, want[i], l.Status)
		}
	}
}

func TestLaunchUnmarshalPassesEmptyFieldsThrough(t *testing.T) {
	raw := `{"launch_id":"x","mission_name":"FalconSat","rocket_name":"","details":"","webcast_url":""}`
	var l model.Launch
	if err := json.Unmarshal([]byte(raw), &l); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if l.RocketName != "" || l.Details != "" || l.WebcastURL != "" {
		t.Errorf("expected empty optional fields, got %+v", l)
	}
	if l.MissionName != "FalconSat" {
		t.Errorf("MissionName: expected FalconSat, got %q", l.MissionName)
	}
}

// ─── Dates ────────────────────────────────────────────────────────────────────

func TestParseLaunchDate(t *testing.T) {
	cases := []struct {
		in   string
		ok   bool
		want time.Time
	}{
		{"2006-03-24T22:30:00.000Z", true, time.Date(2006, 3, 24, 22, 30, 0, 0, time.UTC)},
		{"2020-01-01T00:00:00Z", true, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2020-01-01T10:00:00", true, time.Date(2020, 1, 1, 10, 0, 0, 0, time.UTC)},
		{"2020-01-01", true, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2020-05", true, time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC)},
		{"", false, time.Time{}},
		{"not a date", false, time.Time{}},
		{"24/03/2006", false, time.Time{}},
	}
	for _, c := range cases {
		got, ok := model.ParseLaunchDate(c.in)
		if ok != c.ok {
			t.Errorf("ParseLaunchDate(%q): expected ok=%v, got %v", c.in, c.ok, ok)
			continue
		}
		if ok && !got.Equal(c.want) {
			t.Errorf("ParseLaunchDate(%q): expected %v, got %v", c.in, c.want, got)
		}
	}
}

func TestEpochString(t *testing.T) {
	if got := model.EpochString("1970-01-01T00:00:01Z"); got != "1000" {
		t.Errorf("EpochString: expected 1000, got %q", got)
	}
	if got := model.EpochString("1969-12-31T23:59:59Z"); got != "-1000" {
		t.Errorf("EpochString: expected -1000, got %q", got)
	}
	if got := model.EpochString("garbage"); got != "NaN" {
		t.Errorf("EpochString: expected NaN, got %q", got)
	}
	if got := model.EpochString(""); got != "NaN" {
		t.Errorf("EpochString empty: expected NaN, got %q", got)
	}
}

// ─── Filters ──────────────────────────────────────────────────────────────────

func TestDefaultFiltersIsZero(t *testing.T) {
	f := model.DefaultFilters()
	if f.Status != model.StatusAll {
		t.Errorf("Status: expected all, got %q", f.Status)
	}
	if !f.IsZero() {
		t.Error("default filters should report IsZero")
	}
	f.Search = "falcon"
	if f.IsZero() {
		t.Error("filters with search text should not report IsZero")
	}
}

func TestParseFilterStatus(t *testing.T) {
	for _, in := range []string{"", "all", "ALL", "success", "failed", "Upcoming"} {
		if _, err := model.ParseFilterStatus(in); err != nil {
			t.Errorf("ParseFilterStatus(%q): unexpected error %v", in, err)
		}
	}
	if _, err := model.ParseFilterStatus("unknown"); err == nil {
		t.Error("unknown is not a selectable filter status")
	}
}
