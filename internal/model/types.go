// Package model defines the canonical data types used throughout liftoff.
// These types are the single source of truth for launch records as served by
// the backend API and the result envelope that every command returns.
package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ─── Launch Status ────────────────────────────────────────────────────────────

// Status is the outcome category of a launch.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
	StatusUpcoming Status = "upcoming"
	StatusUnknown  Status = "unknown"
)

// AllStatuses lists every status in display order.
var AllStatuses = []Status{StatusSuccess, StatusFailed, StatusUpcoming, StatusUnknown}

// ParseStatus maps a raw backend value onto the status enum.
// Anything other than success, failed or upcoming becomes unknown.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusSuccess, StatusFailed, StatusUpcoming:
		return Status(s)
	default:
		return StatusUnknown
	}
}

// UnmarshalJSON decodes a status, collapsing unrecognised values to unknown.
func (s *Status) UnmarshalJSON(b []byte) error {
	var raw interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	str, _ := raw.(string)
	*s = ParseStatus(str)
	return nil
}

// ─── Launch Record ────────────────────────────────────────────────────────────

// Launch is one launch event as returned by GET /launches.
// LaunchDate is kept verbatim; use ParseLaunchDate when a time is needed.
type Launch struct {
	ID           string   `json:"launch_id"`
	MissionName  string   `json:"mission_name"`
	RocketName   string   `json:"rocket_name"`
	LaunchDate   string   `json:"launch_date"`
	Status       Status   `json:"status"`
	Launchpad    string   `json:"launchpad"`
	FlightNumber string   `json:"flight_number"`
	Details      string   `json:"details"`
	Payloads     []string `json:"payloads,omitempty"`
	WebcastURL   string   `json:"webcast_url"`
	ArticleURL   string   `json:"article_url"`
	WikipediaURL string   `json:"wikipedia_url"`
	PatchSmall   string   `json:"patch_small"`
	PatchLarge   string   `json:"patch_large"`
}

// dateLayouts are tried in order by ParseLaunchDate.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006-01",
	"2006",
}

// ParseLaunchDate parses a raw launch date. Values without a zone are UTC.
// The bool is false for empty or unparseable input.
func ParseLaunchDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// EpochString returns the epoch milliseconds of the parsed date as a decimal
// string, or "NaN" when the date cannot be parsed.
func EpochString(s string) string {
	t, ok := ParseLaunchDate(s)
	if !ok {
		return "NaN"
	}
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// ─── Filters ──────────────────────────────────────────────────────────────────

// StatusAll disables the status filter.
const StatusAll = "all"

// Filters is the user-controlled filter criteria. Empty strings are unbounded.
type Filters struct {
	Status   string `json:"status"`
	Search   string `json:"search"`
	DateFrom string `json:"date_from"`
	DateTo   string `json:"date_to"`
}

// DefaultFilters returns the "no filter" criteria.
func DefaultFilters() Filters {
	return Filters{Status: StatusAll}
}

// IsZero reports whether no criterion is active.
func (f Filters) IsZero() bool {
	return (f.Status == "" || f.Status == StatusAll) &&
		f.Search == "" && f.DateFrom == "" && f.DateTo == ""
}

// ParseFilterStatus validates a status filter value. Empty means all.
func ParseFilterStatus(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", StatusAll:
		return StatusAll, nil
	case string(StatusSuccess), string(StatusFailed), string(StatusUpcoming):
		return s, nil
	}
	return "", fmt.Errorf("invalid status %q: expected all|success|failed|upcoming", s)
}

// ─── Stats ────────────────────────────────────────────────────────────────────

// Stats summarises a launch batch. SuccessRate is a whole percentage.
type Stats struct {
	Total       int `json:"total"`
	Success     int `json:"success"`
	Failed      int `json:"failed"`
	Upcoming    int `json:"upcoming"`
	Unknown     int `json:"unknown"`
	SuccessRate int `json:"success_rate"`
}

// ServerStats is the backend's own /launches/stats payload.
type ServerStats struct {
	Total       int     `json:"total"`
	Success     int     `json:"success"`
	Failed      int     `json:"failed"`
	Upcoming    int     `json:"upcoming"`
	SuccessRate float64 `json:"success_rate"`
}

// ─── Sync ─────────────────────────────────────────────────────────────────────

// SyncPreview is one entry of the preview list returned by POST /trigger.
type SyncPreview struct {
	ID          string `json:"launch_id"`
	MissionName string `json:"mission_name"`
	LaunchDate  string `json:"launch_date"`
	Status      Status `json:"status"`
}

// SyncSummary is the response of POST /trigger.
type SyncSummary struct {
	TotalFetched int           `json:"total_fetched"`
	Inserted     int           `json:"inserted"`
	Updated      int           `json:"updated"`
	Errors       int           `json:"errors"`
	Launches     []SyncPreview `json:"launches,omitempty"`
}

// Health is the backend /health payload.
type Health struct {
	Status   string `json:"status"`
	DynamoDB string `json:"dynamodb"`
	Version  string `json:"version"`
}

// ─── Result Envelope ─────────────────────────────────────────────────────────

// ResultStats carries performance and cache metadata for a command result.
type ResultStats struct {
	CacheHit   bool  `json:"cache_hit"`
	DurationMs int64 `json:"duration_ms"`
	Items      int   `json:"items"`
}

// Result is the uniform envelope returned by every command.
// Renderers switch on Kind to format Data.
type Result struct {
	Kind        string      `json:"kind"`
	GeneratedAt time.Time   `json:"generated_at"`
	Command     string      `json:"command"`
	Data        interface{} `json:"data"`
	Warnings    []string    `json:"warnings,omitempty"`
	Stats       ResultStats `json:"stats"`
}

// Kind constants for Result.Kind.
const (
	KindLaunches = "launches"
	KindLaunch   = "launch"
	KindPage     = "launch_page"
	KindStats    = "stats"
	KindTimeline = "timeline"
	KindSync     = "sync"
	KindHealth   = "health"
	KindTable    = "table"
)

// LaunchPage is one page of the sorted visible set.
type LaunchPage struct {
	Items      []Launch `json:"items"`
	Page       int      `json:"page"`
	TotalPages int      `json:"total_pages"`
	Total      int      `json:"total"`
	SortKey    string   `json:"sort_key"`
	Ascending  bool     `json:"ascending"`
}
