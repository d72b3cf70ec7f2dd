// Package view holds the presentation helpers shared by the CLI renderers
// and the terminal dashboard: status badges, date labels, text excerpts,
// stats cards and timeline entries.
package view

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/derickschaefer/liftoff/internal/filter"
	"github.com/derickschaefer/liftoff/internal/model"
)

// Display limits.
const (
	TableDetailsLen    = 60
	TimelineDetailsLen = 100
	TimelineLimit      = 40
)

// Empty-state messages.
const (
	EmptyTable    = "No launches match the current filters."
	EmptyTimeline = "No launches to show on the timeline."
)

// Placeholder is shown for an empty optional column.
const Placeholder = "—"

// ─── Status ───────────────────────────────────────────────────────────────────

var statusIcons = map[model.Status]string{
	model.StatusSuccess:  "✅",
	model.StatusFailed:   "❌",
	model.StatusUpcoming: "📅",
	model.StatusUnknown:  "❓",
}

var statusLabels = map[model.Status]string{
	model.StatusSuccess:  "Success",
	model.StatusFailed:   "Failed",
	model.StatusUpcoming: "Upcoming",
	model.StatusUnknown:  "Unknown",
}

// Icon returns the status glyph, falling back to the unknown glyph.
func Icon(s model.Status) string {
	if i, ok := statusIcons[s]; ok {
		return i
	}
	return statusIcons[model.StatusUnknown]
}

// Label returns the human status name.
func Label(s model.Status) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return statusLabels[model.StatusUnknown]
}

// Badge returns icon and label together, e.g. "✅ Success".
func Badge(s model.Status) string {
	return Icon(s) + " " + Label(s)
}

// ─── Dates ────────────────────────────────────────────────────────────────────

// FormatDate renders a launch date as "02 Jan 2006". Unparseable input is
// returned unchanged.
func FormatDate(raw string) string {
	t, ok := model.ParseLaunchDate(raw)
	if !ok {
		return raw
	}
	return t.UTC().Format("02 Jan 2006")
}

// FormatDateTime renders a launch date as "02 Jan 2006 15:04".
func FormatDateTime(raw string) string {
	t, ok := model.ParseLaunchDate(raw)
	if !ok {
		return raw
	}
	return t.UTC().Format("02 Jan 2006 15:04")
}

// ─── Text ─────────────────────────────────────────────────────────────────────

// Excerpt keeps the first n characters of s and appends "…" when anything
// was cut.
func Excerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "…"
}

// Fit truncates s to at most width terminal cells.
func Fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

// OrPlaceholder returns s, or Placeholder when s is empty.
func OrPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}

// Links renders the available external links as compact glyphs.
func Links(l model.Launch) string {
	var parts []string
	if l.WebcastURL != "" {
		parts = append(parts, "▶")
	}
	if l.WikipediaURL != "" {
		parts = append(parts, "📖")
	}
	if l.ArticleURL != "" {
		parts = append(parts, "📰")
	}
	return strings.Join(parts, " ")
}

// ─── Stats Cards ──────────────────────────────────────────────────────────────

// Card is one stats tile.
type Card struct {
	Icon  string
	Label string
	Value string
}

// Cards returns the five stats tiles in display order.
func Cards(s model.Stats) []Card {
	return []Card{
		{Icon: "🚀", Label: "Total launches", Value: fmt.Sprint(s.Total)},
		{Icon: Icon(model.StatusSuccess), Label: "Successful", Value: fmt.Sprint(s.Success)},
		{Icon: Icon(model.StatusFailed), Label: "Failed", Value: fmt.Sprint(s.Failed)},
		{Icon: Icon(model.StatusUpcoming), Label: "Upcoming", Value: fmt.Sprint(s.Upcoming)},
		{Icon: "📊", Label: "Success rate", Value: fmt.Sprintf("%d%%", s.SuccessRate)},
	}
}

// ─── Timeline ─────────────────────────────────────────────────────────────────

// Side is the column a timeline entry is drawn in.
type Side string

const (
	Left  Side = "left"
	Right Side = "right"
)

// TimelineEntry is one card on the timeline.
type TimelineEntry struct {
	ID        string       `json:"launch_id"`
	Side      Side         `json:"side"`
	Icon      string       `json:"icon"`
	Status    model.Status `json:"status"`
	Mission   string       `json:"mission_name"`
	Date      string       `json:"date"`
	Rocket    string       `json:"rocket"`
	Launchpad string       `json:"launchpad,omitempty"`
	Details   string       `json:"details,omitempty"`
	Webcast   string       `json:"webcast_url,omitempty"`
	Wikipedia string       `json:"wikipedia_url,omitempty"`
}

// Timeline builds at most TimelineLimit entries from the visible set,
// newest first, alternating left and right.
func Timeline(visible []model.Launch) []TimelineEntry {
	sorted := append([]model.Launch(nil), visible...)
	filter.SortNewestFirst(sorted)
	if len(sorted) > TimelineLimit {
		sorted = sorted[:TimelineLimit]
	}

	out := make([]TimelineEntry, len(sorted))
	for i, l := range sorted {
		side := Left
		if i%2 == 1 {
			side = Right
		}
		rocket := l.RocketName
		if rocket == "" {
			rocket = "Unknown rocket"
		}
		out[i] = TimelineEntry{
			ID:        l.ID,
			Side:      side,
			Icon:      Icon(l.Status),
			Status:    l.Status,
			Mission:   l.MissionName,
			Date:      FormatDateTime(l.LaunchDate),
			Rocket:    rocket,
			Launchpad: l.Launchpad,
			Details:   Excerpt(l.Details, TimelineDetailsLen),
			Webcast:   l.WebcastURL,
			Wikipedia: l.WikipediaURL,
		}
	}
	return out
}
