// Package table sorts and paginates the visible launch set for the launch
// table. Sorting is stable and purely textual; pagination never wraps.
package table

import (
	"fmt"
	"sort"
	"strings"

	"github.com/derickschaefer/liftoff/internal/model"
)

// PageSize is the fixed number of rows per table page.
const PageSize = 15

// SortKey names a sortable column.
type SortKey string

const (
	ByLaunchDate   SortKey = "launch_date"
	ByMissionName  SortKey = "mission_name"
	ByFlightNumber SortKey = "flight_number"
	ByStatus       SortKey = "status"
)

// SortKeys lists the sortable columns in header order.
var SortKeys = []SortKey{ByFlightNumber, ByMissionName, ByLaunchDate, ByStatus}

// ParseSortKey validates a column name. A few short aliases are accepted.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "launch_date", "date":
		return ByLaunchDate, nil
	case "mission_name", "mission":
		return ByMissionName, nil
	case "flight_number", "flight":
		return ByFlightNumber, nil
	case "status":
		return ByStatus, nil
	}
	return "", fmt.Errorf("invalid sort key %q: expected launch_date|mission_name|flight_number|status", s)
}

// Value returns the string the key sorts on for a launch. Launch dates sort
// on their epoch-millisecond string ("NaN" when invalid), so the ordering is
// lexical even for dates.
func (k SortKey) Value(l model.Launch) string {
	switch k {
	case ByMissionName:
		return l.MissionName
	case ByFlightNumber:
		return l.FlightNumber
	case ByStatus:
		return string(l.Status)
	default:
		return model.EpochString(l.LaunchDate)
	}
}

// Sort returns a stably sorted copy of launches. Descending order reverses
// the comparison rather than the result, so ties keep their input order in
// both directions.
func Sort(launches []model.Launch, key SortKey, ascending bool) []model.Launch {
	out := make([]model.Launch, len(launches))
	copy(out, launches)

	vals := make([]string, len(out))
	for i, l := range out {
		vals[i] = key.Value(l)
	}
	sort.Stable(byValue{launches: out, vals: vals, asc: ascending})
	return out
}

type byValue struct {
	launches []model.Launch
	vals     []string
	asc      bool
}

func (s byValue) Len() int { return len(s.launches) }

func (s byValue) Less(i, j int) bool {
	if s.asc {
		return s.vals[i] < s.vals[j]
	}
	return s.vals[i] > s.vals[j]
}

func (s byValue) Swap(i, j int) {
	s.launches[i], s.launches[j] = s.launches[j], s.launches[i]
	s.vals[i], s.vals[j] = s.vals[j], s.vals[i]
}

// ─── Pagination ───────────────────────────────────────────────────────────────

// Page is one slice of a sorted set.
type Page struct {
	Items      []model.Launch
	Page       int
	TotalPages int
	Total      int
}

// TotalPages returns max(1, ceil(n/size)).
func TotalPages(n, size int) int {
	if size <= 0 {
		size = PageSize
	}
	pages := (n + size - 1) / size
	if pages < 1 {
		return 1
	}
	return pages
}

// Paginate returns items [(page-1)*size, page*size) of sorted. A page outside
// [1, TotalPages] yields no items.
func Paginate(sorted []model.Launch, page, size int) Page {
	if size <= 0 {
		size = PageSize
	}
	p := Page{
		Items:      []model.Launch{},
		Page:       page,
		TotalPages: TotalPages(len(sorted), size),
		Total:      len(sorted),
	}
	if page < 1 || page > p.TotalPages {
		return p
	}
	start := (page - 1) * size
	if start >= len(sorted) {
		return p
	}
	end := start + size
	if end > len(sorted) {
		end = len(sorted)
	}
	p.Items = sorted[start:end]
	return p
}

// SortAndPaginate sorts launches and returns the requested page.
func SortAndPaginate(launches []model.Launch, key SortKey, ascending bool, page, size int) Page {
	return Paginate(Sort(launches, key, ascending), page, size)
}

// ─── View State ───────────────────────────────────────────────────────────────

// State is the table's sort and page selection.
type State struct {
	Key       SortKey
	Ascending bool
	Page      int
}

// NewState returns the default: newest launches first, page 1.
func NewState() State {
	return State{Key: ByLaunchDate, Ascending: false, Page: 1}
}

// Toggle selects a sort column. Re-selecting the active column flips the
// direction; a new column starts ascending. The page resets to 1.
func (s *State) Toggle(key SortKey) {
	if s.Key == key {
		s.Ascending = !s.Ascending
	} else {
		s.Key = key
		s.Ascending = true
	}
	s.Page = 1
}

// Reset returns to page 1 without touching the sort.
func (s *State) Reset() { s.Page = 1 }

// Next advances one page unless already on the last page of total rows.
func (s *State) Next(total int) {
	if s.Page < TotalPages(total, PageSize) {
		s.Page++
	}
}

// Prev goes back one page unless already on page 1.
func (s *State) Prev() {
	if s.Page > 1 {
		s.Page--
	}
}

// First jumps to page 1.
func (s *State) First() { s.Page = 1 }

// Last jumps to the final page of total rows.
func (s *State) Last(total int) { s.Page = TotalPages(total, PageSize) }

// Clamp pulls the page back into range after the row count shrinks.
func (s *State) Clamp(total int) {
	last := TotalPages(total, PageSize)
	if s.Page > last {
		s.Page = last
	}
	if s.Page < 1 {
		s.Page = 1
	}
}

// Apply sorts and paginates launches with the current selection.
func (s State) Apply(launches []model.Launch) Page {
	return SortAndPaginate(launches, s.Key, s.Ascending, s.Page, PageSize)
}

// Arrow returns the header indicator for a column.
func (s State) Arrow(key SortKey) string {
	if s.Key != key {
		return "⇅"
	}
	if s.Ascending {
		return "▲"
	}
	return "▼"
}
