// Package filter derives the visible launch set from the full batch and the
// user's filter criteria.
package filter

import (
	"sort"
	"strings"

	"github.com/derickschaefer/liftoff/internal/model"
)

// Apply returns the launches matching f, newest first.
//
// Status matches exactly unless it is "all" or empty. Search is a
// case-insensitive substring of mission, rocket or launchpad. DateFrom and
// DateTo bound the raw launch_date string lexically, inclusive on both ends.
// The result is ordered by parsed launch date descending; launches whose
// date does not parse sink to the end in their original relative order.
//
// The input slice is never modified.
func Apply(launches []model.Launch, f model.Filters) []model.Launch {
	needle := strings.ToLower(f.Search)
	out := make([]model.Launch, 0, len(launches))
	for _, l := range launches {
		if !Match(l, f.Status, needle, f.DateFrom, f.DateTo) {
			continue
		}
		out = append(out, l)
	}
	SortNewestFirst(out)
	return out
}

// Match reports whether a single launch passes every criterion.
// needle must already be lower-cased.
func Match(l model.Launch, status, needle, from, to string) bool {
	if status != "" && status != model.StatusAll && string(l.Status) != status {
		return false
	}
	if needle != "" &&
		!strings.Contains(strings.ToLower(l.MissionName), needle) &&
		!strings.Contains(strings.ToLower(l.RocketName), needle) &&
		!strings.Contains(strings.ToLower(l.Launchpad), needle) {
		return false
	}
	if from != "" && l.LaunchDate < from {
		return false
	}
	if to != "" && l.LaunchDate > to {
		return false
	}
	return true
}

// SortNewestFirst stable-sorts launches in place by parsed date descending.
func SortNewestFirst(launches []model.Launch) {
	keys := make([]int64, len(launches))
	valid := make([]bool, len(launches))
	for i, l := range launches {
		if t, ok := model.ParseLaunchDate(l.LaunchDate); ok {
			keys[i], valid[i] = t.UnixMilli(), true
		}
	}
	sort.Stable(byDateDesc{launches: launches, keys: keys, valid: valid})
}

type byDateDesc struct {
	launches []model.Launch
	keys     []int64
	valid    []bool
}

func (s byDateDesc) Len() int { return len(s.launches) }

func (s byDateDesc) Less(i, j int) bool {
	if s.valid[i] != s.valid[j] {
		return s.valid[i]
	}
	return s.valid[i] && s.keys[i] > s.keys[j]
}

func (s byDateDesc) Swap(i, j int) {
	s.launches[i], s.launches[j] = s.launches[j], s.launches[i]
	s.keys[i], s.keys[j] = s.keys[j], s.keys[i]
	s.valid[i], s.valid[j] = s.valid[j], s.valid[i]
}
