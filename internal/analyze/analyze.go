// Package analyze computes summary statistics and chart aggregates over
// slices of launches. All functions are pure; no I/O.
package analyze

import (
	"math"
	"sort"
	"strconv"

	"github.com/derickschaefer/liftoff/internal/model"
)

// ─── Summary ──────────────────────────────────────────────────────────────────

// ComputeStats classifies every launch by its stored status in a single pass.
// The success rate only counts decided launches (success + failed) and is
// rounded half away from zero; it is 0 when nothing has been decided yet.
func ComputeStats(launches []model.Launch) model.Stats {
	s := model.Stats{Total: len(launches)}
	for _, l := range launches {
		switch l.Status {
		case model.StatusSuccess:
			s.Success++
		case model.StatusFailed:
			s.Failed++
		case model.StatusUpcoming:
			s.Upcoming++
		default:
			s.Unknown++
		}
	}
	s.SuccessRate = SuccessRate(s.Success, s.Failed)
	return s
}

// SuccessRate returns round(100 * success / (success + failed)), or 0 when
// the denominator is zero.
func SuccessRate(success, failed int) int {
	decided := success + failed
	if decided == 0 {
		return 0
	}
	return int(math.Round(float64(success) / float64(decided) * 100))
}

// ─── Status Distribution ──────────────────────────────────────────────────────

// StatusCount is one slice of the status distribution.
type StatusCount struct {
	Status model.Status `json:"status"`
	Count  int          `json:"count"`
}

// StatusDistribution returns counts for every status in model.AllStatuses order.
func StatusDistribution(launches []model.Launch) []StatusCount {
	counts := make(map[model.Status]int, len(model.AllStatuses))
	for _, l := range launches {
		counts[model.ParseStatus(string(l.Status))]++
	}
	out := make([]StatusCount, len(model.AllStatuses))
	for i, st := range model.AllStatuses {
		out[i] = StatusCount{Status: st, Count: counts[st]}
	}
	return out
}

// ─── Launches by Year ─────────────────────────────────────────────────────────

// NoYear labels launches whose date is missing or unparseable.
const NoYear = "N/A"

// YearBucket holds per-outcome counts for one calendar year.
// Unknown-status launches are not counted in any column.
type YearBucket struct {
	Year     string `json:"year"`
	Success  int    `json:"success"`
	Failed   int    `json:"failed"`
	Upcoming int    `json:"upcoming"`
}

// Total returns the number of counted launches in the bucket.
func (b YearBucket) Total() int {
	return b.Success + b.Failed + b.Upcoming
}

// LaunchesByYear groups launches by UTC year. Buckets are ordered by label,
// so NoYear sorts after every four-digit year.
func LaunchesByYear(launches []model.Launch) []YearBucket {
	byYear := make(map[string]*YearBucket)
	for _, l := range launches {
		year := NoYear
		if t, ok := model.ParseLaunchDate(l.LaunchDate); ok {
			year = strconv.Itoa(t.UTC().Year())
		}
		b, ok := byYear[year]
		if !ok {
			b = &YearBucket{Year: year}
			byYear[year] = b
		}
		switch l.Status {
		case model.StatusSuccess:
			b.Success++
		case model.StatusFailed:
			b.Failed++
		case model.StatusUpcoming:
			b.Upcoming++
		}
	}

	out := make([]YearBucket, 0, len(byYear))
	for _, b := range byYear {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// ─── Cumulative Success ───────────────────────────────────────────────────────

// Point is a labelled value on a line chart.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// CumulativeSuccess returns the running count of successful launches in
// chronological order. Launches without a valid date are skipped.
func CumulativeSuccess(launches []model.Launch) []Point {
	type dated struct {
		ms    int64
		label string
	}
	var successes []dated
	for _, l := range launches {
		if l.Status != model.StatusSuccess {
			continue
		}
		t, ok := model.ParseLaunchDate(l.LaunchDate)
		if !ok {
			continue
		}
		successes = append(successes, dated{ms: t.UnixMilli(), label: t.UTC().Format("Jan 06")})
	}
	sort.SliceStable(successes, func(i, j int) bool { return successes[i].ms < successes[j].ms })

	points := make([]Point, len(successes))
	for i, s := range successes {
		points[i] = Point{Label: s.label, Value: float64(i + 1)}
	}
	return points
}
