package chart_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/derickschaefer/liftoff/internal/analyze"
	"github.com/derickschaefer/liftoff/internal/chart"
	"github.com/derickschaefer/liftoff/internal/model"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

func dist(success, failed, upcoming, unknown int) []analyze.StatusCount {
	return []analyze.StatusCount{
		{Status: model.StatusSuccess, Count: success},
		{Status: model.StatusFailed, Count: failed},
		{Status: model.StatusUpcoming, Count: upcoming},
		{Status: model.StatusUnknown, Count: unknown},
	}
}

// ramp builds n points with values 1..n and monthly labels.
func ramp(n int) []analyze.Point {
	out := make([]analyze.Point, n)
	for i := range out {
		out[i] = analyze.Point{Label: fmt.Sprintf("M%02d", i+1), Value: float64(i + 1)}
	}
	return out
}

// nonEmptyLines returns lines with at least one non-space character.
func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

// ─── StatusBars ───────────────────────────────────────────────────────────────

func TestStatusBarsBasic(t *testing.T) {
	var buf strings.Builder
	if err := chart.StatusBars(&buf, dist(5, 3, 2, 0), chart.BarOptions{Width: 60}); err != nil {
		t.Fatalf("StatusBars returned error: %v", err)
	}
	lines := nonEmptyLines(buf.String())
	if len(lines) != 5 {
		t.Fatalf("expected header + 4 bars, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "10 total") {
		t.Errorf("header: expected total, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "success") || !strings.Contains(lines[1], "50.0%") {
		t.Errorf("success row: got %q", lines[1])
	}
	if strings.Contains(lines[4], "█") {
		t.Errorf("zero count should have no bar: %q", lines[4])
	}
}

func TestStatusBarsLongestBarIsMax(t *testing.T) {
	var buf strings.Builder
	_ = chart.StatusBars(&buf, dist(100, 1, 0, 0), chart.BarOptions{Width: 60})
	lines := nonEmptyLines(buf.String())
	success := strings.Count(lines[1], "█")
	failed := strings.Count(lines[2], "█")
	if failed != 1 {
		t.Errorf("tiny non-zero count should get 1 block, got %d", failed)
	}
	if success <= failed {
		t.Errorf("success bar (%d) should be longer than failed (%d)", success, failed)
	}
}

func TestStatusBarsEmpty(t *testing.T) {
	var buf strings.Builder
	if err := chart.StatusBars(&buf, dist(0, 0, 0, 0), chart.BarOptions{}); err == nil {
		t.Error("expected error when every count is zero")
	}
	if err := chart.StatusBars(&buf, nil, chart.BarOptions{}); err == nil {
		t.Error("expected error for nil distribution")
	}
}

// ─── YearBars ─────────────────────────────────────────────────────────────────

func TestYearBarsStacked(t *testing.T) {
	buckets := []analyze.YearBucket{
		{Year: "2006", Failed: 1},
		{Year: "2020", Success: 20, Failed: 1, Upcoming: 3},
		{Year: analyze.NoYear, Upcoming: 2},
	}
	var buf strings.Builder
	if err := chart.YearBars(&buf, buckets, chart.BarOptions{Width: 50}); err != nil {
		t.Fatalf("YearBars returned error: %v", err)
	}
	lines := nonEmptyLines(buf.String())
	if len(lines) != 4 {
		t.Fatalf("expected legend + 3 rows, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "success") || !strings.Contains(lines[0], "upcoming") {
		t.Errorf("legend missing: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "2006") || !strings.Contains(lines[1], "▓") || strings.Contains(lines[1], "█") {
		t.Errorf("2006 row should be a single failed segment: %q", lines[1])
	}
	row := lines[2]
	if !strings.Contains(row, "█") || !strings.Contains(row, "▓") || !strings.Contains(row, "░") {
		t.Errorf("2020 row should contain all three segments: %q", row)
	}
	if strings.Index(row, "█") > strings.Index(row, "▓") || strings.Index(row, "▓") > strings.Index(row, "░") {
		t.Errorf("segments out of order: %q", row)
	}
	if !strings.HasPrefix(lines[3], "N/A") {
		t.Errorf("last row should be N/A: %q", lines[3])
	}
}

func TestYearBarsWidthRespected(t *testing.T) {
	buckets := []analyze.YearBucket{{Year: "2020", Success: 300, Failed: 200, Upcoming: 100}}
	var buf strings.Builder
	_ = chart.YearBars(&buf, buckets, chart.BarOptions{Width: 40})
	for i, line := range nonEmptyLines(buf.String())[1:] {
		if n := len([]rune(line)); n > 40 {
			t.Errorf("row %d exceeds width: %d runes %q", i, n, line)
		}
	}
}

func TestYearBarsEmpty(t *testing.T) {
	var buf strings.Builder
	if err := chart.YearBars(&buf, nil, chart.BarOptions{}); err == nil {
		t.Error("expected error for no buckets")
	}
}

// ─── Plot ─────────────────────────────────────────────────────────────────────

func TestPlotBasic(t *testing.T) {
	var buf strings.Builder
	err := chart.Plot(&buf, ramp(12), chart.PlotOptions{Width: 80, Height: 8, Title: "Cumulative successes", Integer: true})
	if err != nil {
		t.Fatalf("Plot returned error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Cumulative successes  (M01 to M12)") {
		t.Errorf("missing title line:\n%s", out)
	}
	if !strings.Contains(out, "└") {
		t.Error("output missing bottom-left corner └")
	}
	if !strings.Contains(out, "12┤") {
		t.Errorf("expected integer top tick 12:\n%s", out)
	}
}

func TestPlotLineCount(t *testing.T) {
	height := 8
	var buf strings.Builder
	if err := chart.Plot(&buf, ramp(6), chart.PlotOptions{Width: 80, Height: height, Title: "T"}); err != nil {
		t.Fatalf("Plot returned error: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	// title + height data rows + bottom axis + x labels
	if len(lines) != height+3 {
		t.Errorf("expected %d lines, got %d:\n%s", height+3, len(lines), buf.String())
	}
}

func TestPlotNoTitle(t *testing.T) {
	height := 6
	var buf strings.Builder
	_ = chart.Plot(&buf, ramp(4), chart.PlotOptions{Width: 40, Height: height})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != height+2 {
		t.Errorf("expected %d lines without title, got %d", height+2, len(lines))
	}
}

func TestPlotTooFewPoints(t *testing.T) {
	var buf strings.Builder
	if err := chart.Plot(&buf, ramp(1), chart.PlotOptions{}); err == nil {
		t.Error("expected error for a single point")
	}
}

func TestPlotFlatSeries(t *testing.T) {
	pts := []analyze.Point{{Label: "a", Value: 3}, {Label: "b", Value: 3}, {Label: "c", Value: 3}}
	var buf strings.Builder
	if err := chart.Plot(&buf, pts, chart.PlotOptions{Width: 40, Height: 6}); err != nil {
		t.Errorf("flat series should render, got %v", err)
	}
}

func TestPlotWidthRespected(t *testing.T) {
	width := 60
	var buf strings.Builder
	_ = chart.Plot(&buf, ramp(200), chart.PlotOptions{Width: width, Height: 6})
	for i, line := range strings.Split(buf.String(), "\n") {
		if n := len([]rune(line)); n > width {
			t.Errorf("line %d exceeds width %d: runes=%d %q", i, width, n, line)
		}
	}
}

func TestPlotXAxisLabels(t *testing.T) {
	var buf strings.Builder
	_ = chart.Plot(&buf, ramp(24), chart.PlotOptions{Width: 80, Height: 8})
	lines := nonEmptyLines(buf.String())
	last := lines[len(lines)-1]
	if !strings.Contains(last, "M01") || !strings.Contains(last, "M24") {
		t.Errorf("x-axis missing start/end labels: %q", last)
	}
}
