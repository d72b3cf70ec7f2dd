// Package chart renders launch aggregates as ASCII terminal charts.
// Three renderers are available:
//
//   - StatusBars: one horizontal bar per launch status
//   - YearBars: stacked horizontal bars per year (success, failed, upcoming)
//   - Plot: multi-line ASCII chart with labelled axes, used for the
//     cumulative success curve
//
// Labels are padded by display width so wide runes line up.
package chart

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/derickschaefer/liftoff/internal/analyze"
)

// Bar glyphs for the stacked year chart.
const (
	glyphSuccess  = "█"
	glyphFailed   = "▓"
	glyphUpcoming = "░"
)

// ─── Bars ────────────────────────────────────────────────────────────────────

// BarOptions controls horizontal bar chart rendering.
type BarOptions struct {
	// Width is the total character width available for the chart.
	// If 0, the terminal width is used, falling back to 80.
	Width int
}

// StatusBars renders the status distribution, one bar per status.
//
//	Launch status  (187 total)
//	success   175  93.6%  ████████████████████████████
//	failed      5   2.7%  █
//	upcoming    7   3.7%  █
//	unknown     0   0.0%
func StatusBars(w io.Writer, dist []analyze.StatusCount, opts BarOptions) error {
	if len(dist) == 0 {
		return fmt.Errorf("chart status: nothing to render")
	}
	totalWidth := opts.Width
	if totalWidth <= 0 {
		totalWidth = termWidth()
	}

	total, maxCount := 0, 0
	labelWidth, countWidth := 0, 0
	for _, d := range dist {
		total += d.Count
		if d.Count > maxCount {
			maxCount = d.Count
		}
		if l := runewidth.StringWidth(string(d.Status)); l > labelWidth {
			labelWidth = l
		}
		if l := len(strconv.Itoa(d.Count)); l > countWidth {
			countWidth = l
		}
	}
	if total == 0 {
		return fmt.Errorf("chart status: no launches to render")
	}

	// label  count  pct%  bar
	barAreaWidth := totalWidth - labelWidth - countWidth - 6 - 6
	if barAreaWidth < 4 {
		barAreaWidth = 4
	}

	fmt.Fprintf(w, "Launch status  (%d total)\n", total)
	for _, d := range dist {
		pct := float64(d.Count) / float64(total) * 100
		bar := strings.Repeat(glyphSuccess, scaled(d.Count, maxCount, barAreaWidth))
		fmt.Fprintf(w, "%s  %*d  %5.1f%%  %s\n",
			padRight(string(d.Status), labelWidth),
			countWidth, d.Count,
			pct,
			bar,
		)
	}
	return nil
}

// YearBars renders one stacked bar per year.
//
//	Launches per year   █ success  ▓ failed  ░ upcoming
//	2006   1  ▓
//	2008   4  ███▓
func YearBars(w io.Writer, buckets []analyze.YearBucket, opts BarOptions) error {
	if len(buckets) == 0 {
		return fmt.Errorf("chart years: nothing to render")
	}
	totalWidth := opts.Width
	if totalWidth <= 0 {
		totalWidth = termWidth()
	}

	maxTotal, labelWidth, countWidth := 0, 0, 0
	for _, b := range buckets {
		if b.Total() > maxTotal {
			maxTotal = b.Total()
		}
		if l := runewidth.StringWidth(b.Year); l > labelWidth {
			labelWidth = l
		}
		if l := len(strconv.Itoa(b.Total())); l > countWidth {
			countWidth = l
		}
	}

	barAreaWidth := totalWidth - labelWidth - countWidth - 4
	if barAreaWidth < 4 {
		barAreaWidth = 4
	}

	fmt.Fprintf(w, "Launches per year   %s success  %s failed  %s upcoming\n",
		glyphSuccess, glyphFailed, glyphUpcoming)
	for _, b := range buckets {
		// Segments are scaled independently so tiny non-zero counts stay visible.
		s := scaled(b.Success, maxTotal, barAreaWidth)
		f := scaled(b.Failed, maxTotal, barAreaWidth)
		u := scaled(b.Upcoming, maxTotal, barAreaWidth)
		for s+f+u > barAreaWidth {
			switch {
			case s >= f && s >= u && s > 1:
				s--
			case f >= u && f > 1:
				f--
			default:
				u--
			}
		}
		bar := strings.Repeat(glyphSuccess, s) + strings.Repeat(glyphFailed, f) + strings.Repeat(glyphUpcoming, u)
		fmt.Fprintf(w, "%s  %*d  %s\n", padRight(b.Year, labelWidth), countWidth, b.Total(), bar)
	}
	return nil
}

// scaled maps n in [0, max] onto [0, width]. Non-zero counts get at least
// one cell.
func scaled(n, max, width int) int {
	if n <= 0 || max <= 0 {
		return 0
	}
	l := int(math.Round(float64(n) / float64(max) * float64(width)))
	if l < 1 {
		l = 1
	}
	if l > width {
		l = width
	}
	return l
}

// ─── Plot ─────────────────────────────────────────────────────────────────────

// PlotOptions controls multi-line ASCII plot rendering.
type PlotOptions struct {
	// Width is the total character width of the chart (including Y-axis label).
	// If 0, the terminal width is used, falling back to 80.
	Width int
	// Height is the number of data rows in the chart body. If 0, defaults to 12.
	Height int
	// Title is printed above the chart.
	Title string
	// Integer rounds Y-axis tick labels to whole numbers.
	Integer bool
}

// Plot renders points as a multi-line ASCII chart.
func Plot(w io.Writer, points []analyze.Point, opts PlotOptions) error {
	if len(points) < 2 {
		return fmt.Errorf("chart plot: need at least 2 points (got %d)", len(points))
	}
	width := opts.Width
	if width <= 0 {
		width = termWidth()
	}
	height := opts.Height
	if height <= 0 {
		height = 12
	}

	vals := make([]float64, len(points))
	for i, p := range points {
		vals[i] = p.Value
	}
	minVal, maxVal := vals[0], vals[0]
	for _, v := range vals[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}

	label := formatFloat
	if opts.Integer {
		label = func(v float64) string { return strconv.Itoa(int(math.Round(v))) }
	}

	ticks := yTicks(minVal, maxVal, height)
	yLabelWidth := 0
	for _, t := range ticks {
		if l := len(label(t)); l > yLabelWidth {
			yLabelWidth = l
		}
	}

	plotWidth := width - yLabelWidth - 2
	if plotWidth < 10 {
		plotWidth = 10
	}

	cols := sampleCols(vals, plotWidth)
	grid := buildGrid(cols, minVal, maxVal, height)

	if opts.Title != "" {
		fmt.Fprintf(w, "%s  (%s to %s)\n", opts.Title, points[0].Label, points[len(points)-1].Label)
	}

	for row := 0; row < height; row++ {
		tick := ""
		for _, t := range ticks {
			if math.Abs(rowForValue(t, minVal, maxVal, height)-float64(row)) < 0.5 {
				tick = label(t)
				break
			}
		}
		axisCh := "┤"
		if tick == "" {
			axisCh = " "
		}
		fmt.Fprintf(w, "%*s%s%s\n", yLabelWidth, tick, axisCh, string(grid[row]))
	}

	fmt.Fprintf(w, "%s└%s\n", strings.Repeat(" ", yLabelWidth), strings.Repeat("─", plotWidth))
	fmt.Fprintf(w, "%s %s\n", strings.Repeat(" ", yLabelWidth), xAxisLabels(points, plotWidth))
	return nil
}

// ─── Grid building ────────────────────────────────────────────────────────────

// sampleCols reduces vals to exactly n columns; each column is the average
// of its bucket, or NaN when the bucket is empty.
func sampleCols(vals []float64, n int) []float64 {
	total := len(vals)
	cols := make([]float64, n)
	for col := 0; col < n; col++ {
		lo := col * total / n
		hi := (col+1)*total/n - 1
		if hi >= total {
			hi = total - 1
		}
		sum, count := 0.0, 0
		for i := lo; i <= hi; i++ {
			sum += vals[i]
			count++
		}
		if count == 0 {
			// Fewer points than columns: repeat the nearest point.
			cols[col] = vals[lo]
			continue
		}
		cols[col] = sum / float64(count)
	}
	return cols
}

// rowForValue returns the float row index (0=top=max) for a given value.
func rowForValue(v, minVal, maxVal float64, height int) float64 {
	if maxVal == minVal {
		return float64(height) / 2
	}
	return (maxVal - v) / (maxVal - minVal) * float64(height-1)
}

// buildGrid renders columns into a height×width rune grid, joining
// neighbouring points with box-drawing characters.
func buildGrid(cols []float64, minVal, maxVal float64, height int) [][]rune {
	grid := make([][]rune, height)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", len(cols)))
	}

	rowOf := make([]int, len(cols))
	for col, v := range cols {
		r := int(math.Round(rowForValue(v, minVal, maxVal, height)))
		if r < 0 {
			r = 0
		}
		if r >= height {
			r = height - 1
		}
		rowOf[col] = r
	}

	for col, r := range rowOf {
		prev, next := -1, -1
		if col > 0 {
			prev = rowOf[col-1]
		}
		if col < len(rowOf)-1 {
			next = rowOf[col+1]
		}

		switch {
		case next >= 0 && next < r:
			grid[r][col] = '╯'
		case prev >= 0 && prev < r:
			grid[r][col] = '╭'
		default:
			grid[r][col] = '─'
		}

		// Vertical connector up to the next column's row.
		if next >= 0 && next < r {
			for fill := next + 1; fill < r; fill++ {
				grid[fill][col] = '│'
			}
			grid[next][col] = '╭'
		}
	}
	return grid
}

// ─── Axis helpers ─────────────────────────────────────────────────────────────

// yTicks returns 3–4 evenly spaced tick values for the Y axis.
func yTicks(minVal, maxVal float64, height int) []float64 {
	if maxVal == minVal {
		return []float64{minVal}
	}
	nTicks := 4
	if height <= 6 {
		nTicks = 3
	}
	ticks := make([]float64, nTicks)
	for i := 0; i < nTicks; i++ {
		ticks[i] = minVal + float64(i)*(maxVal-minVal)/float64(nTicks-1)
	}
	return ticks
}

// xAxisLabels places the first, middle and last point labels under the plot.
func xAxisLabels(points []analyze.Point, plotWidth int) string {
	buf := []rune(strings.Repeat(" ", plotWidth))
	writeAt := func(pos int, s string) {
		for i, ch := range []rune(s) {
			if pos+i >= 0 && pos+i < len(buf) {
				buf[pos+i] = ch
			}
		}
	}
	start := points[0].Label
	mid := points[len(points)/2].Label
	end := points[len(points)-1].Label

	writeAt(0, start)
	writeAt(plotWidth/2-runewidth.StringWidth(mid)/2, mid)
	writeAt(plotWidth-runewidth.StringWidth(end), end)
	return strings.TrimRight(string(buf), " ")
}

// ─── Utilities ────────────────────────────────────────────────────────────────

// formatFloat formats a float for axis labels without needless trailing zeros.
func formatFloat(v float64) string {
	abs := math.Abs(v)
	var s string
	switch {
	case abs == 0:
		return "0"
	case abs >= 1e6:
		return strconv.FormatFloat(v/1e6, 'f', 1, 64) + "M"
	case abs >= 1e3:
		return strconv.FormatFloat(v/1e3, 'f', 1, 64) + "K"
	case abs >= 100:
		s = strconv.FormatFloat(v, 'f', 1, 64)
	default:
		s = strconv.FormatFloat(v, 'f', 2, 64)
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func padRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// termWidth returns the stdout terminal width, then $COLUMNS, then 80.
func termWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 {
		return w
	}
	if cols := os.Getenv("COLUMNS"); cols != "" {
		if n, err := strconv.Atoi(cols); err == nil && n > 20 {
			return n
		}
	}
	return 80
}

// TermWidth exposes the detected terminal width to callers that lay out
// their own output.
func TermWidth() int { return termWidth() }
