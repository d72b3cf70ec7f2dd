// Package render converts Result values into human-readable or machine-parseable
// output. Every kind is first flattened into a Table; the table, CSV/TSV and
// Markdown writers share that shape. JSON writes the envelope as-is and JSONL
// writes one record per line.
package render

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/derickschaefer/liftoff/internal/model"
	"github.com/derickschaefer/liftoff/internal/pipeline"
	"github.com/derickschaefer/liftoff/internal/table"
	"github.com/derickschaefer/liftoff/internal/view"
)

// Format constants matching --format flag values.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
	FormatCSV   = "csv"
	FormatTSV   = "tsv"
	FormatMD    = "md"
)

// Formats lists every valid --format value.
var Formats = []string{FormatTable, FormatJSON, FormatJSONL, FormatCSV, FormatTSV, FormatMD}

// ValidFormat reports whether f is a known output format.
func ValidFormat(f string) bool {
	for _, v := range Formats {
		if v == f {
			return true
		}
	}
	return false
}

// Table is a generic header + rows shape. Commands with ad-hoc output
// (presets, cache stats, sync history) return one as KindTable data.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Render writes result to w in the specified format.
func Render(w io.Writer, result *model.Result, format string) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, result)
	case FormatJSONL:
		return renderJSONL(w, result)
	case FormatCSV:
		return renderDelimited(w, result, ',')
	case FormatTSV:
		return renderDelimited(w, result, '\t')
	case FormatMD:
		return renderMarkdown(w, result)
	default:
		return renderTable(w, result)
	}
}

// RenderTo writes to stdout by default; if path is non-empty, writes to file.
func RenderTo(path string, result *model.Result, format string) error {
	if path == "" {
		return Render(os.Stdout, result, format)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()
	return Render(f, result, format)
}

// ─── JSON ─────────────────────────────────────────────────────────────────────

func renderJSON(w io.Writer, result *model.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(result)
}

// ─── JSONL ────────────────────────────────────────────────────────────────────

// renderJSONL writes launch lists one launch per line so the output can be
// piped into `liftoff chart --stdin`. Other kinds emit their data on one line.
func renderJSONL(w io.Writer, result *model.Result) error {
	switch d := result.Data.(type) {
	case []model.Launch:
		return pipeline.WriteJSONL(w, d)
	case *model.LaunchPage:
		return pipeline.WriteJSONL(w, d.Items)
	case []view.TimelineEntry:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		for _, e := range d {
			if err := enc.Encode(e); err != nil {
				return err
			}
		}
		return nil
	default:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		return enc.Encode(result.Data)
	}
}

// ─── Table ────────────────────────────────────────────────────────────────────

func newTableWriter(w io.Writer, headers []string) *tablewriter.Table {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(headers)
	tw.SetBorder(true)
	tw.SetRowLine(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	return tw
}

func renderTable(w io.Writer, result *model.Result) error {
	switch d := result.Data.(type) {
	case []view.TimelineEntry:
		renderTimeline(w, d)
		return nil
	case *model.LaunchPage:
		if d.Total == 0 {
			fmt.Fprintln(w, view.EmptyTable)
			return nil
		}
	case []model.Launch:
		if len(d) == 0 {
			fmt.Fprintln(w, view.EmptyTable)
			return nil
		}
	}

	t, err := tabular(result, true)
	if err != nil {
		return renderJSON(w, result)
	}
	tw := newTableWriter(w, t.Headers)
	if result.Kind == model.KindLaunch || result.Kind == model.KindStats ||
		result.Kind == model.KindHealth || result.Kind == model.KindSync {
		tw.SetColWidth(80)
		tw.SetAutoWrapText(true)
	}
	tw.AppendBulk(t.Rows)
	tw.Render()

	switch d := result.Data.(type) {
	case *model.LaunchPage:
		fmt.Fprintf(w, "Page %d / %d  •  %d launches\n", d.Page, d.TotalPages, d.Total)
	case *model.SyncSummary:
		if len(d.Launches) > 0 {
			fmt.Fprintln(w)
			pw := newTableWriter(w, []string{"ID", "MISSION", "DATE", "STATUS"})
			for _, p := range d.Launches {
				pw.Append([]string{p.ID, view.Fit(p.MissionName, 40), view.FormatDate(p.LaunchDate), view.Badge(p.Status)})
			}
			pw.Render()
		}
	}
	return nil
}

// renderTimeline draws entries down a centre rail, alternating sides.
func renderTimeline(w io.Writer, entries []view.TimelineEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, view.EmptyTimeline)
		return
	}
	const half = 38
	for _, e := range entries {
		lines := []string{
			e.Icon + " " + e.Mission,
			"   " + e.Date,
			"   🚀 " + e.Rocket,
		}
		if e.Launchpad != "" {
			lines = append(lines, "   📍 "+e.Launchpad)
		}
		if e.Details != "" {
			lines = append(lines, "   "+e.Details)
		}
		var links []string
		if e.Webcast != "" {
			links = append(links, "▶ "+e.Webcast)
		}
		if e.Wikipedia != "" {
			links = append(links, "📖 "+e.Wikipedia)
		}
		if len(links) > 0 {
			lines = append(lines, "   "+strings.Join(links, "  "))
		}

		for _, line := range lines {
			if e.Side == view.Left {
				fmt.Fprintf(w, "%s │\n", view.Fit(line, half))
			} else {
				fmt.Fprintf(w, "%s │ %s\n", strings.Repeat(" ", half), line)
			}
		}
		fmt.Fprintf(w, "%s │\n", strings.Repeat(" ", half))
	}
}

// ─── Tabular flattening ───────────────────────────────────────────────────────

// tabular flattens result data into a Table. pretty selects display text
// (badges, formatted dates) over raw values.
func tabular(result *model.Result, pretty bool) (*Table, error) {
	switch d := result.Data.(type) {
	case *Table:
		return d, nil
	case Table:
		return &d, nil
	case []model.Launch:
		return launchTable(d, nil, pretty), nil
	case *model.LaunchPage:
		st := &table.State{Key: table.SortKey(d.SortKey), Ascending: d.Ascending}
		return launchTable(d.Items, st, pretty), nil
	case *model.Launch:
		return launchDetail(d), nil
	case model.Stats:
		return statsTable(d, pretty), nil
	case *model.Stats:
		return statsTable(*d, pretty), nil
	case *model.ServerStats:
		return &Table{Headers: []string{"FIELD", "VALUE"}, Rows: [][]string{
			{"total", strconv.Itoa(d.Total)},
			{"success", strconv.Itoa(d.Success)},
			{"failed", strconv.Itoa(d.Failed)},
			{"upcoming", strconv.Itoa(d.Upcoming)},
			{"success_rate", strconv.FormatFloat(d.SuccessRate, 'f', -1, 64)},
		}}, nil
	case *model.SyncSummary:
		return &Table{Headers: []string{"FIELD", "VALUE"}, Rows: [][]string{
			{"total_fetched", strconv.Itoa(d.TotalFetched)},
			{"inserted", strconv.Itoa(d.Inserted)},
			{"updated", strconv.Itoa(d.Updated)},
			{"errors", strconv.Itoa(d.Errors)},
		}}, nil
	case *model.Health:
		return &Table{Headers: []string{"FIELD", "VALUE"}, Rows: [][]string{
			{"status", d.Status},
			{"dynamodb", d.DynamoDB},
			{"version", d.Version},
		}}, nil
	case []view.TimelineEntry:
		t := &Table{Headers: []string{"side", "launch_id", "date", "status", "mission_name", "rocket", "launchpad", "details"}}
		for _, e := range d {
			t.Rows = append(t.Rows, []string{string(e.Side), e.ID, e.Date, string(e.Status), e.Mission, e.Rocket, e.Launchpad, e.Details})
		}
		return t, nil
	}
	return nil, fmt.Errorf("no tabular form for %T", result.Data)
}

func launchTable(launches []model.Launch, st *table.State, pretty bool) *Table {
	if !pretty {
		t := &Table{Headers: []string{
			"launch_id", "flight_number", "mission_name", "rocket_name", "launch_date",
			"status", "launchpad", "details", "webcast_url", "article_url", "wikipedia_url",
		}}
		for _, l := range launches {
			t.Rows = append(t.Rows, []string{
				l.ID, l.FlightNumber, l.MissionName, l.RocketName, l.LaunchDate,
				string(l.Status), l.Launchpad, l.Details, l.WebcastURL, l.ArticleURL, l.WikipediaURL,
			})
		}
		return t
	}

	header := func(label string, key table.SortKey) string {
		if st == nil {
			return label
		}
		return label + " " + st.Arrow(key)
	}
	t := &Table{Headers: []string{
		header("#", table.ByFlightNumber),
		header("MISSION", table.ByMissionName),
		"ROCKET",
		header("DATE", table.ByLaunchDate),
		header("STATUS", table.ByStatus),
		"LAUNCHPAD",
		"LINKS",
	}}
	for _, l := range launches {
		t.Rows = append(t.Rows, []string{
			l.FlightNumber,
			view.Fit(l.MissionName, 36),
			view.OrPlaceholder(l.RocketName),
			view.FormatDate(l.LaunchDate),
			view.Badge(l.Status),
			view.Fit(view.OrPlaceholder(l.Launchpad), 24),
			view.Links(l),
		})
	}
	return t
}

func launchDetail(l *model.Launch) *Table {
	rows := [][]string{
		{"ID", l.ID},
		{"Flight", view.OrPlaceholder(l.FlightNumber)},
		{"Mission", l.MissionName},
		{"Rocket", view.OrPlaceholder(l.RocketName)},
		{"Date", view.FormatDateTime(l.LaunchDate)},
		{"Status", view.Badge(l.Status)},
		{"Launchpad", view.OrPlaceholder(l.Launchpad)},
	}
	if len(l.Payloads) > 0 {
		rows = append(rows, []string{"Payloads", strings.Join(l.Payloads, ", ")})
	}
	if l.Details != "" {
		rows = append(rows, []string{"Details", l.Details})
	}
	for _, link := range [][2]string{
		{"Webcast", l.WebcastURL},
		{"Article", l.ArticleURL},
		{"Wikipedia", l.WikipediaURL},
		{"Patch", l.PatchLarge},
	} {
		if link[1] != "" {
			rows = append(rows, []string{link[0], link[1]})
		}
	}
	return &Table{Headers: []string{"FIELD", "VALUE"}, Rows: rows}
}

func statsTable(s model.Stats, pretty bool) *Table {
	if !pretty {
		return &Table{
			Headers: []string{"total", "success", "failed", "upcoming", "unknown", "success_rate"},
			Rows: [][]string{{
				strconv.Itoa(s.Total), strconv.Itoa(s.Success), strconv.Itoa(s.Failed),
				strconv.Itoa(s.Upcoming), strconv.Itoa(s.Unknown), strconv.Itoa(s.SuccessRate),
			}},
		}
	}
	t := &Table{Headers: []string{"", "METRIC", "VALUE"}}
	for _, c := range view.Cards(s) {
		t.Rows = append(t.Rows, []string{c.Icon, c.Label, c.Value})
	}
	if s.Unknown > 0 {
		t.Rows = append(t.Rows, []string{view.Icon(model.StatusUnknown), "Unknown", strconv.Itoa(s.Unknown)})
	}
	return t
}

// ─── CSV / TSV ────────────────────────────────────────────────────────────────

func renderDelimited(w io.Writer, result *model.Result, sep rune) error {
	t, err := tabular(result, false)
	if err != nil {
		b, _ := json.Marshal(result.Data)
		t = &Table{Headers: []string{"data"}, Rows: [][]string{{string(b)}}}
	}
	cw := csv.NewWriter(w)
	cw.Comma = sep
	if err := cw.Write(t.Headers); err != nil {
		return err
	}
	for _, r := range t.Rows {
		if err := cw.Write(r); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ─── Markdown ─────────────────────────────────────────────────────────────────

func renderMarkdown(w io.Writer, result *model.Result) error {
	t, err := tabular(result, true)
	if err != nil {
		return renderJSON(w, result)
	}
	escaped := make([]string, len(t.Headers))
	seps := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		escaped[i] = mdEscape(h)
		seps[i] = "---"
	}
	fmt.Fprintf(w, "| %s |\n|%s|\n", strings.Join(escaped, " | "), strings.Join(seps, "|"))
	for _, r := range t.Rows {
		cells := make([]string, len(r))
		for i, c := range r {
			cells[i] = mdEscape(c)
		}
		fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | "))
	}
	if p, ok := result.Data.(*model.LaunchPage); ok {
		fmt.Fprintf(w, "\nPage %d / %d, %d launches\n", p.Page, p.TotalPages, p.Total)
	}
	return nil
}

// ─── Warnings / Stats Footer ─────────────────────────────────────────────────

// PrintFooter writes warnings, and in verbose mode the stats line, to w.
func PrintFooter(w io.Writer, result *model.Result, verbose bool) {
	for _, warn := range result.Warnings {
		fmt.Fprintf(w, "⚠  %s\n", warn)
	}
	if verbose {
		src := "live"
		if result.Stats.CacheHit {
			src = "cache"
		}
		fmt.Fprintf(w, "\n[%s • %d items • %dms • %s]\n",
			result.GeneratedAt.Format(time.RFC3339),
			result.Stats.Items,
			result.Stats.DurationMs,
			src,
		)
	}
}

func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
