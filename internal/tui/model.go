// Package tui provides the Bubble Tea launch dashboard.
package tui

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/derickschaefer/liftoff/internal/analyze"
	"github.com/derickschaefer/liftoff/internal/chart"
	"github.com/derickschaefer/liftoff/internal/dashboard"
	"github.com/derickschaefer/liftoff/internal/model"
	"github.com/derickschaefer/liftoff/internal/render"
	"github.com/derickschaefer/liftoff/internal/table"
	"github.com/derickschaefer/liftoff/internal/view"
)

const (
	tabTable = iota
	tabCharts
	tabTimeline
)

const (
	fieldSearch = iota
	fieldStatus
	fieldFrom
	fieldTo
)

const plotHeight = 10

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#3A8DC8"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E0B341"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

// fetchDoneMsg and syncDoneMsg carry the result of a background request.
type fetchDoneMsg struct{ err error }

type syncDoneMsg struct{ err error }

// Model implements the Bubble Tea launch dashboard.
type Model struct {
	dash *dashboard.Dashboard
	ctx  context.Context

	snap     dashboard.Snapshot
	tbl      table.State
	fetching bool
	syncing  bool
	notice   string

	tabs      []string
	activeTab int
	viewports []viewport.Model
	spinner   spinner.Model

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

// NewModel constructs a dashboard model. The first fetch starts from Init.
func NewModel(ctx context.Context, d *dashboard.Dashboard) *Model {
	m := &Model{
		dash: d,
		ctx:  ctx,
		tbl:  table.NewState(),
		tabs: []string{"Table", "Charts", "Timeline"},
	}
	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot))
	m.initInputs()
	m.initViewports()
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.startFetch(), m.spinner.Tick)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case fetchDoneMsg:
		m.fetching = false
		m.notice = ""
		m.refresh()
		return m, nil
	case syncDoneMsg:
		m.syncing = false
		m.refresh()
		if msg.err == nil && m.snap.LastSync != nil {
			s := m.snap.LastSync
			m.notice = fmt.Sprintf("Sync complete: %d fetched, %d inserted, %d updated, %d errors",
				s.TotalFetched, s.Inserted, s.Updated, s.Errors)
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m *Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "left", "h":
		m.moveTab(-1)
		return m, tea.ClearScreen
	case "right", "l":
		m.moveTab(1)
		return m, tea.ClearScreen
	case "r":
		return m, m.startFetch()
	case "s":
		return m, m.startSync()
	case "/":
		return m.startFilter()
	case "c":
		m.dash.ClearFilters()
		m.tbl.Reset()
		m.refresh()
		return m, nil
	case "1", "2", "3", "4":
		m.tbl.Toggle(table.SortKeys[int(msg.String()[0]-'1')])
		m.refresh()
		return m, nil
	}

	if m.activeTab == tabTable {
		total := len(m.snap.Visible)
		switch msg.String() {
		case "n", "pgdown":
			m.tbl.Next(total)
		case "p", "pgup":
			m.tbl.Prev()
		case "g", "home":
			m.tbl.First()
		case "G", "end":
			m.tbl.Last(total)
		default:
			return m, nil
		}
		m.renderTabContents()
		return m, nil
	}

	vp := &m.viewports[m.activeTab]
	switch msg.String() {
	case "g", "home":
		vp.GotoTop()
		return m, nil
	case "G", "end":
		vp.GotoBottom()
		return m, nil
	}
	var cmd tea.Cmd
	*vp, cmd = vp.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

// ─── Requests ─────────────────────────────────────────────────────────────────

// startFetch runs a refetch in the background. Repeated requests are not
// de-duplicated; the last one to finish wins.
func (m *Model) startFetch() tea.Cmd {
	m.fetching = true
	d, ctx := m.dash, m.ctx
	return func() tea.Msg {
		return fetchDoneMsg{err: d.RequestFetch(ctx)}
	}
}

// startSync triggers a remote sync unless one is already running.
func (m *Model) startSync() tea.Cmd {
	if m.syncing {
		return nil
	}
	m.syncing = true
	m.notice = ""
	d, ctx := m.dash, m.ctx
	return func() tea.Msg {
		return syncDoneMsg{err: d.RequestSync(ctx)}
	}
}

// refresh re-reads the dashboard state and re-renders the tab contents.
func (m *Model) refresh() {
	m.snap = m.dash.Snapshot()
	m.tbl.Clamp(len(m.snap.Visible))
	m.renderTabContents()
}

// ─── Layout ───────────────────────────────────────────────────────────────────

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = lipgloss.Height(m.renderHeader())
	footerHeight = lipgloss.Height(m.renderFooter())
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = maxInt(10, m.width-promptWidth-2)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
}

// ─── Header ───────────────────────────────────────────────────────────────────

func (m *Model) renderHeader() string {
	lines := []string{m.renderTitle(), m.renderCards()}
	if banner := m.renderBanner(); banner != "" {
		lines = append(lines, banner)
	}
	lines = append(lines, m.renderTabs(), m.renderFilterSummary())
	return strings.Join(lines, "\n")
}

func (m *Model) renderTitle() string {
	title := titleStyle.Render("🚀 liftoff")
	meta := fmt.Sprintf("%d launches", len(m.snap.Records))
	if !m.snap.FetchedAt.IsZero() {
		src := "fetched"
		if m.snap.FromCache {
			src = "cached"
		}
		meta += fmt.Sprintf(" • %s %s", src, humanize.Time(m.snap.FetchedAt))
	}
	return title + "  " + headerStyle.Render(meta)
}

func (m *Model) renderCards() string {
	cards := view.Cards(m.snap.Stats)
	parts := make([]string, 0, len(cards))
	for _, c := range cards {
		value := c.Value
		if m.fetching && len(m.snap.Records) == 0 {
			value = "…"
		}
		parts = append(parts, metricCard(c.Icon+" "+c.Label, value))
	}
	if m.width > 0 && m.width < 80 {
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

// renderBanner shows the in-flight request or the last error.
func (m *Model) renderBanner() string {
	switch {
	case m.syncing:
		return noticeStyle.Render(m.spinner.View() + " Syncing launch data…")
	case m.fetching:
		return noticeStyle.Render(m.spinner.View() + " Loading launches…")
	case m.snap.LastError != "":
		return errorStyle.Render("⚠  " + m.snap.LastError)
	case m.notice != "":
		return noticeStyle.Render(m.notice)
	}
	return ""
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderFilterSummary() string {
	f := m.snap.Filters
	or := func(s, def string) string {
		if s == "" {
			return def
		}
		return s
	}
	summary := fmt.Sprintf("Filters: status=%s  search=%s  from=%s  to=%s  •  %d shown",
		or(f.Status, model.StatusAll), or(f.Search, "-"), or(f.DateFrom, "-"), or(f.DateTo, "-"),
		len(m.snap.Visible))
	return headerStyle.Render(truncateLine(summary, m.width))
}

// ─── Body ─────────────────────────────────────────────────────────────────────

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		return fitLines(m.renderFilterForm(), m.width, height)
	}
	if m.fetching && len(m.snap.Records) == 0 {
		return fitLines(m.spinner.View()+" Loading launches…", m.width, height)
	}
	if m.activeTab == tabTable {
		return fitLines(m.renderTable(), m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

// renderTable draws the current page with the same table renderer the CLI uses.
func (m *Model) renderTable() string {
	pg := m.tbl.Apply(m.snap.Visible)
	page := &model.LaunchPage{
		Items:      pg.Items,
		Page:       pg.Page,
		TotalPages: pg.TotalPages,
		Total:      pg.Total,
		SortKey:    string(m.tbl.Key),
		Ascending:  m.tbl.Ascending,
	}
	var buf bytes.Buffer
	result := &model.Result{Kind: model.KindPage, Data: page}
	if err := render.Render(&buf, result, render.FormatTable); err != nil {
		return errorStyle.Render(err.Error())
	}
	return truncateLines(strings.TrimRight(buf.String(), "\n"), m.width)
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabCharts].SetContent(renderCharts(m.snap.Records, width))
	m.viewports[tabTimeline].SetContent(renderTimeline(m.snap.Visible, width))
}

// renderCharts draws every chart over the full, unfiltered launch set.
func renderCharts(launches []model.Launch, width int) string {
	if len(launches) == 0 {
		return "No launches loaded."
	}
	var buf bytes.Buffer
	opts := chart.BarOptions{Width: width}
	if err := chart.StatusBars(&buf, analyze.StatusDistribution(launches), opts); err != nil {
		fmt.Fprintf(&buf, "Failed to render status chart: %v\n", err)
	}
	buf.WriteString("\n")
	if err := chart.YearBars(&buf, analyze.LaunchesByYear(launches), opts); err != nil {
		fmt.Fprintf(&buf, "Failed to render year chart: %v\n", err)
	}
	buf.WriteString("\n")
	points := analyze.CumulativeSuccess(launches)
	if len(points) >= 2 {
		if err := chart.Plot(&buf, points, chart.PlotOptions{
			Width:   width,
			Height:  plotHeight,
			Title:   "Cumulative successful launches",
			Integer: true,
		}); err != nil {
			fmt.Fprintf(&buf, "Failed to render success curve: %v\n", err)
		}
	}
	return strings.TrimRight(buf.String(), "\n")
}

func renderTimeline(visible []model.Launch, width int) string {
	var buf bytes.Buffer
	result := &model.Result{Kind: model.KindTimeline, Data: view.Timeline(visible)}
	if err := render.Render(&buf, result, render.FormatTable); err != nil {
		return err.Error()
	}
	return truncateLines(strings.TrimRight(buf.String(), "\n"), width)
}

// ─── Footer ───────────────────────────────────────────────────────────────────

func (m *Model) renderHelp() string {
	help := "Tabs: ←/→  Sync: s  Refetch: r  Filter: /  Clear: c  Quit: q"
	if m.activeTab == tabTable {
		help = "Tabs: ←/→  Sort: 1-4  Page: n/p g/G  Sync: s  Refetch: r  Filter: /  Clear: c  Quit: q"
	}
	return headerStyle.Render(truncateLine(help, m.width))
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	return m.renderHelp()
}

// ─── Filter form ──────────────────────────────────────────────────────────────

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Search: "),
		newFilterInput("Status (all|success|failed|upcoming): "),
		newFilterInput("From (YYYY-MM-DD): "),
		newFilterInput("To (YYYY-MM-DD): "),
	}
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromFilters() {
	f := m.snap.Filters
	m.filterInputs[fieldSearch].SetValue(f.Search)
	status := f.Status
	if status == "" {
		status = model.StatusAll
	}
	m.filterInputs[fieldStatus].SetValue(status)
	m.filterInputs[fieldFrom].SetValue(f.DateFrom)
	m.filterInputs[fieldTo].SetValue(f.DateTo)
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromFilters()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applyFilter(); err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filterMode = false
		m.filterError = ""
		m.refresh()
		return m, nil
	case tea.KeyTab, tea.KeyDown:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.filterIndex = idx
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

// applyFilter validates the form and hands the criteria to the dashboard.
// The table goes back to page 1.
func (m *Model) applyFilter() error {
	status, err := model.ParseFilterStatus(m.filterInputs[fieldStatus].Value())
	if err != nil {
		return err
	}
	m.dash.SetFilters(model.Filters{
		Status:   status,
		Search:   m.filterInputs[fieldSearch].Value(),
		DateFrom: strings.TrimSpace(m.filterInputs[fieldFrom].Value()),
		DateTo:   strings.TrimSpace(m.filterInputs[fieldTo].Value()),
	})
	m.tbl.Reset()
	return nil
}

func (m *Model) renderFilterForm() string {
	lines := []string{"Filters (enter to apply, esc to cancel)"}
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

// truncateLine cuts plain text to width display cells.
func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	return view.Fit(s, width)
}

func truncateLines(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = truncateLine(line, width)
	}
	return strings.Join(lines, "\n")
}
