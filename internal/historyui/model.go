// Package historyui provides the Bubble Tea history interface.
package historyui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Inflinity/badhabbits/internal/model"
	"github.com/Inflinity/badhabbits/internal/stats"
)

const defaultCurveWindow = 5

const (
	tabOverview = iota
	tabEvents
	tabFavorites
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea history UI.
type Model struct {
	events stats.EventLister
	filter model.HistoryFilter
	now    func() time.Time

	report stats.Report
	errMsg string

	tabs       []string
	activeTab  int
	viewports  []viewport.Model
	eventTable table.Model

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

// NewModel constructs a history UI model.
func NewModel(events stats.EventLister, filter model.HistoryFilter, now func() time.Time) *Model {
	if now == nil {
		now = time.Now
	}
	if filter.CurveWindow <= 0 {
		filter.CurveWindow = defaultCurveWindow
	}
	m := &Model{
		events: events,
		filter: filter,
		now:    now,
		tabs:   []string{"Overview", "Events", "Favorites"},
	}
	m.initInputs()
	m.eventTable = buildEventTable(nil, 0, 1)
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
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
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || (!m.filterMode && msg.String() == "q") {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.filter.CurveWindow = nextCurveWindow(m.filter.CurveWindow)
			m.refreshReport()
			return m, nil
		case "-":
			m.filter.CurveWindow = prevCurveWindow(m.filter.CurveWindow)
			m.refreshReport()
			return m, nil
		case "/":
			m.filterMode = true
			m.filterError = ""
			m.loadInputs()
			return m, m.focusField(0)
		case "g", "home":
			m.jump(true)
			return m, nil
		case "G", "end":
			m.jump(false)
			return m, nil
		}
		var cmd tea.Cmd
		if m.activeTab == tabEvents {
			m.eventTable, cmd = m.eventTable.Update(msg)
			return m, cmd
		}
		m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	header := m.renderHeader()
	footer := m.renderFooter()
	body := box(m.renderBody(), m.width, m.bodyHeight())
	return lipgloss.JoinVertical(lipgloss.Left, box(header, m.width, 0), body, box(footer, m.width, 0))
}

// Filter form fields, in display order.
const (
	fieldSince = iota
	fieldKinds
	fieldLast
	fieldWindow
	fieldCount
)

var fieldPrompts = [fieldCount]string{
	fieldSince:  "Since (YYYY-MM-DD): ",
	fieldKinds:  "Kinds (comma list): ",
	fieldLast:   "Last: ",
	fieldWindow: "Curve window: ",
}

func (m *Model) initInputs() {
	m.filterInputs = make([]textinput.Model, fieldCount)
	for i, prompt := range fieldPrompts {
		in := textinput.New()
		in.Prompt = prompt
		in.Cursor.SetMode(cursor.CursorBlink)
		m.filterInputs[i] = in
	}
	m.loadInputs()
}

// filterValues renders f as the raw text of each form field. Unset fields
// are empty.
func filterValues(f model.HistoryFilter) [fieldCount]string {
	var v [fieldCount]string
	if f.Since != nil {
		v[fieldSince] = f.Since.Format("2006-01-02")
	}
	names := make([]string, len(f.Kinds))
	for i, k := range f.Kinds {
		names[i] = string(k)
	}
	v[fieldKinds] = strings.Join(names, ",")
	if f.Last > 0 {
		v[fieldLast] = strconv.Itoa(f.Last)
	}
	v[fieldWindow] = strconv.Itoa(f.CurveWindow)
	return v
}

func (m *Model) loadInputs() {
	for i, v := range filterValues(m.filter) {
		m.filterInputs[i].SetValue(v)
	}
}

func (m *Model) inputValues() [fieldCount]string {
	var v [fieldCount]string
	for i := range v {
		v[i] = m.filterInputs[i].Value()
	}
	return v
}

func (m *Model) bodyHeight() int {
	footer := 1
	if !m.filterMode && m.errMsg != "" {
		footer++
	}
	return max(m.height-lipgloss.Height(m.renderHeader())-footer, 1)
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	body := m.bodyHeight()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = body
	}
	m.eventTable.SetWidth(m.width)
	m.eventTable.SetHeight(max(body-1, 1))
	for i := range m.filterInputs {
		m.filterInputs[i].Width = max(10, m.width-lipgloss.Width(m.filterInputs[i].Prompt)-2)
	}
}

// jump scrolls the active tab to its first or last row.
func (m *Model) jump(top bool) {
	switch {
	case m.activeTab == tabEvents && top:
		m.eventTable.GotoTop()
	case m.activeTab == tabEvents:
		m.eventTable.GotoBottom()
	case top:
		m.viewports[m.activeTab].GotoTop()
	default:
		m.viewports[m.activeTab].GotoBottom()
	}
}

func (m *Model) moveTab(delta int) {
	m.activeTab = (m.activeTab + delta + len(m.tabs)) % len(m.tabs)
	if m.activeTab == tabEvents {
		m.eventTable.Focus()
	} else {
		m.eventTable.Blur()
	}
}

func (m *Model) renderHeader() string {
	parts := make([]string, len(m.tabs))
	for i, tab := range m.tabs {
		style := inactiveNavStyle
		if i == m.activeTab {
			style = activeNavStyle
		}
		parts[i] = style.Render(tab)
	}
	summary := m.filterSummary()
	if m.width > 0 {
		summary = runewidth.Truncate(summary, m.width, "...")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...) + "\n" + headerStyle.Render(summary)
}

func (m *Model) filterSummary() string {
	v := filterValues(m.filter)
	return fmt.Sprintf("Filter: since=%s  kinds=%s  last=%s  window=%s",
		orDefault(v[fieldSince], "any"), orDefault(v[fieldKinds], "all"),
		orDefault(v[fieldLast], "all"), v[fieldWindow])
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	help := headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Filter: /  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func (m *Model) renderBody() string {
	if m.filterMode {
		lines := []string{"Filter (enter to apply, esc to cancel)"}
		for _, input := range m.filterInputs {
			lines = append(lines, input.View())
		}
		if m.filterError != "" {
			lines = append(lines, errorStyle.Render(m.filterError))
		}
		return strings.Join(lines, "\n")
	}
	if m.activeTab == tabEvents {
		if len(m.report.Events) == 0 {
			return "No history yet."
		}
		return tableMutedStyle.Render(m.eventTable.View())
	}
	return m.viewports[m.activeTab].View()
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.events, m.filter)
	if err != nil {
		m.errMsg = err.Error()
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load history.")
		}
		return
	}
	m.errMsg = ""
	m.report = report
	m.eventTable.SetRows(eventRows(report.Events, m.now()))
	m.eventTable.GotoBottom()
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if m.errMsg != "" {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.report, m.now(), width))
	m.viewports[tabFavorites].SetContent(renderFavorites(m.report))
}

func renderOverview(report stats.Report, now time.Time, width int) string {
	sum := report.Summary
	if len(sum.Points) == 0 {
		return "No history yet."
	}
	cards := []string{
		card("Started", strconv.Itoa(sum.Started())),
		card("Completed", strconv.Itoa(sum.Counts[model.EventTaskCompleted])),
		card("Expired", strconv.Itoa(sum.Counts[model.EventTaskExpired])),
		card("Rate", fmt.Sprintf("%.0f%%", sum.CompletionRate()*100)),
		card("Last", stats.LastActivityLabel(sum.LastActivity, now)),
	}
	var block string
	if width < 80 {
		block = strings.Join(cards, "\n")
	} else {
		row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
		row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4])
		block = lipgloss.JoinVertical(lipgloss.Left, row1, row2)
	}
	var buf bytes.Buffer
	if err := stats.RenderCurve(&buf, sum.Points, report.Window, stats.ChartWidthFor(width)); err != nil {
		return fmt.Sprintf("Failed to render curve: %v", err)
	}
	return strings.TrimRight(block+"\n\n"+buf.String(), "\n")
}

func renderFavorites(report stats.Report) string {
	sections := []struct {
		title string
		refs  []stats.RefCount
	}{
		{"Most confessed", report.Confess},
		{"Favorite rewards", report.Rewards},
		{"Pet upgrades", report.Upgrades},
	}
	var lines []string
	for _, s := range sections {
		lines = append(lines, cardTitleStyle.Render(s.title))
		if len(s.refs) == 0 {
			lines = append(lines, "  none", "")
			continue
		}
		for _, rc := range s.refs {
			lines = append(lines, fmt.Sprintf("  %-16s %d", rc.Ref, rc.Count))
		}
		lines = append(lines, "")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

func card(label, value string) string {
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, cardTitleStyle.Render(label), cardValueStyle.Render(value)))
}

var eventColumns = []table.Column{
	{Title: "When", Width: 16},
	{Title: "Event", Width: 10},
	{Title: "Ref", Width: 14},
	{Title: "Delta", Width: 6},
	{Title: "Points", Width: 6},
}

func eventRows(events []model.Event, now time.Time) []table.Row {
	rows := make([]table.Row, 0, len(events))
	for _, ev := range events {
		rows = append(rows, table.Row(stats.EventRow(ev, now)))
	}
	return rows
}

func buildEventTable(rows []table.Row, width, height int) table.Model {
	t := table.New(
		table.WithColumns(eventColumns),
		table.WithRows(rows),
		table.WithHeight(max(1, height-1)),
	)
	t.SetWidth(width)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		PaddingLeft(0)
	styles.Cell = styles.Cell.PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	t.SetStyles(styles)
	return t
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		filter, err := parseFilter(m.inputValues())
		if err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filter, m.filterMode, m.filterError = filter, false, ""
		m.refreshReport()
		m.updateLayout()
		return m, nil
	case tea.KeyTab:
		return m, m.focusField(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.focusField(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) focusField(idx int) tea.Cmd {
	m.filterIndex = (idx%fieldCount + fieldCount) % fieldCount
	for i := range m.filterInputs {
		m.filterInputs[i].Blur()
	}
	return m.filterInputs[m.filterIndex].Focus()
}

var knownKinds = map[model.EventKind]bool{
	model.EventTaskStarted:    true,
	model.EventTaskCompleted:  true,
	model.EventTaskExpired:    true,
	model.EventRewardRedeemed: true,
	model.EventPetUpgraded:    true,
	model.EventConfessed:      true,
	model.EventPointsSent:     true,
	model.EventReset:          true,
}

// ParseKinds splits a comma list of event kinds, rejecting unknown names.
func ParseKinds(input string) ([]model.EventKind, error) {
	var kinds []model.EventKind
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kind := model.EventKind(part)
		if !knownKinds[kind] {
			return nil, fmt.Errorf("unknown event kind %q", part)
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

func parseFilter(v [fieldCount]string) (model.HistoryFilter, error) {
	filter := model.HistoryFilter{CurveWindow: defaultCurveWindow}
	if s := strings.TrimSpace(v[fieldSince]); s != "" {
		parsed, err := time.ParseInLocation("2006-01-02", s, time.Local)
		if err != nil {
			return filter, fmt.Errorf("invalid since date (expected YYYY-MM-DD)")
		}
		filter.Since = &parsed
	}
	kinds, err := ParseKinds(v[fieldKinds])
	if err != nil {
		return filter, err
	}
	filter.Kinds = kinds
	if s := strings.TrimSpace(v[fieldLast]); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return filter, fmt.Errorf("invalid last value (use 0 or positive integer)")
		}
		filter.Last = n
	}
	if s := strings.TrimSpace(v[fieldWindow]); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return filter, fmt.Errorf("invalid curve window (use integer >= 1)")
		}
		filter.CurveWindow = n
	}
	return filter, nil
}

// curveWindows are the moving-average sizes the -/= keys step through.
var curveWindows = []int{1, 3, 5, 10, 20, 50}

func nextCurveWindow(n int) int {
	for _, w := range curveWindows {
		if w > n {
			return w
		}
	}
	return curveWindows[len(curveWindows)-1]
}

func prevCurveWindow(n int) int {
	for i := len(curveWindows) - 1; i >= 0; i-- {
		if curveWindows[i] < n {
			return curveWindows[i]
		}
	}
	return curveWindows[0]
}

// box sizes s to exactly width columns and, when height > 0, height rows.
func box(s string, width, height int) string {
	if width <= 0 {
		return s
	}
	style := lipgloss.NewStyle().Width(width).MaxWidth(width)
	if height > 0 {
		style = style.Height(height).MaxHeight(height)
	}
	return style.Render(s)
}
