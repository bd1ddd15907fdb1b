// Package statsui provides the Bubble Tea browser for recorded POIs.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/poideck/internal/model"
	"github.com/verte-zerg/poideck/internal/stats"
)

const (
	tabOverview = iota
	tabCategories
	tabRecords
)

const dailyWindow = 14

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

// Store is what the browser reads.
type Store interface {
	stats.Source
	ListPOIs(ctx context.Context) ([]model.POI, error)
}

// Model implements the Bubble Tea POI browser.
type Model struct {
	store      Store
	categories []string

	report stats.Report
	pois   []model.POI
	errMsg string

	tabs      []string
	activeTab int
	overview  viewport.Model
	tables    map[int]*table.Model

	width  int
	height int

	filterMode  bool
	filterInput textinput.Model
	filter      string
}

// NewModel constructs a browser over st. categories are the configured panel
// categories, shown even before anything was recorded for them.
func NewModel(st Store, categories []string) *Model {
	catTable := newTable()
	recTable := newTable()
	m := &Model{
		store:      st,
		categories: categories,
		tabs:       []string{"Overview", "Categories", "Records"},
		overview:   viewport.New(0, 0),
		tables:     map[int]*table.Model{tabCategories: &catTable, tabRecords: &recTable},
	}
	m.filterInput = textinput.New()
	m.filterInput.Prompt = "Category: "
	m.filterInput.Placeholder = "bench"
	m.filterInput.Cursor.SetMode(cursor.CursorBlink)
	m.refresh()
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
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
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
			m.refresh()
			return m, nil
		case "/":
			if m.activeTab == tabRecords {
				m.filterMode = true
				m.filterInput.SetValue(m.filter)
				return m, m.filterInput.Focus()
			}
			return m, nil
		case "g", "home":
			if t, ok := m.tables[m.activeTab]; ok {
				t.GotoTop()
			} else {
				m.overview.GotoTop()
			}
			return m, nil
		case "G", "end":
			if t, ok := m.tables[m.activeTab]; ok {
				t.GotoBottom()
			} else {
				m.overview.GotoBottom()
			}
			return m, nil
		default:
			var cmd tea.Cmd
			if t, ok := m.tables[m.activeTab]; ok {
				*t, cmd = t.Update(msg)
				return m, cmd
			}
			m.overview, cmd = m.overview.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterInput.Blur()
		return m, nil
	case tea.KeyEnter:
		m.filterMode = false
		m.filterInput.Blur()
		m.filter = strings.TrimSpace(m.filterInput.Value())
		m.applyRecords()
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
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
	_, bodyHeight, _ := m.layoutHeights()
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	for _, t := range m.tables {
		t.SetWidth(m.width)
		t.SetHeight(maxInt(1, bodyHeight-1))
	}
	m.filterInput.Width = maxInt(10, m.width-lipgloss.Width(m.filterInput.Prompt)-2)
	m.renderOverview()
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := (m.activeTab + delta + count) % count
	m.activeTab = next
	for tab, t := range m.tables {
		if tab == next {
			t.Focus()
		} else {
			t.Blur()
		}
	}
}

func (m *Model) refresh() {
	ctx := context.Background()
	report, err := stats.BuildReport(ctx, m.store, dailyWindow)
	if err != nil {
		m.errMsg = err.Error()
		m.overview.SetContent("Failed to load stats.")
		return
	}
	pois, err := m.store.ListPOIs(ctx)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.report = report.WithConfigured(m.categories)
	m.pois = pois
	m.applyCategories()
	m.applyRecords()
	m.renderOverview()
}

func (m *Model) renderOverview() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	cards := []string{
		metricCard("Today", fmt.Sprintf("%d", m.report.Counters.Today)),
		metricCard("All-time", fmt.Sprintf("%d", m.report.Counters.All)),
		metricCard("Categories used", fmt.Sprintf("%d", len(stats.TopCategories(m.report.Categories, len(m.report.Categories))))),
	}
	summary := strings.Join(cards, "\n")
	if width >= 60 {
		summary = lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	}
	var buf bytes.Buffer
	if err := stats.RenderDailyBarsWithWidth(&buf, m.report.Daily, width, true); err != nil {
		m.overview.SetContent(fmt.Sprintf("Failed to render daily counts: %v", err))
		return
	}
	m.overview.SetContent(strings.TrimRight(summary+"\n\n"+buf.String(), "\n"))
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func newTable() table.Model {
	t := table.New(table.WithHeight(1))
	t.SetStyles(tableStyles())
	return t
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) applyCategories() {
	cols, rows := categoryTableData(m.report.Categories)
	t := m.tables[tabCategories]
	t.SetRows(nil)
	t.SetColumns(cols)
	t.SetRows(rows)
}

func (m *Model) applyRecords() {
	cols, rows := recordTableData(m.pois, m.filter)
	t := m.tables[tabRecords]
	t.SetRows(nil)
	t.SetColumns(cols)
	t.SetRows(rows)
	t.GotoBottom()
}

func categoryTableData(counts []model.CategoryCount) ([]table.Column, []table.Row) {
	columns := []table.Column{
		{Title: "Category", Width: 24},
		{Title: "Today", Width: 7},
		{Title: "All", Width: 7},
	}
	rows := make([]table.Row, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, table.Row{c.Category, fmt.Sprintf("%d", c.Today), fmt.Sprintf("%d", c.All)})
	}
	return columns, rows
}

func recordTableData(pois []model.POI, filter string) ([]table.Column, []table.Row) {
	columns := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Category", Width: 24},
		{Title: "Lat", Width: 11},
		{Title: "Lon", Width: 11},
		{Title: "Fix (UTC)", Width: 19},
		{Title: "Recorded (UTC)", Width: 19},
	}
	rows := make([]table.Row, 0, len(pois))
	for _, p := range pois {
		if filter != "" && !strings.Contains(p.Category, filter) {
			continue
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", p.ID),
			p.Category,
			fmt.Sprintf("%.6f", p.Latitude),
			fmt.Sprintf("%.6f", p.Longitude),
			p.FixTime.UTC().Format("2006-01-02 15:04:05"),
			p.Created.UTC().Format("2006-01-02 15:04:05"),
		})
	}
	return columns, rows
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

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	filter := "all categories"
	if m.filter != "" {
		filter = "category contains " + m.filter
	}
	summary := fmt.Sprintf("Records: %d  Today: %d  Showing: %s", m.report.Counters.All, m.report.Counters.Today, filter)
	return tabs + "\n" + headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderBody() string {
	if m.filterMode {
		return m.filterInput.View() + "\n" + headerStyle.Render("enter: apply  esc: cancel  empty: show all")
	}
	switch m.activeTab {
	case tabCategories, tabRecords:
		t := m.tables[m.activeTab]
		if len(t.Rows()) == 0 {
			return "No POIs found."
		}
		return tableMutedStyle.Render(t.View())
	default:
		return m.overview.View()
	}
}

func (m *Model) renderFooter() string {
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Reload: r  Quit: q"
	if m.activeTab == tabRecords {
		help = "Nav: left/right  Scroll: up/down/pgup/pgdn  Filter: /  Reload: r  Quit: q"
	}
	out := headerStyle.Render(help)
	if m.errMsg != "" {
		out += "\n" + errorStyle.Render(m.errMsg)
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
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

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
