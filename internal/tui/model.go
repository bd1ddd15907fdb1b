// Package tui provides a Bubble Tea emulation of the button panel.
package tui

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	columns   = 5
	cellWidth = 12
	cellLines = 4
)

// keyRunes maps keyboard keys to panel keys, row by row.
var keyRunes = []rune("12345qwertasdfg")

type cellKind int

const (
	cellBlank cellKind = iota
	cellGlyph
	cellText
)

type cell struct {
	kind  cellKind
	text  string
	color color.RGBA
}

// cellMsg replaces the content of one key.
type cellMsg struct {
	key  int
	cell cell
}

// resetMsg blanks every key.
type resetMsg struct{}

// KeyPress is one key press and when it was made.
type KeyPress struct {
	Key int
	At  time.Time
}

type keyMap struct {
	Press key.Binding
	Quit  key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Press, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Press: key.NewBinding(
		key.WithKeys(strings.Split(string(keyRunes), "")...),
		key.WithHelp("1-5 q-t a-g", "press key"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "esc"),
		key.WithHelp("ctrl+c", "close panel"),
	),
}

var (
	glyphStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true)
	cellStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	pressedStyle = cellStyle.
			BorderForeground(lipgloss.Color("#C89A3A"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// Model implements the Bubble Tea panel view.
type Model struct {
	cells   []cell
	presses chan<- KeyPress
	last    int
	help    help.Model
	now     func() time.Time

	width  int
	height int
}

// NewModel constructs a panel view with count keys. Key presses are sent on
// presses without blocking; a full channel drops the press.
func NewModel(count int, presses chan<- KeyPress) *Model {
	return &Model{
		cells:   make([]cell, count),
		presses: presses,
		last:    -1,
		help:    help.New(),
		now:     time.Now,
	}
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
		m.help.Width = msg.Width
		return m, nil
	case cellMsg:
		if msg.key >= 0 && msg.key < len(m.cells) {
			m.cells[msg.key] = msg.cell
		}
		return m, nil
	case resetMsg:
		for i := range m.cells {
			m.cells[i] = cell{}
		}
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Press):
			m.press(msg.Runes)
		}
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) press(runes []rune) {
	if len(runes) != 1 {
		return
	}
	idx := strings.IndexRune(string(keyRunes), runes[0])
	if idx < 0 || idx >= len(m.cells) {
		return
	}
	m.last = idx
	select {
	case m.presses <- KeyPress{Key: idx, At: m.now()}:
	default:
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	rows := make([]string, 0, (len(m.cells)+columns-1)/columns)
	for start := 0; start < len(m.cells); start += columns {
		end := min(start+columns, len(m.cells))
		row := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			row = append(row, m.renderCell(i))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	grid := lipgloss.JoinVertical(lipgloss.Left, rows...)
	footer := footerStyle.Render(m.help.View(keys))
	content := lipgloss.JoinVertical(lipgloss.Left, grid, footer)
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) renderCell(i int) string {
	c := m.cells[i]
	label := fmt.Sprintf("[%c]", keyRunes[i])
	var body string
	switch c.kind {
	case cellGlyph:
		body = glyphStyle.Render(fitCell(c.text, cellWidth, cellLines-1))
	case cellText:
		fg := lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", c.color.R, c.color.G, c.color.B))
		body = lipgloss.NewStyle().Foreground(fg).Render(fitCell(c.text, cellWidth, cellLines-1))
	default:
		body = fitCell("", cellWidth, cellLines-1)
	}
	content := footerStyle.Render(padCell(label, cellWidth)) + "\n" + body
	style := cellStyle
	if i == m.last {
		style = pressedStyle
	}
	return style.Render(content)
}
