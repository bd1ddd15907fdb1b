// Package pages maps the ordered category list onto pages of panel keys.
package pages

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/verte-zerg/poideck/internal/panel"
)

const (
	// ButtonsPerPage is the number of keys that show categories.
	ButtonsPerPage = 13
	// BackKey shows the fix status and pages backwards when pressed.
	BackKey = 13
	// ForwardKey shows the counters and pages forwards when pressed.
	ForwardKey = 14
	// KeyCount is the size of the panel the layout is built for.
	KeyCount = 15
)

// Direction of a page change.
type Direction int

const (
	Back Direction = iota
	Forward
)

func (d Direction) String() string {
	if d == Back {
		return "back"
	}
	return "forward"
}

// SlotKind describes what a key currently stands for.
type SlotKind int

const (
	SlotEmpty SlotKind = iota
	SlotCategory
	SlotNavigation
)

// Slot is the logical content of one key.
type Slot struct {
	Kind      SlotKind
	Category  string
	Direction Direction
}

// Renderer is the part of a panel the manager draws on.
type Renderer interface {
	SetImage(key int, g panel.Glyph) error
	SetRGB(key int, c color.RGBA) error
}

// Manager owns the current page and the key-to-category assignment.
type Manager struct {
	out    Renderer
	glyphs []panel.Glyph
	page   int
	slots  [ButtonsPerPage]Slot
}

// NewManager creates a manager for the given glyphs, one per category in
// display order. Nothing is drawn until RenderPage is called.
func NewManager(out Renderer, glyphs []panel.Glyph) (*Manager, error) {
	if len(glyphs) == 0 {
		return nil, errors.New("no categories to display")
	}
	return &Manager{out: out, glyphs: glyphs}, nil
}

// PageCount returns ceil(categories / ButtonsPerPage).
func (m *Manager) PageCount() int {
	return (len(m.glyphs) + ButtonsPerPage - 1) / ButtonsPerPage
}

// Page returns the index of the page last rendered.
func (m *Manager) Page() int {
	return m.page
}

// RenderPage draws every category key of page index and blanks the keys the
// page does not fill.
func (m *Manager) RenderPage(index int) error {
	if index < 0 || index >= m.PageCount() {
		return fmt.Errorf("page %d out of range [0,%d)", index, m.PageCount())
	}
	first := index * ButtonsPerPage
	last := min(first+ButtonsPerPage, len(m.glyphs))

	var slots [ButtonsPerPage]Slot
	for key, g := range m.glyphs[first:last] {
		if err := m.out.SetImage(key, g); err != nil {
			return fmt.Errorf("failed to draw %s on key %d: %w", g.Name, key, err)
		}
		slots[key] = Slot{Kind: SlotCategory, Category: g.Name}
	}
	for key := last - first; key < ButtonsPerPage; key++ {
		if err := m.out.SetRGB(key, panel.Black); err != nil {
			return fmt.Errorf("failed to clear key %d: %w", key, err)
		}
	}
	m.slots = slots
	m.page = index
	return nil
}

// Navigate moves one page in dir, wrapping at both ends, and redraws.
func (m *Manager) Navigate(dir Direction) (int, error) {
	count := m.PageCount()
	next := m.page + 1
	if dir == Back {
		next = m.page - 1 + count
	}
	next %= count
	if err := m.RenderPage(next); err != nil {
		return m.page, err
	}
	return next, nil
}

// SlotAt reports what key currently stands for.
func (m *Manager) SlotAt(key int) Slot {
	switch {
	case key == BackKey:
		return Slot{Kind: SlotNavigation, Direction: Back}
	case key == ForwardKey:
		return Slot{Kind: SlotNavigation, Direction: Forward}
	case key >= 0 && key < ButtonsPerPage:
		return m.slots[key]
	default:
		return Slot{Kind: SlotEmpty}
	}
}
