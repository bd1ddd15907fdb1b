package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/poideck/internal/model"
	"github.com/verte-zerg/poideck/internal/panel"
)

// newTestDeck wires a Deck straight to a Model without a running program.
func newTestDeck() (*Deck, *Model) {
	presses := make(chan KeyPress, 4)
	m := NewModel(KeyCount, presses)
	d := newDeck(func(msg tea.Msg) { m.Update(msg) }, presses, KeyCount)
	return d, m
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestKeyPressReachesReadButtons(t *testing.T) {
	d, m := newTestDeck()

	if _, err := d.ReadButtons(5 * time.Millisecond); !errors.Is(err, model.ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}

	m.Update(runeKey('w'))
	pressed, err := d.ReadButtons(5 * time.Millisecond)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(pressed) != KeyCount || !pressed[6] {
		t.Fatalf("expected key 6 pressed, got %v", pressed)
	}
	for i, p := range pressed {
		if p && i != 6 {
			t.Fatalf("unexpected key %d pressed", i)
		}
	}

	if _, err := d.ReadButtons(5 * time.Millisecond); !errors.Is(err, model.ErrTimeout) {
		t.Fatalf("expected release after one read, got %v", err)
	}
}

func TestUnmappedKeysAreIgnored(t *testing.T) {
	d, m := newTestDeck()
	m.Update(runeKey('z'))
	if _, err := d.ReadButtons(5 * time.Millisecond); !errors.Is(err, model.ErrTimeout) {
		t.Fatalf("expected no press, got %v", err)
	}
}

func TestViewShowsCells(t *testing.T) {
	d, m := newTestDeck()
	if err := d.SetImage(0, panel.Glyph{Name: "bench"}); err != nil {
		t.Fatalf("set image: %v", err)
	}
	if err := d.SetText(14, "3\n12\n>>", panel.CounterText); err != nil {
		t.Fatalf("set text: %v", err)
	}
	view := m.View()
	for _, want := range []string{"bench", "12", ">>", "[1]", "[g]", "press key"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}

	if err := d.SetRGB(0, panel.Black); err != nil {
		t.Fatalf("set rgb: %v", err)
	}
	if err := d.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if strings.Contains(m.View(), "bench") {
		t.Fatalf("expected cleared cell")
	}
}

func TestQuitKeyQuits(t *testing.T) {
	_, m := newTestDeck()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected QuitMsg")
	}
}

func TestClosedDeckIsFatal(t *testing.T) {
	d, _ := newTestDeck()
	close(d.done)
	if _, err := d.ReadButtons(5 * time.Millisecond); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected closed error, got %v", err)
	}
	if err := d.SetText(13, "x", panel.StatusText); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected closed error on draw, got %v", err)
	}
	select {
	case <-d.Done():
	default:
		t.Fatalf("expected Done to be closed")
	}
}

func TestStalePressIsDropped(t *testing.T) {
	d, m := newTestDeck()
	m.now = func() time.Time { return time.Now().Add(-time.Second) }
	m.Update(runeKey('1'))
	m.now = time.Now
	m.Update(runeKey('2'))

	pressed, err := d.ReadButtons(5 * time.Millisecond)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if pressed[0] || !pressed[1] {
		t.Fatalf("expected only the fresh press, got %v", pressed)
	}
	if _, err := d.ReadButtons(5 * time.Millisecond); !errors.Is(err, model.ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestDrainDropsQueuedPresses(t *testing.T) {
	d, m := newTestDeck()
	m.Update(runeKey('1'))
	m.Update(runeKey('q'))
	if err := d.Drain(); err != nil {
		t.Fatalf("drain: %v", err)
	}
	if _, err := d.ReadButtons(5 * time.Millisecond); !errors.Is(err, model.ErrTimeout) {
		t.Fatalf("expected timeout after drain, got %v", err)
	}
}
