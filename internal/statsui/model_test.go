package statsui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/poideck/internal/model"
	"github.com/verte-zerg/poideck/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "poideck.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	ctx := context.Background()
	fixTime := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for _, c := range []string{"bench", "bench", "stop"} {
		if _, err := st.InsertPOI(ctx, c, model.Fix{Latitude: 47.5, Longitude: 19.05, Timestamp: fixTime}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	return st
}

func sized(t *testing.T, m *Model) *Model {
	t.Helper()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	return updated.(*Model)
}

func TestOverviewShowsCounters(t *testing.T) {
	m := sized(t, NewModel(openStore(t), []string{"bench", "stop", "taxi"}))
	if m.errMsg != "" {
		t.Fatalf("unexpected error: %s", m.errMsg)
	}
	view := m.View()
	for _, want := range []string{"Overview", "Records: 3", "All-time", "Per-Day"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestCategoriesIncludeConfigured(t *testing.T) {
	m := sized(t, NewModel(openStore(t), []string{"bench", "stop", "taxi"}))
	rows := m.tables[tabCategories].Rows()
	if len(rows) != 3 {
		t.Fatalf("expected 3 category rows, got %d", len(rows))
	}
	if rows[0][0] != "bench" || rows[0][2] != "2" || rows[2][0] != "taxi" || rows[2][2] != "0" {
		t.Fatalf("unexpected rows %v", rows)
	}
}

func TestRecordFilter(t *testing.T) {
	m := sized(t, NewModel(openStore(t), nil))
	if got := len(m.tables[tabRecords].Rows()); got != 3 {
		t.Fatalf("expected 3 records, got %d", got)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabRecords {
		t.Fatalf("expected records tab, got %d", m.activeTab)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	if !m.filterMode {
		t.Fatalf("expected filter mode")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("stop")})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.filter != "stop" {
		t.Fatalf("expected filter stop, got %q", m.filter)
	}
	rows := m.tables[tabRecords].Rows()
	if len(rows) != 1 || rows[0][1] != "stop" || rows[0][4] != "2024-05-01 10:00:00" {
		t.Fatalf("unexpected filtered rows %v", rows)
	}
}

func TestTabsWrap(t *testing.T) {
	m := sized(t, NewModel(openStore(t), nil))
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.activeTab != tabRecords {
		t.Fatalf("expected wrap to records, got %d", m.activeTab)
	}
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); cmd == nil {
		t.Fatalf("expected quit command")
	}
}

func TestFitLines(t *testing.T) {
	out := fitLines("a\nb\nc", 3, 2)
	if out != "a  \nb  " {
		t.Fatalf("unexpected fit %q", out)
	}
	if got := truncateLine("abcdefgh", 6); got != "abc..." {
		t.Fatalf("unexpected truncation %q", got)
	}
}
