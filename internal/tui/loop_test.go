package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/poideck/internal/controller"
	"github.com/verte-zerg/poideck/internal/fix"
	"github.com/verte-zerg/poideck/internal/model"
	"github.com/verte-zerg/poideck/internal/panel"
	"github.com/verte-zerg/poideck/internal/store"
)

type queuedSource struct {
	reports []fix.Report
}

func (s *queuedSource) Poll() (fix.Report, error) {
	if len(s.reports) == 0 {
		return nil, model.ErrTimeout
	}
	next := s.reports[0]
	s.reports = s.reports[1:]
	return next, nil
}

func TestPressesBeforeFixAreNotReplayed(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "poideck.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	d, m := newTestDeck()
	src := &queuedSource{}
	glyphs := make([]panel.Glyph, 13)
	for i := range glyphs {
		glyphs[i] = panel.Glyph{Name: fmt.Sprintf("cat%02d", i)}
	}
	l, err := controller.New(controller.Options{
		Source:      src,
		Panel:       d,
		Store:       st,
		Glyphs:      glyphs,
		Interface:   "poideck-test0",
		PollTimeout: 5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("new loop: %v", err)
	}
	ctx := context.Background()
	if err := l.Start(ctx, 50); err != nil {
		t.Fatalf("start: %v", err)
	}

	for i := 0; i < 3; i++ {
		m.Update(runeKey('1'))
		if err := l.Step(ctx); err != nil {
			t.Fatalf("step without fix: %v", err)
		}
	}

	src.reports = []fix.Report{fix.Fix2D{
		Time:      time.Unix(1700000000, 0).UTC(),
		Latitude:  47.5,
		Longitude: 19.05,
		Speed:     2,
	}}
	for i := 0; i < 5; i++ {
		if err := l.Step(ctx); err != nil {
			t.Fatalf("step with fix: %v", err)
		}
	}
	counters, err := st.Counters(ctx)
	if err != nil {
		t.Fatalf("counters: %v", err)
	}
	if counters.All != 0 {
		t.Fatalf("expected presses made without a fix to be dropped, got %d records", counters.All)
	}

	m.Update(runeKey('1'))
	if err := l.Step(ctx); err != nil {
		t.Fatalf("step: %v", err)
	}
	if counters, err = st.Counters(ctx); err != nil || counters.All != 1 {
		t.Fatalf("expected one record after a fresh press, got %d (%v)", counters.All, err)
	}
}
