package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/poideck/internal/model"
	"github.com/verte-zerg/poideck/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "poideck.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	inserts := []struct {
		category string
		lat, lon float64
	}{
		{"bench", 47.5, 19.05},
		{"bench", 47.6, 19.00},
		{"stop", 47.4, 19.10},
	}
	for _, in := range inserts {
		fix := model.Fix{Latitude: in.lat, Longitude: in.lon, Timestamp: time.Unix(1700000000, 0).UTC()}
		if _, err := st.InsertPOI(ctx, in.category, fix); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	report, err := BuildReport(ctx, st, 7)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if report.Counters.All != 3 || report.Counters.Today != 3 {
		t.Fatalf("unexpected counters %+v", report.Counters)
	}
	if len(report.Categories) != 2 || report.Categories[0].Category != "bench" || report.Categories[0].All != 2 {
		t.Fatalf("unexpected categories %+v", report.Categories)
	}
	if len(report.Daily) != 7 || report.Daily[6].Count != 3 {
		t.Fatalf("unexpected daily counts %+v", report.Daily)
	}
	if !report.HasBounds || report.Bounds.MinLat != 47.4 || report.Bounds.MaxLon != 19.10 {
		t.Fatalf("unexpected bounds %+v", report.Bounds)
	}

	full := report.WithConfigured([]string{"bench", "taxi"})
	if len(full.Categories) != 3 || full.Categories[2].Category != "taxi" || full.Categories[2].All != 0 {
		t.Fatalf("expected taxi appended with zero count, got %+v", full.Categories)
	}
	if len(report.Categories) != 2 {
		t.Fatalf("WithConfigured must not modify the original report")
	}
}

func TestRenderSummaryAndTable(t *testing.T) {
	report := Report{
		Counters: model.Counters{All: 5, Today: 2},
		Categories: []model.CategoryCount{
			{Category: "bench", All: 4, Today: 2},
			{Category: "stop", All: 1},
			{Category: "taxi"},
		},
		Daily: []model.DayCount{{Count: 0}, {Count: 3}, {Count: 2}},
	}
	var buf bytes.Buffer
	if err := RenderSummary(&buf, report); err != nil {
		t.Fatalf("summary: %v", err)
	}
	if err := RenderCategoryTable(&buf, report.Categories); err != nil {
		t.Fatalf("table: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Today: 2", "All-time: 5", "Last 3 days: [ @*]", "Top: bench 4, stop 1", "80.0%", "taxi"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Area:") {
		t.Fatalf("area must be omitted without bounds")
	}
}

func TestRenderCategoryTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderCategoryTable(&buf, nil); err != nil {
		t.Fatalf("table: %v", err)
	}
	if !strings.Contains(buf.String(), "No POIs recorded.") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestRenderDailyBarsScales(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	days := []model.DayCount{{Day: day, Count: 10}, {Day: day.AddDate(0, 0, 1), Count: 1}, {Day: day.AddDate(0, 0, 2)}}
	var buf bytes.Buffer
	if err := RenderDailyBarsWithWidth(&buf, days, 40, false); err != nil {
		t.Fatalf("bars: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header and 3 bars, got %d lines", len(lines))
	}
	full := BarWidthFor(40, 2)
	if got := strings.Count(lines[1], barChar); got != full {
		t.Fatalf("expected full bar of %d, got %d", full, got)
	}
	if got := strings.Count(lines[2], barChar); got != 2 {
		t.Fatalf("expected scaled bar of 2, got %d", got)
	}
	if strings.Contains(lines[3], barChar) || !strings.HasPrefix(lines[3], "2024-05-03  0") {
		t.Fatalf("unexpected empty day line %q", lines[3])
	}
}

func TestTopCategories(t *testing.T) {
	counts := []model.CategoryCount{
		{Category: "stop", All: 3},
		{Category: "bench", All: 3},
		{Category: "taxi", All: 0},
		{Category: "camera", All: 1},
	}
	top := TopCategories(counts, 5)
	if len(top) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(top))
	}
	if top[0].Category != "bench" || top[1].Category != "stop" || top[2].Category != "camera" {
		t.Fatalf("unexpected order: %+v", top)
	}
}
