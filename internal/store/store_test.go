package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/poideck/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "poideck.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func testFix(lat, lon float64) model.Fix {
	return model.Fix{Latitude: lat, Longitude: lon, Timestamp: time.Unix(1700000000, 0).UTC(), Speed: 1.5}
}

func TestInsertPOIAssignsMonotonicIDs(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	first, err := st.InsertPOI(ctx, "bench", testFix(47.5, 19.05))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	second, err := st.InsertPOI(ctx, "post-box", testFix(47.6, 19.06))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if second <= first {
		t.Fatalf("expected increasing ids, got %d then %d", first, second)
	}

	pois, err := st.ListPOIs(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pois) != 2 {
		t.Fatalf("expected 2 pois, got %d", len(pois))
	}
	got := pois[0]
	if got.ID != first || got.Category != "bench" || got.Latitude != 47.5 || got.Longitude != 19.05 {
		t.Fatalf("unexpected poi: %+v", got)
	}
	if got.FixTime.Unix() != 1700000000 {
		t.Fatalf("unexpected fix time: %v", got.FixTime)
	}
	if time.Since(got.Created) > time.Hour || got.Created.IsZero() {
		t.Fatalf("expected created to default to now, got %v", got.Created)
	}
}

func TestCountersTodayAndAll(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	c, err := st.Counters(ctx)
	if err != nil {
		t.Fatalf("counters on empty store: %v", err)
	}
	if c.All != 0 || c.Today != 0 {
		t.Fatalf("expected zero counters, got %+v", c)
	}

	const today, earlier = 3, 2
	for i := 0; i < today+earlier; i++ {
		id, err := st.InsertPOI(ctx, "bench", testFix(47.5, 19.05))
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		if i < earlier {
			if _, err := st.db.ExecContext(ctx, `UPDATE pois SET created = datetime('now', '-2 days') WHERE id = ?`, id); err != nil {
				t.Fatalf("backdate: %v", err)
			}
		}
	}

	// Repeated reads through the same prepared statements stay consistent.
	for i := 0; i < 3; i++ {
		c, err = st.Counters(ctx)
		if err != nil {
			t.Fatalf("counters: %v", err)
		}
		if c.Today != today || c.All != today+earlier {
			t.Fatalf("read %d: expected today=%d all=%d, got %+v", i, today, today+earlier, c)
		}
	}
}

func TestBoundsEmptyStore(t *testing.T) {
	st := openTestStore(t)
	_, ok, err := st.Bounds(context.Background())
	if err != nil {
		t.Fatalf("bounds: %v", err)
	}
	if ok {
		t.Fatalf("expected no bounds for empty store")
	}
}

func TestBoundsSpanAllPOIs(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	for _, f := range []model.Fix{testFix(47.5, 19.05), testFix(47.2, 19.30), testFix(47.9, 18.90)} {
		if _, err := st.InsertPOI(ctx, "bench", f); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	b, ok, err := st.Bounds(ctx)
	if err != nil || !ok {
		t.Fatalf("bounds: ok=%v err=%v", ok, err)
	}
	want := model.Bounds{MinLat: 47.2, MinLon: 18.90, MaxLat: 47.9, MaxLon: 19.30}
	if b != want {
		t.Fatalf("expected %+v, got %+v", want, b)
	}
}

func TestCategoryCounts(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	for _, cat := range []string{"bench", "post-box", "bench"} {
		if _, err := st.InsertPOI(ctx, cat, testFix(47.5, 19.05)); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	counts, err := st.CategoryCounts(ctx)
	if err != nil {
		t.Fatalf("category counts: %v", err)
	}
	if len(counts) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(counts))
	}
	if counts[0].Category != "bench" || counts[0].All != 2 || counts[0].Today != 2 {
		t.Fatalf("unexpected first row: %+v", counts[0])
	}
	if counts[1].Category != "post-box" || counts[1].All != 1 {
		t.Fatalf("unexpected second row: %+v", counts[1])
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poideck.db")
	st, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := st.InsertPOI(context.Background(), "bench", testFix(1, 2)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	st, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() {
		_ = st.Close()
	}()
	c, err := st.Counters(context.Background())
	if err != nil {
		t.Fatalf("counters: %v", err)
	}
	if c.All != 1 {
		t.Fatalf("expected existing row to survive reopen, got %+v", c)
	}
}

func TestDailyCountsFillsGaps(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := st.InsertPOI(ctx, "bench", testFix(1, 2)); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	if _, err := st.db.ExecContext(ctx, `UPDATE pois SET created = datetime('now', '-2 days') WHERE id = 1`); err != nil {
		t.Fatalf("backdate: %v", err)
	}
	if _, err := st.db.ExecContext(ctx, `UPDATE pois SET created = datetime('now', '-30 days') WHERE id = 2`); err != nil {
		t.Fatalf("backdate: %v", err)
	}

	days, err := st.DailyCounts(ctx, 7)
	if err != nil {
		t.Fatalf("daily counts: %v", err)
	}
	if len(days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(days))
	}
	want := []int64{0, 0, 0, 0, 1, 0, 1}
	for i, d := range days {
		if d.Count != want[i] {
			t.Fatalf("day %d (%s): expected %d, got %d", i, d.Day.Format("2006-01-02"), want[i], d.Count)
		}
	}
	if !days[6].Day.Equal(time.Now().UTC().Truncate(24 * time.Hour)) {
		t.Fatalf("expected last day to be today, got %v", days[6].Day)
	}
	if empty, err := st.DailyCounts(ctx, 0); err != nil || len(empty) != 0 {
		t.Fatalf("expected no days, got %v %v", empty, err)
	}
}
