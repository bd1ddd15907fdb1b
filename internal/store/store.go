// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/poideck/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// createdLayout is the text format SQLite uses for CURRENT_TIMESTAMP.
const createdLayout = "2006-01-02 15:04:05"

// Store wraps SQLite access for POI records.
//
// The insert and counter statements are prepared once and reused for the
// lifetime of the store. Every use drains and closes its result before the
// next one starts, which resets the statement on the connection.
type Store struct {
	db *sql.DB

	insertStmt     *sql.Stmt
	countAllStmt   *sql.Stmt
	countTodayStmt *sql.Stmt
}

// Open opens or creates the SQLite database, applies migrations and prepares statements.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection keeps the prepared statements on one SQLite handle.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	if err := store.prepare(); err != nil {
		if cerr := store.Close(); cerr != nil {
			// Best-effort close on prepare failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close releases prepared statements and closes the underlying database.
func (s *Store) Close() error {
	for _, stmt := range []*sql.Stmt{s.insertStmt, s.countAllStmt, s.countTodayStmt} {
		if stmt == nil {
			continue
		}
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS pois (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
			poi TEXT NOT NULL,
			lat REAL NOT NULL,
			lon REAL NOT NULL,
			gpstime INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_pois_created ON pois(created);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

func (s *Store) prepare() error {
	var err error
	if s.insertStmt, err = s.db.Prepare(`INSERT INTO pois (poi, lat, lon, gpstime) VALUES (?, ?, ?, ?)`); err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	if s.countAllStmt, err = s.db.Prepare(`SELECT COUNT(*) FROM pois`); err != nil {
		return fmt.Errorf("failed to prepare count-all: %w", err)
	}
	if s.countTodayStmt, err = s.db.Prepare(`SELECT COUNT(*) FROM pois WHERE date(created) = date('now')`); err != nil {
		return fmt.Errorf("failed to prepare count-today: %w", err)
	}
	return nil
}

// InsertPOI stores one tagged fix and returns the assigned id.
func (s *Store) InsertPOI(ctx context.Context, category string, fix model.Fix) (int64, error) {
	res, err := s.insertStmt.ExecContext(ctx, category, fix.Latitude, fix.Longitude, fix.Timestamp.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to insert poi: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read poi id: %w", err)
	}
	return id, nil
}

// Counters returns the all-time and today POI counts.
func (s *Store) Counters(ctx context.Context) (model.Counters, error) {
	var c model.Counters
	if err := s.countAllStmt.QueryRowContext(ctx).Scan(&c.All); err != nil {
		return model.Counters{}, fmt.Errorf("failed to count pois: %w", err)
	}
	if err := s.countTodayStmt.QueryRowContext(ctx).Scan(&c.Today); err != nil {
		return model.Counters{}, fmt.Errorf("failed to count today's pois: %w", err)
	}
	return c, nil
}

// Bounds returns the bounding box over all POIs. ok is false when the table is empty.
func (s *Store) Bounds(ctx context.Context) (model.Bounds, bool, error) {
	var minLat, minLon, maxLat, maxLon sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `SELECT MIN(lat), MIN(lon), MAX(lat), MAX(lon) FROM pois`).
		Scan(&minLat, &minLon, &maxLat, &maxLon)
	if err == sql.ErrNoRows {
		return model.Bounds{}, false, nil
	}
	if err != nil {
		return model.Bounds{}, false, fmt.Errorf("failed to query bounds: %w", err)
	}
	if !minLat.Valid || !minLon.Valid || !maxLat.Valid || !maxLon.Valid {
		return model.Bounds{}, false, nil
	}
	return model.Bounds{
		MinLat: minLat.Float64,
		MinLon: minLon.Float64,
		MaxLat: maxLat.Float64,
		MaxLon: maxLon.Float64,
	}, true, nil
}

// ListPOIs returns every stored POI ordered by id.
func (s *Store) ListPOIs(ctx context.Context) ([]model.POI, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, created, poi, lat, lon, gpstime FROM pois ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pois: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.POI
	for rows.Next() {
		var poi model.POI
		var created string
		var gpstime int64
		if err := rows.Scan(&poi.ID, &created, &poi.Category, &poi.Latitude, &poi.Longitude, &gpstime); err != nil {
			return nil, err
		}
		parsed, err := time.ParseInLocation(createdLayout, created, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created time of poi %d: %w", poi.ID, err)
		}
		poi.Created = parsed
		poi.FixTime = time.Unix(gpstime, 0).UTC()
		result = append(result, poi)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// CategoryCounts aggregates all-time and today counts per category.
func (s *Store) CategoryCounts(ctx context.Context) ([]model.CategoryCount, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT poi, COUNT(*) AS all_count,
		SUM(CASE WHEN date(created) = date('now') THEN 1 ELSE 0 END) AS today_count
		FROM pois
		GROUP BY poi
		ORDER BY all_count DESC, poi ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to count categories: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.CategoryCount
	for rows.Next() {
		var cc model.CategoryCount
		if err := rows.Scan(&cc.Category, &cc.All, &cc.Today); err != nil {
			return nil, err
		}
		result = append(result, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DailyCounts returns per-day POI counts for the last days days, oldest
// first. Days without records are included with a zero count.
func (s *Store) DailyCounts(ctx context.Context, days int) ([]model.DayCount, error) {
	if days <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT date(created) AS day, COUNT(*) FROM pois
		WHERE date(created) > date('now', ?)
		GROUP BY day`, fmt.Sprintf("-%d days", days))
	if err != nil {
		return nil, fmt.Errorf("failed to count days: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	counts := map[string]int64{}
	for rows.Next() {
		var day string
		var n int64
		if err := rows.Scan(&day, &n); err != nil {
			return nil, err
		}
		counts[day] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	result := make([]model.DayCount, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		result = append(result, model.DayCount{Day: day, Count: counts[day.Format("2006-01-02")]})
	}
	return result, nil
}
