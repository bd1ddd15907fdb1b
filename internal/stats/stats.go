// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/poideck/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints counters, the surveyed area and recent activity.
func RenderSummary(w io.Writer, r Report) error {
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Today: %d\n", r.Counters.Today); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "All-time: %d\n", r.Counters.All); err != nil {
		return err
	}
	if r.HasBounds {
		b := r.Bounds
		if _, err := fmt.Fprintf(w, "Area: %.6f,%.6f .. %.6f,%.6f\n", b.MinLat, b.MinLon, b.MaxLat, b.MaxLon); err != nil {
			return err
		}
	}
	if len(r.Daily) > 0 {
		values := make([]float64, len(r.Daily))
		for i, d := range r.Daily {
			values[i] = float64(d.Count)
		}
		if _, err := fmt.Fprintf(w, "Last %d days: [%s]\n", len(r.Daily), Sparkline(values)); err != nil {
			return err
		}
	}
	if top := TopCategories(r.Categories, 3); len(top) > 0 {
		parts := make([]string, len(top))
		for i, c := range top {
			parts[i] = fmt.Sprintf("%s %d", c.Category, c.All)
		}
		if _, err := fmt.Fprintf(w, "Top: %s\n", strings.Join(parts, ", ")); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// RenderCategoryTable prints per-category totals.
func RenderCategoryTable(w io.Writer, counts []model.CategoryCount) error {
	if len(counts) == 0 {
		_, err := fmt.Fprintln(w, "No POIs recorded.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Per-Category"); err != nil {
		return err
	}
	headers := []string{"Category", "Today", "All", "Share"}
	var total int64
	for _, c := range counts {
		total += c.All
	}
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		share := 0.0
		if total > 0 {
			share = float64(c.All) / float64(total) * 100
		}
		rows = append(rows, []string{
			c.Category,
			fmt.Sprintf("%d", c.Today),
			fmt.Sprintf("%d", c.All),
			fmt.Sprintf("%.1f%%", share),
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}
