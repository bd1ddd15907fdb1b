// Package stats contains statistics calculations and reporting.
package stats

import (
	"sort"

	"github.com/verte-zerg/poideck/internal/model"
)

// TopCategories returns the n categories with the most records, ties broken
// by name. Categories without records are skipped.
func TopCategories(counts []model.CategoryCount, n int) []model.CategoryCount {
	if n <= 0 || len(counts) == 0 {
		return nil
	}
	items := make([]model.CategoryCount, 0, len(counts))
	for _, c := range counts {
		if c.All > 0 {
			items = append(items, c)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].All == items[j].All {
			return items[i].Category < items[j].Category
		}
		return items[i].All > items[j].All
	})
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}
