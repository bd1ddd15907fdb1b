// Package stats contains statistics calculations and reporting.
package stats

import (
	"context"

	"github.com/verte-zerg/poideck/internal/model"
)

// Source is the read side of the store used for reports.
type Source interface {
	Counters(ctx context.Context) (model.Counters, error)
	CategoryCounts(ctx context.Context) ([]model.CategoryCount, error)
	DailyCounts(ctx context.Context, days int) ([]model.DayCount, error)
	Bounds(ctx context.Context) (model.Bounds, bool, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Counters   model.Counters
	Categories []model.CategoryCount
	Daily      []model.DayCount
	Bounds     model.Bounds
	HasBounds  bool
}

// BuildReport loads counters, per-category totals and the last days of
// activity.
func BuildReport(ctx context.Context, src Source, days int) (Report, error) {
	counters, err := src.Counters(ctx)
	if err != nil {
		return Report{}, err
	}
	categories, err := src.CategoryCounts(ctx)
	if err != nil {
		return Report{}, err
	}
	daily, err := src.DailyCounts(ctx, days)
	if err != nil {
		return Report{}, err
	}
	bounds, ok, err := src.Bounds(ctx)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Counters:   counters,
		Categories: categories,
		Daily:      daily,
		Bounds:     bounds,
		HasBounds:  ok,
	}, nil
}

// WithConfigured adds configured categories that have no records yet, so the
// table shows every panel key.
func (r Report) WithConfigured(categories []string) Report {
	seen := make(map[string]struct{}, len(r.Categories))
	for _, c := range r.Categories {
		seen[c.Category] = struct{}{}
	}
	out := append([]model.CategoryCount(nil), r.Categories...)
	for _, c := range categories {
		if _, ok := seen[c]; ok {
			continue
		}
		out = append(out, model.CategoryCount{Category: c})
	}
	r.Categories = out
	return r
}
