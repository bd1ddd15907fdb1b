// Package recorder persists tagged fixes.
package recorder

import (
	"context"
	"fmt"
	"log"

	"github.com/verte-zerg/poideck/internal/model"
)

// Inserter stores one POI row and returns its id.
type Inserter interface {
	InsertPOI(ctx context.Context, category string, fix model.Fix) (int64, error)
}

// Refresher is notified after each successful insert.
type Refresher interface {
	Refresh(ctx context.Context) (model.Counters, error)
}

// Recorder turns category presses into POI records.
type Recorder struct {
	store    Inserter
	counters Refresher
}

func New(store Inserter, counters Refresher) *Recorder {
	return &Recorder{store: store, counters: counters}
}

// Record inserts one row for category at fix. A nil fix means no position is
// known yet; the press is dropped and recorded is false.
func (r *Recorder) Record(ctx context.Context, category string, fix *model.Fix) (id int64, recorded bool, err error) {
	if fix == nil {
		return 0, false, nil
	}
	id, err = r.store.InsertPOI(ctx, category, *fix)
	if err != nil {
		return 0, false, fmt.Errorf("failed to record %s: %w", category, err)
	}
	log.Printf("[recorder] #%d %s at %.6f,%.6f", id, category, fix.Latitude, fix.Longitude)
	if r.counters != nil {
		if _, err := r.counters.Refresh(ctx); err != nil {
			return id, true, fmt.Errorf("failed to refresh counters: %w", err)
		}
	}
	return id, true, nil
}
