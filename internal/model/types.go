// Package model defines shared data structures.
package model

import (
	"errors"
	"time"
)

// ErrTimeout is returned by polled devices when a bounded read produced no data.
var ErrTimeout = errors.New("poll timeout")

// Fix is a single normalized position/velocity/time reading.
type Fix struct {
	Latitude  float64
	Longitude float64
	Timestamp time.Time // UTC
	Speed     float64   // m/s
}

// POI is a persisted point of interest.
type POI struct {
	ID        int64
	Category  string
	Latitude  float64
	Longitude float64
	FixTime   time.Time
	Created   time.Time
}

// Counters are derived POI totals.
type Counters struct {
	All   int64
	Today int64
}

// Bounds is the bounding box over all stored POIs.
type Bounds struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

// CategoryCount aggregates POIs per category.
type CategoryCount struct {
	Category string
	All      int64
	Today    int64
}

// Tag is a single exported key/value pair.
type Tag struct {
	Key   string
	Value string
}

// DayCount is the number of POIs recorded on one UTC day.
type DayCount struct {
	Day   time.Time
	Count int64
}
