// Package fix normalizes location daemon reports and tracks the last known fix.
package fix

import (
	"time"

	"github.com/verte-zerg/poideck/internal/model"
)

// Report is one message received from a location source. The set of
// implementations is closed; Normalize handles every variant.
type Report interface {
	report()
}

// Fix3D is a full three-dimensional position report.
type Fix3D struct {
	Time      time.Time
	Latitude  float64
	Longitude float64
	Altitude  float64
	Speed     float64
}

// Fix2D is a two-dimensional position report.
type Fix2D struct {
	Time      time.Time
	Latitude  float64
	Longitude float64
	Speed     float64
}

// LatLonOnly carries coordinates without a reliable fix mode. Speed is optional.
type LatLonOnly struct {
	Time      time.Time
	Latitude  float64
	Longitude float64
	Speed     *float64
}

// NoFix is a position report without usable coordinates.
type NoFix struct {
	Time time.Time
}

// Ignored is any non-position message.
type Ignored struct {
	Class string
}

func (Fix3D) report()      {}
func (Fix2D) report()      {}
func (LatLonOnly) report() {}
func (NoFix) report()      {}
func (Ignored) report()    {}

// Normalize maps a report to a canonical fix. ok is false when the report
// carries no usable fix, including LatLonOnly reports without speed.
func Normalize(r Report) (model.Fix, bool) {
	switch r := r.(type) {
	case Fix3D:
		return model.Fix{Latitude: r.Latitude, Longitude: r.Longitude, Timestamp: r.Time.UTC(), Speed: r.Speed}, true
	case Fix2D:
		return model.Fix{Latitude: r.Latitude, Longitude: r.Longitude, Timestamp: r.Time.UTC(), Speed: r.Speed}, true
	case LatLonOnly:
		if r.Speed == nil {
			return model.Fix{}, false
		}
		return model.Fix{Latitude: r.Latitude, Longitude: r.Longitude, Timestamp: r.Time.UTC(), Speed: *r.Speed}, true
	default:
		return model.Fix{}, false
	}
}

// Tracker holds the last known fix. A new fix replaces the previous one;
// reports without a usable fix leave it unchanged.
type Tracker struct {
	last *model.Fix
}

// Ingest applies a report and reports whether the tracked fix changed.
func (t *Tracker) Ingest(r Report) bool {
	f, ok := Normalize(r)
	if !ok {
		return false
	}
	t.last = &f
	return true
}

// Current returns the last known fix, or nil before the first one.
func (t *Tracker) Current() *model.Fix {
	if t.last == nil {
		return nil
	}
	f := *t.last
	return &f
}
