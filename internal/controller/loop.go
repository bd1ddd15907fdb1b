// Package controller runs the live polling loop that ties the position
// source, the panel and the store together.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/verte-zerg/poideck/internal/feedback"
	"github.com/verte-zerg/poideck/internal/fix"
	"github.com/verte-zerg/poideck/internal/model"
	"github.com/verte-zerg/poideck/internal/pages"
	"github.com/verte-zerg/poideck/internal/panel"
	"github.com/verte-zerg/poideck/internal/recorder"
)

// FixSource yields one report per call, or model.ErrTimeout when nothing
// arrived within its read timeout.
type FixSource interface {
	Poll() (fix.Report, error)
}

// Loop owns the tracker, the page state and both devices for its lifetime.
type Loop struct {
	source   FixSource
	panel    panel.Panel
	timeout  time.Duration
	tracker  *fix.Tracker
	pages    *pages.Manager
	status   *feedback.StatusPresenter
	counters *feedback.CounterDisplay
	recorder *recorder.Recorder
	armed    bool
}

// Options configures a Loop.
type Options struct {
	Source      FixSource
	Panel       panel.Panel
	Store       Store
	Glyphs      []panel.Glyph
	Interface   string
	PollTimeout time.Duration
}

// Store is the persistence the loop needs.
type Store interface {
	recorder.Inserter
	feedback.CounterSource
}

func New(opts Options) (*Loop, error) {
	if opts.Panel.KeyCount() < pages.KeyCount {
		return nil, fmt.Errorf("panel has %d keys, need %d", opts.Panel.KeyCount(), pages.KeyCount)
	}
	mgr, err := pages.NewManager(opts.Panel, opts.Glyphs)
	if err != nil {
		return nil, err
	}
	counters := feedback.NewCounterDisplay(opts.Store, opts.Panel, pages.ForwardKey)
	return &Loop{
		source:   opts.Source,
		panel:    opts.Panel,
		timeout:  opts.PollTimeout,
		tracker:  &fix.Tracker{},
		pages:    mgr,
		status:   feedback.NewStatusPresenter(opts.Panel, pages.BackKey, opts.Interface),
		counters: counters,
		recorder: recorder.New(opts.Store, counters),
	}, nil
}

// Start resets the panel and draws the first page, the status and the counters.
func (l *Loop) Start(ctx context.Context, brightness int) error {
	if err := l.panel.Reset(); err != nil {
		return fmt.Errorf("failed to reset panel: %w", err)
	}
	if d, ok := l.panel.(panel.Dimmer); ok {
		if err := d.SetBrightness(brightness); err != nil {
			return fmt.Errorf("failed to set brightness: %w", err)
		}
	}
	if err := l.pages.RenderPage(0); err != nil {
		return err
	}
	if err := l.status.Render(nil); err != nil {
		return err
	}
	counters, err := l.counters.Refresh(ctx)
	if err != nil {
		return err
	}
	log.Printf("[loop] started: %d pages, %d today, %d total", l.pages.PageCount(), counters.Today, counters.All)
	return nil
}

// Run repeats Step until ctx is done or a device fails.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if err := l.Step(ctx); err != nil {
			return err
		}
	}
}

// Step performs one polling cycle. Timeouts are not errors; every returned
// error is fatal.
func (l *Loop) Step(ctx context.Context) error {
	report, err := l.source.Poll()
	switch {
	case err == nil:
		l.tracker.Ingest(report)
		if err := l.status.Render(l.tracker.Current()); err != nil {
			return err
		}
	case !errors.Is(err, model.ErrTimeout):
		return fmt.Errorf("failed to poll position source: %w", err)
	}

	current := l.tracker.Current()
	if current == nil {
		return nil
	}
	if !l.armed {
		// Input queued while there was no fix must not turn into records.
		if d, ok := l.panel.(panel.Drainer); ok {
			if err := d.Drain(); err != nil {
				return fmt.Errorf("failed to drain panel: %w", err)
			}
		}
		l.armed = true
	}

	pressed, err := l.panel.ReadButtons(l.timeout)
	if errors.Is(err, model.ErrTimeout) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read panel: %w", err)
	}
	if len(pressed) < pages.KeyCount {
		return fmt.Errorf("panel reported %d keys, need %d", len(pressed), pages.KeyCount)
	}

	// A held key is seen as pressed on every read and records once per cycle.
	for key := 0; key < pages.ButtonsPerPage; key++ {
		slot := l.pages.SlotAt(key)
		if slot.Kind != pages.SlotCategory || !pressed[key] {
			continue
		}
		if _, _, err := l.recorder.Record(ctx, slot.Category, current); err != nil {
			return err
		}
	}
	for _, key := range []int{pages.BackKey, pages.ForwardKey} {
		if !pressed[key] {
			continue
		}
		if _, err := l.pages.Navigate(l.pages.SlotAt(key).Direction); err != nil {
			return err
		}
	}
	return nil
}

// Page returns the current page index.
func (l *Loop) Page() int {
	return l.pages.Page()
}

// Current returns the last known fix, or nil.
func (l *Loop) Current() *model.Fix {
	return l.tracker.Current()
}
