// Package feedback draws the status and counter keys.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"net"
	"strings"

	"github.com/verte-zerg/poideck/internal/model"
	"github.com/verte-zerg/poideck/internal/panel"
)

const (
	backHint    = "<<"
	forwardHint = ">>"
	noFixLabel  = "NO FIX\nNO ADDR"
)

// TextSetter is the part of a panel that draws text.
type TextSetter interface {
	SetText(key int, text string, opts panel.TextOptions) error
}

// CounterSource yields the aggregate record counts.
type CounterSource interface {
	Counters(ctx context.Context) (model.Counters, error)
}

// CounterDisplay renders today/all-time counts on its key.
type CounterDisplay struct {
	src CounterSource
	out TextSetter
	key int
}

func NewCounterDisplay(src CounterSource, out TextSetter, key int) *CounterDisplay {
	return &CounterDisplay{src: src, out: out, key: key}
}

// Refresh reads fresh counts from the store and draws them.
func (c *CounterDisplay) Refresh(ctx context.Context) (model.Counters, error) {
	counters, err := c.src.Counters(ctx)
	if err != nil {
		return model.Counters{}, err
	}
	text := FormatCounters(counters) + "\n" + forwardHint
	if err := c.out.SetText(c.key, text, panel.CounterText); err != nil {
		return model.Counters{}, fmt.Errorf("failed to draw counters: %w", err)
	}
	return counters, nil
}

// FormatCounters returns "{today}\n{all}".
func FormatCounters(c model.Counters) string {
	return fmt.Sprintf("%d\n%d", c.Today, c.All)
}

// StatusPresenter renders the current fix, or the host address while there
// is none.
type StatusPresenter struct {
	out    TextSetter
	key    int
	iface  string
	lookup func(name string) (net.IP, error)
	warned bool
}

func NewStatusPresenter(out TextSetter, key int, iface string) *StatusPresenter {
	return &StatusPresenter{out: out, key: key, iface: iface, lookup: InterfaceIPv4}
}

// Render draws the status for fix, which may be nil.
func (s *StatusPresenter) Render(fix *model.Fix) error {
	text := s.Text(fix) + "\n" + backHint
	if err := s.out.SetText(s.key, text, panel.StatusText); err != nil {
		return fmt.Errorf("failed to draw status: %w", err)
	}
	return nil
}

// Text returns the status text without the navigation hint.
func (s *StatusPresenter) Text(fix *model.Fix) string {
	if fix != nil {
		return FormatFix(*fix)
	}
	ip, err := s.lookup(s.iface)
	if err != nil {
		if !s.warned {
			log.Printf("[status] no address on %s: %v", s.iface, err)
			s.warned = true
		}
		return noFixLabel
	}
	return strings.ReplaceAll(ip.String(), ".", ".\n")
}

// FormatFix returns "{km/h} km/h\n{HH:MM:SS}" with the time in UTC.
func FormatFix(f model.Fix) string {
	kmh := math.Round(f.Speed * 3.6)
	if kmh == 0 {
		kmh = 0 // drop negative zero
	}
	return fmt.Sprintf("%.0f km/h\n%s", kmh, f.Timestamp.UTC().Format("15:04:05"))
}

// InterfaceIPv4 returns the first IPv4 address of the named interface.
func InterfaceIPv4(name string) (net.IP, error) {
	ifi, err := net.InterfaceByName(name)
	if err != nil {
		return nil, err
	}
	addrs, err := ifi.Addrs()
	if err != nil {
		return nil, err
	}
	for _, addr := range addrs {
		var ip net.IP
		switch a := addr.(type) {
		case *net.IPNet:
			ip = a.IP
		case *net.IPAddr:
			ip = a.IP
		}
		if v4 := ip.To4(); v4 != nil {
			return v4, nil
		}
	}
	return nil, errors.New("no IPv4 address")
}
