// Package serialgps reads NMEA 0183 sentences from a serial GPS receiver.
package serialgps

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	nmea "github.com/adrianmo/go-nmea"
	"go.bug.st/serial"

	"github.com/verte-zerg/poideck/internal/fix"
	"github.com/verte-zerg/poideck/internal/model"
)

const (
	knotsToMS = 1852.0 / 3600.0
	// maxPending bounds the buffer when a receiver emits garbage without newlines.
	maxPending = 4096
)

// Source polls a serial port for sentences. Each poll yields at most one report.
type Source struct {
	port    io.ReadCloser
	pending []byte
	chunk   []byte
	now     func() time.Time
}

// Open opens the serial port with the given per-poll read timeout.
func Open(portPath string, baud int, timeout time.Duration) (*Source, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portPath, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", portPath, err)
	}
	if err := port.SetReadTimeout(timeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", portPath, err)
	}
	log.Printf("[nmea] connected to %s at %d baud", portPath, baud)
	return newSource(port), nil
}

func newSource(port io.ReadCloser) *Source {
	return &Source{
		port:  port,
		chunk: make([]byte, 256),
		now:   time.Now,
	}
}

// Poll returns the next complete sentence as a report, or model.ErrTimeout.
func (s *Source) Poll() (fix.Report, error) {
	if line, ok := s.nextLine(); ok {
		return ParseSentence(line, s.now()), nil
	}
	n, err := s.port.Read(s.chunk)
	if err != nil {
		return nil, fmt.Errorf("failed to read serial gps: %w", err)
	}
	if n == 0 {
		return nil, model.ErrTimeout
	}
	s.pending = append(s.pending, s.chunk[:n]...)
	if len(s.pending) > maxPending {
		s.pending = s.pending[len(s.pending)-maxPending:]
	}
	if line, ok := s.nextLine(); ok {
		return ParseSentence(line, s.now()), nil
	}
	return nil, model.ErrTimeout
}

// Close closes the serial port.
func (s *Source) Close() error {
	return s.port.Close()
}

func (s *Source) nextLine() (string, bool) {
	idx := bytes.IndexByte(s.pending, '\n')
	if idx < 0 {
		return "", false
	}
	line := strings.TrimSpace(string(s.pending[:idx]))
	s.pending = s.pending[idx+1:]
	return line, true
}

// ParseSentence maps one sentence to a report. now supplies the date for
// sentences that carry only a time of day.
func ParseSentence(line string, now time.Time) fix.Report {
	if !strings.HasPrefix(line, "$") {
		return fix.Ignored{}
	}
	sentence, err := nmea.Parse(line)
	if err != nil {
		return fix.Ignored{}
	}

	switch m := sentence.(type) {
	case nmea.RMC:
		ts := rmcTime(m.Date, m.Time)
		if m.Validity != nmea.ValidRMC {
			return fix.NoFix{Time: ts}
		}
		speed := m.Speed * knotsToMS
		return fix.LatLonOnly{Time: ts, Latitude: m.Latitude, Longitude: m.Longitude, Speed: &speed}
	case nmea.GGA:
		now = now.UTC()
		ts := time.Date(now.Year(), now.Month(), now.Day(),
			m.Time.Hour, m.Time.Minute, m.Time.Second, m.Time.Millisecond*int(time.Millisecond), time.UTC)
		if m.FixQuality == nmea.Invalid {
			return fix.NoFix{Time: ts}
		}
		// GGA has no ground speed, so the tracker drops it.
		return fix.LatLonOnly{Time: ts, Latitude: m.Latitude, Longitude: m.Longitude}
	default:
		return fix.Ignored{Class: sentence.DataType()}
	}
}

func rmcTime(d nmea.Date, t nmea.Time) time.Time {
	year := 2000 + d.YY
	if d.YY >= 80 {
		year = 1900 + d.YY
	}
	return time.Date(year, time.Month(d.MM), d.DD,
		t.Hour, t.Minute, t.Second, t.Millisecond*int(time.Millisecond), time.UTC)
}
