package serialgps

import (
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"github.com/verte-zerg/poideck/internal/fix"
	"github.com/verte-zerg/poideck/internal/model"
)

const (
	rmcValid   = "$GPRMC,102030.50,A,4730.000,N,01903.000,E,010.0,084.4,010524,,,A*5B"
	rmcVoid    = "$GPRMC,102030.00,V,,,,,,,010524,,,N*7F"
	ggaValid   = "$GPGGA,102031.00,4730.000,N,01903.000,E,1,08,0.9,120.0,M,46.9,M,,*6F"
	ggaInvalid = "$GPGGA,102031.00,,,,,0,00,99.99,,,,,,*67"
	gsa        = "$GPGSA,A,3,04,05,,09,12,,,24,,,,,2.5,1.3,2.1*39"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestParseSentenceRMC(t *testing.T) {
	r := ParseSentence(rmcValid, now)
	ll, ok := r.(fix.LatLonOnly)
	if !ok {
		t.Fatalf("expected LatLonOnly, got %T", r)
	}
	if ll.Speed == nil || math.Abs(*ll.Speed-10*knotsToMS) > 1e-9 {
		t.Fatalf("expected 10 knots in m/s, got %v", ll.Speed)
	}
	if math.Abs(ll.Latitude-47.5) > 1e-9 || math.Abs(ll.Longitude-19.05) > 1e-9 {
		t.Fatalf("unexpected coordinates: %v,%v", ll.Latitude, ll.Longitude)
	}
	want := time.Date(2024, 5, 1, 10, 20, 30, 500_000_000, time.UTC)
	if !ll.Time.Equal(want) {
		t.Fatalf("expected %v, got %v", want, ll.Time)
	}
	if _, ok := fix.Normalize(r); !ok {
		t.Fatalf("valid RMC must normalize to a fix")
	}
}

func TestParseSentenceWithoutUsableFix(t *testing.T) {
	for _, line := range []string{rmcVoid, ggaValid, ggaInvalid, gsa, "garbage", "$GPRMC,bad*00"} {
		if _, ok := fix.Normalize(ParseSentence(line, now)); ok {
			t.Fatalf("expected %q not to produce a fix", line)
		}
	}
	if _, ok := ParseSentence(ggaValid, now).(fix.LatLonOnly); !ok {
		t.Fatalf("expected GGA to map to LatLonOnly without speed")
	}
}

type chunkReader struct {
	chunks []string
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.chunks) == 0 {
		return 0, nil
	}
	chunk := c.chunks[0]
	c.chunks = c.chunks[1:]
	if chunk == "EOF" {
		return 0, io.ErrUnexpectedEOF
	}
	return copy(p, chunk), nil
}

func (c *chunkReader) Close() error { return nil }

func TestPollReassemblesSentences(t *testing.T) {
	half := len(rmcValid) / 2
	src := newSource(&chunkReader{chunks: []string{
		rmcValid[:half],
		"",
		rmcValid[half:] + "\r\n" + gsa + "\r\n",
		"EOF",
	}})
	src.now = func() time.Time { return now }

	if _, err := src.Poll(); !errors.Is(err, model.ErrTimeout) {
		t.Fatalf("expected timeout on partial sentence, got %v", err)
	}
	if _, err := src.Poll(); !errors.Is(err, model.ErrTimeout) {
		t.Fatalf("expected timeout on empty read, got %v", err)
	}
	r, err := src.Poll()
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if _, ok := r.(fix.LatLonOnly); !ok {
		t.Fatalf("expected RMC report, got %T", r)
	}
	r, err = src.Poll()
	if err != nil {
		t.Fatalf("buffered poll: %v", err)
	}
	if _, ok := r.(fix.Ignored); !ok {
		t.Fatalf("expected buffered GSA to be ignored, got %T", r)
	}
	if _, err := src.Poll(); err == nil || errors.Is(err, model.ErrTimeout) {
		t.Fatalf("expected fatal read error, got %v", err)
	}
}
