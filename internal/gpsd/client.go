// Package gpsd reads position reports from a gpsd daemon over its JSON line protocol.
package gpsd

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"time"

	"github.com/verte-zerg/poideck/internal/fix"
	"github.com/verte-zerg/poideck/internal/model"
)

// DefaultAddr is where gpsd listens unless configured otherwise.
const DefaultAddr = "127.0.0.1:2947"

const (
	dialTimeout  = 5 * time.Second
	writeTimeout = 2 * time.Second
	watchCommand = `?WATCH={"enable":true,"json":true}` + "\n"
)

// Client is a gpsd connection polled with a short read timeout.
type Client struct {
	conn    net.Conn
	reader  *bufio.Reader
	timeout time.Duration
	partial []byte
}

// Dial connects to gpsd and sets the per-poll read timeout.
func Dial(addr string, timeout time.Duration) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to gpsd at %s: %w", addr, err)
	}
	log.Printf("[gpsd] connected to %s", addr)
	return newClient(conn, timeout), nil
}

func newClient(conn net.Conn, timeout time.Duration) *Client {
	return &Client{
		conn:    conn,
		reader:  bufio.NewReader(conn),
		timeout: timeout,
	}
}

// Watch asks gpsd to stream JSON reports.
func (c *Client) Watch() error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("failed to set gpsd write deadline: %w", err)
	}
	if _, err := io.WriteString(c.conn, watchCommand); err != nil {
		return fmt.Errorf("failed to send gpsd watch: %w", err)
	}
	return nil
}

// Poll reads at most one report. It returns model.ErrTimeout when no complete
// line arrived within the timeout; a partial line is kept for the next poll.
func (c *Client) Poll() (fix.Report, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return nil, fmt.Errorf("failed to set gpsd read deadline: %w", err)
	}
	line, err := c.reader.ReadBytes('\n')
	if err != nil {
		c.partial = append(c.partial, line...)
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return nil, model.ErrTimeout
		}
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("gpsd closed the connection")
		}
		return nil, fmt.Errorf("failed to read from gpsd: %w", err)
	}
	if len(c.partial) > 0 {
		line = append(c.partial, line...)
		c.partial = nil
	}
	return ParseLine(line), nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

type tpv struct {
	Class  string   `json:"class"`
	Mode   int      `json:"mode"`
	Time   string   `json:"time"`
	Lat    *float64 `json:"lat"`
	Lon    *float64 `json:"lon"`
	Alt    *float64 `json:"alt"`
	AltHAE *float64 `json:"altHAE"`
	Speed  *float64 `json:"speed"`
}

// ParseLine decodes one gpsd JSON line. Undecodable lines and non-TPV classes
// map to fix.Ignored.
func ParseLine(line []byte) fix.Report {
	var msg tpv
	if err := json.Unmarshal(line, &msg); err != nil {
		return fix.Ignored{}
	}
	if msg.Class != "TPV" {
		return fix.Ignored{Class: msg.Class}
	}
	ts, err := time.Parse(time.RFC3339Nano, msg.Time)
	if err != nil {
		return fix.NoFix{}
	}
	ts = ts.UTC()
	if msg.Lat == nil || msg.Lon == nil {
		return fix.NoFix{Time: ts}
	}

	switch {
	case msg.Mode >= 3 && msg.Speed != nil:
		alt := 0.0
		if msg.AltHAE != nil {
			alt = *msg.AltHAE
		} else if msg.Alt != nil {
			alt = *msg.Alt
		}
		return fix.Fix3D{Time: ts, Latitude: *msg.Lat, Longitude: *msg.Lon, Altitude: alt, Speed: *msg.Speed}
	case msg.Mode == 2 && msg.Speed != nil:
		return fix.Fix2D{Time: ts, Latitude: *msg.Lat, Longitude: *msg.Lon, Speed: *msg.Speed}
	default:
		return fix.LatLonOnly{Time: ts, Latitude: *msg.Lat, Longitude: *msg.Lon, Speed: msg.Speed}
	}
}
