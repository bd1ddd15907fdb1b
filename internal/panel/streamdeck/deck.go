// Package streamdeck drives an Elgato Stream Deck (15-key, V2 protocol) over USB HID.
package streamdeck

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"sync"
	"time"

	"github.com/sstallion/go-hid"
	xdraw "golang.org/x/image/draw"

	"github.com/verte-zerg/poideck/internal/model"
	"github.com/verte-zerg/poideck/internal/panel"
)

const (
	// VendorID and ProductID identify the Stream Deck V2.
	VendorID  uint16 = 0x0fd9
	ProductID uint16 = 0x006d

	keyCount      = 15
	keySize       = 72
	reportLen     = 1024
	headerLen     = 8
	featureLen    = 32
	buttonOffset  = 4
	jpegQuality   = 95
	imageReportID = 0x02
	// maxDrain bounds Drain on a device that keeps reporting.
	maxDrain = 64
)

type device interface {
	Write(b []byte) (int, error)
	ReadWithTimeout(b []byte, timeout time.Duration) (int, error)
	SendFeatureReport(b []byte) (int, error)
	Close() error
}

// Deck is a connected Stream Deck.
type Deck struct {
	mu     sync.Mutex
	dev    device
	states []byte
	exit   func() error
}

// Open initialises the HID library and opens the first matching device.
func Open(vendorID, productID uint16) (*Deck, error) {
	if err := hid.Init(); err != nil {
		return nil, fmt.Errorf("failed to init hid: %w", err)
	}
	dev, err := hid.OpenFirst(vendorID, productID)
	if err != nil {
		_ = hid.Exit()
		return nil, fmt.Errorf("failed to open stream deck %04x:%04x: %w", vendorID, productID, err)
	}
	d := newDeck(dev)
	d.exit = hid.Exit
	return d, nil
}

func newDeck(dev device) *Deck {
	return &Deck{
		dev:    dev,
		states: make([]byte, buttonOffset+keyCount),
	}
}

func (d *Deck) KeyCount() int { return keyCount }

// Reset clears all keys to the device logo.
func (d *Deck) Reset() error {
	return d.sendFeature([]byte{0x03, 0x02})
}

// SetBrightness sets the backlight in percent.
func (d *Deck) SetBrightness(percent int) error {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return d.sendFeature([]byte{0x03, 0x08, byte(percent)})
}

func (d *Deck) sendFeature(payload []byte) error {
	buf := make([]byte, featureLen)
	copy(buf, payload)

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := d.dev.SendFeatureReport(buf); err != nil {
		return fmt.Errorf("failed to send feature report: %w", err)
	}
	return nil
}

func (d *Deck) SetImage(key int, g panel.Glyph) error {
	if g.Image == nil {
		return fmt.Errorf("glyph %q has no image", g.Name)
	}
	return d.writeImage(key, g.Image)
}

func (d *Deck) SetRGB(key int, c color.RGBA) error {
	img := image.NewRGBA(image.Rect(0, 0, keySize, keySize))
	xdraw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, xdraw.Src)
	return d.writeImage(key, img)
}

func (d *Deck) SetText(key int, text string, opts panel.TextOptions) error {
	img, err := panel.RenderText(keySize, keySize, text, opts)
	if err != nil {
		return err
	}
	return d.writeImage(key, img)
}

func (d *Deck) writeImage(key int, img image.Image) error {
	if key < 0 || key >= keyCount {
		return fmt.Errorf("key %d out of range", key)
	}
	data, err := encodeKeyImage(img)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for _, report := range imageReports(key, data) {
		if _, err := d.dev.Write(report); err != nil {
			return fmt.Errorf("failed to write key %d image: %w", key, err)
		}
	}
	return nil
}

// encodeKeyImage scales img to the key size, rotates it 180 degrees as the
// device expects, and encodes it as JPEG.
func encodeKeyImage(img image.Image) ([]byte, error) {
	scaled := image.NewRGBA(image.Rect(0, 0, keySize, keySize))
	if img.Bounds().Dx() == keySize && img.Bounds().Dy() == keySize {
		xdraw.Draw(scaled, scaled.Bounds(), img, img.Bounds().Min, xdraw.Src)
	} else {
		xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	}

	flipped := image.NewRGBA(scaled.Bounds())
	for y := 0; y < keySize; y++ {
		for x := 0; x < keySize; x++ {
			flipped.SetRGBA(keySize-1-x, keySize-1-y, scaled.RGBAAt(x, y))
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flipped, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode key image: %w", err)
	}
	return buf.Bytes(), nil
}

// imageReports splits encoded image data into fixed-size output reports.
func imageReports(key int, data []byte) [][]byte {
	const chunk = reportLen - headerLen
	var reports [][]byte
	for page := 0; ; page++ {
		start := page * chunk
		end := start + chunk
		last := byte(0)
		if end >= len(data) {
			end = len(data)
			last = 1
		}
		n := end - start
		report := make([]byte, reportLen)
		report[0] = imageReportID
		report[1] = 0x07
		report[2] = byte(key)
		report[3] = last
		report[4] = byte(n)
		report[5] = byte(n >> 8)
		report[6] = byte(page)
		report[7] = byte(page >> 8)
		copy(report[headerLen:], data[start:end])
		reports = append(reports, report)
		if last == 1 {
			return reports
		}
	}
}

// ReadButtons waits up to timeout for a key state report.
func (d *Deck) ReadButtons(timeout time.Duration) ([]bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n, err := d.dev.ReadWithTimeout(d.states, timeout)
	if errors.Is(err, hid.ErrTimeout) || (err == nil && n == 0) {
		return nil, model.ErrTimeout
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read buttons: %w", err)
	}
	if n < len(d.states) {
		return nil, model.ErrTimeout
	}
	pressed := make([]bool, keyCount)
	for i := range pressed {
		pressed[i] = d.states[buttonOffset+i] != 0
	}
	return pressed, nil
}

// Drain discards key state reports already queued by the OS or hidapi.
func (d *Deck) Drain() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := 0; i < maxDrain; i++ {
		n, err := d.dev.ReadWithTimeout(d.states, 0)
		if errors.Is(err, hid.ErrTimeout) || (err == nil && n == 0) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to drain buttons: %w", err)
		}
	}
	return nil
}

// Close releases the device. Keys keep their last image.
func (d *Deck) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	err := d.dev.Close()
	if d.exit != nil {
		if exitErr := d.exit(); err == nil {
			err = exitErr
		}
	}
	return err
}
