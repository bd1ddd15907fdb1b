// Package panel defines the button panel contract and the imagery shared by
// panel drivers: glyphs for categories and rasterised status text.
package panel

import (
	"image"
	"image/color"
	"time"
)

// Panel is a fixed grid of addressable keys with an image per key.
// ReadButtons returns model.ErrTimeout when no state arrived within timeout;
// any other error means the device is gone.
type Panel interface {
	KeyCount() int
	Reset() error
	SetImage(key int, g Glyph) error
	SetRGB(key int, c color.RGBA) error
	SetText(key int, text string, opts TextOptions) error
	ReadButtons(timeout time.Duration) ([]bool, error)
	Close() error
}

// Dimmer is implemented by panels with adjustable backlight.
type Dimmer interface {
	SetBrightness(percent int) error
}

// Drainer is implemented by panels that queue key input. Drain discards
// everything read so far without reporting it.
type Drainer interface {
	Drain() error
}

// Glyph is a category image along with the name it stands for.
type Glyph struct {
	Name  string
	Image image.Image
}

// TextOptions controls how text is drawn onto a key.
type TextOptions struct {
	Foreground  color.RGBA
	Background  color.RGBA
	Size        float64
	Position    image.Point
	LineSpacing float64
}

// Colors used on the panel.
var (
	Red   = color.RGBA{R: 0xFF, A: 0xFF}
	Green = color.RGBA{G: 0xFF, A: 0xFF}
	Black = color.RGBA{A: 0xFF}
	White = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
)

// StatusText is the small two-tone style used on the status key.
var StatusText = TextOptions{Foreground: Red, Background: Black, Size: 16, LineSpacing: 1}

// CounterText is the large style used on the counter key.
var CounterText = TextOptions{Foreground: Green, Background: Black, Size: 32, LineSpacing: 1}
