package panel

import (
	"fmt"
	"image"
	"image/draw"
	"math"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	fontOnce  sync.Once
	fontErr   error
	boldFont  *opentype.Font
	facesMu   sync.Mutex
	faceCache = map[float64]font.Face{}
)

func faceForSize(size float64) (font.Face, error) {
	fontOnce.Do(func() {
		boldFont, fontErr = opentype.Parse(gobold.TTF)
	})
	if fontErr != nil {
		return nil, fmt.Errorf("failed to parse font: %w", fontErr)
	}

	facesMu.Lock()
	defer facesMu.Unlock()
	if face, ok := faceCache[size]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(boldFont, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %.0fpt face: %w", size, err)
	}
	faceCache[size] = face
	return face, nil
}

// RenderText draws newline-separated text onto a w x h image filled with the
// background color. Lines that do not fit are clipped.
func RenderText(w, h int, text string, opts TextOptions) (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)

	size := opts.Size
	if size <= 0 {
		size = 16
	}
	face, err := faceForSize(size)
	if err != nil {
		return nil, err
	}
	spacing := opts.LineSpacing
	if spacing <= 0 {
		spacing = 1
	}

	metrics := face.Metrics()
	lineHeight := int(math.Ceil(float64(metrics.Height.Ceil()) * spacing))
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(opts.Foreground),
		Face: face,
	}
	y := opts.Position.Y + metrics.Ascent.Round()
	for _, line := range strings.Split(text, "\n") {
		d.Dot = fixed.P(opts.Position.X, y)
		d.DrawString(line)
		y += lineHeight
	}
	return img, nil
}
