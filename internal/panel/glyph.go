package panel

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/llgcode/draw2d/draw2dkit"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	xdraw "golang.org/x/image/draw"
)

const placeholderRunes = 8

// glyphExts are tried in order when resolving a category slug to a file.
var glyphExts = []string{".png", ".svg", ".jpg", ".jpeg", ".gif"}

// LoadGlyphs resolves every slug to a size x size glyph from dir. Slugs
// without an image file get a drawn placeholder; unreadable files are errors.
func LoadGlyphs(dir string, slugs []string, size int) ([]Glyph, error) {
	glyphs := make([]Glyph, 0, len(slugs))
	for _, slug := range slugs {
		path, err := findGlyphFile(dir, slug)
		if err != nil {
			log.Printf("[panel] no image for %q in %s, using placeholder", slug, dir)
			img, err := Placeholder(slug, size)
			if err != nil {
				return nil, err
			}
			glyphs = append(glyphs, Glyph{Name: slug, Image: img})
			continue
		}
		img, err := LoadImage(path, size)
		if err != nil {
			return nil, fmt.Errorf("failed to load glyph %s: %w", path, err)
		}
		glyphs = append(glyphs, Glyph{Name: slug, Image: img})
	}
	return glyphs, nil
}

func findGlyphFile(dir, slug string) (string, error) {
	for _, ext := range glyphExts {
		path := filepath.Join(dir, slug+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", os.ErrNotExist
}

// LoadImage decodes a raster or SVG image and fits it into a size x size square.
func LoadImage(path string, size int) (*image.RGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var img image.Image
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		img, err = png.Decode(bytes.NewReader(data))
	case ".jpg", ".jpeg":
		img, err = jpeg.Decode(bytes.NewReader(data))
	case ".gif":
		img, err = gif.Decode(bytes.NewReader(data))
	case ".svg":
		return rasterizeSVG(data, size)
	default:
		return nil, fmt.Errorf("unsupported image format: %s", ext)
	}
	if err != nil {
		return nil, err
	}
	return Fit(img, size), nil
}

func rasterizeSVG(data []byte, size int) (*image.RGBA, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if icon.ViewBox.W <= 0 || icon.ViewBox.H <= 0 {
		return nil, errors.New("svg has an empty viewBox")
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.Draw(img, img.Bounds(), image.NewUniform(Black), image.Point{}, xdraw.Src)

	scale := math.Min(float64(size)/icon.ViewBox.W, float64(size)/icon.ViewBox.H)
	w, h := icon.ViewBox.W*scale, icon.ViewBox.H*scale
	icon.SetTarget((float64(size)-w)/2, (float64(size)-h)/2, w, h)
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	dasher := rasterx.NewDasher(size, size, scanner)
	icon.Draw(dasher, 1.0)
	return img, nil
}

// Fit scales img to fit a size x size square on black, keeping aspect ratio.
func Fit(img image.Image, size int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.Draw(dst, dst.Bounds(), image.NewUniform(Black), image.Point{}, xdraw.Src)

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return dst
	}
	scale := math.Min(float64(size)/float64(b.Dx()), float64(size)/float64(b.Dy()))
	w := int(math.Round(float64(b.Dx()) * scale))
	h := int(math.Round(float64(b.Dy()) * scale))
	x0 := (size - w) / 2
	y0 := (size - h) / 2
	xdraw.CatmullRom.Scale(dst, image.Rect(x0, y0, x0+w, y0+h), img, b, xdraw.Over, nil)
	return dst
}

// Placeholder draws a framed label for a category without an image file.
func Placeholder(slug string, size int) (*image.RGBA, error) {
	img, err := RenderText(size, size, placeholderLabel(slug), TextOptions{
		Foreground: White,
		Background: Black,
		Size:       float64(size) / 6,
		Position:   image.Pt(size/10, size/3),
	})
	if err != nil {
		return nil, err
	}

	gc := draw2dimg.NewGraphicContext(img)
	gc.SetStrokeColor(color.RGBA{R: 0x62, G: 0x74, B: 0x82, A: 0xFF})
	gc.SetLineWidth(2)
	inset := 2.0
	radius := float64(size) / 6
	draw2dkit.RoundedRectangle(gc, inset, inset, float64(size)-inset, float64(size)-inset, radius, radius)
	gc.Stroke()
	return img, nil
}

// placeholderLabel keeps the first placeholderRunes characters of slug.
func placeholderLabel(slug string) string {
	runes := []rune(slug)
	if len(runes) > placeholderRunes {
		return string(runes[:placeholderRunes])
	}
	return slug
}
