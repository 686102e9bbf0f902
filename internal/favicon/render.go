// render.go draws single favicon frames: a rounded dark square with one
// letter centered by its ink bounds, or the square alone for the blank frame.

package favicon

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// kappa places cubic Bézier control points for a quarter circle.
const kappa = 0.5522847498

// Style holds the visual parameters shared by every frame.
type Style struct {
	// Canvas is the square frame size in pixels.
	Canvas int
	// Padding is the minimum gap between the letter's ink and each edge.
	Padding int
	// CornerRadius rounds the background square.
	CornerRadius int
	// Background is the square's hex color (e.g. "#230808").
	Background string
	// Foreground is the letter's hex color (e.g. "#FFE178").
	Foreground string
	// XAdjust and YAdjust nudge the letter after centering (+ = right/down).
	XAdjust, YAdjust int
}

// DefaultStyle returns the site's amber-on-dark CRT look at 64px.
func DefaultStyle() Style {
	return Style{
		Canvas:       64,
		Padding:      8,
		CornerRadius: 12,
		Background:   "#230808",
		Foreground:   "#FFE178",
	}
}

// InkBox returns the maximum ink width and height a letter may occupy.
func (s Style) InkBox() (w, h int) {
	return s.Canvas - 2*s.Padding, s.Canvas - 2*s.Padding
}

// Size search bounds for [LargestFittingFace], in points at 72 DPI.
const (
	MaxFontSize = 200
	MinFontSize = 5
)

// LargestFittingFace returns the largest face, searching from MaxFontSize
// down, whose ink bounds for probe fit within maxW x maxH. When no size
// fits, the MinFontSize face is returned. The caller closes the face.
func LargestFittingFace(otFont *opentype.Font, probe string, maxW, maxH int) (font.Face, int, error) {
	for size := MaxFontSize; size > MinFontSize; size-- {
		face, err := newFace(otFont, size)
		if err != nil {
			return nil, 0, err
		}
		w, h := InkSize(face, probe)
		if w <= maxW && h <= maxH {
			return face, size, nil
		}
		face.Close()
	}
	face, err := newFace(otFont, MinFontSize)
	if err != nil {
		return nil, 0, err
	}
	return face, MinFontSize, nil
}

func newFace(otFont *opentype.Font, size int) (font.Face, error) {
	face, err := opentype.NewFace(otFont, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face at %dpt: %w", size, err)
	}
	return face, nil
}

// InkSize returns the pixel size of the rendered ink of s, not its advance
// or line metrics.
func InkSize(face font.Face, s string) (w, h int) {
	bounds, _ := font.BoundString(face, s)
	return (bounds.Max.X - bounds.Min.X).Ceil(), (bounds.Max.Y - bounds.Min.Y).Ceil()
}

// RenderFrame renders letter centered by ink bounds on the rounded
// background and returns the frame image.
func RenderFrame(style Style, letter string, face font.Face) (*image.NRGBA, error) {
	img, err := RenderBlank(style)
	if err != nil {
		return nil, err
	}
	fg, err := ParseHexColor(style.Foreground)
	if err != nil {
		return nil, fmt.Errorf("parse foreground: %w", err)
	}

	bounds, _ := font.BoundString(face, letter)
	inkW := (bounds.Max.X - bounds.Min.X).Ceil()
	inkH := (bounds.Max.Y - bounds.Min.Y).Ceil()
	originX := (style.Canvas-inkW)/2 - bounds.Min.X.Floor() + style.XAdjust
	originY := (style.Canvas-inkH)/2 - bounds.Min.Y.Floor() + style.YAdjust

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.P(originX, originY),
	}
	d.DrawString(letter)
	return img, nil
}

// RenderBlank returns a transparent canvas with only the rounded background.
func RenderBlank(style Style) (*image.NRGBA, error) {
	if style.Canvas <= 0 {
		return nil, fmt.Errorf("canvas size must be positive, got %d", style.Canvas)
	}
	bg, err := ParseHexColor(style.Background)
	if err != nil {
		return nil, fmt.Errorf("parse background: %w", err)
	}
	img := image.NewNRGBA(image.Rect(0, 0, style.Canvas, style.Canvas))
	fillRoundedRect(img, float32(style.CornerRadius), bg)
	return img, nil
}

// fillRoundedRect composites a rounded rectangle covering all of img.
func fillRoundedRect(img *image.NRGBA, radius float32, c color.NRGBA) {
	b := img.Bounds()
	w, h := float32(b.Dx()), float32(b.Dy())
	r := min(max(radius, 0), w/2, h/2)
	k := r * kappa

	ras := vector.NewRasterizer(b.Dx(), b.Dy())
	ras.MoveTo(r, 0)
	ras.LineTo(w-r, 0)
	ras.CubeTo(w-r+k, 0, w, r-k, w, r)
	ras.LineTo(w, h-r)
	ras.CubeTo(w, h-r+k, w-r+k, h, w-r, h)
	ras.LineTo(r, h)
	ras.CubeTo(r-k, h, 0, h-r+k, 0, h-r)
	ras.LineTo(0, r)
	ras.CubeTo(0, r-k, r-k, 0, r, 0)
	ras.ClosePath()
	ras.Draw(img, b, image.NewUniform(c), image.Point{})
}

// EncodePNG encodes a frame at best compression.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	enc := &png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
