// Package raster holds the pixel-level building blocks of the composition
// pipeline. All frames are *image.RGBA anchored at (0,0); overlays follow the
// image.RGBA convention of alpha-premultiplied color.
package raster

import (
	"errors"
	"image"
	"image/color"
	"image/draw"

	"github.com/nfnt/resize"
)

// ErrInvalidSize is returned when a requested output size is not positive
var ErrInvalidSize = errors.New("raster: output size must be positive")

// ErrEmptyFrame is returned for nil or zero-area input frames
var ErrEmptyFrame = errors.New("raster: empty input frame")

// New allocates a transparent canvas
func New(w, h int) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

// ToRGBA converts any image into an *image.RGBA anchored at the origin.
// RGBA images that are already anchored are returned as-is.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// Clone returns a deep copy of a frame
func Clone(src *image.RGBA) *image.RGBA {
	out := &image.RGBA{
		Pix:    make([]uint8, len(src.Pix)),
		Stride: src.Stride,
		Rect:   src.Rect,
	}
	copy(out.Pix, src.Pix)
	return out
}

// Resize scales an image to exactly w×h using Lanczos3
func Resize(img image.Image, w, h int) *image.RGBA {
	return ToRGBA(resize.Resize(uint(w), uint(h), img, resize.Lanczos3))
}

// ResizeFast scales an image to exactly w×h using bilinear interpolation
func ResizeFast(img image.Image, w, h int) *image.RGBA {
	return ToRGBA(resize.Resize(uint(w), uint(h), img, resize.Bilinear))
}

// CropCenter cuts a w×h window from the middle of src (clamped to src bounds)
func CropCenter(src *image.RGBA, w, h int) *image.RGBA {
	b := src.Bounds()
	if w > b.Dx() {
		w = b.Dx()
	}
	if h > b.Dy() {
		h = b.Dy()
	}
	x0 := b.Min.X + (b.Dx()-w)/2
	y0 := b.Min.Y + (b.Dy()-h)/2
	out := New(w, h)
	draw.Draw(out, out.Bounds(), src, image.Pt(x0, y0), draw.Src)
	return out
}

// FillRect paints an opaque rectangle (clipped to dst)
func FillRect(dst *image.RGBA, r image.Rectangle, c color.RGBA) {
	draw.Draw(dst, r.Intersect(dst.Bounds()), image.NewUniform(c), image.Point{}, draw.Src)
}

// Black returns an opaque black frame
func Black(w, h int) *image.RGBA {
	out := New(w, h)
	FillRect(out, out.Bounds(), color.RGBA{A: 255})
	return out
}

func clampByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
