package raster

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
)

// ErrAspectFitFallback marks a frame that was stretch-resized instead of letterboxed
var ErrAspectFitFallback = errors.New("raster: aspect fit fell back to stretch resize")

const (
	// ratioTolerance below which the source is simply resized
	ratioTolerance = 0.05
	// BackgroundBlur is the Gaussian sigma of the letterbox background
	BackgroundBlur = 25.0
	// blurDownscale trades blur precision for speed; at sigma 25 the difference is invisible
	blurDownscale = 4
)

// AspectFit places frame into an outW×outH canvas: a blurred "cover" copy fills
// the background and a width-fitted "contain" copy sits vertically centered on
// top. The result is always exactly outW×outH. On failure a plain stretch
// resize is returned together with an error wrapping ErrAspectFitFallback.
func AspectFit(frame image.Image, outW, outH int) (out *image.RGBA, err error) {
	if outW <= 0 || outH <= 0 {
		return nil, ErrInvalidSize
	}
	if frame == nil || frame.Bounds().Empty() {
		return Black(outW, outH), fmt.Errorf("%w: %v", ErrAspectFitFallback, ErrEmptyFrame)
	}

	defer func() {
		if r := recover(); r != nil {
			out = Resize(frame, outW, outH)
			err = fmt.Errorf("%w: %v", ErrAspectFitFallback, r)
		}
	}()

	b := frame.Bounds()
	cw, ch := b.Dx(), b.Dy()
	srcRatio := float64(cw) / float64(ch)
	dstRatio := float64(outW) / float64(outH)

	if math.Abs(srcRatio-dstRatio) < ratioTolerance {
		return Resize(frame, outW, outH), nil
	}

	// Background: height matches, width covers, center crop, blur
	bgW := outW
	if scaled := int(float64(cw) * float64(outH) / float64(ch)); scaled > bgW {
		bgW = scaled
	}
	bg := ResizeFast(frame, bgW, outH)
	if bgW > outW {
		bg = CropCenter(bg, outW, outH)
	}
	out = Blur(bg, BackgroundBlur)

	// Foreground: width matches, vertically centered
	fgH := int(float64(outW) / srcRatio)
	if fgH < 1 {
		fgH = 1
	}
	fg := Resize(frame, outW, fgH)
	y0 := (outH - fgH) / 2
	draw.Draw(out, image.Rect(0, y0, outW, y0+fgH), fg, image.Point{}, draw.Src)

	return out, nil
}

// Blur applies a Gaussian blur of the given sigma. Large sigmas are computed
// on a downscaled copy and scaled back up.
func Blur(src *image.RGBA, sigma float64) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if sigma <= 0 {
		return Clone(src)
	}

	if sigma < 2*blurDownscale || w < 4*blurDownscale || h < 4*blurDownscale {
		return ToRGBA(imaging.Blur(src, sigma))
	}

	small := ResizeFast(src, w/blurDownscale, h/blurDownscale)
	blurred := imaging.Blur(small, sigma/blurDownscale)
	return ResizeFast(blurred, w, h)
}
