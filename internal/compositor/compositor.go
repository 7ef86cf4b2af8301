// Package compositor renders Pass 2: every output frame is the Pass 1 frame,
// graded, with the active caption or CTA overlay and a progress bar on top.
package compositor

import (
	"image"
	"math"

	"github.com/keagan/promoreel/internal/overlays"
	"github.com/keagan/promoreel/internal/raster"
)

// Progress bar appearance
const (
	minBarHeight  = 3
	barHeightFrac = 0.006
	barDim        = 0.30
)

// Params are the inputs of NewRenderContext
type Params struct {
	Width    int
	Height   int
	Duration float64
	Overlays *overlays.Set
	// Grade is nil when grading is disabled
	Grade *raster.Grade
}

// RenderContext is everything Frame needs, fixed for the whole render
type RenderContext struct {
	Width     int
	Height    int
	Duration  float64
	Overlays  overlays.Set
	Grade     *raster.Grade
	BarHeight int
}

// NewRenderContext snapshots p into an immutable context
func NewRenderContext(p Params) *RenderContext {
	rc := &RenderContext{
		Width:     p.Width,
		Height:    p.Height,
		Duration:  p.Duration,
		BarHeight: max(minBarHeight, int(float64(p.Height)*barHeightFrac)),
	}
	if p.Overlays != nil {
		rc.Overlays = *p.Overlays
		rc.Overlays.Captions = append([]*overlays.Overlay(nil), p.Overlays.Captions...)
	}
	if p.Grade != nil && !p.Grade.IsIdentity() {
		g := *p.Grade
		rc.Grade = &g
	}
	return rc
}

// Active returns the overlay shown at t, or nil
func (rc *RenderContext) Active(t float64) *overlays.Overlay {
	return rc.Overlays.At(t)
}

// Frame composes the output frame at t. base is never modified and the
// result is always a new buffer.
func Frame(rc *RenderContext, base *image.RGBA, t float64) *image.RGBA {
	var out *image.RGBA
	if rc.Grade != nil {
		out = raster.ColorGrade(base, *rc.Grade)
	} else {
		out = raster.Clone(base)
	}

	if o := rc.Active(t); o != nil {
		raster.BlendInto(out, o.Image)
	}

	DrawProgressBar(out, t, rc.Duration, rc.BarHeight)
	return out
}

// DrawProgressBar dims the bottom barH rows to 30% and fills the elapsed
// fraction t/duration with white. No-op when duration <= 0.
func DrawProgressBar(dst *image.RGBA, t, duration float64, barH int) {
	if duration <= 0 || barH <= 0 {
		return
	}
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	barH = min(barH, h)
	filled := int(float64(w) * math.Max(0, math.Min(1, t/duration)))

	for y := h - barH; y < h; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
		for x := 0; x < w; x++ {
			i := x * 4
			if x < filled {
				row[i], row[i+1], row[i+2] = 255, 255, 255
				continue
			}
			row[i] = uint8(float64(row[i]) * barDim)
			row[i+1] = uint8(float64(row[i+1]) * barDim)
			row[i+2] = uint8(float64(row[i+2]) * barDim)
		}
	}
}
