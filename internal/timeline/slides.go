package timeline

import (
	"image"
	"math"

	"github.com/keagan/promoreel/internal/raster"
)

// Slide timing
const (
	MaxPhotos       = 6
	MinSlide        = 5.0
	MaxSlide        = 8.0
	DefaultZoomEnd  = 1.10
	minZoomDuration = 1e-6
)

// SlideDuration spreads target over n photos, clamped to [MinSlide, MaxSlide]
func SlideDuration(target float64, n int) float64 {
	if n < 1 {
		return MinSlide
	}
	return math.Max(MinSlide, math.Min(MaxSlide, target/float64(n)))
}

// KenBurns is a photo clip that zooms slowly from ZoomEnd to 1x. The
// letterboxed base raster is rendered once; every frame is a center crop of it.
type KenBurns struct {
	base     *image.RGBA
	outW     int
	outH     int
	duration float64
}

// NewKenBurns prepares a slide of the given duration. A non-nil error wraps
// raster.ErrAspectFitFallback and the slide is still usable.
func NewKenBurns(img image.Image, outW, outH int, duration, zoomEnd float64) (*KenBurns, error) {
	if zoomEnd < 1 {
		zoomEnd = DefaultZoomEnd
	}
	baseW := int(float64(outW) * zoomEnd)
	baseH := int(float64(outH) * zoomEnd)
	base, err := raster.AspectFit(img, baseW, baseH)
	if base == nil {
		return nil, err
	}
	return &KenBurns{base: base, outW: outW, outH: outH, duration: duration}, err
}

// Duration implements Clip
func (k *KenBurns) Duration() float64 {
	return k.duration
}

// CropSize returns the crop window at t: the base size at t=0 shrinking
// linearly to the output size at t=duration
func (k *KenBurns) CropSize(t float64) (int, int) {
	p := math.Min(math.Max(t, 0)/math.Max(k.duration, minZoomDuration), 1)
	bw, bh := k.base.Rect.Dx(), k.base.Rect.Dy()
	w := max(k.outW, int(float64(bw)-float64(bw-k.outW)*p))
	h := max(k.outH, int(float64(bh)-float64(bh-k.outH)*p))
	return w, h
}

// Frame implements Clip
func (k *KenBurns) Frame(t float64) (*image.RGBA, error) {
	w, h := k.CropSize(t)
	crop := raster.CropCenter(k.base, w, h)
	return raster.ResizeFast(crop, k.outW, k.outH), nil
}
