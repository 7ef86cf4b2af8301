package timeline

import (
	"image"

	"github.com/keagan/promoreel/internal/raster"
)

// Clip is a time-addressable sequence of output-sized frames
type Clip interface {
	Duration() float64
	// Frame returns the frame at local time t in [0, Duration). Callers must
	// not mutate the returned buffer.
	Frame(t float64) (*image.RGBA, error)
}

// AudioClip is implemented by clips carrying an audio stream
type AudioClip interface {
	Clip
	HasAudio() bool
}

// Still is a clip showing one fixed frame
type Still struct {
	Image *image.RGBA
	Len   float64
}

// NewStill fits img into the output size and holds it for duration seconds
func NewStill(img image.Image, outW, outH int, duration float64) (*Still, error) {
	fitted, err := raster.AspectFit(img, outW, outH)
	if fitted == nil {
		return nil, err
	}
	return &Still{Image: fitted, Len: duration}, err
}

// Duration implements Clip
func (s *Still) Duration() float64 {
	return s.Len
}

// Frame implements Clip
func (s *Still) Frame(float64) (*image.RGBA, error) {
	return s.Image, nil
}
