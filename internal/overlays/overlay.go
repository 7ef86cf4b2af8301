package overlays

import (
	"image"
	"math"
)

// Kind identifies what an overlay carries
type Kind string

const (
	KindCaption Kind = "caption"
	KindCTA     Kind = "cta"
	KindLogo    Kind = "logo"
)

// Overlay is an immutable full-frame RGBA layer with a validity window in
// seconds. Pixels with nothing drawn have alpha 0.
type Overlay struct {
	Kind  Kind
	Index int
	Image *image.RGBA
	From  float64
	To    float64
	// Block is the area covered by text (empty when nothing was drawn)
	Block image.Rectangle
}

// Set holds every overlay of one Pass 2 render
type Set struct {
	Captions []*Overlay
	CTA      *Overlay
	Interval float64
	CTAStart float64
}

// Schedule assigns caption windows by dividing total evenly and puts the CTA
// over the last ctaDur seconds
func (s *Set) Schedule(total, ctaDur float64) {
	n := len(s.Captions)
	s.Interval = total / math.Max(float64(n), 1)
	for i, o := range s.Captions {
		o.From = float64(i) * s.Interval
		o.To = float64(i+1) * s.Interval
	}

	s.CTAStart = math.Max(0, total-ctaDur)
	if s.CTA != nil {
		s.CTA.From = s.CTAStart
		s.CTA.To = total
	}
}

// At returns the overlay that should be visible at t: the CTA once its window
// starts, otherwise the caption for t's interval
func (s *Set) At(t float64) *Overlay {
	if s.CTA != nil && t >= s.CTAStart {
		return s.CTA
	}
	n := len(s.Captions)
	if n == 0 {
		return nil
	}
	idx := 0
	if s.Interval > 0 && t > 0 {
		idx = min(int(math.Floor(t/s.Interval)), n-1)
	}
	return s.Captions[idx]
}
