package overlays

import (
	"image"
	"image/color"
	"math"
	"strings"
	"testing"

	"github.com/keagan/promoreel/internal/captions"
	"github.com/keagan/promoreel/internal/textlayout"
	"github.com/rs/zerolog"
)

const (
	frameW = 360
	frameH = 640
)

func newFactory(t *testing.T, align textlayout.Align) *Factory {
	t.Helper()
	return NewFactory(zerolog.Nop(), textlayout.DefaultFont(), frameW, frameH, Options{Align: align})
}

func opaquePixels(img *image.RGBA) int {
	n := 0
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] > 0 {
			n++
		}
	}
	return n
}

func TestComputeLayout(t *testing.T) {
	l := ComputeLayout(720)
	if l.FontSize != 46 || l.HookSize != 57 || l.PadX != 32 || l.PadY != 12 {
		t.Errorf("unexpected layout for 720: %+v", l)
	}
	small := ComputeLayout(202)
	if small.FontSize != 18 || small.HookSize != 22 || small.PadX != 9 || small.PadY != 4 {
		t.Errorf("unexpected floors for 202: %+v", small)
	}
}

// safeLimit is the lowest row a block may reach
func safeLimit() int {
	sb := textlayout.SafeBottom
	return int(float64(frameH)*sb) + 1
}

func TestCaptionStaysAboveSafeBottom(t *testing.T) {
	long := strings.Repeat("LOKASI STRATEGIS DEKAT PUSAT BISNIS ", 6)
	for _, align := range []textlayout.Align{textlayout.AlignCenter, textlayout.AlignLeft, textlayout.AlignRight} {
		f := newFactory(t, align)
		for i, text := range []string{"HOOK", "RUMAH MODERN DENGAN ROOFTOP", long} {
			o := f.Caption(captions.Caption{Index: i, Text: text, Color: captions.HookColor})
			if o.Image.Bounds().Dx() != frameW || o.Image.Bounds().Dy() != frameH {
				t.Fatalf("overlay has wrong size %v", o.Image.Bounds())
			}
			if limit := safeLimit(); o.Block.Max.Y > limit {
				t.Errorf("%s/%d: block bottom %d exceeds safe limit %d", align, i, o.Block.Max.Y, limit)
			}
			if opaquePixels(o.Image) == 0 {
				t.Errorf("%s/%d: nothing drawn", align, i)
			}
		}
	}
}

func TestBlankCaptionIsTransparent(t *testing.T) {
	o := newFactory(t, textlayout.AlignCenter).Caption(captions.Caption{Index: 2, Text: "   "})
	if n := opaquePixels(o.Image); n != 0 {
		t.Errorf("expected transparent overlay, got %d opaque pixels", n)
	}
	if !o.Block.Empty() {
		t.Errorf("expected empty block, got %v", o.Block)
	}
}

func TestCTA(t *testing.T) {
	f := newFactory(t, textlayout.AlignCenter)
	if f.CTA(CTA{}) != nil {
		t.Error("empty CTA should be nil")
	}

	o := f.CTA(CTA{Label: "Hubungi :", Name: "Mansion Realty", Contact: "0812 3456 7890"})
	if o == nil {
		t.Fatal("expected a CTA overlay")
	}
	l := f.Layout()
	bar := o.Image.RGBAAt(l.PadX+1, o.Block.Min.Y)
	if bar != ctaGold {
		t.Errorf("expected gold separator at block top, got %v", bar)
	}
	if o.Block.Max.Y > safeLimit() {
		t.Errorf("CTA block bottom %d crosses safe zone", o.Block.Max.Y)
	}
}

func TestBuildSchedulesWindows(t *testing.T) {
	f := newFactory(t, textlayout.AlignCenter)
	caps := captions.Assign([]string{"A", "B", "C"}, nil)
	set := f.Build(caps, CTA{Name: "Agent"}, 30, 4)

	if set.Interval != 10 || set.CTAStart != 26 {
		t.Fatalf("unexpected schedule: interval=%v cta=%v", set.Interval, set.CTAStart)
	}
	tests := []struct {
		t    float64
		want *Overlay
	}{
		{0, set.Captions[0]},
		{9.99, set.Captions[0]},
		{10, set.Captions[1]},
		{25.9, set.Captions[2]},
		{26, set.CTA},
		{29.99, set.CTA},
	}
	for _, tt := range tests {
		if got := set.At(tt.t); got != tt.want {
			t.Errorf("At(%v) returned %v/%d", tt.t, got.Kind, got.Index)
		}
	}

	// label alone is not a CTA
	if set := f.Build(caps, CTA{Label: "Call"}, 30, 4); set.CTA != nil {
		t.Error("label-only CTA should not render")
	}
}

func TestLogoPlacement(t *testing.T) {
	r := LogoRect(720, 1280, 400, 200, BakedLogoWidth)
	if r.Dx() != 144 || r.Dy() != 72 {
		t.Errorf("unexpected logo size %v", r)
	}
	if r.Min.X != (720-144)/2 || r.Min.Y != 38 {
		t.Errorf("unexpected logo position %v", r.Min)
	}

	logo := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for i := range logo.Pix {
		logo.Pix[i] = 255
	}
	layer := LogoLayer(frameW, frameH, logo, OverlayLogoWidth)
	if layer.From != 0 || !math.IsInf(layer.To, 1) {
		t.Errorf("logo layer window [%v, %v) should be unbounded", layer.From, layer.To)
	}
	lr := LogoRect(frameW, frameH, 40, 20, OverlayLogoWidth)
	if c := layer.Image.RGBAAt(lr.Min.X+lr.Dx()/2, lr.Min.Y+lr.Dy()/2); c.A != 255 || c.R < 250 {
		t.Errorf("logo not pasted, got %v", c)
	}
	if c := layer.Image.RGBAAt(1, frameH-2); c != (color.RGBA{}) {
		t.Errorf("expected transparent corner, got %v", c)
	}
}
